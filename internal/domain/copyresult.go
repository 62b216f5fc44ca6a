package domain

import "time"

// CopyResult is the outcome of one copy operation. It is created at call
// start, filled in as the operation progresses, and returned exactly once.
type CopyResult struct {
	Success              bool   `json:"success"`
	SourceSubmissionID   int64  `json:"sourceSubmissionId"`
	ActionID             *int64 `json:"actionId,omitempty"`
	TargetDocumentID     *int64 `json:"targetDocumentId,omitempty"`
	TargetDocumentNumber string `json:"targetDocumentNumber,omitempty"`
	FieldsCopied         int    `json:"fieldsCopied"`
	GridRowsCopied       int    `json:"gridRowsCopied"`
	ErrorMessage         string `json:"errorMessage,omitempty"`
}

// CopyAuditRecord is the persisted trail of one copy operation. It is written
// on an independent connection so it survives rollback of the copy itself.
type CopyAuditRecord struct {
	ID                   int64
	TargetDocumentID     *int64
	ActionID             *int64
	RuleID               *int64
	SourceFormID         int64
	TargetFormID         int64
	TargetDocumentTypeID int64
	Success              bool
	ErrorMessage         string
	FieldsCopied         int
	GridRowsCopied       int
	TargetDocumentNumber string
	ExecutionDate        time.Time
	CreatedDate          time.Time
	CreatedByUserID      string
	IsActive             bool
	IsDeleted            bool
}

// AuditRecordFromResult converts a finished CopyResult into its audit row.
func AuditRecordFromResult(result CopyResult, cfg CopyConfiguration, ruleID *int64, executedBy string, executedAt time.Time) CopyAuditRecord {
	if executedBy == "" {
		executedBy = "system"
	}
	return CopyAuditRecord{
		TargetDocumentID:     result.TargetDocumentID,
		ActionID:             result.ActionID,
		RuleID:               ruleID,
		SourceFormID:         cfg.SourceFormID,
		TargetFormID:         cfg.TargetFormID,
		TargetDocumentTypeID: cfg.TargetDocumentTypeID,
		Success:              result.Success,
		ErrorMessage:         result.ErrorMessage,
		FieldsCopied:         result.FieldsCopied,
		GridRowsCopied:       result.GridRowsCopied,
		TargetDocumentNumber: result.TargetDocumentNumber,
		ExecutionDate:        executedAt.UTC(),
		CreatedDate:          executedAt.UTC(),
		CreatedByUserID:      executedBy,
		IsActive:             true,
	}
}
