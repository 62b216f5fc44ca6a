package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// CopyAuditStore persists copy audit rows. It deliberately takes the narrow DB
// interface so callers can point it at whichever connection or transaction
// should carry the write.
type CopyAuditStore struct {
	db  DB
	now func() time.Time
}

func NewCopyAuditStore(db DB) *CopyAuditStore {
	if db == nil {
		return nil
	}
	return &CopyAuditStore{db: db, now: time.Now}
}

func (s *CopyAuditStore) Insert(ctx context.Context, record domain.CopyAuditRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("copy audit store not initialized")
	}
	if record.ExecutionDate.IsZero() {
		record.ExecutionDate = s.now().UTC()
	}
	if record.CreatedDate.IsZero() {
		record.CreatedDate = record.ExecutionDate
	}
	if record.CreatedByUserID == "" {
		record.CreatedByUserID = "system"
	}
	var id int64
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO copy_audit_log (
			target_document_id, action_id, rule_id,
			source_form_id, target_form_id, target_document_type_id,
			success, error_message, fields_copied, grid_rows_copied,
			target_document_number, execution_date,
			created_date, created_by_user_id, is_active, is_deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,FALSE)
		RETURNING audit_id`,
		nullInt64(record.TargetDocumentID),
		nullInt64(record.ActionID),
		nullInt64(record.RuleID),
		record.SourceFormID,
		record.TargetFormID,
		record.TargetDocumentTypeID,
		record.Success,
		nullIfEmpty(record.ErrorMessage),
		record.FieldsCopied,
		record.GridRowsCopied,
		nullIfEmpty(record.TargetDocumentNumber),
		record.ExecutionDate.UTC(),
		record.CreatedDate.UTC(),
		record.CreatedByUserID,
		record.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert copy audit: %w", err)
	}
	return id, nil
}

func (s *CopyAuditStore) Get(ctx context.Context, id int64) (domain.CopyAuditRecord, error) {
	if s == nil || s.db == nil {
		return domain.CopyAuditRecord{}, fmt.Errorf("copy audit store not initialized")
	}
	var record domain.CopyAuditRecord
	var targetID, actionID, ruleID sql.NullInt64
	var errorMessage, documentNumber sql.NullString
	row := s.db.QueryRowContext(
		ctx,
		`SELECT audit_id, target_document_id, action_id, rule_id,
			source_form_id, target_form_id, target_document_type_id,
			success, error_message, fields_copied, grid_rows_copied,
			target_document_number, execution_date,
			created_date, created_by_user_id, is_active, is_deleted
		 FROM copy_audit_log
		 WHERE audit_id = $1`,
		id,
	)
	if err := row.Scan(&record.ID, &targetID, &actionID, &ruleID,
		&record.SourceFormID, &record.TargetFormID, &record.TargetDocumentTypeID,
		&record.Success, &errorMessage, &record.FieldsCopied, &record.GridRowsCopied,
		&documentNumber, &record.ExecutionDate,
		&record.CreatedDate, &record.CreatedByUserID, &record.IsActive, &record.IsDeleted); err != nil {
		return domain.CopyAuditRecord{}, handleNotFound(err)
	}
	record.TargetDocumentID = int64Ptr(targetID)
	record.ActionID = int64Ptr(actionID)
	record.RuleID = int64Ptr(ruleID)
	if errorMessage.Valid {
		record.ErrorMessage = errorMessage.String
	}
	if documentNumber.Valid {
		record.TargetDocumentNumber = documentNumber.String
	}
	return record, nil
}
