// Package doccopy implements the cross-document copy and provisioning engine:
// given a source submission and a declarative configuration it provisions (or
// locates) a target document, copies field values, grid rows, metadata and
// attachments between two independently-shaped forms, and records a durable
// audit trail regardless of how the operation ends.
package doccopy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/docbridge-labs/docbridge-go/internal/storage/filestore"
	"github.com/docbridge-labs/docbridge-go/internal/workflow"
)

// ErrAuditTrailLost reports that the copy's audit row could not be persisted
// by either write strategy. It is distinct from the copy outcome itself: the
// wrapped CopyResult in the caller's hands still states whether the copy
// succeeded.
var ErrAuditTrailLost = errors.New("copy audit trail lost")

// Deps are the engine's collaborators. Database and Logger are required;
// Files, Workflow and ScopeFactory are needed only when a configuration asks
// for attachments, workflow start, or the audit fallback path respectively.
type Deps struct {
	Database     Database
	Files        filestore.Store
	Workflow     workflow.Submitter
	ScopeFactory ScopeFactory
	Logger       *slog.Logger
}

// Engine executes copy configurations. One call is one logical operation run
// to completion; callers may invoke copies concurrently and the numbering
// retry loop keeps document numbers collision-free under that contention.
type Engine struct {
	db       Database
	files    filestore.Store
	workflow workflow.Submitter
	scopes   ScopeFactory
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

func New(deps Deps) *Engine {
	if deps.Database == nil {
		return nil
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:       deps.Database,
		files:    deps.Files,
		workflow: deps.Workflow,
		scopes:   deps.ScopeFactory,
		logger:   logger,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Options carry per-call context for one copy execution.
type Options struct {
	ActionID   *int64
	RuleID     *int64
	ExecutedBy string

	// Scope, when set, joins a transaction the caller already opened. The
	// engine then never commits or rolls it back; the caller owns finalization.
	Scope Scope
}

// ExecuteCopy runs one copy operation. The returned CopyResult always states
// the outcome; the error return is reserved for audit-trail loss (see
// ErrAuditTrailLost) and never reflects the copy outcome itself.
//
// sourceSubmissionID is overridden by the configuration's SourceSubmissionID
// when that is > 0. A resolved id of 0 means no source submission: the engine
// only provisions the target document.
func (e *Engine) ExecuteCopy(ctx context.Context, cfg domain.CopyConfiguration, sourceSubmissionID int64, opts Options) (domain.CopyResult, error) {
	if cfg.SourceSubmissionID > 0 {
		sourceSubmissionID = cfg.SourceSubmissionID
	}
	result := domain.CopyResult{
		SourceSubmissionID: sourceSubmissionID,
		ActionID:           opts.ActionID,
	}

	scope, owned, err := e.acquireScope(ctx, opts)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("begin transaction: %v", err)
		return result, e.finishAudit(ctx, &result, cfg, opts)
	}

	targetStatus := e.runPhases(ctx, scope, cfg, sourceSubmissionID, opts, &result)

	e.finalize(scope, owned, &result)

	e.triggerWorkflow(ctx, cfg, targetStatus, opts, &result)

	return result, e.finishAudit(ctx, &result, cfg, opts)
}

// acquireScope joins the caller's open transaction when one was supplied,
// otherwise begins a transaction the engine owns. Nested transactions are not
// supported by the store, so a joined scope is never finalized here.
func (e *Engine) acquireScope(ctx context.Context, opts Options) (Scope, bool, error) {
	if opts.Scope != nil {
		return opts.Scope, false, nil
	}
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	return tx, true, nil
}

// runPhases executes every copy phase in order, converting any failure
// (including a panic) into a failed result so rollback and audit logging
// still run. It returns the target document's status after the copy, which
// the workflow trigger checks.
func (e *Engine) runPhases(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, sourceSubmissionID int64, opts Options, result *domain.CopyResult) (status string) {
	defer func() {
		if v := recover(); v != nil {
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("copy aborted: %v", v)
			e.logger.Error("copy panic recovered", "panic", v, "source_submission_id", sourceSubmissionID)
		}
	}()

	status, err := e.execute(ctx, scope, cfg, sourceSubmissionID, opts, result)
	if err != nil {
		result.Success = false
		result.ErrorMessage = err.Error()
		return status
	}
	result.Success = true
	return status
}

func (e *Engine) execute(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, sourceSubmissionID int64, opts Options, result *domain.CopyResult) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	var source *domain.Submission
	if sourceSubmissionID > 0 {
		loaded, err := scope.Submissions().GetWithDetails(ctx, sourceSubmissionID)
		if err != nil {
			return "", fmt.Errorf("load source submission %d: %w", sourceSubmissionID, err)
		}
		if cfg.SourceFormID > 0 && loaded.FormID != cfg.SourceFormID {
			return "", fmt.Errorf("source submission %d belongs to form %d, configuration expects form %d",
				sourceSubmissionID, loaded.FormID, cfg.SourceFormID)
		}
		if cfg.SourceDocumentTypeID > 0 && loaded.DocumentTypeID != cfg.SourceDocumentTypeID {
			return "", fmt.Errorf("source submission %d belongs to document type %d, configuration expects document type %d",
				sourceSubmissionID, loaded.DocumentTypeID, cfg.SourceDocumentTypeID)
		}
		source = &loaded
	}

	sourceFields, targetFields, err := e.validateFieldMapping(ctx, scope, cfg)
	if err != nil {
		return "", err
	}

	target, createdNew, err := e.provisionTarget(ctx, scope, cfg, source, opts)
	if err != nil {
		return "", err
	}
	result.TargetDocumentID = &target.ID
	result.TargetDocumentNumber = target.DocumentNumber

	if source != nil && len(cfg.FieldMapping) > 0 {
		copied, err := e.copyFields(ctx, scope, cfg, source, target, sourceFields, targetFields)
		if err != nil {
			return target.Status, err
		}
		result.FieldsCopied = copied
	}

	if source != nil && cfg.CopyGridRows && len(cfg.GridMapping) > 0 {
		copied, err := e.copyGrids(ctx, scope, cfg, source, target)
		if err != nil {
			return target.Status, err
		}
		result.GridRowsCopied = copied
	}

	if source != nil && cfg.CopyMetadata {
		if err := e.copyMetadata(ctx, scope, cfg, source, target, createdNew, opts); err != nil {
			return target.Status, err
		}
	}

	if source != nil && cfg.CopyAttachments {
		if err := e.copyAttachments(ctx, scope, source, target, opts); err != nil {
			return target.Status, err
		}
	}

	if cfg.LinkDocuments && source != nil {
		if err := scope.Submissions().LinkDocuments(ctx, source.ID, target.ID, opts.ActionID); err != nil {
			return target.Status, fmt.Errorf("link documents: %w", err)
		}
	}

	result.TargetDocumentNumber = target.DocumentNumber
	return target.Status, nil
}

// finalize commits or rolls back the transaction, but only when the engine
// owns it. A finalization failure flips the result to failure without ever
// propagating further: audit logging must still run.
func (e *Engine) finalize(scope Scope, owned bool, result *domain.CopyResult) {
	if !owned {
		return
	}
	tx, ok := scope.(TxScope)
	if !ok {
		return
	}
	if result.Success {
		if err := tx.Commit(); err != nil {
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("commit: %v", err)
			e.logger.Error("copy commit failed", "error", err)
		}
		return
	}
	if err := tx.Rollback(); err != nil {
		e.logger.Error("copy rollback failed", "error", err)
	}
}

// triggerWorkflow runs strictly after transaction finalization so the
// workflow service never observes an uncommitted document. A failed submit
// flips the overall result but does not undo committed data.
func (e *Engine) triggerWorkflow(ctx context.Context, cfg domain.CopyConfiguration, targetStatus string, opts Options, result *domain.CopyResult) {
	if !result.Success || !cfg.StartWorkflow {
		return
	}
	if targetStatus != domain.StatusDraft {
		return
	}
	if result.TargetDocumentID == nil {
		return
	}
	if e.workflow == nil {
		result.Success = false
		result.ErrorMessage = "workflow start requested but no workflow collaborator is configured"
		return
	}
	submittedBy := opts.ExecutedBy
	if submittedBy == "" {
		submittedBy = "system"
	}
	resp, err := e.workflow.Submit(ctx, *result.TargetDocumentID, submittedBy)
	if err != nil {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("workflow submit: %v", err)
		return
	}
	if !resp.OK() {
		result.Success = false
		result.ErrorMessage = fmt.Sprintf("workflow submit rejected (status %d): %s", resp.StatusCode, resp.Message)
	}
}

// finishAudit persists the audit row whenever a source submission id is
// available, regardless of the copy's outcome. Audit loss is reported as a
// distinct error so callers can tell "the copy failed" apart from "we lost
// the trail of a copy that may have succeeded".
func (e *Engine) finishAudit(ctx context.Context, result *domain.CopyResult, cfg domain.CopyConfiguration, opts Options) error {
	if result.SourceSubmissionID <= 0 {
		return nil
	}
	record := domain.AuditRecordFromResult(*result, cfg, opts.RuleID, opts.ExecutedBy, e.now())
	if err := e.logAudit(ctx, record); err != nil {
		e.logger.Error("copy audit trail lost", "error", err,
			"source_submission_id", result.SourceSubmissionID,
			"success", result.Success)
		return fmt.Errorf("%w: %v", ErrAuditTrailLost, err)
	}
	return nil
}
