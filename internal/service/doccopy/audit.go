package doccopy

import (
	"context"
	"fmt"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// logAudit persists the audit record with a two-tier write strategy. Tier one
// is a fresh, dedicated transaction on the engine's own database; it runs
// after the primary transaction finalized, so it is unaffected by a rollback.
// Tier two repeats the write on an entirely independent scope so even a
// poisoned primary connection cannot take the trail down with it. A
// successful write is followed by a best-effort read-back on a third scope.
func (e *Engine) logAudit(ctx context.Context, record domain.CopyAuditRecord) error {
	id, primaryErr := e.writeAuditPrimary(ctx, record)
	if primaryErr != nil {
		e.logger.Warn("audit write failed on primary connection, falling back",
			"error", primaryErr)
		var fallbackErr error
		id, fallbackErr = e.writeAuditFallback(ctx, record)
		if fallbackErr != nil {
			return fmt.Errorf("primary write: %v; fallback write: %w", primaryErr, fallbackErr)
		}
	}
	if id == 0 {
		return fmt.Errorf("audit write reported no generated id")
	}

	e.verifyAudit(ctx, id)
	return nil
}

func (e *Engine) writeAuditPrimary(ctx context.Context, record domain.CopyAuditRecord) (int64, error) {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin audit transaction: %w", err)
	}
	id, err := tx.Audit().Insert(ctx, record)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit audit transaction: %w", err)
	}
	return id, nil
}

func (e *Engine) writeAuditFallback(ctx context.Context, record domain.CopyAuditRecord) (int64, error) {
	if e.scopes == nil {
		return 0, fmt.Errorf("no independent scope factory configured")
	}
	db, closeDB, err := e.scopes.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open independent scope: %w", err)
	}
	defer func() { _ = closeDB() }()

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin independent audit transaction: %w", err)
	}
	id, err := tx.Audit().Insert(ctx, record)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit independent audit transaction: %w", err)
	}
	return id, nil
}

// verifyAudit confirms the committed row is visible from a separate
// connection. Failure to confirm is logged, never treated as an error.
func (e *Engine) verifyAudit(ctx context.Context, id int64) {
	if e.scopes == nil {
		return
	}
	db, closeDB, err := e.scopes.Open(ctx)
	if err != nil {
		e.logger.Warn("audit verification skipped: scope open failed", "error", err)
		return
	}
	defer func() { _ = closeDB() }()

	if _, err := db.Scope().Audit().Get(ctx, id); err != nil {
		e.logger.Warn("audit verification failed", "audit_id", id, "error", err)
		return
	}
	e.logger.Debug("audit record verified", "audit_id", id)
}
