package doccopy

import (
	"context"
	"fmt"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

const (
	maxNumberRetries = 10
	numberRetryDelay = 50 * time.Millisecond
)

// provisionTarget creates or locates the target document before any data is
// copied. The second return value reports whether the document was newly
// created (which the metadata engine needs to protect series-driven fields).
func (e *Engine) provisionTarget(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source *domain.Submission, opts Options) (*domain.Submission, bool, error) {
	if !cfg.CreateNewDocument {
		target, err := e.loadExistingTarget(ctx, scope, cfg)
		if err != nil {
			return nil, false, err
		}
		return target, false, nil
	}
	target, err := e.createTarget(ctx, scope, cfg, source, opts)
	if err != nil {
		return nil, false, err
	}
	return target, true, nil
}

func (e *Engine) loadExistingTarget(ctx context.Context, scope Scope, cfg domain.CopyConfiguration) (*domain.Submission, error) {
	target, err := scope.Submissions().GetWithDetails(ctx, cfg.TargetDocumentID)
	if err != nil {
		return nil, fmt.Errorf("load target document %d: %w", cfg.TargetDocumentID, err)
	}
	if target.FormID != cfg.TargetFormID {
		return nil, fmt.Errorf("target document %d belongs to form %d, configuration expects form %d",
			target.ID, target.FormID, cfg.TargetFormID)
	}
	if target.DocumentTypeID != cfg.TargetDocumentTypeID {
		return nil, fmt.Errorf("target document %d belongs to document type %d, configuration expects document type %d",
			target.ID, target.DocumentTypeID, cfg.TargetDocumentTypeID)
	}
	return &target, nil
}

func (e *Engine) createTarget(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source *domain.Submission, opts Options) (*domain.Submission, error) {
	projectID, err := e.resolveProject(ctx, scope, cfg, source)
	if err != nil {
		return nil, err
	}

	series, err := scope.Series().SelectSeries(ctx, cfg.TargetDocumentTypeID, projectID)
	if err != nil {
		return nil, fmt.Errorf("select series for document type %d in project %d: %w",
			cfg.TargetDocumentTypeID, projectID, err)
	}

	executedBy := opts.ExecutedBy
	if executedBy == "" {
		executedBy = "system"
	}
	status := cfg.NormalizedInitialStatus()

	var lastErr error
	lastWasCollision := false
	for attempt := 1; attempt <= maxNumberRetries; attempt++ {
		next, err := scope.Series().NextNumber(ctx, series.ID)
		if err != nil {
			lastErr = fmt.Errorf("next number for series %d: %w", series.ID, err)
			lastWasCollision = false
			e.backoff(attempt)
			continue
		}
		documentNumber := domain.FormatDocumentNumber(series.Code, next)

		// The counter is atomic, but a concurrent writer that bypassed it may
		// already hold this number. Re-check before inserting.
		exists, err := scope.Submissions().DocumentNumberExists(ctx, documentNumber)
		if err != nil {
			lastErr = fmt.Errorf("check document number %s: %w", documentNumber, err)
			lastWasCollision = false
			e.backoff(attempt)
			continue
		}
		if exists {
			e.logger.Warn("document number collision, retrying",
				"document_number", documentNumber, "attempt", attempt)
			lastErr = fmt.Errorf("document number %s already exists", documentNumber)
			lastWasCollision = true
			e.backoff(attempt)
			continue
		}

		target := &domain.Submission{
			FormID:          cfg.TargetFormID,
			DocumentTypeID:  cfg.TargetDocumentTypeID,
			ProjectID:       projectID,
			SeriesID:        series.ID,
			DocumentNumber:  documentNumber,
			Status:          status,
			Version:         1,
			CreatedDate:     e.now().UTC(),
			CreatedByUserID: executedBy,
		}
		if status == domain.StatusSubmitted {
			submitted := e.now().UTC()
			target.SubmittedDate = &submitted
			target.SubmittedByUserID = executedBy
		}
		if err := scope.Submissions().Create(ctx, target); err != nil {
			lastErr = fmt.Errorf("insert target document %s: %w", documentNumber, err)
			lastWasCollision = false
			e.backoff(attempt)
			continue
		}
		return target, nil
	}
	if lastWasCollision {
		return nil, fmt.Errorf("could not obtain a unique document number after %d attempts: %w", maxNumberRetries, lastErr)
	}
	return nil, lastErr
}

// resolveProject picks the project a created document belongs to: the source
// submission's series' project first, the source's own project next, and with
// no source at all, the project of the target document type's default series.
func (e *Engine) resolveProject(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source *domain.Submission) (int64, error) {
	if source != nil {
		if source.SeriesID > 0 {
			series, err := scope.Series().GetSeries(ctx, source.SeriesID)
			if err == nil && series.ProjectID > 0 {
				return series.ProjectID, nil
			}
		}
		if source.ProjectID > 0 {
			return source.ProjectID, nil
		}
		return 0, fmt.Errorf("source submission %d has no resolvable project", source.ID)
	}

	series, err := scope.Series().DefaultSeriesForDocumentType(ctx, cfg.TargetDocumentTypeID)
	if err != nil {
		return 0, fmt.Errorf("no series available for document type %d: %w", cfg.TargetDocumentTypeID, err)
	}
	if series.ProjectID == 0 {
		return 0, fmt.Errorf("series %d has no project", series.ID)
	}
	return series.ProjectID, nil
}

func (e *Engine) backoff(attempt int) {
	e.sleep(numberRetryDelay * time.Duration(attempt))
}
