package repo

import (
	"context"
	"errors"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist or is soft-deleted.
var ErrNotFound = errors.New("record not found")

// FormRepository resolves form and field definitions.
type FormRepository interface {
	GetForm(ctx context.Context, id int64) (domain.Form, error)
	ListFields(ctx context.Context, formID int64) ([]domain.FormField, error)
	ListGrids(ctx context.Context, formID int64) ([]domain.FormGrid, error)
	ListGridColumns(ctx context.Context, gridID int64) ([]domain.GridColumn, error)
}

// SubmissionRepository manages document instances and their nested data.
type SubmissionRepository interface {
	// GetWithDetails loads a non-deleted submission with its field values,
	// grid rows (cells included), and attachments.
	GetWithDetails(ctx context.Context, id int64) (domain.Submission, error)
	Create(ctx context.Context, submission *domain.Submission) error
	Update(ctx context.Context, submission *domain.Submission) error
	// DocumentNumberExists checks the number against all non-deleted documents.
	DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error)

	UpsertFieldValues(ctx context.Context, values []domain.FieldValue) error
	CreateGridRow(ctx context.Context, row *domain.GridRow) error
	CreateGridCells(ctx context.Context, cells []domain.GridCell) error
	CreateAttachment(ctx context.Context, attachment *domain.Attachment) error
	LinkDocuments(ctx context.Context, sourceID, targetID int64, actionID *int64) error
}

// SeriesRepository is the numbering collaborator for document series.
type SeriesRepository interface {
	GetSeries(ctx context.Context, id int64) (domain.DocumentSeries, error)
	// SelectSeries picks the series used for new documents of a document type
	// within a project: active, preferring the default, tie-broken by code.
	SelectSeries(ctx context.Context, documentTypeID, projectID int64) (domain.DocumentSeries, error)
	// DefaultSeriesForDocumentType picks a series when no project is known.
	DefaultSeriesForDocumentType(ctx context.Context, documentTypeID int64) (domain.DocumentSeries, error)
	// NextNumber atomically claims and returns the next sequence value.
	NextNumber(ctx context.Context, seriesID int64) (int, error)
}

// CopyAuditRepository persists copy audit rows.
type CopyAuditRepository interface {
	Insert(ctx context.Context, record domain.CopyAuditRecord) (int64, error)
	Get(ctx context.Context, id int64) (domain.CopyAuditRecord, error)
}
