package domain

import (
	"errors"
	"strings"
	"time"
)

// Document statuses.
const (
	StatusDraft     = "Draft"
	StatusSubmitted = "Submitted"
)

// NormalizeStatus maps any requested initial status onto a valid document
// status, defaulting to Draft.
func NormalizeStatus(status string) string {
	switch strings.TrimSpace(status) {
	case StatusSubmitted:
		return StatusSubmitted
	default:
		return StatusDraft
	}
}

// Submission is a document instance of a form.
type Submission struct {
	ID                int64
	FormID            int64
	DocumentTypeID    int64
	ProjectID         int64
	SeriesID          int64
	DocumentNumber    string
	Status            string
	StageID           *int64
	Version           int
	SubmittedDate     *time.Time
	SubmittedByUserID string
	CreatedDate       time.Time
	CreatedByUserID   string
	ModifiedDate      *time.Time
	ModifiedByUserID  string
	IsDeleted         bool

	FieldValues []FieldValue
	GridRows    []GridRow
	Attachments []Attachment
}

func (s Submission) Validate() error {
	if s.FormID == 0 {
		return errors.New("form id is required")
	}
	if s.DocumentTypeID == 0 {
		return errors.New("document type id is required")
	}
	if strings.TrimSpace(s.DocumentNumber) == "" {
		return errors.New("document number is required")
	}
	if s.Status != StatusDraft && s.Status != StatusSubmitted {
		return errors.New("status must be Draft or Submitted")
	}
	return nil
}

// FieldValue stores one submitted value for one field. Exactly one typed slot
// is populated; the engine copies all five verbatim and never coerces.
type FieldValue struct {
	ID           int64
	SubmissionID int64
	FieldID      int64
	FieldCode    string
	StringValue  *string
	NumberValue  *float64
	DateValue    *time.Time
	BoolValue    *bool
	JSONValue    []byte
}

// GridRow is one row of grid data belonging to a submission.
type GridRow struct {
	ID           int64
	SubmissionID int64
	GridID       int64
	RowIndex     int
	Cells        []GridCell
}

// GridCell is one cell of a grid row.
type GridCell struct {
	ID          int64
	RowID       int64
	ColumnID    int64
	StringValue *string
	NumberValue *float64
	DateValue   *time.Time
	BoolValue   *bool
	JSONValue   []byte
}

// Attachment is a file uploaded against a submission field.
type Attachment struct {
	ID              int64
	SubmissionID    int64
	FieldID         *int64
	FileName        string
	FilePath        string
	ContentType     string
	Size            int64
	CreatedDate     time.Time
	CreatedByUserID string
	IsDeleted       bool
}
