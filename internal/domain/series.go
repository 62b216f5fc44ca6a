package domain

import (
	"fmt"
	"strings"
)

// DocumentSeries is a numbering scope for one document type within a project.
// NextNumber is the next unclaimed sequence value.
type DocumentSeries struct {
	ID             int64
	DocumentTypeID int64
	ProjectID      int64
	Code           string
	NextNumber     int
	IsDefault      bool
	IsActive       bool
}

// FormatDocumentNumber renders a series-scoped document number, e.g. "INV-000042".
func FormatDocumentNumber(seriesCode string, number int) string {
	return fmt.Sprintf("%s-%06d", strings.TrimSpace(seriesCode), number)
}
