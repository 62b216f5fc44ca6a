package domain

import "strings"

// Form is a form definition owned by a document type.
type Form struct {
	ID             int64
	DocumentTypeID int64
	Code           string
	Name           string
	IsDeleted      bool
}

// FormField is a single field definition on a form. A field carrying a
// non-empty Expression is calculated: its value is derived, never entered.
type FormField struct {
	ID         int64
	FormID     int64
	Code       string
	Name       string
	FieldType  string
	Expression string
	IsDeleted  bool
}

// IsCalculated reports whether the field's value is derived from an expression.
func (f FormField) IsCalculated() bool {
	return strings.TrimSpace(f.Expression) != ""
}

// FormGrid is a tabular section of a form.
type FormGrid struct {
	ID        int64
	FormID    int64
	Code      string
	Name      string
	IsDeleted bool
}

// GridColumn is a column definition within a form grid.
type GridColumn struct {
	ID        int64
	GridID    int64
	Code      string
	Name      string
	FieldType string
	IsDeleted bool
}

// FieldIndex maps upper-cased field codes to their definitions.
type FieldIndex map[string]FormField

// IndexFieldsByCode builds a code-keyed index over non-deleted fields.
// Codes are compared case-insensitively throughout the engine.
func IndexFieldsByCode(fields []FormField) FieldIndex {
	idx := make(FieldIndex, len(fields))
	for _, f := range fields {
		if f.IsDeleted {
			continue
		}
		idx[strings.ToUpper(strings.TrimSpace(f.Code))] = f
	}
	return idx
}

// ColumnIndex maps upper-cased column codes to their definitions.
type ColumnIndex map[string]GridColumn

// IndexColumnsByCode builds a code-keyed index over non-deleted columns.
func IndexColumnsByCode(columns []GridColumn) ColumnIndex {
	idx := make(ColumnIndex, len(columns))
	for _, c := range columns {
		if c.IsDeleted {
			continue
		}
		idx[strings.ToUpper(strings.TrimSpace(c.Code))] = c
	}
	return idx
}
