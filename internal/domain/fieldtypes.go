package domain

import "strings"

// Field type names as stored on form field definitions.
const (
	FieldTypeText       = "TEXT"
	FieldTypeTextArea   = "TEXTAREA"
	FieldTypeRichText   = "RICH_TEXT"
	FieldTypeEmail      = "EMAIL"
	FieldTypePhone      = "PHONE"
	FieldTypeURL        = "URL"
	FieldTypeNumber     = "NUMBER"
	FieldTypeDecimal    = "DECIMAL"
	FieldTypeCurrency   = "CURRENCY"
	FieldTypePercentage = "PERCENTAGE"
	FieldTypeDate       = "DATE"
	FieldTypeDateTime   = "DATETIME"
	FieldTypeBoolean    = "BOOLEAN"
	FieldTypeCheckbox   = "CHECKBOX"
)

// compatibilityGroups assigns every grouped field type a group key. Types
// sharing a key may be mapped onto each other; everything else is compatible
// only with itself.
var compatibilityGroups = map[string]string{
	FieldTypeText:       "text",
	FieldTypeTextArea:   "text",
	FieldTypeRichText:   "text",
	FieldTypeEmail:      "text",
	FieldTypePhone:      "text",
	FieldTypeURL:        "text",
	FieldTypeNumber:     "numeric",
	FieldTypeDecimal:    "numeric",
	FieldTypeCurrency:   "numeric",
	FieldTypePercentage: "numeric",
	FieldTypeDate:       "temporal",
	FieldTypeDateTime:   "temporal",
	FieldTypeBoolean:    "boolean",
	FieldTypeCheckbox:   "boolean",
}

// CompatibleFieldTypes reports whether a value stored under the source field
// type may be copied into a field of the target type. This gates the mapping
// only; values are copied verbatim, never coerced.
func CompatibleFieldTypes(sourceType, targetType string) bool {
	src := strings.ToUpper(strings.TrimSpace(sourceType))
	dst := strings.ToUpper(strings.TrimSpace(targetType))
	if src == dst {
		return true
	}
	srcGroup, ok := compatibilityGroups[src]
	if !ok {
		return false
	}
	dstGroup, ok := compatibilityGroups[dst]
	if !ok {
		return false
	}
	return srcGroup == dstGroup
}
