package doccopy

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// validateFieldMapping checks every configured pair against the two forms'
// field definitions before any mutation occurs. Validation is all-or-nothing:
// the first failure aborts the whole copy. An empty mapping is valid and
// skips the check entirely.
func (e *Engine) validateFieldMapping(ctx context.Context, scope Scope, cfg domain.CopyConfiguration) (domain.FieldIndex, domain.FieldIndex, error) {
	if len(cfg.FieldMapping) == 0 {
		return nil, nil, nil
	}

	sourceFieldList, err := scope.Forms().ListFields(ctx, cfg.SourceFormID)
	if err != nil {
		return nil, nil, fmt.Errorf("load fields of source form %d: %w", cfg.SourceFormID, err)
	}
	targetFieldList, err := scope.Forms().ListFields(ctx, cfg.TargetFormID)
	if err != nil {
		return nil, nil, fmt.Errorf("load fields of target form %d: %w", cfg.TargetFormID, err)
	}

	sourceFields := domain.IndexFieldsByCode(sourceFieldList)
	targetFields := domain.IndexFieldsByCode(targetFieldList)

	for _, pair := range cfg.FieldMapping {
		sourceCode := strings.ToUpper(strings.TrimSpace(pair.SourceFieldCode))
		targetCode := strings.ToUpper(strings.TrimSpace(pair.TargetFieldCode))

		sourceField, ok := sourceFields[sourceCode]
		if !ok {
			return nil, nil, fmt.Errorf("field mapping invalid: source form %d has no field %q",
				cfg.SourceFormID, pair.SourceFieldCode)
		}
		targetField, ok := targetFields[targetCode]
		if !ok {
			return nil, nil, fmt.Errorf("field mapping invalid: target form %d has no field %q",
				cfg.TargetFormID, pair.TargetFieldCode)
		}
		if !domain.CompatibleFieldTypes(sourceField.FieldType, targetField.FieldType) {
			return nil, nil, fmt.Errorf("field mapping invalid: data type mismatch mapping %q (%s) of form %d onto %q (%s)",
				pair.SourceFieldCode, sourceField.FieldType, cfg.SourceFormID,
				pair.TargetFieldCode, targetField.FieldType)
		}
	}
	return sourceFields, targetFields, nil
}
