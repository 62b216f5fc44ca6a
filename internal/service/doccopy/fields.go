package doccopy

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// copyFields applies the configured field mapping pair by pair and flushes
// every write for the target submission in one round-trip. The returned count
// follows the FieldsCopied contract: pairs where both sides resolve, neither
// side is skipped as calculated, and either no target value existed or
// overwriting was requested.
func (e *Engine) copyFields(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source, target *domain.Submission, sourceFields, targetFields domain.FieldIndex) (int, error) {
	sourceValues := make(map[int64]domain.FieldValue, len(source.FieldValues))
	for _, v := range source.FieldValues {
		sourceValues[v.FieldID] = v
	}
	targetValues := make(map[int64]domain.FieldValue, len(target.FieldValues))
	for _, v := range target.FieldValues {
		targetValues[v.FieldID] = v
	}

	copied := 0
	// Pairs are applied in order; a target field mapped twice means the later
	// pair wins. The batch is keyed by target field id so the flush carries
	// exactly one row per field.
	batch := make(map[int64]domain.FieldValue)
	order := make([]int64, 0, len(cfg.FieldMapping))

	for _, pair := range cfg.FieldMapping {
		sourceField, ok := sourceFields[strings.ToUpper(strings.TrimSpace(pair.SourceFieldCode))]
		if !ok {
			e.logger.Warn("field copy skipped: source field unresolved",
				"source_field", pair.SourceFieldCode, "form_id", cfg.SourceFormID)
			continue
		}
		targetField, ok := targetFields[strings.ToUpper(strings.TrimSpace(pair.TargetFieldCode))]
		if !ok {
			e.logger.Warn("field copy skipped: target field unresolved",
				"target_field", pair.TargetFieldCode, "form_id", cfg.TargetFormID)
			continue
		}
		if !cfg.CopyCalculatedFields && (sourceField.IsCalculated() || targetField.IsCalculated()) {
			continue
		}
		sourceValue, ok := sourceValues[sourceField.ID]
		if !ok {
			e.logger.Warn("field copy skipped: source has no value",
				"source_field", pair.SourceFieldCode, "submission_id", source.ID)
			continue
		}
		if _, exists := targetValues[targetField.ID]; exists && !cfg.OverrideTargetDefaults {
			continue
		}

		if _, queued := batch[targetField.ID]; !queued {
			order = append(order, targetField.ID)
		}
		batch[targetField.ID] = domain.FieldValue{
			SubmissionID: target.ID,
			FieldID:      targetField.ID,
			FieldCode:    targetField.Code,
			StringValue:  sourceValue.StringValue,
			NumberValue:  sourceValue.NumberValue,
			DateValue:    sourceValue.DateValue,
			BoolValue:    sourceValue.BoolValue,
			JSONValue:    sourceValue.JSONValue,
		}
		copied++
	}

	if len(batch) == 0 {
		return copied, nil
	}
	values := make([]domain.FieldValue, 0, len(batch))
	for _, fieldID := range order {
		values = append(values, batch[fieldID])
	}
	if err := scope.Submissions().UpsertFieldValues(ctx, values); err != nil {
		return 0, fmt.Errorf("write field values: %w", err)
	}
	return copied, nil
}
