package doccopy

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// copyGrids clones grid rows between mapped grids. Grids and columns are
// matched by case-insensitive code, never by id; each cloned row keeps its
// RowIndex but is re-pointed at the target grid, and cells whose column has
// no counterpart in the target grid are dropped silently.
func (e *Engine) copyGrids(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source, target *domain.Submission) (int, error) {
	sourceGrids, err := scope.Forms().ListGrids(ctx, cfg.SourceFormID)
	if err != nil {
		return 0, fmt.Errorf("load grids of source form %d: %w", cfg.SourceFormID, err)
	}
	targetGrids, err := scope.Forms().ListGrids(ctx, cfg.TargetFormID)
	if err != nil {
		return 0, fmt.Errorf("load grids of target form %d: %w", cfg.TargetFormID, err)
	}

	sourceGridByCode := make(map[string]domain.FormGrid, len(sourceGrids))
	sourceCodeByID := make(map[int64]string, len(sourceGrids))
	for _, g := range sourceGrids {
		code := strings.ToUpper(strings.TrimSpace(g.Code))
		sourceGridByCode[code] = g
		sourceCodeByID[g.ID] = code
	}
	targetGridByCode := make(map[string]domain.FormGrid, len(targetGrids))
	for _, g := range targetGrids {
		targetGridByCode[strings.ToUpper(strings.TrimSpace(g.Code))] = g
	}

	rowsByGridCode := make(map[string][]domain.GridRow)
	for _, row := range source.GridRows {
		code, ok := sourceCodeByID[row.GridID]
		if !ok {
			continue
		}
		rowsByGridCode[code] = append(rowsByGridCode[code], row)
	}

	copied := 0
	for _, pair := range cfg.GridMapping {
		sourceCode := strings.ToUpper(strings.TrimSpace(pair.SourceGridCode))
		targetCode := strings.ToUpper(strings.TrimSpace(pair.TargetGridCode))

		sourceGrid, ok := sourceGridByCode[sourceCode]
		if !ok {
			e.logger.Warn("grid copy skipped: source grid unresolved",
				"source_grid", pair.SourceGridCode, "form_id", cfg.SourceFormID)
			continue
		}
		targetGrid, ok := targetGridByCode[targetCode]
		if !ok {
			e.logger.Warn("grid copy skipped: target grid unresolved",
				"target_grid", pair.TargetGridCode, "form_id", cfg.TargetFormID)
			continue
		}

		sourceColumns, err := scope.Forms().ListGridColumns(ctx, sourceGrid.ID)
		if err != nil {
			return copied, fmt.Errorf("load columns of grid %d: %w", sourceGrid.ID, err)
		}
		sourceColumnCode := make(map[int64]string, len(sourceColumns))
		for _, c := range sourceColumns {
			sourceColumnCode[c.ID] = strings.ToUpper(strings.TrimSpace(c.Code))
		}

		targetColumnList, err := scope.Forms().ListGridColumns(ctx, targetGrid.ID)
		if err != nil {
			return copied, fmt.Errorf("load columns of grid %d: %w", targetGrid.ID, err)
		}
		targetColumns := domain.IndexColumnsByCode(targetColumnList)

		for _, sourceRow := range rowsByGridCode[sourceCode] {
			newRow := &domain.GridRow{
				SubmissionID: target.ID,
				GridID:       targetGrid.ID,
				RowIndex:     sourceRow.RowIndex,
			}
			// The row is persisted before its cells so they can reference its id.
			if err := scope.Submissions().CreateGridRow(ctx, newRow); err != nil {
				return copied, fmt.Errorf("clone grid row %d: %w", sourceRow.ID, err)
			}

			cells := make([]domain.GridCell, 0, len(sourceRow.Cells))
			for _, cell := range sourceRow.Cells {
				code, ok := sourceColumnCode[cell.ColumnID]
				if !ok {
					continue
				}
				targetColumn, ok := targetColumns[code]
				if !ok {
					continue
				}
				cells = append(cells, domain.GridCell{
					RowID:       newRow.ID,
					ColumnID:    targetColumn.ID,
					StringValue: cell.StringValue,
					NumberValue: cell.NumberValue,
					DateValue:   cell.DateValue,
					BoolValue:   cell.BoolValue,
					JSONValue:   cell.JSONValue,
				})
			}
			if err := scope.Submissions().CreateGridCells(ctx, cells); err != nil {
				return copied, fmt.Errorf("clone cells of grid row %d: %w", sourceRow.ID, err)
			}
			copied++
		}
	}
	return copied, nil
}
