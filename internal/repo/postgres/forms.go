package postgres

import (
	"context"
	"fmt"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

type FormStore struct {
	db DB
}

func NewFormStore(db DB) *FormStore {
	if db == nil {
		return nil
	}
	return &FormStore{db: db}
}

func (s *FormStore) GetForm(ctx context.Context, id int64) (domain.Form, error) {
	if s == nil || s.db == nil {
		return domain.Form{}, fmt.Errorf("form store not initialized")
	}
	var form domain.Form
	row := s.db.QueryRowContext(
		ctx,
		`SELECT form_id, document_type_id, code, name, is_deleted
		 FROM forms
		 WHERE form_id = $1 AND is_deleted = FALSE`,
		id,
	)
	if err := row.Scan(&form.ID, &form.DocumentTypeID, &form.Code, &form.Name, &form.IsDeleted); err != nil {
		return domain.Form{}, handleNotFound(err)
	}
	return form, nil
}

func (s *FormStore) ListFields(ctx context.Context, formID int64) ([]domain.FormField, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("form store not initialized")
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT field_id, form_id, code, name, field_type, COALESCE(expression, ''), is_deleted
		 FROM form_fields
		 WHERE form_id = $1 AND is_deleted = FALSE
		 ORDER BY field_id`,
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()

	fields := make([]domain.FormField, 0)
	for rows.Next() {
		var f domain.FormField
		if err := rows.Scan(&f.ID, &f.FormID, &f.Code, &f.Name, &f.FieldType, &f.Expression, &f.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	return fields, nil
}

func (s *FormStore) ListGrids(ctx context.Context, formID int64) ([]domain.FormGrid, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("form store not initialized")
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT grid_id, form_id, code, name, is_deleted
		 FROM form_grids
		 WHERE form_id = $1 AND is_deleted = FALSE
		 ORDER BY grid_id`,
		formID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	defer rows.Close()

	grids := make([]domain.FormGrid, 0)
	for rows.Next() {
		var g domain.FormGrid
		if err := rows.Scan(&g.ID, &g.FormID, &g.Code, &g.Name, &g.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan grid: %w", err)
		}
		grids = append(grids, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	return grids, nil
}

func (s *FormStore) ListGridColumns(ctx context.Context, gridID int64) ([]domain.GridColumn, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("form store not initialized")
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT column_id, grid_id, code, name, field_type, is_deleted
		 FROM grid_columns
		 WHERE grid_id = $1 AND is_deleted = FALSE
		 ORDER BY column_id`,
		gridID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grid columns: %w", err)
	}
	defer rows.Close()

	columns := make([]domain.GridColumn, 0)
	for rows.Next() {
		var c domain.GridColumn
		if err := rows.Scan(&c.ID, &c.GridID, &c.Code, &c.Name, &c.FieldType, &c.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan grid column: %w", err)
		}
		columns = append(columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grid columns: %w", err)
	}
	return columns, nil
}
