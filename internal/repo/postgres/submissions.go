package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/docbridge-labs/docbridge-go/internal/repo"
)

type SubmissionStore struct {
	db DB
}

func NewSubmissionStore(db DB) *SubmissionStore {
	if db == nil {
		return nil
	}
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) GetWithDetails(ctx context.Context, id int64) (domain.Submission, error) {
	if s == nil || s.db == nil {
		return domain.Submission{}, fmt.Errorf("submission store not initialized")
	}
	sub, err := s.get(ctx, id)
	if err != nil {
		return domain.Submission{}, err
	}
	if sub.FieldValues, err = s.listFieldValues(ctx, id); err != nil {
		return domain.Submission{}, err
	}
	if sub.GridRows, err = s.listGridRows(ctx, id); err != nil {
		return domain.Submission{}, err
	}
	if sub.Attachments, err = s.listAttachments(ctx, id); err != nil {
		return domain.Submission{}, err
	}
	return sub, nil
}

func (s *SubmissionStore) get(ctx context.Context, id int64) (domain.Submission, error) {
	var sub domain.Submission
	row := s.db.QueryRowContext(
		ctx,
		`SELECT submission_id, form_id, document_type_id, project_id, series_id,
			document_number, status, stage_id, version, submitted_date, submitted_by_user_id,
			created_date, created_by_user_id, modified_date, modified_by_user_id, is_deleted
		 FROM submissions
		 WHERE submission_id = $1 AND is_deleted = FALSE`,
		id,
	)
	var stage sql.NullInt64
	var submitted, modified sql.NullTime
	var submittedByNull, modifiedByNull sql.NullString
	if err := row.Scan(&sub.ID, &sub.FormID, &sub.DocumentTypeID, &sub.ProjectID, &sub.SeriesID,
		&sub.DocumentNumber, &sub.Status, &stage, &sub.Version, &submitted, &submittedByNull,
		&sub.CreatedDate, &sub.CreatedByUserID, &modified, &modifiedByNull, &sub.IsDeleted); err != nil {
		return domain.Submission{}, handleNotFound(err)
	}
	sub.StageID = int64Ptr(stage)
	sub.SubmittedDate = timePtr(submitted)
	sub.ModifiedDate = timePtr(modified)
	if submittedByNull.Valid {
		sub.SubmittedByUserID = submittedByNull.String
	}
	if modifiedByNull.Valid {
		sub.ModifiedByUserID = modifiedByNull.String
	}
	return sub, nil
}

func (s *SubmissionStore) Create(ctx context.Context, submission *domain.Submission) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if submission == nil {
		return fmt.Errorf("submission is required")
	}
	if err := submission.Validate(); err != nil {
		return err
	}
	createdDate := normalizeTime(submission.CreatedDate)
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO submissions (
			form_id, document_type_id, project_id, series_id, document_number,
			status, stage_id, version, submitted_date, submitted_by_user_id,
			created_date, created_by_user_id, is_deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,FALSE)
		RETURNING submission_id`,
		submission.FormID,
		submission.DocumentTypeID,
		submission.ProjectID,
		submission.SeriesID,
		strings.TrimSpace(submission.DocumentNumber),
		submission.Status,
		nullInt64(submission.StageID),
		submission.Version,
		nullTime(submission.SubmittedDate),
		nullIfEmpty(submission.SubmittedByUserID),
		createdDate,
		strings.TrimSpace(submission.CreatedByUserID),
	).Scan(&submission.ID)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	submission.CreatedDate = createdDate
	return nil
}

func (s *SubmissionStore) Update(ctx context.Context, submission *domain.Submission) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("submission id is required")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE submissions SET
			document_number = $1,
			series_id = $2,
			status = $3,
			stage_id = $4,
			version = $5,
			submitted_date = $6,
			submitted_by_user_id = $7,
			modified_date = NOW(),
			modified_by_user_id = $8
		 WHERE submission_id = $9 AND is_deleted = FALSE`,
		strings.TrimSpace(submission.DocumentNumber),
		submission.SeriesID,
		submission.Status,
		nullInt64(submission.StageID),
		submission.Version,
		nullTime(submission.SubmittedDate),
		nullIfEmpty(submission.SubmittedByUserID),
		nullIfEmpty(submission.ModifiedByUserID),
		submission.ID,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if rows == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *SubmissionStore) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("submission store not initialized")
	}
	var exists bool
	err := s.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE document_number = $1 AND is_deleted = FALSE
		)`,
		strings.TrimSpace(documentNumber),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("document number exists: %w", err)
	}
	return exists, nil
}

func (s *SubmissionStore) listFieldValues(ctx context.Context, submissionID int64) ([]domain.FieldValue, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT value_id, submission_id, field_id, field_code,
			string_value, number_value, date_value, bool_value, json_value
		 FROM field_values
		 WHERE submission_id = $1
		 ORDER BY value_id`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list field values: %w", err)
	}
	defer rows.Close()

	values := make([]domain.FieldValue, 0)
	for rows.Next() {
		v, err := scanFieldValue(rows)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list field values: %w", err)
	}
	return values, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFieldValue(row rowScanner) (domain.FieldValue, error) {
	var v domain.FieldValue
	var str sql.NullString
	var num sql.NullFloat64
	var date sql.NullTime
	var b sql.NullBool
	if err := row.Scan(&v.ID, &v.SubmissionID, &v.FieldID, &v.FieldCode,
		&str, &num, &date, &b, &v.JSONValue); err != nil {
		return domain.FieldValue{}, fmt.Errorf("scan field value: %w", err)
	}
	v.StringValue = stringPtr(str)
	v.NumberValue = floatPtr(num)
	v.DateValue = timePtr(date)
	v.BoolValue = boolPtr(b)
	return v, nil
}

func (s *SubmissionStore) listGridRows(ctx context.Context, submissionID int64) ([]domain.GridRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT row_id, submission_id, grid_id, row_index
		 FROM grid_rows
		 WHERE submission_id = $1
		 ORDER BY grid_id, row_index`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grid rows: %w", err)
	}
	defer rows.Close()

	gridRows := make([]domain.GridRow, 0)
	for rows.Next() {
		var r domain.GridRow
		if err := rows.Scan(&r.ID, &r.SubmissionID, &r.GridID, &r.RowIndex); err != nil {
			return nil, fmt.Errorf("scan grid row: %w", err)
		}
		gridRows = append(gridRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grid rows: %w", err)
	}
	for i := range gridRows {
		cells, err := s.listGridCells(ctx, gridRows[i].ID)
		if err != nil {
			return nil, err
		}
		gridRows[i].Cells = cells
	}
	return gridRows, nil
}

func (s *SubmissionStore) listGridCells(ctx context.Context, rowID int64) ([]domain.GridCell, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT cell_id, row_id, column_id,
			string_value, number_value, date_value, bool_value, json_value
		 FROM grid_cells
		 WHERE row_id = $1
		 ORDER BY cell_id`,
		rowID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grid cells: %w", err)
	}
	defer rows.Close()

	cells := make([]domain.GridCell, 0)
	for rows.Next() {
		var c domain.GridCell
		var str sql.NullString
		var num sql.NullFloat64
		var date sql.NullTime
		var b sql.NullBool
		if err := rows.Scan(&c.ID, &c.RowID, &c.ColumnID, &str, &num, &date, &b, &c.JSONValue); err != nil {
			return nil, fmt.Errorf("scan grid cell: %w", err)
		}
		c.StringValue = stringPtr(str)
		c.NumberValue = floatPtr(num)
		c.DateValue = timePtr(date)
		c.BoolValue = boolPtr(b)
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grid cells: %w", err)
	}
	return cells, nil
}

func (s *SubmissionStore) listAttachments(ctx context.Context, submissionID int64) ([]domain.Attachment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT attachment_id, submission_id, field_id, file_name, file_path,
			content_type, size, created_date, created_by_user_id, is_deleted
		 FROM attachments
		 WHERE submission_id = $1 AND is_deleted = FALSE
		 ORDER BY attachment_id`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]domain.Attachment, 0)
	for rows.Next() {
		var a domain.Attachment
		var fieldID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.SubmissionID, &fieldID, &a.FileName, &a.FilePath,
			&a.ContentType, &a.Size, &a.CreatedDate, &a.CreatedByUserID, &a.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		a.FieldID = int64Ptr(fieldID)
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// UpsertFieldValues writes one batch of field values for a submission in a
// single round-trip. Existing (submission, field) rows are overwritten.
func (s *SubmissionStore) UpsertFieldValues(ctx context.Context, values []domain.FieldValue) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if len(values) == 0 {
		return nil
	}
	query := strings.Builder{}
	query.WriteString(`INSERT INTO field_values (
		submission_id, field_id, field_code,
		string_value, number_value, date_value, bool_value, json_value
	) VALUES `)
	args := make([]any, 0, len(values)*8)
	for i, v := range values {
		if i > 0 {
			query.WriteString(",")
		}
		base := i * 8
		fmt.Fprintf(&query, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8)
		args = append(args,
			v.SubmissionID,
			v.FieldID,
			strings.TrimSpace(v.FieldCode),
			nullString(v.StringValue),
			nullFloat(v.NumberValue),
			nullTime(v.DateValue),
			nullBool(v.BoolValue),
			v.JSONValue,
		)
	}
	query.WriteString(` ON CONFLICT (submission_id, field_id) DO UPDATE SET
		field_code = EXCLUDED.field_code,
		string_value = EXCLUDED.string_value,
		number_value = EXCLUDED.number_value,
		date_value = EXCLUDED.date_value,
		bool_value = EXCLUDED.bool_value,
		json_value = EXCLUDED.json_value`)
	if _, err := s.db.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("upsert field values: %w", err)
	}
	return nil
}

func (s *SubmissionStore) CreateGridRow(ctx context.Context, row *domain.GridRow) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if row == nil {
		return fmt.Errorf("grid row is required")
	}
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO grid_rows (submission_id, grid_id, row_index)
		 VALUES ($1,$2,$3)
		 RETURNING row_id`,
		row.SubmissionID,
		row.GridID,
		row.RowIndex,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("insert grid row: %w", err)
	}
	return nil
}

func (s *SubmissionStore) CreateGridCells(ctx context.Context, cells []domain.GridCell) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if len(cells) == 0 {
		return nil
	}
	query := strings.Builder{}
	query.WriteString(`INSERT INTO grid_cells (
		row_id, column_id, string_value, number_value, date_value, bool_value, json_value
	) VALUES `)
	args := make([]any, 0, len(cells)*7)
	for i, c := range cells {
		if i > 0 {
			query.WriteString(",")
		}
		base := i * 7
		fmt.Fprintf(&query, "($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			c.RowID,
			c.ColumnID,
			nullString(c.StringValue),
			nullFloat(c.NumberValue),
			nullTime(c.DateValue),
			nullBool(c.BoolValue),
			c.JSONValue,
		)
	}
	if _, err := s.db.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert grid cells: %w", err)
	}
	return nil
}

func (s *SubmissionStore) CreateAttachment(ctx context.Context, attachment *domain.Attachment) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	if attachment == nil {
		return fmt.Errorf("attachment is required")
	}
	createdDate := normalizeTime(attachment.CreatedDate)
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO attachments (
			submission_id, field_id, file_name, file_path, content_type, size,
			created_date, created_by_user_id, is_deleted
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE)
		RETURNING attachment_id`,
		attachment.SubmissionID,
		nullInt64(attachment.FieldID),
		strings.TrimSpace(attachment.FileName),
		strings.TrimSpace(attachment.FilePath),
		strings.TrimSpace(attachment.ContentType),
		attachment.Size,
		createdDate,
		strings.TrimSpace(attachment.CreatedByUserID),
	).Scan(&attachment.ID)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	attachment.CreatedDate = createdDate
	return nil
}

func (s *SubmissionStore) LinkDocuments(ctx context.Context, sourceID, targetID int64, actionID *int64) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("submission store not initialized")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO document_links (source_submission_id, target_submission_id, action_id, created_date)
		 VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (source_submission_id, target_submission_id) DO NOTHING`,
		sourceID,
		targetID,
		nullInt64(actionID),
	)
	if err != nil {
		return fmt.Errorf("link documents: %w", err)
	}
	return nil
}
