package postgres

import (
	"context"
	"fmt"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

type SeriesStore struct {
	db DB
}

func NewSeriesStore(db DB) *SeriesStore {
	if db == nil {
		return nil
	}
	return &SeriesStore{db: db}
}

const seriesColumns = `series_id, document_type_id, project_id, code, next_number, is_default, is_active`

func (s *SeriesStore) GetSeries(ctx context.Context, id int64) (domain.DocumentSeries, error) {
	if s == nil || s.db == nil {
		return domain.DocumentSeries{}, fmt.Errorf("series store not initialized")
	}
	var series domain.DocumentSeries
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+seriesColumns+`
		 FROM document_series
		 WHERE series_id = $1`,
		id,
	)
	if err := scanSeries(row, &series); err != nil {
		return domain.DocumentSeries{}, handleNotFound(err)
	}
	return series, nil
}

func (s *SeriesStore) SelectSeries(ctx context.Context, documentTypeID, projectID int64) (domain.DocumentSeries, error) {
	if s == nil || s.db == nil {
		return domain.DocumentSeries{}, fmt.Errorf("series store not initialized")
	}
	var series domain.DocumentSeries
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+seriesColumns+`
		 FROM document_series
		 WHERE document_type_id = $1 AND project_id = $2 AND is_active = TRUE
		 ORDER BY is_default DESC, code ASC
		 LIMIT 1`,
		documentTypeID,
		projectID,
	)
	if err := scanSeries(row, &series); err != nil {
		return domain.DocumentSeries{}, handleNotFound(err)
	}
	return series, nil
}

func (s *SeriesStore) DefaultSeriesForDocumentType(ctx context.Context, documentTypeID int64) (domain.DocumentSeries, error) {
	if s == nil || s.db == nil {
		return domain.DocumentSeries{}, fmt.Errorf("series store not initialized")
	}
	var series domain.DocumentSeries
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+seriesColumns+`
		 FROM document_series
		 WHERE document_type_id = $1 AND is_active = TRUE
		 ORDER BY is_default DESC, code ASC
		 LIMIT 1`,
		documentTypeID,
	)
	if err := scanSeries(row, &series); err != nil {
		return domain.DocumentSeries{}, handleNotFound(err)
	}
	return series, nil
}

// NextNumber claims the next sequence value with a single atomic increment.
// Concurrent callers each receive a distinct value.
func (s *SeriesStore) NextNumber(ctx context.Context, seriesID int64) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("series store not initialized")
	}
	var claimed int
	err := s.db.QueryRowContext(
		ctx,
		`UPDATE document_series
		 SET next_number = next_number + 1
		 WHERE series_id = $1 AND is_active = TRUE
		 RETURNING next_number - 1`,
		seriesID,
	).Scan(&claimed)
	if err != nil {
		return 0, handleNotFound(err)
	}
	return claimed, nil
}

func scanSeries(row rowScanner, series *domain.DocumentSeries) error {
	return row.Scan(&series.ID, &series.DocumentTypeID, &series.ProjectID,
		&series.Code, &series.NextNumber, &series.IsDefault, &series.IsActive)
}
