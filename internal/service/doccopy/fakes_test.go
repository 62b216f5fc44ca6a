package doccopy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/docbridge-labs/docbridge-go/internal/repo"
	"github.com/docbridge-labs/docbridge-go/internal/workflow"
)

// fakeStore is the shared in-memory state behind one fake Database.
type fakeStore struct {
	mu sync.Mutex

	forms         map[int64]domain.Form
	fieldsByForm  map[int64][]domain.FormField
	gridsByForm   map[int64][]domain.FormGrid
	columnsByGrid map[int64][]domain.GridColumn
	submissions   map[int64]*domain.Submission
	series        map[int64]*domain.DocumentSeries
	audits        []domain.CopyAuditRecord
	links         []documentLink

	nextSubmissionID int64
	nextValueID      int64
	nextRowID        int64
	nextCellID       int64
	nextAuditID      int64

	createSubmissionErrs int
	auditInsertErr       error
	beginErr             error
}

type documentLink struct {
	sourceID, targetID int64
	actionID           *int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		forms:            map[int64]domain.Form{},
		fieldsByForm:     map[int64][]domain.FormField{},
		gridsByForm:      map[int64][]domain.FormGrid{},
		columnsByGrid:    map[int64][]domain.GridColumn{},
		submissions:      map[int64]*domain.Submission{},
		series:           map[int64]*domain.DocumentSeries{},
		nextSubmissionID: 1000,
		nextValueID:      5000,
		nextRowID:        7000,
		nextCellID:       9000,
	}
}

type fakeDatabase struct {
	store *fakeStore
	txs   []*fakeTxScope
}

func newFakeDatabase(store *fakeStore) *fakeDatabase {
	return &fakeDatabase{store: store}
}

func (d *fakeDatabase) Scope() Scope {
	return &fakeScope{store: d.store}
}

func (d *fakeDatabase) Begin(ctx context.Context) (TxScope, error) {
	if d.store.beginErr != nil {
		return nil, d.store.beginErr
	}
	tx := &fakeTxScope{fakeScope: fakeScope{store: d.store}}
	d.txs = append(d.txs, tx)
	return tx, nil
}

type fakeScope struct {
	store *fakeStore
}

func (s *fakeScope) Forms() repo.FormRepository             { return &fakeFormRepo{store: s.store} }
func (s *fakeScope) Submissions() repo.SubmissionRepository { return &fakeSubmissionRepo{store: s.store} }
func (s *fakeScope) Series() repo.SeriesRepository          { return &fakeSeriesRepo{store: s.store} }
func (s *fakeScope) Audit() repo.CopyAuditRepository        { return &fakeAuditRepo{store: s.store} }

type fakeTxScope struct {
	fakeScope
	committed  bool
	rolledBack bool
}

func (s *fakeTxScope) Commit() error {
	s.committed = true
	return nil
}

func (s *fakeTxScope) Rollback() error {
	s.rolledBack = true
	return nil
}

type fakeScopeFactory struct {
	db      *fakeDatabase
	openErr error
	opened  int
}

func (f *fakeScopeFactory) Open(ctx context.Context) (Database, func() error, error) {
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	f.opened++
	return f.db, func() error { return nil }, nil
}

type fakeFormRepo struct {
	store *fakeStore
}

func (r *fakeFormRepo) GetForm(ctx context.Context, id int64) (domain.Form, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	form, ok := r.store.forms[id]
	if !ok || form.IsDeleted {
		return domain.Form{}, repo.ErrNotFound
	}
	return form, nil
}

func (r *fakeFormRepo) ListFields(ctx context.Context, formID int64) ([]domain.FormField, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.FormField, 0)
	for _, f := range r.store.fieldsByForm[formID] {
		if !f.IsDeleted {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) ListGrids(ctx context.Context, formID int64) ([]domain.FormGrid, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.FormGrid, 0)
	for _, g := range r.store.gridsByForm[formID] {
		if !g.IsDeleted {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeFormRepo) ListGridColumns(ctx context.Context, gridID int64) ([]domain.GridColumn, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]domain.GridColumn, 0)
	for _, c := range r.store.columnsByGrid[gridID] {
		if !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	store *fakeStore
}

func (r *fakeSubmissionRepo) GetWithDetails(ctx context.Context, id int64) (domain.Submission, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.submissions[id]
	if !ok || sub.IsDeleted {
		return domain.Submission{}, repo.ErrNotFound
	}
	return cloneSubmission(*sub), nil
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, submission *domain.Submission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := submission.Validate(); err != nil {
		return err
	}
	if r.store.createSubmissionErrs > 0 {
		r.store.createSubmissionErrs--
		return fmt.Errorf("injected create failure")
	}
	for _, existing := range r.store.submissions {
		if !existing.IsDeleted && existing.DocumentNumber == submission.DocumentNumber {
			return fmt.Errorf("duplicate document number %s", submission.DocumentNumber)
		}
	}
	r.store.nextSubmissionID++
	submission.ID = r.store.nextSubmissionID
	stored := cloneSubmission(*submission)
	r.store.submissions[submission.ID] = &stored
	return nil
}

func (r *fakeSubmissionRepo) Update(ctx context.Context, submission *domain.Submission) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.submissions[submission.ID]
	if !ok || stored.IsDeleted {
		return repo.ErrNotFound
	}
	stored.DocumentNumber = submission.DocumentNumber
	stored.SeriesID = submission.SeriesID
	stored.Status = submission.Status
	stored.StageID = submission.StageID
	stored.Version = submission.Version
	stored.SubmittedDate = submission.SubmittedDate
	stored.SubmittedByUserID = submission.SubmittedByUserID
	stored.ModifiedByUserID = submission.ModifiedByUserID
	return nil
}

func (r *fakeSubmissionRepo) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, sub := range r.store.submissions {
		if !sub.IsDeleted && sub.DocumentNumber == documentNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSubmissionRepo) UpsertFieldValues(ctx context.Context, values []domain.FieldValue) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, v := range values {
		sub, ok := r.store.submissions[v.SubmissionID]
		if !ok {
			return repo.ErrNotFound
		}
		replaced := false
		for i := range sub.FieldValues {
			if sub.FieldValues[i].FieldID == v.FieldID {
				v.ID = sub.FieldValues[i].ID
				sub.FieldValues[i] = v
				replaced = true
				break
			}
		}
		if !replaced {
			r.store.nextValueID++
			v.ID = r.store.nextValueID
			sub.FieldValues = append(sub.FieldValues, v)
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) CreateGridRow(ctx context.Context, row *domain.GridRow) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.submissions[row.SubmissionID]
	if !ok {
		return repo.ErrNotFound
	}
	r.store.nextRowID++
	row.ID = r.store.nextRowID
	sub.GridRows = append(sub.GridRows, *row)
	return nil
}

func (r *fakeSubmissionRepo) CreateGridCells(ctx context.Context, cells []domain.GridCell) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, cell := range cells {
		r.store.nextCellID++
		cell.ID = r.store.nextCellID
		attached := false
		for _, sub := range r.store.submissions {
			for i := range sub.GridRows {
				if sub.GridRows[i].ID == cell.RowID {
					sub.GridRows[i].Cells = append(sub.GridRows[i].Cells, cell)
					attached = true
				}
			}
		}
		if !attached {
			return fmt.Errorf("grid row %d not found", cell.RowID)
		}
	}
	return nil
}

func (r *fakeSubmissionRepo) CreateAttachment(ctx context.Context, attachment *domain.Attachment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sub, ok := r.store.submissions[attachment.SubmissionID]
	if !ok {
		return repo.ErrNotFound
	}
	r.store.nextValueID++
	attachment.ID = r.store.nextValueID
	sub.Attachments = append(sub.Attachments, *attachment)
	return nil
}

func (r *fakeSubmissionRepo) LinkDocuments(ctx context.Context, sourceID, targetID int64, actionID *int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.links = append(r.store.links, documentLink{sourceID: sourceID, targetID: targetID, actionID: actionID})
	return nil
}

type fakeSeriesRepo struct {
	store *fakeStore
}

func (r *fakeSeriesRepo) GetSeries(ctx context.Context, id int64) (domain.DocumentSeries, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	series, ok := r.store.series[id]
	if !ok {
		return domain.DocumentSeries{}, repo.ErrNotFound
	}
	return *series, nil
}

func (r *fakeSeriesRepo) SelectSeries(ctx context.Context, documentTypeID, projectID int64) (domain.DocumentSeries, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	candidates := make([]domain.DocumentSeries, 0)
	for _, s := range r.store.series {
		if s.DocumentTypeID == documentTypeID && s.ProjectID == projectID && s.IsActive {
			candidates = append(candidates, *s)
		}
	}
	return pickSeries(candidates)
}

func (r *fakeSeriesRepo) DefaultSeriesForDocumentType(ctx context.Context, documentTypeID int64) (domain.DocumentSeries, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	candidates := make([]domain.DocumentSeries, 0)
	for _, s := range r.store.series {
		if s.DocumentTypeID == documentTypeID && s.IsActive {
			candidates = append(candidates, *s)
		}
	}
	return pickSeries(candidates)
}

func pickSeries(candidates []domain.DocumentSeries) (domain.DocumentSeries, error) {
	if len(candidates) == 0 {
		return domain.DocumentSeries{}, repo.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].IsDefault != candidates[j].IsDefault {
			return candidates[i].IsDefault
		}
		return candidates[i].Code < candidates[j].Code
	})
	return candidates[0], nil
}

func (r *fakeSeriesRepo) NextNumber(ctx context.Context, seriesID int64) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	series, ok := r.store.series[seriesID]
	if !ok || !series.IsActive {
		return 0, repo.ErrNotFound
	}
	claimed := series.NextNumber
	series.NextNumber++
	return claimed, nil
}

type fakeAuditRepo struct {
	store *fakeStore
}

func (r *fakeAuditRepo) Insert(ctx context.Context, record domain.CopyAuditRecord) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.auditInsertErr != nil {
		return 0, r.store.auditInsertErr
	}
	r.store.nextAuditID++
	record.ID = r.store.nextAuditID
	r.store.audits = append(r.store.audits, record)
	return record.ID, nil
}

func (r *fakeAuditRepo) Get(ctx context.Context, id int64) (domain.CopyAuditRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.audits {
		if rec.ID == id {
			return rec, nil
		}
	}
	return domain.CopyAuditRecord{}, repo.ErrNotFound
}

func cloneSubmission(sub domain.Submission) domain.Submission {
	out := sub
	out.FieldValues = append([]domain.FieldValue(nil), sub.FieldValues...)
	out.Attachments = append([]domain.Attachment(nil), sub.Attachments...)
	out.GridRows = make([]domain.GridRow, len(sub.GridRows))
	for i, row := range sub.GridRows {
		out.GridRows[i] = row
		out.GridRows[i].Cells = append([]domain.GridCell(nil), row.Cells...)
	}
	return out
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
	saved []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) FileExists(ctx context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeFileStore) GetFile(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFileStore) SaveFile(ctx context.Context, path string, body io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	f.saved = append(f.saved, path)
	return path, nil
}

type fakeWorkflow struct {
	resp  workflow.SubmitResponse
	err   error
	calls []int64
}

func (w *fakeWorkflow) Submit(ctx context.Context, submissionID int64, submittedBy string) (workflow.SubmitResponse, error) {
	w.calls = append(w.calls, submissionID)
	if w.err != nil {
		return workflow.SubmitResponse{}, w.err
	}
	return w.resp, nil
}

func containsMessage(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
