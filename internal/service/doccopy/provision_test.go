package doccopy

import (
	"context"
	"testing"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

func TestCreateTargetRetriesOnNumberCollision(t *testing.T) {
	store := seedStore()
	// INV-000001 is already taken by a document the counter never saw.
	store.submissions[600] = &domain.Submission{
		ID: 600, FormID: invoiceFormID, DocumentTypeID: invoiceDocType,
		ProjectID: projectID, SeriesID: invSeriesID,
		DocumentNumber: "INV-000001", Status: domain.StatusDraft, Version: 1,
	}
	engine, _ := newTestEngine(t, store, Deps{})
	slept := 0
	engine.sleep = func(time.Duration) { slept++ }

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if !result.Success {
		t.Fatalf("copy failed: %s", result.ErrorMessage)
	}
	if result.TargetDocumentNumber != "INV-000002" {
		t.Fatalf("TargetDocumentNumber = %q, want INV-000002 after one collision", result.TargetDocumentNumber)
	}
	if slept != 1 {
		t.Fatalf("backoff calls = %d, want 1", slept)
	}
}

func TestCreateTargetExhaustsNumberRetries(t *testing.T) {
	store := seedStore()
	// Every number the series can hand out in ten attempts is taken.
	for i := 1; i <= maxNumberRetries; i++ {
		id := int64(600 + i)
		store.submissions[id] = &domain.Submission{
			ID: id, FormID: invoiceFormID, DocumentTypeID: invoiceDocType,
			ProjectID: projectID, SeriesID: invSeriesID,
			DocumentNumber: domain.FormatDocumentNumber("INV", i),
			Status:         domain.StatusDraft, Version: 1,
		}
	}
	engine, db := newTestEngine(t, store, Deps{})
	slept := 0
	engine.sleep = func(time.Duration) { slept++ }

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if result.Success {
		t.Fatal("copy succeeded despite exhausted numbering retries")
	}
	if !containsMessage(result.ErrorMessage, "unique document number") {
		t.Fatalf("ErrorMessage = %q", result.ErrorMessage)
	}
	if slept != maxNumberRetries {
		t.Fatalf("backoff calls = %d, want %d", slept, maxNumberRetries)
	}
	if len(db.txs) == 0 || !db.txs[0].rolledBack {
		t.Fatal("failed provisioning did not roll back")
	}
}

func TestCreateTargetRetriesFailedInsert(t *testing.T) {
	store := seedStore()
	store.createSubmissionErrs = 2
	engine, _ := newTestEngine(t, store, Deps{})

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if !result.Success {
		t.Fatalf("copy failed: %s", result.ErrorMessage)
	}
	// Two inserts burned a number each before the third succeeded.
	if result.TargetDocumentNumber != "INV-000003" {
		t.Fatalf("TargetDocumentNumber = %q, want INV-000003", result.TargetDocumentNumber)
	}
}

func TestCreateTargetSubmittedInitialStatus(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(t, store, Deps{})

	cfg := baseConfig()
	cfg.InitialStatus = domain.StatusSubmitted

	result, err := engine.ExecuteCopy(context.Background(), cfg, sourceSubID, Options{ExecutedBy: "alice"})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if !result.Success {
		t.Fatalf("copy failed: %s", result.ErrorMessage)
	}
	target := store.submissions[*result.TargetDocumentID]
	if target.Status != domain.StatusSubmitted {
		t.Fatalf("status = %q, want Submitted", target.Status)
	}
	if target.SubmittedDate == nil || target.SubmittedByUserID != "alice" {
		t.Fatalf("submitted stamp missing: date=%v by=%q", target.SubmittedDate, target.SubmittedByUserID)
	}
}

func TestCreateTargetUnknownInitialStatusBecomesDraft(t *testing.T) {
	store := seedStore()
	engine, _ := newTestEngine(t, store, Deps{})

	cfg := baseConfig()
	cfg.InitialStatus = "Approved"

	result, err := engine.ExecuteCopy(context.Background(), cfg, sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	target := store.submissions[*result.TargetDocumentID]
	if target.Status != domain.StatusDraft {
		t.Fatalf("status = %q, want Draft for an unrecognized initial status", target.Status)
	}
	if target.SubmittedDate != nil {
		t.Fatal("draft document carries a submitted date")
	}
}

func TestResolveProjectPrefersSourceSeriesProject(t *testing.T) {
	store := seedStore()
	// The source's series lives in a different project than the source row claims.
	store.series[orderSeriesID].ProjectID = 9
	store.series[9] = &domain.DocumentSeries{
		ID: 9, DocumentTypeID: invoiceDocType, ProjectID: 9,
		Code: "INV9", NextNumber: 1, IsDefault: true, IsActive: true,
	}
	engine, _ := newTestEngine(t, store, Deps{})

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if !result.Success {
		t.Fatalf("copy failed: %s", result.ErrorMessage)
	}
	target := store.submissions[*result.TargetDocumentID]
	if target.ProjectID != 9 {
		t.Fatalf("project = %d, want the source series' project 9", target.ProjectID)
	}
	if target.SeriesID != 9 {
		t.Fatalf("series = %d, want the project-local series 9", target.SeriesID)
	}
}

func TestResolveProjectFallsBackToSourceProject(t *testing.T) {
	store := seedStore()
	store.submissions[sourceSubID].SeriesID = 0
	engine, _ := newTestEngine(t, store, Deps{})

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if !result.Success {
		t.Fatalf("copy failed: %s", result.ErrorMessage)
	}
	target := store.submissions[*result.TargetDocumentID]
	if target.ProjectID != projectID {
		t.Fatalf("project = %d, want the source's own project %d", target.ProjectID, projectID)
	}
}

func TestCreateTargetNoSeriesAvailable(t *testing.T) {
	store := seedStore()
	store.series[invSeriesID].IsActive = false
	engine, _ := newTestEngine(t, store, Deps{})

	result, err := engine.ExecuteCopy(context.Background(), baseConfig(), sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if result.Success {
		t.Fatal("copy succeeded with no active series for the target type")
	}
	if !containsMessage(result.ErrorMessage, "select series") {
		t.Fatalf("ErrorMessage = %q", result.ErrorMessage)
	}
}

func TestLoadExistingTargetValidatesShape(t *testing.T) {
	store := seedStore()
	store.submissions[700] = &domain.Submission{
		ID: 700, FormID: orderFormID, DocumentTypeID: orderDocType,
		ProjectID: projectID, DocumentNumber: "ORD-000099",
		Status: domain.StatusDraft, Version: 1,
	}
	engine, _ := newTestEngine(t, store, Deps{})

	cfg := baseConfig()
	cfg.CreateNewDocument = false
	cfg.TargetDocumentID = 700

	result, err := engine.ExecuteCopy(context.Background(), cfg, sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if result.Success {
		t.Fatal("copy accepted a target document of the wrong form")
	}
	if !containsMessage(result.ErrorMessage, "belongs to form") {
		t.Fatalf("ErrorMessage = %q", result.ErrorMessage)
	}

	cfg.TargetDocumentID = 9999
	result, err = engine.ExecuteCopy(context.Background(), cfg, sourceSubID, Options{})
	if err != nil {
		t.Fatalf("ExecuteCopy: %v", err)
	}
	if result.Success {
		t.Fatal("copy accepted a missing target document")
	}
	if !containsMessage(result.ErrorMessage, "load target document") {
		t.Fatalf("ErrorMessage = %q", result.ErrorMessage)
	}
}
