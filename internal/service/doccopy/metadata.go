package doccopy

import (
	"context"
	"fmt"
	"strings"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
)

// Metadata field names accepted by the copy allow-list.
const (
	metaSubmittedDate     = "SubmittedDate"
	metaSubmittedByUserID = "SubmittedByUserId"
	metaStatus            = "Status"
	metaStageID           = "StageId"
	metaDocumentNumber    = "DocumentNumber"
	metaSeriesID          = "SeriesId"
	metaVersion           = "Version"
)

// copyMetadata applies the caller's allow-list of metadata fields from source
// to target. DocumentNumber, SeriesId and Version are never copied onto a
// newly created document: its numbering is series-driven and must survive.
func (e *Engine) copyMetadata(ctx context.Context, scope Scope, cfg domain.CopyConfiguration, source, target *domain.Submission, createdNew bool, opts Options) error {
	if len(cfg.MetadataFields) == 0 {
		return nil
	}

	changed := false
	for _, name := range cfg.MetadataFields {
		switch {
		case strings.EqualFold(name, metaSubmittedDate):
			target.SubmittedDate = source.SubmittedDate
			changed = true
		case strings.EqualFold(name, metaSubmittedByUserID):
			target.SubmittedByUserID = source.SubmittedByUserID
			changed = true
		case strings.EqualFold(name, metaStatus):
			target.Status = domain.NormalizeStatus(source.Status)
			changed = true
		case strings.EqualFold(name, metaStageID):
			target.StageID = source.StageID
			changed = true
		case strings.EqualFold(name, metaDocumentNumber):
			if !createdNew {
				target.DocumentNumber = source.DocumentNumber
				changed = true
			}
		case strings.EqualFold(name, metaSeriesID):
			if !createdNew {
				target.SeriesID = source.SeriesID
				changed = true
			}
		case strings.EqualFold(name, metaVersion):
			if !createdNew {
				target.Version = source.Version
				changed = true
			}
		default:
			e.logger.Warn("metadata copy skipped: unrecognized field", "field", name)
		}
	}
	if !changed {
		return nil
	}

	target.ModifiedByUserID = opts.ExecutedBy
	if target.ModifiedByUserID == "" {
		target.ModifiedByUserID = "system"
	}
	if err := scope.Submissions().Update(ctx, target); err != nil {
		return fmt.Errorf("write metadata to target %d: %w", target.ID, err)
	}
	return nil
}
