package doccopy

import (
	"context"
	"fmt"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/google/uuid"
)

// copyAttachments clones the source's non-deleted attachments by streaming
// each file through the storage collaborator into a path namespaced by the
// target's document number. A single attachment failing is logged and
// skipped; it never aborts the remaining attachments or the overall copy.
func (e *Engine) copyAttachments(ctx context.Context, scope Scope, source, target *domain.Submission, opts Options) error {
	if len(source.Attachments) == 0 {
		return nil
	}
	if e.files == nil {
		return fmt.Errorf("attachment copy requested but no file storage is configured")
	}

	createdBy := opts.ExecutedBy
	if createdBy == "" {
		createdBy = "system"
	}

	for _, att := range source.Attachments {
		if att.IsDeleted {
			continue
		}
		if err := e.copyAttachment(ctx, scope, att, target, createdBy); err != nil {
			e.logger.Warn("attachment copy skipped",
				"attachment_id", att.ID, "file_name", att.FileName, "error", err)
		}
	}
	return nil
}

func (e *Engine) copyAttachment(ctx context.Context, scope Scope, att domain.Attachment, target *domain.Submission, createdBy string) error {
	exists, err := e.files.FileExists(ctx, att.FilePath)
	if err != nil {
		return fmt.Errorf("stat source file: %w", err)
	}
	if !exists {
		return fmt.Errorf("source file missing: %s", att.FilePath)
	}

	body, err := e.files.GetFile(ctx, att.FilePath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer func() { _ = body.Close() }()

	destination := fmt.Sprintf("%s/%s_%s", target.DocumentNumber, uuid.NewString(), att.FileName)
	storedPath, err := e.files.SaveFile(ctx, destination, body, att.Size, att.ContentType)
	if err != nil {
		return fmt.Errorf("save file: %w", err)
	}

	clone := &domain.Attachment{
		SubmissionID:    target.ID,
		FieldID:         att.FieldID,
		FileName:        att.FileName,
		FilePath:        storedPath,
		ContentType:     att.ContentType,
		Size:            att.Size,
		CreatedDate:     e.now().UTC(),
		CreatedByUserID: createdBy,
	}
	if err := scope.Submissions().CreateAttachment(ctx, clone); err != nil {
		return fmt.Errorf("insert attachment row: %w", err)
	}
	return nil
}
