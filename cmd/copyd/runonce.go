package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/docbridge-labs/docbridge-go/internal/service/doccopy"
	"gopkg.in/yaml.v3"
)

// runFileSpec is the YAML shape accepted by the -run flag.
type runFileSpec struct {
	Config             domain.CopyConfiguration `yaml:"config"`
	SourceSubmissionID int64                    `yaml:"sourceSubmissionId"`
	ActionID           *int64                   `yaml:"actionId"`
	RuleID             *int64                   `yaml:"ruleId"`
	ExecutedBy         string                   `yaml:"executedBy"`
}

func runOnce(ctx context.Context, logger *slog.Logger, engine *doccopy.Engine, path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read run file", "path", path, "error", err)
		return 2
	}
	var spec runFileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		logger.Error("parse run file", "path", path, "error", err)
		return 2
	}

	result, err := engine.ExecuteCopy(ctx, spec.Config, spec.SourceSubmissionID, doccopy.Options{
		ActionID:   spec.ActionID,
		RuleID:     spec.RuleID,
		ExecutedBy: spec.ExecutedBy,
	})
	if err != nil && !errors.Is(err, doccopy.ErrAuditTrailLost) {
		logger.Error("copy failed", "error", err)
		return 1
	}
	if err != nil {
		logger.Error("copy audit trail lost", "error", err)
	}

	targetID := int64(0)
	if result.TargetDocumentID != nil {
		targetID = *result.TargetDocumentID
	}
	logger.Info("copy finished",
		"success", result.Success,
		"target_document_id", targetID,
		"target_document_number", result.TargetDocumentNumber,
		"fields_copied", result.FieldsCopied,
		"grid_rows_copied", result.GridRowsCopied,
		"error_message", result.ErrorMessage,
	)
	if !result.Success {
		fmt.Fprintln(os.Stderr, result.ErrorMessage)
		return 1
	}
	return 0
}
