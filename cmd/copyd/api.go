package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/docbridge-labs/docbridge-go/internal/domain"
	"github.com/docbridge-labs/docbridge-go/internal/platform/httpserver"
	"github.com/docbridge-labs/docbridge-go/internal/service/doccopy"
	"github.com/go-chi/chi/v5"
)

type copyAPI struct {
	logger *slog.Logger
	engine *doccopy.Engine
}

func newCopyAPI(logger *slog.Logger, engine *doccopy.Engine) *copyAPI {
	return &copyAPI{logger: logger, engine: engine}
}

func (api *copyAPI) register(r chi.Router) {
	r.Post("/v1/copy", api.handleExecuteCopy)
}

type copyRequest struct {
	Config             domain.CopyConfiguration `json:"config"`
	SourceSubmissionID int64                    `json:"sourceSubmissionId"`
	ActionID           *int64                   `json:"actionId,omitempty"`
	RuleID             *int64                   `json:"ruleId,omitempty"`
	ExecutedBy         string                   `json:"executedBy,omitempty"`
}

type copyResponse struct {
	Result         domain.CopyResult `json:"result"`
	AuditTrailLost bool              `json:"auditTrailLost,omitempty"`
}

func (api *copyAPI) handleExecuteCopy(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		httpserver.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}

	result, err := api.engine.ExecuteCopy(r.Context(), req.Config, req.SourceSubmissionID, doccopy.Options{
		ActionID:   req.ActionID,
		RuleID:     req.RuleID,
		ExecutedBy: req.ExecutedBy,
	})

	resp := copyResponse{Result: result}
	if err != nil {
		if !errors.Is(err, doccopy.ErrAuditTrailLost) {
			httpserver.WriteJSON(w, http.StatusInternalServerError, map[string]any{
				"error": err.Error(),
			})
			return
		}
		// The copy outcome stands on its own; the lost trail is surfaced
		// alongside it so operators can reconcile later.
		resp.AuditTrailLost = true
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	httpserver.WriteJSON(w, status, resp)
}
