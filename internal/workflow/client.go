package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docbridge-labs/docbridge-go/internal/platform/env"
)

// SubmitResponse is the workflow service's answer to a submission request.
// StatusCode < 400 means the document entered the approval workflow.
type SubmitResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (r SubmitResponse) OK() bool {
	return r.StatusCode < 400
}

// Submitter starts the approval workflow for a document.
type Submitter interface {
	Submit(ctx context.Context, submissionID int64, submittedBy string) (SubmitResponse, error)
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func ConfigFromEnv() (Config, error) {
	timeout, err := env.Duration("WORKFLOW_HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		BaseURL: env.String("WORKFLOW_BASE_URL", "http://localhost:8090"),
		Token:   env.String("WORKFLOW_AUTH_TOKEN", ""),
		Timeout: timeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("WORKFLOW_BASE_URL is required")
	}
	if c.Timeout <= 0 {
		return errors.New("WORKFLOW_HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Client submits documents to the workflow service over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Submit(ctx context.Context, submissionID int64, submittedBy string) (SubmitResponse, error) {
	if c == nil || c.http == nil {
		return SubmitResponse{}, errors.New("workflow client not initialized")
	}
	body, err := json.Marshal(map[string]any{
		"submissionId": submissionID,
		"submittedBy":  submittedBy,
	})
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("marshal submit request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/submissions/submit", bytes.NewReader(body))
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("submit workflow request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("read submit response: %w", err)
	}

	out := SubmitResponse{StatusCode: resp.StatusCode}
	if len(payload) > 0 {
		var decoded struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &decoded); err == nil {
			out.Message = decoded.Message
		}
	}
	if out.Message == "" && resp.StatusCode >= 400 {
		out.Message = strings.TrimSpace(string(payload))
		if out.Message == "" {
			out.Message = resp.Status
		}
	}
	return out, nil
}
