// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package intake implements the transcript ingestion pipeline client. An
// ingestion is a four step protocol: init an intake, upload the transcript
// file, read the intake status, finalize. Any step failing aborts the rest
// and reports which step failed.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meetbot-service/pkg/constants"
)

const (
	// BaseURL is the default base URL for the intake API.
	BaseURL = "https://dev.pulse-api.getpulseinsights.ai"
	// DefaultClientTimeout is the default HTTP client timeout for intake requests.
	DefaultClientTimeout = 30 * time.Second
)

// Ingestion step names reported in results.
const (
	StepInit     = "init_intake"
	StepUpload   = "upload_file"
	StepStatus   = "get_intake_status"
	StepFinalize = "finalize_intake"
)

// Config holds the configuration for the intake client.
type Config struct {
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client talks to the intake API.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements domain.TranscriptIntake
var _ domain.TranscriptIntake = (*Client)(nil)

// NewClient creates a new intake API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
}

// IngestTranscript runs the full ingestion protocol for one transcript
// file. The returned result carries the step that failed; the error wraps
// the underlying cause. Steps are never retried.
func (c *Client) IngestTranscript(ctx context.Context, orgName, path string) (*models.IngestionResult, error) {
	initBody, err := c.initIntake(ctx, orgName)
	if err != nil {
		return &models.IngestionResult{Step: StepInit}, err
	}

	intakeID := extractIntakeID(initBody)
	if intakeID == "" {
		return &models.IngestionResult{Step: StepInit},
			domain.NewInternalError("intake init response missing intake id")
	}

	if err := c.uploadFile(ctx, orgName, intakeID, path); err != nil {
		return &models.IngestionResult{Step: StepUpload, IntakeID: intakeID}, err
	}

	if err := c.getIntakeStatus(ctx, orgName, intakeID); err != nil {
		return &models.IngestionResult{Step: StepStatus, IntakeID: intakeID}, err
	}

	if err := c.finalizeIntake(ctx, orgName, intakeID); err != nil {
		return &models.IngestionResult{Step: StepFinalize, IntakeID: intakeID}, err
	}

	slog.InfoContext(ctx, "transcript ingested",
		"org_name", orgName,
		"intake_id", intakeID,
		"path", path,
	)
	return &models.IngestionResult{Success: true, Step: StepFinalize, IntakeID: intakeID}, nil
}

func (c *Client) initIntake(ctx context.Context, orgName string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/intakes/init", nil)
	if err != nil {
		return nil, domain.NewInternalError("failed to create intake init request", err)
	}
	req.Header.Set(constants.OrgIDHeader, orgName)
	req.Header.Set(constants.IdempotencyKeyHeader, uuid.New().String())

	return c.doJSON(ctx, req, StepInit)
}

func (c *Client) uploadFile(ctx context.Context, orgName, intakeID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return domain.NewInternalError("failed to open transcript file", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return domain.NewInternalError("failed to build multipart body", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return domain.NewInternalError("failed to read transcript file", err)
	}
	if err := writer.Close(); err != nil {
		return domain.NewInternalError("failed to build multipart body", err)
	}

	url := fmt.Sprintf("%s/api/upload/file/%s", c.config.BaseURL, intakeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return domain.NewInternalError("failed to create upload request", err)
	}
	req.Header.Set(constants.OrgIDHeader, orgName)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.doJSON(ctx, req, StepUpload)
	return err
}

func (c *Client) getIntakeStatus(ctx context.Context, orgName, intakeID string) error {
	url := fmt.Sprintf("%s/api/intakes/%s", c.config.BaseURL, intakeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.NewInternalError("failed to create intake status request", err)
	}
	req.Header.Set(constants.OrgIDHeader, orgName)

	_, err = c.doJSON(ctx, req, StepStatus)
	return err
}

func (c *Client) finalizeIntake(ctx context.Context, orgName, intakeID string) error {
	url := fmt.Sprintf("%s/api/intakes/%s/finalize", c.config.BaseURL, intakeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return domain.NewInternalError("failed to create intake finalize request", err)
	}
	req.Header.Set(constants.OrgIDHeader, orgName)

	_, err = c.doJSON(ctx, req, StepFinalize)
	return err
}

// doJSON executes a request and decodes a JSON object response. Any
// transport failure or non-2xx status is a step failure.
func (c *Client) doJSON(ctx context.Context, req *http.Request, step string) (map[string]any, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "intake API request failed",
			"step", step, logging.ErrKey, err)
		return nil, domain.NewUnavailableError(fmt.Sprintf("intake %s request failed", step), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUnavailableError(fmt.Sprintf("intake %s response unreadable", step), err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		slog.ErrorContext(ctx, "intake API request rejected",
			"step", step, "status", resp.StatusCode, "body", string(body))
		return nil, domain.NewInternalError(
			fmt.Sprintf("intake %s rejected with status %d", step, resp.StatusCode))
	}

	var decoded map[string]any
	if len(body) > 0 {
		// Some steps answer with an empty or non-object body; only the
		// intake id extraction needs the decoded form.
		_ = json.Unmarshal(body, &decoded)
	}
	return decoded, nil
}

// extractIntakeID pulls the intake identifier out of an init response,
// tolerating the key and type variants the API has used.
func extractIntakeID(body map[string]any) string {
	for _, key := range []string{"intake_id", "id", "intakeId"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		}
	}
	return ""
}
