// ABOUTME: GHL v2 workflow automation calls made through the rate-limited API client
// ABOUTME: Enrolls a contact in a workflow, optionally with an event start time
package ghl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type WorkflowClient struct {
	api     *APIClient
	baseURL string
	version string
}

func NewWorkflowClient(api *APIClient, baseURL, version string) *WorkflowClient {
	return &WorkflowClient{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

type workflowRequest struct {
	EventStartTime string `json:"eventStartTime,omitempty"`
}

// AddContactToWorkflow enrolls contactID in workflowID. A nil eventStart lets
// GHL start the workflow immediately.
func (w *WorkflowClient) AddContactToWorkflow(ctx context.Context, contactID, workflowID string, eventStart *time.Time) error {
	if contactID == "" || workflowID == "" {
		return fmt.Errorf("contact id and workflow id are required")
	}

	var body workflowRequest
	if eventStart != nil {
		body.EventStartTime = eventStart.UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode workflow request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/contacts/%s/workflow/%s", w.baseURL, url.PathEscape(contactID), url.PathEscape(workflowID))
	header := http.Header{}
	header.Set("Version", w.version)
	header.Set("Accept", "application/json")
	header.Set("Content-Type", "application/json")

	resp, err := w.api.Fetch(ctx, Request{
		Method: http.MethodPost,
		URL:    endpoint,
		Header: header,
		Body:   payload,
	})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(http.MethodPost, endpoint, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read workflow response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var result workflowResponse
	if err := decodePayload(bytes.NewReader(raw), &result); err != nil {
		return err
	}
	if result.Succeded != nil && !*result.Succeded {
		return fmt.Errorf("%w: GHL reported the workflow enrollment did not succeed", ErrInvalidPayload)
	}

	return nil
}
