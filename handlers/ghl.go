// ABOUTME: GoHighLevel MCP tool handlers
// ABOUTME: Implements ghl_sync_preview, ghl_sync_execute, and ghl_add_to_workflow tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type GHLHandlers struct {
	svc *ghl.Service
}

func NewGHLHandlers(svc *ghl.Service) *GHLHandlers {
	return &GHLHandlers{svc: svc}
}

type SyncInput struct {
	MaxRecords int  `json:"max_records,omitempty" jsonschema:"Maximum number of GHL contacts to fetch (default from config)"`
	Verbose    bool `json:"verbose,omitempty" jsonschema:"Log every matched contact"`
}

type SyncOutput struct {
	Success bool               `json:"success"`
	Result  *models.SyncResult `json:"result"`
	Errors  []string           `json:"errors"`
}

func (h *GHLHandlers) SyncPreview(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
	return h.sync(ctx, input, true)
}

func (h *GHLHandlers) SyncExecute(ctx context.Context, _ *mcp.CallToolRequest, input SyncInput) (*mcp.CallToolResult, SyncOutput, error) {
	return h.sync(ctx, input, false)
}

func (h *GHLHandlers) sync(ctx context.Context, input SyncInput, dryRun bool) (*mcp.CallToolResult, SyncOutput, error) {
	opts := h.svc.SyncOptions()
	if input.MaxRecords > 0 {
		opts.MaxRecords = input.MaxRecords
	}
	opts.Verbose = opts.Verbose || input.Verbose
	opts.DryRun = dryRun

	syncer, err := h.svc.Syncer(opts)
	if err != nil {
		return nil, SyncOutput{}, err
	}

	result, err := syncer.Execute(ctx)
	if err != nil {
		return nil, SyncOutput{}, fmt.Errorf("GHL sync failed: %w", err)
	}

	return nil, SyncOutput{Success: true, Result: result, Errors: result.Errors}, nil
}

type AddToWorkflowInput struct {
	ContactID      string `json:"contact_id" jsonschema:"GHL contact ID (required)"`
	WorkflowID     string `json:"workflow_id" jsonschema:"GHL workflow ID (required)"`
	EventStartTime string `json:"event_start_time,omitempty" jsonschema:"Optional RFC3339 start time for the workflow event"`
}

type AddToWorkflowOutput struct {
	ContactID  string `json:"contact_id"`
	WorkflowID string `json:"workflow_id"`
	Enrolled   bool   `json:"enrolled"`
}

func (h *GHLHandlers) AddToWorkflow(ctx context.Context, _ *mcp.CallToolRequest, input AddToWorkflowInput) (*mcp.CallToolResult, AddToWorkflowOutput, error) {
	if input.ContactID == "" || input.WorkflowID == "" {
		return nil, AddToWorkflowOutput{}, fmt.Errorf("contact_id and workflow_id are required")
	}

	var start *time.Time
	if input.EventStartTime != "" {
		t, err := time.Parse(time.RFC3339, input.EventStartTime)
		if err != nil {
			return nil, AddToWorkflowOutput{}, fmt.Errorf("invalid event_start_time: %w", err)
		}
		start = &t
	}

	workflows, err := h.svc.WorkflowClient()
	if err != nil {
		return nil, AddToWorkflowOutput{}, err
	}

	if err := workflows.AddContactToWorkflow(ctx, input.ContactID, input.WorkflowID, start); err != nil {
		return nil, AddToWorkflowOutput{}, fmt.Errorf("failed to add contact to workflow: %w", err)
	}

	return nil, AddToWorkflowOutput{ContactID: input.ContactID, WorkflowID: input.WorkflowID, Enrolled: true}, nil
}
