// ABOUTME: MCP resource handlers for exposing HireOS data
// ABOUTME: Provides read-only access to candidates, GHL sync state, and the link log via URI
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "hireos://"

type ResourceHandlers struct {
	db  *sql.DB
	svc *ghl.Service
}

func NewResourceHandlers(database *sql.DB, svc *ghl.Service) *ResourceHandlers {
	return &ResourceHandlers{db: database, svc: svc}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "candidates":
		if len(parts) == 1 {
			return h.readAllCandidates(ctx, uri)
		}
		return h.readCandidate(ctx, uri, parts[1])

	case "ghl":
		if len(parts) == 2 && parts[1] == "sync-state" {
			return h.readSyncState(uri)
		}
		if len(parts) == 2 && parts[1] == "sync-log" {
			return h.readSyncLog(uri)
		}
		return nil, mcp.ResourceNotFoundError(uri)

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllCandidates(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	candidates, err := h.svc.Candidates().Find(ctx, "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return jsonResource(uri, candidates)
}

func (h *ResourceHandlers) readCandidate(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate ID: %w", err)
	}

	candidate, err := h.svc.Candidates().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, candidate)
}

func (h *ResourceHandlers) readSyncState(uri string) (*mcp.ReadResourceResult, error) {
	state, err := h.svc.SyncState()
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &models.SyncState{Service: models.SyncServiceGHL, Status: models.SyncStatusIdle}
	}
	return jsonResource(uri, state)
}

func (h *ResourceHandlers) readSyncLog(uri string) (*mcp.ReadResourceResult, error) {
	entries, err := db.ListSyncLog(h.db, models.SyncServiceGHL, 100)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.SyncLog{}
	}
	return jsonResource(uri, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
