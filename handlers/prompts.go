// ABOUTME: MCP prompt handlers for recruiting workflow templates
// ABOUTME: Provides candidate summary and GHL sync review prompts
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/hireos/ghl"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	svc *ghl.Service
}

func NewPromptHandlers(svc *ghl.Service) *PromptHandlers {
	return &PromptHandlers{svc: svc}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "candidate-summary":
		return h.getCandidateSummaryPrompt(ctx, request.Params.Arguments)
	case "ghl-sync-review":
		return h.getSyncReviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getCandidateSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["candidate_id"]
	if !ok {
		return nil, fmt.Errorf("candidate_id is required")
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate_id: %w", err)
	}

	candidate, err := h.svc.Candidates().Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please summarize this candidate:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", candidate.Name))
	promptText.WriteString(fmt.Sprintf("Status: %s\n", candidate.Status))
	if candidate.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", candidate.Email))
	}
	if candidate.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", candidate.Phone))
	}
	if ref := candidate.Ref(); ref.Linked() {
		promptText.WriteString(fmt.Sprintf("GHL contact: %s\n", *ref.RemoteContactID))
	} else {
		promptText.WriteString("GHL contact: not linked\n")
	}
	promptText.WriteString("\nSuggest the next step in the hiring pipeline for this candidate.")

	return textPrompt(fmt.Sprintf("Summary for candidate: %s", candidate.Name), promptText.String()), nil
}

func (h *PromptHandlers) getSyncReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	refs, err := h.svc.Candidates().ListCandidateRefs(ctx)
	if err != nil {
		return nil, err
	}

	state, err := h.svc.SyncState()
	if err != nil {
		return nil, err
	}

	var unlinked []string
	for _, ref := range refs {
		if !ref.Linked() {
			unlinked = append(unlinked, ref.Name)
		}
	}

	var promptText strings.Builder
	promptText.WriteString("Review the GoHighLevel contact sync for HireOS.\n\n")
	if state == nil {
		promptText.WriteString("No sync has run yet.\n")
	} else {
		promptText.WriteString(fmt.Sprintf("Last status: %s\n", state.Status))
		if state.LastSyncTime != nil {
			promptText.WriteString(fmt.Sprintf("Last successful sync: %s\n", state.LastSyncTime.Format("2006-01-02 15:04")))
		}
		if state.ErrorMessage != nil {
			promptText.WriteString(fmt.Sprintf("Last error: %s\n", *state.ErrorMessage))
		}
	}
	promptText.WriteString(fmt.Sprintf("\nCandidates: %d total, %d without a GHL contact\n", len(refs), len(unlinked)))
	for _, name := range unlinked {
		promptText.WriteString(fmt.Sprintf("- %s\n", name))
	}
	promptText.WriteString("\nRun ghl_sync_preview, then explain which unlinked candidates are likely name mismatches.")

	return textPrompt("GHL sync review", promptText.String()), nil
}

func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
