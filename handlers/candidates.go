// ABOUTME: Candidate MCP tool handlers
// ABOUTME: Implements add_candidate and find_candidates tools
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CandidateHandlers struct {
	repo *db.CandidateRepository
}

func NewCandidateHandlers(repo *db.CandidateRepository) *CandidateHandlers {
	return &CandidateHandlers{repo: repo}
}

type AddCandidateInput struct {
	Name   string `json:"name" jsonschema:"Candidate full name (required)"`
	Email  string `json:"email,omitempty" jsonschema:"Candidate email address"`
	Phone  string `json:"phone,omitempty" jsonschema:"Candidate phone number"`
	Status string `json:"status,omitempty" jsonschema:"Pipeline status: new, screening, interview, offer, hired, rejected, withdrawn"`
}

type CandidateOutput struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Status       string  `json:"status"`
	GHLContactID *string `json:"ghl_contact_id,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func (h *CandidateHandlers) AddCandidate(ctx context.Context, _ *mcp.CallToolRequest, input AddCandidateInput) (*mcp.CallToolResult, CandidateOutput, error) {
	if input.Name == "" {
		return nil, CandidateOutput{}, fmt.Errorf("name is required")
	}

	candidate := &models.Candidate{
		Name:   input.Name,
		Email:  input.Email,
		Phone:  input.Phone,
		Status: input.Status,
	}

	if err := h.repo.Create(ctx, candidate); err != nil {
		return nil, CandidateOutput{}, fmt.Errorf("failed to create candidate: %w", err)
	}

	return nil, candidateToOutput(candidate), nil
}

type FindCandidatesInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (searches name and email)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 50)"`
}

type FindCandidatesOutput struct {
	Candidates []CandidateOutput `json:"candidates"`
}

func (h *CandidateHandlers) FindCandidates(ctx context.Context, _ *mcp.CallToolRequest, input FindCandidatesInput) (*mcp.CallToolResult, FindCandidatesOutput, error) {
	candidates, err := h.repo.Find(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, FindCandidatesOutput{}, fmt.Errorf("failed to find candidates: %w", err)
	}

	result := make([]CandidateOutput, len(candidates))
	for i := range candidates {
		result[i] = candidateToOutput(&candidates[i])
	}

	return nil, FindCandidatesOutput{Candidates: result}, nil
}

func candidateToOutput(c *models.Candidate) CandidateOutput {
	return CandidateOutput{
		ID:           c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Status:       c.Status,
		GHLContactID: c.GHLContactID,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}
