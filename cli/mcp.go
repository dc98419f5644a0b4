// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"
	"database/sql"

	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/handlers"
	"github.com/harperreed/hireos/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer registers every HireOS tool, resource, and prompt.
func NewMCPServer(database *sql.DB, svc *ghl.Service, version string) *mcp.Server {
	candidateHandlers := handlers.NewCandidateHandlers(svc.Candidates())
	ghlHandlers := handlers.NewGHLHandlers(svc)
	resourceHandlers := handlers.NewResourceHandlers(database, svc)
	promptHandlers := handlers.NewPromptHandlers(svc)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hireos",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_candidate",
		Description: "Add a new candidate to HireOS",
	}, candidateHandlers.AddCandidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_candidates",
		Description: "Search for candidates by name or email",
	}, candidateHandlers.FindCandidates)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ghl_sync_preview",
		Description: "Preview which GoHighLevel contacts would be linked to candidates by name, without writing",
	}, ghlHandlers.SyncPreview)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ghl_sync_execute",
		Description: "Link GoHighLevel contacts to candidates whose normalized names match; never overwrites an existing link",
	}, ghlHandlers.SyncExecute)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ghl_add_to_workflow",
		Description: "Enroll a GoHighLevel contact in a workflow",
	}, ghlHandlers.AddToWorkflow)

	server.AddResource(&mcp.Resource{
		URI:         "hireos://candidates",
		Name:        "candidates",
		Description: "All candidates with their GHL contact links",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "hireos://candidates/{id}",
		Name:        "candidate",
		Description: "A single candidate",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "hireos://ghl/sync-state",
		Name:        "ghl-sync-state",
		Description: "Status of the last GHL sync run",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "hireos://ghl/sync-log",
		Name:        "ghl-sync-log",
		Description: "Recent GHL contact links",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "candidate-summary",
		Description: "Summarize a candidate and suggest the next hiring step",
		Arguments: []*mcp.PromptArgument{
			{Name: "candidate_id", Description: "Candidate ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "ghl-sync-review",
		Description: "Review GHL sync health and unlinked candidates",
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, database *sql.DB, svc *ghl.Service, version string) error {
	log := logging.Component("mcp")
	log.Info().Msg("starting HireOS MCP server")
	return NewMCPServer(database, svc, version).Run(ctx, &mcp.StdioTransport{})
}
