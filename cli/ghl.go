// ABOUTME: GoHighLevel CLI commands
// ABOUTME: Handles sync preview/execute, name analysis, sync status, contact lookups, and workflow enrollment
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/hireos/ghl"
)

// stdout is where commands print; tests swap it.
var stdout io.Writer = os.Stdout

const stuckAfter = 15 * time.Minute

// GHLPreviewCommand shows what a sync would link without writing anything.
func GHLPreviewCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	return runSync(ctx, svc, "preview", args, true)
}

// GHLSyncCommand links GHL contacts to candidates.
func GHLSyncCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	return runSync(ctx, svc, "sync", args, false)
}

func runSync(ctx context.Context, svc *ghl.Service, name string, args []string, preview bool) error {
	defaults := svc.SyncOptions()

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dryRun := fs.Bool("dry-run", preview, "Report matches without linking")
	maxRecords := fs.Int("max-records", defaults.MaxRecords, "Maximum number of GHL contacts to fetch")
	pageSize := fs.Int("page-size", defaults.PageSize, "GHL contacts per page")
	verbose := fs.Bool("verbose", defaults.Verbose, "Log every contact as it is processed")
	asJSON := fs.Bool("json", false, "Print the raw result as JSON")
	_ = fs.Parse(args)

	syncer, err := svc.Syncer(ghl.SyncOptions{
		PageSize:   *pageSize,
		MaxRecords: *maxRecords,
		DryRun:     *dryRun || preview,
		Verbose:    *verbose,
	})
	if err != nil {
		return err
	}

	result, err := syncer.Execute(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(result)
	}

	RenderSyncResult(stdout, result)
	return nil
}

// GHLAnalyzeCommand compares GHL contact names with candidate names.
func GHLAnalyzeCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print the analysis as JSON")
	_ = fs.Parse(args)

	analysis, err := svc.Analyze(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		return printJSON(analysis)
	}

	RenderAnalysis(stdout, analysis)
	return nil
}

// GHLStatusCommand prints the last recorded sync run.
func GHLStatusCommand(_ context.Context, svc *ghl.Service, _ []string) error {
	state, err := svc.SyncState()
	if err != nil {
		return err
	}

	RenderSyncState(stdout, state)

	stuck, err := svc.SyncStuck(stuckAfter)
	if err != nil {
		return err
	}
	if stuck {
		_, _ = fmt.Fprintln(stdout, warnStyle.Render(fmt.Sprintf("\n⚠ Run has been syncing for over %s; the process likely died. The next sync resets it.", stuckAfter)))
	}
	return nil
}

// GHLContactGetCommand prints one GHL contact.
func GHLContactGetCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	fs := flag.NewFlagSet("contact get", flag.ExitOnError)
	id := fs.String("id", "", "GHL contact ID (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	client, err := svc.LegacyClient()
	if err != nil {
		return err
	}

	contact, err := client.GetContact(ctx, *id)
	if err != nil {
		return err
	}

	return printJSON(contact)
}

// GHLContactUpdateCommand updates name or contact details of one GHL contact.
func GHLContactUpdateCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	fs := flag.NewFlagSet("contact update", flag.ExitOnError)
	id := fs.String("id", "", "GHL contact ID (required)")
	firstName := fs.String("first-name", "", "New first name")
	lastName := fs.String("last-name", "", "New last name")
	email := fs.String("email", "", "New email address")
	phone := fs.String("phone", "", "New phone number")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	var update ghl.ContactUpdate
	set := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	set(&update.FirstName, *firstName)
	set(&update.LastName, *lastName)
	set(&update.Email, *email)
	set(&update.Phone, *phone)

	if update == (ghl.ContactUpdate{}) {
		return fmt.Errorf("nothing to update: pass at least one of --first-name, --last-name, --email, --phone")
	}

	client, err := svc.LegacyClient()
	if err != nil {
		return err
	}

	contact, err := client.UpdateContact(ctx, *id, update)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Updated GHL contact %s\n", contact.ID)
	return nil
}

// GHLWorkflowAddCommand enrolls a GHL contact in a workflow.
func GHLWorkflowAddCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	fs := flag.NewFlagSet("workflow add", flag.ExitOnError)
	contactID := fs.String("contact", "", "GHL contact ID (required)")
	workflowID := fs.String("workflow", "", "GHL workflow ID (required)")
	startAt := fs.String("start", "", "Event start time (RFC3339)")
	_ = fs.Parse(args)

	if *contactID == "" || *workflowID == "" {
		return fmt.Errorf("--contact and --workflow are required")
	}

	var start *time.Time
	if *startAt != "" {
		t, err := time.Parse(time.RFC3339, *startAt)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		start = &t
	}

	workflows, err := svc.WorkflowClient()
	if err != nil {
		return err
	}

	if err := workflows.AddContactToWorkflow(ctx, *contactID, *workflowID, start); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Added contact %s to workflow %s\n", *contactID, *workflowID)
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}
