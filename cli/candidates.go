// ABOUTME: Candidate CLI commands
// ABOUTME: Adds candidates and lists them with their GHL link state
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/models"
)

// CandidateAddCommand adds a new candidate.
func CandidateAddCommand(ctx context.Context, repo *db.CandidateRepository, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Candidate name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	status := fs.String("status", models.CandidateStatusNew, "Pipeline status")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	candidate := &models.Candidate{
		Name:   *name,
		Email:  *email,
		Phone:  *phone,
		Status: *status,
	}

	if err := repo.Create(ctx, candidate); err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Created candidate #%d: %s\n", candidate.ID, candidate.Name)
	return nil
}

// CandidateListCommand lists candidates.
func CandidateListCommand(ctx context.Context, repo *db.CandidateRepository, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Search by name or email")
	limit := fs.Int("limit", models.DefaultCandidateListLimit, "Maximum results")
	unlinked := fs.Bool("unlinked", false, "Show only candidates without a GHL contact")
	_ = fs.Parse(args)

	candidates, err := repo.Find(ctx, *query, *limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tEMAIL\tGHL CONTACT")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----\t-----------")

	shown := 0
	for _, c := range candidates {
		ghlID := "-"
		if ref := c.Ref(); ref.Linked() {
			if *unlinked {
				continue
			}
			ghlID = *ref.RemoteContactID
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, c.Email, ghlID)
		shown++
	}

	_ = w.Flush()
	_, _ = fmt.Fprintf(stdout, "\nTotal: %d candidates\n", shown)
	return nil
}
