// ABOUTME: Terminal rendering for GHL sync results, name analysis, and sync status
// ABOUTME: Styles CLI output with lipgloss
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(14)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// RenderSyncResult prints the summary and per-contact details of a run.
func RenderSyncResult(w io.Writer, result *models.SyncResult) {
	title := "GHL Sync"
	if result.DryRun {
		title = "GHL Sync Preview (no changes written)"
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))
	_, _ = fmt.Fprintln(w, mutedStyle.Render("run "+result.RunID))
	_, _ = fmt.Fprintln(w)

	updatedLabel := "Updated"
	if result.DryRun {
		updatedLabel = "Would update"
	}

	rows := []struct {
		label string
		value int
	}{
		{"GHL contacts", result.TotalRemote},
		{"Candidates", result.TotalLocal},
		{"Matched", result.Matched},
		{updatedLabel, result.Updated},
		{"Skipped", result.Skipped},
		{"Errors", len(result.Errors)},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s %d\n", labelStyle.Render(row.label), row.value)
	}

	if len(result.Details) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerStyle.Render("Details"))
		for _, d := range result.Details {
			_, _ = fmt.Fprintln(w, "  "+renderDetail(d))
		}
	}

	if len(result.Errors) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, headerStyle.Render("Errors"))
		for _, e := range result.Errors {
			_, _ = fmt.Fprintln(w, errorStyle.Render("  ✗ "+e))
		}
	}

	if !result.FinishedAt.IsZero() {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("finished in %s", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))))
	}
}

func renderDetail(d models.SyncDetail) string {
	pair := fmt.Sprintf("%s (%s) → #%d %s", d.RemoteName, d.RemoteID, d.LocalID, d.LocalName)

	switch d.Action {
	case models.ActionUpdated:
		return okStyle.Render("✓ linked   ") + pair
	case models.ActionWouldUpdate:
		return okStyle.Render("○ would link ") + pair
	case models.ActionSkipped:
		return warnStyle.Render("- skipped  ") + pair + mutedStyle.Render(" ("+d.Reason+")")
	default:
		return errorStyle.Render("✗ error    ") + pair + errorStyle.Render(": "+d.Reason)
	}
}

// RenderAnalysis prints the name comparison report.
func RenderAnalysis(w io.Writer, a *ghl.NameAnalysis) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("GHL Name Analysis"))
	_, _ = fmt.Fprintln(w)

	section := func(title string, n int) {
		_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%d)", title, n)))
	}

	section("Exact matches", len(a.Exact))
	for _, p := range a.Exact {
		_, _ = fmt.Fprintf(w, "  %s  %s ↔ #%d %s\n", okStyle.Render("="), p.RemoteName, p.LocalID, p.LocalName)
	}
	_, _ = fmt.Fprintln(w)

	section("Partial matches", len(a.Partial))
	for _, p := range a.Partial {
		_, _ = fmt.Fprintf(w, "  %s  %s ↔ #%d %s\n", warnStyle.Render("~"), p.RemoteName, p.LocalID, p.LocalName)
	}
	_, _ = fmt.Fprintln(w)

	section("GHL contacts without a candidate", len(a.UnmatchedRemote))
	for _, rc := range a.UnmatchedRemote {
		name := rc.Name()
		if strings.TrimSpace(name) == "" {
			name = mutedStyle.Render("(no name)")
		}
		_, _ = fmt.Fprintf(w, "  %s (%s)\n", name, rc.ID)
	}
	_, _ = fmt.Fprintln(w)

	section("Candidates without a GHL contact", len(a.UnmatchedLocal))
	for _, c := range a.UnmatchedLocal {
		_, _ = fmt.Fprintf(w, "  #%d %s\n", c.ID, c.Name)
	}
}

// RenderSyncState prints the last recorded run.
func RenderSyncState(w io.Writer, state *models.SyncState) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("GHL Sync Status"))
	_, _ = fmt.Fprintln(w)

	if state == nil {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("Not synced yet. Run 'hireos ghl preview' to see what would change."))
		return
	}

	var status string
	switch state.Status {
	case models.SyncStatusSyncing:
		status = warnStyle.Render("⟳ Syncing")
	case models.SyncStatusError:
		status = errorStyle.Render("✗ Error")
		if state.ErrorMessage != nil {
			status += errorStyle.Render(": " + *state.ErrorMessage)
		}
	default:
		status = okStyle.Render("✓ Idle")
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Status"), status)

	if state.LastSyncTime != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Last sync"), state.LastSyncTime.Local().Format("2006-01-02 15:04:05"))
	}
	if state.LastRunID != nil {
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Last run"), *state.LastRunID)
	}
}
