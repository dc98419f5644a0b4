// ABOUTME: Tests for the HireOS CLI commands and renderers
// ABOUTME: Captures stdout and fakes the GHL API with httptest
package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/hireos/config"
	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func newTestService(t *testing.T, configure func(*config.Config)) *ghl.Service {
	t.Helper()

	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "hireos.db")
	cfg.Sync.PageDelay = 0
	if configure != nil {
		configure(cfg)
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return ghl.NewService(cfg, database, zerolog.Nop())
}

func contactsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCandidateAddAndList(t *testing.T) {
	svc := newTestService(t, nil)
	out := captureStdout(t)
	ctx := context.Background()

	require.NoError(t, CandidateAddCommand(ctx, svc.Candidates(), []string{"--name", "Jane Smith", "--email", "jane@example.com"}))
	require.NoError(t, CandidateAddCommand(ctx, svc.Candidates(), []string{"--name", "Bob Jones"}))
	assert.Contains(t, out.String(), "Created candidate #1: Jane Smith")

	assert.Error(t, CandidateAddCommand(ctx, svc.Candidates(), nil))

	out.Reset()
	require.NoError(t, CandidateListCommand(ctx, svc.Candidates(), []string{"--query", "jane"}))
	assert.Contains(t, out.String(), "Jane Smith")
	assert.NotContains(t, out.String(), "Bob Jones")
	assert.Contains(t, out.String(), "Total: 1 candidates")
}

func TestCandidateListUnlinked(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	linked := "abc123"
	require.NoError(t, svc.Candidates().Create(ctx, &models.Candidate{Name: "Jane Smith", GHLContactID: &linked}))
	require.NoError(t, svc.Candidates().Create(ctx, &models.Candidate{Name: "Bob Jones"}))

	out := captureStdout(t)
	require.NoError(t, CandidateListCommand(ctx, svc.Candidates(), []string{"--unlinked"}))
	assert.NotContains(t, out.String(), "Jane Smith")
	assert.Contains(t, out.String(), "Bob Jones")
}

func TestGHLPreviewCommandWritesNothing(t *testing.T) {
	server := contactsServer(t, `{"contacts":[{"id":"abc123","contactName":"jane smith"}]}`)
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.GHL.APIKey = "key"
		cfg.GHL.BaseURL = server.URL
	})
	ctx := context.Background()
	require.NoError(t, svc.Candidates().Create(ctx, &models.Candidate{Name: "Jane Smith"}))

	out := captureStdout(t)
	require.NoError(t, GHLPreviewCommand(ctx, svc, nil))
	assert.Contains(t, out.String(), "Preview")
	assert.Contains(t, out.String(), "would link")

	refs, err := svc.Candidates().ListCandidateRefs(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Nil(t, refs[0].RemoteContactID)
}

func TestGHLSyncCommandLinksCandidates(t *testing.T) {
	server := contactsServer(t, `{"contacts":[{"id":"abc123","contactName":"jane smith"}]}`)
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.GHL.APIKey = "key"
		cfg.GHL.BaseURL = server.URL
	})
	ctx := context.Background()
	require.NoError(t, svc.Candidates().Create(ctx, &models.Candidate{Name: "Jane Smith"}))

	out := captureStdout(t)
	require.NoError(t, GHLSyncCommand(ctx, svc, []string{"--json"}))
	assert.Contains(t, out.String(), `"updated": 1`)

	refs, err := svc.Candidates().ListCandidateRefs(ctx)
	require.NoError(t, err)
	require.NotNil(t, refs[0].RemoteContactID)
	assert.Equal(t, "abc123", *refs[0].RemoteContactID)

	out.Reset()
	require.NoError(t, GHLStatusCommand(ctx, svc, nil))
	assert.Contains(t, out.String(), "Idle")
}

func TestGHLSyncCommandRequiresAPIKey(t *testing.T) {
	svc := newTestService(t, nil)
	captureStdout(t)

	err := GHLSyncCommand(context.Background(), svc, nil)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestGHLContactUpdateNeedsAField(t *testing.T) {
	svc := newTestService(t, nil)
	captureStdout(t)

	err := GHLContactUpdateCommand(context.Background(), svc, []string{"--id", "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestGHLWorkflowAddRejectsBadStart(t *testing.T) {
	svc := newTestService(t, nil)
	captureStdout(t)

	err := GHLWorkflowAddCommand(context.Background(), svc, []string{"--contact", "c1", "--workflow", "w1", "--start", "tomorrow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --start")
}

func TestRenderSyncResult(t *testing.T) {
	var buf bytes.Buffer
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	RenderSyncResult(&buf, &models.SyncResult{
		RunID:       "01HX",
		TotalRemote: 2,
		TotalLocal:  2,
		Matched:     2,
		Updated:     1,
		Skipped:     1,
		Errors:      []string{"boom"},
		Details: []models.SyncDetail{
			{RemoteID: "a", RemoteName: "Jane Smith", LocalID: 1, LocalName: "Jane Smith", Action: models.ActionUpdated},
			{RemoteID: "b", RemoteName: "Bob Jones", LocalID: 2, LocalName: "Bob Jones", Action: models.ActionSkipped, Reason: ghl.ReasonAlreadyLinked},
		},
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
	})

	text := buf.String()
	assert.Contains(t, text, "GHL Sync")
	assert.Contains(t, text, "linked")
	assert.Contains(t, text, "already linked")
	assert.Contains(t, text, "boom")
	assert.Contains(t, text, "1.5s")
}

func TestRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer
	name := "Unknown Person"

	RenderAnalysis(&buf, &ghl.NameAnalysis{
		Exact:           []ghl.NamePair{{RemoteID: "a", RemoteName: "Jane Smith", LocalID: 1, LocalName: "Jane Smith"}},
		UnmatchedRemote: []models.RemoteContact{{ID: "x", DisplayName: &name}, {ID: "y"}},
		UnmatchedLocal:  []models.CandidateRef{{ID: 7, Name: "Carol White"}},
	})

	text := buf.String()
	assert.Contains(t, text, "Exact matches (1)")
	assert.Contains(t, text, "Partial matches (0)")
	assert.Contains(t, text, "Unknown Person (x)")
	assert.Contains(t, text, "(no name)")
	assert.Contains(t, text, "#7 Carol White")
}

func TestRenderSyncStateNeverSynced(t *testing.T) {
	var buf bytes.Buffer
	RenderSyncState(&buf, nil)
	assert.True(t, strings.Contains(buf.String(), "Not synced yet"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "***", mask("abc"))
	assert.Equal(t, "abcd****ijkl", mask("abcdefghijkl"))
}

func TestNewMCPServerRegisters(t *testing.T) {
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "hireos.db")
	database, err := db.OpenDatabase(cfg.DBPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	svc := ghl.NewService(cfg, database, zerolog.Nop())
	assert.NotNil(t, NewMCPServer(database, svc, "test"))
}

func TestGHLTokenSetAndShow(t *testing.T) {
	svc := newTestService(t, func(cfg *config.Config) {
		cfg.GHL.ClientID = "client"
		cfg.GHL.ClientSecret = "secret"
	})
	ctx := context.Background()

	prevIn := stdin
	stdin = strings.NewReader("refresh-token-value\n")
	t.Cleanup(func() { stdin = prevIn })

	out := captureStdout(t)
	require.NoError(t, GHLTokenSetCommand(ctx, svc, []string{"--access-token", "access-token-value", "--location-id", "loc1"}))
	assert.Contains(t, out.String(), "Stored GHL token")

	out.Reset()
	require.NoError(t, GHLTokenShowCommand(ctx, svc, nil))
	assert.Contains(t, out.String(), "loc1")
	assert.Contains(t, out.String(), "acce")
	assert.NotContains(t, out.String(), "access-token-value")
}

func TestCandidateListTreatsEmptyContactIDAsUnlinked(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	blank := ""
	require.NoError(t, svc.Candidates().Create(ctx, &models.Candidate{Name: "Dana Blank", GHLContactID: &blank}))

	out := captureStdout(t)
	require.NoError(t, CandidateListCommand(ctx, svc.Candidates(), []string{"--unlinked"}))
	assert.Contains(t, out.String(), "Dana Blank")
	assert.Contains(t, out.String(), "Total: 1 candidates")
}
