// ABOUTME: Tests for the GHL to candidate sync against a real SQLite store
// ABOUTME: Covers linking, idempotence, already-linked skips, dry runs, and failure handling
package ghl

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	contacts []models.RemoteContact
	err      error
	calls    int
}

func (s *staticSource) FetchAll(_ context.Context, _, _ int) ([]models.RemoteContact, error) {
	s.calls++
	return s.contacts, s.err
}

// failingStore fails links for one candidate and delegates everything else.
type failingStore struct {
	CandidateStore
	failID int64
}

func (f *failingStore) LinkRemoteContact(ctx context.Context, candidateID int64, remoteID string) error {
	if candidateID == f.failID {
		return errors.New("disk full")
	}
	return f.CandidateStore.LinkRemoteContact(ctx, candidateID, remoteID)
}

func openSyncDB(t *testing.T) (*sql.DB, *db.CandidateRepository) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database, db.NewCandidateRepository(database)
}

func addCandidate(t *testing.T, repo *db.CandidateRepository, name string, remoteID *string) int64 {
	t.Helper()
	c := &models.Candidate{Name: name, GHLContactID: remoteID}
	require.NoError(t, repo.Create(context.Background(), c))
	return c.ID
}

func remote(id, name string) models.RemoteContact {
	return models.RemoteContact{ID: id, DisplayName: strPtr(name)}
}

func TestExecuteLinksMatchingCandidate(t *testing.T) {
	database, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)
	addCandidate(t, repo, "Bob Jones", nil)

	source := &staticSource{contacts: []models.RemoteContact{remote("abc123", "jane smith")}}
	syncer := NewSyncer(source, repo, SyncOptions{}, WithRecorder(db.NewSyncStateRecorder(database, models.SyncServiceGHL)))

	result, err := syncer.Execute(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.DryRun)
	assert.Equal(t, 1, result.TotalRemote)
	assert.Equal(t, 2, result.TotalLocal)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "abc123", result.Details[0].RemoteID)
	assert.Equal(t, janeID, result.Details[0].LocalID)
	assert.Equal(t, models.ActionUpdated, result.Details[0].Action)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	require.NotNil(t, jane.GHLContactID)
	assert.Equal(t, "abc123", *jane.GHLContactID)

	logged, err := db.ListSyncLog(database, models.SyncServiceGHL, 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "abc123", logged[0].SourceID)

	state, err := db.GetSyncState(database, models.SyncServiceGHL)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.SyncStatusIdle, state.Status)
	require.NotNil(t, state.LastRunID)
	assert.Equal(t, result.RunID, *state.LastRunID)
}

func TestExecuteIsIdempotent(t *testing.T) {
	_, repo := openSyncDB(t)
	addCandidate(t, repo, "Jane Smith", nil)
	addCandidate(t, repo, "Bob Jones", nil)
	addCandidate(t, repo, "Carol White", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		remote("r1", "JANE SMITH"),
		remote("r2", "bob jones"),
		remote("r3", "Dave Nobody"),
	}}
	syncer := NewSyncer(source, repo, SyncOptions{})

	first, err := syncer.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Matched)
	assert.Equal(t, 2, first.Updated)

	second, err := syncer.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, second.Matched, second.Skipped)
	assert.Equal(t, 2, second.Skipped)
	assert.NotEqual(t, first.RunID, second.RunID)

	for _, d := range second.Details {
		assert.Equal(t, models.ActionSkipped, d.Action)
		assert.Equal(t, ReasonAlreadyLinked, d.Reason)
	}
}

func TestExecuteNoMatchProducesNoDetail(t *testing.T) {
	_, repo := openSyncDB(t)
	addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		remote("r1", "Someone Else"),
		{ID: "r2"},
		remote("r3", "   "),
	}}

	result, err := NewSyncer(source, repo, SyncOptions{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRemote)
	assert.Zero(t, result.Matched)
	assert.Empty(t, result.Details)
}

func TestExecuteNeverOverwritesExistingLink(t *testing.T) {
	_, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", strPtr("xyz"))

	source := &staticSource{contacts: []models.RemoteContact{remote("abc123", "jane smith")}}
	result, err := NewSyncer(source, repo, SyncOptions{}).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	assert.Equal(t, models.ActionSkipped, result.Details[0].Action)
	assert.Equal(t, ReasonAlreadyLinked, result.Details[0].Reason)
	assert.Equal(t, 1, result.Skipped)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	assert.Equal(t, "xyz", *jane.GHLContactID)
}

func TestExecuteDuplicateRemoteNamesFirstWins(t *testing.T) {
	_, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		remote("first", "Jane Smith"),
		remote("second", "jane smith"),
	}}
	result, err := NewSyncer(source, repo, SyncOptions{}).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 2)
	assert.Equal(t, models.ActionUpdated, result.Details[0].Action)
	assert.Equal(t, models.ActionSkipped, result.Details[1].Action)
	assert.Equal(t, ReasonDuplicateRemote, result.Details[1].Reason)
	assert.Equal(t, 2, result.Matched)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	assert.Equal(t, "first", *jane.GHLContactID)
}

func TestExecuteRecordsPerRecordErrorsAndContinues(t *testing.T) {
	_, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)
	bobID := addCandidate(t, repo, "Bob Jones", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		remote("r1", "Jane Smith"),
		remote("r2", "Bob Jones"),
	}}
	store := &failingStore{CandidateStore: repo, failID: janeID}

	result, err := NewSyncer(source, store, SyncOptions{}).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Matched)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "disk full")
	assert.Equal(t, models.ActionError, result.Details[0].Action)
	assert.Equal(t, "disk full", result.Details[0].Reason)

	bob, err := repo.Get(context.Background(), bobID)
	require.NoError(t, err)
	assert.Equal(t, "r2", *bob.GHLContactID)
}

func TestExecuteFetchFailureIsFatal(t *testing.T) {
	database, repo := openSyncDB(t)
	addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{err: &APIError{Method: "GET", URL: "/contacts/", StatusCode: 503}}
	syncer := NewSyncer(source, repo, SyncOptions{}, WithRecorder(db.NewSyncStateRecorder(database, models.SyncServiceGHL)))

	result, err := syncer.Execute(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsStatus(err, 503))

	state, err := db.GetSyncState(database, models.SyncServiceGHL)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, models.SyncStatusError, state.Status)
	require.NotNil(t, state.ErrorMessage)
	assert.Contains(t, *state.ErrorMessage, "503")
}

func TestPreviewWritesNothing(t *testing.T) {
	database, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		remote("r1", "Jane Smith"),
		remote("r2", "Jane Smith"),
	}}
	syncer := NewSyncer(source, repo, SyncOptions{}, WithRecorder(db.NewSyncStateRecorder(database, models.SyncServiceGHL)))

	result, err := syncer.Preview(context.Background())
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, models.ActionWouldUpdate, result.Details[0].Action)
	assert.Equal(t, ReasonDuplicateRemote, result.Details[1].Reason)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	assert.Nil(t, jane.GHLContactID)

	state, err := db.GetSyncState(database, models.SyncServiceGHL)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestExecuteWithDryRunOption(t *testing.T) {
	_, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{remote("r1", "Jane Smith")}}
	result, err := NewSyncer(source, repo, SyncOptions{DryRun: true}).Execute(context.Background())
	require.NoError(t, err)
	assert.True(t, result.DryRun)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	assert.Nil(t, jane.GHLContactID)
}

func TestExecuteTreatsLostLinkRaceAsSkipped(t *testing.T) {
	_, repo := openSyncDB(t)
	janeID := addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{remote("r1", "Jane Smith")}}
	store := &racingStore{CandidateRepository: repo}

	result, err := NewSyncer(source, store, SyncOptions{}).Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Details, 1)
	assert.Equal(t, models.ActionSkipped, result.Details[0].Action)
	assert.Empty(t, result.Errors)

	jane, err := repo.Get(context.Background(), janeID)
	require.NoError(t, err)
	assert.Equal(t, "other-run", *jane.GHLContactID)
}

// racingStore links every candidate from another "run" right after the refs are read.
type racingStore struct {
	*db.CandidateRepository
}

func (r *racingStore) ListCandidateRefs(ctx context.Context) ([]models.CandidateRef, error) {
	refs, err := r.CandidateRepository.ListCandidateRefs(ctx)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if err := r.CandidateRepository.LinkRemoteContact(ctx, ref.ID, "other-run"); err != nil {
			return nil, err
		}
	}
	return refs, nil
}

func TestExecuteIgnoresNamelessContacts(t *testing.T) {
	database, repo := openSyncDB(t)
	addCandidate(t, repo, "Jane Smith", nil)

	source := &staticSource{contacts: []models.RemoteContact{
		{ID: "nil-name"},
		remote("blank-name", "   "),
		remote("abc123", "JANE smith"),
	}}
	syncer := NewSyncer(source, repo, SyncOptions{}, WithRecorder(db.NewSyncStateRecorder(database, models.SyncServiceGHL)))

	result, err := syncer.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRemote)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Details, 1)
	assert.Equal(t, "abc123", result.Details[0].RemoteID)
}
