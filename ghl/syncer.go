// ABOUTME: Links GHL contacts to candidates by normalized name
// ABOUTME: Fetches remote contacts, matches them against local candidates, and records per-contact outcomes
package ghl

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/models"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Skip reasons reported in SyncDetail.Reason.
const (
	ReasonAlreadyLinked   = "already linked"
	ReasonDuplicateRemote = "already linked earlier in this run by another contact with the same name"
)

// RemoteSource supplies the full remote contact list for a run.
type RemoteSource interface {
	FetchAll(ctx context.Context, pageSize, maxRecords int) ([]models.RemoteContact, error)
}

// CandidateStore is the persistence the sync needs. LinkRemoteContact must
// return db.ErrAlreadyLinked rather than overwrite an existing link.
type CandidateStore interface {
	ListCandidateRefs(ctx context.Context) ([]models.CandidateRef, error)
	LinkRemoteContact(ctx context.Context, candidateID int64, remoteID string) error
}

// RunRecorder is told when a writing run starts and finishes.
type RunRecorder interface {
	RunStarted(ctx context.Context, runID string) error
	RunFinished(ctx context.Context, runID string, runErr error) error
}

type SyncOptions struct {
	PageSize   int
	MaxRecords int
	DryRun     bool
	Verbose    bool
}

type Syncer struct {
	source   RemoteSource
	store    CandidateStore
	recorder RunRecorder
	opts     SyncOptions
	log      zerolog.Logger
	now      func() time.Time
}

type SyncerOption func(*Syncer)

func WithRecorder(r RunRecorder) SyncerOption {
	return func(s *Syncer) { s.recorder = r }
}

func WithSyncLogger(log zerolog.Logger) SyncerOption {
	return func(s *Syncer) { s.log = log }
}

func WithSyncClock(now func() time.Time) SyncerOption {
	return func(s *Syncer) { s.now = now }
}

// NewSyncer creates a syncer. Zero page size and record cap fall back to the defaults.
func NewSyncer(source RemoteSource, store CandidateStore, opts SyncOptions, options ...SyncerOption) *Syncer {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultMaxRecords
	}

	s := &Syncer{
		source: source,
		store:  store,
		opts:   opts,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Execute runs the sync, writing links unless the syncer was built with DryRun.
func (s *Syncer) Execute(ctx context.Context) (*models.SyncResult, error) {
	return s.run(ctx, s.opts.DryRun)
}

// Preview reports what Execute would do without writing anything.
func (s *Syncer) Preview(ctx context.Context) (*models.SyncResult, error) {
	return s.run(ctx, true)
}

func (s *Syncer) run(ctx context.Context, dryRun bool) (*models.SyncResult, error) {
	started := s.now()
	result := &models.SyncResult{
		RunID:     ulid.MustNew(ulid.Timestamp(started), rand.Reader).String(),
		DryRun:    dryRun,
		Errors:    []string{},
		Details:   []models.SyncDetail{},
		StartedAt: started,
	}
	log := s.log.With().Str("run_id", result.RunID).Bool("dry_run", dryRun).Logger()

	record := s.recorder != nil && !dryRun
	if record {
		if err := s.recorder.RunStarted(ctx, result.RunID); err != nil {
			log.Warn().Err(err).Msg("failed to record sync start")
		}
	}

	err := s.reconcile(ctx, dryRun, result, log)

	if record {
		if recErr := s.recorder.RunFinished(ctx, result.RunID, err); recErr != nil {
			log.Warn().Err(recErr).Msg("failed to record sync finish")
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("GHL sync failed")
		return nil, err
	}

	result.FinishedAt = s.now()
	log.Info().
		Int("remote", result.TotalRemote).
		Int("local", result.TotalLocal).
		Int("matched", result.Matched).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("GHL sync finished")

	return result, nil
}

func (s *Syncer) reconcile(ctx context.Context, dryRun bool, result *models.SyncResult, log zerolog.Logger) error {
	remote, err := s.source.FetchAll(ctx, s.opts.PageSize, s.opts.MaxRecords)
	if err != nil {
		return fmt.Errorf("failed to fetch GHL contacts: %w", err)
	}
	result.TotalRemote = len(remote)

	local, err := s.store.ListCandidateRefs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}
	result.TotalLocal = len(local)

	detailLevel := zerolog.DebugLevel
	if s.opts.Verbose {
		detailLevel = zerolog.InfoLevel
	}

	matcher := NewNameMatcher(local)

	for _, rc := range remote {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := rc.Name()
		if NormalizeNamePtr(rc.DisplayName) == "" {
			log.WithLevel(detailLevel).Str("remote_id", rc.ID).Msg("skipping contact without a name")
			continue
		}

		candidate, found := matcher.FindMatch(name)
		if !found {
			log.WithLevel(detailLevel).Str("remote_id", rc.ID).Str("name", name).Msg("no candidate match")
			continue
		}

		result.Matched++
		detail := models.SyncDetail{
			RemoteID:   rc.ID,
			RemoteName: name,
			LocalID:    candidate.ID,
			LocalName:  candidate.Name,
		}

		switch {
		case candidate.Linked():
			detail.Action = models.ActionSkipped
			detail.Reason = ReasonAlreadyLinked
			if _, inRun := matcher.LinkedThisRun(candidate.ID); inRun {
				detail.Reason = ReasonDuplicateRemote
			}
			result.Skipped++

		case dryRun:
			detail.Action = models.ActionWouldUpdate
			matcher.Link(candidate.ID, rc.ID)
			result.Updated++

		default:
			err := s.store.LinkRemoteContact(ctx, candidate.ID, rc.ID)
			switch {
			case err == nil:
				detail.Action = models.ActionUpdated
				matcher.Link(candidate.ID, rc.ID)
				result.Updated++
			case errors.Is(err, db.ErrAlreadyLinked):
				detail.Action = models.ActionSkipped
				detail.Reason = ReasonAlreadyLinked
				result.Skipped++
			default:
				detail.Action = models.ActionError
				detail.Reason = err.Error()
				result.Errors = append(result.Errors, fmt.Sprintf("%s (%s): %v", name, rc.ID, err))
			}
		}

		log.WithLevel(detailLevel).
			Str("remote_id", rc.ID).
			Int64("candidate_id", candidate.ID).
			Str("action", detail.Action).
			Str("reason", detail.Reason).
			Msg("matched GHL contact")

		result.Details = append(result.Details, detail)
	}

	return nil
}
