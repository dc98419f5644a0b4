// ABOUTME: Config-driven wiring of the GHL integration for the CLI, MCP tools, and web routes
// ABOUTME: Owns the process-wide token manager so refresh de-duplication spans every caller
package ghl

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/harperreed/hireos/config"
	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
)

type Service struct {
	cfg        *config.Config
	log        zerolog.Logger
	candidates *db.CandidateRepository
	tokenRepo  *db.TokenRepository
	recorder   *db.SyncStateRecorder
	tokens     *TokenManager
}

func NewService(cfg *config.Config, database *sql.DB, log zerolog.Logger) *Service {
	tokenRepo := db.NewTokenRepository(database)

	return &Service{
		cfg:        cfg,
		log:        log,
		candidates: db.NewCandidateRepository(database),
		tokenRepo:  tokenRepo,
		recorder:   db.NewSyncStateRecorder(database, models.SyncServiceGHL),
		tokens: NewTokenManager(tokenRepo,
			NewOAuthConfig(cfg.GHL.ClientID, cfg.GHL.ClientSecret, cfg.GHL.TokenURL),
			WithTokenLogger(log),
			WithTokenHTTPClient(&http.Client{Timeout: cfg.GHL.RequestTimeout})),
	}
}

func (s *Service) Candidates() *db.CandidateRepository {
	return s.candidates
}

// SyncOptions returns the configured sync defaults.
func (s *Service) SyncOptions() SyncOptions {
	return SyncOptions{
		PageSize:   s.cfg.Sync.PageSize,
		MaxRecords: s.cfg.Sync.MaxRecords,
		Verbose:    s.cfg.Sync.Verbose,
	}
}

func (s *Service) LegacyClient() (*LegacyClient, error) {
	if err := s.cfg.RequireLegacyAPI(); err != nil {
		return nil, err
	}
	return NewLegacyClient(s.cfg.GHL.BaseURL, s.cfg.GHL.APIKey, s.cfg.GHL.RequestTimeout), nil
}

func (s *Service) Fetcher() (*ContactFetcher, error) {
	client, err := s.LegacyClient()
	if err != nil {
		return nil, err
	}
	return NewContactFetcher(client, s.cfg.Sync.PageDelay, s.log), nil
}

// Syncer builds a syncer over the legacy API and the candidate store.
func (s *Service) Syncer(opts SyncOptions) (*Syncer, error) {
	fetcher, err := s.Fetcher()
	if err != nil {
		return nil, err
	}
	return NewSyncer(fetcher, s.candidates, opts,
		WithRecorder(s.recorder),
		WithSyncLogger(s.log)), nil
}

func (s *Service) Preview(ctx context.Context) (*models.SyncResult, error) {
	syncer, err := s.Syncer(s.SyncOptions())
	if err != nil {
		return nil, err
	}
	return syncer.Preview(ctx)
}

func (s *Service) Execute(ctx context.Context) (*models.SyncResult, error) {
	syncer, err := s.Syncer(s.SyncOptions())
	if err != nil {
		return nil, err
	}
	return syncer.Execute(ctx)
}

// Analyze fetches both sides and compares names without writing.
func (s *Service) Analyze(ctx context.Context) (*NameAnalysis, error) {
	fetcher, err := s.Fetcher()
	if err != nil {
		return nil, err
	}

	remote, err := fetcher.FetchAll(ctx, s.cfg.Sync.PageSize, s.cfg.Sync.MaxRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GHL contacts: %w", err)
	}

	local, err := s.candidates.ListCandidateRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}

	return AnalyzeNames(remote, local), nil
}

func (s *Service) SyncState() (*models.SyncState, error) {
	return s.recorder.LastRun()
}

// SyncStuck reports a run that has been "syncing" longer than d, left behind
// by a process that died mid-run.
func (s *Service) SyncStuck(d time.Duration) (bool, error) {
	return s.recorder.IsSyncStuck(d)
}

// TokenManager returns the shared manager once OAuth client credentials are configured.
func (s *Service) TokenManager() (*TokenManager, error) {
	if err := s.cfg.RequireOAuth(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

// StoreToken saves an operator-supplied token pair, e.g. from the initial authorization.
func (s *Service) StoreToken(ctx context.Context, tok *models.OAuthToken) error {
	if tok.UserType == "" {
		tok.UserType = models.UserTypeLocation
	}
	if tok.AccessToken == "" || tok.RefreshToken == "" {
		return fmt.Errorf("access token and refresh token are required")
	}
	return s.tokenRepo.SaveToken(ctx, tok)
}

func (s *Service) WorkflowClient() (*WorkflowClient, error) {
	tokens, err := s.TokenManager()
	if err != nil {
		return nil, err
	}

	api := NewAPIClient(tokens,
		WithAPILogger(s.log),
		WithHTTPClient(&http.Client{Timeout: s.cfg.GHL.RequestTimeout}))
	return NewWorkflowClient(api, s.cfg.GHL.APIBaseURL, s.cfg.GHL.APIVersion), nil
}
