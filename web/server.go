// ABOUTME: HTTP JSON API for HireOS
// ABOUTME: Serves GHL sync preview/execute, candidate listing, and workflow enrollment at localhost
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/harperreed/hireos/config"
	"github.com/harperreed/hireos/db"
	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
	"github.com/rs/zerolog"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = 1 << 20

// Response is the envelope for every JSON answer. Success is false only for
// errors that stopped the operation; per-contact sync errors are listed in
// Errors with Success still true.
type Response struct {
	Success bool     `json:"success"`
	Result  any      `json:"result,omitempty"`
	Errors  []string `json:"errors"`
}

type Server struct {
	svc      *ghl.Service
	log      zerolog.Logger
	validate *validator.Validate
}

func NewServer(svc *ghl.Service, log zerolog.Logger) *Server {
	return &Server{
		svc:      svc,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/candidates", s.handleListCandidates)
		r.Post("/candidates", s.handleCreateCandidate)

		r.Route("/ghl", func(r chi.Router) {
			r.Get("/sync/preview", s.handleSyncPreview)
			r.Post("/sync/execute", s.handleSyncExecute)
			r.Get("/sync/status", s.handleSyncStatus)
			r.Post("/contacts/{contactID}/workflow/{workflowID}", s.handleAddToWorkflow)
		})
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", "http://localhost"+srv.Addr).Msg("starting web server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, Response{Success: true, Result: map[string]string{"status": "ok"}})
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	limit := models.DefaultCandidateListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	candidates, err := s.svc.Candidates().Find(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	s.respond(w, http.StatusOK, Response{Success: true, Result: candidates})
}

type createCandidateRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"omitempty,max=50"`
	Status string `json:"status" validate:"omitempty,oneof=new screening interview offer hired rejected withdrawn"`
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req createCandidateRequest
	if err := s.decode(r, &req, false); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	candidate := &models.Candidate{Name: req.Name, Email: req.Email, Phone: req.Phone, Status: req.Status}
	if err := s.svc.Candidates().Create(r.Context(), candidate); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, db.ErrInvalidCandidate) {
			status = http.StatusBadRequest
		}
		s.fail(w, status, err)
		return
	}

	s.respond(w, http.StatusCreated, Response{Success: true, Result: candidate})
}

type syncRequest struct {
	MaxRecords int  `json:"max_records" validate:"omitempty,min=1,max=10000"`
	Verbose    bool `json:"verbose"`
}

func (s *Server) handleSyncPreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Preview(r.Context())
	s.respondSync(w, result, err)
}

func (s *Server) handleSyncExecute(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := s.decode(r, &req, true); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	opts := s.svc.SyncOptions()
	if req.MaxRecords > 0 {
		opts.MaxRecords = req.MaxRecords
	}
	opts.Verbose = opts.Verbose || req.Verbose

	syncer, err := s.svc.Syncer(opts)
	if err != nil {
		s.respondSync(w, nil, err)
		return
	}

	result, err := syncer.Execute(r.Context())
	s.respondSync(w, result, err)
}

func (s *Server) respondSync(w http.ResponseWriter, result *models.SyncResult, err error) {
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	s.respond(w, http.StatusOK, Response{Success: true, Result: result, Errors: result.Errors})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	state, err := s.svc.SyncState()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if state == nil {
		state = &models.SyncState{Service: models.SyncServiceGHL, Status: models.SyncStatusIdle}
	}
	s.respond(w, http.StatusOK, Response{Success: true, Result: state})
}

type workflowRequest struct {
	EventStartTime *time.Time `json:"event_start_time"`
}

func (s *Server) handleAddToWorkflow(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")
	workflowID := chi.URLParam(r, "workflowID")

	var req workflowRequest
	if err := s.decode(r, &req, true); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	workflows, err := s.svc.WorkflowClient()
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}

	if err := workflows.AddContactToWorkflow(r.Context(), contactID, workflowID, req.EventStartTime); err != nil {
		s.fail(w, statusFor(err), err)
		return
	}

	s.respond(w, http.StatusOK, Response{Success: true, Result: map[string]string{
		"contact_id":  contactID,
		"workflow_id": workflowID,
	}})
}

// decode reads a JSON body into v and validates it. An empty body is only
// accepted when optional is set.
func (s *Server) decode(r *http.Request, v any, optional bool) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) == 0 {
		if optional {
			return nil
		}
		return errors.New("request body is required")
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// statusFor maps the integration error classes to HTTP statuses.
func statusFor(err error) int {
	var apiErr *ghl.APIError
	switch {
	case errors.Is(err, config.ErrMissingAPIKey), errors.Is(err, config.ErrMissingOAuthClient):
		return http.StatusServiceUnavailable
	case errors.Is(err, ghl.ErrNoToken), errors.Is(err, ghl.ErrNoRefreshToken), errors.Is(err, ghl.ErrReauthorize):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr), errors.Is(err, ghl.ErrInvalidPayload):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	s.respond(w, status, Response{Success: false, Errors: []string{err.Error()}})
}

func (s *Server) respond(w http.ResponseWriter, status int, resp Response) {
	if resp.Errors == nil {
		resp.Errors = []string{}
	}

	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("failed to write JSON response")
	}
}
