// Package http exposes the symptom checker as a session-based REST API with
// server-sent state diffs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/luminex/symptomcheck/internal/presentation/graph"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
	"github.com/luminex/symptomcheck/pkg/runner"
	"github.com/luminex/symptomcheck/pkg/session"
)

// Server holds the handlers of the API.
type Server struct {
	Engine   ports.StatelessEngine
	Sessions *session.Manager
	Streams  *StreamManager

	logger  *slog.Logger
	spec    *openapi3.T
	version string
	metrics http.Handler
	watcher ports.Watchable
}

var _ ServerInterface = (*Server)(nil)

// Option configures the Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithGraphWatcher streams graph reloads to /events subscribers without a session.
func WithGraphWatcher(w ports.Watchable) Option {
	return func(s *Server) { s.watcher = w }
}

// NewHandler creates the HTTP handler for engine, persisting sessions through sessions.
func NewHandler(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		logger:   slog.New(slog.DiscardHandler),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s.spec = spec

	return s.Routes(), nil
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return HandlerFromMux(s, r)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, _ *http.Request) {
	apiVersion := "unknown"
	if s.spec != nil && s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "luminex-http",
		"version":     strings.TrimSpace(s.version),
		"api_version": apiVersion,
	})
}

// GetCatalog handles GET /catalog, the localized symptom picker.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request, params GetCatalogParams) {
	state, err := s.Engine.Start(r.Context(), "", domain.StartOptions{Language: domain.Language(deref(params.Lang))})
	if err != nil {
		s.fail(w, err)
		return
	}
	actions, _, err := s.Engine.Render(r.Context(), state)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actions[0].Payload)
}

// GetGraph handles GET /graph. format=mermaid returns a flowchart,
// highlighted with the path of session_id when given.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request, params GetGraphParams) {
	g, err := s.Engine.Inspect()
	if err != nil {
		s.fail(w, err)
		return
	}
	if deref(params.Format) != "mermaid" {
		writeJSON(w, http.StatusOK, g)
		return
	}

	lang, err := domain.ParseLanguage(deref(params.Lang))
	if err != nil {
		s.fail(w, err)
		return
	}
	var overlay *graph.GraphOverlay
	if id := deref(params.SessionID); id != "" {
		state, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, err)
			return
		}
		overlay = graph.OverlayFor(state)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, lang, overlay))
}

type startRequest struct {
	SessionID string `json:"session_id"`
	Symptom   string `json:"symptom"`
	Language  string `json:"language"`
	UserID    string `json:"user_id"`
}

// CreateSession handles POST /sessions. The symptom field plays the role of
// the ?symptom= query parameter and skips the entry selector.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request, params CreateSessionParams) {
	var body startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if q := deref(params.Symptom); q != "" && body.Symptom == "" {
		body.Symptom = q
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	created := false
	state, err := s.Sessions.LoadOrStart(r.Context(), body.SessionID, func(ctx context.Context) (*domain.State, error) {
		created = true
		return s.Engine.Start(ctx, body.SessionID, domain.StartOptions{
			Symptom:  body.Symptom,
			Language: domain.Language(body.Language),
			UserID:   body.UserID,
		})
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.broadcastDiff(nil, state)
	}
	s.respond(w, r, status, state)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, r, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inputRequest struct {
	Value string `json:"value"`
}

// ApplyAction handles POST /sessions/{id}/{action}.
func (s *Server) ApplyAction(w http.ResponseWriter, r *http.Request, id string, action string) {
	var body inputRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	value, err := runner.SanitizeInput(strings.TrimSpace(body.Value))
	if err != nil {
		s.fail(w, err)
		return
	}

	op, ok := s.operation(action, value)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	var before *domain.State
	next, err := s.Sessions.Update(r.Context(), id, func(ctx context.Context, current *domain.State) (*domain.State, error) {
		before = current
		return op(ctx, current)
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.broadcastDiff(before, next)
	s.respond(w, r, http.StatusOK, next)
}

type operation func(context.Context, *domain.State) (*domain.State, error)

func (s *Server) operation(action, value string) (operation, bool) {
	e := s.Engine
	switch action {
	case "symptom":
		return func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return e.SelectSymptom(ctx, st, value)
		}, true
	case "gender":
		return func(ctx context.Context, st *domain.State) (*domain.State, error) {
			g, err := domain.ParseGender(value)
			if err != nil {
				return nil, err
			}
			return e.SelectGender(ctx, st, g)
		}, true
	case "age":
		return func(ctx context.Context, st *domain.State) (*domain.State, error) {
			a, err := domain.ParseAgeRange(value)
			if err != nil {
				return nil, err
			}
			return e.SelectAgeRange(ctx, st, a)
		}, true
	case "start":
		return e.BeginAnalysis, true
	case "answer":
		return func(ctx context.Context, st *domain.State) (*domain.State, error) {
			return e.Answer(ctx, st, value)
		}, true
	case "language":
		return func(ctx context.Context, st *domain.State) (*domain.State, error) {
			if value == "" {
				return nil, fmt.Errorf("%w: language is required", domain.ErrUnknownLanguage)
			}
			return e.SwitchLanguage(ctx, st, domain.Language(value))
		}, true
	case "reset":
		return e.Reset, true
	}
	return nil, false
}

// Book handles POST /sessions/{id}/book.
func (s *Server) Book(w http.ResponseWriter, r *http.Request, id string) {
	var booking *domain.Booking
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context) error {
		state, err := s.Sessions.Store().Load(ctx, id)
		if err != nil {
			return err
		}
		booking, err = s.Engine.Book(ctx, state)
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, state *domain.State) {
	resp, err := runner.Respond(r.Context(), s.Engine, state)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, status, resp)
}

func (s *Server) broadcastDiff(before, after *domain.State) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode state diff", "err", err, "session_id", after.SessionID)
		return
	}
	s.Streams.Broadcast(after.SessionID, string(data))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPhase),
		errors.Is(err, domain.ErrGateIncomplete),
		errors.Is(err, domain.ErrSymptomRequired),
		errors.Is(err, domain.ErrNoResult):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrUnknownSymptom),
		errors.Is(err, domain.ErrUnknownGender),
		errors.Is(err, domain.ErrUnknownAgeRange),
		errors.Is(err, domain.ErrUnknownLanguage),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
