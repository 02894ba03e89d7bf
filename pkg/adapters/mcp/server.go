// Package mcp exposes the symptom checker to AI agents as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/luminex/symptomcheck/internal/presentation/graph"
	"github.com/luminex/symptomcheck/pkg/domain"
	"github.com/luminex/symptomcheck/pkg/ports"
	"github.com/luminex/symptomcheck/pkg/runner"
	"github.com/luminex/symptomcheck/pkg/session"
)

const (
	GraphURI   = "luminex://graph"
	MermaidURI = "luminex://graph.mmd"
)

// RenderResponse is the structured output of the session tools.
type RenderResponse struct {
	State    *domain.State          `json:"state" jsonschema_description:"The session state after the call"`
	Actions  []domain.ActionRequest `json:"actions" jsonschema_description:"What to present next: a question with its options or the result"`
	Terminal bool                   `json:"terminal" jsonschema_description:"True once a recommendation has been reached"`
}

type listArgs struct {
	Language string `json:"language"`
}

type startArgs struct {
	SessionID string `json:"session_id"`
	Symptom   string `json:"symptom"`
	Gender    string `json:"gender"`
	AgeRange  string `json:"age_range"`
	Language  string `json:"language"`
}

type answerArgs struct {
	SessionID string `json:"session_id"`
	Option    string `json:"option"`
}

type languageArgs struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    ports.StatelessEngine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server. Sessions persist through sessions so an
// agent can continue a check across calls.
func NewServer(engine ports.StatelessEngine, sessions *session.Manager, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logger,
		mcpServer: server.NewMCPServer("luminex-symptom-checker", strings.TrimSpace(version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	languages := mcp.Enum(string(domain.Turkish), string(domain.English))

	s.mcpServer.AddTool(mcp.NewTool("list_symptoms",
		mcp.WithDescription("List the symptoms a check can start from, grouped by category."),
		mcp.WithString("language", languages, mcp.Description("Display language, Turkish by default")),
		mcp.WithOutputSchema[domain.EntryView](),
	), mcp.NewStructuredToolHandler(s.handleListSymptoms))

	genders := make([]string, len(domain.Genders))
	for i, g := range domain.Genders {
		genders[i] = string(g)
	}
	ages := make([]string, len(domain.AgeRanges))
	for i, a := range domain.AgeRanges {
		ages[i] = string(a)
	}

	s.mcpServer.AddTool(mcp.NewTool("start_check",
		mcp.WithDescription("Start a symptom check and return its first question. This is not a medical diagnosis."),
		mcp.WithString("symptom", mcp.Required(), mcp.Description("Symptom key from list_symptoms")),
		mcp.WithString("gender", mcp.Required(), mcp.Enum(genders...)),
		mcp.WithString("age_range", mcp.Required(), mcp.Enum(ages...)),
		mcp.WithString("language", languages),
		mcp.WithString("session_id", mcp.Description("Optional id; generated when empty")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Answer the current question with an option id, its 1-based position or its label."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("option", mcp.Required()),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("switch_language",
		mcp.WithDescription("Change the session language. A check in progress restarts at its first question."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("language", mcp.Required(), languages),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleLanguage))

	s.mcpServer.AddTool(mcp.NewTool("book",
		mcp.WithDescription("Hand the recommendation of a finished check off to appointment booking."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithOutputSchema[domain.Booking](),
	), mcp.NewStructuredToolHandler(s.handleBook))
}

func (s *Server) handleListSymptoms(ctx context.Context, _ mcp.CallToolRequest, args listArgs) (domain.EntryView, error) {
	state, err := s.engine.Start(ctx, "", domain.StartOptions{Language: domain.Language(args.Language)})
	if err != nil {
		return domain.EntryView{}, err
	}
	actions, _, err := s.engine.Render(ctx, state)
	if err != nil {
		return domain.EntryView{}, err
	}
	view, _ := actions[0].Payload.(domain.EntryView)
	return view, nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args startArgs) (RenderResponse, error) {
	id := args.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	gender, err := domain.ParseGender(args.Gender)
	if err != nil {
		return RenderResponse{}, err
	}
	age, err := domain.ParseAgeRange(args.AgeRange)
	if err != nil {
		return RenderResponse{}, err
	}

	var state *domain.State
	err = s.sessions.WithLock(ctx, id, func(ctx context.Context) error {
		st, err := s.engine.Start(ctx, id, domain.StartOptions{Symptom: args.Symptom, Language: domain.Language(args.Language)})
		if err != nil {
			return err
		}
		if st, err = s.engine.SelectGender(ctx, st, gender); err != nil {
			return err
		}
		if st, err = s.engine.SelectAgeRange(ctx, st, age); err != nil {
			return err
		}
		if st, err = s.engine.BeginAnalysis(ctx, st); err != nil {
			return err
		}
		state = st
		return s.sessions.Store().Save(ctx, id, st)
	})
	if err != nil {
		return RenderResponse{}, err
	}
	return s.render(ctx, state)
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (RenderResponse, error) {
	option, err := runner.SanitizeInput(args.Option)
	if err != nil {
		s.logger.Warn("MCP answer rejected", "err", err, "size", len(args.Option))
		return RenderResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Answer(ctx, st, option)
	})
}

func (s *Server) handleLanguage(ctx context.Context, _ mcp.CallToolRequest, args languageArgs) (RenderResponse, error) {
	if strings.TrimSpace(args.Language) == "" {
		return RenderResponse{}, fmt.Errorf("%w: language is required", domain.ErrUnknownLanguage)
	}
	return s.update(ctx, args.SessionID, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.SwitchLanguage(ctx, st, domain.Language(args.Language))
	})
}

func (s *Server) handleBook(ctx context.Context, _ mcp.CallToolRequest, args sessionArgs) (domain.Booking, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return domain.Booking{}, err
	}
	booking, err := s.engine.Book(ctx, state)
	if err != nil {
		return domain.Booking{}, err
	}
	return *booking, nil
}

func (s *Server) update(ctx context.Context, id string, fn func(context.Context, *domain.State) (*domain.State, error)) (RenderResponse, error) {
	if id == "" {
		return RenderResponse{}, errors.New("session_id is required")
	}
	state, err := s.sessions.Update(ctx, id, fn)
	if err != nil {
		return RenderResponse{}, err
	}
	return s.render(ctx, state)
}

func (s *Server) render(ctx context.Context, state *domain.State) (RenderResponse, error) {
	resp, err := runner.Respond(ctx, s.engine, state)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return RenderResponse{State: resp.State, Actions: resp.Actions, Terminal: resp.Terminal}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Decision graph",
		mcp.WithResourceDescription("Questions, options, results and branches of the symptom checker"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g, err := s.engine.Inspect()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect graph: %w", err)
		}
		data, err := json.Marshal(g)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{URI: GraphURI, MIMEType: "application/json", Text: string(data)}}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(MermaidURI, "Decision graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g, err := s.engine.Inspect()
		if err != nil {
			return nil, fmt.Errorf("failed to inspect graph: %w", err)
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      MermaidURI,
			MIMEType: "text/plain",
			Text:     graph.GenerateMermaid(g, domain.DefaultLanguage, nil),
		}}, nil
	})
}
