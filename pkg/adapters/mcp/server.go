// Package mcp exposes termwise sessions as Model Context Protocol tools.
// Every session tool takes a session_id, loads that session from the
// store, runs the tool and saves the session back when the tool changed it.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const schemaURI = "termwise://tools"

// ErrInvalidCall marks tool calls that are malformed before any session is
// touched: a missing session_id or an unknown tool name.
var ErrInvalidCall = errors.New("invalid tool call")

// Server wraps a session store and an Engine and exposes them as an MCP server.
type Server struct {
	store       ports.SessionStore
	eng         *termwise.Engine
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	defaultVars int

	// mu serializes load-modify-save cycles and guards rng.
	mu  sync.Mutex
	rng *rand.Rand

	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithRand fixes the generator used by new_game.
func WithRand(rng *rand.Rand) Option { return func(s *Server) { s.rng = rng } }

// WithDefaultVariables sets the variable count new_game uses when none is given.
func WithDefaultVariables(n int) Option { return func(s *Server) { s.defaultVars = n } }

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option { return func(s *Server) { s.gatherer = g } }

// NewServer creates a new MCP Server instance.
func NewServer(store ports.SessionStore, eng *termwise.Engine, version string, opts ...Option) *Server {
	s := &Server{
		store:       store,
		eng:         eng,
		logger:      slog.Default(),
		gatherer:    prometheus.DefaultGatherer,
		defaultVars: 2,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		mcpServer:   server.NewMCPServer("termwise", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("new_game",
		mcp.WithDescription("Start a game and return its session. Give either a variable count for a generated system or equations for a custom one."),
		mcp.WithNumber("variables", mcp.Description(fmt.Sprintf("Number of unknowns, 1 to %d", termwise.MaxVariables))),
		mcp.WithString("equations", mcp.Description("Custom equations separated by ';', e.g. '2x + y = 4; x - y = -1'")),
	), s.handleNewGame)

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored session ids"),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	for _, spec := range termwise.SessionTools {
		s.mcpServer.AddTool(newSessionTool(spec), s.sessionHandler(spec))
	}
}

func newSessionTool(spec termwise.ToolSpec) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(spec.Description),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session returned by new_game")),
	}
	for _, p := range spec.Params {
		var popts []mcp.PropertyOption
		popts = append(popts, mcp.Description(p.Description))
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(schemaURI, "Session tool schema",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      schemaURI,
				MIMEType: "application/json",
				Text:     termwise.ToolSchema(),
			},
		}, nil
	})
}

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var (
		sess *termwise.Session
		err  error
	)
	if text, _ := args["equations"].(string); strings.TrimSpace(text) != "" {
		sess, err = termwise.NewCustom(s.eng, splitEquations(text))
	} else {
		n := s.defaultVars
		if v, ok := args["variables"].(float64); ok {
			n = int(v)
		}
		s.mu.Lock()
		sess, err = termwise.NewGame(s.rng, n)
		s.mu.Unlock()
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Error("MCP new_game: save failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("save failed: %v", err)), nil
	}
	s.logger.Info("MCP new_game", "session", sess.ID, "variables", len(sess.Variables))
	return toolResult(termwise.ToolResponse{Result: sess.View(), String: sess.Summary()})
}

func splitEquations(text string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ';' || r == '\n' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) sessionHandler(spec termwise.ToolSpec) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		id, _ := args["session_id"].(string)
		resp, err := s.Call(ctx, id, termwise.ToolRequest{Tool: spec.Name, Params: args})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toolResult(resp)
	}
}

// Call runs one session tool against a stored session and persists the
// result when the tool succeeded and changes state. Tool failures come back
// in the response; the error return is for store and lookup failures.
func (s *Server) Call(ctx context.Context, sessionID string, req termwise.ToolRequest) (termwise.ToolResponse, error) {
	if sessionID == "" {
		return termwise.ToolResponse{}, fmt.Errorf("%w: missing param: session_id", ErrInvalidCall)
	}
	spec, ok := termwise.LookupTool(req.Tool)
	if !ok {
		return termwise.ToolResponse{}, fmt.Errorf("%w: unknown tool: %s", ErrInvalidCall, req.Tool)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return termwise.ToolResponse{}, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return termwise.ToolResponse{}, fmt.Errorf("load failed: %w", err)
	}

	resp := sess.HandleToolCall(s.eng, req)
	if resp.Error != "" {
		s.logger.Debug("MCP tool rejected", "tool", req.Tool, "session", sessionID, "error", resp.Error)
		return resp, nil
	}
	if spec.Mutates {
		if err := s.store.Save(ctx, sess); err != nil {
			return termwise.ToolResponse{}, fmt.Errorf("save failed: %w", err)
		}
	}
	return resp, nil
}

func toolResult(resp termwise.ToolResponse) (*mcp.CallToolResult, error) {
	if resp.Error != "" {
		return mcp.NewToolResultError(resp.Error), nil
	}
	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
