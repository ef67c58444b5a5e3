package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// ToolCall is the body of POST /tool.
type ToolCall struct {
	SessionID string         `json:"session_id"`
	Tool      string         `json:"tool"`
	Params    map[string]any `json:"params"`
}

// Handler routes the SSE transport plus plain HTTP endpoints:
//
//	GET  /sse, POST /message  MCP over SSE
//	POST /tool                one session tool call as JSON
//	GET  /schema              tool schema for agent registration
//	GET  /health              liveness
//	GET  /metrics             Prometheus
func (s *Server) Handler(baseURL string) http.Handler {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Handle("/sse", sseServer.SSEHandler())
	r.Handle("/message", sseServer.MessageHandler())
	r.Post("/tool", s.handleTool)
	r.Get("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, termwise.ToolSchema())
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ServeSSE listens on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(fmt.Sprintf("http://localhost:%d", port)),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutdown signal received, shutting down server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var call ToolCall
	if err := dec.Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, termwise.ToolResponse{Error: err.Error()})
		return
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, termwise.ToolResponse{Error: "invalid JSON: trailing data"})
		return
	}

	resp, err := s.Call(r.Context(), call.SessionID, termwise.ToolRequest{Tool: call.Tool, Params: call.Params})
	if err != nil {
		status := callStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Tool call failed", "tool", call.Tool, "session", call.SessionID, "error", err)
		} else {
			s.logger.Warn("Tool call rejected", "tool", call.Tool, "session", call.SessionID, "error", err)
		}
		writeJSON(w, status, termwise.ToolResponse{Error: err.Error()})
		return
	}
	// Rejected operations are still a well-formed exchange.
	writeJSON(w, http.StatusOK, resp)
}

// callStatus maps a Call error to an HTTP status. Store failures are the
// server's fault.
func callStatus(err error) int {
	switch {
	case errors.Is(err, ports.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCall), errors.Is(err, ports.ErrInvalidSessionID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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
