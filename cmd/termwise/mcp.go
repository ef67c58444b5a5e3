package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/pkg/adapters/mcp"
	"github.com/njchilds90/termwise/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts termwise as an MCP Server so agents can play sessions as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP, plus /tool, /schema, /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observer, err := metrics.New(reg)
		if err != nil {
			return err
		}

		srv := mcp.NewServer(store, newEngine(termwise.WithObserver(observer)), termwise.Version,
			mcp.WithLogger(slog.Default()),
			mcp.WithRand(newRand(cfg.Game.Seed)),
			mcp.WithDefaultVariables(cfg.Game.Variables),
			mcp.WithGatherer(reg),
		)

		switch cfg.MCP.Transport {
		case "sse":
			slog.Info("Starting termwise MCP Server (SSE)", "port", cfg.MCP.Port)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			slog.Info("MCP Server stopped gracefully")
			return nil
		default:
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			slog.Info("Starting termwise MCP Server (Stdio)")
			return srv.ServeStdio()
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().Int("vars", 2, "Default number of unknowns for new_game")
	mcpCmd.Flags().Uint64("seed", 0, "Generator seed (0 picks one at random)")
}
