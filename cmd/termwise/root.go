package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/njchilds90/termwise"
	"github.com/njchilds90/termwise/internal/config"
	"github.com/njchilds90/termwise/internal/logging"
	"github.com/njchilds90/termwise/pkg/adapters/file"
	"github.com/njchilds90/termwise/pkg/adapters/memory"
	"github.com/njchilds90/termwise/pkg/adapters/redis"
	"github.com/njchilds90/termwise/pkg/ports"
	"github.com/spf13/cobra"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "termwise",
	Short: "Solve linear equation systems one algebraic move at a time",
	Long: `termwise keeps a set of linear equations and lets you rewrite them by
applying terms to both sides, combining and substituting equations,
distributing products and dragging terms across the equals sign.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		slog.SetDefault(logging.New(level, loaded.Log.Format))
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./termwise.yaml)")
	rootCmd.PersistentFlags().String("store", "file", "Session store: memory, file or redis")
	rootCmd.PersistentFlags().String("store-dir", ".termwise/sessions", "Directory of the file store")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address of the redis store")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// openStore builds the configured session store. The returned close
// function releases backend connections.
func openStore(c *config.Config) (ports.SessionStore, func() error, error) {
	switch c.Store.Backend {
	case "memory":
		return memory.NewStore(), func() error { return nil }, nil
	case "file":
		return file.New(c.Store.Dir), func() error { return nil }, nil
	case "redis":
		store := redis.New(c.Store.Redis.Addr, c.Store.Redis.Password, c.Store.Redis.DB,
			redis.WithPrefix(c.Store.Redis.Prefix),
			redis.WithTTL(c.Store.Redis.TTL),
		)
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", c.Store.Backend)
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func newEngine(opts ...termwise.Option) *termwise.Engine {
	return termwise.NewEngine(append([]termwise.Option{termwise.WithLogger(slog.Default())}, opts...)...)
}
