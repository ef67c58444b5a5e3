// Package config loads termwise settings from defaults, a YAML file,
// TERMWISE_ environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/njchilds90/termwise"
	"github.com/spf13/pflag"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = "termwise.yaml"

const envPrefix = "TERMWISE_"

type Config struct {
	Store StoreConfig `koanf:"store"`
	Log   LogConfig   `koanf:"log"`
	MCP   MCPConfig   `koanf:"mcp"`
	Game  GameConfig  `koanf:"game"`
}

type StoreConfig struct {
	// Backend is memory, file or redis.
	Backend string      `koanf:"backend"`
	Dir     string      `koanf:"dir"`
	Redis   RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MCPConfig struct {
	// Transport is stdio or sse.
	Transport string `koanf:"transport"`
	Port      int    `koanf:"port"`
}

type GameConfig struct {
	Variables int `koanf:"variables"`
	// Seed fixes the generator; zero picks a random seed.
	Seed uint64 `koanf:"seed"`
}

func defaults() map[string]any {
	return map[string]any{
		"store.backend":        "file",
		"store.dir":            ".termwise/sessions",
		"store.redis.addr":     "localhost:6379",
		"store.redis.password": "",
		"store.redis.db":       0,
		"store.redis.prefix":   "termwise:session:",
		"store.redis.ttl":      "0s",
		"log.level":            "info",
		"log.format":           "text",
		"mcp.transport":        "stdio",
		"mcp.port":             8080,
		"game.variables":       2,
		"game.seed":            0,
	}
}

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// not configuration.
var flagKeys = map[string]string{
	"store":      "store.backend",
	"store-dir":  "store.dir",
	"redis-addr": "store.redis.addr",
	"log-level":  "log.level",
	"log-format": "log.format",
	"transport":  "mcp.transport",
	"port":       "mcp.port",
	"vars":       "game.variables",
	"seed":       "game.seed",
}

// Load builds the configuration. cfgFile may be empty, in which case
// DefaultFile is read if present. flags may be nil; only flags the user
// set explicitly override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// TERMWISE_STORE_REDIS_ADDR -> store.redis.addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks enumerated settings and ranges.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("store.backend must be memory, file or redis, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "file" && c.Store.Dir == "" {
		return fmt.Errorf("store.dir is required for the file backend")
	}
	if c.Store.Backend == "redis" && c.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis backend")
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport must be stdio or sse, got %q", c.MCP.Transport)
	}
	if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
		return fmt.Errorf("mcp.port %d out of range", c.MCP.Port)
	}
	if c.Game.Variables < 1 || c.Game.Variables > termwise.MaxVariables {
		return fmt.Errorf("game.variables must be between 1 and %d, got %d", termwise.MaxVariables, c.Game.Variables)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
