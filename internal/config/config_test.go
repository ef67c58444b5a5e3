package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("store", "file", "")
	fs.String("store-dir", "", "")
	fs.Int("vars", 2, "")
	fs.Uint64("seed", 0, "")
	fs.String("transport", "stdio", "")
	fs.Bool("verbose", false, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, ".termwise/sessions", cfg.Store.Dir)
	assert.Equal(t, "termwise:session:", cfg.Store.Redis.Prefix)
	assert.Equal(t, time.Duration(0), cfg.Store.Redis.TTL)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
	assert.Equal(t, 8080, cfg.MCP.Port)
	assert.Equal(t, 2, cfg.Game.Variables)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte(`
store:
  backend: redis
  redis:
    addr: cache:6379
    ttl: 10m
game:
  variables: 3
mcp:
  port: 9000
`), 0o644))
	t.Setenv("TERMWISE_MCP_PORT", "9100")
	t.Setenv("TERMWISE_GAME_VARIABLES", "4")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--vars", "1", "--seed", "77", "--verbose"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend, "file beats default")
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 10*time.Minute, cfg.Store.Redis.TTL)
	assert.Equal(t, 9100, cfg.MCP.Port, "env beats file")
	assert.Equal(t, 1, cfg.Game.Variables, "flag beats env")
	assert.Equal(t, uint64(77), cfg.Game.Seed)
	assert.Equal(t, "stdio", cfg.MCP.Transport, "unset flag does not override")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Store: StoreConfig{Backend: "memory"},
			Log:   LogConfig{Level: "info", Format: "text"},
			MCP:   MCPConfig{Transport: "sse", Port: 8080},
			Game:  GameConfig{Variables: 2},
		}
	}
	cases := map[string]func(*Config){
		"backend":   func(c *Config) { c.Store.Backend = "s3" },
		"file dir":  func(c *Config) { c.Store.Backend = "file" },
		"redis":     func(c *Config) { c.Store.Backend = "redis" },
		"transport": func(c *Config) { c.MCP.Transport = "ws" },
		"port":      func(c *Config) { c.MCP.Port = 0 },
		"vars low":  func(c *Config) { c.Game.Variables = 0 },
		"vars high": func(c *Config) { c.Game.Variables = 5 },
		"format":    func(c *Config) { c.Log.Format = "xml" },
	}
	ok := base()
	require.NoError(t, ok.Validate())
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
