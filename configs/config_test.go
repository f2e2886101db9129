package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 60, cfg.RateLimit.Anon)
	assert.Equal(t, 300, cfg.RateLimit.User)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "littlelemon.orders", cfg.Rabbit.Exchange)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9000"
db:
  driver: postgres
  source: host=db dbname=lemon
ratelimit:
  anon: 5
`), 0o600))

	t.Setenv("LEMON_DB__SOURCE", "host=override dbname=lemon")
	t.Setenv("LEMON_RATELIMIT__WINDOW", "30s")
	t.Setenv("LEMON_JWT__SECRET", "s3cret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, "host=override dbname=lemon", cfg.DB.Source)
	assert.Equal(t, 5, cfg.RateLimit.Anon)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"no port":        func(c *Config) { c.App.Port = "" },
		"unknown driver": func(c *Config) { c.DB.Driver = "mysql" },
		"empty secret":   func(c *Config) { c.JWT.Secret = "" },
		"zero window":    func(c *Config) { c.RateLimit.Window = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
