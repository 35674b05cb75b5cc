package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/algotest/internal/model"
)

// env builds a lookup function over a fixed map.
func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "algotest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("", env(nil))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:3001", cfg.APIURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, "algotest.log", cfg.LogFile)
	assert.Empty(t, cfg.HistoryDB, "history is off unless configured")
	assert.Equal(t, map[int]model.InputShape{3: model.ShapeArraySearch}, cfg.Shapes())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
api_url: http://exec.internal:8080
request_timeout: 5s
rate_limit: 2.5
history_db: /tmp/history.db
log_level: debug
legacy_shapes:
  3: arraySearch
  11: arraySearch
auth:
  oauth:
    client_id: algotest
    token_url: http://auth.internal/token
    scopes: [run]
`)

	cfg, err := Load(path, env(map[string]string{
		"ALGOTEST_API_URL":      "https://exec.example.com",
		"ALGOTEST_OAUTH_SCOPES": "run, catalog ,",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://exec.example.com", cfg.APIURL, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, "/tmp/history.db", cfg.HistoryDB)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"run", "catalog"}, cfg.Auth.OAuth.Scopes)
	assert.Equal(t, model.ShapeArraySearch, cfg.Shapes()[11])
}

func TestLoad_EmptyEnvClearsFileValue(t *testing.T) {
	path := writeFile(t, "log_file: client.log\n")

	cfg, err := Load(path, env(map[string]string{"ALGOTEST_LOG_FILE": ""}))
	require.NoError(t, err)
	assert.Empty(t, cfg.LogFile)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "api_url: [unclosed"), env(nil))
	assert.Error(t, err)

	_, err = Load("", env(map[string]string{"ALGOTEST_RATE_LIMIT": "fast"}))
	assert.ErrorContains(t, err, "ALGOTEST_RATE_LIMIT")

	_, err = Load("", env(map[string]string{"ALGOTEST_REQUEST_TIMEOUT": "30"}))
	assert.ErrorContains(t, err, "ALGOTEST_REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad url", func(c *Config) { c.APIURL = "not a url" }, "APIURL"},
		{"missing url", func(c *Config) { c.APIURL = "" }, "APIURL"},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, "RateLimit"},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "LogLevel"},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "JWTSecret"},
		{"oauth without token url", func(c *Config) { c.Auth.OAuth.ClientID = "id" }, "token_url"},
		{"empty legacy shape", func(c *Config) { c.LegacyShapes[5] = "" }, "LegacyShapes"},
		{"both auth modes", func(c *Config) {
			c.Auth.JWTSecret = "0123456789abcdef0123"
			c.Auth.OAuth = OAuthConfig{ClientID: "id", TokenURL: "http://auth/token"}
		}, "not both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
