// Package config loads the client's settings.
//
// PRECEDENCE (lowest to highest):
//
//	Default() → YAML file (--config) → ALGOTEST_* environment → command-line flags
//
// Flags are applied by cmd/algotest after Load returns; Validate runs last,
// once every source has had its say.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sakif/algotest/internal/catalog"
	"github.com/sakif/algotest/internal/model"
)

const (
	DefaultAPIURL         = "http://localhost:3001"
	DefaultLogFile        = "algotest.log"
	DefaultRequestTimeout = 30 * time.Second
	DefaultJWTSubject     = "algotest-client"
)

// Config is the full client configuration.
type Config struct {
	APIURL         string        `yaml:"api_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gte=0"`
	RateLimit      float64       `yaml:"rate_limit" validate:"gte=0"` // requests per second, 0 = unlimited
	RateBurst      int           `yaml:"rate_burst" validate:"gte=0"`

	// HistoryDB is the SQLite file for run history; empty disables history.
	HistoryDB string `yaml:"history_db"`
	// LogFile receives the structured log; empty discards it. The terminal
	// belongs to the UI, so logs never go to stdout.
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Auth AuthConfig `yaml:"auth"`

	// LegacyShapes maps algorithm ids to input shapes for servers that do
	// not tag their descriptors.
	LegacyShapes map[int]string `yaml:"legacy_shapes" validate:"dive,keys,gte=0,endkeys,required"`
}

// AuthConfig selects how requests to the execution service authenticate.
// At most one of JWTSecret and OAuth may be set.
type AuthConfig struct {
	JWTSecret  string      `yaml:"jwt_secret" validate:"omitempty,min=16"`
	JWTSubject string      `yaml:"jwt_subject"`
	OAuth      OAuthConfig `yaml:"oauth"`
}

type OAuthConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenURL     string   `yaml:"token_url" validate:"omitempty,url"`
	Scopes       []string `yaml:"scopes"`
}

// Default returns the built-in configuration.
func Default() Config {
	shapes := make(map[int]string)
	for id, s := range catalog.DefaultLegacyShapes() {
		shapes[id] = string(s)
	}
	return Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		LogFile:        DefaultLogFile,
		LogLevel:       "info",
		Auth:           AuthConfig{JWTSubject: DefaultJWTSubject},
		LegacyShapes:   shapes,
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty) and the environment as seen through lookup, which is
// os.LookupEnv outside tests.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	str("ALGOTEST_API_URL", &c.APIURL)
	str("ALGOTEST_HISTORY_DB", &c.HistoryDB)
	str("ALGOTEST_LOG_FILE", &c.LogFile)
	str("ALGOTEST_LOG_LEVEL", &c.LogLevel)
	str("ALGOTEST_JWT_SECRET", &c.Auth.JWTSecret)
	str("ALGOTEST_JWT_SUBJECT", &c.Auth.JWTSubject)
	str("ALGOTEST_OAUTH_CLIENT_ID", &c.Auth.OAuth.ClientID)
	str("ALGOTEST_OAUTH_CLIENT_SECRET", &c.Auth.OAuth.ClientSecret)
	str("ALGOTEST_OAUTH_TOKEN_URL", &c.Auth.OAuth.TokenURL)

	if v, ok := lookup("ALGOTEST_OAUTH_SCOPES"); ok {
		c.Auth.OAuth.Scopes = splitList(v)
	}

	if v, ok := lookup("ALGOTEST_RATE_LIMIT"); ok && v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: invalid ALGOTEST_RATE_LIMIT %q: %w", v, err)
		}
		c.RateLimit = n
	}
	if v, ok := lookup("ALGOTEST_RATE_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid ALGOTEST_RATE_BURST %q: %w", v, err)
		}
		c.RateBurst = n
	}
	if v, ok := lookup("ALGOTEST_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid ALGOTEST_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.RequestTimeout = d
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the final configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}

	if c.Auth.OAuth.ClientID != "" && c.Auth.OAuth.TokenURL == "" {
		return errors.New("config: auth.oauth.token_url is required with a client_id")
	}
	if c.Auth.JWTSecret != "" && c.Auth.OAuth.ClientID != "" {
		return errors.New("config: configure either auth.jwt_secret or auth.oauth, not both")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values mean Info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Shapes returns LegacyShapes as model.InputShape values.
func (c Config) Shapes() map[int]model.InputShape {
	out := make(map[int]model.InputShape, len(c.LegacyShapes))
	for id, s := range c.LegacyShapes {
		out[id] = model.InputShape(s)
	}
	return out
}
