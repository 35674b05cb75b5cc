// Package main is the entry point for the AlgoTest terminal client.
//
// main only wires things together:
//  1. Read configuration (defaults → --config file → ALGOTEST_* env → flags)
//  2. Create dependencies (logger, HTTP transport chain, history database)
//  3. Hand the assembled Workbench to the terminal UI
//
// All behaviour lives in internal/ packages.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sakif/algotest/internal/apiclient"
	"github.com/sakif/algotest/internal/auth"
	"github.com/sakif/algotest/internal/catalog"
	"github.com/sakif/algotest/internal/config"
	"github.com/sakif/algotest/internal/execution"
	"github.com/sakif/algotest/internal/middleware"
	"github.com/sakif/algotest/internal/presenter"
	"github.com/sakif/algotest/internal/repository"
	"github.com/sakif/algotest/internal/repository/sqlite"
	"github.com/sakif/algotest/internal/service"
	"github.com/sakif/algotest/internal/tui"
)

type options struct {
	configPath string
	apiURL     string
	historyDB  string
	logFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "algotest",
		Short: "Run algorithms on a remote execution service from your terminal",
		Long: `algotest lists the algorithms offered by an execution service, lets you
type input for one, runs it remotely and shows the result.

Sorting algorithms take a comma-separated list:   5,2,8,1,9
Search algorithms take the list and a target:     1,2,3,4,5
                                                  4`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	f.StringVar(&opts.apiURL, "api-url", "", "execution service base URL (default "+config.DefaultAPIURL+")")
	f.StringVar(&opts.historyDB, "history-db", "", "SQLite file for run history (empty disables history)")
	f.StringVar(&opts.logFile, "log-file", "", "log file (default "+config.DefaultLogFile+", empty string disables logging)")
	f.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")

	return cmd
}

// loadConfig layers command-line flags over the file and environment. Only
// flags the operator actually passed override anything.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath, os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = opts.apiURL
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = opts.historyDB
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	// The UI takes over the terminal; without one there is nothing to drive.
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return errors.New("algotest needs an interactive terminal")
	}

	// === 1. LOGGING ===
	// The terminal belongs to the UI, so logs go to a file or nowhere.
	logOut := io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("algotest starting")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// === 2. HTTP CLIENT ===
	httpClient, err := newHTTPClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	api, err := apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.RateBurst,
	}, httpClient, logger)
	if err != nil {
		return err
	}
	logger.Info("execution service configured", slog.String("base_url", api.BaseURL()))

	// === 3. HISTORY ===
	var history repository.RunRepository
	if cfg.HistoryDB != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryDB), 0o755); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
		db, err := sqlite.New(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer db.Close()
		history = db
	}

	// === 4. CORE + WORKBENCH ===
	wb := service.NewWorkbench(
		catalog.New(api, logger, catalog.WithLegacyShapes(cfg.Shapes())),
		execution.NewClient(api, logger),
		presenter.New(time.Local, time.Now),
		history,
		logger,
	)

	// === 5. UI ===
	p := tea.NewProgram(tui.New(ctx, wb), tea.WithAltScreen(), tea.WithContext(ctx))
	wb.Subscribe(func(s execution.State) {
		p.Send(tui.StateMsg{State: s})
	})

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("ui exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("algotest stopped")
	return nil
}

// newHTTPClient builds the outgoing transport chain:
//
//	request id → logging → bearer token (if a JWT secret is set) → network
//
// With OAuth2 configured, the oauth2 transport wraps the whole chain.
func newHTTPClient(ctx context.Context, cfg config.Config, logger *slog.Logger) (*http.Client, error) {
	wrappers := []func(http.RoundTripper) http.RoundTripper{
		middleware.RequestID,
		middleware.LogTransport(logger),
	}

	if cfg.Auth.JWTSecret != "" {
		tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, err
		}
		wrappers = append(wrappers, auth.BearerTransport(tokens, cfg.Auth.JWTSubject))
	}

	client := &http.Client{
		Transport: middleware.Chain(http.DefaultTransport, wrappers...),
		Timeout:   cfg.RequestTimeout,
	}

	oauth := auth.ClientCredentials{
		ClientID:     cfg.Auth.OAuth.ClientID,
		ClientSecret: cfg.Auth.OAuth.ClientSecret,
		TokenURL:     cfg.Auth.OAuth.TokenURL,
		Scopes:       cfg.Auth.OAuth.Scopes,
	}
	if oauth.Enabled() {
		logger.Info("using OAuth2 client credentials", slog.String("token_url", oauth.TokenURL))
		return oauth.HTTPClient(ctx, client)
	}
	return client, nil
}
