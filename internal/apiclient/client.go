// Package apiclient talks to the remote execution service.
//
// It owns the two HTTP endpoints and nothing else:
//
//	GET  {base}/api/algorithms     → {"algorithms": [...]}
//	POST {base}/api/run-algorithm  → ExecutionResult, or non-2xx {"error": "..."}
//
// Every failure is translated into the apperror taxonomy here, at the
// boundary, so callers never see a raw *url.Error or a JSON syntax error:
//
//	catalog fetch: network / status / body → apperror.ErrCatalogFetch
//	run:           network / status        → apperror.ErrExecutionRequest
//	               unusable 2xx body       → apperror.ErrExecutionResponse
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/model"
)

const (
	algorithmsPath   = "/api/algorithms"
	runAlgorithmPath = "/api/run-algorithm"

	// maxBodyBytes caps how much of a response we read. Results are lists of
	// numbers; anything past a few MiB is not something we can display.
	maxBodyBytes = 8 << 20
)

// Config holds the client's connection settings.
type Config struct {
	// BaseURL is the execution service origin, e.g. "http://localhost:3001".
	BaseURL string
	// Timeout bounds a whole request including reading the body. Zero means
	// the http.Client's own timeout applies.
	Timeout time.Duration
	// RateLimit is the maximum number of requests per second. Zero disables
	// limiting. Holding down the run key should not flood the service.
	RateLimit float64
	// Burst is the limiter's bucket size; defaults to 1.
	Burst int
}

// Client is safe for concurrent use.
type Client struct {
	base     *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
	logger   *slog.Logger
}

// New creates a Client. httpClient carries the transport chain (logging,
// request ids, auth); pass nil for a plain client.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parsing base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base URL %q must be http or https", cfg.BaseURL)
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		// Copy so we don't change a client the caller may share.
		c := *httpClient
		c.Timeout = cfg.Timeout
		httpClient = &c
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		base:     base,
		http:     httpClient,
		limiter:  limiter,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// catalogResponse is the body of GET /api/algorithms.
// `required` on a slice rejects a missing or null member; [] is fine.
type catalogResponse struct {
	Algorithms []model.Algorithm `json:"algorithms" validate:"required,dive"`
}

// errorResponse covers both the execution service's {"error": "..."} and
// the {"error": "kind", "message": "..."} envelope some deployments use.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FetchAlgorithms loads the catalog. The order of the returned slice is the
// server's order.
func (c *Client) FetchAlgorithms(ctx context.Context) ([]model.Algorithm, error) {
	resp, err := c.do(ctx, http.MethodGet, algorithmsPath, nil)
	if err != nil {
		return nil, apperror.CatalogFetch(0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.CatalogFetch(resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.CatalogFetch(resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var cr catalogResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, apperror.CatalogFetch(resp.StatusCode, fmt.Errorf("decoding catalog: %w", err))
	}
	if err := c.validate.Struct(cr); err != nil {
		return nil, apperror.CatalogFetch(resp.StatusCode, fmt.Errorf("validating catalog: %w", err))
	}

	return cr.Algorithms, nil
}

// RunAlgorithm submits one payload and waits for the result.
func (c *Client) RunAlgorithm(ctx context.Context, p model.Payload) (*model.ExecutionResult, error) {
	reqBody, err := json.Marshal(p.Request())
	if err != nil {
		// Payloads are ints and slices of ints; this cannot fail in practice.
		return nil, apperror.ExecutionRequest(0, "", fmt.Errorf("encoding payload: %w", err))
	}

	resp, err := c.do(ctx, http.MethodPost, runAlgorithmPath, reqBody)
	if err != nil {
		return nil, apperror.ExecutionRequest(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.ExecutionRequest(resp.StatusCode, "", fmt.Errorf("reading body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.ExecutionRequest(resp.StatusCode, serverMessage(body),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	result, err := decodeResult(body)
	if err != nil {
		return nil, apperror.ExecutionResponse(err)
	}
	return result, nil
}

// do builds and sends a request, waiting on the rate limiter first.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// serverMessage extracts the collaborator's explanation from an error body.
// A body that is not JSON, or carries neither field, yields "".
func serverMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(er.Error); msg != "" {
		return msg
	}
	return strings.TrimSpace(er.Message)
}

// errMissingResult marks a 2xx body without a "result" member.
var errMissingResult = errors.New(`response has no "result" member`)

func decodeResult(body []byte) (*model.ExecutionResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("response body is not a JSON object")
	}

	var result model.ExecutionResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	if result.Result.Kind == model.ValueAbsent {
		return nil, errMissingResult
	}
	return &result, nil
}
