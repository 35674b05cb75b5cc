package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger_RecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	h := Logger(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/algorithms", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	out := buf.String()
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=15")
	assert.Contains(t, out, "path=/api/algorithms")
}

func TestRequestID_SetsHeaderWithoutMutatingCaller(t *testing.T) {
	var seen string
	rt := RequestID(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.test/api/algorithms", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Len(t, seen, 20, "xid strings are 20 characters")
	assert.Empty(t, req.Header.Get(RequestIDHeader), "caller's request must not be modified")
}

func TestRequestID_KeepsExistingID(t *testing.T) {
	var seen string
	rt := RequestID(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get(RequestIDHeader)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}))

	req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil)
	req.Header.Set(RequestIDHeader, "fixed")
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed", seen)
}

func TestLogTransport_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("connection refused")
	rt := Chain(
		RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, boom }),
		RequestID,
		LogTransport(newBufferLogger(&buf)),
	)

	req := httptest.NewRequest(http.MethodPost, "http://example.test/api/run-algorithm", nil)
	_, err := rt.RoundTrip(req)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "connection refused")
	// RequestID is the outer wrapper, so the id is already set when logged.
	assert.NotContains(t, buf.String(), `request_id=""`)
}
