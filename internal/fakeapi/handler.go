package fakeapi

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from the stand-in service has the execution
// service's shape:
//
//	{"error": "Invalid input for Binary Search"}
//
// which is exactly what the client surfaces to the operator.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/sakif/algotest/internal/auth"
	"github.com/sakif/algotest/internal/model"
)

// ErrorResponse is the standard error format returned by both endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent — we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// RunRequest is the decoded POST /api/run-algorithm body. Input is kept raw
// because its shape depends on the algorithm.
type RunRequest struct {
	AlgorithmID int             `json:"algorithmId"`
	Input       json.RawMessage `json:"input"`
}

// Reply is what a Responder wants sent back. Body is encoded as JSON unless
// RawBody is set, which lets tests send deliberately broken bodies.
type Reply struct {
	Status  int
	Body    any
	RawBody []byte
	// Delay holds the reply back, for out-of-order response tests.
	Delay time.Duration
}

// Responder decides the reply to a run request.
type Responder func(alg model.Algorithm, req RunRequest) Reply

// handleAlgorithms serves GET /api/algorithms.
func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"algorithms": s.catalog})
}

// handleRun serves POST /api/run-algorithm.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid run request body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	alg, ok := s.lookup(req.AlgorithmID)
	if !ok {
		writeError(w, http.StatusNotFound, "Algorithm not found")
		return
	}

	s.record(req)

	attrs := []any{slog.Int("algorithm_id", alg.ID), slog.String("shape", string(alg.Shape()))}
	if subject, ok := auth.SubjectFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("subject", subject))
	}
	s.logger.Info("run requested", attrs...)

	reply := s.responder(alg, req)
	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.RawBody != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(reply.RawBody)
		return
	}
	writeJSON(w, status, reply.Body)
}

// DefaultResponder answers like a tiny execution service: array input is
// returned sorted, search input returns the target's index (or -1).
// It exists so the terminal client can be tried without the real service.
func DefaultResponder(alg model.Algorithm, req RunRequest) Reply {
	start := time.Now()

	var (
		input  any
		result any
	)

	switch alg.Shape() {
	case model.ShapeArraySearch:
		var in struct {
			Array  []int `json:"array"`
			Target *int  `json:"target"`
		}
		if err := json.Unmarshal(req.Input, &in); err != nil || in.Target == nil {
			return Reply{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "Invalid input for " + alg.Name}}
		}
		sorted := append([]int(nil), in.Array...)
		sort.Ints(sorted)
		idx := sort.SearchInts(sorted, *in.Target)
		if idx >= len(sorted) || sorted[idx] != *in.Target {
			idx = -1
		}
		input = map[string]any{"array": sorted, "target": *in.Target}
		result = map[string]any{"index": idx, "found": idx >= 0}

	default:
		var values []int
		if err := json.Unmarshal(req.Input, &values); err != nil {
			return Reply{Status: http.StatusBadRequest, Body: ErrorResponse{Error: "Invalid input for " + alg.Name}}
		}
		sorted := append([]int(nil), values...)
		sort.Ints(sorted)
		input = values
		result = sorted
	}

	return Reply{Body: map[string]any{
		"input":         input,
		"result":        result,
		"executionTime": time.Since(start).String(),
		"timestamp":     time.Now().UTC().Format(time.RFC3339Nano),
	}}
}
