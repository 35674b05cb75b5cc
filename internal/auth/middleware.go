package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/algotest/internal/middleware"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of type contextKey, so only this package
// can read or write the subject stored in a request context.
type contextKey string

const subjectKey contextKey = "subject"

// BearerTransport mints a fresh token for subject on every outgoing request
// and sets the Authorization header.
//
// It is a client middleware (see internal/middleware) — it clones the request
// instead of mutating the caller's copy, as http.RoundTripper requires.
func BearerTransport(tokens *TokenService, subject string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token, err := tokens.Generate(subject)
			if err != nil {
				return nil, fmt.Errorf("auth: minting request token: %w", err)
			}
			r = r.Clone(r.Context())
			r.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(r)
		})
	}
}

// RequireBearer is the server-side counterpart: it rejects requests without a
// valid "Authorization: Bearer <jwt>" header with 401 and stores the token's
// subject in the request context.
func RequireBearer(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := extractSubject(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFromContext returns the authenticated caller set by RequireBearer.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey).(string)
	return sub, ok && sub != ""
}

func extractSubject(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("auth: missing bearer token")
	}
	return tokens.Validate(token)
}
