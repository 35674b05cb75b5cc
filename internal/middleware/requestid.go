package middleware

import (
	"net/http"

	"github.com/rs/xid"
)

// RequestIDHeader is the header chi's RequestID middleware reads on the
// server side, so the collaborator logs the same id we do.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps every outgoing request with a fresh xid unless the caller
// already set one.
//
// RoundTrippers must not modify the caller's request, so we clone it before
// touching the headers.
func RequestID(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if r.Header.Get(RequestIDHeader) != "" {
			return next.RoundTrip(r)
		}
		r = r.Clone(r.Context())
		r.Header.Set(RequestIDHeader, xid.New().String())
		return next.RoundTrip(r)
	})
}
