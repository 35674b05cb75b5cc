package auth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentials configures the OAuth2 client-credentials grant.
//
// Unlike the authorization-code flow there is no user and no browser: the
// client authenticates as itself, which is what a service-to-service call
// to the execution API is.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Enabled reports whether enough is configured to use the grant.
func (c ClientCredentials) Enabled() bool {
	return c.ClientID != "" && c.TokenURL != ""
}

// HTTPClient returns an *http.Client that fetches, caches and refreshes an
// access token and adds "Authorization: Bearer <token>" to every request.
//
// base, if non-nil, is the client used to reach the token endpoint and
// whose Transport carries the API requests; this keeps our logging and
// request-id transports in the chain.
func (c ClientCredentials) HTTPClient(ctx context.Context, base *http.Client) (*http.Client, error) {
	if !c.Enabled() {
		return nil, errors.New("auth: OAuth2 client id and token URL are required")
	}

	cfg := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}

	if base != nil {
		// oauth2 looks up the HTTP client to use for token requests in the context.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}

	client := cfg.Client(ctx)
	if base != nil {
		client.Timeout = base.Timeout
	}
	return client, nil
}
