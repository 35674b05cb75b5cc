package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerTransport_SatisfiesRequireBearer(t *testing.T) {
	ts := newTestTokenService(t)

	var gotSubject string
	srv := httptest.NewServer(RequireBearer(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))
	defer srv.Close()

	t.Run("with bearer transport", func(t *testing.T) {
		client := &http.Client{Transport: BearerTransport(ts, "algotest-client")(http.DefaultTransport)}
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "algotest-client", gotSubject)
	})

	t.Run("without a token", func(t *testing.T) {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var body struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Error)
	})
}

func TestClientCredentials_AddsAccessToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc123","token_type":"bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	var gotAuth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer apiSrv.Close()

	cc := ClientCredentials{ClientID: "algotest", ClientSecret: "s3cret", TokenURL: tokenSrv.URL}
	require.True(t, cc.Enabled())

	client, err := cc.HTTPClient(context.Background(), &http.Client{})
	require.NoError(t, err)

	resp, err := client.Get(apiSrv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestClientCredentials_Disabled(t *testing.T) {
	_, err := ClientCredentials{}.HTTPClient(context.Background(), nil)
	assert.Error(t, err)
}
