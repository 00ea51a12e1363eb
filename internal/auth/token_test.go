package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hal9000y/mailvoice/internal/auth"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1234","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newConfig(tokenURL string) *oauth2.Config {
	cfg := auth.NewConfig("client", "secret", "http://localhost/oauth")
	cfg.Endpoint = oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenURL}
	return cfg
}

func stateOf(t *testing.T, redirect string) string {
	t.Helper()

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestTokenAuthorizeAndPersist(t *testing.T) {
	ctx := context.Background()
	srv := newTokenServer(t)
	path := filepath.Join(t.TempDir(), "data", "token.json")

	tok, err := auth.NewToken(newConfig(srv.URL), path, nil)
	require.NoError(t, err)

	_, err = tok.OAuthToken()
	require.ErrorIs(t, err, auth.ErrTokenNotSet)
	require.NoError(t, tok.Persist())

	redirect, err := tok.RedirectURL()
	require.NoError(t, err)
	assert.Contains(t, redirect, "access_type=offline")
	state := stateOf(t, redirect)
	require.NotEmpty(t, state)

	require.ErrorIs(t, tok.AuthorizeCode(ctx, "good-code", "forged"), auth.ErrInvalidState)
	require.NoError(t, tok.AuthorizeCode(ctx, "good-code", state))
	require.ErrorIs(t, tok.AuthorizeCode(ctx, "good-code", state), auth.ErrInvalidState)

	got, err := tok.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "access-1234", got.AccessToken)

	require.NoError(t, tok.Persist())

	reloaded, err := auth.NewToken(newConfig(srv.URL), path, nil)
	require.NoError(t, err)
	got, err = reloaded.OAuthToken()
	require.NoError(t, err)
	assert.Equal(t, "access-1234", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestHTTPHandler(t *testing.T) {
	srv := newTokenServer(t)
	tok, err := auth.NewToken(newConfig(srv.URL), "", nil)
	require.NoError(t, err)
	h := auth.NewHTTPHandler(tok, nil)

	serve := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := serve("/oauth")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve("/oauth?redirect=1")
	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "https://accounts.example.com/auth")

	rec = serve("/oauth?code=good-code&state=wrong")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve("/oauth?code=good-code&state=" + url.QueryEscape(stateOf(t, location)))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/oauth", rec.Header().Get("Location"))

	rec = serve("/oauth")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token: XXXXXXX1234")
}
