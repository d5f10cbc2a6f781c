package bracket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthURL(t *testing.T) {
	tp := NewTokenPair("https://auth.example", "cid", "secret", "http://localhost/cb")

	u, err := url.Parse(tp.AuthURL(nil))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Contains(t, q.Get("scope"), "matches:write")

	// Unknown scopes get dropped rather than forwarded.
	u, err = url.Parse(tp.AuthURL([]string{"me", "admin:everything"}))
	require.NoError(t, err)
	assert.Equal(t, "me", u.Query().Get("scope"))
}

func TestExchange(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "acc-1", RefreshToken: "ref-1"})
	}))
	defer srv.Close()

	tp := NewTokenPair(srv.URL, "cid", "secret", "http://localhost/cb")
	require.NoError(t, tp.Exchange(context.Background(), "the-code"))

	assert.Equal(t, "the-code", gotQuery.Get("code"))
	assert.Equal(t, "authorization_code", gotQuery.Get("grant_type"))
	assert.Equal(t, "secret", gotQuery.Get("client_secret"))
	assert.Equal(t, "acc-1", tp.Access())
	assert.True(t, tp.HasAccess())
	assert.True(t, tp.HasRefresh())
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "refresh_token", q.Get("grant_type"))
		assert.Equal(t, "ref-1", q.Get("refresh_token"))
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "acc-2"})
	}))
	defer srv.Close()

	tp := NewTokenPair(srv.URL, "cid", "secret", "http://localhost/cb")
	tp.SetTokens("acc-1", "ref-1")

	require.NoError(t, tp.Refresh(context.Background()))
	assert.Equal(t, "acc-2", tp.Access())
	// The refresh token survives a refresh.
	assert.True(t, tp.HasRefresh())
}

func TestRefresh_WithoutRefreshToken(t *testing.T) {
	tp := NewTokenPair("https://auth.example", "cid", "secret", "http://localhost/cb")
	err := tp.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoAccessToken)
}

func TestExchange_AuthorityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{Error: "invalid_grant"})
	}))
	defer srv.Close()

	tp := NewTokenPair(srv.URL, "cid", "secret", "http://localhost/cb")
	err := tp.Exchange(context.Background(), "stale-code")

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Error(), "invalid_grant")
	assert.False(t, tp.HasAccess(), "failed exchange must not clobber token state")
}
