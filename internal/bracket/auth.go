package bracket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Scopes the host asks for when building an authorization URL.
var AllScopes = []string{
	"me",
	"tournaments:read",
	"tournaments:write",
	"matches:read",
	"matches:write",
	"participants:read",
	"participants:write",
}

// TokenPair holds the OAuth access/refresh token pair for the authority and
// knows how to exchange an authorization code and refresh an expired access
// token. Safe for concurrent use; every remote call reads the access token
// through it.
type TokenPair struct {
	mu      sync.Mutex
	access  string
	refresh string

	authBase     string // e.g. https://api.challonge.com
	clientID     string
	clientSecret string
	redirectURI  string
	httpc        *http.Client
}

func NewTokenPair(authBase, clientID, clientSecret, redirectURI string) *TokenPair {
	return &TokenPair{
		authBase:     authBase,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpc:        &http.Client{},
	}
}

// SetTokens seeds previously obtained tokens, e.g. from the environment.
func (t *TokenPair) SetTokens(access, refresh string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = access
	t.refresh = refresh
}

func (t *TokenPair) Access() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.access
}

func (t *TokenPair) HasAccess() bool { return t.Access() != "" }

func (t *TokenPair) HasRefresh() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.refresh != ""
}

// AuthURL builds the URL a client visits to authorize the host. Unknown
// scopes are dropped; an empty list means all supported scopes.
func (t *TokenPair) AuthURL(scopes []string) string {
	if len(scopes) == 0 {
		scopes = AllScopes
	}
	kept := make([]string, 0, len(scopes))
	for _, s := range scopes {
		for _, known := range AllScopes {
			if s == known {
				kept = append(kept, s)
				break
			}
		}
	}
	q := url.Values{}
	q.Set("client_id", t.clientID)
	q.Set("redirect_uri", t.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(kept, " "))
	return t.authBase + "/oauth/authorize?" + q.Encode()
}

// Exchange trades an authorization code for a fresh access/refresh pair.
func (t *TokenPair) Exchange(ctx context.Context, code string) error {
	q := url.Values{}
	q.Set("code", code)
	q.Set("client_id", t.clientID)
	q.Set("client_secret", t.clientSecret)
	q.Set("redirect_uri", t.redirectURI)
	q.Set("grant_type", "authorization_code")

	resp, err := t.tokenRequest(ctx, q)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = resp.AccessToken
	t.refresh = resp.RefreshToken
	return nil
}

// Refresh obtains a new access token using the stored refresh token. The
// refresh token itself is kept; the authority keeps honoring it.
func (t *TokenPair) Refresh(ctx context.Context) error {
	t.mu.Lock()
	refresh := t.refresh
	t.mu.Unlock()
	if refresh == "" {
		return ErrNoAccessToken
	}

	q := url.Values{}
	q.Set("refresh_token", refresh)
	q.Set("client_id", t.clientID)
	q.Set("client_secret", t.clientSecret)
	q.Set("redirect_uri", t.redirectURI)
	q.Set("grant_type", "refresh_token")

	resp, err := t.tokenRequest(ctx, q)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.access = resp.AccessToken
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

func (t *TokenPair) tokenRequest(ctx context.Context, q url.Values) (*tokenResponse, error) {
	u := t.authBase + "/oauth/token?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}

	resp, err := t.httpc.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: "token request", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Op: "token request", StatusCode: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &RemoteError{Op: "token request", Err: fmt.Errorf("decode response: %w", err)}
	}
	if tr.Error != "" {
		return nil, &RemoteError{Op: "token request", Err: fmt.Errorf("authority error: %s", tr.Error)}
	}
	return &tr, nil
}
