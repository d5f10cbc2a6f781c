package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/czrobotics/scorehost/internal/bracket"
	"github.com/czrobotics/scorehost/internal/directory"
	"github.com/czrobotics/scorehost/internal/engine"
	"github.com/czrobotics/scorehost/internal/room"
	"github.com/czrobotics/scorehost/pkg/types"
)

// stubClient serves canned bracket data so handlers can be exercised without
// a network.
type stubClient struct {
	mu       sync.Mutex
	graph    bracket.Graph
	graphErr error
	changed  []bracket.State
}

func (s *stubClient) GetBracketInfo(ctx context.Context, tournamentID string) (*bracket.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graphErr != nil {
		return nil, s.graphErr
	}
	g := s.graph
	return &g, nil
}

func (s *stubClient) GetMatchParticipants(ctx context.Context, tournamentID, matchID string) ([]bracket.Participant, error) {
	return nil, nil
}

func (s *stubClient) SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result bracket.Result) error {
	return nil
}

func (s *stubClient) ChangeState(ctx context.Context, tournamentID string, from, to bracket.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !bracket.CanTransition(from, to) {
		return bracket.ErrInvalidStateTransition
	}
	s.changed = append(s.changed, to)
	return nil
}

func newTestHandlers(t *testing.T, client bracket.Client) (*Handlers, *room.Room) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zap.NewNop()
	eng := engine.New(ctx, client, directory.NewParticipants(), "t123", log)
	rm := room.New(ctx, func() types.ServerMessage {
		return types.ServerMessage{Event: types.EventSnapshot, Matches: eng.Matches()}
	}, log)

	return &Handlers{
		Engine: eng,
		Room:   rm,
		Tokens: bracket.NewTokenPair("https://auth.example", "cid", "secret", "http://localhost/cb"),
		Log:    log,
	}, rm
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMatches_EmptyBeforeFetch(t *testing.T) {
	h, _ := newTestHandlers(t, &stubClient{})

	rec := httptest.NewRecorder()
	h.Matches(rec, httptest.NewRequest(http.MethodGet, "/matches", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State   bracket.State     `json:"state"`
		Matches []json.RawMessage `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Matches)
}

func TestFetch_PopulatesCacheAndNotifiesRoom(t *testing.T) {
	client := &stubClient{graph: bracket.Graph{
		State:   bracket.StateUnderway,
		Matches: []bracket.MatchNode{{ID: "m1"}, {ID: "m2"}},
	}}
	h, rm := newTestHandlers(t, client)

	out := make(chan types.ServerMessage, 4)
	rm.Inbox() <- room.Join{SessionID: "s1", Outbox: out}
	<-out // join snapshot

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodPost, "/tournament/fetch", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, h.Engine.Matches(), 2)

	ev := <-out
	assert.Equal(t, types.EventBracketRefreshed, ev.Event)
}

func TestFetch_RemoteFailureMapsToBadGateway(t *testing.T) {
	client := &stubClient{graphErr: &bracket.RemoteError{Op: "get bracket info", StatusCode: 500}}
	h, _ := newTestHandlers(t, client)

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodPost, "/tournament/fetch", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFetch_NoTokenMapsToUnauthorized(t *testing.T) {
	client := &stubClient{graphErr: bracket.ErrNoAccessToken}
	h, _ := newTestHandlers(t, client)

	rec := httptest.NewRecorder()
	h.Fetch(rec, httptest.NewRequest(http.MethodPost, "/tournament/fetch", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangeState(t *testing.T) {
	client := &stubClient{}
	h, _ := newTestHandlers(t, client)

	rec := httptest.NewRecorder()
	h.ChangeState(rec, httptest.NewRequest(http.MethodPost, "/tournament/state",
		strings.NewReader(`{"state":"underway"}`)))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []bracket.State{bracket.StateUnderway}, client.changed)

	// Unknown state names are rejected before any remote call.
	rec = httptest.NewRecorder()
	h.ChangeState(rec, httptest.NewRequest(http.MethodPost, "/tournament/state",
		strings.NewReader(`{"state":"cancelled"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid transitions surface as a conflict.
	rec = httptest.NewRecorder()
	h.ChangeState(rec, httptest.NewRequest(http.MethodPost, "/tournament/state",
		strings.NewReader(`{"state":"complete"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReset(t *testing.T) {
	client := &stubClient{graph: bracket.Graph{
		State:   bracket.StateUnderway,
		Matches: []bracket.MatchNode{{ID: "m1"}},
	}}
	h, _ := newTestHandlers(t, client)

	require.NoError(t, h.Engine.Fetch(context.Background(), engine.FetchOptions{}))
	require.Len(t, h.Engine.Matches(), 1)

	rec := httptest.NewRecorder()
	h.Reset(rec, httptest.NewRequest(http.MethodPost, "/tournament/reset", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, h.Engine.Matches())
}

func TestOAuthLogin_Redirects(t *testing.T) {
	h, _ := newTestHandlers(t, &stubClient{})

	rec := httptest.NewRecorder()
	h.OAuthLogin(rec, httptest.NewRequest(http.MethodGet, "/oauth/login", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "/oauth/authorize?")
}

func TestOAuthCallback_MissingCode(t *testing.T) {
	h, _ := newTestHandlers(t, &stubClient{})

	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
