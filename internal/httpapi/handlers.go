package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/czrobotics/scorehost/internal/bracket"
	"github.com/czrobotics/scorehost/internal/engine"
	"github.com/czrobotics/scorehost/internal/room"
	"github.com/czrobotics/scorehost/pkg/types"
)

type Handlers struct {
	Engine *engine.Engine
	Room   *room.Room
	Tokens *bracket.TokenPair
	Log    *zap.Logger
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Matches serves the current cache snapshot. An empty bracket (nothing
// fetched yet) is a valid response, not an error.
func (h *Handlers) Matches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		State   bracket.State   `json:"state"`
		Matches []*engine.Match `json:"matches"`
	}{State: h.Engine.State(), Matches: h.Engine.Matches()})
}

// Fetch triggers a bracket fetch and tells every connected session to
// re-sync.
func (h *Handlers) Fetch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cull     bool `json:"cull"`
		Preserve bool `json:"preserve"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body) // empty body means defaults
	}

	err := h.Engine.Fetch(r.Context(), engine.FetchOptions{
		CullGroupStage:      body.Cull,
		PreserveLocalScores: body.Preserve,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Room.Inbox() <- room.Broadcast{Event: types.ServerMessage{Event: types.EventBracketRefreshed}}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeState moves the bracket lifecycle forward (e.g. an administrator
// starting the finals). The cache is invalidated on success, so scorers see
// the new stage on their next fetch.
func (h *Handlers) ChangeState(w http.ResponseWriter, r *http.Request) {
	var body struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	state, err := bracket.ParseState(body.State)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Engine.ChangeState(r.Context(), state); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.Engine.ResetCache()
	w.WriteHeader(http.StatusNoContent)
}

// OAuthLogin redirects the administrator to the authority's authorization
// page.
func (h *Handlers) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.Tokens.AuthURL(nil), http.StatusFound)
}

// OAuthCallback finishes the authorization code exchange.
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	if err := h.Tokens.Exchange(r.Context(), code); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("authorized.\n"))
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bracket.ErrNoAccessToken):
		http.Error(w, "not authenticated with bracket authority", http.StatusUnauthorized)
	case errors.Is(err, bracket.ErrInvalidStateTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrMatchIndex), errors.Is(err, engine.ErrSetIndex):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.Log.Warn("remote call failed", zap.Error(err))
		http.Error(w, "bracket authority unavailable", http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
