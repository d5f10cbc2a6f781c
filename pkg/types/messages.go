// Package types defines the wire protocol between scoring clients and the
// host. One flat message shape each way; the Event field selects which of
// the optional fields are meaningful.
package types

import (
	"github.com/czrobotics/scorehost/internal/engine"
	"github.com/czrobotics/scorehost/internal/score"
)

// Client -> server events.
const (
	// EventSubmitScore: match_index, set_index, side, score_info
	EventSubmitScore = "submitScore"
	// EventAddSet: match_index
	EventAddSet = "addSet"
	// EventRemoveSet: match_index (only the last set can be removed)
	EventRemoveSet = "removeSet"
	// EventRefreshBracket: cull, preserve
	EventRefreshBracket = "refreshBracket"
	// EventSetUsername: username
	EventSetUsername = "setUsername"
)

// Server -> client events.
const (
	// EventScoreEdited: match_id, match_index, set_index, side, score_info
	EventScoreEdited = "scoreEdited"
	// EventSetAdded / EventSetRemoved: match_id, match_index
	EventSetAdded   = "setAdded"
	EventSetRemoved = "setRemoved"
	// EventBracketRefreshed: no payload; peers should re-read /matches or
	// wait for their next snapshot
	EventBracketRefreshed = "bracketRefreshed"
	// EventSnapshot: matches (sent to a newly connected session)
	EventSnapshot = "snapshot"
	// EventUsernameStatus: error is empty on success
	EventUsernameStatus = "usernameStatus"
	// EventUsernameClaimed: username (a peer claimed a name)
	EventUsernameClaimed = "usernameClaimed"
	// EventPushStatus: error set when the last remote push attempt failed.
	// Non-blocking status only; the local edit stands regardless.
	EventPushStatus = "pushStatus"
	// EventError: error (a request from this client was rejected)
	EventError = "error"
)

type ClientMessage struct {
	Event      string      `json:"event"`
	MatchIndex int         `json:"match_index,omitempty"`
	SetIndex   int         `json:"set_index,omitempty"`
	Side       string      `json:"side,omitempty"`
	ScoreInfo  *score.Info `json:"score_info,omitempty"`
	Username   string      `json:"username,omitempty"`
	Cull       bool        `json:"cull,omitempty"`
	Preserve   bool        `json:"preserve,omitempty"`
}

type ServerMessage struct {
	Event      string          `json:"event"`
	MatchID    string          `json:"match_id,omitempty"`
	MatchIndex int             `json:"match_index,omitempty"`
	SetIndex   int             `json:"set_index,omitempty"`
	Side       string          `json:"side,omitempty"`
	ScoreInfo  *score.Info     `json:"score_info,omitempty"`
	Matches    []*engine.Match `json:"matches,omitempty"`
	Username   string          `json:"username,omitempty"`
	Error      string          `json:"error,omitempty"`
}
