// Package bracket talks to the remote tournament-bracket authority.
// Only supports what the score host needs it to support, probably don't
// recommend it for general use.
package bracket

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAccessToken means no valid access credential is held; no request is
// issued. Re-authenticating (token exchange or refresh) clears it.
var ErrNoAccessToken = errors.New("no access token")

// ErrInvalidStateTransition is returned when a lifecycle change is rejected,
// either locally against the known transition table or by the authority.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// RemoteError wraps a network failure or non-2xx response from the
// authority. Retryable; local cache state is never derived from one.
type RemoteError struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("bracket: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("bracket: %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Participant is one entrant as the authority reports it. UploadID is the
// identifier valid for bracket-graph queries; the finals stage may report a
// different identifier for the same entrant than the group stage did.
type Participant struct {
	UploadID string `json:"upload_id"`
	Name     string `json:"name"`
}

// MatchNode is one match in the bracket graph listing.
type MatchNode struct {
	ID        string `json:"id"`
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
}

// Graph is the authority's full view of a tournament: lifecycle state plus
// every match node, in bracket order.
type Graph struct {
	State   State       `json:"state"`
	Matches []MatchNode `json:"matches"`
}

// Result is a complete per-set score history for one match. SetScores holds
// one "a-b" string per set; the authority only accepts full histories, never
// a single side's partial update.
type Result struct {
	Player1ID        string   `json:"player1_id"`
	Player2ID        string   `json:"player2_id"`
	SetScores        []string `json:"scores"`
	Player1Advancing bool     `json:"player1_advancing"`
	Player2Advancing bool     `json:"player2_advancing"`
}

// Client is the contract the sync engine depends on.
type Client interface {
	GetBracketInfo(ctx context.Context, tournamentID string) (*Graph, error)
	GetMatchParticipants(ctx context.Context, tournamentID, matchID string) ([]Participant, error)
	SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result Result) error
	ChangeState(ctx context.Context, tournamentID string, from, to State) error
}
