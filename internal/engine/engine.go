// Package engine owns the local match/score cache and decides when and what
// to push to the remote bracket authority. Local state is the source of
// truth for display; remote pushes are best-effort and never roll a local
// edit back.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/czrobotics/scorehost/internal/bracket"
	"github.com/czrobotics/scorehost/internal/directory"
	"github.com/czrobotics/scorehost/internal/score"
)

// FetchOptions controls a bracket fetch.
type FetchOptions struct {
	// CullGroupStage excludes the known group-stage matches from the result,
	// once their count has been learned. They're presumed already scored and
	// finalized by then.
	CullGroupStage bool
	// PreserveLocalScores keeps the sets of matches that already exist
	// locally, refreshing only their participant metadata.
	PreserveLocalScores bool
}

// Engine reconciles three truth sources: the authority's bracket graph,
// cached participant metadata, and live score edits from concurrent scorers.
// All cache mutations are serialized under one mutex; remote calls happen
// outside it.
type Engine struct {
	client       bracket.Client
	participants *directory.Participants
	log          *zap.Logger
	tournamentID string

	mu              sync.Mutex
	matches         []*Match
	state           bracket.State
	groupMatchCount int
	hasData         bool

	fetches singleflight.Group
	pusher  *pusher
}

func New(ctx context.Context, client bracket.Client, participants *directory.Participants, tournamentID string, log *zap.Logger) *Engine {
	e := &Engine{
		client:       client,
		participants: participants,
		log:          log,
		tournamentID: tournamentID,
		state:        bracket.StatePending,
	}
	e.pusher = newPusher(ctx, e)
	return e
}

// Fetch pulls the full bracket graph from the authority and rebuilds the
// match list. Concurrent fetches with the same options are coalesced; a
// failure leaves the previous cache intact.
func (e *Engine) Fetch(ctx context.Context, opts FetchOptions) error {
	key := fmt.Sprintf("cull=%t preserve=%t", opts.CullGroupStage, opts.PreserveLocalScores)
	_, err, _ := e.fetches.Do(key, func() (any, error) {
		return nil, e.fetch(ctx, opts)
	})
	return err
}

func (e *Engine) fetch(ctx context.Context, opts FetchOptions) error {
	graph, err := e.client.GetBracketInfo(ctx, e.tournamentID)
	if err != nil {
		return fmt.Errorf("fetch bracket: %w", err)
	}

	nodes := graph.Matches

	// The group-stage match count is learned exactly once, while the group
	// stage is still underway; afterwards it's immutable for the process.
	e.mu.Lock()
	if graph.State == bracket.StateGroupStagesUnderway && e.groupMatchCount == 0 {
		e.groupMatchCount = len(nodes)
	}
	groupCount := e.groupMatchCount
	e.mu.Unlock()

	if opts.CullGroupStage && groupCount > 0 {
		if groupCount >= len(nodes) {
			nodes = nil
		} else {
			nodes = nodes[groupCount:]
		}
	}

	built := make([]*Match, 0, len(nodes))
	for _, node := range nodes {
		m := &Match{ID: node.ID, Sets: []*Set{newSet()}}
		if err := e.resolveParticipants(ctx, m, node); err != nil {
			return err
		}
		built = append(built, m)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if opts.PreserveLocalScores {
		for _, m := range built {
			if prev := e.findMatch(m.ID); prev != nil {
				m.Sets = prev.Sets
			}
		}
	}
	e.matches = built
	e.state = graph.State
	e.hasData = true

	e.log.Info("bracket fetched",
		zap.String("state", string(graph.State)),
		zap.Int("matches", len(built)),
		zap.Bool("culled", opts.CullGroupStage && groupCount > 0))
	return nil
}

// resolveParticipants fills both participant slots from the directory,
// falling back to a single remote call that resolves and caches all of the
// match's participants at once on any miss.
func (e *Engine) resolveParticipants(ctx context.Context, m *Match, node bracket.MatchNode) error {
	_, ok1 := e.participants.Name(node.Player1ID)
	_, ok2 := e.participants.Name(node.Player2ID)
	if (!ok1 && node.Player1ID != "") || (!ok2 && node.Player2ID != "") {
		resolved, err := e.client.GetMatchParticipants(ctx, e.tournamentID, node.ID)
		if err != nil {
			return fmt.Errorf("resolve participants for match %s: %w", node.ID, err)
		}
		for _, p := range resolved {
			e.participants.SetName(p.UploadID, p.Name)
		}
	}
	if node.Player1ID != "" {
		name, _ := e.participants.Name(node.Player1ID)
		m.Side1 = &ParticipantRef{UploadID: node.Player1ID, Name: name}
	}
	if node.Player2ID != "" {
		name, _ := e.participants.Name(node.Player2ID)
		m.Side2 = &ParticipantRef{UploadID: node.Player2ID, Name: name}
	}
	return nil
}

// findMatch must be called with e.mu held.
func (e *Engine) findMatch(id string) *Match {
	for _, m := range e.matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// RecordScore writes a side's score info (and its numeric total) into the
// addressed set, creating sets up to setIndex if needed. It returns how many
// sides have now reported for that set. Purely local; never contacts the
// authority.
func (e *Engine) RecordScore(matchIndex, setIndex int, side Side, info score.Info) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if matchIndex < 0 || matchIndex >= len(e.matches) {
		return 0, fmt.Errorf("%w: %d", ErrMatchIndex, matchIndex)
	}
	if setIndex < 0 || setIndex >= MaxSetsPerMatch {
		return 0, fmt.Errorf("%w: %d", ErrSetIndex, setIndex)
	}
	m := e.matches[matchIndex]
	for len(m.Sets) <= setIndex {
		m.Sets = append(m.Sets, newSet())
	}
	set := m.Sets[setIndex]
	set.Scores[side] = info.Score
	set.ScoreInfo[side] = info
	return len(set.Scores), nil
}

// SubmitMatchScore records a score edit and, once both sides of the set have
// reported, queues a full-match push to the authority. The push is queued
// before returning but runs asynchronously; its failure never affects the
// recorded edit.
func (e *Engine) SubmitMatchScore(matchIndex, setIndex int, side Side, info score.Info) error {
	reported, err := e.RecordScore(matchIndex, setIndex, side, info)
	if err != nil {
		return err
	}
	if reported >= 2 {
		e.pusher.enqueue(matchIndex)
	}
	return nil
}

// AddSet appends an empty set to the match.
func (e *Engine) AddSet(matchIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if matchIndex < 0 || matchIndex >= len(e.matches) {
		return fmt.Errorf("%w: %d", ErrMatchIndex, matchIndex)
	}
	m := e.matches[matchIndex]
	if len(m.Sets) >= MaxSetsPerMatch {
		return fmt.Errorf("%w: %d", ErrSetIndex, len(m.Sets))
	}
	m.Sets = append(m.Sets, newSet())
	return nil
}

// RemoveLastSet truncates the match's last set and queues a push so the
// authority's record reflects the shortened history. Removing the only set
// is a no-op that reports false; a match always retains at least one. Only
// the last set can be removed; arbitrary middle-set deletion is
// unsupported.
func (e *Engine) RemoveLastSet(matchIndex int) (bool, error) {
	e.mu.Lock()
	if matchIndex < 0 || matchIndex >= len(e.matches) {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrMatchIndex, matchIndex)
	}
	m := e.matches[matchIndex]
	if len(m.Sets) <= 1 {
		e.mu.Unlock()
		return false, nil
	}
	m.Sets = m.Sets[:len(m.Sets)-1]
	e.mu.Unlock()

	e.pusher.enqueue(matchIndex)
	return true, nil
}

// PushMatch sends the match's complete score-set history to the authority.
// It snapshots local state under the lock, then calls out without holding
// it. Failures are logged and the local cache is left untouched.
func (e *Engine) PushMatch(ctx context.Context, matchIndex int) error {
	e.mu.Lock()
	if matchIndex < 0 || matchIndex >= len(e.matches) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrMatchIndex, matchIndex)
	}
	m := e.matches[matchIndex]

	result := bracket.Result{SetScores: make([]string, len(m.Sets))}
	if m.Side1 != nil {
		result.Player1ID = m.Side1.UploadID
	}
	if m.Side2 != nil {
		result.Player2ID = m.Side2.UploadID
	}
	for i, set := range m.Sets {
		result.SetScores[i] = fmt.Sprintf("%d-%d", set.Scores[Side1], set.Scores[Side2])
	}
	result.Player1Advancing, result.Player2Advancing = m.advancement()
	matchID := m.ID
	e.mu.Unlock()

	if err := e.client.SubmitMatchResult(ctx, e.tournamentID, matchID, result); err != nil {
		e.log.Warn("match push failed",
			zap.String("match", matchID),
			zap.Error(err))
		return err
	}
	e.log.Debug("match pushed",
		zap.String("match", matchID),
		zap.Strings("scores", result.SetScores))
	return nil
}

// ChangeState asks the authority to move the bracket to a new lifecycle
// state. On success the cache is invalidated so the next fetch re-observes
// the authority instead of assuming the cache is current.
func (e *Engine) ChangeState(ctx context.Context, to bracket.State) error {
	e.mu.Lock()
	from := e.state
	e.mu.Unlock()

	if err := e.client.ChangeState(ctx, e.tournamentID, from, to); err != nil {
		return err
	}

	e.mu.Lock()
	e.state = to
	e.hasData = false
	e.mu.Unlock()
	return nil
}

// ResetCache forces the next fetch to go to the authority.
func (e *Engine) ResetCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasData = false
}

// HasData reports whether a fetch has succeeded since the last reset.
func (e *Engine) HasData() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasData
}

// State returns the last observed lifecycle state.
func (e *Engine) State() bracket.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// GroupStageMatchCount returns the learned group-stage match count, zero
// until the bracket has been fetched during the group stage.
func (e *Engine) GroupStageMatchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groupMatchCount
}

// MatchID resolves a match index to the authority's match identifier.
func (e *Engine) MatchID(matchIndex int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if matchIndex < 0 || matchIndex >= len(e.matches) {
		return "", fmt.Errorf("%w: %d", ErrMatchIndex, matchIndex)
	}
	return e.matches[matchIndex].ID, nil
}

// Matches returns a deep copy of the cached match list. Before any
// successful fetch it returns an empty list rather than an error; an empty
// bracket is a valid transient state.
func (e *Engine) Matches() []*Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasData {
		return []*Match{}
	}
	out := make([]*Match, len(e.matches))
	for i, m := range e.matches {
		out[i] = m.clone()
	}
	return out
}
