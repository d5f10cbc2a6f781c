package engine

import (
	"context"
	"sync"

	"github.com/czrobotics/scorehost/internal/bracket"
)

// fakeClient stands in for the remote authority in engine tests.
type fakeClient struct {
	mu sync.Mutex

	graph    *bracket.Graph
	graphErr error

	participants     map[string][]bracket.Participant // match id -> entrants
	participantCalls map[string]int
	participantErr   error

	submitted chan bracket.Result
	submitErr error

	stateChanges []bracket.State
	changeErr    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		participants:     make(map[string][]bracket.Participant),
		participantCalls: make(map[string]int),
		submitted:        make(chan bracket.Result, 16),
	}
}

func (f *fakeClient) setGraph(state bracket.State, matches ...bracket.MatchNode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.graph = &bracket.Graph{State: state, Matches: matches}
}

func (f *fakeClient) GetBracketInfo(ctx context.Context, tournamentID string) (*bracket.Graph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.graphErr != nil {
		return nil, f.graphErr
	}
	g := *f.graph
	g.Matches = append([]bracket.MatchNode(nil), f.graph.Matches...)
	return &g, nil
}

func (f *fakeClient) GetMatchParticipants(ctx context.Context, tournamentID, matchID string) ([]bracket.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participantCalls[matchID]++
	if f.participantErr != nil {
		return nil, f.participantErr
	}
	return f.participants[matchID], nil
}

func (f *fakeClient) SubmitMatchResult(ctx context.Context, tournamentID, matchID string, result bracket.Result) error {
	f.mu.Lock()
	err := f.submitErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.submitted <- result
	return nil
}

func (f *fakeClient) ChangeState(ctx context.Context, tournamentID string, from, to bracket.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.changeErr != nil {
		return f.changeErr
	}
	f.stateChanges = append(f.stateChanges, to)
	return nil
}

func (f *fakeClient) callsFor(matchID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.participantCalls[matchID]
}
