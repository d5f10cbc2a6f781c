package bracket

import "fmt"

// State is the remote authority's tournament lifecycle phase.
type State string

const (
	StatePending             State = "pending"
	StateGroupStagesUnderway State = "group_stages_underway"
	StateUnderway            State = "underway"
	StateAwaitingReview      State = "awaiting_review"
	StateComplete            State = "complete"
)

// validTransitions mirrors the transitions the remote authority accepts.
// Anything else is rejected before a request is issued.
var validTransitions = map[State][]State{
	StatePending:             {StateGroupStagesUnderway, StateUnderway},
	StateGroupStagesUnderway: {StateUnderway},
	StateUnderway:            {StateAwaitingReview},
	StateAwaitingReview:      {StateComplete, StateUnderway},
}

// CanTransition reports whether the authority permits moving from one
// lifecycle state to another.
func CanTransition(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePending, StateGroupStagesUnderway, StateUnderway, StateAwaitingReview, StateComplete:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown tournament state %q", s)
}
