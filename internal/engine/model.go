package engine

import (
	"errors"

	"github.com/czrobotics/scorehost/internal/score"
)

var (
	ErrMatchIndex = errors.New("match index out of range")
	ErrSetIndex   = errors.New("set index out of range")
)

// MaxSetsPerMatch bounds how many sets one match may hold. Sets are created
// sparsely by index, so without a cap a single bogus index could balloon
// the cache.
const MaxSetsPerMatch = 64

// Side identifies one of the two competing slots in a match.
type Side string

const (
	Side1 Side = "side1"
	Side2 Side = "side2"
)

func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case Side1, Side2:
		return Side(s), true
	}
	return "", false
}

// ParticipantRef points at an entrant as the authority knows it. UploadID is
// the identifier valid for bracket-graph queries.
type ParticipantRef struct {
	UploadID string `json:"uploadId"`
	Name     string `json:"name"`
}

// Set is one scored round within a match. A side's numeric total and its
// detailed snapshot are always written together, so the two maps share the
// same key set at all times. A set is complete once both sides have reported.
type Set struct {
	Scores    map[Side]int        `json:"scores"`
	ScoreInfo map[Side]score.Info `json:"scoreInfo"`
}

func newSet() *Set {
	return &Set{
		Scores:    make(map[Side]int),
		ScoreInfo: make(map[Side]score.Info),
	}
}

func (s *Set) clone() *Set {
	c := newSet()
	for side, v := range s.Scores {
		c.Scores[side] = v
	}
	for side, v := range s.ScoreInfo {
		c.ScoreInfo[side] = v.Clone()
	}
	return c
}

// Match is the local view of one bracket match. Sets is never empty once the
// match exists.
type Match struct {
	ID    string          `json:"id"`
	Side1 *ParticipantRef `json:"side1,omitempty"`
	Side2 *ParticipantRef `json:"side2,omitempty"`
	Sets  []*Set          `json:"sets"`
}

func (m *Match) clone() *Match {
	c := &Match{ID: m.ID, Sets: make([]*Set, len(m.Sets))}
	if m.Side1 != nil {
		ref := *m.Side1
		c.Side1 = &ref
	}
	if m.Side2 != nil {
		ref := *m.Side2
		c.Side2 = &ref
	}
	for i, set := range m.Sets {
		c.Sets[i] = set.clone()
	}
	return c
}

// setWins counts how many sets each side has won. A set only counts toward a
// side that strictly outscored the other; a missing report counts as zero.
func (m *Match) setWins() (side1, side2 int) {
	for _, set := range m.Sets {
		s1 := set.Scores[Side1]
		s2 := set.Scores[Side2]
		switch {
		case s1 > s2:
			side1++
		case s2 > s1:
			side2++
		}
	}
	return side1, side2
}

// advancement marks a side advancing only when it won strictly more sets.
// On equal set wins neither side is marked; ties are left to the authority's
// own tie-break mechanism.
func (m *Match) advancement() (side1, side2 bool) {
	w1, w2 := m.setWins()
	return w1 > w2, w2 > w1
}
