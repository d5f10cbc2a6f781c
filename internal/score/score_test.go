package score

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() *Template {
	return DemoGame()
}

func TestSheet_ObjectiveScoring(t *testing.T) {
	cases := []struct {
		name  string
		setup func(s *Sheet)
		want  int
	}{
		{
			name:  "fresh sheet scores zero",
			setup: func(s *Sheet) {},
			want:  0,
		},
		{
			name: "numeric multiplies value by count",
			setup: func(s *Sheet) {
				require.NoError(t, s.SetCount("Balls Scored", 3))
			},
			want: 30,
		},
		{
			name: "boolean contributes value only when checked",
			setup: func(s *Sheet) {
				require.NoError(t, s.SetChecked("Flipped Over Other Robot", true))
			},
			want: 100,
		},
		{
			name: "enum contributes the selected option's points",
			setup: func(s *Sheet) {
				require.NoError(t, s.SetIndex("Parked", 2))
			},
			want: 8,
		},
		{
			name: "negative point values subtract",
			setup: func(s *Sheet) {
				require.NoError(t, s.SetCount("Penalties", 2))
			},
			want: -20,
		},
		{
			name: "total sums every objective",
			setup: func(s *Sheet) {
				require.NoError(t, s.SetIndex("Parked", 1))
				require.NoError(t, s.SetCount("Balls Scored", 2))
				require.NoError(t, s.SetCount("Cubes Scored", 1))
				require.NoError(t, s.SetChecked("Flipped Over Other Robot", true))
				require.NoError(t, s.SetCount("Penalties", 1))
			},
			want: 4 + 20 + 15 + 100 - 10,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSheet(testTemplate())
			tc.setup(s)
			assert.Equal(t, tc.want, s.Total())
		})
	}
}

func TestSheet_InputValidation(t *testing.T) {
	s := NewSheet(testTemplate())

	assert.ErrorIs(t, s.SetCount("No Such Objective", 1), ErrUnknownObjective)
	assert.Error(t, s.SetChecked("Balls Scored", true), "kind mismatch must be rejected")
	assert.Error(t, s.SetIndex("Parked", 3), "out of range enum index must be rejected")
	assert.Error(t, s.SetIndex("Parked", -1))
}

func TestInfo_RoundTrip(t *testing.T) {
	s := NewSheet(testTemplate())
	require.NoError(t, s.SetIndex("Parked", 2))
	require.NoError(t, s.SetCount("Balls Scored", 5))
	require.NoError(t, s.SetChecked("Flipped Over Other Robot", true))
	require.NoError(t, s.SetCount("Penalties", 3))

	info := s.Info()
	assert.Equal(t, s.Total(), info.Score)

	// Through JSON, like a broadcast to a peer.
	payload, err := json.Marshal(info)
	require.NoError(t, err)
	var decoded Info
	require.NoError(t, json.Unmarshal(payload, &decoded))

	fresh := NewSheet(testTemplate())
	require.NoError(t, fresh.ApplyInfo(decoded))

	assert.Equal(t, s.Total(), fresh.Total())
	assert.Equal(t, s.Info(), fresh.Info())
}

func TestApplyInfo_UnknownObjective(t *testing.T) {
	fresh := NewSheet(testTemplate())
	err := fresh.ApplyInfo(Info{Objectives: map[string]ObjectiveInfo{
		"Mystery": {State: 1},
	}})
	assert.ErrorIs(t, err, ErrUnknownObjective)
}

func TestApplyInfo_RejectsBadStates(t *testing.T) {
	fresh := NewSheet(testTemplate())

	err := fresh.ApplyInfo(Info{Objectives: map[string]ObjectiveInfo{
		"Flipped Over Other Robot": {State: 3},
	}})
	assert.Error(t, err, "number for a boolean objective")

	err = fresh.ApplyInfo(Info{Objectives: map[string]ObjectiveInfo{
		"Parked": {State: 99},
	}})
	assert.Error(t, err, "enum index out of range")
}

func TestEnum_PanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		NewTemplate("bad").Enum("X", []int{1, 2}, []string{"only one"})
	})
}

func TestBallBlastTemplate(t *testing.T) {
	tpl := BallBlast()
	s := NewSheet(tpl)

	require.NoError(t, s.SetIndex("Preload", 2))
	require.NoError(t, s.SetCount("Front Blasts", 3))
	require.NoError(t, s.SetChecked("Cup Dunk (Manual Blast)", true))
	assert.Equal(t, 10+30+25, s.Total())

	// Every objective name must be unique, or Info round-trips would
	// silently merge entries.
	seen := make(map[string]bool)
	for _, obj := range tpl.Objectives() {
		assert.False(t, seen[obj.Name], "duplicate objective name %q", obj.Name)
		seen[obj.Name] = true
	}
}
