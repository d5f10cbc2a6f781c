package score

import (
	"errors"
	"fmt"
)

var ErrUnknownObjective = errors.New("unknown objective")

// input is the raw state of one objective. Only the field matching the
// objective's kind is meaningful.
type input struct {
	checked bool
	count   int
	index   int
}

// Sheet is a single scoresheet instance created from a Template. It tracks
// per-objective input state and computes the running total from it.
type Sheet struct {
	template *Template
	inputs   []input
}

func NewSheet(t *Template) *Sheet {
	return &Sheet{
		template: t,
		inputs:   make([]input, len(t.objectives)),
	}
}

func (s *Sheet) Template() *Template { return s.template }

// SetChecked sets a boolean objective's state.
func (s *Sheet) SetChecked(name string, checked bool) error {
	i, err := s.lookup(name, KindBoolean)
	if err != nil {
		return err
	}
	s.inputs[i].checked = checked
	return nil
}

// SetCount sets a numeric objective's reported count.
func (s *Sheet) SetCount(name string, count int) error {
	i, err := s.lookup(name, KindNumeric)
	if err != nil {
		return err
	}
	s.inputs[i].count = count
	return nil
}

// SetIndex selects an enum objective's option by index.
func (s *Sheet) SetIndex(name string, index int) error {
	i, err := s.lookup(name, KindEnum)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(s.template.objectives[i].Options) {
		return fmt.Errorf("objective %q: option index %d out of range", name, index)
	}
	s.inputs[i].index = index
	return nil
}

func (s *Sheet) lookup(name string, kind Kind) (int, error) {
	i, ok := s.template.find(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
	}
	if s.template.objectives[i].Kind != kind {
		return 0, fmt.Errorf("objective %q is %s, not %s", name, s.template.objectives[i].Kind, kind)
	}
	return i, nil
}

// ObjectiveScore returns the points currently contributed by one objective.
func (s *Sheet) ObjectiveScore(name string) (int, error) {
	i, ok := s.template.find(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
	}
	return s.objectiveScore(i), nil
}

func (s *Sheet) objectiveScore(i int) int {
	obj := s.template.objectives[i]
	in := s.inputs[i]
	switch obj.Kind {
	case KindBoolean:
		if in.checked {
			return obj.Value
		}
		return 0
	case KindNumeric:
		return obj.Value * in.count
	case KindEnum:
		return obj.Points[in.index]
	}
	return 0
}

// Total sums the contribution of every objective.
func (s *Sheet) Total() int {
	total := 0
	for i := range s.template.objectives {
		total += s.objectiveScore(i)
	}
	return total
}
