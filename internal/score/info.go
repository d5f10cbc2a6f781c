package score

import (
	"encoding/json"
	"fmt"
)

// Info is the opaque snapshot of a scoresheet: the computed total plus the
// raw state of every objective. The sync engine stores and forwards Info
// values verbatim; only this package knows how to apply one back onto a
// Sheet. The JSON shape is stable because peers and the engine exchange it
// over the wire.
type Info struct {
	Score      int                      `json:"score"`
	Objectives map[string]ObjectiveInfo `json:"objectives"`
}

// ObjectiveInfo carries one objective's raw input state: a bool for boolean
// objectives, a number for numeric (count) and enum (selected index).
type ObjectiveInfo struct {
	State any `json:"state"`
}

// Clone returns a copy whose Objectives map is independent of the
// receiver's. State values are scalars and copy by value.
func (i Info) Clone() Info {
	c := Info{Score: i.Score}
	if i.Objectives != nil {
		c.Objectives = make(map[string]ObjectiveInfo, len(i.Objectives))
		for name, oi := range i.Objectives {
			c.Objectives[name] = oi
		}
	}
	return c
}

// Info snapshots the sheet's current state.
func (s *Sheet) Info() Info {
	info := Info{
		Score:      s.Total(),
		Objectives: make(map[string]ObjectiveInfo, len(s.template.objectives)),
	}
	for i, obj := range s.template.objectives {
		var state any
		switch obj.Kind {
		case KindBoolean:
			state = s.inputs[i].checked
		case KindNumeric:
			state = s.inputs[i].count
		case KindEnum:
			state = s.inputs[i].index
		}
		info.Objectives[obj.Name] = ObjectiveInfo{State: state}
	}
	return info
}

// ApplyInfo writes the snapshot's objective states back onto the sheet.
// Applying an Info to a fresh sheet of the same template reproduces the
// state (and therefore the total) it was taken from. The embedded Score
// field is ignored; the total is always recomputed from inputs.
func (s *Sheet) ApplyInfo(info Info) error {
	for name, oi := range info.Objectives {
		i, ok := s.template.find(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownObjective, name)
		}
		obj := s.template.objectives[i]
		switch obj.Kind {
		case KindBoolean:
			checked, ok := oi.State.(bool)
			if !ok {
				return fmt.Errorf("objective %q: state %v is not a bool", name, oi.State)
			}
			s.inputs[i].checked = checked
		case KindNumeric:
			n, err := stateNumber(oi.State)
			if err != nil {
				return fmt.Errorf("objective %q: %w", name, err)
			}
			s.inputs[i].count = n
		case KindEnum:
			n, err := stateNumber(oi.State)
			if err != nil {
				return fmt.Errorf("objective %q: %w", name, err)
			}
			if n < 0 || n >= len(obj.Options) {
				return fmt.Errorf("objective %q: option index %d out of range", name, n)
			}
			s.inputs[i].index = n
		}
	}
	return nil
}

// stateNumber coerces a decoded state value to an int. JSON decoding gives
// float64 for numbers inside `any`, while locally produced Infos hold ints.
func stateNumber(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	default:
		return 0, fmt.Errorf("state %v is not a number", v)
	}
}
