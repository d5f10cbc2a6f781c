package score

import "fmt"

type Kind string

const (
	KindBoolean Kind = "boolean"
	KindNumeric Kind = "numeric"
	KindEnum    Kind = "enum"
)

// Objective is one scoreable line item on a scoresheet. Value is the points
// per unit for boolean/numeric objectives; enum objectives carry parallel
// Points/Options slices instead.
type Objective struct {
	Name    string
	Kind    Kind
	Section string
	Value   int
	Points  []int
	Options []string
}

// Template describes what a scoresheet contains and how each objective is
// worth points. Templates are built once at startup and shared between every
// Sheet created from them; they hold no input state themselves.
type Template struct {
	Name       string
	objectives []Objective
	section    string
}

func NewTemplate(name string) *Template {
	return &Template{Name: name}
}

// Section starts a new section; objectives added afterwards belong to it.
// Returns the template for chaining.
func (t *Template) Section(name string) *Template {
	t.section = name
	return t
}

// Boolean adds a checkbox-style objective worth points when checked.
func (t *Template) Boolean(name string, points int) *Template {
	t.objectives = append(t.objectives, Objective{
		Name: name, Kind: KindBoolean, Section: t.section, Value: points,
	})
	return t
}

// Numeric adds a counted objective worth points per unit. Negative point
// values are allowed (penalties).
func (t *Template) Numeric(name string, points int) *Template {
	t.objectives = append(t.objectives, Objective{
		Name: name, Kind: KindNumeric, Section: t.section, Value: points,
	})
	return t
}

// Enum adds a pick-one objective. points[i] is awarded when options[i] is
// selected. Panics if the slices differ in length, since templates are
// program constants and a mismatch is a programming error.
func (t *Template) Enum(name string, points []int, options []string) *Template {
	if len(points) != len(options) {
		panic(fmt.Sprintf("score: enum objective %q has %d point values but %d options", name, len(points), len(options)))
	}
	t.objectives = append(t.objectives, Objective{
		Name: name, Kind: KindEnum, Section: t.section, Points: points, Options: options,
	})
	return t
}

// Objectives returns the objectives in the order they were added. Callers
// must not mutate the returned slice.
func (t *Template) Objectives() []Objective {
	return t.objectives
}

func (t *Template) find(name string) (int, bool) {
	for i, o := range t.objectives {
		if o.Name == name {
			return i, true
		}
	}
	return 0, false
}
