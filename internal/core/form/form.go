// Package form is a small reactive-form model: named controls holding loosely
// typed values, grouped and validated together.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRequired       = errors.New("value is required")
	ErrUnknownControl = errors.New("unknown form control")
	ErrMissingValue   = errors.New("missing value for form control")
)

// Validator checks a control value and returns a non-nil error when it is invalid.
type Validator func(value any) error

// Required rejects nil, empty strings and empty slices.
func Required(value any) error {
	switch v := value.(type) {
	case nil:
		return ErrRequired
	case string:
		if v == "" {
			return ErrRequired
		}
	case []string:
		if len(v) == 0 {
			return ErrRequired
		}
	}
	return nil
}

// Control holds the value of a single form field. Values are nil, a string or a
// []string for multi-valued (checkbox) fields.
type Control struct {
	name       string
	value      any
	validators []Validator
}

func NewControl(name string, initial any, validators ...Validator) *Control {
	return &Control{
		name:       name,
		value:      initial,
		validators: validators,
	}
}

func (c *Control) Name() string {
	return c.name
}

func (c *Control) Value() any {
	return c.value
}

func (c *Control) SetValue(value any) {
	c.value = value
}

// Errors runs every validator against the current value.
func (c *Control) Errors() []error {
	var errs []error
	for _, validate := range c.validators {
		if err := validate(c.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errs
}

func (c *Control) Valid() bool {
	return len(c.Errors()) == 0
}

// String renders the value for display and for the wire: nil is empty and
// slices are joined with commas.
func (c *Control) String() string {
	switch v := c.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Pointer is String for set values and nil for a nil value.
func (c *Control) Pointer() *string {
	if c.value == nil {
		return nil
	}
	s := c.String()
	return &s
}

// Strings returns the value as a slice. Anything that is not already a []string
// counts as an empty selection.
func (c *Control) Strings() []string {
	if v, ok := c.value.([]string); ok {
		return v
	}
	return []string{}
}

// Group aggregates controls, keeping their declaration order.
type Group struct {
	order    []string
	controls map[string]*Control
}

func NewGroup(controls ...*Control) *Group {
	g := &Group{
		controls: make(map[string]*Control, len(controls)),
	}
	for _, c := range controls {
		g.order = append(g.order, c.name)
		g.controls[c.name] = c
	}
	return g
}

func (g *Group) Get(name string) (*Control, error) {
	c, ok := g.controls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	return c, nil
}

// Names returns control names in declaration order.
func (g *Group) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Value returns a copy of every control value keyed by name.
func (g *Group) Value() map[string]any {
	values := make(map[string]any, len(g.order))
	for _, name := range g.order {
		v := g.controls[name].value
		if s, ok := v.([]string); ok {
			v = append([]string{}, s...)
		}
		values[name] = v
	}
	return values
}

// SetValue replaces every control value. The map must hold exactly one entry per
// control; nothing is changed when it does not.
func (g *Group) SetValue(values map[string]any) error {
	for name := range values {
		if _, ok := g.controls[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownControl, name)
		}
	}
	for _, name := range g.order {
		if _, ok := values[name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingValue, name)
		}
	}
	for name, v := range values {
		g.controls[name].value = v
	}
	return nil
}

// PatchValue updates the controls present in values and ignores unknown keys.
func (g *Group) PatchValue(values map[string]any) {
	for name, v := range values {
		if c, ok := g.controls[name]; ok {
			c.value = v
		}
	}
}

// Reset sets every control to nil.
func (g *Group) Reset() {
	for _, c := range g.controls {
		c.value = nil
	}
}

func (g *Group) Errors() []error {
	var errs []error
	for _, name := range g.order {
		errs = append(errs, g.controls[name].Errors()...)
	}
	return errs
}

func (g *Group) Valid() bool {
	return len(g.Errors()) == 0
}

// InvalidControls returns the sorted names of controls failing validation.
func (g *Group) InvalidControls() []string {
	var names []string
	for name, c := range g.controls {
		if !c.Valid() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
