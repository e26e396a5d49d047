/*
Package direction defines the directional constraints a motion vector must
satisfy before a border crossing is counted against a named counter.

Each axis carries a tri-state Constraint.  The x axis tests for rightward
(positive) horizontal movement and the y axis tests for upward movement in
screen coordinates, where a decreasing row number means "up".
*/
package direction

import (
	"fmt"
	"image"
	"strings"
)

// Constraint is the requirement placed on the sign of the displacement along
// a single axis
type Constraint int

const (
	// Unconstrained accepts any displacement
	Unconstrained Constraint = 0
	// RequirePositive requires rightward movement on x and upward movement on y
	RequirePositive Constraint = 1
	// RequireNegative requires the displacement test of the axis to fail, ie:
	// no rightward movement on x and no upward movement on y
	RequireNegative Constraint = 2
)

// String returns the configuration name of the constraint
func (c Constraint) String() string {
	switch c {
	case Unconstrained:
		return "any"
	case RequirePositive:
		return "positive"
	case RequireNegative:
		return "negative"
	}

	return fmt.Sprintf("Constraint(%d)", int(c))
}

// Valid returns true if the constraint is one of the three known values
func (c Constraint) Valid() bool {
	switch c {
	case Unconstrained, RequirePositive, RequireNegative:
		return true
	}

	return false
}

// ParseConstraint converts a configuration string into a Constraint
func ParseConstraint(s string) (Constraint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "none":
		return Unconstrained, nil
	case "positive", "+":
		return RequirePositive, nil
	case "negative", "-":
		return RequireNegative, nil
	}

	return Unconstrained, fmt.Errorf("unknown direction constraint %q", s)
}

// Spec holds the constraint for each axis
type Spec struct {
	X Constraint
	Y Constraint
}

// Validate checks both axis constraints are known values
func (s Spec) Validate() error {
	if !s.X.Valid() {
		return fmt.Errorf("invalid x constraint: %v", s.X)
	}

	if !s.Y.Valid() {
		return fmt.Errorf("invalid y constraint: %v", s.Y)
	}

	return nil
}

// Evaluate returns true if the motion from prev to curr satisfies the spec.
// A displacement of exactly zero never passes the positive test of an axis.
func (s Spec) Evaluate(prev, curr image.Point) bool {

	dxPositive := (curr.X - prev.X) > 0
	dyNegative := (curr.Y - prev.Y) < 0

	return (s.X == Unconstrained || dxPositive == (s.X == RequirePositive)) &&
		(s.Y == Unconstrained || dyNegative == (s.Y == RequirePositive))
}

// String returns the spec in "x=..,y=.." form
func (s Spec) String() string {
	return fmt.Sprintf("x=%s,y=%s", s.X, s.Y)
}

// Named binds a counter key to its Spec
type Named struct {
	Key  string
	Spec Spec
}
