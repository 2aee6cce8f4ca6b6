// Package assumption defines the value types shared by the cube generators,
// the universe solver contract, and the message codec: assumptions, cubes,
// and the scored cube wrapper used by frontier-based cube generation.
package assumption

import (
	"fmt"
	"math/big"
)

// Assumption constrains a variable to (or away from) a value, or, when Max
// is non-nil, to a closed range [Value, Max]. Equal true means
// "variable == Value" (or "variable in [Value, Max]" for a range); Equal
// false means "variable != Value" (ranges are never negated).
type Assumption struct {
	Variable string
	Equal    bool
	Value    *big.Int
	Max      *big.Int
}

// IsRange reports whether this assumption constrains its variable to a
// closed interval rather than a single value.
func (a Assumption) IsRange() bool { return a.Max != nil }

// Eq reports whether two assumptions are identical in variable, polarity and value.
func (a Assumption) Eq(other Assumption) bool {
	if a.Variable != other.Variable || a.Equal != other.Equal {
		return false
	}
	if a.Value == nil || other.Value == nil {
		return a.Value == other.Value
	}
	return a.Value.Cmp(other.Value) == 0
}

func (a Assumption) String() string {
	op := "!="
	if a.Equal {
		op = "=="
	}
	return fmt.Sprintf("%s%s%s", a.Variable, op, a.Value.String())
}

// Cube is an ordered sequence of assumptions reconstructing a partial assignment.
// Order is not semantically meaningful beyond reconstruction: two cubes with the
// same set of assumptions in different orders represent the same subproblem.
type Cube []Assumption

// Empty reports whether this cube is the end-of-stream sentinel.
func (c Cube) Empty() bool { return len(c) == 0 }

// Clone returns a deep-enough copy (values are not mutated in place, so the
// *big.Int pointers are shared, but the slice header is independent).
func (c Cube) Clone() Cube {
	out := make(Cube, len(c))
	copy(out, c)
	return out
}

// HasDuplicateVariable reports whether any variable appears more than once in
// the cube, which every cube generator must reject before emitting.
func (c Cube) HasDuplicateVariable() bool {
	seen := make(map[string]struct{}, len(c))
	for _, a := range c {
		if _, ok := seen[a.Variable]; ok {
			return true
		}
		seen[a.Variable] = struct{}{}
	}
	return false
}

// ProblemUnderAssumption pairs a cube with a score, used as a max-heap element
// by the cartesian-product cube generator's frontier search.
type ProblemUnderAssumption struct {
	Assumptions Cube
	Score       int64
}
