// Package consistency provides consistency checkers used by the cube
// generators to prune a complete cube before emitting it (CheckFinal); no
// generator in this module calls CheckPartial.
package consistency

import (
	"github.com/crillab/panoramyx/universe"
)

// Checker decides whether a partial cube is worth extending (CheckPartial)
// and whether a complete cube is worth emitting (CheckFinal).
type Checker interface {
	CheckPartial(cube []universe.Assumption) bool
	CheckFinal(cube []universe.Assumption) bool
}

// FinalChecker only validates cubes once every assumption has been added:
// CheckPartial always succeeds trivially, while CheckFinal resets the
// wrapped solver and solves under the full cube, rejecting it only if the
// solver reports it unsatisfiable.
type FinalChecker struct {
	Solver universe.Solver
}

// NewFinalChecker wraps a solver used purely for consistency verification.
func NewFinalChecker(solver universe.Solver) *FinalChecker {
	return &FinalChecker{Solver: solver}
}

// CheckPartial always returns true: partial cubes are not checked.
func (c *FinalChecker) CheckPartial(cube []universe.Assumption) bool {
	return true
}

// CheckFinal resets the solver, solves under the given cube, and accepts
// it unless the solver proves it unsatisfiable. Unknown (e.g. from an
// interrupted or inconclusive solve) is treated as consistent, since the
// purpose of this check is only to prune cubes that are provably dead.
func (c *FinalChecker) CheckFinal(cube []universe.Assumption) bool {
	c.Solver.Reset()
	result := c.Solver.Solve(cube)
	return result != universe.Unsatisfiable
}
