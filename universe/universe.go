// Package universe defines the solver contract shared by every constraint
// solver plugged into the orchestrator: a minimal surface covering
// instance loading, assumption-based solving, and the additional methods
// needed to drive cube generation and decomposition (variable scopes,
// current bounds, interruption).
package universe

import (
	"math/big"

	"github.com/crillab/panoramyx/assumption"
)

// Result is the outcome of a solving attempt.
type Result int

const (
	Unknown Result = iota
	Satisfiable
	Unsatisfiable
	Optimum
	// Timeout names a run whose deadline elapsed before any worker reached
	// a conclusive result. No coordinator in this module reports it: a run
	// cut short by its context's deadline ends with Unknown and the
	// context's error.
	Timeout
)

func (r Result) String() string {
	switch r {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	case Optimum:
		return "OPTIMUM"
	case Timeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Assumption constrains a variable to, or away from, a value for the
// duration of a single solve call. It is the same type used by the cube
// generators, so a generated cube can be passed to Solve without copying.
type Assumption = assumption.Assumption

// Cube is an ordered sequence of assumptions, matching assumption.Cube.
type Cube = assumption.Cube

// Domain describes the admissible values of a variable. Implementations
// may represent either an explicit enumeration or a bounded range; callers
// should prefer Bounds when IsInterval is true, since Values may be empty
// or partial for large ranges.
type Domain interface {
	IsInterval() bool
	Bounds() (min, max *big.Int)
	Values() []*big.Int
	Size() *big.Int
}

// Variable is a named decision variable with its domain.
type Variable interface {
	ID() string
	Domain() Domain
}

// Solver is implemented by every constraint solver that can be wrapped by
// a worker and driven by the coordinator. Solve and Interrupt must be
// safe to call concurrently from distinct goroutines, matching the
// reset-solve-interrupt discipline used by consistency checking and the
// orchestrator's timeout/abort paths.
type Solver interface {
	Reset()
	NVariables() int
	NConstraints() int
	VariablesMapping() map[string]Variable
	Solve(assumptions []Assumption) Result
	SolveFile(filename string) Result
	LoadInstance(filename string) error
	Interrupt()
	Solution() map[string]*big.Int
	CheckSolution() bool
}

// OptimizationSolver additionally exposes the current best bound found
// during search, used by the portfolio solver to propagate bound updates
// across workers.
type OptimizationSolver interface {
	Solver
	IsMinimization() bool
	CurrentBound() (*big.Int, bool)
	SetBounds(lower, upper *big.Int)
}

// ConstraintScorer is optionally implemented by solvers that can report a
// per-constraint score (e.g. activity or conflict counts), used by the
// worker loop's CONSTRAINT_SCORE message.
type ConstraintScorer interface {
	ConstraintScore(constraintID int32) int64
}
