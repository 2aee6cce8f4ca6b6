// Package cube implements the cube generators that split a problem into
// independent subproblems for dispatch to workers. Each generator produces
// a lazily-computed stream of cubes over a channel, so the coordinator can
// start dispatching before the whole cube space has been enumerated.
package cube

import (
	"context"
	"errors"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/universe"
)

// ErrDuplicateVariable is returned by Validate when a cube assigns the
// same variable more than once.
var ErrDuplicateVariable = errors.New("cube: duplicate variable in cube")

// Validate checks the structural well-formedness of a cube, independent
// of any solver: currently, only that no variable appears twice.
func Validate(c assumption.Cube) error {
	if c.HasDuplicateVariable() {
		return ErrDuplicateVariable
	}
	return nil
}

// Generator produces a stream of cubes partitioning a problem loaded from
// an instance file. GenerateCubes may be called only once per instance;
// the returned channel is closed once the generator is exhausted or ctx is
// canceled.
type Generator interface {
	LoadInstance(filename string) error
	GenerateCubes(ctx context.Context) <-chan assumption.Cube
}

// baseGenerator factors out the pieces shared by every generator in this
// package: the solver used to enumerate domains, the consistency checker
// used to prune dead cubes, and the maximum number of cubes to produce (0
// meaning unbounded).
type baseGenerator struct {
	Solver      universe.Solver
	Checker     consistency.Checker
	NbCubesMax  int
}

func (g *baseGenerator) LoadInstance(filename string) error {
	return g.Solver.LoadInstance(filename)
}

// sortedVariables returns every variable name known to the solver, in a
// deterministic order so repeated runs enumerate cubes identically.
func (g *baseGenerator) sortedVariables() []string {
	mapping := g.Solver.VariablesMapping()
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func (g *baseGenerator) accepted(cube assumption.Cube, checkFinal bool) bool {
	if g.Checker == nil {
		return true
	}
	if checkFinal {
		return g.Checker.CheckFinal(cube)
	}
	return g.Checker.CheckPartial(cube)
}

func (g *baseGenerator) limitReached(emitted int) bool {
	return g.NbCubesMax > 0 && emitted >= g.NbCubesMax
}
