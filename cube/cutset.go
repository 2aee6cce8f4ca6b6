package cube

import (
	"context"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/decomposition"
	"github.com/crillab/panoramyx/universe"
)

// DecompositionSolver parses an instance just far enough to record each
// constraint's scope, then builds the dual hypergraph of the problem and
// computes its cutset. It deliberately does not extend universe.Solver:
// computing a cutset needs none of a solver's search machinery.
type DecompositionSolver interface {
	LoadInstance(filename string) error
	Decompose() (*decomposition.DualHypergraphBuilder, error)
}

// HypergraphCutsetGenerator decomposes the loaded problem's dual
// hypergraph and enumerates cubes lexicographically over the resulting
// cutset only, instead of over every variable: assuming the cutset fixes
// the interaction between the problem's independent components, so each
// resulting cube can be solved without further coordination.
type HypergraphCutsetGenerator struct {
	baseGenerator
	decompositionSolver DecompositionSolver
	cutset              []string
}

// NewHypergraphCutsetGenerator creates a generator that decomposes the
// problem via decompositionSolver and enumerates cubes over its cutset,
// checked and solved by solver.
func NewHypergraphCutsetGenerator(solver universe.Solver, decompositionSolver DecompositionSolver, checker consistency.Checker, nbCubesMax int) *HypergraphCutsetGenerator {
	return &HypergraphCutsetGenerator{
		baseGenerator:       baseGenerator{Solver: solver, Checker: checker, NbCubesMax: nbCubesMax},
		decompositionSolver: decompositionSolver,
	}
}

// LoadInstance loads the instance into both the regular solver and the
// decomposition solver, then immediately computes the cutset.
func (g *HypergraphCutsetGenerator) LoadInstance(filename string) error {
	if err := g.Solver.LoadInstance(filename); err != nil {
		return err
	}
	if err := g.decompositionSolver.LoadInstance(filename); err != nil {
		return err
	}
	builder, err := g.decompositionSolver.Decompose()
	if err != nil {
		return err
	}
	g.cutset = builder.Cutset()
	return nil
}

// GenerateCubes enumerates cubes lexicographically, restricted to the
// cutset variables computed by LoadInstance.
func (g *HypergraphCutsetGenerator) GenerateCubes(ctx context.Context) <-chan assumption.Cube {
	return g.generateOver(ctx, g.cutset)
}
