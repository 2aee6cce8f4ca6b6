package cube

import (
	"container/heap"
	"context"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/universe"
)

// CartesianProductGenerator refines an initially empty cube by repeatedly
// splitting the highest-scoring pending subproblem on one free variable,
// until nbCubesMax subproblems are pending or no subproblem can be split
// further. The score of a subproblem is the size of the cartesian product
// of the domains still free under it; subproblems proved unsatisfiable are
// discarded rather than split.
type CartesianProductGenerator struct {
	baseGenerator
}

// NewCartesianProductGenerator creates a generator targeting nbCubesMax
// leaf cubes (must be at least 1).
func NewCartesianProductGenerator(solver universe.Solver, checker consistency.Checker, nbCubesMax int) *CartesianProductGenerator {
	if nbCubesMax < 1 {
		nbCubesMax = 1
	}
	return &CartesianProductGenerator{baseGenerator{Solver: solver, Checker: checker, NbCubesMax: nbCubesMax}}
}

// frontier is a max-heap of pending subproblems ordered by Score, highest
// first: the generator always refines the subproblem with the most
// remaining search space, which tends to balance the resulting cubes.
type frontier []assumption.ProblemUnderAssumption

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].Score > f[j].Score }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(assumption.ProblemUnderAssumption)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// computeScore resets the solver, solves under assumptions, and returns
// the cartesian product of the domain sizes still free, or -1 if the
// subproblem is unsatisfiable.
func (g *CartesianProductGenerator) computeScore(assumptions assumption.Cube) int64 {
	g.Solver.Reset()
	if g.Solver.Solve(assumptions) == universe.Unsatisfiable {
		return -1
	}
	var total int64 = 1
	fixed := make(map[string]struct{}, len(assumptions))
	for _, a := range assumptions {
		fixed[a.Variable] = struct{}{}
	}
	for name, v := range g.Solver.VariablesMapping() {
		if _, done := fixed[name]; done {
			continue
		}
		sz := v.Domain().Size()
		if sz.IsInt64() {
			total *= sz.Int64()
		}
	}
	return total
}

// GenerateCubes runs the refinement loop on a background goroutine,
// emitting a cube for every subproblem left on the frontier once the
// target cube count is reached or no further split is possible.
func (g *CartesianProductGenerator) GenerateCubes(ctx context.Context) <-chan assumption.Cube {
	out := make(chan assumption.Cube)

	go func() {
		defer close(out)

		f := &frontier{{Assumptions: nil, Score: 1}}
		heap.Init(f)

		for f.Len() > 0 && f.Len() < g.NbCubesMax {
			select {
			case <-ctx.Done():
				return
			default:
			}

			problem := heap.Pop(f).(assumption.ProblemUnderAssumption)

			g.Solver.Reset()
			g.Solver.Solve(problem.Assumptions)

			assigned := make(map[string]struct{}, len(problem.Assumptions))
			for _, a := range problem.Assumptions {
				assigned[a.Variable] = struct{}{}
			}

			splitVar := ""
			for _, name := range g.sortedVariables() {
				if _, done := assigned[name]; !done {
					splitVar = name
					break
				}
			}

			if splitVar == "" {
				// Nothing left to split: keep this subproblem as a leaf.
				heap.Push(f, problem)
				break
			}

			mapping := g.Solver.VariablesMapping()
			values := domainValues(mapping[splitVar])
			added := false
			for _, v := range values {
				child := append(problem.Assumptions.Clone(), assumption.Assumption{
					Variable: splitVar,
					Equal:    true,
					Value:    v,
				})
				score := g.computeScore(child)
				if score >= 0 {
					heap.Push(f, assumption.ProblemUnderAssumption{Assumptions: child, Score: score})
					added = true
				}
			}
			if !added {
				// Every refinement is unsatisfiable: the parent subproblem
				// itself is unsatisfiable, so it is simply dropped.
				continue
			}
		}

		for _, p := range *f {
			if !g.accepted(p.Assumptions, true) {
				continue
			}
			select {
			case out <- p.Assumptions:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
