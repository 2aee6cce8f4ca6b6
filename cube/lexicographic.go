package cube

import (
	"context"
	"math/big"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/universe"
)

// LexicographicGenerator enumerates cubes by walking every variable's
// domain in lexicographic order, depth-first, emitting a cube each time a
// full assignment is reached and stopping once nbCubesMax cubes have been
// produced.
type LexicographicGenerator struct {
	baseGenerator
}

// NewLexicographicGenerator creates a generator bounded to nbCubesMax
// cubes (0 means unbounded, i.e. enumerate the full cartesian product).
func NewLexicographicGenerator(solver universe.Solver, checker consistency.Checker, nbCubesMax int) *LexicographicGenerator {
	return &LexicographicGenerator{baseGenerator{Solver: solver, Checker: checker, NbCubesMax: nbCubesMax}}
}

// GenerateCubes walks the variable domains in lexicographic order on a
// background goroutine, sending each accepted cube on the returned
// channel until the space is exhausted, the cube budget is reached, or
// ctx is canceled.
func (g *LexicographicGenerator) GenerateCubes(ctx context.Context) <-chan assumption.Cube {
	return g.generateOver(ctx, g.sortedVariables())
}

// generateOver performs lexicographic enumeration restricted to the given
// variable order, used directly by LexicographicGenerator and indirectly
// by HypergraphCutsetGenerator (restricted to the cutset variables).
func (g *baseGenerator) generateOver(ctx context.Context, variables []string) <-chan assumption.Cube {
	out := make(chan assumption.Cube)
	mapping := g.Solver.VariablesMapping()

	go func() {
		defer close(out)
		emitted := 0
		var recurse func(i int, cube assumption.Cube) bool // returns false to stop
		recurse = func(i int, cube assumption.Cube) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			if g.limitReached(emitted) {
				return false
			}
			if i == len(variables) {
				if !g.accepted(cube, true) {
					return true
				}
				select {
				case out <- cube.Clone():
					emitted++
				case <-ctx.Done():
					return false
				}
				return true
			}

			name := variables[i]
			values := domainValues(mapping[name])
			for _, v := range values {
				cube = append(cube, assumption.Assumption{Variable: name, Equal: true, Value: v})
				if !recurse(i+1, cube) {
					cube = cube[:len(cube)-1]
					return false
				}
				cube = cube[:len(cube)-1]
				if g.limitReached(emitted) {
					return false
				}
			}
			return true
		}
		recurse(0, nil)
	}()

	return out
}

func domainValues(v universe.Variable) []*big.Int {
	if v == nil {
		return nil
	}
	d := v.Domain()
	if d.IsInterval() {
		min, max := d.Bounds()
		if min == nil || max == nil {
			return nil
		}
		var values []*big.Int
		for cur := new(big.Int).Set(min); cur.Cmp(max) <= 0; cur.Add(cur, big.NewInt(1)) {
			values = append(values, new(big.Int).Set(cur))
		}
		return values
	}
	return d.Values()
}
