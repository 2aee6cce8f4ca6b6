package cube

import (
	"context"
	"math/big"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/universe"
)

// LexicographicIntervalGenerator is like LexicographicGenerator, but each
// variable's domain is first split into nbIntervals contiguous ranges, and
// the lexicographic walk is performed over those ranges instead of over
// individual values. This trades finer-grained load balancing for fewer,
// coarser cubes.
type LexicographicIntervalGenerator struct {
	baseGenerator
	nbIntervals int
}

// NewLexicographicIntervalGenerator creates a generator that splits every
// variable's domain into nbIntervals ranges (at least 1).
func NewLexicographicIntervalGenerator(solver universe.Solver, checker consistency.Checker, nbCubesMax, nbIntervals int) *LexicographicIntervalGenerator {
	if nbIntervals < 1 {
		nbIntervals = 1
	}
	return &LexicographicIntervalGenerator{
		baseGenerator: baseGenerator{Solver: solver, Checker: checker, NbCubesMax: nbCubesMax},
		nbIntervals:   nbIntervals,
	}
}

// GenerateCubes walks the interval-partitioned domains in lexicographic
// order, emitting range assumptions.
func (g *LexicographicIntervalGenerator) GenerateCubes(ctx context.Context) <-chan assumption.Cube {
	out := make(chan assumption.Cube)
	variables := g.sortedVariables()
	mapping := g.Solver.VariablesMapping()

	go func() {
		defer close(out)
		emitted := 0
		var recurse func(i int, cube assumption.Cube) bool
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
			for _, interval := range g.intervalsOf(mapping[name]) {
				cube = append(cube, interval.assumption(name))
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

type valueRange struct {
	min, max *big.Int
}

func (r valueRange) assumption(variable string) assumption.Assumption {
	return assumption.Assumption{Variable: variable, Equal: true, Value: r.min, Max: r.max}
}

// intervalsOf splits v's domain into g.nbIntervals contiguous, roughly
// equal ranges. Domains smaller than nbIntervals produce one interval per
// value instead of empty ranges.
func (g *LexicographicIntervalGenerator) intervalsOf(v universe.Variable) []valueRange {
	if v == nil {
		return nil
	}
	min, max := v.Domain().Bounds()
	if min == nil || max == nil {
		return nil
	}

	span := new(big.Int).Sub(max, min)
	span.Add(span, big.NewInt(1)) // number of values in [min, max]

	n := big.NewInt(int64(g.nbIntervals))
	if span.Cmp(n) < 0 {
		n = span
	}

	chunk := new(big.Int).Div(span, n)
	remainder := new(big.Int).Mod(span, n)

	intervals := make([]valueRange, 0, n.Int64())
	cur := new(big.Int).Set(min)
	for i := int64(0); i < n.Int64(); i++ {
		size := new(big.Int).Set(chunk)
		if big.NewInt(i).Cmp(remainder) < 0 {
			size.Add(size, big.NewInt(1))
		}
		if size.Sign() == 0 {
			size = big.NewInt(1)
		}
		hi := new(big.Int).Add(cur, size)
		hi.Sub(hi, big.NewInt(1))
		if hi.Cmp(max) > 0 {
			hi = new(big.Int).Set(max)
		}
		intervals = append(intervals, valueRange{min: new(big.Int).Set(cur), max: hi})
		cur = new(big.Int).Add(hi, big.NewInt(1))
		if cur.Cmp(max) > 0 {
			break
		}
	}
	return intervals
}
