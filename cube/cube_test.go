package cube_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/universe/refsolver"
)

func domainRange(n int64) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(int64(i))
	}
	return out
}

func newSampleSolver() *refsolver.Solver {
	s := refsolver.New()
	s.NewVariable("x", domainRange(2))
	s.NewVariable("y", domainRange(2))
	return s
}

func drain(ch <-chan assumption.Cube) []assumption.Cube {
	var out []assumption.Cube
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestLexicographicGeneratorEnumeratesFullProduct(t *testing.T) {
	s := newSampleSolver()
	gen := cube.NewLexicographicGenerator(s, nil, 0)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.Len(t, cubes, 4)
	for _, c := range cubes {
		assert.NoError(t, cube.Validate(c))
		assert.Len(t, c, 2)
	}
}

func TestLexicographicGeneratorRespectsNbCubesMax(t *testing.T) {
	s := newSampleSolver()
	gen := cube.NewLexicographicGenerator(s, nil, 2)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.LessOrEqual(t, len(cubes), 2)
}

func TestLexicographicGeneratorSingletonDomainYieldsOneCube(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(1))
	gen := cube.NewLexicographicGenerator(s, nil, 0)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.Len(t, cubes, 1)
	assert.Len(t, cubes[0], 1)
}

func TestLexicographicGeneratorChecksConsistency(t *testing.T) {
	s := newSampleSolver()
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
	})
	checker := consistency.NewFinalChecker(s)

	gen := cube.NewLexicographicGenerator(newSampleSolver(), checker, 0)
	cubes := drain(gen.GenerateCubes(context.Background()))
	// Only the 2 cubes consistent with x != y survive CheckFinal; {x=0,y=0}
	// and {x=1,y=1} are pruned before ever reaching the output channel.
	assert.Len(t, cubes, 2)
	for _, c := range cubes {
		x, y := c[0].Value, c[1].Value
		assert.NotEqual(t, 0, x.Cmp(y))
	}
}

func TestLexicographicIntervalGeneratorSplitsDomain(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(10))
	gen := cube.NewLexicographicIntervalGenerator(s, nil, 0, 3)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.Len(t, cubes, 3)
	for _, c := range cubes {
		assert.True(t, c[0].IsRange())
	}
}

func TestCartesianProductGeneratorProducesRequestedCount(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(4))
	s.NewVariable("y", domainRange(4))
	gen := cube.NewCartesianProductGenerator(s, nil, 4)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.LessOrEqual(t, len(cubes), 4)
	assert.NotEmpty(t, cubes)
	for _, c := range cubes {
		assert.NoError(t, cube.Validate(c))
	}
}

func TestCartesianProductGeneratorDropsUnsatSubproblems(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", []*big.Int{big.NewInt(0)})
	s.NewVariable("y", []*big.Int{big.NewInt(0)})
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
	})
	gen := cube.NewCartesianProductGenerator(s, nil, 4)
	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.Empty(t, cubes)
}

func TestGenerateCubesStopsOnContextCancel(t *testing.T) {
	s := refsolver.New()
	for i := 0; i < 5; i++ {
		s.NewVariable(string(rune('a'+i)), domainRange(3))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := cube.NewLexicographicGenerator(s, nil, 0)
	cubes := drain(gen.GenerateCubes(ctx))
	assert.Empty(t, cubes)
}
