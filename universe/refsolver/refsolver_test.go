package refsolver_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/panoramyx/universe"
	"github.com/crillab/panoramyx/universe/refsolver"
)

func domainRange(n int64) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(int64(i))
	}
	return out
}

func TestSolveSimpleAllDifferent(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(2))
	s.NewVariable("y", domainRange(2))
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool {
			return a["x"].Cmp(a["y"]) != 0
		},
	})

	res := s.Solve(nil)
	assert.Equal(t, universe.Satisfiable, res)
	assert.True(t, s.CheckSolution())
}

func TestSolveUnsatisfiable(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(1))
	s.NewVariable("y", domainRange(1))
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool {
			return a["x"].Cmp(a["y"]) != 0
		},
	})

	res := s.Solve(nil)
	assert.Equal(t, universe.Unsatisfiable, res)
}

func TestSolveWithAssumptions(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(3))
	s.NewVariable("y", domainRange(3))
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool {
			return a["x"].Cmp(a["y"]) != 0
		},
	})

	res := s.Solve([]universe.Assumption{
		{Variable: "x", Equal: true, Value: big.NewInt(0)},
		{Variable: "y", Equal: false, Value: big.NewInt(0)},
	})
	assert.Equal(t, universe.Satisfiable, res)
	sol := s.Solution()
	assert.Equal(t, 0, sol["x"].Cmp(big.NewInt(0)))
	assert.NotEqual(t, 0, sol["y"].Cmp(big.NewInt(0)))
}

func TestInterruptReturnsUnknown(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", domainRange(2))
	s.Interrupt()
	res := s.Solve(nil)
	assert.Equal(t, universe.Unknown, res)
}
