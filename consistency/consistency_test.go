package consistency_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/universe"
	"github.com/crillab/panoramyx/universe/refsolver"
)

func TestFinalCheckerRejectsUnsatCube(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", []*big.Int{big.NewInt(0)})
	s.NewVariable("y", []*big.Int{big.NewInt(0)})
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
	})

	checker := consistency.NewFinalChecker(s)
	assert.True(t, checker.CheckPartial(nil))
	assert.False(t, checker.CheckFinal(nil))
}

func TestFinalCheckerAcceptsSatCube(t *testing.T) {
	s := refsolver.New()
	s.NewVariable("x", []*big.Int{big.NewInt(0), big.NewInt(1)})
	s.NewVariable("y", []*big.Int{big.NewInt(0), big.NewInt(1)})
	s.AddConstraint(refsolver.Constraint{
		Scope: []string{"x", "y"},
		Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
	})

	checker := consistency.NewFinalChecker(s)
	cube := []universe.Assumption{{Variable: "x", Equal: true, Value: big.NewInt(0)}}
	assert.True(t, checker.CheckFinal(cube))
}
