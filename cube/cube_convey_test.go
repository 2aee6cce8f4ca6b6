package cube_test

import (
	"context"
	"math/big"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/crillab/panoramyx/consistency"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/universe/refsolver"
)

// TestLexicographicGeneratorBehavior is the behavioral spec for the
// property that matters most about cube generation: a cube proved
// inconsistent by the checker's CheckFinal never reaches the output
// channel, while a cube it accepts always does.
func TestLexicographicGeneratorBehavior(t *testing.T) {
	Convey("Given a solver over two boolean-ish variables x and y", t, func() {
		s := newSampleSolver()

		Convey("When no checker is attached", func() {
			gen := cube.NewLexicographicGenerator(s, nil, 0)
			cubes := drain(gen.GenerateCubes(context.Background()))

			Convey("Every cube in the full cartesian product is emitted", func() {
				So(len(cubes), ShouldEqual, 4)
			})
		})

		Convey("When a consistency checker rejects x == y", func() {
			s.AddConstraint(refsolver.Constraint{
				Scope: []string{"x", "y"},
				Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(a["y"]) != 0 },
			})
			checker := consistency.NewFinalChecker(s)
			gen := cube.NewLexicographicGenerator(newSampleSolver(), checker, 0)
			cubes := drain(gen.GenerateCubes(context.Background()))

			Convey("Only the cubes consistent with x != y survive", func() {
				So(len(cubes), ShouldEqual, 2)
				for _, c := range cubes {
					So(c[0].Value.Cmp(c[1].Value), ShouldNotEqual, 0)
				}
			})
		})
	})
}
