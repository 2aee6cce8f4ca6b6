package cube_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/decomposition"
	"github.com/crillab/panoramyx/universe/refsolver"
)

// programmaticSolver is a refsolver whose instance is built in code.
// refsolver.Solver.LoadInstance always fails, so this wrapper accepts the
// instance file (which only the decomposition solver parses) without error.
type programmaticSolver struct{ *refsolver.Solver }

func (programmaticSolver) LoadInstance(string) error { return nil }

func TestHypergraphCutsetGeneratorRestrictsToCutset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf")
	// Two independent clusters {x1,x2,x3} and {x4,x5,x6} joined only
	// through the "bridge" variable x3<->x4.
	content := "1 2 0\n2 3 0\n1 3 0\n3 4 0\n4 5 0\n5 6 0\n4 6 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := refsolver.New()
	for i := 1; i <= 6; i++ {
		s.NewVariable("x"+string(rune('0'+i)), []*big.Int{big.NewInt(0), big.NewInt(1)})
	}

	decompSolver := decomposition.NewSolver()
	gen := cube.NewHypergraphCutsetGenerator(programmaticSolver{s}, decompSolver, nil, 0)
	require.NoError(t, gen.LoadInstance(path))

	cubes := drain(gen.GenerateCubes(context.Background()))
	assert.NotEmpty(t, cubes)
	for _, c := range cubes {
		assert.NoError(t, cube.Validate(c))
	}
}
