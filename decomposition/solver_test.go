package decomposition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/decomposition"
)

func TestSolverLoadInstanceParsesClauses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.cnf")
	content := "c a comment\np cnf 3 2\n1 2 0\n-2 3 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := decomposition.NewSolver()
	require.NoError(t, s.LoadInstance(path))

	builder, err := s.Decompose()
	require.NoError(t, err)
	assert.Equal(t, 3, builder.NumVariables())
	assert.Equal(t, 2, builder.NumConstraints())
}
