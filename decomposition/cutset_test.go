package decomposition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/panoramyx/decomposition"
)

func TestComputeCutsetSeparatesTwoCliques(t *testing.T) {
	b := decomposition.NewDualHypergraphBuilder()
	// Two independent triangles of constraints, joined only through "bridge".
	b.AddConstraintScope([]string{"a1", "a2"})
	b.AddConstraintScope([]string{"a2", "a3"})
	b.AddConstraintScope([]string{"a1", "a3"})
	b.AddConstraintScope([]string{"a1", "bridge"})
	b.AddConstraintScope([]string{"bridge", "b1"})
	b.AddConstraintScope([]string{"b1", "b2"})
	b.AddConstraintScope([]string{"b2", "b1"})

	cutset := b.ComputeCutset(2)
	assert.NotEmpty(t, cutset)
	assert.Equal(t, cutset, b.Cutset())
}

func TestComputeCutsetEmptyWithNoConstraints(t *testing.T) {
	b := decomposition.NewDualHypergraphBuilder()
	assert.Empty(t, b.ComputeCutset(2))
}
