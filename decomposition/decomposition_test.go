package decomposition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crillab/panoramyx/decomposition"
)

func TestScopeCollectsVariablesOnly(t *testing.T) {
	tree := decomposition.IfThenElseNode{
		If:   decomposition.BinaryNode{Operator: "eq", Left: decomposition.VariableNode{Identifier: "x"}, Right: decomposition.ConstantNode{Value: 1}},
		Then: decomposition.VariableNode{Identifier: "y"},
		Else: decomposition.NaryNode{Operator: "add", Children: []decomposition.IntensionNode{
			decomposition.VariableNode{Identifier: "z"},
			decomposition.UnaryNode{Operator: "neg", Child: decomposition.VariableNode{Identifier: "x"}},
		}},
	}

	scope := decomposition.Scope(tree)
	assert.Len(t, scope, 3)
	assert.Contains(t, scope, "x")
	assert.Contains(t, scope, "y")
	assert.Contains(t, scope, "z")
}

func TestDualHypergraphBuilderIncidence(t *testing.T) {
	b := decomposition.NewDualHypergraphBuilder()
	b.AddConstraintScope([]string{"x", "y"})
	b.AddConstraintScope([]string{"y", "z"})
	b.AddConstraintScope([]string{"x"})

	assert.Equal(t, 3, b.NumVariables())
	assert.Equal(t, 3, b.NumConstraints())

	h := b.Build()
	assert.Equal(t, 3, h.NumVertices())
	assert.Equal(t, 3, h.NumHyperedges())

	// Variable "y" (added first via constraint 1) is incident to
	// constraints 1 and 2.
	found := false
	for i := 0; i < h.NumHyperedges(); i++ {
		if b.VariableAt(i) == "y" {
			e := h.Hyperedge(i)
			assert.ElementsMatch(t, []int32{1, 2}, e.Vertices)
			found = true
		}
	}
	assert.True(t, found)
}

func TestScopeOfLiterals(t *testing.T) {
	b := decomposition.NewDualHypergraphBuilder()
	scope := b.ScopeOfLiterals([]int32{1, -2, 3})
	assert.Equal(t, []string{"x1", "x2", "x3"}, scope)
}

func TestCutset(t *testing.T) {
	b := decomposition.NewDualHypergraphBuilder()
	b.SetCutset([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, b.Cutset())
}
