package decomposition

import (
	"errors"
	"sort"

	"github.com/crillab/panoramyx/hypergraph"
)

// ErrUnsupported names a full constraint-solver operation that is
// meaningless for pure decomposition: a decomposition builder only ever
// needs to know the scope of each constraint, never how to solve it. No
// function of this package returns it.
var ErrUnsupported = errors.New("decomposition: unsupported for a hypergraph decomposition builder")

// DualHypergraphBuilder accumulates the scope (set of variables) of each
// constraint of a problem, and builds the dual hypergraph of that problem:
// one vertex per constraint, one hyperedge per variable, where a
// hyperedge's vertices are the constraints that reference it. Partitioning
// this dual hypergraph yields a cutset of variables whose assumption
// splits the constraint graph into independent components.
type DualHypergraphBuilder struct {
	variableIndex map[string]int32 // 1-indexed
	variables     []string
	constraintID  int32 // last constraint id assigned (ids are 1-indexed), i.e. the constraint count

	// incidence[v] lists the constraints (1-indexed ids) that reference
	// variable v (0-indexed position into variables).
	incidence [][]int32

	cutset []string
}

// NewDualHypergraphBuilder creates an empty builder.
func NewDualHypergraphBuilder() *DualHypergraphBuilder {
	return &DualHypergraphBuilder{
		variableIndex: make(map[string]int32),
	}
}

// AddConstraintScope registers a new constraint with the given scope
// (the variables it references) and returns the id assigned to it.
func (b *DualHypergraphBuilder) AddConstraintScope(scope []string) int32 {
	b.constraintID++
	id := b.constraintID
	for _, v := range scope {
		idx := b.variableOf(v)
		b.incidence[idx] = append(b.incidence[idx], id)
	}
	return id
}

func (b *DualHypergraphBuilder) variableOf(name string) int32 {
	if idx, ok := b.variableIndex[name]; ok {
		return idx - 1
	}
	b.variables = append(b.variables, name)
	b.incidence = append(b.incidence, nil)
	idx := int32(len(b.variables))
	b.variableIndex[name] = idx
	return idx - 1
}

// ScopeOfVariables returns its argument unchanged: it exists so that
// call sites built around intension constraints, instantiations and plain
// variable lists can all funnel into AddConstraintScope through the same
// helper name.
func (b *DualHypergraphBuilder) ScopeOfVariables(variables []string) []string {
	return variables
}

// ScopeOfLiterals maps a slice of DIMACS-style signed literals to the
// variable names "x<|lit|>", matching the convention used to turn CNF/PB
// clauses into scopes without a symbol table.
func (b *DualHypergraphBuilder) ScopeOfLiterals(literals []int32) []string {
	scope := make([]string, len(literals))
	for i, lit := range literals {
		v := lit
		if v < 0 {
			v = -v
		}
		scope[i] = literalVariableName(v)
	}
	return scope
}

func literalVariableName(v int32) string {
	return "x" + itoa(v)
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// ScopeOfIntensions flattens the scopes of several intension expression
// trees into a single constraint scope, deduplicated and sorted for
// deterministic hyperedge construction.
func (b *DualHypergraphBuilder) ScopeOfIntensions(nodes []IntensionNode) []string {
	merged := make(map[string]struct{})
	for _, n := range nodes {
		for v := range Scope(n) {
			merged[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(merged))
	for v := range merged {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NumVariables returns the number of distinct variables seen so far.
func (b *DualHypergraphBuilder) NumVariables() int { return len(b.variables) }

// NumConstraints returns the number of constraints registered so far.
func (b *DualHypergraphBuilder) NumConstraints() int { return int(b.constraintID) }

// Build constructs the dual hypergraph: one hyperedge per variable, whose
// vertices are the (1-indexed) ids of the constraints incident to it.
// Variables referenced by no constraint still get an (empty) hyperedge, so
// the hyperedge count equals NumVariables and the vertex count equals
// NumConstraints.
func (b *DualHypergraphBuilder) Build() *hypergraph.Hypergraph {
	hb := hypergraph.Create(int(b.constraintID), len(b.variables))
	for _, constraints := range b.incidence {
		hb.WithHyperedge(constraints)
	}
	return hb.Build()
}

// VariableAt returns the variable name assigned to a 0-indexed position,
// matching the hyperedge order produced by Build.
func (b *DualHypergraphBuilder) VariableAt(i int) string { return b.variables[i] }

// SetCutset records the result of partitioning the dual hypergraph: the
// variables whose assumption separates the problem into independent
// components.
func (b *DualHypergraphBuilder) SetCutset(cutset []string) { b.cutset = cutset }

// Cutset returns the variables previously recorded by SetCutset.
func (b *DualHypergraphBuilder) Cutset() []string { return b.cutset }
