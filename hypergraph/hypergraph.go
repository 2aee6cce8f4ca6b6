// Package hypergraph provides a CSR-style hypergraph representation used
// by the decomposition package to partition constraint scopes into cubes.
// A hypergraph is built incrementally via Builder, which grows a single
// vertex buffer geometrically rather than allocating per hyperedge.
package hypergraph

// Hyperedge is a read-only view over the vertices of a single hyperedge.
// Vertices are 1-indexed, matching the convention used throughout the
// decomposition package for variable and constraint identifiers.
type Hyperedge struct {
	Vertices []int32
	Weight   int32
}

func (h Hyperedge) Size() int { return len(h.Vertices) }

// Hypergraph is an immutable CSR-encoded hypergraph: hyperedges are stored
// contiguously in a single vertices slice, with indices marking the start
// offset of each hyperedge (and, as a sentinel, the end of the last one).
type Hypergraph struct {
	numVertices   int
	vertexWeights []int32 // nil when unweighted

	indices       []int64 // len = numHyperedges+1
	vertices      []int32 // len = indices[numHyperedges]
	edgeWeights   []int32 // nil when unweighted
}

// NumVertices returns the number of vertices in the hypergraph.
func (h *Hypergraph) NumVertices() int { return h.numVertices }

// NumHyperedges returns the number of hyperedges in the hypergraph.
//
// The original implementation this package is derived from returns the
// vertex count here by mistake (getNumberOfHyperedges returning
// numberOfVertices). That is not replicated: this always returns the
// actual hyperedge count.
func (h *Hypergraph) NumHyperedges() int { return len(h.indices) - 1 }

// VertexWeight returns the weight of a 1-indexed vertex, or 1 if the
// hypergraph is unweighted.
func (h *Hypergraph) VertexWeight(vertex int32) int32 {
	if h.vertexWeights == nil {
		return 1
	}
	return h.vertexWeights[vertex-1]
}

// Hyperedge returns the 0-indexed-th hyperedge, with vertices converted
// back to 1-indexed form.
func (h *Hypergraph) Hyperedge(index int) Hyperedge {
	begin := h.indices[index]
	end := h.indices[index+1]
	vs := make([]int32, end-begin)
	for i := range vs {
		vs[i] = h.vertices[int(begin)+i] + 1
	}
	w := int32(1)
	if h.edgeWeights != nil {
		w = h.edgeWeights[index]
	}
	return Hyperedge{Vertices: vs, Weight: w}
}

// HyperedgeIndices exposes the raw CSR index array, for algorithms (like
// dual construction) that need direct offset arithmetic.
func (h *Hypergraph) HyperedgeIndices() []int64 { return h.indices }

// HyperedgeVertices exposes the raw, 0-indexed CSR vertex array.
func (h *Hypergraph) HyperedgeVertices() []int32 { return h.vertices }

// Builder accumulates hyperedges into a growable buffer before freezing
// them into a Hypergraph. The zero value is not usable; use Create.
type Builder struct {
	numVertices   int
	vertexWeights []int32

	indices        []int64
	vertices       []int32
	verticesLen    int
	edgeWeights    []int32
	hyperedgeCount int
}

// Create starts a builder for a hypergraph with nbVertices vertices and an
// expected nbHyperedges hyperedges (a capacity hint, not a hard limit).
func Create(nbVertices, nbHyperedges int) *Builder {
	if nbHyperedges < 1 {
		nbHyperedges = 1
	}
	return &Builder{
		numVertices: nbVertices,
		indices:     make([]int64, 0, nbHyperedges+1),
		vertices:    make([]int32, nbHyperedges*2),
	}
}

// WithVertexWeight assigns a weight to a 1-indexed vertex and returns the
// builder for chaining.
func (b *Builder) WithVertexWeight(vertex int32, weight int32) *Builder {
	if b.vertexWeights == nil {
		b.vertexWeights = make([]int32, b.numVertices)
		for i := range b.vertexWeights {
			b.vertexWeights[i] = 1
		}
	}
	b.vertexWeights[vertex-1] = weight
	return b
}

// WithHyperedge appends a hyperedge made up of 1-indexed vertices, with an
// optional weight (1 if omitted).
func (b *Builder) WithHyperedge(vertices []int32, weight ...int32) *Builder {
	b.indices = append(b.indices, int64(b.verticesLen))
	for _, v := range vertices {
		b.appendVertex(v)
	}
	w := int32(1)
	if len(weight) > 0 {
		w = weight[0]
	}
	if w != 1 || b.edgeWeights != nil {
		if b.edgeWeights == nil {
			b.edgeWeights = make([]int32, b.hyperedgeCount)
			for i := range b.edgeWeights {
				b.edgeWeights[i] = 1
			}
		}
		b.edgeWeights = append(b.edgeWeights, w)
	}
	b.hyperedgeCount++
	return b
}

func (b *Builder) appendVertex(vertex int32) {
	if b.verticesLen == len(b.vertices) {
		grown := make([]int32, len(b.vertices)*2)
		copy(grown, b.vertices[:b.verticesLen])
		b.vertices = grown
	}
	b.vertices[b.verticesLen] = vertex - 1
	b.verticesLen++
}

// Build freezes the accumulated hyperedges into an immutable Hypergraph.
func (b *Builder) Build() *Hypergraph {
	b.indices = append(b.indices, int64(b.verticesLen))
	return &Hypergraph{
		numVertices:   b.numVertices,
		vertexWeights: b.vertexWeights,
		indices:       b.indices,
		vertices:      b.vertices[:b.verticesLen],
		edgeWeights:   b.edgeWeights,
	}
}
