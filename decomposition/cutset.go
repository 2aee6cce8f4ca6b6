package decomposition

// unionFind is a small disjoint-set structure used to test whether the
// constraint graph induced by the variables NOT in a candidate cutset is
// connected.
type unionFind struct {
	parent []int32
}

func newUnionFind(n int) *unionFind {
	p := make([]int32, n)
	for i := range p {
		p[i] = int32(i)
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int32) int32 {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int32) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

func (u *unionFind) numComponents() int {
	roots := make(map[int32]struct{})
	for i := range u.parent {
		roots[u.find(int32(i))] = struct{}{}
	}
	return len(roots)
}

// ComputeCutset greedily selects variables to remove from the constraint
// graph until it splits into at least minComponents connected components
// (components here range over constraints, linked whenever they share a
// non-cutset variable). Variables are chosen by decreasing degree (number
// of constraints they appear in), which tends to disconnect the graph
// fastest since high-degree variables are the most likely bridges between
// otherwise independent parts of the problem.
//
// If minComponents is reached before all variables are exhausted, the
// cutset stops growing: using more variables than necessary only shrinks
// the subproblems dispatched to each worker without adding parallelism.
func (b *DualHypergraphBuilder) ComputeCutset(minComponents int) []string {
	if minComponents < 2 {
		minComponents = 2
	}
	nConstraints := int(b.constraintID)
	if nConstraints == 0 {
		return nil
	}

	order := make([]int, len(b.variables))
	for i := range order {
		order[i] = i
	}
	// Sort variable indices by decreasing incidence degree.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && len(b.incidence[order[j-1]]) < len(b.incidence[order[j]]); j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}

	cutset := make(map[int]struct{})
	uf := newUnionFind(nConstraints)
	linkRemaining := func() {
		uf = newUnionFind(nConstraints)
		for vi, constraints := range b.incidence {
			if _, cut := cutset[vi]; cut {
				continue
			}
			for i := 1; i < len(constraints); i++ {
				uf.union(constraints[0]-1, constraints[i]-1)
			}
		}
	}
	linkRemaining()

	result := make([]string, 0)
	for _, vi := range order {
		if uf.numComponents() >= minComponents {
			break
		}
		if len(b.incidence[vi]) < 2 {
			// A variable incident to fewer than two constraints can never
			// be a bridge between components: no point spending it.
			continue
		}
		cutset[vi] = struct{}{}
		result = append(result, b.variables[vi])
		linkRemaining()
	}

	b.cutset = result
	return result
}
