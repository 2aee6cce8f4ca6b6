package decomposition

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Solver parses just enough of an instance to record each constraint's
// scope, then exposes the resulting dual hypergraph builder. It mirrors
// the original hypergraph-decomposition solver, which implemented the
// full constraint-solver interface but only ever used it to accumulate
// scopes: every method unrelated to that (actual solving, search
// listeners, logging) is unsupported here, since cube generation never
// calls them.
//
// Supported input is a CNF-like text format: one clause per line, literals
// separated by whitespace, terminated by a trailing 0. This is enough to
// exercise decomposition end to end without a full XCSP/PB parser.
type Solver struct {
	builder *DualHypergraphBuilder
}

// NewSolver creates an empty decomposition solver.
func NewSolver() *Solver {
	return &Solver{builder: NewDualHypergraphBuilder()}
}

// LoadInstance reads a CNF-like file and records the scope of each clause
// as a constraint.
func (s *Solver) LoadInstance(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "c") || strings.HasPrefix(line, "p") {
			continue
		}
		fields := strings.Fields(line)
		literals := make([]int32, 0, len(fields))
		for _, tok := range fields {
			lit, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return fmt.Errorf("decomposition: malformed literal %q: %w", tok, err)
			}
			if lit == 0 {
				break
			}
			literals = append(literals, int32(lit))
		}
		if len(literals) == 0 {
			continue
		}
		s.builder.AddConstraintScope(s.builder.ScopeOfLiterals(literals))
	}
	return scanner.Err()
}

// AddConstraintScope exposes the underlying builder's scope registration
// directly, for callers (e.g. tests, or parsers for other formats) that
// build the incidence structure without going through LoadInstance.
func (s *Solver) AddConstraintScope(scope []string) int32 {
	return s.builder.AddConstraintScope(scope)
}

// Decompose computes the cutset of the accumulated dual hypergraph,
// targeting at least two independent components, and returns the builder
// holding both the hypergraph and the cutset.
func (s *Solver) Decompose() (*DualHypergraphBuilder, error) {
	s.builder.ComputeCutset(2)
	return s.builder, nil
}
