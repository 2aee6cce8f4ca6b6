package coordinator

import (
	"context"
	"errors"
	"math/big"

	"github.com/crillab/panoramyx/bounds"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/universe"
)

// Solver is the interface both EPSSolver and PortfolioSolver satisfy,
// letting callers (cmd/panoramyx, tests) drive either variant identically
// once Builder has decided which one to construct.
type Solver interface {
	LoadInstance(ctx context.Context, filename string) error
	StartSearch(ctx context.Context) (universe.Result, error)
	Interrupt()
	Result() Result
}

var (
	_ Solver = (*EPSSolver)(nil)
	_ Solver = (*PortfolioSolver)(nil)
)

// ErrBuilderIncomplete is returned by Build when neither a cube generator
// (EPS mode) nor a bound strategy (portfolio mode) was configured, or when
// Transport/WorkerRanks are missing.
var ErrBuilderIncomplete = errors.New("coordinator: builder missing transport, worker ranks, or a search mode")

// Builder assembles either an EPSSolver or a PortfolioSolver from a common
// set of fluent configuration calls, mirroring AbstractSolverBuilder /
// PortfolioSolverBuilder's chain-then-build shape (minus the JVM-bootstrap
// concerns, which have no place in a pure-Go build).
type Builder struct {
	transport   transport.Transport
	workerRanks []int

	generator cube.Generator

	boundStrategy bounds.Strategy
	boundMin      *big.Int
	boundMax      *big.Int
}

// NewBuilder starts an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithTransport sets the transport every worker is reachable over.
func (b *Builder) WithTransport(t transport.Transport) *Builder {
	b.transport = t
	return b
}

// WithWorkers sets the ranks playing the role of workers.
func (b *Builder) WithWorkers(ranks []int) *Builder {
	b.workerRanks = ranks
	return b
}

// WithCubeGenerator selects EPS (cube-and-conquer) mode, dispatching cubes
// produced by generator.
func (b *Builder) WithCubeGenerator(generator cube.Generator) *Builder {
	b.generator = generator
	return b
}

// WithBoundStrategy selects portfolio (bound-sharing) mode, searching the
// whole instance on every worker within [min, max], narrowed over time by
// strategy.
func (b *Builder) WithBoundStrategy(strategy bounds.Strategy, min, max *big.Int) *Builder {
	b.boundStrategy = strategy
	b.boundMin = min
	b.boundMax = max
	return b
}

// Build constructs the configured solver. Exactly one of WithCubeGenerator
// or WithBoundStrategy must have been called; calling both configures EPS
// mode, since cube-and-conquer is assumed to be the more specific choice.
func (b *Builder) Build() (Solver, error) {
	if b.transport == nil || len(b.workerRanks) == 0 {
		return nil, ErrBuilderIncomplete
	}
	switch {
	case b.generator != nil:
		return NewEPSSolver(b.transport, b.workerRanks, b.generator), nil
	case b.boundStrategy != nil:
		return NewPortfolioSolver(b.transport, b.workerRanks, b.boundStrategy, b.boundMin, b.boundMax), nil
	default:
		return nil, ErrBuilderIncomplete
	}
}
