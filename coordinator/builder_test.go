package coordinator_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/bounds"
	"github.com/crillab/panoramyx/coordinator"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe/refsolver"
)

func TestBuilderBuildsEPSSolverFromCubeGenerator(t *testing.T) {
	transports := thread.Group(2)
	s := refsolver.New()
	s.NewVariable("x", domainRange(2))
	generator := cube.NewLexicographicGenerator(s, nil, 0)

	solver, err := coordinator.NewBuilder().
		WithTransport(transports[0]).
		WithWorkers([]int{1}).
		WithCubeGenerator(generator).
		Build()
	require.NoError(t, err)
	assert.IsType(t, &coordinator.EPSSolver{}, solver)
}

func TestBuilderBuildsPortfolioSolverFromBoundStrategy(t *testing.T) {
	transports := thread.Group(2)
	strategy := bounds.NewRangeBasedStrategy(linearFactory)

	solver, err := coordinator.NewBuilder().
		WithTransport(transports[0]).
		WithWorkers([]int{1}).
		WithBoundStrategy(strategy, big.NewInt(0), big.NewInt(10)).
		Build()
	require.NoError(t, err)
	assert.IsType(t, &coordinator.PortfolioSolver{}, solver)
}

func TestBuilderRequiresTransportAndWorkers(t *testing.T) {
	_, err := coordinator.NewBuilder().Build()
	assert.ErrorIs(t, err, coordinator.ErrBuilderIncomplete)
}
