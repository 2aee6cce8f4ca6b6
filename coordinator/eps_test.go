package coordinator_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/coordinator"
	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe"
	"github.com/crillab/panoramyx/universe/refsolver"
	"github.com/crillab/panoramyx/worker"
)

func domainRange(n int64) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(i)
	}
	return out
}

// runWorkers starts a worker.Loop on every non-coordinator rank of
// transports, each wrapping its own solver built by newSolver, and returns a
// function that waits for them all to return once StartSearch concludes
// (StartSearch's Shutdown broadcasts TagEnd).
func runWorkers(t *testing.T, ctx context.Context, transports []*thread.Transport, newSolver func() universe.Solver) func() {
	t.Helper()
	done := make(chan error, len(transports)-1)
	for _, tr := range transports[1:] {
		loop := &worker.Loop{Solver: newSolver(), Transport: tr, CoordinatorRank: 0}
		go func(l *worker.Loop) { done <- l.Run(ctx) }(loop)
	}
	return func() {
		for range transports[1:] {
			require.NoError(t, <-done)
		}
	}
}

func TestEPSSolverFindsSatisfiableCube(t *testing.T) {
	const nbWorkers = 3
	transports := thread.Group(nbWorkers + 1)
	coordTransport := transports[0]

	newSolver := func() universe.Solver {
		s := refsolver.New()
		s.NewVariable("x", domainRange(3))
		s.AddConstraint(refsolver.Constraint{
			Scope: []string{"x"},
			Check: func(a map[string]*big.Int) bool { return a["x"].Cmp(big.NewInt(2)) == 0 },
		})
		return s
	}

	genSolver := refsolver.New()
	genSolver.NewVariable("x", domainRange(3))
	generator := cube.NewLexicographicGenerator(genSolver, nil, 0)

	workerRanks := []int{1, 2, 3}
	eps := coordinator.NewEPSSolver(coordTransport, workerRanks, generator)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wait := runWorkers(t, ctx, transports, newSolver)

	result, err := eps.StartSearch(ctx)
	require.NoError(t, err)
	assert.Equal(t, universe.Satisfiable, result)
	wait()
}

func TestEPSSolverUnsatisfiableExhaustsAllCubes(t *testing.T) {
	const nbWorkers = 2
	transports := thread.Group(nbWorkers + 1)
	coordTransport := transports[0]

	newSolver := func() universe.Solver {
		s := refsolver.New()
		s.NewVariable("x", domainRange(2))
		s.AddConstraint(refsolver.Constraint{
			Scope: []string{"x"},
			Check: func(a map[string]*big.Int) bool { return false },
		})
		return s
	}

	genSolver := refsolver.New()
	genSolver.NewVariable("x", domainRange(2))
	generator := cube.NewLexicographicGenerator(genSolver, nil, 0)

	workerRanks := []int{1, 2}
	eps := coordinator.NewEPSSolver(coordTransport, workerRanks, generator)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wait := runWorkers(t, ctx, transports, newSolver)

	result, err := eps.StartSearch(ctx)
	require.NoError(t, err)
	assert.Equal(t, universe.Unsatisfiable, result)
	wait()
}

func TestEPSSolverStartSearchWithAssumptionsUnsupported(t *testing.T) {
	transports := thread.Group(2)
	genSolver := refsolver.New()
	genSolver.NewVariable("x", domainRange(2))
	generator := cube.NewLexicographicGenerator(genSolver, nil, 0)

	eps := coordinator.NewEPSSolver(transports[0], []int{1}, generator)
	_, err := eps.StartSearchWithAssumptions(context.Background(), nil)
	assert.ErrorIs(t, err, coordinator.ErrAssumptionsUnsupportedInEPS)
}
