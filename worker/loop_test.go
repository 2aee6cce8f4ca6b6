package worker

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe"
	"github.com/crillab/panoramyx/universe/refsolver"
)

func newTestSolver() *refsolver.Solver {
	s := refsolver.New()
	s.NewVariable("x", []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
	return s
}

func TestLoopSolveCube(t *testing.T) {
	transports := thread.Group(2)
	coordinator, workerT := transports[0], transports[1]

	solver := newTestSolver()
	loop := &Loop{Solver: solver, Transport: workerT, CoordinatorRank: 0}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cube := assumption.Cube{{Variable: "x", Equal: true, Value: big.NewInt(2)}}
	b := codec.NewBuilder(codec.TagSolve).AppendInt(codec.OpSolveCube).AppendCube(cube)
	f := b.Build(0)
	require.NoError(t, coordinator.Send(ctx, &f, 1))

	result, err := coordinator.Receive(ctx, codec.TagResult, 1)
	require.NoError(t, err)
	require.Equal(t, int32(universe.Satisfiable), codec.NewReader(result.Payload).Int())

	endFrame := codec.NewBuilder(codec.TagEnd).Build(0)
	require.NoError(t, coordinator.Send(ctx, &endFrame, 1))
	require.NoError(t, <-done)
}

// interruptTracker wraps a refsolver.Solver and records whether Interrupt
// was ever invoked, so tests can assert the worker loop actually dispatched
// TagInterrupt rather than silently dropping it.
type interruptTracker struct {
	*refsolver.Solver
	interrupted chan struct{}
}

func (t *interruptTracker) Interrupt() {
	t.Solver.Interrupt()
	select {
	case t.interrupted <- struct{}{}:
	default:
	}
}

func TestLoopInterrupt(t *testing.T) {
	transports := thread.Group(2)
	coordinator, workerT := transports[0], transports[1]

	solver := &interruptTracker{Solver: newTestSolver(), interrupted: make(chan struct{}, 1)}
	loop := &Loop{Solver: solver, Transport: workerT, CoordinatorRank: 0}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() { _ = loop.Run(ctx) }()

	interruptFrame := codec.NewBuilder(codec.TagInterrupt).Build(0)
	require.NoError(t, coordinator.Send(ctx, &interruptFrame, 1))

	select {
	case <-solver.interrupted:
	case <-time.After(time.Second):
		t.Fatal("worker loop never dispatched TagInterrupt to the solver")
	}
}
