// Package coordinator drives a group of worker ranks (see package worker)
// through a parallel solve: EPSSolver implements cube-and-conquer,
// PortfolioSolver implements bound-sharing portfolio search. Both embed
// AbstractParallelSolver, which owns the shared dispatch/result-tracking
// state neither variant needs to reimplement.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/crillab/panoramyx/assumption"
	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/universe"
)

// Result is the outcome reported by a coordinator run.
type Result = universe.Result

// workerState tracks what a given worker rank is currently doing, so
// Interrupt only signals ranks that are actually running.
type workerState int32

const (
	workerIdle workerState = iota
	workerRunning
	workerDone
)

// workerHandle is the coordinator's view of one worker rank.
type workerHandle struct {
	rank  int
	state int32 // workerState, accessed via atomic
}

func (w *workerHandle) setState(s workerState) { atomic.StoreInt32(&w.state, int32(s)) }
func (w *workerHandle) getState() workerState  { return workerState(atomic.LoadInt32(&w.state)) }

// AbstractParallelSolver holds the state shared by every parallel solving
// strategy: the set of worker ranks, which of them are free to take new
// work, the result found so far, and the machinery to tear a run down.
// Grounded on EPSSolver.cpp's inherited AbstractParallelSolver members
// (availableSolvers, currentRunningSolvers, result, solved) translated to
// Go channel/atomic idioms.
type AbstractParallelSolver struct {
	Transport transport.Transport
	workers   []*workerHandle
	available chan *workerHandle

	result      atomic.Value // universe.Result
	interrupted atomic.Bool

	mu sync.Mutex
}

// NewAbstractParallelSolver creates the shared state for workerRanks,
// seeding every rank as immediately available.
func NewAbstractParallelSolver(t transport.Transport, workerRanks []int) *AbstractParallelSolver {
	a := &AbstractParallelSolver{
		Transport: t,
		available: make(chan *workerHandle, len(workerRanks)),
	}
	a.result.Store(universe.Unknown)
	for _, rank := range workerRanks {
		h := &workerHandle{rank: rank}
		a.workers = append(a.workers, h)
		a.available <- h
	}
	return a
}

// Result returns the outcome found so far (Unknown if the search is still
// running or found nothing conclusive).
func (a *AbstractParallelSolver) Result() Result {
	return a.result.Load().(Result)
}

// setResult stores r only if no conclusive result has been recorded yet,
// so the first SATISFIABLE/UNSATISFIABLE/OPTIMUM/TIMEOUT wins.
func (a *AbstractParallelSolver) setResult(r Result) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Result() != universe.Unknown {
		return false
	}
	a.result.Store(r)
	return true
}

// takeWorker blocks until a worker is available, marks it running, and
// returns it.
func (a *AbstractParallelSolver) takeWorker(ctx context.Context) (*workerHandle, error) {
	select {
	case h := <-a.available:
		h.setState(workerRunning)
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// releaseWorker marks a worker idle again and returns it to the available
// pool, for reuse after it reports UNSATISFIABLE on its current cube.
func (a *AbstractParallelSolver) releaseWorker(h *workerHandle) {
	h.setState(workerIdle)
	a.available <- h
}

// markAllDone marks every worker done, draining the available pool so no
// further takeWorker call can succeed; used once EPSSolver.onSatisfiableFound
// has decided the search is over.
func (a *AbstractParallelSolver) markAllDone() {
	for _, h := range a.workers {
		h.setState(workerDone)
	}
	for {
		select {
		case <-a.available:
		default:
			return
		}
	}
}

// LoadInstance sends filename to every worker rank and returns once every
// send has succeeded. It does not wait for the workers to load the
// instance: a worker sends no acknowledgement, and a load failure on a
// worker is not reported back.
func (a *AbstractParallelSolver) LoadInstance(ctx context.Context, filename string) error {
	for _, h := range a.workers {
		b := codec.NewBuilder(codec.TagSolve).AppendInt(codec.OpLoadInstance).AppendString(filename)
		f := b.Build(int32(a.Transport.ID()))
		if err := a.Transport.Send(ctx, &f, h.rank); err != nil {
			return fmt.Errorf("coordinator: load instance on rank %d: %w", h.rank, err)
		}
	}
	return nil
}

// Interrupt signals every currently running worker exactly once; repeated
// calls after the first are no-ops, matching the original's
// interrupted-once contract.
func (a *AbstractParallelSolver) Interrupt() {
	if !a.interrupted.CompareAndSwap(false, true) {
		return
	}
	for _, h := range a.workers {
		if h.getState() != workerRunning {
			continue
		}
		b := codec.NewBuilder(codec.TagInterrupt)
		f := b.Build(int32(a.Transport.ID()))
		_ = a.Transport.Send(context.Background(), &f, h.rank)
	}
}

// Shutdown broadcasts TagEnd to every worker, telling its worker.Loop to
// return. Safe to call once a run has concluded; workers already marked
// done are still reachable at their rank, so this works whether the run
// ended via onSatisfiableFound or by exhausting all cubes.
func (a *AbstractParallelSolver) Shutdown(ctx context.Context) {
	for _, h := range a.workers {
		b := codec.NewBuilder(codec.TagEnd)
		f := b.Build(int32(a.Transport.ID()))
		_ = a.Transport.Send(ctx, &f, h.rank)
	}
}

// sendCube dispatches cube to worker h.
func (a *AbstractParallelSolver) sendCube(ctx context.Context, h *workerHandle, cube assumption.Cube) error {
	b := codec.NewBuilder(codec.TagSolve).AppendInt(codec.OpSolveCube).AppendCube(cube)
	f := b.Build(int32(a.Transport.ID()))
	return a.Transport.Send(ctx, &f, h.rank)
}

// receiveResult blocks for the next TagResult frame from rank.
func (a *AbstractParallelSolver) receiveResult(ctx context.Context, rank int) (universe.Result, error) {
	frame, err := a.Transport.Receive(ctx, codec.TagResult, int32(rank))
	if err != nil {
		return universe.Unknown, err
	}
	return universe.Result(codec.NewReader(frame.Payload).Int()), nil
}
