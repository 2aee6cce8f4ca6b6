package coordinator

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/crillab/panoramyx/cube"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/universe"
)

// ErrAssumptionsUnsupportedInEPS is returned by StartSearchWithAssumptions:
// EPS dispatches one cube per worker from its own generator, so there is no
// way to additionally fix assumptions on top of that, mirroring EPSSolver's
// startSearch(assumptions) throwing UnsupportedOperationException.
var ErrAssumptionsUnsupportedInEPS = errors.New("coordinator: EPS search does not support assumptions")

// EPSSolver implements cube-and-conquer: an embarrassingly parallel search
// (EPS) where the cube generator splits the problem once and every cube is
// solved by exactly one worker; a worker that finishes a cube is handed the
// next one. Grounded on EPSSolver.cpp.
type EPSSolver struct {
	*AbstractParallelSolver
	Generator cube.Generator

	cubesSem *semaphore
}

// NewEPSSolver creates an EPS coordinator dispatching cubes from generator
// to workerRanks over t.
func NewEPSSolver(t transport.Transport, workerRanks []int, generator cube.Generator) *EPSSolver {
	return &EPSSolver{
		AbstractParallelSolver: NewAbstractParallelSolver(t, workerRanks),
		Generator:              generator,
		cubesSem:               newSemaphore(),
	}
}

// LoadInstance loads the instance into both the generator and every
// worker's solver, mirroring EPSSolver::loadInstance.
func (e *EPSSolver) LoadInstance(ctx context.Context, filename string) error {
	if err := e.Generator.LoadInstance(filename); err != nil {
		return err
	}
	return e.AbstractParallelSolver.LoadInstance(ctx, filename)
}

// StartSearch launches the dispatcher (walking the cube generator and
// handing cubes to available workers) and the response listener, and
// blocks until the search concludes or ctx is canceled.
func (e *EPSSolver) StartSearch(ctx context.Context) (universe.Result, error) {
	group, ctx := errgroup.WithContext(ctx)

	dispatched := 0
	cubesCh := e.Generator.GenerateCubes(ctx)

	group.Go(func() error {
		for c := range cubesCh {
			if len(c) == 0 {
				break
			}
			if e.Result() != universe.Unknown {
				break
			}
			h, err := e.takeWorker(ctx)
			if err != nil {
				return err
			}
			if err := e.sendCube(ctx, h, c); err != nil {
				return err
			}
			dispatched++
			go e.watchWorker(ctx, h)
		}
		return e.waitForAllCubes(ctx, dispatched)
	})

	err := group.Wait()
	e.Shutdown(context.Background())
	if err != nil {
		return e.Result(), err
	}
	return e.Result(), nil
}

// StartSearchWithAssumptions always fails: EPS has no slot for additional
// assumptions layered on top of its own generated cubes.
func (e *EPSSolver) StartSearchWithAssumptions(context.Context, universe.Cube) (universe.Result, error) {
	return universe.Unknown, ErrAssumptionsUnsupportedInEPS
}

// watchWorker waits for h's verdict on the cube it was just given and
// updates shared state accordingly, then signals cubesSem exactly once.
func (e *EPSSolver) watchWorker(ctx context.Context, h *workerHandle) {
	result, err := e.receiveResult(ctx, h.rank)
	if err != nil {
		e.cubesSem.release()
		return
	}
	switch result {
	case universe.Satisfiable, universe.Optimum:
		e.onSatisfiableFound(result)
	default:
		e.onUnsatisfiableFound(h)
	}
	e.cubesSem.release()
}

// onSatisfiableFound records the result, stops dispatching further cubes,
// and interrupts every other running worker. Grounded on
// EPSSolver::onSatisfiableFound.
func (e *EPSSolver) onSatisfiableFound(result universe.Result) {
	if e.setResult(result) {
		e.Interrupt()
		e.markAllDone()
	}
}

// onUnsatisfiableFound returns h to the available pool so it can take the
// next cube. Grounded on EPSSolver::onUnsatisfiableFound.
func (e *EPSSolver) onUnsatisfiableFound(h *workerHandle) {
	if e.Result() == universe.Unknown {
		e.releaseWorker(h)
	}
}

// waitForAllCubes blocks until cubesSem has been released exactly
// nbDispatched times (the fix noted for the original's FIXME: counting by
// an explicit dispatch counter, not by looping nbDispatched times while
// more cubes might still be arriving concurrently), then finalizes the
// result to UNSATISFIABLE if nothing conclusive was found.
func (e *EPSSolver) waitForAllCubes(ctx context.Context, nbDispatched int) error {
	for i := 0; i < nbDispatched; i++ {
		if err := e.cubesSem.acquire(ctx); err != nil {
			return err
		}
		if e.Result() != universe.Unknown {
			return nil
		}
	}
	e.setResult(universe.Unsatisfiable)
	return nil
}
