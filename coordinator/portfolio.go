package coordinator

import (
	"context"
	"math/big"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/crillab/panoramyx/bounds"
	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe"
)

// PortfolioSolver runs the same instance on every worker simultaneously,
// each typically configured differently, and narrows the optimization bound every worker searches
// within as better solutions are found, via BoundStrategy. Grounded on
// PortfolioSolverBuilder.cpp / PortfolioSolver's bound-sharing role as
// described in spec.md.
type PortfolioSolver struct {
	*AbstractParallelSolver
	BoundStrategy bounds.Strategy

	boundBox *bounds.BoundBox
	current  []*big.Int
}

// NewPortfolioSolver creates a portfolio coordinator running over
// workerRanks, sharing bounds via strategy within [min, max].
func NewPortfolioSolver(t transport.Transport, workerRanks []int, strategy bounds.Strategy, min, max *big.Int) *PortfolioSolver {
	start := max
	if !strategy.IsMinimization() {
		start = min
	}
	current := make([]*big.Int, len(workerRanks))
	for i := range current {
		current[i] = new(big.Int).Set(start)
	}
	return &PortfolioSolver{
		AbstractParallelSolver: NewAbstractParallelSolver(t, workerRanks),
		BoundStrategy:          strategy,
		boundBox:               bounds.NewBoundBox(min, max),
		current:                current,
	}
}

// workerEvent is what each worker's watcher goroutine reports: either a
// conclusive result or a new bound the worker found.
type workerEvent struct {
	rank   int
	result universe.Result
	bound  *big.Int
	err    error
}

// StartSearch dispatches the (already loaded) instance to every worker and
// blocks until one reports a conclusive result, ctx is canceled, or every
// worker finishes inconclusively.
func (p *PortfolioSolver) StartSearch(ctx context.Context) (universe.Result, error) {
	group, ctx := errgroup.WithContext(ctx)

	for _, h := range p.workers {
		h.setState(workerRunning)
		if err := p.sendCube(ctx, h, nil); err != nil {
			return universe.Unknown, err
		}
	}

	done := make(chan struct{})
	defer close(done)

	eventChans := make([]<-chan *workerEvent, 0, len(p.workers))
	for _, h := range p.workers {
		eventChans = append(eventChans, p.watchWorker(ctx, h))
	}
	events := channerics.Merge(done, eventChans...)

	group.Go(func() error {
		remaining := len(p.workers)
		for remaining > 0 {
			select {
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if ev.err != nil {
					remaining--
					continue
				}
				if ev.bound != nil {
					p.onNewBound(ctx, ev.rank, ev.bound)
					continue
				}
				remaining--
				if ev.result == universe.Satisfiable || ev.result == universe.Optimum {
					if p.setResult(ev.result) {
						p.Interrupt()
						p.markAllDone()
					}
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		p.setResult(universe.Unsatisfiable)
		return nil
	})

	err := group.Wait()
	p.Shutdown(context.Background())
	if err != nil {
		return p.Result(), err
	}
	return p.Result(), nil
}

// watchWorker receives h's result (and, interleaved, any bound updates it
// reports on TagBoundUpdate before its final TagResult) and reports them on
// the returned channel. The thread transport cannot honor transport.AnyTag
// (same constraint as package worker's thread-mode loop), so against it this
// polls TagBoundUpdate and TagResult on separate goroutines and fans them in
// with channerics.Merge; any other transport gets a single wildcard receive.
func (p *PortfolioSolver) watchWorker(ctx context.Context, h *workerHandle) <-chan *workerEvent {
	if _, ok := p.Transport.(*thread.Transport); ok {
		return p.watchWorkerThread(ctx, h)
	}
	return p.watchWorkerWildcard(ctx, h)
}

func (p *PortfolioSolver) watchWorkerWildcard(ctx context.Context, h *workerHandle) <-chan *workerEvent {
	out := make(chan *workerEvent, 4)
	go func() {
		defer close(out)
		for {
			frame, err := p.Transport.Receive(ctx, transport.AnyTag, int32(h.rank))
			if err != nil {
				out <- &workerEvent{rank: h.rank, err: err}
				return
			}
			if p.routeFrame(out, h.rank, frame) {
				return
			}
		}
	}()
	return out
}

func (p *PortfolioSolver) watchWorkerThread(ctx context.Context, h *workerHandle) <-chan *workerEvent {
	out := make(chan *workerEvent, 4)
	done := make(chan struct{})

	poll := func(tag int16) <-chan *codec.Frame {
		frames := make(chan *codec.Frame)
		go func() {
			defer close(frames)
			for {
				frame, err := p.Transport.Receive(ctx, tag, int32(h.rank))
				if err != nil {
					return
				}
				select {
				case frames <- frame:
				case <-done:
					return
				}
			}
		}()
		return frames
	}

	merged := channerics.Merge(done, poll(codec.TagBoundUpdate), poll(codec.TagResult))

	go func() {
		defer close(out)
		defer close(done)
		for frame := range merged {
			if p.routeFrame(out, h.rank, frame) {
				return
			}
		}
	}()
	return out
}

// routeFrame decodes frame and reports it on out, returning true once the
// worker's final TagResult has been reported (no more events are expected
// after that).
func (p *PortfolioSolver) routeFrame(out chan<- *workerEvent, rank int, frame *codec.Frame) bool {
	switch frame.Tag {
	case codec.TagBoundUpdate:
		bound := codec.NewReader(frame.Payload).BigInt()
		out <- &workerEvent{rank: rank, bound: bound}
		return false
	case codec.TagResult:
		result := universe.Result(codec.NewReader(frame.Payload).Int())
		out <- &workerEvent{rank: rank, result: result}
		return true
	}
	return false
}

// onNewBound narrows the shared bound window with bound - the max side for
// a minimization run, the min side for a maximization run, exactly as
// worker.Loop.handleBoundUpdate decides which side of its own solver to set
// - and, if that actually tightened the window, recomputes every worker's
// bound allocation and sends TagBoundUpdate only to the ones that changed.
func (p *PortfolioSolver) onNewBound(ctx context.Context, fromRank int, bound *big.Int) {
	var tightened bool
	if p.BoundStrategy.IsMinimization() {
		tightened = p.boundBox.Tighten(nil, bound)
	} else {
		tightened = p.boundBox.Tighten(bound, nil)
	}
	if !tightened {
		return
	}
	newMin, newMax := p.boundBox.Get()

	allocation := p.BoundStrategy.ComputeBoundAllocation(p.current, newMin, newMax)
	for i, h := range p.workers {
		if i >= len(allocation) {
			break
		}
		if allocation[i].Cmp(p.current[i]) == 0 {
			continue
		}
		p.current[i] = allocation[i]
		b := codec.NewBuilder(codec.TagBoundUpdate).AppendBigInt(allocation[i])
		f := b.Build(int32(p.Transport.ID()))
		_ = p.Transport.Send(ctx, &f, h.rank)
	}
}
