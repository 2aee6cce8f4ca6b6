// Package worker implements the per-rank request-dispatch loop that answers
// a coordinator's EPSSolver/PortfolioSolver: it receives commands over a
// transport.Transport and drives a local universe.Solver in response.
// Grounded on spec.md §4.10 and, for the fan-in shape, on the teacher's
// reinforcement.alphaMonteCarloVanillaTrain worker/estimator split.
package worker

import (
	"context"
	"fmt"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/transport/thread"
	"github.com/crillab/panoramyx/universe"
)

// Loop drives Solver in response to commands received over Transport from
// CoordinatorRank, and sends every reply to CoordinatorRank. The
// thread-transport variant (see loop_thread.go) also receives only from
// CoordinatorRank, since the thread transport cannot honor
// transport.AnySource; the grpc variant (loop_grpc.go) receives on
// transport.AnySource/transport.AnyTag directly.
type Loop struct {
	Solver          universe.Solver
	Transport       transport.Transport
	CoordinatorRank int
}

// Run blocks, dispatching commands until the transport reports TagEnd, ctx
// is canceled, or a receive fails.
func (l *Loop) Run(ctx context.Context) error {
	switch l.Transport.(type) {
	case *thread.Transport:
		return l.runThread(ctx)
	default:
		return l.runWildcard(ctx)
	}
}

// dispatch handles a single received frame, returning done=true once the
// loop should stop (on TagEnd).
func (l *Loop) dispatch(ctx context.Context, frame *codec.Frame) (done bool) {
	switch frame.Tag {
	case codec.TagSolve:
		l.handleSolve(ctx, frame)
	case codec.TagInterrupt:
		l.Solver.Interrupt()
	case codec.TagBoundUpdate:
		l.handleBoundUpdate(frame)
	case codec.TagConstraintScore:
		l.handleConstraintScore(ctx, frame)
	case codec.TagEnd:
		return true
	}
	return false
}

func (l *Loop) handleSolve(ctx context.Context, frame *codec.Frame) {
	r := codec.NewReader(frame.Payload)
	op := r.Int()
	switch op {
	case codec.OpLoadInstance:
		filename := r.String()
		_ = l.Solver.LoadInstance(filename)
	case codec.OpSolveCube:
		cube := r.Cube()
		l.Solver.Reset()
		result := l.Solver.Solve(cube)
		b := codec.NewBuilder(codec.TagResult).AppendInt(int32(result))
		f := b.Build(int32(l.Transport.ID()))
		_ = l.Transport.Send(ctx, &f, l.CoordinatorRank)
	}
}

func (l *Loop) handleBoundUpdate(frame *codec.Frame) {
	opt, ok := l.Solver.(universe.OptimizationSolver)
	if !ok {
		return
	}
	bound := codec.NewReader(frame.Payload).BigInt()
	if opt.IsMinimization() {
		opt.SetBounds(nil, bound)
	} else {
		opt.SetBounds(bound, nil)
	}
}

func (l *Loop) handleConstraintScore(ctx context.Context, frame *codec.Frame) {
	scorer, ok := l.Solver.(universe.ConstraintScorer)
	if !ok {
		return
	}
	constraintID := codec.NewReader(frame.Payload).Int()
	score := scorer.ConstraintScore(constraintID)
	b := codec.NewBuilder(codec.TagResponse).AppendLong(score)
	f := b.Build(int32(l.Transport.ID()))
	_ = l.Transport.Send(ctx, &f, l.CoordinatorRank)
}

// ErrUnexpectedTransport describes a transport that supports neither known
// receive mode. Run does not return it: every transport other than
// *thread.Transport is driven in wildcard mode.
var ErrUnexpectedTransport = fmt.Errorf("worker: transport does not support either known receive mode")
