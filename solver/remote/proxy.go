// Package remote provides a universe.Solver stub that represents a solver
// living on another rank: every call is turned into a message sent over a
// transport.Transport, so the coordinator can drive remote workers through
// the exact same interface it uses for an in-process solver.
package remote

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
	"github.com/crillab/panoramyx/universe"
)

// Request opcodes, carried as the first int of every request payload so the
// process answering on the remote rank knows which universe.Solver method
// to invoke. Package worker does not decode them: its Loop speaks the
// codec.Op* protocol instead.
const (
	OpReset int32 = iota
	OpNVariables
	OpNConstraints
	OpSolve
	OpSolveFile
	OpLoadInstance
	OpInterrupt
	OpSolution
	OpCheckSolution
	OpIsMinimization
	OpCurrentBound
	OpSetBounds
	OpConstraintSetIgnored
	OpConstraintIsIgnored
	OpConstraintScore
)

// ErrUnsupported is returned by operations a remote stub cannot perform
// locally, such as asking a RemoteConstraint for its scope.
var ErrUnsupported = errors.New("solver/remote: operation requires data that never leaves the remote rank")

// Proxy implements universe.Solver by forwarding every call to the solver
// running on Rank, over Transport. Fire-and-forget calls (Reset, Interrupt,
// SetBounds) send and return immediately; value-returning calls take respMu
// so the request they send and the TagResponse frame they block on are
// never interleaved with another goroutine's RPC on the same rank.
type Proxy struct {
	Transport transport.Transport
	Rank      int

	respMu sync.Mutex
}

var _ universe.Solver = (*Proxy)(nil)

func (p *Proxy) send(ctx context.Context, b *codec.Builder) error {
	f := b.Build(int32(p.Transport.ID()))
	return p.Transport.Send(ctx, &f, p.Rank)
}

// call sends a request (conventionally tagged TagResponse by the caller)
// and blocks for the matching TagResponse reply from Rank, holding respMu
// for the whole round trip so no other goroutine's RPC can steal it.
func (p *Proxy) call(ctx context.Context, b *codec.Builder) (*codec.Reader, error) {
	p.respMu.Lock()
	defer p.respMu.Unlock()

	if err := p.send(ctx, b); err != nil {
		return nil, err
	}
	frame, err := p.Transport.Receive(ctx, codec.TagResponse, int32(p.Rank))
	if err != nil {
		return nil, err
	}
	return codec.NewReader(frame.Payload), nil
}

func (p *Proxy) Reset() {
	ctx := context.Background()
	b := codec.NewBuilder(codec.TagSolve).AppendInt(OpReset)
	_ = p.send(ctx, b)
}

func (p *Proxy) NVariables() int {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpNVariables))
	if err != nil {
		return 0
	}
	return int(r.Int())
}

func (p *Proxy) NConstraints() int {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpNConstraints))
	if err != nil {
		return 0
	}
	return int(r.Int())
}

// VariablesMapping is not meaningful across a transport boundary: a remote
// variable's identity is just its name, never a live handle a caller could
// mutate through. Callers needing variable metadata should use the names
// already carried by the Assumption/Cube they dispatched.
func (p *Proxy) VariablesMapping() map[string]universe.Variable {
	return nil
}

func (p *Proxy) Solve(assumptions []universe.Assumption) universe.Result {
	ctx := context.Background()
	b := codec.NewBuilder(codec.TagResponse).AppendInt(OpSolve)
	b = codec.AppendSlice(b, assumptions, func(bb *codec.Builder, a universe.Assumption) { bb.AppendAssumption(a) })
	r, err := p.call(ctx, b)
	if err != nil {
		return universe.Unknown
	}
	return universe.Result(r.Int())
}

func (p *Proxy) SolveFile(filename string) universe.Result {
	b := codec.NewBuilder(codec.TagResponse).AppendInt(OpSolveFile).AppendString(filename)
	r, err := p.call(context.Background(), b)
	if err != nil {
		return universe.Unknown
	}
	return universe.Result(r.Int())
}

func (p *Proxy) LoadInstance(filename string) error {
	b := codec.NewBuilder(codec.TagResponse).AppendInt(OpLoadInstance).AppendString(filename)
	r, err := p.call(context.Background(), b)
	if err != nil {
		return err
	}
	if !r.Bool() {
		return r2err(r)
	}
	return nil
}

func r2err(r *codec.Reader) error {
	if msg := r.String(); msg != "" {
		return errors.New(msg)
	}
	return errors.New("solver/remote: remote LoadInstance failed")
}

func (p *Proxy) Interrupt() {
	b := codec.NewBuilder(codec.TagInterrupt).AppendInt(OpInterrupt)
	_ = p.send(context.Background(), b)
}

func (p *Proxy) Solution() map[string]*big.Int {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpSolution))
	if err != nil {
		return nil
	}
	n := int(r.Int())
	out := make(map[string]*big.Int, n)
	for i := 0; i < n; i++ {
		name := r.String()
		out[name] = r.BigInt()
	}
	return out
}

func (p *Proxy) CheckSolution() bool {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpCheckSolution))
	if err != nil {
		return false
	}
	return r.Bool()
}

func (p *Proxy) IsMinimization() bool {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpIsMinimization))
	if err != nil {
		return false
	}
	return r.Bool()
}

func (p *Proxy) CurrentBound() (*big.Int, bool) {
	r, err := p.call(context.Background(), codec.NewBuilder(codec.TagResponse).AppendInt(OpCurrentBound))
	if err != nil {
		return nil, false
	}
	ok := r.Bool()
	if !ok {
		return nil, false
	}
	return r.BigInt(), true
}

func (p *Proxy) SetBounds(lower, upper *big.Int) {
	b := codec.NewBuilder(codec.TagBoundUpdate).AppendInt(OpSetBounds).AppendBigInt(lower).AppendBigInt(upper)
	_ = p.send(context.Background(), b)
}

// RemoteConstraint represents, on the coordinator side, a single constraint
// living in the remote solver at Proxy.Rank. Its scope never leaves the
// remote rank: Scope returns ErrUnsupported, mirroring the original's
// "variables are too far away" stance.
type RemoteConstraint struct {
	Proxy *Proxy
	Index int32
}

// Scope is unsupported: a RemoteConstraint never learns its own variables.
func (c *RemoteConstraint) Scope() ([]string, error) {
	return nil, ErrUnsupported
}

// SetIgnored tells the remote rank whether to skip this constraint. It is
// fire-and-forget: the coordinator does not wait to see the update applied.
func (c *RemoteConstraint) SetIgnored(ignored bool) {
	b := codec.NewBuilder(codec.TagSolve).AppendInt(OpConstraintSetIgnored).AppendInt(c.Index).AppendBool(ignored)
	_ = c.Proxy.send(context.Background(), b)
}

// IsIgnored asks the remote rank whether this constraint is ignored.
func (c *RemoteConstraint) IsIgnored() bool {
	b := codec.NewBuilder(codec.TagResponse).AppendInt(OpConstraintIsIgnored).AppendInt(c.Index)
	r, err := c.Proxy.call(context.Background(), b)
	if err != nil {
		return false
	}
	return r.Bool()
}

// Score asks the remote rank for this constraint's current score, as
// reported by a universe.ConstraintScorer.
func (c *RemoteConstraint) Score() int64 {
	b := codec.NewBuilder(codec.TagResponse).AppendInt(OpConstraintScore).AppendInt(c.Index)
	r, err := c.Proxy.call(context.Background(), b)
	if err != nil {
		return 0
	}
	return r.Long()
}
