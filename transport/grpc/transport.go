// Package grpc provides the cross-process transport.Transport variant,
// standing in for the original's MPI communicator: rank 0 runs a grpc
// server (the hub), every other rank dials in as a client (a spoke) and
// keeps a single bidirectional Exchange stream open for the whole run. A
// message between two spokes is relayed through the hub, trading one extra
// hop for not needing a full mesh of listeners - acceptable for a
// simplified stand-in where MPI itself is unavailable. See DESIGN.md.
package grpc

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/grpc"

	"github.com/crillab/panoramyx/codec"
	ptransport "github.com/crillab/panoramyx/transport"
)

// FatalFunc is invoked on unrecoverable transport errors (a failed send or
// relay, the hub's server stopping), mirroring the "all network errors are fatal" contract of
// the original MPI communicator. Tests may override it to avoid exiting
// the process.
type FatalFunc func(format string, args ...interface{})

func defaultFatal(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

// Transport is the grpc-backed transport.Transport. Construct it with Hub
// (for rank 0) or Spoke (for every other rank); both satisfy the same
// interface and must have matching size.
type Transport struct {
	id    int
	size  int
	fatal FatalFunc
	inbox *matchQueue

	// hub-only
	listenAddr string
	addrReady  chan struct{}
	addr       string
	server     *grpc.Server
	peers      *peerRegistry

	// spoke-only
	hubAddr string
	conn    *grpc.ClientConn
	stream  grpc.ClientStream
}

var _ ptransport.Transport = (*Transport)(nil)

// Option configures a Transport at construction.
type Option func(*Transport)

// WithFatalFunc overrides the default log.Fatalf error policy.
func WithFatalFunc(f FatalFunc) Option {
	return func(t *Transport) { t.fatal = f }
}

// Hub creates the rank-0 transport, which listens on listenAddr and acts
// as the relay hub for the other size-1 ranks.
func Hub(size int, listenAddr string, opts ...Option) *Transport {
	t := &Transport{
		id:         0,
		size:       size,
		fatal:      defaultFatal,
		inbox:      newMatchQueue(),
		listenAddr: listenAddr,
		addrReady:  make(chan struct{}),
		peers:      newPeerRegistry(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Spoke creates a non-zero rank transport that dials hubAddr.
func Spoke(id, size int, hubAddr string, opts ...Option) *Transport {
	if id == 0 {
		panic("transport/grpc: Spoke requires id != 0, use Hub for rank 0")
	}
	t := &Transport{
		id:      id,
		size:    size,
		fatal:   defaultFatal,
		inbox:   newMatchQueue(),
		hubAddr: hubAddr,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) ID() int   { return t.id }
func (t *Transport) Size() int { return t.size }

// Addr blocks until the hub's listener is bound and returns its address,
// for spokes (or tests) that need to discover an ephemeral port. It is
// only meaningful on the hub (id 0).
func (t *Transport) Addr(ctx context.Context) (string, error) {
	select {
	case <-t.addrReady:
		return t.addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Start brings up the connection (listener or dial, plus the registration
// handshake), then runs entryPoint until it returns or ctx is canceled.
func (t *Transport) Start(ctx context.Context, entryPoint func(ctx context.Context, self ptransport.Transport)) error {
	if t.id == 0 {
		if err := t.startHub(ctx); err != nil {
			return err
		}
	} else {
		if err := t.startSpoke(ctx); err != nil {
			return err
		}
	}
	entryPoint(ctx, t)
	return ctx.Err()
}

// Send routes msg to dest: locally if dest is this rank, directly if this
// rank is the hub, or via the hub relay otherwise.
func (t *Transport) Send(ctx context.Context, msg *codec.Frame, dest int) error {
	if dest < 0 || dest >= t.size {
		return fmt.Errorf("transport/grpc: destination rank %d out of range [0,%d)", dest, t.size)
	}
	if dest == t.id {
		t.inbox.push(msg)
		return nil
	}
	e := &envelope{dest: int32(dest), frame: *msg}
	if t.id == 0 {
		stream, ok := t.peers.get(int32(dest))
		if !ok {
			return fmt.Errorf("transport/grpc: no connected peer for rank %d", dest)
		}
		if err := stream.SendMsg(e); err != nil {
			t.fatal("transport/grpc: send to rank %d failed: %v", dest, err)
			return err
		}
		return nil
	}
	if err := t.stream.SendMsg(e); err != nil {
		t.fatal("transport/grpc: send to hub failed: %v", err)
		return err
	}
	return nil
}

func (t *Transport) Receive(ctx context.Context, tag int16, src int32) (*codec.Frame, error) {
	return t.inbox.pop(ctx, tag, src)
}

// Finalize tears down the listener/server or the client connection.
func (t *Transport) Finalize() error {
	t.inbox.close()
	if t.id == 0 {
		if t.server != nil {
			t.server.GracefulStop()
		}
		t.peers.closeAll()
		return nil
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
