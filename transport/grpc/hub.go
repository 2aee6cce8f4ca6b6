package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"google.golang.org/grpc"
)

// registerTag marks the single envelope a spoke sends immediately after
// dialing, announcing its rank so the hub can record which stream to
// relay future sends to. It is never handed to a Receive caller.
const registerTag int16 = -100

// peerRegistry tracks the one long-lived Exchange stream per connected
// spoke, and lets startHub block until every expected spoke has announced.
type peerRegistry struct {
	mu       sync.Mutex
	streams  map[int32]grpc.ServerStream
	expected int
	ready    chan struct{}
}

func newPeerRegistry() *peerRegistry {
	return &peerRegistry{streams: make(map[int32]grpc.ServerStream), ready: make(chan struct{})}
}

func (p *peerRegistry) register(rank int32, stream grpc.ServerStream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams[rank] = stream
	if p.expected > 0 && len(p.streams) >= p.expected {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

func (p *peerRegistry) get(rank int32) (grpc.ServerStream, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.streams[rank]
	return s, ok
}

func (p *peerRegistry) awaitExpected(ctx context.Context, expected int) error {
	p.mu.Lock()
	p.expected = expected
	complete := len(p.streams) >= expected
	p.mu.Unlock()
	if complete {
		return nil
	}
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *peerRegistry) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams = make(map[int32]grpc.ServerStream)
}

// startHub listens on t.listenAddr, registers the Exchange service, and
// blocks until all size-1 spokes have connected and announced their rank.
func (t *Transport) startHub(ctx context.Context) error {
	lis, err := net.Listen("tcp", t.listenAddr)
	if err != nil {
		return fmt.Errorf("transport/grpc: listen on %s: %w", t.listenAddr, err)
	}
	t.addr = lis.Addr().String()
	close(t.addrReady)
	t.server = grpc.NewServer()
	t.server.RegisterService(&serviceDesc, hubHandler{t: t})

	go func() {
		if err := t.server.Serve(lis); err != nil {
			t.fatal("transport/grpc: hub server stopped: %v", err)
		}
	}()

	return t.peers.awaitExpected(ctx, t.size-1)
}

// hubHandler adapts Transport to exchangeHandler without exposing
// handleExchange as part of Transport's own (already large) public API.
type hubHandler struct{ t *Transport }

func (h hubHandler) handleExchange(stream grpc.ServerStream) error {
	t := h.t
	first := &envelope{}
	if err := stream.RecvMsg(first); err != nil {
		return fmt.Errorf("transport/grpc: hub registration recv: %w", err)
	}
	if first.frame.Tag != registerTag {
		return fmt.Errorf("transport/grpc: expected registration envelope, got tag %d", first.frame.Tag)
	}
	rank := first.frame.Src
	t.peers.register(rank, stream)

	for {
		e := &envelope{}
		if err := stream.RecvMsg(e); err != nil {
			return nil // spoke disconnected; relayed sends to it will now fail loudly
		}
		f := e.frame
		if e.dest == 0 {
			t.inbox.push(&f)
			continue
		}
		target, ok := t.peers.get(e.dest)
		if !ok {
			t.fatal("transport/grpc: hub cannot relay to unconnected rank %d", e.dest)
			continue
		}
		if err := target.SendMsg(e); err != nil {
			t.fatal("transport/grpc: hub relay to rank %d failed: %v", e.dest, err)
		}
	}
}
