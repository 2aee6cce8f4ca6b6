// Package transport abstracts the point-to-point, tagged message passing
// that the coordinator and worker layers run on, so the same orchestration
// code runs unmodified over an in-process thread pool (transport/thread) or
// over a cluster of separate processes (transport/grpc).
package transport

import (
	"context"
	"errors"

	"github.com/crillab/panoramyx/codec"
)

// AnyTag and AnySource are wildcards accepted by Receive on transports that
// support them. The thread transport does not: see ErrWildcardUnsupported.
const (
	AnyTag    int16 = -1
	AnySource int32 = -1
)

// ErrWildcardUnsupported is returned by Receive when a transport variant
// cannot honor AnyTag or AnySource.
var ErrWildcardUnsupported = errors.New("transport: wildcard receive unsupported by this variant")

// Transport is the capability every coordinator/worker rank is built on: a
// fixed-size group of ranks exchanging tagged frames. Implementations must
// be safe for concurrent use by multiple goroutines on the same rank.
type Transport interface {
	// ID returns this transport's rank within the group, in [0, Size()).
	ID() int
	// Size returns the number of ranks in the group.
	Size() int
	// Start runs entryPoint for this rank, blocking until it returns or ctx
	// is canceled. It is responsible for any connection setup the variant
	// needs before entryPoint is allowed to Send/Receive.
	Start(ctx context.Context, entryPoint func(ctx context.Context, self Transport)) error
	// Send delivers msg to dest, blocking until accepted by the transport.
	Send(ctx context.Context, msg *codec.Frame, dest int) error
	// Receive blocks until a frame matching tag and src has arrived, or ctx
	// is canceled. tag may be AnyTag and src may be AnySource on transports
	// that support wildcards.
	Receive(ctx context.Context, tag int16, src int32) (*codec.Frame, error)
	// Finalize releases any resources held by this rank's transport. It is
	// safe to call more than once.
	Finalize() error
}
