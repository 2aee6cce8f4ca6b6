// Package thread provides an in-process transport.Transport: every rank is
// a goroutine in the same address space, and messages are handed off
// through per-(tag,src) blocking queues rather than any real network stack.
// It is the variant used by tests and by single-process deployments.
package thread

import (
	"context"
	"fmt"
	"sync"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
)

// key identifies one blocking queue: the (tag, src) pair a Receive call on
// some destination rank is waiting on.
type key struct {
	tag int16
	src int32
}

// blockingQueue is a FIFO of frames guarded by a condition variable, the
// same blocking-queue-over-a-slice shape as CptPie's WorkQueue, specialized
// to carry codec.Frame values and to support closing only on Finalize.
type blockingQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*codec.Frame
	closed bool
}

func newBlockingQueue() *blockingQueue {
	q := &blockingQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *blockingQueue) push(f *codec.Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, f)
	q.cond.Signal()
}

func (q *blockingQueue) pop(ctx context.Context) (*codec.Frame, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.cond.Broadcast()
			q.mu.Unlock()
		case <-done:
		}
	}()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, ctx.Err()
	}
	f := q.items[0]
	q.items = q.items[1:]
	return f, nil
}

func (q *blockingQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
}

// router owns every rank's inbox: a map from destination rank to its set of
// (tag,src) queues, created lazily. The single mutex guards only queue
// creation/lookup (mirrors the original's newqmutex); once a queue exists,
// pushes and pops synchronize on its own condition variable.
type router struct {
	mu     sync.Mutex
	inbox  []map[key]*blockingQueue
	closed bool
}

func newRouter(size int) *router {
	r := &router{inbox: make([]map[key]*blockingQueue, size)}
	for i := range r.inbox {
		r.inbox[i] = make(map[key]*blockingQueue)
	}
	return r
}

func (r *router) queueFor(dest int, k key) *blockingQueue {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.inbox[dest][k]
	if !ok {
		q = newBlockingQueue()
		r.inbox[dest][k] = q
	}
	return q
}

func (r *router) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, perDest := range r.inbox {
		for _, q := range perDest {
			q.close()
		}
	}
}

// Group creates size linked thread transports sharing one router, ready to
// be started concurrently (one Start call per rank).
func Group(size int) []*Transport {
	r := newRouter(size)
	transports := make([]*Transport, size)
	for i := range transports {
		transports[i] = &Transport{id: i, size: size, router: r}
	}
	return transports
}

// Transport is the in-process transport.Transport implementation. It must
// be created via Group, since every rank needs to share the same router.
type Transport struct {
	id     int
	size   int
	router *router
}

var _ transport.Transport = (*Transport)(nil)

func (t *Transport) ID() int   { return t.id }
func (t *Transport) Size() int { return t.size }

// Start simply invokes entryPoint: no connection handshake is needed, the
// router already exists and is shared by every rank in the group.
func (t *Transport) Start(ctx context.Context, entryPoint func(ctx context.Context, self transport.Transport)) error {
	entryPoint(ctx, t)
	return ctx.Err()
}

func (t *Transport) Send(ctx context.Context, msg *codec.Frame, dest int) error {
	if dest < 0 || dest >= t.size {
		return fmt.Errorf("transport/thread: destination rank %d out of range [0,%d)", dest, t.size)
	}
	q := t.router.queueFor(dest, key{tag: msg.Tag, src: msg.Src})
	q.push(msg)
	return ctx.Err()
}

func (t *Transport) Receive(ctx context.Context, tag int16, src int32) (*codec.Frame, error) {
	if tag == transport.AnyTag || src == transport.AnySource {
		return nil, transport.ErrWildcardUnsupported
	}
	q := t.router.queueFor(t.id, key{tag: tag, src: src})
	return q.pop(ctx)
}

// Finalize closes every queue in the shared router, waking any rank still
// blocked in Receive. It is safe to call from any one rank; subsequent
// calls (from other ranks tearing down) are no-ops.
func (t *Transport) Finalize() error {
	t.router.closeAll()
	return nil
}
