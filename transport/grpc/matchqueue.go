package grpc

import (
	"context"
	"sync"

	"github.com/crillab/panoramyx/codec"
	"github.com/crillab/panoramyx/transport"
)

// matchQueue is a blocking multi-consumer queue that supports wildcard
// lookups: Receive(AnyTag, AnySource) style matching the thread transport
// cannot provide. It trades the thread variant's O(1) per-(tag,src) queue
// for an O(n) scan over pending frames, acceptable since this is a
// simplified stand-in for MPI rather than a throughput-tuned transport.
type matchQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*codec.Frame
	closed bool
}

func newMatchQueue() *matchQueue {
	q := &matchQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *matchQueue) push(f *codec.Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, f)
	q.cond.Broadcast()
}

func matches(f *codec.Frame, tag int16, src int32) bool {
	return (tag == transport.AnyTag || f.Tag == tag) && (src == transport.AnySource || f.Src == src)
}

func (q *matchQueue) pop(ctx context.Context, tag int16, src int32) (*codec.Frame, error) {
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
	for {
		for i, f := range q.items {
			if matches(f, tag, src) {
				q.items = append(q.items[:i], q.items[i+1:]...)
				return f, nil
			}
		}
		if q.closed {
			return nil, ctx.Err()
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		q.cond.Wait()
	}
}

func (q *matchQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
}
