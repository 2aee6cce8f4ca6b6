package coordinator

import "context"

// semaphore is a counting semaphore built over a buffered channel, used in
// place of the original's std::counting_semaphore for "cubes dispatched"
// and "search concluded" signaling.
type semaphore struct {
	tokens chan struct{}
}

func newSemaphore() *semaphore {
	return &semaphore{tokens: make(chan struct{}, 1<<20)}
}

func (s *semaphore) release() {
	s.tokens <- struct{}{}
}

func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case <-s.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
