package bounds

import (
	"math/big"
	"sync"
)

// BoundBox holds the coordinator's current [min, max] optimization window
// behind a mutex: the same "encapsulate, never leak the pointer" discipline
// as the teacher's AtomicFloat64, generalized from a lock-free
// compare-and-swap on a float64 to a mutex-guarded pair of *big.Int, since
// there is no hardware CAS for arbitrary-precision values.
type BoundBox struct {
	mu  sync.Mutex
	min *big.Int
	max *big.Int
}

// NewBoundBox creates a BoundBox initialized to [min, max].
func NewBoundBox(min, max *big.Int) *BoundBox {
	return &BoundBox{min: min, max: max}
}

// Get returns copies of the current min and max.
func (b *BoundBox) Get() (min, max *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.min), new(big.Int).Set(b.max)
}

// Tighten narrows the window: newMin replaces min if it is greater, newMax
// replaces max if it is lesser. It reports whether either bound actually
// moved, so a caller only reallocates worker bounds when the window shrank.
func (b *BoundBox) Tighten(newMin, newMax *big.Int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	moved := false
	if newMin != nil && newMin.Cmp(b.min) > 0 {
		b.min = new(big.Int).Set(newMin)
		moved = true
	}
	if newMax != nil && newMax.Cmp(b.max) < 0 {
		b.max = new(big.Int).Set(newMax)
		moved = true
	}
	return moved
}
