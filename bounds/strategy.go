package bounds

import "math/big"

// Strategy decides, given the bound each worker currently holds and the
// coordinator's latest known [currentMin, currentMax] window, what bound to
// send each worker next.
type Strategy interface {
	SetMinimization(minimization bool)
	IsMinimization() bool
	ComputeBoundAllocation(current []*big.Int, currentMin, currentMax *big.Int) []*big.Int
}

// drainAll collects every value an iterator produces.
func drainAll(it RangeIterator) []*big.Int {
	var out []*big.Int
	for {
		v, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// RangeBasedStrategy reassigns only the bounds that have fallen outside
// [currentMin, currentMax], reusing the bounds still inside that window.
// Grounded on RangeBasedAllocationStrategy.cpp.
type RangeBasedStrategy struct {
	newIterator  RangeIteratorFactory
	minimization bool
}

// NewRangeBasedStrategy builds a RangeBasedStrategy using newIterator to
// generate replacement bounds.
func NewRangeBasedStrategy(newIterator RangeIteratorFactory) *RangeBasedStrategy {
	return &RangeBasedStrategy{newIterator: newIterator, minimization: true}
}

func (s *RangeBasedStrategy) SetMinimization(minimization bool) { s.minimization = minimization }

func (s *RangeBasedStrategy) IsMinimization() bool { return s.minimization }

// ComputeBoundAllocation assumes current is sorted ascending, as the
// coordinator's worker bounds always are.
func (s *RangeBasedStrategy) ComputeBoundAllocation(current []*big.Int, currentMin, currentMax *big.Int) []*big.Int {
	n := len(current)
	if n == 0 {
		return nil
	}

	indexLower := -1
	indexUpper := 0
	for i := 0; i < n-1; i++ {
		if current[i+1].Cmp(currentMax) >= 0 {
			indexUpper = i
			break
		}
		if current[i].Cmp(currentMin) > 0 && indexLower < 0 {
			indexLower = i
		}
	}
	if indexLower < 0 {
		indexLower = 0
	}

	notEnoughRoomBelow := new(big.Int).Sub(current[indexLower], currentMin).Cmp(big.NewInt(int64(indexLower))) < 0
	notEnoughRoomAbove := new(big.Int).Sub(currentMax, current[indexUpper]).Cmp(big.NewInt(int64(n-indexUpper-1))) < 0
	if notEnoughRoomBelow || notEnoughRoomAbove {
		return fillTo(drainAll(s.newIterator(currentMin, currentMax, n-1)), n)
	}

	var newBounds []*big.Int
	newBounds = append(newBounds, drainAll(s.newIterator(currentMin, current[indexLower], indexLower))...)
	for i := indexLower + 1; i < indexUpper; i++ {
		newBounds = append(newBounds, current[i])
	}
	newBounds = append(newBounds, drainAll(s.newIterator(current[indexUpper], currentMax, n-indexUpper-1))...)

	return fillTo(newBounds, n)
}

// fillTo pads out with its own last element until it has n entries,
// mirroring the original's "fill the remaining bounds with the last
// computed one; they will be ignored" behavior.
func fillTo(bounds []*big.Int, n int) []*big.Int {
	if len(bounds) == 0 {
		return bounds
	}
	for len(bounds) < n {
		bounds = append(bounds, bounds[len(bounds)-1])
	}
	return bounds
}

// AggressiveRangeBasedStrategy always recomputes every bound from scratch,
// never reusing a worker's current bound. Grounded on
// AggressiveRangeBasedAllocationStrategy.cpp.
type AggressiveRangeBasedStrategy struct {
	newIterator  RangeIteratorFactory
	minimization bool
}

// NewAggressiveRangeBasedStrategy builds an AggressiveRangeBasedStrategy
// using newIterator to generate every bound on each call.
func NewAggressiveRangeBasedStrategy(newIterator RangeIteratorFactory) *AggressiveRangeBasedStrategy {
	return &AggressiveRangeBasedStrategy{newIterator: newIterator, minimization: true}
}

func (s *AggressiveRangeBasedStrategy) SetMinimization(minimization bool) { s.minimization = minimization }

func (s *AggressiveRangeBasedStrategy) IsMinimization() bool { return s.minimization }

func (s *AggressiveRangeBasedStrategy) ComputeBoundAllocation(current []*big.Int, currentMin, currentMax *big.Int) []*big.Int {
	n := len(current)
	if n == 0 {
		return nil
	}
	return fillTo(drainAll(s.newIterator(currentMin, currentMax, n-1)), n)
}
