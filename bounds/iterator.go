// Package bounds implements the optimization worker coordinator's
// bound-reallocation strategies: given the bounds each worker is currently
// searching within, and a newly tightened [currentMin, currentMax] window,
// decide what bound to hand each worker next.
package bounds

import (
	"math"
	"math/big"
)

// RangeIterator produces a fixed number of values spanning [min, max],
// mirroring the original's Stream<BigInteger> range generators. Next
// returns false once exhausted.
type RangeIterator interface {
	Next() (*big.Int, bool)
}

// RangeIteratorFactory builds a RangeIterator producing steps+1 values
// spanning [min, max]. Strategy implementations are parameterized by one of
// these, exactly as the original strategies took a
// function<Stream<BigInteger>*(BigInteger,BigInteger,int)>.
type RangeIteratorFactory func(min, max *big.Int, steps int) RangeIterator

// LinearRangeIterator produces steps+1 evenly spaced values between min and
// max inclusive.
type LinearRangeIterator struct {
	min, max      *big.Int
	numberOfSteps int
	currentStep   int
}

// NewLinearRangeIterator returns a LinearRangeIterator yielding steps+1
// values from min to max.
func NewLinearRangeIterator(min, max *big.Int, steps int) *LinearRangeIterator {
	n := steps + 1
	if n < 1 {
		n = 1
	}
	return &LinearRangeIterator{min: min, max: max, numberOfSteps: n}
}

func (it *LinearRangeIterator) HasNext() bool { return it.currentStep < it.numberOfSteps }

// Next returns the next evenly spaced value, or false once exhausted.
func (it *LinearRangeIterator) Next() (*big.Int, bool) {
	if !it.HasNext() {
		return nil, false
	}
	if it.currentStep == it.numberOfSteps-1 {
		it.currentStep++
		return new(big.Int).Set(it.max), true
	}
	span := new(big.Int).Sub(it.max, it.min)
	span.Mul(span, big.NewInt(int64(it.currentStep)))
	span.Div(span, big.NewInt(int64(it.numberOfSteps-1)))
	v := new(big.Int).Add(it.min, span)
	it.currentStep++
	return v, true
}

// LogarithmicRangeIterator produces values spaced by a logarithmic curve
// rather than evenly, so workers nearer the known-better end of the range
// get more closely packed bounds. Grounded directly on
// LogarithmicRangeIterator.cpp; arithmetic is carried out in float64 (as
// the original casts to long double) and rounded back to *big.Int, an
// approximation acceptable for a heuristic bound allocation rather than an
// exact value.
type LogarithmicRangeIterator struct {
	min, max      *big.Int
	minF, maxF    float64
	numberOfSteps int
	currentStep   int
	currentValue  *big.Int
	scale         float64
	increasing    bool
}

// NewLogarithmicRangeIterator returns a LogarithmicRangeIterator yielding
// steps+1 values from min to max, packed toward the max end if increasing
// is true and toward the min end otherwise.
func NewLogarithmicRangeIterator(min, max *big.Int, steps int, increasing bool) *LogarithmicRangeIterator {
	minF, _ := new(big.Float).SetInt(min).Float64()
	maxF, _ := new(big.Float).SetInt(max).Float64()
	scale := (maxF - minF) / math.Log(float64(2+steps))
	return &LogarithmicRangeIterator{
		min: min, max: max, minF: minF, maxF: maxF,
		numberOfSteps: steps + 1,
		currentValue:  new(big.Int).Set(min),
		scale:         scale,
		increasing:    increasing,
	}
}

func (it *LogarithmicRangeIterator) HasNext() bool { return it.currentStep < it.numberOfSteps }

func (it *LogarithmicRangeIterator) computeNextValue(step int) *big.Int {
	var v float64
	if it.increasing {
		v = it.maxF - math.Log(float64(it.numberOfSteps-step))*it.scale
	} else {
		v = it.minF + math.Log(float64(2+step))*it.scale
	}
	bi, _ := big.NewFloat(v).Int(nil)
	return bi
}

// Next returns the current value and advances, forcing the final value to
// be exactly max (matching the original's explicit "last step" override).
func (it *LogarithmicRangeIterator) Next() (*big.Int, bool) {
	if !it.HasNext() {
		return nil, false
	}
	next := new(big.Int).Set(it.currentValue)
	nextValue := it.computeNextValue(it.currentStep)
	it.currentStep++
	if it.currentStep == it.numberOfSteps {
		return new(big.Int).Set(it.max), true
	}
	if nextValue.Cmp(it.currentValue) == 0 {
		it.currentValue = new(big.Int).Add(it.currentValue, big.NewInt(1))
	} else {
		it.currentValue = nextValue
	}
	return next, true
}
