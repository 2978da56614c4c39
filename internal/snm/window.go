package snm

import "fmt"

// direction selects which extremum a sliding window keeps.
type direction int

const (
	minimum direction = iota
	maximum
)

// dominates reports whether an incoming value makes the queued value
// useless: a later index with a value at least as good always outlives it.
func (d direction) dominates(incoming, queued float64) bool {
	if d == minimum {
		return queued >= incoming
	}
	return queued <= incoming
}

// WindowMin returns the minimum of every length-k window of values.
// result[i] = min(values[i : i+k]).
func WindowMin(values []float64, k int) ([]float64, error) {
	return slidingExtrema(values, k, minimum)
}

// WindowMax returns the maximum of every length-k window of values.
// result[i] = max(values[i : i+k]).
func WindowMax(values []float64, k int) ([]float64, error) {
	return slidingExtrema(values, k, maximum)
}

// slidingExtrema runs the monotonic deque scan in O(len(values)).
//
// The deque holds indices whose values are monotonic in the chosen
// direction, so the front is always the extremum of the current window.
// Each index is pushed and popped at most once.
func slidingExtrema(values []float64, k int, dir direction) ([]float64, error) {
	n := len(values)
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k=%d for %d values", ErrInvalidWindow, k, n)
	}

	out := make([]float64, n-k+1)
	dq := make([]int, 0, n)
	head := 0

	for i, v := range values {
		if head < len(dq) && dq[head] <= i-k {
			head++
		}
		for len(dq) > head && dir.dominates(v, values[dq[len(dq)-1]]) {
			dq = dq[:len(dq)-1]
		}
		dq = append(dq, i)
		if i >= k-1 {
			out[i-k+1] = values[dq[head]]
		}
	}
	return out, nil
}
