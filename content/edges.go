package content

import "sort"

// Edges describes one axis of a Binning or MultiBinning node: either a
// uniform partition (n equal-width bins between low and high) or an
// explicit monotonically increasing list of n+1 edge values, per
// spec.md §3/§4.5. The schema loader is responsible for validating
// monotonicity before constructing an Edges value; Edges itself assumes
// it holds a valid partition.
type Edges struct {
	Uniform   bool
	N         int // number of bins
	Low, High float64
	Values    []float64 // length N+1, only set when !Uniform
}

// NBins returns the number of bins this axis partitions into.
func (e *Edges) NBins() int { return e.N }

// Bounds returns the low (inclusive) and high (exclusive) range of the
// whole axis.
func (e *Edges) Bounds() (float64, float64) {
	if e.Uniform {
		return e.Low, e.High
	}
	return e.Values[0], e.Values[len(e.Values)-1]
}

// RawIndex computes the bin index for x without clamping it to a valid
// range: the result may be negative (x below the axis) or >= NBins() (x
// at or above the axis high edge). Lookup is low-inclusive,
// high-exclusive: edges[i] <= x < edges[i+1] selects bin i, per
// spec.md §4.4.
func (e *Edges) RawIndex(x float64) int {
	low, high := e.Bounds()
	if e.Uniform {
		if x < low {
			return -1
		}
		if x >= high {
			return e.N
		}
		idx := int((x - low) * float64(e.N) / (high - low))
		if idx >= e.N {
			idx = e.N - 1
		}
		if idx < 0 {
			idx = 0
		}
		return idx
	}
	vals := e.Values
	n := len(vals) - 1
	if x < vals[0] {
		return -1
	}
	if x >= vals[n] {
		return n
	}
	// sort.Search finds the smallest i such that vals[i+1] > x, i.e. the
	// bin i with vals[i] <= x < vals[i+1].
	return sort.Search(n, func(i int) bool { return vals[i+1] > x })
}

// InRange reports whether idx, as returned by RawIndex, names an actual
// bin.
func (e *Edges) InRange(idx int) bool {
	return idx >= 0 && idx < e.N
}

// Clamp folds an out-of-range idx into [0, N-1].
func (e *Edges) Clamp(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= e.N {
		return e.N - 1
	}
	return idx
}

// Wrap folds idx modulo N, wrapping negative indices the way spec.md
// §4.4 describes ("modulo by n, folding negatives").
func (e *Edges) Wrap(idx int) int {
	n := e.N
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

// FlowMode is the out-of-range policy for a Binning/MultiBinning node
// when no content subtree is given for overflow.
type FlowMode int

const (
	FlowError FlowMode = iota
	FlowClamp
	FlowWrap
)

// Flow is the overflow policy attached to a Binning/MultiBinning node:
// either a fixed mode or a content subtree to evaluate instead.
type Flow struct {
	Mode    FlowMode
	Content Content // non-nil iff this flow is a content subtree
}

func (f Flow) isContentFlow() bool { return f.Content != nil }
