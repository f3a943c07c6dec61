package content

import (
	"math"

	"correctionlib.dev/go/correrrors"
)

// MultiBinning is an N-dimensional rectangular binning, spec.md §3/§4.4.
// Content is a flattened C-ordered array; Strides[k] gives the flat-index
// multiplier for axis k (Strides[last] == 1), computed by the schema
// loader via ComputeStrides.
type MultiBinning struct {
	InputSlots []int
	Edges      []Edges
	Strides    []int
	Content    []Content
	Flow       Flow
}

// ComputeStrides derives C-ordering strides from a list of per-axis bin
// counts, e.g. for shapes [d0, d1, d2] the flat index of (i0, i1, i2) is
// d1*d2*i0 + d2*i1 + i2, matching spec.md §3's MultiBinning doc comment.
func ComputeStrides(nbins []int) []int {
	strides := make([]int, len(nbins))
	acc := 1
	for k := len(nbins) - 1; k >= 0; k-- {
		strides[k] = acc
		acc *= nbins[k]
	}
	return strides
}

func (m *MultiBinning) Eval(ctx *EvalContext) (float64, error) {
	naxes := len(m.Edges)
	rawIdx := make([]int, naxes)
	allInRange := true
	for k, slot := range m.InputSlots {
		x := ctx.Inputs[slot].AsFloat()
		if math.IsNaN(x) {
			return 0, correrrors.New(correrrors.OutOfRange, "multibinning input is NaN")
		}
		rawIdx[k] = m.Edges[k].RawIndex(x)
		if !m.Edges[k].InRange(rawIdx[k]) {
			allInRange = false
		}
	}
	if allInRange {
		return m.Content[m.flatIndex(rawIdx)].Eval(ctx)
	}
	// spec.md §9 open question (b): flow is global — any out-of-range
	// axis triggers the flow policy once, rather than per axis.
	if m.Flow.isContentFlow() {
		return m.Flow.Content.Eval(ctx)
	}
	switch m.Flow.Mode {
	case FlowError:
		return 0, correrrors.New(correrrors.OutOfRange, "multibinning input out of range")
	case FlowClamp:
		for k := range rawIdx {
			rawIdx[k] = m.Edges[k].Clamp(rawIdx[k])
		}
		return m.Content[m.flatIndex(rawIdx)].Eval(ctx)
	case FlowWrap:
		for k := range rawIdx {
			rawIdx[k] = m.Edges[k].Wrap(rawIdx[k])
		}
		return m.Content[m.flatIndex(rawIdx)].Eval(ctx)
	}
	panic("content: unhandled flow mode")
}

func (m *MultiBinning) flatIndex(idx []int) int {
	flat := 0
	for k, i := range idx {
		flat += i * m.Strides[k]
	}
	return flat
}
