package content

import (
	"math"

	"correctionlib.dev/go/correrrors"
)

// Binning is a 1-dimensional binning over a single real input, spec.md
// §3/§4.4.
type Binning struct {
	InputSlot int
	Edges     Edges
	Content   []Content // length Edges.NBins()
	Flow      Flow
}

func (b *Binning) Eval(ctx *EvalContext) (float64, error) {
	x := ctx.Inputs[b.InputSlot].AsFloat()
	if math.IsNaN(x) {
		return 0, correrrors.New(correrrors.OutOfRange, "binning input is NaN")
	}
	idx := b.Edges.RawIndex(x)
	if b.Edges.InRange(idx) {
		return b.Content[idx].Eval(ctx)
	}
	if b.Flow.isContentFlow() {
		return b.Flow.Content.Eval(ctx)
	}
	switch b.Flow.Mode {
	case FlowError:
		return 0, correrrors.New(correrrors.OutOfRange, "binning input out of range")
	case FlowClamp:
		return b.Content[b.Edges.Clamp(idx)].Eval(ctx)
	case FlowWrap:
		return b.Content[b.Edges.Wrap(idx)].Eval(ctx)
	}
	panic("content: unhandled flow mode")
}
