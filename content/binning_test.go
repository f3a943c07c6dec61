package content

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
)

func evalFloat(t *testing.T, c Content, inputs ...Value) float64 {
	t.Helper()
	v, err := c.Eval(&EvalContext{Inputs: inputs})
	qt.Assert(t, qt.IsNil(err))
	return v
}

func TestBinningLookup(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 3, Low: 0, High: 30},
		Content:   []Content{Constant(1), Constant(2), Constant(3)},
		Flow:      Flow{Mode: FlowError},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(5)), 1.0))
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(15)), 2.0))
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(29.9)), 3.0))
}

func TestBinningFlowError(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 1, Low: 0, High: 10},
		Content:   []Content{Constant(1)},
		Flow:      Flow{Mode: FlowError},
	}
	_, err := b.Eval(&EvalContext{Inputs: []Value{RealValue(100)}})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.OutOfRange))
}

func TestBinningFlowClamp(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 2, Low: 0, High: 10},
		Content:   []Content{Constant(1), Constant(2)},
		Flow:      Flow{Mode: FlowClamp},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(-5)), 1.0))
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(100)), 2.0))
}

func TestBinningFlowWrap(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 2, Low: 0, High: 10},
		Content:   []Content{Constant(1), Constant(2)},
		Flow:      Flow{Mode: FlowWrap},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(15)), 1.0))
}

func TestBinningFlowContent(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 1, Low: 0, High: 10},
		Content:   []Content{Constant(1)},
		Flow:      Flow{Content: Constant(99)},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(100)), 99.0))
}

func TestBinningNaN(t *testing.T) {
	b := &Binning{
		InputSlot: 0,
		Edges:     Edges{Uniform: true, N: 1, Low: 0, High: 10},
		Content:   []Content{Constant(1)},
		Flow:      Flow{Mode: FlowError},
	}
	_, err := b.Eval(&EvalContext{Inputs: []Value{RealValue(nan())}})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.OutOfRange))
}

func nan() float64 {
	var zero float64
	return zero / zero
}
