package content

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
)

func TestCategoryStringKeys(t *testing.T) {
	c := &Category{
		InputSlot: 0,
		KeyIsStr:  true,
		StrKeys: map[string]Content{
			"2016": Constant(1),
			"2017": Constant(2),
		},
		Default: Constant(-1),
	}
	qt.Assert(t, qt.Equals(evalFloat(t, c, StringValue("2016")), 1.0))
	qt.Assert(t, qt.Equals(evalFloat(t, c, StringValue("2099")), -1.0))
}

func TestCategoryIntKeysNoDefault(t *testing.T) {
	c := &Category{
		InputSlot: 0,
		IntKeys: map[int64]Content{
			11: Constant(1),
			13: Constant(2),
		},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, c, IntValue(11)), 1.0))
	_, err := c.Eval(&EvalContext{Inputs: []Value{IntValue(999)}})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.OutOfRange))
}

func TestCategoryRealInputRoundsToIntKey(t *testing.T) {
	c := &Category{
		InputSlot: 0,
		IntKeys: map[int64]Content{
			11: Constant(42),
		},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, c, RealValue(11.0)), 42.0))
}

// TestCategoryRealInputRoundsNotTruncates reproduces spec.md S5: a
// Category keyed on int 3 must still match real inputs of 3.000001 and
// 2.999999 (original_source/tests/test_core.py's test_transform), which
// truncation toward zero would send to keys 3 and 2 respectively,
// losing the match on 2.999999.
func TestCategoryRealInputRoundsNotTruncates(t *testing.T) {
	c := &Category{
		InputSlot: 0,
		IntKeys: map[int64]Content{
			0: Constant(0.0),
			3: Constant(0.1),
			4: Constant(0.2),
		},
	}
	qt.Assert(t, qt.Equals(evalFloat(t, c, RealValue(3.000001)), 0.1))
	qt.Assert(t, qt.Equals(evalFloat(t, c, RealValue(2.999999)), 0.1))
}
