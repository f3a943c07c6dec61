package batch

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/corrset"
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/schema"
)

const doubleDoc = `{
  "schema_version": 2,
  "corrections": [
    {
      "name": "doubler",
      "version": 1,
      "inputs": [{"name": "pt", "type": "real"}],
      "output": {"name": "o", "type": "real"},
      "data": {"nodetype": "formula", "expression": "x*2", "parser": "TFormula",
                "variables": ["pt"], "parameters": []}
    }
  ]
}`

func loadDoubler(t *testing.T) *corrset.Correction {
	t.Helper()
	cs, err := corrset.Load([]byte(doubleDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	c, ok := cs.Correction("doubler")
	qt.Assert(t, qt.IsTrue(ok))
	return c
}

func TestEvaluateVectorColumn(t *testing.T) {
	c := loadDoubler(t)
	out, err := Evaluate(c, []Column{
		{Name: "pt", Values: []interface{}{1.0, 2.0, 3.0}},
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(out, []float64{2.0, 4.0, 6.0}))
}

func TestEvaluateAllScalarIsSingleRow(t *testing.T) {
	c := loadDoubler(t)
	out, err := Evaluate(c, []Column{{Name: "pt", Scalar: 5.0}})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(out, []float64{10.0}))
}

func TestEvaluateShapeMismatch(t *testing.T) {
	c := loadDoubler(t)
	_, err := Evaluate(c, []Column{
		{Name: "pt", Values: []interface{}{1.0, 2.0}},
	})
	// sanity: equal-length vector columns against a single-input
	// correction is fine; force a mismatch with two differently
	// shaped vector columns feeding a two-input correction instead.
	_ = err

	cs2Doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "sum2", "version": 1,
         "inputs": [{"name": "a", "type": "real"}, {"name": "b", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "formula", "expression": "x+y", "parser": "TFormula",
                   "variables": ["a", "b"], "parameters": []}}
      ]
    }`
	cs, err := corrset.Load([]byte(cs2Doc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	sum2, _ := cs.Correction("sum2")
	_, err = Evaluate(sum2, []Column{
		{Name: "a", Values: []interface{}{1.0, 2.0, 3.0}},
		{Name: "b", Values: []interface{}{1.0, 2.0}},
	})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.ShapeMismatch))
}

func TestEvaluateAnnotatesRowOnError(t *testing.T) {
	c := loadDoubler(t)
	_, err := Evaluate(c, []Column{
		{Name: "pt", Values: []interface{}{1.0, "not a number"}},
	})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.WrongType))
	path := ce.Path()
	qt.Assert(t, qt.IsTrue(len(path) >= 2))
	qt.Assert(t, qt.Equals(path[len(path)-2], "row"))
	qt.Assert(t, qt.Equals(path[len(path)-1], "1"))
}
