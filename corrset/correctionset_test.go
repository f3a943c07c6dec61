package corrset

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/schema"
)

const categoryDoc = `{
  "schema_version": 2,
  "corrections": [
    {
      "name": "year_weight",
      "version": 1,
      "inputs": [{"name": "year", "type": "string"}],
      "output": {"name": "weight", "type": "real"},
      "data": {
        "nodetype": "category",
        "input": "year",
        "content": [
          {"key": "2016", "value": 1.1},
          {"key": "2017", "value": 1.2}
        ],
        "default": -1.0
      }
    }
  ]
}`

func TestCorrectionEvaluate(t *testing.T) {
	cs, err := Load([]byte(categoryDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	c, ok := cs.Correction("year_weight")
	qt.Assert(t, qt.IsTrue(ok))

	v, err := c.Evaluate("2016")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 1.1))

	v, err = c.Evaluate("2099")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, -1.0))
}

func TestCorrectionEvaluateWrongArity(t *testing.T) {
	cs, err := Load([]byte(categoryDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	c, _ := cs.Correction("year_weight")
	_, err = c.Evaluate("2016", "extra")
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.WrongArity))
}

func TestCorrectionEvaluateWrongType(t *testing.T) {
	cs, err := Load([]byte(categoryDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	c, _ := cs.Correction("year_weight")
	_, err = c.Evaluate(2016)
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.WrongType))
}

const compoundDoc = `{
  "schema_version": 2,
  "corrections": [
    {
      "name": "base",
      "version": 1,
      "inputs": [{"name": "pt", "type": "real"}],
      "output": {"name": "o", "type": "real"},
      "data": {"nodetype": "formula", "expression": "x*2", "parser": "TFormula",
                "variables": ["pt"], "parameters": []}
    },
    {
      "name": "extra",
      "version": 1,
      "inputs": [{"name": "pt", "type": "real"}],
      "output": {"name": "o", "type": "real"},
      "data": {"nodetype": "formula", "expression": "x+1", "parser": "TFormula",
                "variables": ["pt"], "parameters": []}
    }
  ],
  "compound_corrections": [
    {
      "name": "combined",
      "inputs": [{"name": "pt", "type": "real"}],
      "output": {"name": "o", "type": "real"},
      "inputs_update": ["pt"],
      "input_op": "+",
      "output_op": "*",
      "stack": ["base", "extra"]
    }
  ]
}`

func TestCompoundCorrectionEvaluate(t *testing.T) {
	cs, err := Load([]byte(compoundDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	cc, ok := cs.CompoundCorrection("combined")
	qt.Assert(t, qt.IsTrue(ok))

	// stage 1: base(pt=10) = 20; pt updates to 10+20=30
	// stage 2: extra(pt=30) = 31
	// output accumulates via "*": 1 * 20 * 31 = 620
	v, err := cc.Evaluate(10.0)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 620.0))
}

func TestCompoundCorrectionUnknownStackReference(t *testing.T) {
	loaded, err := schema.Load([]byte(compoundDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	loaded.CompoundCorrections[0].Stack = []string{"base", "missing"}
	_, err = FromSchema(loaded)
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.ReferenceError))
}

func TestCorrectionSetNames(t *testing.T) {
	cs, err := Load([]byte(compoundDoc), schema.Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(cs.Names(), []string{"base", "extra"}))
}
