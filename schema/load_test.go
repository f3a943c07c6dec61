package schema

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
)

const simpleV2Doc = `{
  "schema_version": 2,
  "description": "test set",
  "corrections": [
    {
      "name": "pt_weight",
      "version": 1,
      "inputs": [
        {"name": "eta", "type": "real"},
        {"name": "pt", "type": "real"}
      ],
      "output": {"name": "weight", "type": "real"},
      "data": {
        "nodetype": "binning",
        "input": "pt",
        "edges": {"n": 2, "low": 0, "high": 20},
        "content": [1.0, 2.0],
        "flow": "clamp"
      }
    }
  ]
}`

func TestLoadV2SimpleBinning(t *testing.T) {
	cs, err := Load([]byte(simpleV2Doc), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(cs.SchemaVersion, 2))
	qt.Assert(t, qt.Equals(len(cs.Corrections), 1))
	c, ok := cs.ByName("pt_weight")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(c.Inputs), 2))
	qt.Assert(t, qt.Equals(c.Output.Type, c.Output.Type)) // sanity: exists
}

func TestLoadRejectsDuplicateCorrectionNames(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [], "output": {"name": "o", "type": "real"}, "data": 1.0},
        {"name": "a", "version": 1, "inputs": [], "output": {"name": "o", "type": "real"}, "data": 2.0}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.InvariantError))
}

func TestLoadUnknownNodeTypeIsSchemaError(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [], "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "bogus"}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.SchemaError))
}

func TestLoadUnsupportedSchemaVersion(t *testing.T) {
	_, err := Load([]byte(`{"schema_version": 99, "corrections": []}`), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.SchemaError))
}

func TestLoadRequireSchemaVersionMismatch(t *testing.T) {
	_, err := Load([]byte(simpleV2Doc), Options{RequireSchemaVersion: 1})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.SchemaError))
}

func TestLoadReferenceErrorOnUndeclaredInput(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "pt", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "binning", "input": "nonexistent",
                   "edges": [0, 1, 2], "content": [1.0, 2.0], "flow": "error"}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.ReferenceError))
}

func TestLoadCategoryHeterogeneousKeysRejected(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "year", "type": "string"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "category", "input": "year",
                   "content": [{"key": "2016", "value": 1.0}, {"key": 2017, "value": 2.0}]}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.SchemaError))
}

func TestLoadFormulaWrongArity(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "pt", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "formula", "expression": "[0]*x+[1]", "parser": "TFormula",
                   "variables": ["pt"], "parameters": [1.0]}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.WrongArity))
}

const v1Doc = `{
  "schema_version": 1,
  "corrections": [
    {
      "name": "legacy_weight",
      "inputs": [
        {"name": "eta", "type": "real"},
        {"name": "pt", "type": "real"}
      ],
      "output": {"name": "weight", "type": "real"},
      "data": {
        "nodetype": "binning",
        "edges": [0, 10, 20],
        "content": [
          {"expression": "2*x", "parser": "TFormula", "parameters": [1]},
          3.0
        ]
      }
    }
  ]
}`

func TestLoadRejectsBareInfinityEdgeByDefault(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "pt", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "binning", "input": "pt",
                   "edges": [0, Infinity], "content": [1.0], "flow": "error"}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.SchemaError))
}

func TestLoadIgnoreFloatInfAcceptsBareInfinityEdge(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "pt", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "binning", "input": "pt",
                   "edges": [0, Infinity], "content": [1.0], "flow": "error"}}
      ]
    }`
	cs, err := Load([]byte(doc), Options{IgnoreFloatInf: true})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(cs.Corrections), 1))
}

func TestLoadQuotedInfEdgeAlwaysAccepted(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "corrections": [
        {"name": "a", "version": 1, "inputs": [{"name": "pt", "type": "real"}],
         "output": {"name": "o", "type": "real"},
         "data": {"nodetype": "binning", "input": "pt",
                   "edges": [0, "inf"], "content": [1.0], "flow": "error"}}
      ]
    }`
	_, err := Load([]byte(doc), Options{})
	qt.Assert(t, qt.IsNil(err))
}

func TestLoadIgnoreFloatInfDoesNotMangleStringMentioningInfinity(t *testing.T) {
	doc := `{
      "schema_version": 2,
      "description": "valid up to Infinity GeV",
      "corrections": [
        {"name": "a", "version": 1, "inputs": [], "output": {"name": "o", "type": "real"}, "data": 1.0}
      ]
    }`
	cs, err := Load([]byte(doc), Options{IgnoreFloatInf: true})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(cs.Description, "valid up to Infinity GeV"))
}

func TestLoadV1NormalizesToV2(t *testing.T) {
	cs, err := Load([]byte(v1Doc), Options{})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(cs.Corrections), 1))
	c, ok := cs.ByName("legacy_weight")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(len(c.Inputs), 2))
}
