package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// rawVariable mirrors schemav2.py's Variable model field-for-field.
type rawVariable struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

// rawContent is the JSON sum type for a Content node: either a bare
// float (Constant) or an object carrying a "nodetype" discriminator,
// per schemav2.py's `Content` Union. The object's remaining fields are
// kept as raw bytes and decoded into the concrete raw*  struct that
// matches NodeType only once the builder knows which one to use.
type rawContent struct {
	IsConstant bool
	Constant   float64
	NodeType   string
	raw        json.RawMessage
}

func (c *rawContent) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty content node")
	}
	if trimmed[0] != '{' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("content node is neither a number nor an object: %w", err)
		}
		c.IsConstant = true
		c.Constant = f
		return nil
	}
	var disc struct {
		NodeType string `json:"nodetype"`
	}
	if err := json.Unmarshal(b, &disc); err != nil {
		return fmt.Errorf("decoding content node discriminator: %w", err)
	}
	if disc.NodeType == "" {
		return fmt.Errorf("content node object is missing a \"nodetype\" field")
	}
	c.NodeType = disc.NodeType
	c.raw = append(json.RawMessage(nil), b...)
	return nil
}

// rawEdges is the JSON sum type for one binning axis: either a flat
// array of monotonically increasing edge values (numbers, or the
// strings "inf"/"+inf"/"-inf"), or a {n, low, high} uniform spec.
type rawEdges struct {
	Uniform   bool
	N         int
	Low, High float64
	Values    []float64
}

func (e *rawEdges) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var u struct {
			N    int     `json:"n"`
			Low  float64 `json:"low"`
			High float64 `json:"high"`
		}
		if err := json.Unmarshal(b, &u); err != nil {
			return err
		}
		e.Uniform = true
		e.N, e.Low, e.High = u.N, u.Low, u.High
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return fmt.Errorf("decoding edges array: %w", err)
	}
	vals := make([]float64, len(raws))
	for i, r := range raws {
		rt := bytes.TrimSpace(r)
		if len(rt) > 0 && rt[0] == '"' {
			var s string
			if err := json.Unmarshal(r, &s); err != nil {
				return err
			}
			switch s {
			case "inf", "+inf":
				vals[i] = math.Inf(1)
			case "-inf":
				vals[i] = math.Inf(-1)
			default:
				return fmt.Errorf("edges array contains unrecognized string literal %q", s)
			}
			continue
		}
		if err := json.Unmarshal(r, &vals[i]); err != nil {
			return fmt.Errorf("decoding edge value: %w", err)
		}
	}
	e.Values = vals
	return nil
}

// rawFlow is the JSON sum type for a Binning/MultiBinning overflow
// policy: either the string "clamp"/"error"/"wrap", or a content node
// (including a bare numeric constant) to evaluate instead.
type rawFlow struct {
	Mode    string
	Content *rawContent
}

func (f *rawFlow) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Mode = s
		return nil
	}
	var c rawContent
	if err := c.UnmarshalJSON(b); err != nil {
		return err
	}
	f.Content = &c
	return nil
}

type rawBinning struct {
	Input   string       `json:"input"`
	Edges   rawEdges     `json:"edges"`
	Content []rawContent `json:"content"`
	Flow    rawFlow      `json:"flow"`
}

type rawMultiBinning struct {
	Inputs  []string     `json:"inputs"`
	Edges   []rawEdges   `json:"edges"`
	Content []rawContent `json:"content"`
	Flow    rawFlow      `json:"flow"`
}

type rawCategoryItem struct {
	Key   interface{} `json:"key"`
	Value rawContent  `json:"value"`
}

type rawCategory struct {
	Input   string            `json:"input"`
	Content []rawCategoryItem `json:"content"`
	Default *rawContent       `json:"default"`
}

type rawFormula struct {
	Expression string    `json:"expression"`
	Parser     string    `json:"parser"`
	Variables  []string  `json:"variables"`
	Parameters []float64 `json:"parameters"`
}

type rawFormulaRef struct {
	Index      int       `json:"index"`
	Parameters []float64 `json:"parameters"`
}

type rawTransform struct {
	Input   string     `json:"input"`
	Rule    rawContent `json:"rule"`
	Content rawContent `json:"content"`
}

type rawHashPRNG struct {
	Inputs       []string `json:"inputs"`
	Distribution string   `json:"distribution"`
}

type rawSelection struct {
	Variable string     `json:"variable"`
	Op       string     `json:"op"`
	Value    float64    `json:"value"`
	Content  rawContent `json:"content"`
}

type rawSwitch struct {
	Inputs     []string       `json:"inputs"`
	Selections []rawSelection `json:"selections"`
	Default    rawContent     `json:"default"`
}

type rawCorrection struct {
	Name            string       `json:"name"`
	Description     *string      `json:"description,omitempty"`
	Version         int          `json:"version"`
	Inputs          []rawVariable `json:"inputs"`
	Output          rawVariable   `json:"output"`
	GenericFormulas []rawFormula  `json:"generic_formulas,omitempty"`
	Data            rawContent    `json:"data"`
}

type rawCompoundCorrection struct {
	Name         string        `json:"name"`
	Description  *string       `json:"description,omitempty"`
	Inputs       []rawVariable `json:"inputs"`
	Output       rawVariable   `json:"output"`
	InputsUpdate []string      `json:"inputs_update"`
	InputOp      string        `json:"input_op"`
	OutputOp     string        `json:"output_op"`
	Stack        []string      `json:"stack"`
}

type rawCorrectionSet struct {
	SchemaVersion       int                     `json:"schema_version"`
	Description         *string                 `json:"description,omitempty"`
	Corrections         []rawCorrection         `json:"corrections"`
	CompoundCorrections []rawCompoundCorrection `json:"compound_corrections,omitempty"`
}
