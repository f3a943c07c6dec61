package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"correctionlib.dev/go/correrrors"
)

// Schema v1 (schemav1.py) predates the "nodetype" discriminator on
// Formula, the per-node "input"/"inputs" name attribution on
// Binning/MultiBinning/Category, and the Binning/MultiBinning "flow"
// field. A v1 document's Content node is identified structurally: an
// object with a "nodetype" key is Binning/MultiBinning/Category; an
// object without one but with an "expression" key is a Formula; a bare
// number is a Constant.
type rawContentV1 struct {
	IsConstant bool
	Constant   float64
	NodeType   string // "binning" | "multibinning" | "category" | "" (formula)
	raw        json.RawMessage
}

func (c *rawContentV1) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty content node")
	}
	if trimmed[0] != '{' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("v1 content node is neither a number nor an object: %w", err)
		}
		c.IsConstant = true
		c.Constant = f
		return nil
	}
	var disc struct {
		NodeType string `json:"nodetype"`
	}
	if err := json.Unmarshal(b, &disc); err != nil {
		return err
	}
	c.NodeType = disc.NodeType // empty string means "formula"
	c.raw = append(json.RawMessage(nil), b...)
	return nil
}

type rawBinningV1 struct {
	Edges   []float64      `json:"edges"`
	Content []rawContentV1 `json:"content"`
}

type rawMultiBinningV1 struct {
	Edges   [][]float64    `json:"edges"`
	Content []rawContentV1 `json:"content"`
}

// rawKeyV1 accepts either a JSON string or number, matching v1's
// `keys: List[Union[str, int]]`.
type rawKeyV1 struct {
	IsString bool
	Str      string
	Int      int64
}

func (k *rawKeyV1) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		k.IsString = true
		return json.Unmarshal(b, &k.Str)
	}
	return json.Unmarshal(b, &k.Int)
}

type rawCategoryV1 struct {
	Keys    []rawKeyV1     `json:"keys"`
	Content []rawContentV1 `json:"content"`
}

type rawFormulaV1 struct {
	Expression string  `json:"expression"`
	Parser     string  `json:"parser"`
	Parameters []int   `json:"parameters"` // indices into Correction.inputs[]
}

type rawCorrectionV1 struct {
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Version     int           `json:"version"`
	Inputs      []rawVariable `json:"inputs"`
	Output      rawVariable   `json:"output"`
	Data        rawContentV1  `json:"data"`
}

type rawCorrectionSetV1 struct {
	SchemaVersion int               `json:"schema_version"`
	Corrections   []rawCorrectionV1 `json:"corrections"`
}

// normalizeV1 rewrites a v1 document into v2 raw shape in memory. v1
// carries no explicit input-name attribution on Binning/MultiBinning/
// Category nodes, so names are assigned by a pre-order walk that
// consumes the correction's declared Inputs in order: each Binning or
// Category node consumes the next unconsumed input, each MultiBinning
// node consumes as many as it has axes. v1's Formula.Parameters are
// indices into Correction.inputs[] naming which inputs feed the
// formula's positional variables (x, y, z, t, ...), not numeric
// constants, so they normalize to v2 Formula.Variables (names) with an
// empty v2 Parameters list. v1 has no flow field, so every normalized
// Binning/MultiBinning gets flow "error".
func normalizeV1(docV1 *rawCorrectionSetV1) (*rawCorrectionSet, error) {
	out := &rawCorrectionSet{
		SchemaVersion: 2,
		Corrections:   make([]rawCorrection, len(docV1.Corrections)),
	}
	for i, c := range docV1.Corrections {
		nc, err := normalizeCorrectionV1(c)
		if err != nil {
			return nil, correrrors.WithPath(err, fmt.Sprintf("corrections.%d", i), correrrors.SchemaError)
		}
		out.Corrections[i] = nc
	}
	return out, nil
}

type v1Cursor struct {
	inputs []rawVariable
	next   int
}

func (cur *v1Cursor) take(n int) ([]string, error) {
	if cur.next+n > len(cur.inputs) {
		return nil, correrrors.Newf(correrrors.SchemaError,
			"v1 correction data tree references more inputs than declared (%d available)", len(cur.inputs))
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = cur.inputs[cur.next+i].Name
	}
	cur.next += n
	return names, nil
}

func normalizeCorrectionV1(c rawCorrectionV1) (rawCorrection, error) {
	cur := &v1Cursor{inputs: c.Inputs}
	data, err := normalizeContentV1(cur, c.Inputs, c.Data)
	if err != nil {
		return rawCorrection{}, err
	}
	return rawCorrection{
		Name:        c.Name,
		Description: c.Description,
		Version:     c.Version,
		Inputs:      c.Inputs,
		Output:      c.Output,
		Data:        data,
	}, nil
}

func normalizeContentV1(cur *v1Cursor, inputs []rawVariable, node rawContentV1) (rawContent, error) {
	if node.IsConstant {
		return rawContent{IsConstant: true, Constant: node.Constant}, nil
	}
	switch node.NodeType {
	case "binning":
		var v1b rawBinningV1
		if err := json.Unmarshal(node.raw, &v1b); err != nil {
			return rawContent{}, fmt.Errorf("decoding v1 binning node: %w", err)
		}
		names, err := cur.take(1)
		if err != nil {
			return rawContent{}, err
		}
		content := make([]rawContent, len(v1b.Content))
		for i, sub := range v1b.Content {
			nc, err := normalizeContentV1(cur, inputs, sub)
			if err != nil {
				return rawContent{}, err
			}
			content[i] = nc
		}
		return wrapRaw("binning", rawBinning{
			Input:   names[0],
			Edges:   rawEdges{Values: v1b.Edges},
			Content: content,
			Flow:    rawFlow{Mode: "error"},
		})
	case "multibinning":
		var v1m rawMultiBinningV1
		if err := json.Unmarshal(node.raw, &v1m); err != nil {
			return rawContent{}, fmt.Errorf("decoding v1 multibinning node: %w", err)
		}
		names, err := cur.take(len(v1m.Edges))
		if err != nil {
			return rawContent{}, err
		}
		content := make([]rawContent, len(v1m.Content))
		for i, sub := range v1m.Content {
			nc, err := normalizeContentV1(cur, inputs, sub)
			if err != nil {
				return rawContent{}, err
			}
			content[i] = nc
		}
		edges := make([]rawEdges, len(v1m.Edges))
		for i, e := range v1m.Edges {
			edges[i] = rawEdges{Values: e}
		}
		return wrapRaw("multibinning", rawMultiBinning{
			Inputs:  names,
			Edges:   edges,
			Content: content,
			Flow:    rawFlow{Mode: "error"},
		})
	case "category":
		var v1cat rawCategoryV1
		if err := json.Unmarshal(node.raw, &v1cat); err != nil {
			return rawContent{}, fmt.Errorf("decoding v1 category node: %w", err)
		}
		names, err := cur.take(1)
		if err != nil {
			return rawContent{}, err
		}
		if len(v1cat.Keys) != len(v1cat.Content) {
			return rawContent{}, correrrors.Newf(correrrors.SchemaError,
				"v1 category keys (%d) and content (%d) length mismatch", len(v1cat.Keys), len(v1cat.Content))
		}
		items := make([]rawCategoryItem, len(v1cat.Keys))
		for i, k := range v1cat.Keys {
			value, err := normalizeContentV1(cur, inputs, v1cat.Content[i])
			if err != nil {
				return rawContent{}, err
			}
			var key interface{}
			if k.IsString {
				key = k.Str
			} else {
				key = float64(k.Int)
			}
			items[i] = rawCategoryItem{Key: key, Value: value}
		}
		return wrapRaw("category", rawCategory{Input: names[0], Content: items})
	case "":
		var v1f rawFormulaV1
		if err := json.Unmarshal(node.raw, &v1f); err != nil {
			return rawContent{}, fmt.Errorf("decoding v1 formula node: %w", err)
		}
		variables := make([]string, len(v1f.Parameters))
		for i, idx := range v1f.Parameters {
			if idx < 0 || idx >= len(inputs) {
				return rawContent{}, correrrors.Newf(correrrors.ReferenceError,
					"v1 formula parameter index %d out of range of %d declared inputs", idx, len(inputs))
			}
			variables[i] = inputs[idx].Name
		}
		return wrapRaw("formula", rawFormula{
			Expression: v1f.Expression,
			Parser:     v1f.Parser,
			Variables:  variables,
		})
	}
	return rawContent{}, correrrors.Newf(correrrors.SchemaError, "unrecognized v1 content node type %q", node.NodeType)
}

// wrapRaw re-serializes a freshly built v2 raw node struct and feeds it
// back through rawContent's own decoder, so the normalizer produces
// exactly the same in-memory shape the v2 path would have built from a
// native v2 document, with NodeType set explicitly since re-decoding
// alone can't recover a discriminator these structs don't carry.
func wrapRaw(nodetype string, v interface{}) (rawContent, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return rawContent{}, err
	}
	return rawContent{NodeType: nodetype, raw: b}, nil
}
