package schema

import (
	"encoding/json"
	"math"

	"correctionlib.dev/go/content"
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/formula/compile"
	"correctionlib.dev/go/formula/parser"
	"correctionlib.dev/go/hashprng"
)

// unmarshalRaw decodes a rawContent node's captured object bytes into
// the nodetype-specific raw* struct the caller already knows it is.
func unmarshalRaw(node rawContent, v interface{}) error {
	return json.Unmarshal(node.raw, v)
}

// genericFormula is a compiled generic_formulas entry: its Program and
// the input slots its positional variables are bound to, shared by
// every FormulaRef node that points at it (spec.md §4.6).
type genericFormula struct {
	program  *compile.Program
	varSlots []int
}

// buildCtx carries the per-Correction state the builder threads through
// a content tree: the name->slot map for Correction.Inputs, each
// input's declared type (for HashPRNG's canonical-byte kind tags and
// Category's key-type checks), the compiled generic formula table, and
// the options governing leniency.
type buildCtx struct {
	slots           map[string]int
	types           []content.VarType
	genericFormulas []genericFormula
	opts            Options
}

func (bc *buildCtx) resolve(path []string, name string) (int, error) {
	return slotIndex(bc.slots, path, name)
}

// BuiltCorrection is the fully resolved, ready-to-evaluate form of one
// schema Correction: a name/version/description, typed input and output
// Variables, and a root content.Content tree with every name reference
// already turned into a slot index.
type BuiltCorrection struct {
	Name        string
	Description string
	Version     int
	Inputs      []Variable
	Output      Variable
	Root        content.Content
}

func buildCorrection(rc rawCorrection, opts Options) (*BuiltCorrection, error) {
	path := []string{"corrections", rc.Name}
	inputs := make([]Variable, len(rc.Inputs))
	slots := make(map[string]int, len(rc.Inputs))
	types := make([]content.VarType, len(rc.Inputs))
	for i, rv := range rc.Inputs {
		v, err := buildVariable(append(path, "inputs"), rv)
		if err != nil {
			return nil, err
		}
		if _, dup := slots[v.Name]; dup {
			return nil, errAtPath(correrrors.SchemaError, path, "duplicate input name %q", v.Name)
		}
		inputs[i] = v
		slots[v.Name] = i
		types[i] = v.Type
	}
	output, err := buildVariable(append(path, "output"), rc.Output)
	if err != nil {
		return nil, err
	}
	if output.Type != content.TypeReal {
		return nil, errAtPath(correrrors.SchemaError, path, "correction output type must be real")
	}

	bc := &buildCtx{slots: slots, types: types, opts: opts}
	bc.genericFormulas = make([]genericFormula, len(rc.GenericFormulas))
	for i, gf := range rc.GenericFormulas {
		compiled, err := compileFormula(bc, append(path, "generic_formulas"), gf)
		if err != nil {
			return nil, err
		}
		bc.genericFormulas[i] = compiled
	}

	root, err := buildContent(bc, append(path, "data"), rc.Data)
	if err != nil {
		return nil, err
	}

	return &BuiltCorrection{
		Name:        rc.Name,
		Description: strOr(rc.Description),
		Version:     rc.Version,
		Inputs:      inputs,
		Output:      output,
		Root:        root,
	}, nil
}

func strOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func compileFormula(bc *buildCtx, path []string, gf rawFormula) (genericFormula, error) {
	if gf.Parser != "TFormula" {
		return genericFormula{}, errAtPath(correrrors.SchemaError, path, "unsupported formula parser %q", gf.Parser)
	}
	ex, err := parser.Parse(gf.Expression, gf.Variables)
	if err != nil {
		return genericFormula{}, err
	}
	varSlots := make([]int, len(gf.Variables))
	for i, name := range gf.Variables {
		slot, err := bc.resolve(path, name)
		if err != nil {
			return genericFormula{}, err
		}
		varSlots[i] = slot
	}
	return genericFormula{program: compile.Compile(ex), varSlots: varSlots}, nil
}

func buildContent(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	if node.IsConstant {
		return content.Constant(node.Constant), nil
	}
	switch node.NodeType {
	case "binning":
		return buildBinning(bc, path, node)
	case "multibinning":
		return buildMultiBinning(bc, path, node)
	case "category":
		return buildCategory(bc, path, node)
	case "formula":
		return buildFormula(bc, path, node)
	case "formularef":
		return buildFormulaRef(bc, path, node)
	case "transform":
		return buildTransform(bc, path, node)
	case "hashprng":
		return buildHashPRNG(bc, path, node)
	case "switch":
		return buildSwitch(bc, path, node)
	}
	return nil, errAtPath(correrrors.SchemaError, path, "unknown content nodetype %q", node.NodeType)
}

func decodeRaw(path []string, node rawContent, v interface{}) error {
	if err := unmarshalRaw(node, v); err != nil {
		return errAtPath(correrrors.SchemaError, path, "%s", err)
	}
	return nil
}

func buildEdges(bc *buildCtx, path []string, re rawEdges) (content.Edges, error) {
	if re.Uniform {
		if re.N <= 0 {
			return content.Edges{}, errAtPath(correrrors.InvariantError, path, "number of bins must be greater than 0, got %d", re.N)
		}
		if !(re.Low < re.High) {
			return content.Edges{}, errAtPath(correrrors.InvariantError, path, "higher bin edge must be larger than lower, got [%v, %v]", re.Low, re.High)
		}
		return content.Edges{Uniform: true, N: re.N, Low: re.Low, High: re.High}, nil
	}
	// Non-finite edges can only reach this point already spelled as the
	// "inf"/"+inf"/"-inf" string literals rawEdges.UnmarshalJSON
	// understands (always legal) or, when Options.IgnoreFloatInf
	// rewrote a bare Infinity token into one of those same strings
	// before this document was ever parsed as JSON. Either way, by the
	// time a value arrives here as +/-Inf it has already cleared the
	// gate that matters; there is nothing left to reject. NaN has no
	// string spelling and is always rejected.
	for _, v := range re.Values {
		if math.IsNaN(v) {
			return content.Edges{}, errAtPath(correrrors.InvariantError, path, "edges array contains NaN")
		}
	}
	for i := 1; i < len(re.Values); i++ {
		if !(re.Values[i-1] < re.Values[i]) {
			return content.Edges{}, errAtPath(correrrors.InvariantError, path, "binning edges not monotonically increasing")
		}
	}
	if len(re.Values) < 2 {
		return content.Edges{}, errAtPath(correrrors.InvariantError, path, "edges array must contain at least 2 values")
	}
	return content.Edges{N: len(re.Values) - 1, Values: re.Values}, nil
}

func buildFlow(bc *buildCtx, path []string, rf rawFlow) (content.Flow, error) {
	if rf.Content != nil {
		sub, err := buildContent(bc, append(path, "flow"), *rf.Content)
		if err != nil {
			return content.Flow{}, err
		}
		return content.Flow{Content: sub}, nil
	}
	switch rf.Mode {
	case "error":
		return content.Flow{Mode: content.FlowError}, nil
	case "clamp":
		return content.Flow{Mode: content.FlowClamp}, nil
	case "wrap":
		return content.Flow{Mode: content.FlowWrap}, nil
	}
	return content.Flow{}, errAtPath(correrrors.SchemaError, path, "unknown flow mode %q", rf.Mode)
}

func buildBinning(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rb rawBinning
	if err := decodeRaw(path, node, &rb); err != nil {
		return nil, err
	}
	slot, err := bc.resolve(path, rb.Input)
	if err != nil {
		return nil, err
	}
	edges, err := buildEdges(bc, append(path, "edges"), rb.Edges)
	if err != nil {
		return nil, err
	}
	if len(rb.Content) != edges.NBins() {
		return nil, errAtPath(correrrors.InvariantError, path,
			"binning content length (%d) is not one less than edges (%d)", len(rb.Content), edges.NBins()+1)
	}
	sub := make([]content.Content, len(rb.Content))
	for i, c := range rb.Content {
		sc, err := buildContent(bc, append(path, "content"), c)
		if err != nil {
			return nil, err
		}
		sub[i] = sc
	}
	flow, err := buildFlow(bc, path, rb.Flow)
	if err != nil {
		return nil, err
	}
	return &content.Binning{InputSlot: slot, Edges: edges, Content: sub, Flow: flow}, nil
}

func buildMultiBinning(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rm rawMultiBinning
	if err := decodeRaw(path, node, &rm); err != nil {
		return nil, err
	}
	if len(rm.Inputs) == 0 {
		return nil, errAtPath(correrrors.InvariantError, path, "multibinning must declare at least 1 input")
	}
	if len(rm.Inputs) != len(rm.Edges) {
		return nil, errAtPath(correrrors.SchemaError, path, "multibinning has %d inputs but %d edges axes", len(rm.Inputs), len(rm.Edges))
	}
	slots := make([]int, len(rm.Inputs))
	edges := make([]content.Edges, len(rm.Edges))
	nbins := make([]int, len(rm.Edges))
	for i, name := range rm.Inputs {
		slot, err := bc.resolve(path, name)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
		e, err := buildEdges(bc, append(path, "edges"), rm.Edges[i])
		if err != nil {
			return nil, err
		}
		edges[i] = e
		nbins[i] = e.NBins()
	}
	want := 1
	for _, n := range nbins {
		want *= n
	}
	if len(rm.Content) != want {
		return nil, errAtPath(correrrors.InvariantError, path,
			"multibinning content length (%d) does not match the product of dimension sizes (%d)", len(rm.Content), want)
	}
	sub := make([]content.Content, len(rm.Content))
	for i, c := range rm.Content {
		sc, err := buildContent(bc, append(path, "content"), c)
		if err != nil {
			return nil, err
		}
		sub[i] = sc
	}
	flow, err := buildFlow(bc, path, rm.Flow)
	if err != nil {
		return nil, err
	}
	return &content.MultiBinning{
		InputSlots: slots,
		Edges:      edges,
		Strides:    content.ComputeStrides(nbins),
		Content:    sub,
		Flow:       flow,
	}, nil
}

func buildCategory(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rc rawCategory
	if err := decodeRaw(path, node, &rc); err != nil {
		return nil, err
	}
	slot, err := bc.resolve(path, rc.Input)
	if err != nil {
		return nil, err
	}
	cat := &content.Category{InputSlot: slot}
	if len(rc.Content) > 0 {
		_, firstIsStr := rc.Content[0].Key.(string)
		if firstIsStr != (bc.types[slot] == content.TypeString) {
			return nil, errAtPath(correrrors.SchemaError, path,
				"category key type does not match the type of input %q (%s)", rc.Input, bc.types[slot])
		}
		cat.KeyIsStr = firstIsStr
		if firstIsStr {
			cat.StrKeys = make(map[string]content.Content, len(rc.Content))
		} else {
			cat.IntKeys = make(map[int64]content.Content, len(rc.Content))
		}
		for i, item := range rc.Content {
			sv, err := buildContent(bc, append(path, "content"), item.Value)
			if err != nil {
				return nil, err
			}
			switch key := item.Key.(type) {
			case string:
				if !firstIsStr {
					return nil, errAtPath(correrrors.SchemaError, path, "category keys do not have a homogeneous type at index %d", i)
				}
				if _, dup := cat.StrKeys[key]; dup {
					return nil, errAtPath(correrrors.SchemaError, path, "duplicate category key %q", key)
				}
				cat.StrKeys[key] = sv
			case float64:
				if firstIsStr {
					return nil, errAtPath(correrrors.SchemaError, path, "category keys do not have a homogeneous type at index %d", i)
				}
				ik := int64(key)
				if _, dup := cat.IntKeys[ik]; dup {
					return nil, errAtPath(correrrors.SchemaError, path, "duplicate category key %v", ik)
				}
				cat.IntKeys[ik] = sv
			default:
				return nil, errAtPath(correrrors.SchemaError, path, "category key must be a string or integer")
			}
		}
	}
	if rc.Default != nil {
		def, err := buildContent(bc, append(path, "default"), *rc.Default)
		if err != nil {
			return nil, err
		}
		cat.Default = def
	}
	return cat, nil
}

func buildFormula(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rf rawFormula
	if err := decodeRaw(path, node, &rf); err != nil {
		return nil, err
	}
	if rf.Parser != "TFormula" {
		return nil, errAtPath(correrrors.SchemaError, path, "unsupported formula parser %q", rf.Parser)
	}
	ex, err := parser.Parse(rf.Expression, rf.Variables)
	if err != nil {
		return nil, err
	}
	slots := make([]int, len(rf.Variables))
	for i, name := range rf.Variables {
		slot, err := bc.resolve(path, name)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
	}
	maxParam := parser.MaxParamIndex(ex)
	if maxParam >= len(rf.Parameters) {
		return nil, errAtPath(correrrors.WrongArity, path,
			"formula references parameter [%d] but only %d were supplied", maxParam, len(rf.Parameters))
	}
	return &content.Formula{Program: compile.Compile(ex), VarSlots: slots, Params: rf.Parameters}, nil
}

func buildFormulaRef(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rf rawFormulaRef
	if err := decodeRaw(path, node, &rf); err != nil {
		return nil, err
	}
	if rf.Index < 0 || rf.Index >= len(bc.genericFormulas) {
		return nil, errAtPath(correrrors.ReferenceError, path,
			"formularef index %d out of range of %d generic_formulas", rf.Index, len(bc.genericFormulas))
	}
	gf := bc.genericFormulas[rf.Index]
	return &content.FormulaRef{Formula: content.Formula{
		Program:  gf.program,
		VarSlots: gf.varSlots,
		Params:   rf.Parameters,
	}}, nil
}

func buildTransform(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rt rawTransform
	if err := decodeRaw(path, node, &rt); err != nil {
		return nil, err
	}
	slot, err := bc.resolve(path, rt.Input)
	if err != nil {
		return nil, err
	}
	rule, err := buildContent(bc, append(path, "rule"), rt.Rule)
	if err != nil {
		return nil, err
	}
	sub, err := buildContent(bc, append(path, "content"), rt.Content)
	if err != nil {
		return nil, err
	}
	return &content.Transform{InputSlot: slot, TargetType: bc.types[slot], Rule: rule, Content: sub}, nil
}

func buildHashPRNG(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rh rawHashPRNG
	if err := decodeRaw(path, node, &rh); err != nil {
		return nil, err
	}
	if len(rh.Inputs) == 0 {
		return nil, errAtPath(correrrors.InvariantError, path, "hashprng must declare at least 1 input")
	}
	var dist hashprng.Distribution
	switch rh.Distribution {
	case "stdflat":
		dist = hashprng.StdFlat
	case "normal":
		dist = hashprng.Normal
	case "stdnormal":
		bc.opts.deprecated("'stdnormal' distribution is deprecated, use 'normal' instead (cms-nanoAOD/correctionlib#287)")
		dist = hashprng.StdNormal
	default:
		return nil, errAtPath(correrrors.SchemaError, path, "unknown hashprng distribution %q", rh.Distribution)
	}
	slots := make([]int, len(rh.Inputs))
	order := make([]byte, len(rh.Inputs))
	for i, name := range rh.Inputs {
		slot, err := bc.resolve(path, name)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
		switch bc.types[slot] {
		case content.TypeReal:
			order[i] = 'r'
		case content.TypeInt:
			order[i] = 'i'
		case content.TypeString:
			order[i] = 's'
		}
	}
	return &content.HashPRNG{InputSlots: slots, Order: order, Dist: dist}, nil
}

func buildSwitch(bc *buildCtx, path []string, node rawContent) (content.Content, error) {
	var rs rawSwitch
	if err := decodeRaw(path, node, &rs); err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(rs.Inputs))
	for _, n := range rs.Inputs {
		allowed[n] = true
	}
	sels := make([]content.Selection, len(rs.Selections))
	for i, s := range rs.Selections {
		if !allowed[s.Variable] {
			return nil, errAtPath(correrrors.ReferenceError, path, "switch selection variable %q not declared in switch inputs", s.Variable)
		}
		slot, err := bc.resolve(path, s.Variable)
		if err != nil {
			return nil, err
		}
		op, err := parseCompareOp(path, s.Op)
		if err != nil {
			return nil, err
		}
		sub, err := buildContent(bc, append(path, "selections"), s.Content)
		if err != nil {
			return nil, err
		}
		sels[i] = content.Selection{InputSlot: slot, Op: op, Value: s.Value, Content: sub}
	}
	def, err := buildContent(bc, append(path, "default"), rs.Default)
	if err != nil {
		return nil, err
	}
	return &content.Switch{Selections: sels, Default: def}, nil
}

func parseCompareOp(path []string, op string) (content.CompareOp, error) {
	switch op {
	case ">":
		return content.OpGT, nil
	case "<":
		return content.OpLT, nil
	case ">=":
		return content.OpGE, nil
	case "<=":
		return content.OpLE, nil
	case "==":
		return content.OpEQ, nil
	case "!=":
		return content.OpNE, nil
	}
	return 0, errAtPath(correrrors.SchemaError, path, "unknown comparison operator %q", op)
}
