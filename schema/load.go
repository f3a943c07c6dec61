package schema

import (
	"encoding/json"

	"correctionlib.dev/go/correrrors"
)

// CompoundCorrectionDef is the resolved form of a CompoundCorrection
// entry, spec.md §4.7: a name/description/stack of component
// correction names plus the accumulation policy for updating inputs and
// combining outputs across the stack. Evaluating it is corrset's job;
// schema only validates shape and resolves Variable types.
type CompoundCorrectionDef struct {
	Name         string
	Description  string
	Inputs       []Variable
	Output       Variable
	InputsUpdate []string
	InputOp      string
	OutputOp     string
	Stack        []string
}

// CorrectionSet is the fully loaded, validated contents of one
// correction JSON document, spec.md §4.7/C8.
type CorrectionSet struct {
	SchemaVersion       int
	Description         string
	Corrections         []*BuiltCorrection
	CompoundCorrections []CompoundCorrectionDef
}

// Load parses and validates a correction JSON document, normalizing a
// legacy schema v1 document to v2 shape first if needed, per spec.md
// §4.5. The returned CorrectionSet's content trees are fully resolved
// and ready to evaluate.
func Load(data []byte, opts Options) (*CorrectionSet, error) {
	if opts.IgnoreFloatInf {
		data = rewriteBareNonFiniteLiterals(data)
	}

	var probe struct {
		SchemaVersion int `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, correrrors.Wrap(err, correrrors.SchemaError, "invalid JSON: %s", err)
	}
	if opts.RequireSchemaVersion != 0 && probe.SchemaVersion != opts.RequireSchemaVersion {
		return nil, correrrors.Newf(correrrors.SchemaError,
			"document schema_version %d does not match required version %d", probe.SchemaVersion, opts.RequireSchemaVersion)
	}

	var rcs *rawCorrectionSet
	switch probe.SchemaVersion {
	case 1:
		var docV1 rawCorrectionSetV1
		if err := json.Unmarshal(data, &docV1); err != nil {
			return nil, correrrors.Wrap(err, correrrors.SchemaError, "decoding v1 document: %s", err)
		}
		normalized, err := normalizeV1(&docV1)
		if err != nil {
			return nil, err
		}
		rcs = normalized
	case 2:
		var doc rawCorrectionSet
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, correrrors.Wrap(err, correrrors.SchemaError, "decoding v2 document: %s", err)
		}
		rcs = &doc
	default:
		return nil, correrrors.Newf(correrrors.SchemaError, "unsupported schema_version %d", probe.SchemaVersion)
	}

	return buildCorrectionSet(rcs, opts)
}

func buildCorrectionSet(rcs *rawCorrectionSet, opts Options) (*CorrectionSet, error) {
	names := make(map[string]bool, len(rcs.Corrections))
	corrections := make([]*BuiltCorrection, len(rcs.Corrections))
	for i, rc := range rcs.Corrections {
		if names[rc.Name] {
			return nil, correrrors.Newf(correrrors.InvariantError, "corrections must have unique names, found duplicate %q", rc.Name)
		}
		names[rc.Name] = true
		built, err := buildCorrection(rc, opts)
		if err != nil {
			return nil, err
		}
		corrections[i] = built
	}

	ccNames := make(map[string]bool, len(rcs.CompoundCorrections))
	compound := make([]CompoundCorrectionDef, len(rcs.CompoundCorrections))
	for i, rcc := range rcs.CompoundCorrections {
		if ccNames[rcc.Name] {
			return nil, correrrors.Newf(correrrors.InvariantError, "compound corrections must have unique names, found duplicate %q", rcc.Name)
		}
		ccNames[rcc.Name] = true
		def, err := buildCompoundCorrection(rcc, names)
		if err != nil {
			return nil, err
		}
		compound[i] = def
	}

	return &CorrectionSet{
		SchemaVersion:       rcs.SchemaVersion,
		Description:         strOr(rcs.Description),
		Corrections:         corrections,
		CompoundCorrections: compound,
	}, nil
}

func buildCompoundCorrection(rcc rawCompoundCorrection, correctionNames map[string]bool) (CompoundCorrectionDef, error) {
	path := []string{"compound_corrections", rcc.Name}
	inputs := make([]Variable, len(rcc.Inputs))
	inputNames := make(map[string]bool, len(rcc.Inputs))
	for i, rv := range rcc.Inputs {
		v, err := buildVariable(append(path, "inputs"), rv)
		if err != nil {
			return CompoundCorrectionDef{}, err
		}
		inputs[i] = v
		inputNames[v.Name] = true
	}
	output, err := buildVariable(append(path, "output"), rcc.Output)
	if err != nil {
		return CompoundCorrectionDef{}, err
	}
	for _, u := range rcc.InputsUpdate {
		if !inputNames[u] {
			return CompoundCorrectionDef{}, errAtPath(correrrors.ReferenceError, path,
				"inputs_update references undeclared input %q", u)
		}
	}
	switch rcc.InputOp {
	case "+", "*", "/":
	default:
		return CompoundCorrectionDef{}, errAtPath(correrrors.SchemaError, path, "unknown input_op %q", rcc.InputOp)
	}
	switch rcc.OutputOp {
	case "+", "*", "/", "last":
	default:
		return CompoundCorrectionDef{}, errAtPath(correrrors.SchemaError, path, "unknown output_op %q", rcc.OutputOp)
	}
	if len(rcc.Stack) == 0 {
		return CompoundCorrectionDef{}, errAtPath(correrrors.InvariantError, path, "compound correction stack must not be empty")
	}
	for _, name := range rcc.Stack {
		if !correctionNames[name] {
			return CompoundCorrectionDef{}, errAtPath(correrrors.ReferenceError, path,
				"stack references undeclared correction %q", name)
		}
	}
	return CompoundCorrectionDef{
		Name:         rcc.Name,
		Description:  strOr(rcc.Description),
		Inputs:       inputs,
		Output:       output,
		InputsUpdate: rcc.InputsUpdate,
		InputOp:      rcc.InputOp,
		OutputOp:     rcc.OutputOp,
		Stack:        rcc.Stack,
	}, nil
}

// ByName returns the Correction with the given name, or false if none
// is declared.
func (cs *CorrectionSet) ByName(name string) (*BuiltCorrection, bool) {
	for _, c := range cs.Corrections {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// CompoundByName returns the CompoundCorrectionDef with the given name,
// or false if none is declared.
func (cs *CorrectionSet) CompoundByName(name string) (*CompoundCorrectionDef, bool) {
	for i := range cs.CompoundCorrections {
		if cs.CompoundCorrections[i].Name == name {
			return &cs.CompoundCorrections[i], true
		}
	}
	return nil, false
}
