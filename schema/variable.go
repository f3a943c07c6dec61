package schema

import (
	"correctionlib.dev/go/content"
	"correctionlib.dev/go/correrrors"
)

// Variable is a named, typed input or output slot on a Correction or
// CompoundCorrection, spec.md §3.
type Variable struct {
	Name        string
	Type        content.VarType
	Description string
}

func parseVarType(path []string, s string) (content.VarType, error) {
	switch s {
	case "string":
		return content.TypeString, nil
	case "int":
		return content.TypeInt, nil
	case "real":
		return content.TypeReal, nil
	}
	return 0, errAtPath(correrrors.SchemaError, path, "unknown variable type %q", s)
}

func buildVariable(path []string, rv rawVariable) (Variable, error) {
	t, err := parseVarType(append(append([]string{}, path...), "type"), rv.Type)
	if err != nil {
		return Variable{}, err
	}
	desc := ""
	if rv.Description != nil {
		desc = *rv.Description
	}
	return Variable{Name: rv.Name, Type: t, Description: desc}, nil
}

// slotIndex is a small helper shared by the builder: it resolves an
// input name to its declared slot, returning a REFERENCE_ERROR if the
// name was never declared on the enclosing Correction.
func slotIndex(names map[string]int, path []string, name string) (int, error) {
	idx, ok := names[name]
	if !ok {
		return 0, errAtPath(correrrors.ReferenceError, path, "input %q not found among declared inputs", name)
	}
	return idx, nil
}
