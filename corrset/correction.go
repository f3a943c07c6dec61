// Package corrset implements the top-level orchestration layer over
// loaded correction trees (spec.md C1/C6/C8): binding caller-supplied
// arguments to a Correction's declared inputs, evaluating its content
// tree, stacking CompoundCorrections, and summarizing a correction's
// shape for human inspection.
package corrset

import (
	"fmt"

	"correctionlib.dev/go/content"
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/schema"
)

// Correction is one evaluatable correction, spec.md §3/§4.7.
type Correction struct {
	built *schema.BuiltCorrection
}

func newCorrection(built *schema.BuiltCorrection) *Correction {
	return &Correction{built: built}
}

func (c *Correction) Name() string                { return c.built.Name }
func (c *Correction) Description() string         { return c.built.Description }
func (c *Correction) Version() int                 { return c.built.Version }
func (c *Correction) Inputs() []schema.Variable    { return c.built.Inputs }
func (c *Correction) Output() schema.Variable      { return c.built.Output }

// Evaluate binds args positionally to this correction's declared
// inputs and evaluates its content tree. args must have exactly
// len(Inputs()) elements, each a string, an integer (any int/int64
// width), or a float64, matching the corresponding input's declared
// type; mismatches return WRONG_ARITY or WRONG_TYPE errors naming the
// offending index (spec.md §7).
func (c *Correction) Evaluate(args ...interface{}) (float64, error) {
	if len(args) != len(c.built.Inputs) {
		return 0, correrrors.New(correrrors.WrongArity,
			"correction %q expects %d argument(s), got %d", c.built.Name, len(c.built.Inputs), len(args))
	}
	values := make([]content.Value, len(args))
	for i, a := range args {
		v, err := bindArgument(c.built.Inputs[i], i, a)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}
	ctx := &content.EvalContext{Inputs: values}
	return c.built.Root.Eval(ctx)
}

func bindArgument(decl schema.Variable, index int, a interface{}) (content.Value, error) {
	switch decl.Type {
	case content.TypeString:
		s, ok := a.(string)
		if !ok {
			return content.Value{}, wrongType(index, decl, a)
		}
		return content.StringValue(s), nil
	case content.TypeInt:
		i, ok := asInt64(a)
		if !ok {
			return content.Value{}, wrongType(index, decl, a)
		}
		return content.IntValue(i), nil
	case content.TypeReal:
		f, ok := asFloat64(a)
		if !ok {
			return content.Value{}, wrongType(index, decl, a)
		}
		return content.RealValue(f), nil
	}
	panic("corrset: unreachable variable type")
}

func asInt64(a interface{}) (int64, bool) {
	switch v := a.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}

func asFloat64(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func wrongType(index int, decl schema.Variable, got interface{}) error {
	return correrrors.New(correrrors.WrongType,
		"argument %d (%s): expected %s, got %T", index, decl.Name, decl.Type, got)
}

// String implements fmt.Stringer with a brief one-line identification,
// useful in logs and error messages.
func (c *Correction) String() string {
	return fmt.Sprintf("Correction(%s, v%d)", c.built.Name, c.built.Version)
}
