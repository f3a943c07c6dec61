package corrset

import (
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/schema"
)

// CompoundCorrection evaluates a fixed stack of component Corrections
// in sequence, threading an accumulated value into a subset of the
// stack's inputs between stages and combining each stage's output into
// a running result, spec.md §4.7.
type CompoundCorrection struct {
	def   *schema.CompoundCorrectionDef
	stack []*Correction
}

func (cc *CompoundCorrection) Name() string             { return cc.def.Name }
func (cc *CompoundCorrection) Description() string      { return cc.def.Description }
func (cc *CompoundCorrection) Inputs() []schema.Variable { return cc.def.Inputs }
func (cc *CompoundCorrection) Output() schema.Variable   { return cc.def.Output }

// Evaluate binds args positionally to this compound correction's
// declared inputs, then runs the component stack: after each stage,
// every input named in inputs_update is combined with that stage's
// output via input_op, and the updated value feeds the later stages;
// after all stages, the combined per-stage outputs (via output_op) are
// returned.
func (cc *CompoundCorrection) Evaluate(args ...interface{}) (float64, error) {
	if len(args) != len(cc.def.Inputs) {
		return 0, correrrors.New(correrrors.WrongArity,
			"compound correction %q expects %d argument(s), got %d", cc.def.Name, len(cc.def.Inputs), len(args))
	}
	values := make(map[string]interface{}, len(cc.def.Inputs))
	for i, v := range cc.def.Inputs {
		values[v.Name] = args[i]
	}
	updateSet := make(map[string]bool, len(cc.def.InputsUpdate))
	for _, n := range cc.def.InputsUpdate {
		updateSet[n] = true
	}

	outputAccum := identityFor(cc.def.OutputOp)
	haveOutput := false

	for _, corr := range cc.stack {
		stageArgs := make([]interface{}, len(corr.built.Inputs))
		for i, in := range corr.built.Inputs {
			v, ok := values[in.Name]
			if !ok {
				return 0, correrrors.New(correrrors.ReferenceError,
					"compound correction %q: component %q requires input %q not available at this stage",
					cc.def.Name, corr.Name(), in.Name)
			}
			stageArgs[i] = v
		}
		result, err := corr.Evaluate(stageArgs...)
		if err != nil {
			return 0, err
		}

		outputAccum = combine(cc.def.OutputOp, outputAccum, result, haveOutput)
		haveOutput = true

		for name := range updateSet {
			cur, ok := asFloat64(values[name])
			if !ok {
				continue
			}
			values[name] = combine(cc.def.InputOp, cur, result, true)
		}
	}
	return outputAccum, nil
}

// identityFor returns the accumulator seed matching op's identity
// element: 0 for "+", 1 for "*"/"/", and an arbitrary placeholder for
// "last" since its first combine call always overwrites it.
func identityFor(op string) float64 {
	switch op {
	case "*", "/":
		return 1
	default:
		return 0
	}
}

func combine(op string, acc, next float64, haveAcc bool) float64 {
	switch op {
	case "+":
		return acc + next
	case "*":
		return acc * next
	case "/":
		return acc / next
	case "last":
		return next
	}
	panic("corrset: unknown accumulation op " + op)
}
