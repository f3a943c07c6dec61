package content

// Transform computes a replacement value for one input slot via Rule,
// substitutes it into that slot for the duration of evaluating Content,
// and restores the original binding afterward, per spec.md §4.4/§4.8.
// When the target slot is integer-typed, Rule's float64 result is
// rounded to the nearest integer before it is rebound (truncToInt).
type Transform struct {
	InputSlot  int
	TargetType VarType
	Rule       Content
	Content    Content
}

func (t *Transform) Eval(ctx *EvalContext) (float64, error) {
	replacement, err := t.Rule.Eval(ctx)
	if err != nil {
		return 0, err
	}

	saved := ctx.Inputs[t.InputSlot]
	switch t.TargetType {
	case TypeInt:
		ctx.Inputs[t.InputSlot] = IntValue(truncToInt(replacement))
	default:
		ctx.Inputs[t.InputSlot] = RealValue(replacement)
	}
	defer func() { ctx.Inputs[t.InputSlot] = saved }()

	return t.Content.Eval(ctx)
}
