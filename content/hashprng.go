package content

import "correctionlib.dev/go/hashprng"

// HashPRNG draws a deterministic pseudorandom double keyed on a selected
// subset of the enclosing correction's inputs, spec.md §3/§4.4/§6.
// InputSlots lists, in declaration order, which input slots feed the
// hash key; Order carries the matching kind tag ('r'/'i'/'s') for each
// slot so the canonical byte image can be rebuilt on every Eval without
// re-deriving types from the runtime Value.
type HashPRNG struct {
	InputSlots []int
	Order      []byte
	Dist       hashprng.Distribution
}

func (h *HashPRNG) Eval(ctx *EvalContext) (float64, error) {
	var reals []float64
	var ints []int64
	var strs []string
	for i, slot := range h.InputSlots {
		v := ctx.Inputs[slot]
		switch h.Order[i] {
		case 'r':
			reals = append(reals, v.AsFloat())
		case 'i':
			if v.Type == TypeInt {
				ints = append(ints, v.Int)
			} else {
				ints = append(ints, truncToInt(v.Real))
			}
		case 's':
			strs = append(strs, v.Str)
		}
	}
	key := hashprng.CanonicalBytes(reals, ints, strs, h.Order)
	return hashprng.Draw(key, h.Dist), nil
}
