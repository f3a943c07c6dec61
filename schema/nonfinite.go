package schema

// rewriteBareNonFiniteLiterals rewrites bare Infinity/+Infinity/-Infinity
// JSON tokens into the quoted "inf"/"-inf" string literals that
// rawEdges.UnmarshalJSON already understands. Python's json module
// accepts (and by default emits) those bare tokens for non-finite
// floats; encoding/json does not, so a document written by the
// reference implementation with a bare Infinity edge fails at the very
// first json.Unmarshal call in Load, long before Options.IgnoreFloatInf
// or buildEdges ever see it. This preprocessing step is what makes the
// flag reach anything at all.
//
// It only rewrites tokens found outside JSON string literals, so a
// description field that happens to mention "Infinity" is left alone.
// Bare NaN tokens are deliberately left untouched and still fail to
// parse: rawEdges has no string spelling for NaN and buildEdges rejects
// it unconditionally, regardless of IgnoreFloatInf (see DESIGN.md).
//
// This does not help oversized numeric literals like 1e400: those are
// syntactically valid JSON numbers that encoding/json simply refuses to
// convert to float64 (strconv.ParseFloat reports ErrRange), a different
// failure mode than a misspelled token and out of scope for this flag.
func rewriteBareNonFiniteLiterals(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString := false
	for i := 0; i < len(data); {
		b := data[i]
		if inString {
			out = append(out, b)
			if b == '\\' && i+1 < len(data) {
				out = append(out, data[i+1])
				i += 2
				continue
			}
			if b == '"' {
				inString = false
			}
			i++
			continue
		}
		if b == '"' {
			inString = true
			out = append(out, b)
			i++
			continue
		}
		if repl, n, ok := matchBareNonFiniteToken(data[i:]); ok {
			out = append(out, repl...)
			i += n
			continue
		}
		out = append(out, b)
		i++
	}
	return out
}

// matchBareNonFiniteToken reports whether rest begins with a bare
// Infinity token, returning its JSON string-literal replacement and the
// number of input bytes it consumed.
func matchBareNonFiniteToken(rest []byte) (repl string, n int, ok bool) {
	for _, cand := range []struct {
		word string
		repl string
	}{
		{"-Infinity", `"-inf"`},
		{"+Infinity", `"inf"`},
		{"Infinity", `"inf"`},
	} {
		if hasTokenPrefix(rest, cand.word) {
			return cand.repl, len(cand.word), true
		}
	}
	return "", 0, false
}

// hasTokenPrefix reports whether rest starts with word and word is not
// itself a prefix of a longer bareword (guards against JSON containing
// some other bareword that happens to start with "Infinity"; no such
// token exists in valid JSON, but this keeps the scan honest).
func hasTokenPrefix(rest []byte, word string) bool {
	if len(rest) < len(word) || string(rest[:len(word)]) != word {
		return false
	}
	if len(rest) == len(word) {
		return true
	}
	c := rest[len(word)]
	return !isBarewordByte(c)
}

func isBarewordByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
