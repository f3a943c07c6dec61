// Package schema loads and validates correction definitions encoded as
// JSON (spec.md §4.5, C5), normalizing legacy schema v1 documents into
// v2 shape in memory and building the content.Content evaluation trees
// that the corrset package wraps into Correction/CorrectionSet objects.
package schema

// Options controls loader leniency and hooks, mirroring the handful of
// module-level knobs the original Python implementation exposes as
// globals (IGNORE_FLOAT_INF) or warnings (deprecated HashPRNG
// distribution names).
type Options struct {
	// IgnoreFloatInf accepts bare (unquoted) Infinity/+Infinity/-Infinity
	// JSON tokens as numeric bin edges, rewriting them to the
	// "inf"/"+inf"/"-inf" string literals before the document is parsed.
	// Python's json module accepts and by default emits those bare
	// tokens for non-finite floats; encoding/json treats them as a
	// syntax error, so without this rewrite a document produced by the
	// reference implementation with a bare Infinity edge never even
	// reaches the schema loader. The quoted "inf"/"+inf"/"-inf" spelling
	// is always accepted regardless of this flag. Default false:
	// matches upstream's IGNORE_FLOAT_INF=False default (see
	// https://github.com/cms-nanoAOD/correctionlib/issues/255).
	IgnoreFloatInf bool

	// RequireSchemaVersion, if nonzero, rejects documents whose
	// schema_version does not equal it. Zero accepts both 1 and 2.
	RequireSchemaVersion int

	// OnDeprecation, if set, is called with a human-readable message
	// whenever the loader encounters a deprecated but still-accepted
	// construct (currently: HashPRNG distribution "stdnormal").
	OnDeprecation func(msg string)
}

func (o Options) deprecated(msg string) {
	if o.OnDeprecation != nil {
		o.OnDeprecation(msg)
	}
}
