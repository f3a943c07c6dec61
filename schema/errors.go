package schema

import (
	"strings"

	"correctionlib.dev/go/correrrors"
)

// errAtPath builds a correrrors.Error of the given kind, tagged with a
// JSON-path location formed by joining path's segments with ".".
func errAtPath(kind correrrors.Kind, path []string, format string, args ...interface{}) error {
	err := correrrors.Newf(kind, format, args...)
	return correrrors.WithPath(err, strings.Join(path, "."), kind)
}
