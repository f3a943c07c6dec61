package cmd

import (
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// readCorrectionFile reads a correction JSON document from path,
// transparently decompressing it if the name ends in ".gz" (the
// upstream tool's convention for shipping large CorrectionSets).
func readCorrectionFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
