// Command correction validates, summarizes, and merges correction JSON
// documents (spec.md §4.7/§6).
package main

import (
	"os"

	"correctionlib.dev/go/cmd/correction/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
