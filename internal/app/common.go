package app

import (
	"fmt"
	"io"
)

// printMissingDatabase writes the one-line diagnostic shown when a database
// file is absent. Commands return nil afterwards so the exit code stays 0.
func printMissingDatabase(w io.Writer, path string) {
	fmt.Fprintf(w, "ERROR: Database %s does not exist!\n", path)
}

// printMissingFile is printMissingDatabase for non-database inputs.
func printMissingFile(w io.Writer, path string) {
	fmt.Fprintf(w, "ERROR: File %s does not exist!\n", path)
}
