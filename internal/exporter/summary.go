package exporter

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// WriteSummary prints the human-readable report of a completed export.
func WriteSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "✓ Database exported to: %s\n", r.Path)
	fmt.Fprintf(w, "  Mirrored to: %s\n", r.LatestPath)
	fmt.Fprintf(w, "  File size: %s bytes\n", humanize.Comma(r.Size))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tables exported: %d\n", len(r.Tables))
	for _, t := range r.Tables {
		fmt.Fprintf(w, "  %s: %d records\n", t.Name, t.Rows)
	}
}
