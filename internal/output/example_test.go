package output_test

import (
	"bytes"
	"fmt"

	"github.com/blackwell-systems/recipeops/internal/output"
)

// Example showing how to render inspection samples
func ExampleRenderColumns() {
	table := output.RenderColumns(
		[]string{"Item", "Current Price"},
		[][]string{
			{"Flour", "12.50"},
			{"Olive Oil", "8.00"},
		},
	)
	fmt.Print(table)
	// Output:
	// Item       Current Price
	// ────────────────────────
	// Flour              12.50
	// Olive Oil           8.00
}

// Example showing the progress bar driven the way a dump drives it
func ExampleProgressBar() {
	var buf bytes.Buffer
	progress := output.NewProgress("Dumping tables", &buf)

	tables := []string{"inventory", "recipes", "menus"}
	progress.Start(len(tables))
	for _, name := range tables {
		progress.Table(name)
	}
	progress.Finish()

	fmt.Print(buf.String())
	// Output:
	// [##############################] 100% Dumping tables (3/3)
}
