// Package output provides terminal output utilities for recipeops.
//
// This package includes:
//   - Table rendering for exports, verification results and inspection samples
//   - Progress bars and spinners for long-running dumps and replays
//   - Human-readable formatting for sizes and dates
//
// Colour is only emitted when stdout is a terminal and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/recipeops/internal/exporter"
	"github.com/blackwell-systems/recipeops/internal/staging"
)

// ANSI color codes for pass/fail markers
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderExportTable renders the exports found in the export directory.
// Expects files pre-sorted newest first, as returned by Exporter.List.
func RenderExportTable(files []*exporter.ExportFile) string {
	if len(files) == 0 {
		return "No exports found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-40s %-20s %-10s %s\n",
		"File", "Created", "Size", "Age"))
	sb.WriteString(strings.Repeat("─", 86))
	sb.WriteString("\n")

	for _, f := range files {
		sb.WriteString(fmt.Sprintf("%-40s %-20s %-10s %s\n",
			truncate(f.Name, 40),
			f.CreatedAt.Format("2006-01-02 15:04:05"),
			formatSize(f.Size),
			formatRelativeTime(f.CreatedAt)))
	}

	return sb.String()
}

// RenderVerifyTable renders the comparison of live and replayed row counts.
func RenderVerifyTable(checks []exporter.TableCheck) string {
	if len(checks) == 0 {
		return "No tables to compare.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("   %-32s %10s %10s\n", "Table", "Live", "Replayed"))
	sb.WriteString(strings.Repeat("─", 56))
	sb.WriteString("\n")

	for _, c := range checks {
		mark := colorize(colorGreen, "✓")
		if !c.Match() {
			mark = colorize(colorRed, "✗")
		}
		sb.WriteString(fmt.Sprintf("%s  %-32s %10s %10s\n",
			mark, truncate(c.Name, 32), formatCount(c.Live), formatCount(c.Replayed)))
	}

	return sb.String()
}

// RenderColumns renders rows under header with every column padded to its
// widest cell.
func RenderColumns(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := utf8.RuneCountInString(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(widths)-1 {
				sb.WriteString(padLeft(cell, widths[i]))
			} else {
				sb.WriteString(padRight(cell, widths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	total := 0
	for _, w := range widths {
		total += w
	}
	sb.WriteString(strings.Repeat("─", total+2*(len(widths)-1)))
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

// RenderPDFStagingTable renders sample rows of the PDF staging table in
// fixed-width columns.
func RenderPDFStagingTable(rows []staging.PDFRecipeRow) string {
	if len(rows) == 0 {
		return "No rows in staging table.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-25s %-25s %-10s %-8s %-8s %s\n",
		"Recipe", "Ingredient", "Quantity", "Unit", "Cost", "Review"))
	sb.WriteString(strings.Repeat("─", 86))
	sb.WriteString("\n")

	for _, r := range rows {
		review := ""
		if r.NeedsReview {
			review = "yes"
		}
		sb.WriteString(fmt.Sprintf("%-25s %-25s %-10s %-8s %-8s %s\n",
			truncate(nullString(r.RecipeName.String, r.RecipeName.Valid), 25),
			truncate(nullString(r.IngredientName.String, r.IngredientName.Valid), 25),
			truncate(nullString(r.Quantity.String, r.Quantity.Valid), 10),
			truncate(nullString(r.Unit.String, r.Unit.Valid), 8),
			truncate(nullString(r.Cost.String, r.Cost.Valid), 8),
			review))
	}

	return sb.String()
}

func nullString(s string, valid bool) string {
	if !valid {
		return "NULL"
	}
	return s
}

func formatCount(n int64) string {
	if n < 0 {
		return colorize(colorGray, "missing")
	}
	return humanize.Comma(n)
}

// formatSize converts bytes to a human-readable size.
func formatSize(bytes int64) string {
	if bytes < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}

// formatRelativeTime formats a timestamp relative to now ("3 hours ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// truncate shortens s to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func padLeft(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
