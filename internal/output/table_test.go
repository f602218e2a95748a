package output

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/recipeops/internal/exporter"
	"github.com/blackwell-systems/recipeops/internal/staging"
)

func TestRenderExportTable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		files    []*exporter.ExportFile
		contains []string
	}{
		{
			name:     "no exports",
			files:    nil,
			contains: []string{"No exports found"},
		},
		{
			name: "two exports",
			files: []*exporter.ExportFile{
				{
					Name:      "database_export_20240315_102030.sql",
					Size:      1536,
					CreatedAt: now.Add(-2 * time.Hour),
				},
				{
					Name:      "database_export_20240314_080000.sql",
					Size:      3 * 1024 * 1024,
					CreatedAt: now.Add(-26 * time.Hour),
				},
			},
			contains: []string{
				"File", "Created", "Size", "Age",
				"database_export_20240315_102030.sql",
				"1.5 KiB",
				"3.0 MiB",
				"2 hours ago",
				"1 day ago",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderExportTable(tt.files)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("RenderExportTable() missing %q\nGot:\n%s", want, result)
				}
			}
		})
	}
}

func TestRenderVerifyTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	result := RenderVerifyTable([]exporter.TableCheck{
		{Name: "inventory", Live: 1200, Replayed: 1200},
		{Name: "recipes", Live: 5, Replayed: 4},
		{Name: "menus", Live: 2, Replayed: -1},
	})

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header, rule and 3 rows, got %d lines:\n%s", len(lines), result)
	}
	if !strings.HasPrefix(lines[2], "✓") || !strings.Contains(lines[2], "1,200") {
		t.Errorf("matching row should be marked ✓ with grouped count, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "✗") {
		t.Errorf("drifted row should be marked ✗, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "missing") {
		t.Errorf("absent table should read missing, got %q", lines[4])
	}

	if got := RenderVerifyTable(nil); !strings.Contains(got, "No tables") {
		t.Errorf("empty verify table = %q", got)
	}
}

func TestRenderColumns_PadsToWidestCell(t *testing.T) {
	result := RenderColumns(
		[]string{"Recipe", "Ingredient", "Cost"},
		[][]string{
			{"Bread", "Flour", "1.25"},
			{"Chocolate Cake", "Cocoa", "12.00"},
		},
	)

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), result)
	}
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Errorf("line %d width = %d, want %d: %q", i, n, width, l)
		}
	}
	if !strings.HasSuffix(lines[2], " 1.25") {
		t.Errorf("last column should be right-aligned, got %q", lines[2])
	}
}

func TestRenderColumns_ShortRows(t *testing.T) {
	result := RenderColumns([]string{"A", "B"}, [][]string{{"only"}})
	if !strings.Contains(result, "only") {
		t.Errorf("short row should still render, got %q", result)
	}
}

func TestRenderPDFStagingTable(t *testing.T) {
	rows := []staging.PDFRecipeRow{
		{
			RecipeName:     sql.NullString{String: "Marinara", Valid: true},
			IngredientName: sql.NullString{String: "San Marzano Tomatoes", Valid: true},
			Quantity:       sql.NullString{String: "2", Valid: true},
			Unit:           sql.NullString{String: "can", Valid: true},
			Cost:           sql.NullString{String: "0", Valid: true},
			NeedsReview:    true,
		},
		{
			RecipeName:     sql.NullString{String: "Marinara", Valid: true},
			IngredientName: sql.NullString{String: "Garlic", Valid: true},
		},
	}

	result := RenderPDFStagingTable(rows)
	for _, want := range []string{"Recipe", "Ingredient", "San Marzano Tomatoes", "yes", "NULL"} {
		if !strings.Contains(result, want) {
			t.Errorf("RenderPDFStagingTable() missing %q\nGot:\n%s", want, result)
		}
	}

	if got := RenderPDFStagingTable(nil); !strings.Contains(got, "No rows") {
		t.Errorf("empty staging table = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"crème brûlée au caramel", 10, "crème b..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatRelativeTime_Zero(t *testing.T) {
	if got := formatRelativeTime(time.Time{}); got != "never" {
		t.Errorf("formatRelativeTime(zero) = %q, want never", got)
	}
}

func TestIsColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if IsColorEnabled() {
		t.Error("IsColorEnabled() should be false when NO_COLOR is set")
	}
	if got := colorize(colorRed, "x"); got != "x" {
		t.Errorf("colorize() with color disabled = %q", got)
	}
}
