package app

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestClearStagingCommand_Registration(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Name() == "clear-staging" {
			found = true
			break
		}
	}

	if !found {
		t.Error("clear-staging command not registered with root command")
	}
}

func TestRunClearStaging(t *testing.T) {
	c := testConfig(t)
	createDB(t, c.DBPath, kitchenSchema)

	var buf bytes.Buffer
	if err := runClearStaging(context.Background(), &buf, c); err != nil {
		t.Fatalf("runClearStaging() error: %v", err)
	}

	if got := buf.String(); got != "Cleared 3 rows from staging table\n" {
		t.Errorf("unexpected output: %q", got)
	}
	if n := countRows(t, c.DBPath, "stg_inventory_items"); n != 0 {
		t.Errorf("staging table should be empty, has %d rows", n)
	}
	if n := countRows(t, c.DBPath, "inventory"); n != 3 {
		t.Errorf("inventory should be untouched, has %d rows", n)
	}

	// A second run clears nothing.
	buf.Reset()
	if err := runClearStaging(context.Background(), &buf, c); err != nil {
		t.Fatalf("runClearStaging() error: %v", err)
	}
	if got := buf.String(); got != "Cleared 0 rows from staging table\n" {
		t.Errorf("unexpected output on second run: %q", got)
	}
}

func TestRunClearStaging_Error(t *testing.T) {
	c := testConfig(t)
	createDB(t, c.DBPath, `
		CREATE TABLE stg_inventory_items (item_description TEXT);
		INSERT INTO stg_inventory_items VALUES ('a'), ('b');
		CREATE TRIGGER keep_rows BEFORE DELETE ON stg_inventory_items
		BEGIN SELECT RAISE(ABORT, 'locked'); END;
	`)

	var buf bytes.Buffer
	if err := runClearStaging(context.Background(), &buf, c); err != nil {
		t.Fatalf("runClearStaging() should report, not return, errors: %v", err)
	}

	if !strings.HasPrefix(buf.String(), "Error clearing staging table: ") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if n := countRows(t, c.DBPath, "stg_inventory_items"); n != 2 {
		t.Errorf("rows should be kept after rollback, has %d", n)
	}
}

func TestRunClearStaging_MissingDatabase(t *testing.T) {
	c := testConfig(t)

	var buf bytes.Buffer
	if err := runClearStaging(context.Background(), &buf, c); err != nil {
		t.Fatalf("runClearStaging() error: %v", err)
	}
	if got := buf.String(); got != "ERROR: Database "+c.DBPath+" does not exist!\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

const pdfSchema = `
	CREATE TABLE stg_pdf_recipes (
		id INTEGER PRIMARY KEY,
		recipe_name TEXT, ingredient_name TEXT, quantity TEXT, unit TEXT,
		cost TEXT, needs_review INTEGER DEFAULT 0
	);
	INSERT INTO stg_pdf_recipes (recipe_name, ingredient_name, quantity, unit, cost, needs_review) VALUES
		('Marinara', 'Tomatoes', '2', 'can', '3.50', 0),
		('Marinara', 'Garlic', '3', 'clove', NULL, 1),
		('Marinara', 'Basil', '1', 'bunch', '', 1),
		('Pesto', 'Pine Nuts', '50', 'g', '0.00', 0);
`

func TestRunInspectStaging(t *testing.T) {
	c := testConfig(t)
	createDB(t, c.StagingDBPath, pdfSchema)

	var buf bytes.Buffer
	if err := runInspectStaging(context.Background(), &buf, c, 10); err != nil {
		t.Fatalf("runInspectStaging() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Marinara", "Pine Nuts", "Recipe"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	last2 := lines[len(lines)-2:]
	if last2[0] != "Rows needing review: 2" || last2[1] != "Missing/zero costs: 3" {
		t.Errorf("last two lines = %q", last2)
	}
}

func TestRunInspectStaging_MissingDatabase(t *testing.T) {
	c := testConfig(t)
	// The primary database existing does not help.
	createDB(t, c.DBPath, kitchenSchema)

	var buf bytes.Buffer
	if err := runInspectStaging(context.Background(), &buf, c, 10); err != nil {
		t.Fatalf("runInspectStaging() error: %v", err)
	}
	if got := buf.String(); got != "ERROR: Database "+c.StagingDBPath+" does not exist!\n" {
		t.Errorf("unexpected output: %q", got)
	}
}
