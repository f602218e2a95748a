package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/recipeops/internal/config"
	"github.com/blackwell-systems/recipeops/internal/store"
)

// testConfig returns a config whose paths all live under a fresh temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := config.Default()
	c.DBPath = filepath.Join(dir, config.DefaultDB)
	c.StagingDBPath = filepath.Join(dir, config.DefaultStagingDB)
	c.ExportDir = filepath.Join(dir, config.DefaultExportDir)
	c.AppSource = filepath.Join(dir, config.DefaultAppSource)
	return c
}

// createDB creates a database at path and runs schema against it.
func createDB(t *testing.T, path, schema string) {
	t.Helper()
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer st.Close()

	if schema == "" {
		return
	}
	if _, err := st.DB().Exec(schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
}

// countRows returns the number of rows in table.
func countRows(t *testing.T, path, table string) int64 {
	t.Helper()
	st, err := store.OpenReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer st.Close()

	n, err := st.CountRows(context.Background(), table)
	if err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

const kitchenSchema = `
	CREATE TABLE inventory (id INTEGER PRIMARY KEY AUTOINCREMENT, item_description TEXT, current_price REAL, last_purchased_price REAL);
	CREATE TABLE recipes (id INTEGER PRIMARY KEY, name TEXT, food_cost REAL);
	CREATE TABLE recipe_ingredients (ingredient_name TEXT, quantity REAL, unit_of_measure TEXT, cost REAL);
	CREATE TABLE stg_inventory_items (item_description TEXT, price REAL);
	INSERT INTO inventory (item_description, current_price, last_purchased_price) VALUES
		('Flour', 24.5, 23.0), ('Butter', 3.1, NULL), ('Salt', 0, 0);
	INSERT INTO recipes (name, food_cost) VALUES ('Bread', 1.2), ('Soup', 0);
	INSERT INTO stg_inventory_items VALUES ('a', 1), ('b', 2), ('c', 3);
`

// chdir changes the working directory to dir and restores it when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
