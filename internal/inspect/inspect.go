// Package inspect reports how much price data the primary database holds.
//
// Four categories are checked: inventory rows with a positive current price,
// inventory rows with a positive last purchased price, recipes with a positive
// food cost, and recipe ingredients with a positive cost. Each category yields
// a count and up to SampleSize example rows.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/blackwell-systems/recipeops/internal/store"
)

// SampleSize is the maximum number of example rows per category.
const SampleSize = 5

// Category is the result of one price check.
type Category struct {
	Title   string
	Count   int64
	Header  []string
	Samples [][]string
}

type check struct {
	title   string
	table   string
	column  string
	labels  []string // candidate label columns, first existing wins
	extras  []string // shown between label and price
	heading string
}

var checks = []check{
	{
		title:   "Inventory items with current_price > 0",
		table:   "inventory",
		column:  "current_price",
		labels:  []string{"item_description"},
		heading: "Current Price",
	},
	{
		title:   "Inventory items with last_purchased_price > 0",
		table:   "inventory",
		column:  "last_purchased_price",
		labels:  []string{"item_description"},
		heading: "Last Purchased",
	},
	{
		title:   "Recipes with food_cost > 0",
		table:   "recipes",
		column:  "food_cost",
		labels:  []string{"recipe_name", "name", "title"},
		heading: "Food Cost",
	},
	{
		title:   "Recipe ingredients with cost > 0",
		table:   "recipe_ingredients",
		column:  "cost",
		labels:  []string{"ingredient_name"},
		extras:  []string{"quantity", "unit_of_measure"},
		heading: "Cost",
	},
}

// Run executes every price check against st. Query errors are returned as-is.
func Run(ctx context.Context, st *store.Store) ([]Category, error) {
	categories := make([]Category, 0, len(checks))
	for _, c := range checks {
		cat, err := c.run(ctx, st)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *cat)
	}
	return categories, nil
}

func (c check) run(ctx context.Context, st *store.Store) (*Category, error) {
	table := store.QuoteIdent(c.table)
	column := store.QuoteIdent(c.column)

	cat := &Category{Title: c.title}
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s > 0", table, column)
	if err := st.DB().QueryRowContext(ctx, query).Scan(&cat.Count); err != nil {
		return nil, fmt.Errorf("failed to count %s.%s: %w", c.table, c.column, err)
	}
	if cat.Count == 0 {
		return cat, nil
	}

	label, err := c.labelColumn(ctx, st)
	if err != nil {
		return nil, err
	}

	cols := append([]string{label}, c.extras...)
	exprs := make([]string, len(cols))
	for i, col := range cols {
		exprs[i] = store.QuoteIdent(col)
	}
	exprs = append(exprs, column)

	query = fmt.Sprintf("SELECT %s FROM %s WHERE %s > 0 LIMIT %d",
		strings.Join(exprs, ", "), table, column, SampleSize)
	rows, err := st.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", c.table, err)
	}
	defer rows.Close()

	cat.Header = append(headerNames(cols), c.heading)
	for rows.Next() {
		text := make([]sql.NullString, len(cols))
		var price sql.NullFloat64

		dest := make([]any, 0, len(cols)+1)
		for i := range text {
			dest = append(dest, &text[i])
		}
		dest = append(dest, &price)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s sample: %w", c.table, err)
		}

		row := make([]string, 0, len(dest))
		for _, t := range text {
			row = append(row, nullText(t))
		}
		row = append(row, FormatMoney(price))
		cat.Samples = append(cat.Samples, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s samples: %w", c.table, err)
	}

	return cat, nil
}

// labelColumn picks the first candidate label column present in the table,
// falling back to rowid.
func (c check) labelColumn(ctx context.Context, st *store.Store) (string, error) {
	cols, err := st.Columns(ctx, c.table)
	if err != nil {
		return "", err
	}

	present := make(map[string]bool, len(cols))
	for _, col := range cols {
		present[strings.ToLower(col.Name)] = true
	}
	for _, candidate := range c.labels {
		if present[candidate] {
			return candidate, nil
		}
	}
	return "rowid", nil
}

// FormatMoney renders a price with two decimals, or "-" when NULL.
func FormatMoney(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", v.Float64)
}

func nullText(v sql.NullString) string {
	if !v.Valid {
		return "-"
	}
	return v.String
}

func headerNames(cols []string) []string {
	names := make([]string, len(cols))
	for i, col := range cols {
		switch col {
		case "item_description":
			names[i] = "Item"
		case "recipe_name", "name", "title":
			names[i] = "Recipe"
		case "ingredient_name":
			names[i] = "Ingredient"
		case "unit_of_measure":
			names[i] = "Unit"
		case "quantity":
			names[i] = "Qty"
		default:
			names[i] = col
		}
	}
	return names
}
