package staging

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/blackwell-systems/recipeops/internal/store"
)

// PDFRecipesTable holds recipe rows parsed from uploaded PDFs.
const PDFRecipesTable = "stg_pdf_recipes"

// DefaultSampleSize is how many rows InspectPDFRecipes samples by default.
const DefaultSampleSize = 10

// PDFRecipeRow is one parsed ingredient line of a PDF recipe.
type PDFRecipeRow struct {
	RecipeName     sql.NullString
	IngredientName sql.NullString
	Quantity       sql.NullString
	Unit           sql.NullString
	Cost           sql.NullString
	NeedsReview    bool
}

// PDFReport summarizes the PDF staging table.
type PDFReport struct {
	Samples     []PDFRecipeRow
	NeedsReview int64
	MissingCost int64 // cost NULL, '', '0' or '0.00'
}

// InspectPDFRecipes reads up to limit sample rows from the PDF staging table
// and counts the rows needing review and the rows with a missing or zero cost.
func InspectPDFRecipes(ctx context.Context, st *store.Store, limit int) (*PDFReport, error) {
	if limit <= 0 {
		limit = DefaultSampleSize
	}

	query := `
		SELECT recipe_name, ingredient_name, quantity, unit, cost, COALESCE(needs_review, 0)
		FROM stg_pdf_recipes
		LIMIT ?
	`

	rows, err := st.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", PDFRecipesTable, err)
	}
	defer rows.Close()

	report := &PDFReport{}
	for rows.Next() {
		var (
			row         PDFRecipeRow
			needsReview int64
		)
		if err := rows.Scan(&row.RecipeName, &row.IngredientName, &row.Quantity,
			&row.Unit, &row.Cost, &needsReview); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", PDFRecipesTable, err)
		}
		row.NeedsReview = needsReview == 1
		report.Samples = append(report.Samples, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", PDFRecipesTable, err)
	}

	err = st.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stg_pdf_recipes WHERE needs_review = 1`).Scan(&report.NeedsReview)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows needing review: %w", err)
	}

	err = st.DB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM stg_pdf_recipes
		WHERE cost IS NULL OR cost IN ('', '0', '0.00')
	`).Scan(&report.MissingCost)
	if err != nil {
		return nil, fmt.Errorf("failed to count missing costs: %w", err)
	}

	return report, nil
}
