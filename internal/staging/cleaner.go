// Package staging manages the Application's transient import tables:
// clearing the inventory staging table and inspecting parsed PDF recipes.
package staging

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/recipeops/internal/logger"
	"github.com/blackwell-systems/recipeops/internal/store"
)

// InventoryTable holds inventory rows awaiting import. Its rows are safe to
// delete at any time.
const InventoryTable = "stg_inventory_items"

// ClearInventory deletes every row of the inventory staging table inside one
// transaction and returns the number of rows removed. On failure the
// transaction is rolled back and the table is left as it was.
func ClearInventory(ctx context.Context, st *store.Store) (int64, error) {
	tx, err := st.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM "+store.QuoteIdent(InventoryTable))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to delete staging rows: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	logger.Debug("cleared staging table", "table", InventoryTable, "rows", n)
	return n, nil
}
