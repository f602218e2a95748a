package dump

import (
	"context"
	"database/sql"
	"fmt"
	"io"
)

// Replay executes the SQL text read from r against db. The dump carries its
// own BEGIN TRANSACTION / COMMIT, so a failure part-way leaves db unchanged.
func Replay(ctx context.Context, db *sql.DB, r io.Reader) error {
	script, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read dump: %w", err)
	}
	if len(script) == 0 {
		return fmt.Errorf("dump is empty")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, string(script)); err != nil {
		// Leave no transaction open on the pooled connection.
		conn.ExecContext(context.Background(), "ROLLBACK")
		return fmt.Errorf("failed to replay dump: %w", err)
	}
	return nil
}
