package store

import (
	"context"
	"fmt"
	"strings"
)

// ListTables returns the user tables in the database ordered by name.
// SQLite's internal sqlite_* tables are excluded.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return tables, nil
}

// HasTable reports whether a table with the given name exists.
func (s *Store) HasTable(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return n > 0, nil
}

// CountRows returns SELECT COUNT(*) for the given table.
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + QuoteIdent(table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return n, nil
}

// TableCounts returns the row count of every user table, ordered by table name.
func (s *Store) TableCounts(ctx context.Context) ([]TableCount, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		n, err := s.CountRows(ctx, table)
		if err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Name: table, Rows: n})
	}
	return counts, nil
}

// Columns returns the columns of table in declaration order, hidden ones included.
func (s *Store) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_xinfo("+QuoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    any
			pk      int
			hidden  int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk, &hidden); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols = append(cols, Column{Name: name, Type: typ, Hidden: hidden != 0})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return cols, nil
}

// QuoteIdent quotes an SQL identifier with double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteString quotes an SQL string literal with single quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
