// Package dump serializes a SQLite database to SQL text in the format
// produced by the sqlite3 shell's .dump command, and replays such text.
//
// The dump is read inside a single transaction, so it reflects the database
// as of the moment the dump began. Output looks like:
//
//	PRAGMA foreign_keys=OFF;
//	BEGIN TRANSACTION;
//	CREATE TABLE inventory(...);
//	INSERT INTO "inventory" VALUES(1,'Flour',12.5);
//	...
//	CREATE INDEX ...;
//	COMMIT;
package dump

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/recipeops/internal/store"
)

// Progress observes the table phase of a dump.
type Progress interface {
	// Start is called once, after the schema is read, with the number of
	// tables whose rows will be written.
	Start(tables int)
	// Table is called before the rows of each of those tables are written.
	Table(name string)
}

// Options tunes a dump. The zero value is ready to use.
type Options struct {
	Progress Progress
}

type schemaEntry struct {
	name string
	typ  string
	sql  string
}

// Dump writes the schema and content of db to w.
func Dump(ctx context.Context, db *sql.DB, w io.Writer, opts Options) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	// Nothing is written through tx; rollback just ends the read.
	defer tx.Rollback()

	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "PRAGMA foreign_keys=OFF;")
	fmt.Fprintln(bw, "BEGIN TRANSACTION;")

	tables, err := loadSchema(ctx, tx, `
		SELECT name, type, sql FROM sqlite_master
		WHERE sql NOT NULL AND type = 'table'
		ORDER BY tbl_name = 'sqlite_sequence', rowid
	`)
	if err != nil {
		return err
	}

	if opts.Progress != nil {
		opts.Progress.Start(countRowTables(tables))
	}

	writableSchema := false
	for _, t := range tables {
		switch {
		case t.name == "sqlite_sequence":
			fmt.Fprintln(bw, "DELETE FROM sqlite_sequence;")
		case t.name == "sqlite_stat1":
			fmt.Fprintln(bw, "ANALYZE sqlite_master;")
		case strings.HasPrefix(t.name, "sqlite_"):
			continue
		case hasPrefixFold(t.sql, "CREATE VIRTUAL TABLE"):
			if !writableSchema {
				fmt.Fprintln(bw, "PRAGMA writable_schema=ON;")
				writableSchema = true
			}
			fmt.Fprintf(bw, "INSERT INTO sqlite_master(type,name,tbl_name,rootpage,sql)VALUES('table',%s,%s,0,%s);\n",
				store.QuoteString(t.name), store.QuoteString(t.name), store.QuoteString(t.sql))
			continue
		default:
			fmt.Fprintf(bw, "%s;\n", t.sql)
		}

		if opts.Progress != nil {
			opts.Progress.Table(t.name)
		}
		if err := dumpRows(ctx, tx, bw, t.name); err != nil {
			return err
		}
	}

	if writableSchema {
		fmt.Fprintln(bw, "PRAGMA writable_schema=OFF;")
	}

	others, err := loadSchema(ctx, tx, `
		SELECT name, type, sql FROM sqlite_master
		WHERE sql NOT NULL AND type IN ('index', 'trigger', 'view')
		ORDER BY rowid
	`)
	if err != nil {
		return err
	}
	for _, o := range others {
		fmt.Fprintf(bw, "%s;\n", o.sql)
	}

	fmt.Fprintln(bw, "COMMIT;")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

// countRowTables counts the tables whose rows Dump writes: every regular
// table plus sqlite_sequence and sqlite_stat1.
func countRowTables(tables []schemaEntry) int {
	n := 0
	for _, t := range tables {
		switch {
		case t.name == "sqlite_sequence", t.name == "sqlite_stat1":
			n++
		case strings.HasPrefix(t.name, "sqlite_"):
		case hasPrefixFold(t.sql, "CREATE VIRTUAL TABLE"):
		default:
			n++
		}
	}
	return n
}

func loadSchema(ctx context.Context, tx *sql.Tx, query string) ([]schemaEntry, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	defer rows.Close()

	var entries []schemaEntry
	for rows.Next() {
		var e schemaEntry
		if err := rows.Scan(&e.name, &e.typ, &e.sql); err != nil {
			return nil, fmt.Errorf("failed to scan schema entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema: %w", err)
	}
	return entries, nil
}

// dumpRows writes one INSERT statement per row of table. Literal encoding is
// delegated to SQLite's quote() so values replay exactly.
func dumpRows(ctx context.Context, tx *sql.Tx, w io.Writer, table string) error {
	cols, skipped, err := insertableColumns(ctx, tx, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}

	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = "quote(" + store.QuoteIdent(c) + ")"
	}

	// Generated columns cannot be inserted, so name the stored ones explicitly.
	prefix := "INSERT INTO " + store.QuoteIdent(table)
	if skipped {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = store.QuoteIdent(c)
		}
		prefix += "(" + strings.Join(names, ",") + ")"
	}
	prefix += " VALUES("

	query := "SELECT " + strings.Join(exprs, " || ',' || ") + " FROM " + store.QuoteIdent(table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var values string
		if err := rows.Scan(&values); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		if _, err := fmt.Fprintf(w, "%s%s);\n", prefix, values); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows of %s: %w", table, err)
	}
	return nil
}

// insertableColumns lists the stored columns of table and reports whether any
// hidden or generated columns were left out.
func insertableColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, bool, error) {
	rows, err := tx.QueryContext(ctx, "PRAGMA table_xinfo("+store.QuoteIdent(table)+")")
	if err != nil {
		return nil, false, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var (
		cols    []string
		skipped bool
	)
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
			return nil, false, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		if hidden != 0 {
			skipped = true
			continue
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return cols, skipped, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
