package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/recipeops/internal/dump"
	"github.com/blackwell-systems/recipeops/internal/logger"
	"github.com/blackwell-systems/recipeops/internal/store"
)

// Export dumps the database to a timestamped file, mirrors it to latest.sql
// and collects per-table row counts from a fresh read-only connection.
//
// A missing database yields an error wrapping store.ErrNotExist and leaves
// the filesystem untouched. Any later failure may leave partial files behind.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	startedAt := e.Now()

	if !store.Exists(e.dbPath) {
		return nil, fmt.Errorf("%s: %w", e.dbPath, store.ErrNotExist)
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	exportPath := filepath.Join(e.dir, FileName(startedAt))
	latestPath := filepath.Join(e.dir, LatestName)

	logger.Debug("dumping database", "db", e.dbPath, "target", exportPath)
	if err := e.dumpTo(ctx, exportPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(exportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat export file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("export file %s is empty", exportPath)
	}

	logger.Debug("mirroring export", "source", exportPath, "target", latestPath)
	if err := copyFile(exportPath, latestPath); err != nil {
		return nil, err
	}

	tables, err := countTables(ctx, e.dbPath)
	if err != nil {
		return nil, err
	}

	return &Result{
		StartedAt:  startedAt,
		Path:       exportPath,
		LatestPath: latestPath,
		Size:       info.Size(),
		Tables:     tables,
	}, nil
}

// dumpTo writes the dump to path through its own read-only connection.
func (e *Exporter) dumpTo(ctx context.Context, path string) error {
	st, err := store.OpenReadOnly(e.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := dump.Dump(ctx, st.DB(), f, dump.Options{Progress: e.Progress}); err != nil {
		f.Close()
		return fmt.Errorf("failed to dump database: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

func countTables(ctx context.Context, dbPath string) ([]store.TableCount, error) {
	st, err := store.OpenReadOnly(dbPath)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	return st.TableCounts(ctx)
}

// copyFile replaces dst with a byte copy of src.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("failed to sync %s: %w", dst, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return nil
}
