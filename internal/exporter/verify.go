package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/blackwell-systems/recipeops/internal/dump"
	"github.com/blackwell-systems/recipeops/internal/logger"
	"github.com/blackwell-systems/recipeops/internal/store"
)

// TableCheck compares one table's row count in the live database with the
// count obtained by replaying a dump. A count of -1 means the table is absent.
type TableCheck struct {
	Name     string
	Live     int64
	Replayed int64
}

// Match reports whether the table exists on both sides with equal counts.
func (c TableCheck) Match() bool {
	return c.Live >= 0 && c.Live == c.Replayed
}

// Verify replays the dump at dumpPath into a scratch database and compares
// its per-table row counts with the live database at dbPath.
func Verify(ctx context.Context, dbPath, dumpPath string) ([]TableCheck, error) {
	replayed, err := ReplayCounts(ctx, dumpPath)
	if err != nil {
		return nil, err
	}

	live, err := countTables(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*TableCheck)
	for _, tc := range live {
		byName[tc.Name] = &TableCheck{Name: tc.Name, Live: tc.Rows, Replayed: -1}
	}
	for _, tc := range replayed {
		if c, ok := byName[tc.Name]; ok {
			c.Replayed = tc.Rows
			continue
		}
		byName[tc.Name] = &TableCheck{Name: tc.Name, Live: -1, Replayed: tc.Rows}
	}

	checks := make([]TableCheck, 0, len(byName))
	for _, c := range byName {
		checks = append(checks, *c)
	}
	sort.Slice(checks, func(i, j int) bool {
		return checks[i].Name < checks[j].Name
	})
	return checks, nil
}

// ReplayCounts replays the dump at dumpPath into an empty scratch database
// and returns its per-table row counts. The scratch database is removed afterwards.
func ReplayCounts(ctx context.Context, dumpPath string) ([]store.TableCount, error) {
	f, err := os.Open(dumpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	defer f.Close()

	scratchDir, err := os.MkdirTemp("", "recipeops-verify-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			logger.Warn("failed to remove scratch directory", "dir", scratchDir, "error", err)
		}
	}()

	st, err := store.New(filepath.Join(scratchDir, "replay.db"))
	if err != nil {
		return nil, err
	}
	defer st.Close()

	logger.Debug("replaying dump", "dump", dumpPath, "scratch", scratchDir)
	if err := dump.Replay(ctx, st.DB(), f); err != nil {
		return nil, err
	}

	return st.TableCounts(ctx)
}
