package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// List returns the timestamped exports in the export directory, newest first.
// latest.sql and files that do not follow the naming scheme are skipped.
// A missing directory yields an empty list.
func (e *Exporter) List() ([]*ExportFile, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	var files []*ExportFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		createdAt, ok := parseFileName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		files = append(files, &ExportFile{
			Name:      entry.Name(),
			Path:      filepath.Join(e.dir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].CreatedAt.After(files[j].CreatedAt)
	})

	return files, nil
}

// parseFileName extracts the timestamp from database_export_YYYYMMDD_HHMMSS.sql.
func parseFileName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
