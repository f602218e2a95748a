package exporter

import (
	"time"

	"github.com/blackwell-systems/recipeops/internal/dump"
	"github.com/blackwell-systems/recipeops/internal/store"
)

const (
	// DefaultDir is where exports are written, relative to the working directory.
	DefaultDir = "exports"

	// LatestName is the mirror of the most recent export.
	LatestName = "latest.sql"

	filePrefix      = "database_export_"
	fileSuffix      = ".sql"
	timestampLayout = "20060102_150405"
)

// Result describes one completed export.
type Result struct {
	StartedAt  time.Time
	Path       string
	LatestPath string
	Size       int64
	Tables     []store.TableCount
}

// ExportFile is a timestamped export found in the export directory.
type ExportFile struct {
	Name      string
	Path      string
	Size      int64
	CreatedAt time.Time
}

// Exporter writes timestamped SQL dumps of one database into an export directory.
type Exporter struct {
	dbPath string
	dir    string

	// Now supplies the wall-clock time used in export file names.
	Now func() time.Time

	// Progress, when set, follows the tables as they are dumped.
	Progress dump.Progress
}

// New creates an Exporter for the database at dbPath writing into dir.
func New(dbPath, dir string) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	return &Exporter{
		dbPath: dbPath,
		dir:    dir,
		Now:    time.Now,
	}
}

// FileName returns the export file name for the given instant, in local time.
func FileName(t time.Time) string {
	return filePrefix + t.Local().Format(timestampLayout) + fileSuffix
}
