// Package export serializes a run's unified table to CSV and XLSX files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/bistpulse/internal/domain/models"
)

// Result reports the outcome of one export. Both formats are always
// attempted; a failure in one does not roll back the other.
type Result struct {
	CSVPath  string
	XLSXPath string
	CSVErr   error
	XLSXErr  error
}

// Failed reports whether either format failed to write.
func (r Result) Failed() bool { return r.CSVErr != nil || r.XLSXErr != nil }

// Exporter is the contract the pipeline consumes.
type Exporter interface {
	Write(rows []models.PriceRow, rng, interval string, startedAt time.Time) Result
}

// FileExporter writes both output formats under a single directory.
type FileExporter struct {
	OutDir string
	Prefix string
}

// NewFileExporter creates an exporter rooted at outDir with the given
// filename prefix (e.g., "BIST100").
func NewFileExporter(outDir, prefix string) *FileExporter {
	return &FileExporter{OutDir: outDir, Prefix: prefix}
}

// Stem returns the shared filename stem for a run:
// {prefix}_{range}_{interval}_{YYYYMMDD_HHMMSS}. Deterministic given
// identical inputs; two runs starting within the same second overwrite each
// other's files, a documented limitation.
func (e *FileExporter) Stem(rng, interval string, startedAt time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", e.Prefix, rng, interval, startedAt.Format("20060102_150405"))
}

// Write serializes rows to CSV and XLSX. An empty table still produces
// header-only files. The two writers run concurrently; each failure is
// captured independently in the Result.
func (e *FileExporter) Write(rows []models.PriceRow, rng, interval string, startedAt time.Time) Result {
	stem := e.Stem(rng, interval, startedAt)
	res := Result{
		CSVPath:  filepath.Join(e.OutDir, stem+".csv"),
		XLSXPath: filepath.Join(e.OutDir, stem+".xlsx"),
	}

	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		res.CSVErr = fmt.Errorf("create output dir: %w", err)
		res.XLSXErr = fmt.Errorf("create output dir: %w", err)
		return res
	}

	var g errgroup.Group
	g.Go(func() error {
		res.CSVErr = writeCSV(res.CSVPath, rows)
		return nil
	})
	g.Go(func() error {
		res.XLSXErr = writeXLSX(res.XLSXPath, rows)
		return nil
	})
	_ = g.Wait()

	return res
}
