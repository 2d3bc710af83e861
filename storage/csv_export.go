package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"opentrail/models"
)

// CSVExporter dumps a resort's current lift and trail rows to a CSV
// file, mainly for eyeballing what a scrape pass left behind.
// It is safe for concurrent use.
type CSVExporter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVExporter creates (or truncates) the CSV file at the given path
// and writes the header row. Intermediate directories are created
// automatically.
func NewCSVExporter(path string) (*CSVExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"resort", "kind", "name", "trail_type", "rating", "status", "is_open",
		"last_opened_on", "last_closed_on", "updated_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVExporter{file: f, writer: w}, nil
}

// WriteResort appends one resort's lifts and trails.
func (c *CSVExporter) WriteResort(resort *models.Resort, lifts []*models.Lift, trails []*models.Trail) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range lifts {
		row := []string{
			resort.Name, "lift", l.Name, "", "", l.Status, fmt.Sprintf("%t", l.IsOpen),
			formatDate(l.LastOpenedOn), formatDate(l.LastClosedOn),
			l.UpdatedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write lift row: %w", err)
		}
	}

	for _, t := range trails {
		row := []string{
			resort.Name, "trail", t.Name, t.TrailType, t.Rating.Slug(), t.Status,
			fmt.Sprintf("%t", t.IsOpen),
			formatDate(t.LastOpenedOn), formatDate(t.LastClosedOn),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write trail row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVExporter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
