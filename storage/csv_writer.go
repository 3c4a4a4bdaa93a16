package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"review-sentiment/models"
)

var csvHeader = []string{
	"upload_id", "id", "product", "review",
	"vader_score", "vader_sentiment", "textblob_score", "textblob_sentiment", "status",
}

// CSVWriter exports enriched reviews as CSV. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := newCSVWriter(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func newCSVWriter(out io.Writer, closer io.Closer) (*CSVWriter, error) {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	return &CSVWriter{closer: closer, writer: w}, w.Error()
}

// Write appends one row per review. Absent scores are written as empty cells.
func (c *CSVWriter) Write(uploadID uuid.UUID, reviews []*models.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range reviews {
		row := []string{
			uploadID.String(),
			r.ID,
			r.Product,
			r.Text,
			formatScore(r.VaderScore),
			formatLabel(r.VaderSentiment),
			formatScore(r.TextBlobScore),
			formatLabel(r.TextBlobSentiment),
			string(r.Status),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}

func formatScore(s *float64) string {
	if s == nil {
		return ""
	}
	return strconv.FormatFloat(*s, 'f', -1, 64)
}

func formatLabel(l *models.Label) string {
	if l == nil {
		return ""
	}
	return l.Display()
}
