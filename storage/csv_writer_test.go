package storage

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"review-sentiment/models"
)

func enrichedSample() []*models.Review {
	full := &models.Review{ID: "review-0", Product: "X", Text: "Great, really great", Status: models.StatusScored}
	full.SetResult(models.SentimentResult{Model: models.ModelVader, Score: 0.75, Label: models.LabelPositive})
	full.SetResult(models.SentimentResult{Model: models.ModelTextBlob, Score: 0.5, Label: models.LabelPositive})

	none := &models.Review{ID: "review-1", Product: "Y", Text: "Could not score", Status: models.StatusUnscored}
	return []*models.Review{full, none}
}

func TestCSVWriterRows(t *testing.T) {
	var buf bytes.Buffer
	w, err := newCSVWriter(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := w.Write(id, enrichedSample()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != id.String() || rows[1][3] != "Great, really great" {
		t.Errorf("row 1: %q", rows[1])
	}
	if rows[1][4] != "0.75" || rows[1][5] != "Positivo" || rows[1][8] != "scored" {
		t.Errorf("row 1 scores: %q", rows[1])
	}
	if rows[2][4] != "" || rows[2][5] != "" || rows[2][6] != "" || rows[2][7] != "" {
		t.Errorf("absent scores should be empty cells: %q", rows[2])
	}
}

func TestNewCSVWriterCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
