package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"review-sentiment/utils"
)

func newTestLoader() *Loader {
	return NewLoader("us-east-1", "", utils.NewNopLogger())
}

func TestLoadLocalCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	if err := os.WriteFile(path, []byte("\ufeffproduct,review\nX,Great product totally\n"), 0644); err != nil {
		t.Fatal(err)
	}

	lines, err := newTestLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "product,review" {
		t.Errorf("BOM should be stripped, header = %q", lines[0])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := newTestLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exports/reviews.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("review\nArrived on time"))
	}))
	defer srv.Close()

	lines, err := newTestLoader().Load(context.Background(), srv.URL+"/exports/reviews.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lines) != 2 || lines[1] != "Arrived on time" {
		t.Errorf("unexpected lines: %q", lines)
	}

	if _, err := newTestLoader().Load(context.Background(), srv.URL+"/missing.csv"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestExcelLinesSkipsMetadataSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "README"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Reviews"); err != nil {
		t.Fatal(err)
	}
	_ = f.SetSheetRow("README", "A1", &[]any{"exported by shop tool"})
	_ = f.SetSheetRow("Reviews", "A1", &[]any{"asin", "review"})
	_ = f.SetSheetRow("Reviews", "A2", &[]any{"B01", "Fits perfectly"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	lines, err := Lines("upload.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "asin,review" || lines[1] != "B01,Fits perfectly" {
		t.Errorf("unexpected lines: %q", lines)
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://exports/2024/reviews.csv", "exports", "2024/reviews.csv", false},
		{"s3://exports", "", "", true},
		{"s3:///key.csv", "", "", true},
	}

	for _, tt := range tests {
		b, k, err := parseS3URI(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseS3URI(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if b != tt.bucket || k != tt.key {
			t.Errorf("parseS3URI(%q) = %q, %q; want %q, %q", tt.in, b, k, tt.bucket, tt.key)
		}
	}
}

func TestReadLimited(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"review\nok", false},
		{"0123456789", false},
		{"0123456789X", true},
	}

	for _, tt := range tests {
		got, err := readLimited(strings.NewReader(tt.input), 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("readLimited(%q) error = %v; wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && string(got) != tt.input {
			t.Errorf("readLimited(%q) = %q", tt.input, got)
		}
	}
}
