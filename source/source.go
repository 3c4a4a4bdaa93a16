package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/xuri/excelize/v2"

	"review-sentiment/utils"
)

// maxInputBytes caps any single input file.
const maxInputBytes = 100 * 1024 * 1024

// Loader fetches a raw review table and returns it as text lines.
// Locations may be local paths, http(s) URLs or s3://bucket/key URIs.
// Spreadsheets (.xlsx) are flattened to comma-joined lines.
type Loader struct {
	region     string
	s3Endpoint string
	httpClient *http.Client
	logger     *utils.Logger

	s3Client *s3.Client
}

// NewLoader creates a Loader. region and s3Endpoint are only used for s3:// locations.
func NewLoader(region, s3Endpoint string, logger *utils.Logger) *Loader {
	return &Loader{
		region:     region,
		s3Endpoint: s3Endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
}

// Load reads location and returns its lines, header first.
func (l *Loader) Load(ctx context.Context, location string) ([]string, error) {
	content, name, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("[source] Read %d bytes from %s", len(content), location)
	return Lines(name, content)
}

// Lines decodes file content by extension.
func Lines(name string, content []byte) ([]string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".xlsx", ".xlsm":
		return excelLines(content)
	default:
		text := strings.TrimPrefix(string(content), "\ufeff")
		return strings.Split(text, "\n"), nil
	}
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		return l.fetchS3(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return l.fetchURL(ctx, location)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, "", fmt.Errorf("source: open %q: %w", location, err)
		}
		defer f.Close()
		content, err := readLimited(f, maxInputBytes)
		if err != nil {
			return nil, "", fmt.Errorf("source: read %q: %w", location, err)
		}
		return content, location, nil
	}
}

func (l *Loader) fetchURL(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("source: build request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("source: download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("source: download %s: status %d", rawURL, resp.StatusCode)
	}

	content, err := readLimited(resp.Body, maxInputBytes)
	if err != nil {
		return nil, "", fmt.Errorf("source: read body: %w", err)
	}

	name := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		name = u.Path
	}
	return content, name, nil
}

func (l *Loader) fetchS3(ctx context.Context, location string) ([]byte, string, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, "", err
	}

	client, err := l.s3(ctx)
	if err != nil {
		return nil, "", err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("source: get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	content, err := readLimited(out.Body, maxInputBytes)
	if err != nil {
		return nil, "", fmt.Errorf("source: read s3 object: %w", err)
	}
	return content, key, nil
}

func (l *Loader) s3(ctx context.Context) (*s3.Client, error) {
	if l.s3Client != nil {
		return l.s3Client, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(l.region))
	if err != nil {
		return nil, fmt.Errorf("source: load AWS config: %w", err)
	}

	var opts []func(*s3.Options)
	if l.s3Endpoint != "" {
		endpoint := l.s3Endpoint
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true
		})
	}
	l.s3Client = s3.NewFromConfig(awsCfg, opts...)
	return l.s3Client, nil
}

// readLimited reads r fully, failing instead of truncating when it holds
// more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > limit {
		return nil, fmt.Errorf("input exceeds %d bytes", limit)
	}
	return content, nil
}

func parseS3URI(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, "s3://")
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("source: invalid S3 location %q (want s3://bucket/key)", location)
	}
	return bucket, key, nil
}

// skipSheets are sheet names that hold notes rather than data.
var skipSheets = map[string]bool{
	"info":     true,
	"metadata": true,
	"about":    true,
	"readme":   true,
	"notes":    true,
}

// excelLines reads the first data sheet and joins each row's cells with a comma.
func excelLines(content []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("source: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("source: workbook has no sheets")
	}

	sheet := sheets[len(sheets)-1]
	for _, s := range sheets {
		if !skipSheets[strings.ToLower(s)] {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("source: read sheet %q: %w", sheet, err)
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}
	return lines, nil
}
