package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"review-sentiment/metrics"
	"review-sentiment/models"
	"review-sentiment/utils"
)

const (
	// Delimiter separates fields. Quoted fields are not supported.
	Delimiter = ","

	// minReviewLength is the shortest review text (in characters) kept.
	minReviewLength = 6
)

// numericOnlyRegexp matches texts that are IDs or numbers rather than prose.
var numericOnlyRegexp = regexp.MustCompile(`^\d+$`)

// ReviewParser turns delimited text lines into bare review records.
type ReviewParser struct {
	logger  *utils.Logger
	metrics *metrics.Metrics
}

// NewReviewParser creates a ReviewParser. m may be nil.
func NewReviewParser(logger *utils.Logger, m *metrics.Metrics) *ReviewParser {
	return &ReviewParser{logger: logger, metrics: m}
}

// SplitLines splits raw table text into lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// Ingest resolves the columns from the first line and parses the remaining
// lines. It fails only when no review column can be found.
func (p *ReviewParser) Ingest(lines []string) ([]*models.Review, error) {
	if len(lines) == 0 {
		return nil, &ColumnResolutionError{}
	}

	headers := strings.Split(lines[0], Delimiter)
	cols, err := ResolveColumns(headers)
	if err != nil {
		return nil, err
	}

	productCol := "(none)"
	if cols.HasProduct {
		productCol = strings.TrimSpace(headers[cols.Product])
	}
	p.logger.Info("[parser] Using columns: product=%s review=%s",
		productCol, strings.TrimSpace(headers[cols.Review]))

	return p.Parse(lines[1:], cols), nil
}

// Parse converts data lines (header excluded) into records. Blank, malformed
// and non-prose rows are skipped; survivors keep file order and receive dense
// IDs. Placeholder product names count every non-blank row, kept or not.
func (p *ReviewParser) Parse(lines []string, cols ColumnMap) []*models.Review {
	result := make([]*models.Review, 0, len(lines))
	ordinal := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			p.metrics.RowParsed("blank")
			continue
		}
		ordinal++

		fields := strings.Split(line, Delimiter)
		if len(fields) <= cols.maxIndex() {
			p.logger.Debug("[parser] Malformed row %d skipped: %q", ordinal, line)
			p.metrics.RowParsed("malformed")
			continue
		}

		text := strings.TrimSpace(fields[cols.Review])
		if !IsReviewText(text) {
			p.logger.Debug("[parser] Row %d rejected, not review prose: %q", ordinal, text)
			p.metrics.RowParsed("rejected")
			continue
		}

		product := ""
		if cols.HasProduct {
			product = strings.TrimSpace(fields[cols.Product])
		}
		if product == "" {
			product = placeholderProduct(ordinal)
		}

		result = append(result, &models.Review{
			ID:      reviewID(len(result)),
			Product: product,
			Text:    text,
		})
		p.metrics.RowParsed("accepted")
	}

	p.logger.Info("[parser] Parsed %d rows → %d reviews (excluded %d)",
		ordinal, len(result), ordinal-len(result))
	return result
}

// FromTexts builds records for free texts that share one product, applying
// the same content filter as Parse. An empty product falls back to the
// placeholder naming.
func (p *ReviewParser) FromTexts(product string, texts []string) []*models.Review {
	product = strings.TrimSpace(product)
	result := make([]*models.Review, 0, len(texts))

	for i, t := range texts {
		text := strings.TrimSpace(t)
		if !IsReviewText(text) {
			p.metrics.RowParsed("rejected")
			continue
		}
		name := product
		if name == "" {
			name = placeholderProduct(i + 1)
		}
		result = append(result, &models.Review{ID: reviewID(len(result)), Product: name, Text: text})
		p.metrics.RowParsed("accepted")
	}
	return result
}

// IsReviewText reports whether a trimmed field looks like review prose:
// at least six characters and not purely digits.
func IsReviewText(text string) bool {
	if utf8.RuneCountInString(text) < minReviewLength {
		return false
	}
	return !numericOnlyRegexp.MatchString(text)
}

func reviewID(k int) string {
	return fmt.Sprintf("review-%d", k)
}

func placeholderProduct(n int) string {
	return fmt.Sprintf("Producto %d", n)
}
