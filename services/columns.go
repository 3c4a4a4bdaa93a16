package services

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Field is a canonical review column.
type Field string

const (
	FieldReview  Field = "review"
	FieldProduct Field = "product"
)

// ColumnSynonyms maps each canonical field to the header spellings accepted
// for it. Matching is exact after trimming, lower-casing and NFC normalization.
var ColumnSynonyms = map[Field][]string{
	FieldReview:  {"review_content", "review", "reseña", "comentario", "text", "texto"},
	FieldProduct: {"product_id", "product", "producto", "asin"},
}

// ColumnMap locates the review and product columns in a header row.
// Review is always valid; Product is meaningful only when HasProduct is set.
type ColumnMap struct {
	Review     int
	Product    int
	HasProduct bool
}

// maxIndex is the highest column index a row must contain.
func (m ColumnMap) maxIndex() int {
	if m.HasProduct && m.Product > m.Review {
		return m.Product
	}
	return m.Review
}

// ColumnResolutionError reports a header row with no recognizable review column.
type ColumnResolutionError struct {
	Headers []string
}

func (e *ColumnResolutionError) Error() string {
	return fmt.Sprintf("no review column found in headers [%s]; expected one named %s",
		strings.Join(e.Headers, ", "), strings.Join(ColumnSynonyms[FieldReview], ", "))
}

// ResolveColumns finds the review and product columns. The first header in
// file order wins when several match the same field.
func ResolveColumns(headers []string) (ColumnMap, error) {
	review, ok := findColumn(headers, ColumnSynonyms[FieldReview])
	if !ok {
		return ColumnMap{}, &ColumnResolutionError{Headers: headers}
	}

	product, hasProduct := findColumn(headers, ColumnSynonyms[FieldProduct])
	if !hasProduct {
		product = -1
	}
	return ColumnMap{Review: review, Product: product, HasProduct: hasProduct}, nil
}

func findColumn(headers, synonyms []string) (int, bool) {
	for i, h := range headers {
		name := normalizeHeader(h)
		for _, s := range synonyms {
			if name == s {
				return i, true
			}
		}
	}
	return -1, false
}

// normalizeHeader trims, lower-cases and NFC-normalizes a header cell.
// A leading byte-order mark is dropped so exports from spreadsheet tools match.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(h)))
}
