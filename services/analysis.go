package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"review-sentiment/models"
	"review-sentiment/utils"
)

var (
	// ErrNoValidReviews means every data row was excluded during parsing.
	ErrNoValidReviews = errors.New("no valid reviews found")

	// ErrNoScoredReviews means enrichment finished but no record got any score.
	ErrNoScoredReviews = errors.New("no review could be scored")
)

// Analysis is the outcome of one upload episode.
type Analysis struct {
	UploadID  uuid.UUID               `json:"uploadId"`
	CreatedAt time.Time               `json:"createdAt"`
	Reviews   []*models.Review        `json:"reviews"`
	Report    *models.SentimentReport `json:"report"`
}

// Analyzer runs ingestion, enrichment and aggregation for one upload.
type Analyzer struct {
	parser     *ReviewParser
	enricher   *Enricher
	aggregator *Aggregator
	logger     *utils.Logger
}

func NewAnalyzer(parser *ReviewParser, enricher *Enricher, aggregator *Aggregator, logger *utils.Logger) *Analyzer {
	return &Analyzer{parser: parser, enricher: enricher, aggregator: aggregator, logger: logger}
}

// AnalyzeLines ingests a raw table and analyzes the surviving records.
func (a *Analyzer) AnalyzeLines(ctx context.Context, lines []string) (*Analysis, error) {
	reviews, err := a.parser.Ingest(lines)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeReviews(ctx, reviews)
}

// AnalyzeReviews enriches bare records and aggregates the result.
func (a *Analyzer) AnalyzeReviews(ctx context.Context, reviews []*models.Review) (*Analysis, error) {
	if len(reviews) == 0 {
		return nil, ErrNoValidReviews
	}

	a.logger.Info("[analyzer] Processing %d reviews...", len(reviews))
	enriched, err := a.enricher.Enrich(ctx, reviews)
	if err != nil {
		return nil, err
	}

	report := a.aggregator.Aggregate(enriched)
	if report.Status.Unscored == len(enriched) {
		return nil, fmt.Errorf("%w: all %d scoring attempts failed", ErrNoScoredReviews, len(enriched))
	}

	a.logger.Info("[analyzer] %d reviews analysed (%d partial, %d unscored)",
		len(enriched), report.Status.PartiallyScored, report.Status.Unscored)

	return &Analysis{
		UploadID:  uuid.New(),
		CreatedAt: time.Now(),
		Reviews:   enriched,
		Report:    report,
	}, nil
}

// Aggregator exposes the analyzer's aggregator for re-rendering stored records.
func (a *Analyzer) Aggregator() *Aggregator {
	return a.aggregator
}
