package services

import (
	"context"
	"time"

	"review-sentiment/metrics"
	"review-sentiment/models"
	"review-sentiment/utils"
)

// Scorer is the remote scoring collaborator the enricher depends on.
type Scorer interface {
	Ping(ctx context.Context) error
	Score(ctx context.Context, text string, model models.Model) (models.SentimentResult, error)
}

// Enricher scores every record under every configured model.
type Enricher struct {
	scorer         Scorer
	models         []models.Model
	maxConcurrency int
	rateLimitMs    int
	logger         *utils.Logger
	metrics        *metrics.Metrics
}

// NewEnricher creates an Enricher using all known models. At most
// maxConcurrency scoring calls are in flight at once.
func NewEnricher(scorer Scorer, maxConcurrency, rateLimitMs int, logger *utils.Logger, m *metrics.Metrics) *Enricher {
	return &Enricher{
		scorer:         scorer,
		models:         models.Models,
		maxConcurrency: maxConcurrency,
		rateLimitMs:    rateLimitMs,
		logger:         logger,
		metrics:        m,
	}
}

type scoreOutcome struct {
	result models.SentimentResult
	err    error
}

// Enrich probes the service once, then scores each record under each model
// and waits for every call to settle. Once the probe passes the batch runs
// to completion even if ctx is cancelled; each call is still bounded by the
// scorer's own request timeout. A failed call leaves that model's fields
// empty; only a failed probe fails the batch, in which case nothing is scored. The input is never modified: the returned records are copies
// in input order, each tagged with its enrichment status.
func (e *Enricher) Enrich(ctx context.Context, reviews []*models.Review) ([]*models.Review, error) {
	if err := e.scorer.Ping(ctx); err != nil {
		e.metrics.Batch("unreachable")
		return nil, err
	}

	pool := utils.NewWorkerPool(e.maxConcurrency, e.rateLimitMs)
	e.logger.Info("[enricher] Scoring %d reviews with %d models (concurrency %d)",
		len(reviews), len(e.models), pool.Size())

	scoreCtx := context.WithoutCancel(ctx)

	// Each job writes only its own slot, so no locking is needed.
	outcomes := make([][]scoreOutcome, len(reviews))

	for i, r := range reviews {
		outcomes[i] = make([]scoreOutcome, len(e.models))
		for j, m := range e.models {
			slot := &outcomes[i][j]
			text, model := r.Text, m
			pool.Submit(func() {
				start := time.Now()
				res, err := e.scorer.Score(scoreCtx, text, model)
				e.metrics.ScoringCall(string(model), err == nil, time.Since(start))
				slot.result, slot.err = res, err
			})
		}
	}
	pool.Wait()

	result := make([]*models.Review, len(reviews))
	failed := 0
	for i, r := range reviews {
		out := &models.Review{ID: r.ID, Product: r.Product, Text: r.Text}
		scored := 0
		for j, m := range e.models {
			o := outcomes[i][j]
			if o.err != nil {
				failed++
				e.logger.Debug("[enricher] %s: %v", r.ID, o.err)
				continue
			}
			o.result.Model = m
			out.SetResult(o.result)
			scored++
		}
		out.Status = statusFor(scored, len(e.models))
		e.metrics.RecordEnriched(string(out.Status))
		result[i] = out
	}

	if failed > 0 {
		e.logger.Warn("[enricher] %d of %d scoring calls failed", failed, len(reviews)*len(e.models))
	}
	e.metrics.Batch("completed")
	return result, nil
}

func statusFor(scored, total int) models.EnrichmentStatus {
	switch {
	case total > 0 && scored == total:
		return models.StatusScored
	case scored > 0:
		return models.StatusPartiallyScored
	default:
		return models.StatusUnscored
	}
}
