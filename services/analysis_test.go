package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"review-sentiment/models"
	"review-sentiment/sentiment"
)

func newTestAnalyzer(scorer Scorer) *Analyzer {
	logger := newTestLogger()
	return NewAnalyzer(
		NewReviewParser(logger, nil),
		NewEnricher(scorer, 4, 0, logger, nil),
		NewAggregator(logger),
		logger,
	)
}

func TestAnalyzeLinesEndToEnd(t *testing.T) {
	scorer := &fakeScorer{scores: map[string]float64{"Great product totally": 0.7, "Bad item here": -0.5}}
	a := newTestAnalyzer(scorer)

	res, err := a.AnalyzeLines(context.Background(), SplitLines("product,review\nX,Great product totally\nY,42\nZ,Bad item here"))
	if err != nil {
		t.Fatalf("AnalyzeLines: %v", err)
	}
	if len(res.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(res.Reviews))
	}
	if res.Report.VaderCounts.Positive != 1 || res.Report.VaderCounts.Negative != 1 {
		t.Errorf("VaderCounts: %+v", res.Report.VaderCounts)
	}
	if res.UploadID.String() == "" {
		t.Error("UploadID should be set")
	}
}

func TestAnalyzeDistinctFailures(t *testing.T) {
	ok := &fakeScorer{}
	down := &fakeScorer{pingErr: &sentiment.ConnectivityError{URL: "http://scorer", Err: errors.New("refused")}}
	broken := &fakeScorer{failures: map[string]models.Model{"Perfectly fine review": ""}}

	tests := []struct {
		name    string
		scorer  Scorer
		input   string
		check   func(error) bool
		message string
	}{
		{
			name:    "no review column",
			scorer:  ok,
			input:   "product,stars\nX,5",
			check:   func(err error) bool { var e *ColumnResolutionError; return errors.As(err, &e) },
			message: "no review column",
		},
		{
			name:    "no surviving rows",
			scorer:  ok,
			input:   "review\n12345\nshort",
			check:   func(err error) bool { return errors.Is(err, ErrNoValidReviews) },
			message: "No valid reviews",
		},
		{
			name:    "service unreachable",
			scorer:  down,
			input:   "review\nPerfectly fine review",
			check:   func(err error) bool { var e *sentiment.ConnectivityError; return errors.As(err, &e) },
			message: "Could not reach",
		},
		{
			name:    "nothing scored",
			scorer:  broken,
			input:   "review\nPerfectly fine review",
			check:   func(err error) bool { return errors.Is(err, ErrNoScoredReviews) },
			message: "did not score any review",
		},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAnalyzer(tt.scorer).AnalyzeLines(context.Background(), SplitLines(tt.input))
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			msg := UserMessage(err)
			if !strings.Contains(msg, tt.message) {
				t.Errorf("UserMessage = %q; want it to contain %q", msg, tt.message)
			}
			if seen[msg] {
				t.Errorf("message %q is not distinct", msg)
			}
			seen[msg] = true
		})
	}
}

func TestUserMessageFallback(t *testing.T) {
	if got := UserMessage(errors.New("disk full")); got != "disk full" {
		t.Errorf("UserMessage fallback: got %q", got)
	}
	if got := UserMessage(nil); got != "" {
		t.Errorf("UserMessage(nil): got %q", got)
	}
}
