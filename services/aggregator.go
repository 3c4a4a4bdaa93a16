package services

import (
	"fmt"
	"sort"
	"strings"

	"review-sentiment/models"
	"review-sentiment/utils"
)

// Aggregator computes per-product and corpus-wide sentiment statistics.
type Aggregator struct {
	logger *utils.Logger
}

func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

type productGroup struct {
	product  string
	count    int
	vader    []float64
	textblob []float64
}

// Aggregate groups records by exact product string. Averages use defined
// scores only (0 when none). The score range spans both models; a group
// with no defined scores gets HasScoreRange=false and a 0/0 range.
// PerProduct is ordered by review count, descending, ties in first-seen order.
func (a *Aggregator) Aggregate(reviews []*models.Review) *models.SentimentReport {
	report := &models.SentimentReport{
		TotalReviews: len(reviews),
		PerProduct:   []models.ProductSummary{},
	}

	index := make(map[string]int)
	var groups []*productGroup

	for _, r := range reviews {
		i, ok := index[r.Product]
		if !ok {
			i = len(groups)
			index[r.Product] = i
			groups = append(groups, &productGroup{product: r.Product})
		}
		g := groups[i]
		g.count++

		if s, ok := r.Score(models.ModelVader); ok {
			g.vader = append(g.vader, s)
		}
		if s, ok := r.Score(models.ModelTextBlob); ok {
			g.textblob = append(g.textblob, s)
		}
		if l, ok := r.Sentiment(models.ModelVader); ok {
			report.VaderCounts.Add(l)
		}
		if l, ok := r.Sentiment(models.ModelTextBlob); ok {
			report.TextBlobCounts.Add(l)
		}

		switch r.Status {
		case models.StatusScored:
			report.Status.Scored++
		case models.StatusPartiallyScored:
			report.Status.PartiallyScored++
		case models.StatusUnscored:
			report.Status.Unscored++
		}
	}

	for _, g := range groups {
		summary := models.ProductSummary{
			Product:          g.product,
			ReviewCount:      g.count,
			VaderAvgScore:    mean(g.vader),
			TextBlobAvgScore: mean(g.textblob),
		}
		all := append(append([]float64{}, g.vader...), g.textblob...)
		if len(all) > 0 {
			summary.HighestScore, summary.LowestScore = all[0], all[0]
			for _, s := range all[1:] {
				if s > summary.HighestScore {
					summary.HighestScore = s
				}
				if s < summary.LowestScore {
					summary.LowestScore = s
				}
			}
			summary.HasScoreRange = true
		}
		report.PerProduct = append(report.PerProduct, summary)
	}

	sort.SliceStable(report.PerProduct, func(i, j int) bool {
		return report.PerProduct[i].ReviewCount > report.PerProduct[j].ReviewCount
	})

	a.logger.Debug("[aggregator] %d reviews across %d products", len(reviews), len(groups))
	return report
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// Print renders the report for the selected model to stdout.
func (a *Aggregator) Print(r *models.SentimentReport, reviews []*models.Review, model models.Model) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 REVIEW SENTIMENT DASHBOARD (%s)\033[0m\n", model.DisplayName())
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Reviews analysed       : \033[1m%d\033[0m\n", r.TotalReviews)
	fmt.Printf("  Fully scored           : \033[1m%d\033[0m\n", r.Status.Scored)
	fmt.Printf("  Partially scored       : \033[1m%d\033[0m\n", r.Status.PartiallyScored)
	fmt.Printf("  Not scored             : \033[1m%d\033[0m\n", r.Status.Unscored)
	fmt.Println()

	counts := r.Counts(model)
	fmt.Printf("\033[1;33m  Sentiment Distribution (%s)\033[0m\n", model.DisplayName())
	fmt.Printf("  %s\n", thin)
	if counts.Total() == 0 {
		fmt.Printf("  No labelled reviews\n")
	} else {
		for _, row := range []struct {
			label models.Label
			n     int
		}{
			{models.LabelPositive, counts.Positive},
			{models.LabelNeutral, counts.Neutral},
			{models.LabelNegative, counts.Negative},
		} {
			pct := float64(row.n) * 100 / float64(counts.Total())
			fmt.Printf("  %-10s %s %d (%.0f%%)\n", row.label.Display(), strings.Repeat("█", row.n), row.n, pct)
		}
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Product Statistics\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.PerProduct) == 0 {
		fmt.Printf("  No products\n")
	}
	for _, p := range r.PerProduct {
		avg := p.AvgScore(model)
		rng := "n/a"
		if p.HasScoreRange {
			rng = fmt.Sprintf("%.2f / %.2f", p.LowestScore, p.HighestScore)
		}
		fmt.Printf("  %-28s %3d reviews  %-9s avg %6.3f  range %s\n",
			truncate(p.Product, 28), p.ReviewCount, models.LabelFromScore(avg).Display(), avg, rng)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Reviews\033[0m\n")
	fmt.Printf("  %s\n", thin)
	for _, rv := range reviews {
		fmt.Printf("  %-20s %-40s %s\n", truncate(rv.Product, 20), truncate(rv.Text, 40), labelCell(rv, model))
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func labelCell(r *models.Review, model models.Model) string {
	score, label, ok := r.Result(model)
	if !ok {
		return "sin analizar"
	}
	return fmt.Sprintf("%s (%.3f)", label.Display(), score)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
