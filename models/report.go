package models

// LabelCounts holds per-label tallies over stored labels.
type LabelCounts struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Add counts one label.
func (c *LabelCounts) Add(l Label) {
	switch l {
	case LabelPositive:
		c.Positive++
	case LabelNeutral:
		c.Neutral++
	case LabelNegative:
		c.Negative++
	}
}

// Total is the number of labels counted.
func (c LabelCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// ProductSummary is the per-product rollup of an enriched record set.
// HasScoreRange is false when the group has no defined score under any
// model; HighestScore and LowestScore are then 0.
type ProductSummary struct {
	Product          string  `json:"product"`
	ReviewCount      int     `json:"reviewCount"`
	VaderAvgScore    float64 `json:"vaderAvgScore"`
	TextBlobAvgScore float64 `json:"textblobAvgScore"`
	HighestScore     float64 `json:"highestScore"`
	LowestScore      float64 `json:"lowestScore"`
	HasScoreRange    bool    `json:"hasScoreRange"`
}

// AvgScore returns the average for the given model.
func (p ProductSummary) AvgScore(m Model) float64 {
	if m == ModelTextBlob {
		return p.TextBlobAvgScore
	}
	return p.VaderAvgScore
}

// StatusCounts tallies records by enrichment outcome.
type StatusCounts struct {
	Scored          int `json:"scored"`
	PartiallyScored int `json:"partiallyScored"`
	Unscored        int `json:"unscored"`
}

// SentimentReport holds the computed statistics over an enriched record set.
type SentimentReport struct {
	TotalReviews   int              `json:"totalReviews"`
	PerProduct     []ProductSummary `json:"perProduct"`
	VaderCounts    LabelCounts      `json:"vaderCounts"`
	TextBlobCounts LabelCounts      `json:"textblobCounts"`
	Status         StatusCounts     `json:"status"`
}

// Counts returns the label counts for the given model.
func (r *SentimentReport) Counts(m Model) LabelCounts {
	if m == ModelTextBlob {
		return r.TextBlobCounts
	}
	return r.VaderCounts
}
