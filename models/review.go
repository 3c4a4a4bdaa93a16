package models

import (
	"fmt"
	"strings"
)

// Model names one of the remote sentiment-scoring backends.
type Model string

const (
	ModelVader    Model = "vader"
	ModelTextBlob Model = "textblob"
)

// Models lists every model a batch is enriched with, in call order.
var Models = []Model{ModelVader, ModelTextBlob}

// ParseModel accepts a model token case-insensitively.
func ParseModel(s string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(s))) {
	case ModelVader:
		return ModelVader, nil
	case ModelTextBlob:
		return ModelTextBlob, nil
	}
	return "", fmt.Errorf("unknown sentiment model %q (want %q or %q)", s, ModelVader, ModelTextBlob)
}

// DisplayName is the model name as shown in reports.
func (m Model) DisplayName() string {
	switch m {
	case ModelVader:
		return "VADER"
	case ModelTextBlob:
		return "TextBlob"
	}
	return string(m)
}

// Label is the closed three-valued sentiment classification.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// LabelThreshold is the score magnitude above which a score stops being Neutral.
const LabelThreshold = 0.05

// LabelFromScore derives a label with the same ±0.05 rule the scoring service applies.
func LabelFromScore(score float64) Label {
	switch {
	case score > LabelThreshold:
		return LabelPositive
	case score < -LabelThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// ParseLabel maps the service's localized label text onto the enumeration.
func ParseLabel(s string) (Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positivo", "positive":
		return LabelPositive, nil
	case "neutral", "neutro":
		return LabelNeutral, nil
	case "negativo", "negative":
		return LabelNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", s)
}

// Display returns the user-facing (Spanish) text for the label.
func (l Label) Display() string {
	switch l {
	case LabelPositive:
		return "Positivo"
	case LabelNeutral:
		return "Neutral"
	case LabelNegative:
		return "Negativo"
	}
	return ""
}

// SentimentResult is one successful scoring of one text under one model.
type SentimentResult struct {
	Text  string
	Model Model
	Score float64
	Label Label
}

// EnrichmentStatus tags how much of a record's remote scoring succeeded.
type EnrichmentStatus string

const (
	StatusPending         EnrichmentStatus = ""
	StatusScored          EnrichmentStatus = "scored"
	StatusPartiallyScored EnrichmentStatus = "partially_scored"
	StatusUnscored        EnrichmentStatus = "unscored"
)

// Review is one canonical review record. Bare records carry only ID, Product
// and Text; enrichment fills the per-model score and label pointers.
type Review struct {
	ID      string `json:"id"`
	Product string `json:"product"`
	Text    string `json:"review"`

	VaderScore        *float64 `json:"vaderScore,omitempty"`
	VaderSentiment    *Label   `json:"vaderSentiment,omitempty"`
	TextBlobScore     *float64 `json:"textblobScore,omitempty"`
	TextBlobSentiment *Label   `json:"textblobSentiment,omitempty"`

	Status EnrichmentStatus `json:"status,omitempty"`
}

// Clone returns a copy that shares no pointers with r.
func (r *Review) Clone() *Review {
	return &Review{
		ID:                r.ID,
		Product:           r.Product,
		Text:              r.Text,
		VaderScore:        copyPtr(r.VaderScore),
		VaderSentiment:    copyPtr(r.VaderSentiment),
		TextBlobScore:     copyPtr(r.TextBlobScore),
		TextBlobSentiment: copyPtr(r.TextBlobSentiment),
		Status:            r.Status,
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SetResult stores a model's score and label on the record.
func (r *Review) SetResult(res SentimentResult) {
	score, label := res.Score, res.Label
	switch res.Model {
	case ModelVader:
		r.VaderScore, r.VaderSentiment = &score, &label
	case ModelTextBlob:
		r.TextBlobScore, r.TextBlobSentiment = &score, &label
	}
}

// Result reports the stored score and label for a model, if both are present.
func (r *Review) Result(m Model) (float64, Label, bool) {
	switch m {
	case ModelVader:
		if r.VaderScore != nil && r.VaderSentiment != nil {
			return *r.VaderScore, *r.VaderSentiment, true
		}
	case ModelTextBlob:
		if r.TextBlobScore != nil && r.TextBlobSentiment != nil {
			return *r.TextBlobScore, *r.TextBlobSentiment, true
		}
	}
	return 0, "", false
}

// Score returns a model's score when defined.
func (r *Review) Score(m Model) (float64, bool) {
	switch m {
	case ModelVader:
		if r.VaderScore != nil {
			return *r.VaderScore, true
		}
	case ModelTextBlob:
		if r.TextBlobScore != nil {
			return *r.TextBlobScore, true
		}
	}
	return 0, false
}

// Sentiment returns a model's stored label when defined.
func (r *Review) Sentiment(m Model) (Label, bool) {
	switch m {
	case ModelVader:
		if r.VaderSentiment != nil {
			return *r.VaderSentiment, true
		}
	case ModelTextBlob:
		if r.TextBlobSentiment != nil {
			return *r.TextBlobSentiment, true
		}
	}
	return "", false
}
