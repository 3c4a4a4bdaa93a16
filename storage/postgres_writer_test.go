package storage

import (
	"database/sql"
	"testing"

	"review-sentiment/models"
)

func TestNullHelpers(t *testing.T) {
	if v := nullScore(nil); v.Valid {
		t.Error("nil score should be NULL")
	}
	s := 0.25
	if v := nullScore(&s); !v.Valid || v.Float64 != 0.25 {
		t.Errorf("nullScore(0.25) = %+v", v)
	}

	l := models.LabelNegative
	if v := nullLabel(&l); !v.Valid || v.String != "negative" {
		t.Errorf("nullLabel(negative) = %+v", v)
	}
}

func TestRestoreResult(t *testing.T) {
	r := &models.Review{ID: "review-3"}

	err := restoreResult(r, models.ModelTextBlob,
		sql.NullFloat64{Float64: -0.4, Valid: true}, sql.NullString{String: "negative", Valid: true})
	if err != nil {
		t.Fatal(err)
	}
	if s, l, ok := r.Result(models.ModelTextBlob); !ok || s != -0.4 || l != models.LabelNegative {
		t.Errorf("Result(textblob) = %v, %q, %v", s, l, ok)
	}

	if err := restoreResult(r, models.ModelVader, sql.NullFloat64{}, sql.NullString{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Score(models.ModelVader); ok {
		t.Error("NULL vader score should stay absent")
	}

	err = restoreResult(r, models.ModelVader,
		sql.NullFloat64{Float64: 1, Valid: true}, sql.NullString{String: "ecstatic", Valid: true})
	if err == nil {
		t.Error("unknown stored label should fail")
	}
}
