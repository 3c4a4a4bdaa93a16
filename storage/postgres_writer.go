package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"review-sentiment/models"
	"review-sentiment/utils"
)

// PostgresWriter persists the current upload episode's enriched reviews.
// Each Write replaces the previous episode wholesale.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reviews (
			id                 SERIAL PRIMARY KEY,
			upload_id          UUID          NOT NULL,
			review_id          TEXT          NOT NULL,
			product            TEXT          NOT NULL,
			review             TEXT          NOT NULL,
			vader_score        DOUBLE PRECISION,
			vader_sentiment    VARCHAR(16),
			textblob_score     DOUBLE PRECISION,
			textblob_sentiment VARCHAR(16),
			status             VARCHAR(32)   NOT NULL,
			created_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			UNIQUE (upload_id, review_id)
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product);
		CREATE INDEX IF NOT EXISTS idx_reviews_status  ON reviews(status);
	`)
	return err
}

// Write stores reviews for uploadID inside one transaction, deleting any
// previous episode first.
func (pw *PostgresWriter) Write(uploadID uuid.UUID, reviews []*models.Review) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM reviews"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(reviews); i += batchSize {
		end := i + batchSize
		if end > len(reviews) {
			end = len(reviews)
		}
		if err := insertBatch(tx, uploadID, reviews[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const reviewColumns = 9

func insertBatch(tx *sql.Tx, uploadID uuid.UUID, batch []*models.Review) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*reviewColumns)

	for idx, r := range batch {
		base := idx * reviewColumns
		placeholders := make([]string, reviewColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			uploadID.String(), r.ID, r.Product, r.Text,
			nullScore(r.VaderScore), nullLabel(r.VaderSentiment),
			nullScore(r.TextBlobScore), nullLabel(r.TextBlobSentiment),
			string(r.Status))
	}

	query := fmt.Sprintf(`
		INSERT INTO reviews (upload_id, review_id, product, review,
			vader_score, vader_sentiment, textblob_score, textblob_sentiment, status)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// FetchAll retrieves the stored episode in original order.
func (pw *PostgresWriter) FetchAll() (uuid.UUID, []*models.Review, error) {
	rows, err := pw.db.Query(`
		SELECT upload_id, review_id, product, review,
		       vader_score, vader_sentiment, textblob_score, textblob_sentiment, status
		FROM reviews
		ORDER BY id
	`)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var uploadID uuid.UUID
	var reviews []*models.Review
	for rows.Next() {
		var (
			rawID             string
			vaderScore        sql.NullFloat64
			vaderSentiment    sql.NullString
			textblobScore     sql.NullFloat64
			textblobSentiment sql.NullString
			status            string
		)
		r := &models.Review{}
		if err := rows.Scan(
			&rawID, &r.ID, &r.Product, &r.Text,
			&vaderScore, &vaderSentiment, &textblobScore, &textblobSentiment, &status,
		); err != nil {
			return uuid.Nil, nil, fmt.Errorf("postgres: scan row: %w", err)
		}

		if uploadID, err = uuid.Parse(rawID); err != nil {
			return uuid.Nil, nil, fmt.Errorf("postgres: bad upload id %q: %w", rawID, err)
		}
		if err := restoreResult(r, models.ModelVader, vaderScore, vaderSentiment); err != nil {
			return uuid.Nil, nil, err
		}
		if err := restoreResult(r, models.ModelTextBlob, textblobScore, textblobSentiment); err != nil {
			return uuid.Nil, nil, err
		}
		r.Status = models.EnrichmentStatus(status)
		reviews = append(reviews, r)
	}
	return uploadID, reviews, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func restoreResult(r *models.Review, m models.Model, score sql.NullFloat64, label sql.NullString) error {
	if !score.Valid || !label.Valid {
		return nil
	}
	l, err := models.ParseLabel(label.String)
	if err != nil {
		return fmt.Errorf("postgres: review %s: %w", r.ID, err)
	}
	r.SetResult(models.SentimentResult{Model: m, Score: score.Float64, Label: l})
	return nil
}

func nullScore(s *float64) sql.NullFloat64 {
	if s == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *s, Valid: true}
}

func nullLabel(l *models.Label) sql.NullString {
	if l == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*l), Valid: true}
}
