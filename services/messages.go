package services

import (
	"errors"

	"review-sentiment/sentiment"
)

// UserMessage turns a pipeline error into a message that points at its
// remedy. Unknown errors fall back to their own text.
func UserMessage(err error) string {
	var colErr *ColumnResolutionError
	var connErr *sentiment.ConnectivityError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &colErr):
		return "The file has no review column. Name one column review_content, review, reseña, comentario, text or texto."
	case errors.Is(err, ErrNoValidReviews):
		return "No valid reviews were found. Reviews must have more than 5 characters and cannot be only numbers."
	case errors.As(err, &connErr):
		return "Could not reach the sentiment service at " + connErr.URL + ". Check that it is running."
	case errors.Is(err, ErrNoScoredReviews):
		return "The sentiment service did not score any review. Check the service logs and try again."
	}
	return err.Error()
}
