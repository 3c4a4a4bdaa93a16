package storage

import (
	"github.com/google/uuid"

	"review-sentiment/models"
)

// ReviewWriter is the interface any storage backend for enriched reviews must satisfy.
type ReviewWriter interface {
	Write(uploadID uuid.UUID, reviews []*models.Review) error
	Close() error
}
