package interfaces

import (
	"context"

	"fable-server/internal/models"

	"github.com/google/uuid"
)

// StoryFilter narrows ListPublished results. Search is a case-insensitive
// substring match over title, description and tags; Theme is an exact match.
type StoryFilter struct {
	Search string
	Theme  string
}

// StoryRepository persists story documents with their embedded pages,
// ratings and reports.
type StoryRepository interface {
	// Create inserts a new story row.
	Create(ctx context.Context, querier DBTX, story *models.Story) error

	// GetByID retrieves a story by its unique ID.
	GetByID(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Story, error)

	// GetForUpdate retrieves a story and locks its row for the duration of
	// the surrounding transaction. Used for read-modify-write mutations of
	// the embedded documents (pages, ratings, reports).
	GetForUpdate(ctx context.Context, querier DBTX, id uuid.UUID) (*models.Story, error)

	// Update writes back every mutable field, including the embedded
	// documents, and bumps updated_at.
	Update(ctx context.Context, querier DBTX, story *models.Story) error

	// Delete removes the story row. Play states and play records referencing
	// the story are removed by the store's cascade rule.
	Delete(ctx context.Context, querier DBTX, id uuid.UUID) error

	// ListByAuthor retrieves all stories owned by an author, newest first.
	ListByAuthor(ctx context.Context, querier DBTX, authorID uuid.UUID) ([]*models.Story, error)

	// ListPublished retrieves published stories matching the filter, most
	// started first, then newest first.
	ListPublished(ctx context.Context, querier DBTX, filter StoryFilter) ([]*models.Story, error)

	// UpdateStatus performs a status-only transition (admin suspend/reinstate).
	UpdateStatus(ctx context.Context, querier DBTX, id uuid.UUID, status models.StoryStatus) error

	// IncrementTimesStarted atomically bumps the times_started counter.
	IncrementTimesStarted(ctx context.Context, querier DBTX, id uuid.UUID) error

	// IncrementTimesFinished atomically bumps the times_finished counter.
	IncrementTimesFinished(ctx context.Context, querier DBTX, id uuid.UUID) error
}
