package interfaces

import (
	"context"

	"fable-server/internal/models"

	"github.com/google/uuid"
)

// PlayStateRepository persists in-progress playthroughs, one row per
// (reader, story) pair.
type PlayStateRepository interface {
	// Upsert creates the play state or overwrites it wholesale when the
	// (reader, story) row already exists. Last write wins.
	Upsert(ctx context.Context, querier DBTX, state *models.PlayState) error

	// Get retrieves the reader's saved state for a story.
	// Returns models.ErrNotFound when no save exists.
	Get(ctx context.Context, querier DBTX, readerID, storyID uuid.UUID) (*models.PlayState, error)

	// Delete removes the reader's saved state for a story. Deleting an
	// absent state is not an error.
	Delete(ctx context.Context, querier DBTX, readerID, storyID uuid.UUID) error

	// CountByStory counts live play states for a story (the "abandoned or
	// in progress" population).
	CountByStory(ctx context.Context, querier DBTX, storyID uuid.UUID) (int64, error)
}
