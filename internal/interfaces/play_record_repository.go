package interfaces

import (
	"context"

	"fable-server/internal/models"

	"github.com/google/uuid"
)

// PlayRecordRepository persists finished playthroughs. Records are
// append-only; there is no update method by design.
type PlayRecordRepository interface {
	// Create inserts a new immutable play record.
	Create(ctx context.Context, querier DBTX, record *models.PlayRecord) error

	// ListByStory retrieves every record for a story, newest first.
	ListByStory(ctx context.Context, querier DBTX, storyID uuid.UUID) ([]*models.PlayRecord, error)

	// ListByReaderAndStory retrieves one reader's records for a story,
	// oldest first (first finish first).
	ListByReaderAndStory(ctx context.Context, querier DBTX, readerID, storyID uuid.UUID) ([]*models.PlayRecord, error)

	// ListByReader retrieves every record a reader has accumulated across
	// stories, newest first.
	ListByReader(ctx context.Context, querier DBTX, readerID uuid.UUID) ([]*models.PlayRecord, error)
}
