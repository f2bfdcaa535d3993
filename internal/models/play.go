package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayState is the single resumable in-progress playthrough a reader holds
// for a story. (reader, story) is a natural key: saves upsert, they never
// duplicate. The path includes the current page as its last element.
type PlayState struct {
	ReaderID      uuid.UUID   `json:"reader_id" db:"reader_id"`
	StoryID       uuid.UUID   `json:"story_id" db:"story_id"`
	CurrentPageID uuid.UUID   `json:"current_page_id" db:"current_page_id"`
	Path          []uuid.UUID `json:"path" db:"-"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// PlayRecord is one finished playthrough. Records are immutable once
// created and accumulate indefinitely; they are the statistical population
// for ending distributions and path-similarity comparisons.
type PlayRecord struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	ReaderID     uuid.UUID   `json:"reader_id" db:"reader_id"`
	StoryID      uuid.UUID   `json:"story_id" db:"story_id"`
	EndingPageID uuid.UUID   `json:"ending_page_id" db:"ending_page_id"`
	Path         []uuid.UUID `json:"path" db:"-"`
	StartedAt    time.Time   `json:"started_at" db:"started_at"`
	FinishedAt   time.Time   `json:"finished_at" db:"finished_at"`
}
