package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var _ interfaces.PlayStateRepository = (*pgPlayStateRepository)(nil)

type pgPlayStateRepository struct {
	logger *zap.Logger
}

// NewPgPlayStateRepository creates a new play state repository instance.
func NewPgPlayStateRepository(logger *zap.Logger) interfaces.PlayStateRepository {
	return &pgPlayStateRepository{
		logger: logger.Named("PgPlayStateRepo"),
	}
}

const (
	upsertPlayStateQuery = `
		INSERT INTO play_states (reader_id, story_id, current_page_id, path, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (reader_id, story_id) DO UPDATE SET
			current_page_id = EXCLUDED.current_page_id,
			path = EXCLUDED.path,
			updated_at = EXCLUDED.updated_at`

	getPlayStateQuery = `
		SELECT reader_id, story_id, current_page_id, path, updated_at
		FROM play_states
		WHERE reader_id = $1 AND story_id = $2`

	deletePlayStateQuery = `DELETE FROM play_states WHERE reader_id = $1 AND story_id = $2`

	countPlayStatesByStoryQuery = `SELECT COUNT(*) FROM play_states WHERE story_id = $1`
)

// Upsert saves the reader's position in a story, overwriting any previous save.
func (r *pgPlayStateRepository) Upsert(ctx context.Context, querier interfaces.DBTX, state *models.PlayState) error {
	state.UpdatedAt = time.Now().UTC()
	if state.Path == nil {
		state.Path = []uuid.UUID{}
	}
	pathJSON, err := json.Marshal(state.Path)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}

	_, err = querier.Exec(ctx, upsertPlayStateQuery,
		state.ReaderID, state.StoryID, state.CurrentPageID, pathJSON, state.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert play state", zap.Error(err),
			zap.Stringer("readerID", state.ReaderID), zap.Stringer("storyID", state.StoryID))
		return err
	}
	r.logger.Debug("Upserted play state",
		zap.Stringer("readerID", state.ReaderID), zap.Stringer("storyID", state.StoryID))
	return nil
}

func (r *pgPlayStateRepository) Get(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) (*models.PlayState, error) {
	state := &models.PlayState{}
	var pathJSON []byte

	err := querier.QueryRow(ctx, getPlayStateQuery, readerID, storyID).Scan(
		&state.ReaderID, &state.StoryID, &state.CurrentPageID, &pathJSON, &state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get play state", zap.Error(err),
			zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID))
		return nil, err
	}
	if err := json.Unmarshal(pathJSON, &state.Path); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	return state, nil
}

// Delete removes the save if it exists. Missing saves are not an error.
func (r *pgPlayStateRepository) Delete(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) error {
	_, err := querier.Exec(ctx, deletePlayStateQuery, readerID, storyID)
	if err != nil {
		r.logger.Error("Failed to delete play state", zap.Error(err),
			zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID))
		return err
	}
	return nil
}

func (r *pgPlayStateRepository) CountByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int64, error) {
	var count int64
	err := querier.QueryRow(ctx, countPlayStatesByStoryQuery, storyID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count play states", zap.Error(err), zap.Stringer("storyID", storyID))
		return 0, err
	}
	return count, nil
}
