package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ interfaces.PlayRecordRepository = (*pgPlayRecordRepository)(nil)

type pgPlayRecordRepository struct {
	logger *zap.Logger
}

// NewPgPlayRecordRepository creates a new play record repository instance.
func NewPgPlayRecordRepository(logger *zap.Logger) interfaces.PlayRecordRepository {
	return &pgPlayRecordRepository{
		logger: logger.Named("PgPlayRecordRepo"),
	}
}

const (
	createPlayRecordQuery = `
		INSERT INTO play_records (id, reader_id, story_id, ending_page_id, path, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listPlayRecordsByStoryQuery = `
		SELECT id, reader_id, story_id, ending_page_id, path, started_at, finished_at
		FROM play_records
		WHERE story_id = $1
		ORDER BY finished_at DESC`

	listPlayRecordsByReaderAndStoryQuery = `
		SELECT id, reader_id, story_id, ending_page_id, path, started_at, finished_at
		FROM play_records
		WHERE reader_id = $1 AND story_id = $2
		ORDER BY finished_at ASC`

	listPlayRecordsByReaderQuery = `
		SELECT id, reader_id, story_id, ending_page_id, path, started_at, finished_at
		FROM play_records
		WHERE reader_id = $1
		ORDER BY finished_at DESC`
)

// playRecordRow is the scan target for pgxscan; path arrives as raw jsonb.
type playRecordRow struct {
	ID           uuid.UUID `db:"id"`
	ReaderID     uuid.UUID `db:"reader_id"`
	StoryID      uuid.UUID `db:"story_id"`
	EndingPageID uuid.UUID `db:"ending_page_id"`
	Path         []byte    `db:"path"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
}

func (row *playRecordRow) toModel() (*models.PlayRecord, error) {
	record := &models.PlayRecord{
		ID:           row.ID,
		ReaderID:     row.ReaderID,
		StoryID:      row.StoryID,
		EndingPageID: row.EndingPageID,
		StartedAt:    row.StartedAt,
		FinishedAt:   row.FinishedAt,
	}
	if err := json.Unmarshal(row.Path, &record.Path); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	return record, nil
}

// Create appends a finished playthrough. Records are never updated or deleted
// individually; they only disappear when the story is removed.
func (r *pgPlayRecordRepository) Create(ctx context.Context, querier interfaces.DBTX, record *models.PlayRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}
	if record.Path == nil {
		record.Path = []uuid.UUID{}
	}
	pathJSON, err := json.Marshal(record.Path)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}

	_, err = querier.Exec(ctx, createPlayRecordQuery,
		record.ID, record.ReaderID, record.StoryID, record.EndingPageID,
		pathJSON, record.StartedAt, record.FinishedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create play record", zap.Error(err),
			zap.Stringer("readerID", record.ReaderID), zap.Stringer("storyID", record.StoryID))
		return err
	}
	r.logger.Debug("Created play record", zap.Stringer("recordID", record.ID))
	return nil
}

func (r *pgPlayRecordRepository) ListByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.PlayRecord, error) {
	return r.list(ctx, querier, listPlayRecordsByStoryQuery, storyID)
}

func (r *pgPlayRecordRepository) ListByReaderAndStory(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) ([]*models.PlayRecord, error) {
	return r.list(ctx, querier, listPlayRecordsByReaderAndStoryQuery, readerID, storyID)
}

func (r *pgPlayRecordRepository) ListByReader(ctx context.Context, querier interfaces.DBTX, readerID uuid.UUID) ([]*models.PlayRecord, error) {
	return r.list(ctx, querier, listPlayRecordsByReaderQuery, readerID)
}

func (r *pgPlayRecordRepository) list(ctx context.Context, querier interfaces.DBTX, query string, args ...interface{}) ([]*models.PlayRecord, error) {
	var rows []*playRecordRow
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list play records", zap.Error(err))
		return nil, err
	}
	records := make([]*models.PlayRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toModel()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
