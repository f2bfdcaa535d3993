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
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

type pgStoryRepository struct {
	logger *zap.Logger
}

// NewPgStoryRepository creates a new story repository instance.
// All methods take an explicit querier so they can run inside a transaction.
func NewPgStoryRepository(logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		logger: logger.Named("PgStoryRepo"),
	}
}

const storyFields = `
	id, author_id, title, description, tags, theme, status, start_page_id,
	times_started, times_finished, pages, ratings, reports, created_at, updated_at`

const (
	createStoryQuery = `
		INSERT INTO stories (
			id, author_id, title, description, tags, theme, status, start_page_id,
			times_started, times_finished, pages, ratings, reports, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getStoryByIDQuery = `SELECT ` + storyFields + ` FROM stories WHERE id = $1`

	getStoryForUpdateQuery = `SELECT ` + storyFields + ` FROM stories WHERE id = $1 FOR UPDATE`

	updateStoryQuery = `
		UPDATE stories SET
			title = $2,
			description = $3,
			tags = $4,
			theme = $5,
			status = $6,
			start_page_id = $7,
			pages = $8,
			ratings = $9,
			reports = $10,
			updated_at = $11
		WHERE id = $1`

	deleteStoryQuery = `DELETE FROM stories WHERE id = $1`

	listStoriesByAuthorQuery = `SELECT ` + storyFields + ` FROM stories WHERE author_id = $1 ORDER BY updated_at DESC`

	updateStoryStatusQuery = `UPDATE stories SET status = $2, updated_at = NOW() WHERE id = $1`

	incrementTimesStartedQuery = `UPDATE stories SET times_started = times_started + 1 WHERE id = $1`

	incrementTimesFinishedQuery = `UPDATE stories SET times_finished = times_finished + 1 WHERE id = $1`
)

func (r *pgStoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now

	pagesJSON, ratingsJSON, reportsJSON, err := marshalStoryDocs(story)
	if err != nil {
		r.logger.Error("Failed to marshal story documents", zap.Error(err), zap.Stringer("storyID", story.ID))
		return err
	}

	_, err = querier.Exec(ctx, createStoryQuery,
		story.ID, story.AuthorID, story.Title, story.Description, pq.Array(story.Tags),
		story.Theme, story.Status, story.StartPageID,
		story.TimesStarted, story.TimesFinished,
		pagesJSON, ratingsJSON, reportsJSON,
		story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create story", zap.Error(err), zap.Stringer("authorID", story.AuthorID))
		return err
	}
	r.logger.Debug("Created story", zap.Stringer("storyID", story.ID))
	return nil
}

func (r *pgStoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	return r.getByQuery(ctx, querier, getStoryByIDQuery, id)
}

// GetForUpdate locks the story row for the duration of the surrounding
// transaction. Callers must invoke it through a TxManager.
func (r *pgStoryRepository) GetForUpdate(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	return r.getByQuery(ctx, querier, getStoryForUpdateQuery, id)
}

func (r *pgStoryRepository) getByQuery(ctx context.Context, querier interfaces.DBTX, query string, id uuid.UUID) (*models.Story, error) {
	row := querier.QueryRow(ctx, query, id)
	story, err := scanStory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story", zap.Error(err), zap.Stringer("storyID", id))
		return nil, err
	}
	return story, nil
}

func (r *pgStoryRepository) Update(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	story.UpdatedAt = time.Now().UTC()

	pagesJSON, ratingsJSON, reportsJSON, err := marshalStoryDocs(story)
	if err != nil {
		r.logger.Error("Failed to marshal story documents", zap.Error(err), zap.Stringer("storyID", story.ID))
		return err
	}

	tag, err := querier.Exec(ctx, updateStoryQuery,
		story.ID, story.Title, story.Description, pq.Array(story.Tags),
		story.Theme, story.Status, story.StartPageID,
		pagesJSON, ratingsJSON, reportsJSON, story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update story", zap.Error(err), zap.Stringer("storyID", story.ID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) Delete(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	tag, err := querier.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.Error(err), zap.Stringer("storyID", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Debug("Deleted story", zap.Stringer("storyID", id))
	return nil
}

func (r *pgStoryRepository) ListByAuthor(ctx context.Context, querier interfaces.DBTX, authorID uuid.UUID) ([]*models.Story, error) {
	rows, err := querier.Query(ctx, listStoriesByAuthorQuery, authorID)
	if err != nil {
		r.logger.Error("Failed to list stories by author", zap.Error(err), zap.Stringer("authorID", authorID))
		return nil, err
	}
	defer rows.Close()
	return collectStories(rows)
}

// ListPublished returns published stories, most started first. Search matches
// title, description and tags case-insensitively; theme is an exact match.
func (r *pgStoryRepository) ListPublished(ctx context.Context, querier interfaces.DBTX, filter interfaces.StoryFilter) ([]*models.Story, error) {
	query, args := buildListPublishedQuery(filter)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list published stories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()
	return collectStories(rows)
}

func buildListPublishedQuery(filter interfaces.StoryFilter) (string, []interface{}) {
	query := `SELECT ` + storyFields + ` FROM stories WHERE status = $1`
	args := []interface{}{models.StatusPublished}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(
			" AND (title ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%d))",
			len(args), len(args), len(args))
	}
	if filter.Theme != "" {
		args = append(args, filter.Theme)
		query += fmt.Sprintf(" AND theme = $%d", len(args))
	}
	query += ` ORDER BY times_started DESC, created_at DESC`
	return query, args
}

func (r *pgStoryRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.StoryStatus) error {
	tag, err := querier.Exec(ctx, updateStoryStatusQuery, id, status)
	if err != nil {
		r.logger.Error("Failed to update story status", zap.Error(err), zap.Stringer("storyID", id), zap.String("status", string(status)))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) IncrementTimesStarted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	tag, err := querier.Exec(ctx, incrementTimesStartedQuery, id)
	if err != nil {
		r.logger.Error("Failed to increment times started", zap.Error(err), zap.Stringer("storyID", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) IncrementTimesFinished(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	tag, err := querier.Exec(ctx, incrementTimesFinishedQuery, id)
	if err != nil {
		r.logger.Error("Failed to increment times finished", zap.Error(err), zap.Stringer("storyID", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func marshalStoryDocs(story *models.Story) (pages, ratings, reports []byte, err error) {
	if story.Pages == nil {
		story.Pages = []models.Page{}
	}
	if story.Ratings == nil {
		story.Ratings = []models.Rating{}
	}
	if story.Reports == nil {
		story.Reports = []models.Report{}
	}
	if pages, err = json.Marshal(story.Pages); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal pages: %w", err)
	}
	if ratings, err = json.Marshal(story.Ratings); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal ratings: %w", err)
	}
	if reports, err = json.Marshal(story.Reports); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal reports: %w", err)
	}
	return pages, ratings, reports, nil
}

func scanStory(row pgx.Row) (*models.Story, error) {
	story := &models.Story{}
	var tags pq.StringArray
	var pagesJSON, ratingsJSON, reportsJSON []byte

	err := row.Scan(
		&story.ID, &story.AuthorID, &story.Title, &story.Description, &tags,
		&story.Theme, &story.Status, &story.StartPageID,
		&story.TimesStarted, &story.TimesFinished,
		&pagesJSON, &ratingsJSON, &reportsJSON,
		&story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	story.Tags = []string(tags)

	if err := json.Unmarshal(pagesJSON, &story.Pages); err != nil {
		return nil, fmt.Errorf("unmarshal pages: %w", err)
	}
	if err := json.Unmarshal(ratingsJSON, &story.Ratings); err != nil {
		return nil, fmt.Errorf("unmarshal ratings: %w", err)
	}
	if err := json.Unmarshal(reportsJSON, &story.Reports); err != nil {
		return nil, fmt.Errorf("unmarshal reports: %w", err)
	}
	return story, nil
}

func collectStories(rows pgx.Rows) ([]*models.Story, error) {
	stories := make([]*models.Story, 0)
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stories, nil
}
