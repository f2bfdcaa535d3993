package service

import (
	"context"
	"strings"
	"time"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedbackService handles reader ratings and moderation reports. Both live
// as sub-documents of the story, so every mutation runs under the story's
// row lock.
type FeedbackService struct {
	txManager interfaces.TxManager
	storyRepo interfaces.StoryRepository
	logger    *zap.Logger
}

// NewFeedbackService creates the feedback service.
func NewFeedbackService(
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		txManager: txManager,
		storyRepo: storyRepo,
		logger:    logger.Named("FeedbackService"),
	}
}

// RatingResult is the payload returned after rating a story.
type RatingResult struct {
	MeanRating  float64 `json:"mean_rating"`
	RatingCount int     `json:"rating_count"`
}

// Rate records or overwrites the reader's score for a published story.
// One rating per reader: a second call replaces the first and refreshes
// UpdatedAt, the creation time is kept.
func (s *FeedbackService) Rate(ctx context.Context, readerID, storyID uuid.UUID, score int, comment string) (*RatingResult, error) {
	if score < 1 || score > 5 {
		return nil, validationError("score must be between 1 and 5")
	}

	var result *RatingResult
	err := s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if story.Status != models.StatusPublished {
			return models.ErrNotPublished
		}

		now := time.Now().UTC()
		if existing := story.FindRating(readerID); existing != nil {
			existing.Score = score
			existing.Comment = comment
			existing.UpdatedAt = now
		} else {
			story.Ratings = append(story.Ratings, models.Rating{
				ReaderID:  readerID,
				Score:     score,
				Comment:   comment,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		if err := s.storyRepo.Update(ctx, q, story); err != nil {
			return err
		}
		result = &RatingResult{
			MeanRating:  story.MeanRating(),
			RatingCount: len(story.Ratings),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Story rated", zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID), zap.Int("score", score))
	return result, nil
}

// Report files a moderation report against a published story. A reader may
// report a story once; duplicates are rejected, never merged. Returns the
// total report count.
func (s *FeedbackService) Report(ctx context.Context, readerID, storyID uuid.UUID, reason string) (int, error) {
	if strings.TrimSpace(reason) == "" {
		return 0, validationError("reason is required")
	}

	var count int
	err := s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if story.Status != models.StatusPublished {
			return models.ErrNotPublished
		}
		if story.FindReport(readerID) != nil {
			return models.ErrAlreadyReported
		}

		story.Reports = append(story.Reports, models.Report{
			ReaderID:  readerID,
			Reason:    reason,
			CreatedAt: time.Now().UTC(),
		})
		if err := s.storyRepo.Update(ctx, q, story); err != nil {
			return err
		}
		count = len(story.Reports)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("Story reported", zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID), zap.Int("reportCount", count))
	return count, nil
}
