package service

import (
	"context"
	"time"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingService covers the reader side: browsing, the per-page traversal
// loop, save/resume and finishing.
type ReadingService struct {
	db         interfaces.DBTX
	txManager  interfaces.TxManager
	storyRepo  interfaces.StoryRepository
	stateRepo  interfaces.PlayStateRepository
	recordRepo interfaces.PlayRecordRepository
	logger     *zap.Logger
}

// NewReadingService creates the reading service.
func NewReadingService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	stateRepo interfaces.PlayStateRepository,
	recordRepo interfaces.PlayRecordRepository,
	logger *zap.Logger,
) *ReadingService {
	return &ReadingService{
		db:         db,
		txManager:  txManager,
		storyRepo:  storyRepo,
		stateRepo:  stateRepo,
		recordRepo: recordRepo,
		logger:     logger.Named("ReadingService"),
	}
}

// BrowsePublished lists published stories matching the filter, most started
// first.
func (s *ReadingService) BrowsePublished(ctx context.Context, filter interfaces.StoryFilter) ([]*models.Story, error) {
	return s.storyRepo.ListPublished(ctx, s.db, filter)
}

// GetPublishedStory returns a story readers are allowed to see. Drafts and
// suspended stories read as not found so their existence is not leaked.
func (s *ReadingService) GetPublishedStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StatusPublished {
		return nil, models.ErrNotFound
	}
	return story, nil
}

// StartResult is the payload of a successful Start.
type StartResult struct {
	Story     *models.Story `json:"story"`
	StartPage *models.Page  `json:"start_page"`
}

// Start begins a playthrough: resolves the start page and bumps the
// times_started counter. It does not create a play state; the reader's
// position is only stored when they save.
func (s *ReadingService) Start(ctx context.Context, readerID, storyID uuid.UUID) (*StartResult, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != models.StatusPublished {
		return nil, models.ErrNotPublished
	}
	if story.StartPageID == nil {
		return nil, models.ErrNoStartPage
	}
	start := story.StartPage()
	if start == nil {
		return nil, models.ErrInvalidReference
	}

	if err := s.storyRepo.IncrementTimesStarted(ctx, s.db, storyID); err != nil {
		return nil, err
	}
	story.TimesStarted++

	s.logger.Debug("Playthrough started", zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID))
	return &StartResult{Story: story, StartPage: start}, nil
}

// GetPage returns one page of a published story with its choices.
func (s *ReadingService) GetPage(ctx context.Context, storyID, pageID uuid.UUID) (*models.Page, error) {
	story, err := s.GetPublishedStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	page := story.FindPage(pageID)
	if page == nil {
		return nil, models.ErrNotFound
	}
	return page, nil
}

// AdvanceResult is the payload of a traversal step.
type AdvanceResult struct {
	Page  *models.Page `json:"page"`
	Ended bool         `json:"ended"`
}

// Advance follows a choice from the current page to its target. A choice
// whose target no longer resolves yields ErrInvalidReference; the reader
// can pick another choice, nothing is lost.
func (s *ReadingService) Advance(ctx context.Context, storyID, fromPageID, choiceID uuid.UUID) (*AdvanceResult, error) {
	story, err := s.GetPublishedStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	from := story.FindPage(fromPageID)
	if from == nil {
		return nil, models.ErrNotFound
	}
	choice := from.FindChoice(choiceID)
	if choice == nil {
		return nil, models.ErrNotFound
	}
	target := story.FindPage(choice.TargetPageID)
	if target == nil {
		return nil, models.ErrInvalidReference
	}
	return &AdvanceResult{Page: target, Ended: target.IsEnding}, nil
}

// SaveProgress upserts the reader's position in a story. The page must
// belong to the story's current graph. Saving the same position twice is a
// no-op beyond the timestamp.
func (s *ReadingService) SaveProgress(ctx context.Context, readerID, storyID, currentPageID uuid.UUID, path []uuid.UUID) (*models.PlayState, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if story.FindPage(currentPageID) == nil {
		return nil, models.ErrInvalidReference
	}

	state := &models.PlayState{
		ReaderID:      readerID,
		StoryID:       storyID,
		CurrentPageID: currentPageID,
		Path:          path,
	}
	if err := s.stateRepo.Upsert(ctx, s.db, state); err != nil {
		return nil, err
	}
	s.logger.Debug("Progress saved", zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID))
	return state, nil
}

// ResumeResult is the payload of a successful Resume.
type ResumeResult struct {
	State       *models.PlayState `json:"state"`
	CurrentPage *models.Page      `json:"current_page"`
}

// Resume loads the reader's save and re-resolves the current page against
// the live graph. When the saved page has been deleted since, the save is
// kept intact and ErrInvalidReference is returned, so the client can offer
// a restart without destroying the record of where the reader was.
func (s *ReadingService) Resume(ctx context.Context, readerID, storyID uuid.UUID) (*ResumeResult, error) {
	state, err := s.stateRepo.Get(ctx, s.db, readerID, storyID)
	if err != nil {
		return nil, err
	}
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	page := story.FindPage(state.CurrentPageID)
	if page == nil {
		return nil, models.ErrInvalidReference
	}
	return &ResumeResult{State: state, CurrentPage: page}, nil
}

// Finish completes a playthrough on an ending page. Rejection on a
// non-ending page leaves no record and keeps any play state. Success writes
// the immutable record, drops the save and bumps times_finished, all in one
// transaction.
func (s *ReadingService) Finish(ctx context.Context, readerID, storyID, endingPageID uuid.UUID, path []uuid.UUID, startedAt time.Time) (*models.PlayRecord, error) {
	var record *models.PlayRecord
	err := s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		page := story.FindPage(endingPageID)
		if page == nil {
			return models.ErrNotFound
		}
		if !page.IsEnding {
			return models.ErrNotAnEnding
		}

		record = &models.PlayRecord{
			ReaderID:     readerID,
			StoryID:      storyID,
			EndingPageID: endingPageID,
			Path:         path,
			StartedAt:    startedAt,
		}
		if err := s.recordRepo.Create(ctx, q, record); err != nil {
			return err
		}
		if err := s.stateRepo.Delete(ctx, q, readerID, storyID); err != nil {
			return err
		}
		return s.storyRepo.IncrementTimesFinished(ctx, q, storyID)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Playthrough finished",
		zap.Stringer("readerID", readerID), zap.Stringer("storyID", storyID), zap.Stringer("endingPageID", endingPageID))
	return record, nil
}

// PlaySummary is one finished playthrough enriched with story and ending
// details for the reader's history view.
type PlaySummary struct {
	Record      *models.PlayRecord `json:"record"`
	StoryTitle  string             `json:"story_title"`
	EndingLabel string             `json:"ending_label,omitempty"`
}

// ListMyPlays returns the reader's finished playthroughs, newest first,
// enriched with story titles and ending labels. Plays whose story has been
// deleted are already gone through the cascade; endings removed from a
// living story keep the bare record.
func (s *ReadingService) ListMyPlays(ctx context.Context, readerID uuid.UUID) ([]*PlaySummary, error) {
	records, err := s.recordRepo.ListByReader(ctx, s.db, readerID)
	if err != nil {
		return nil, err
	}

	stories := make(map[uuid.UUID]*models.Story)
	summaries := make([]*PlaySummary, 0, len(records))
	for _, record := range records {
		story, ok := stories[record.StoryID]
		if !ok {
			story, err = s.storyRepo.GetByID(ctx, s.db, record.StoryID)
			if err != nil {
				return nil, err
			}
			stories[record.StoryID] = story
		}

		summary := &PlaySummary{Record: record, StoryTitle: story.Title}
		if page := story.FindPage(record.EndingPageID); page != nil {
			summary.EndingLabel = page.EndingLabel
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
