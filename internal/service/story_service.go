package service

import (
	"context"
	"strings"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoryService covers the authoring side: drafts, the page/choice graph,
// lifecycle transitions and admin moderation.
type StoryService struct {
	db        interfaces.DBTX
	txManager interfaces.TxManager
	storyRepo interfaces.StoryRepository
	logger    *zap.Logger
}

// NewStoryService creates the authoring service.
func NewStoryService(
	db interfaces.DBTX,
	txManager interfaces.TxManager,
	storyRepo interfaces.StoryRepository,
	logger *zap.Logger,
) *StoryService {
	return &StoryService{
		db:        db,
		txManager: txManager,
		storyRepo: storyRepo,
		logger:    logger.Named("StoryService"),
	}
}

// CreateStoryParams carries the author-editable story metadata.
type CreateStoryParams struct {
	Title       string
	Description string
	Tags        []string
	Theme       string
}

// CreateStory creates a new draft for the author.
func (s *StoryService) CreateStory(ctx context.Context, authorID uuid.UUID, params CreateStoryParams) (*models.Story, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, validationError("title is required")
	}

	story := &models.Story{
		AuthorID:    authorID,
		Title:       title,
		Description: params.Description,
		Tags:        params.Tags,
		Theme:       params.Theme,
		Status:      models.StatusDraft,
		Pages:       []models.Page{},
		Ratings:     []models.Rating{},
		Reports:     []models.Report{},
	}
	if err := s.storyRepo.Create(ctx, s.db, story); err != nil {
		return nil, err
	}
	s.logger.Info("Story created", zap.Stringer("storyID", story.ID), zap.Stringer("authorID", authorID))
	return story, nil
}

// ListMyStories returns all stories owned by the author, newest first.
func (s *StoryService) ListMyStories(ctx context.Context, authorID uuid.UUID) ([]*models.Story, error) {
	return s.storyRepo.ListByAuthor(ctx, s.db, authorID)
}

// GetStory returns a story for its owner or an admin.
func (s *StoryService) GetStory(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID) (*models.Story, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(story, userID, roles); err != nil {
		return nil, err
	}
	return story, nil
}

// UpdateStoryParams carries the metadata fields an author may change after
// creation. Nil pointers leave the field untouched.
type UpdateStoryParams struct {
	Title       *string
	Description *string
	Tags        []string
	Theme       *string
}

// UpdateStory applies a partial metadata update to an owned story.
func (s *StoryService) UpdateStory(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID, params UpdateStoryParams) (*models.Story, error) {
	var updated *models.Story
	err := s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if err := requireOwner(story, userID, roles); err != nil {
			return err
		}

		if params.Title != nil {
			title := strings.TrimSpace(*params.Title)
			if title == "" {
				return validationError("title cannot be empty")
			}
			story.Title = title
		}
		if params.Description != nil {
			story.Description = *params.Description
		}
		if params.Tags != nil {
			story.Tags = params.Tags
		}
		if params.Theme != nil {
			story.Theme = *params.Theme
		}

		if err := s.storyRepo.Update(ctx, q, story); err != nil {
			return err
		}
		updated = story
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteStory removes a story. Play states and play records disappear with
// it through the store's cascade rule.
func (s *StoryService) DeleteStory(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID) error {
	return s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if err := requireOwner(story, userID, roles); err != nil {
			return err
		}
		if err := s.storyRepo.Delete(ctx, q, storyID); err != nil {
			return err
		}
		s.logger.Info("Story deleted", zap.Stringer("storyID", storyID))
		return nil
	})
}

// PageParams carries the editable fields of a page.
type PageParams struct {
	Title       string
	Text        string
	ImageURL    string
	IsEnding    bool
	EndingLabel string
}

// AddPage appends a new page to the story graph.
func (s *StoryService) AddPage(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID, params PageParams) (*models.Page, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, validationError("page text is required")
	}

	var created models.Page
	err := s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		created = story.AddPage(models.Page{
			Title:       params.Title,
			Text:        params.Text,
			ImageURL:    params.ImageURL,
			IsEnding:    params.IsEnding,
			EndingLabel: params.EndingLabel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdatePage rewrites the editable fields of an existing page.
func (s *StoryService) UpdatePage(ctx context.Context, userID uuid.UUID, roles []string, storyID, pageID uuid.UUID, params PageParams) (*models.Page, error) {
	if strings.TrimSpace(params.Text) == "" {
		return nil, validationError("page text is required")
	}

	var updated models.Page
	err := s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		page := story.FindPage(pageID)
		if page == nil {
			return models.ErrNotFound
		}
		page.Title = params.Title
		page.Text = params.Text
		page.ImageURL = params.ImageURL
		page.IsEnding = params.IsEnding
		page.EndingLabel = params.EndingLabel
		updated = *page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemovePage deletes a page. Choices elsewhere that pointed at it, and a
// start pointer that named it, are left dangling; callers hitting them
// get a broken-reference error.
func (s *StoryService) RemovePage(ctx context.Context, userID uuid.UUID, roles []string, storyID, pageID uuid.UUID) error {
	return s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		if !story.RemovePage(pageID) {
			return models.ErrNotFound
		}
		return nil
	})
}

// AddChoice appends a choice to a page. The target page id is accepted
// without validation.
func (s *StoryService) AddChoice(ctx context.Context, userID uuid.UUID, roles []string, storyID, pageID uuid.UUID, text string, targetPageID uuid.UUID) (*models.Choice, error) {
	if strings.TrimSpace(text) == "" {
		return nil, validationError("choice text is required")
	}
	if targetPageID == uuid.Nil {
		return nil, validationError("choice target is required")
	}

	var created models.Choice
	err := s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		page := story.FindPage(pageID)
		if page == nil {
			return models.ErrNotFound
		}
		created = page.AddChoice(text, targetPageID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RemoveChoice deletes a choice from a page.
func (s *StoryService) RemoveChoice(ctx context.Context, userID uuid.UUID, roles []string, storyID, pageID, choiceID uuid.UUID) error {
	return s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		page := story.FindPage(pageID)
		if page == nil {
			return models.ErrNotFound
		}
		if !page.RemoveChoice(choiceID) {
			return models.ErrNotFound
		}
		return nil
	})
}

// SetStartPage designates the story's entry page.
func (s *StoryService) SetStartPage(ctx context.Context, userID uuid.UUID, roles []string, storyID, pageID uuid.UUID) error {
	return s.mutateStory(ctx, userID, roles, storyID, func(story *models.Story) error {
		return story.SetStartPage(pageID)
	})
}

// Publish transitions a story to published after the structural gate.
// On refusal the status is left untouched.
func (s *StoryService) Publish(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID) (*models.Story, error) {
	var published *models.Story
	err := s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if err := requireOwner(story, userID, roles); err != nil {
			return err
		}
		if err := story.CanPublish(); err != nil {
			return err
		}
		story.Status = models.StatusPublished
		if err := s.storyRepo.Update(ctx, q, story); err != nil {
			return err
		}
		published = story
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Story published", zap.Stringer("storyID", storyID))
	return published, nil
}

// Unpublish returns a published story to draft.
func (s *StoryService) Unpublish(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID) (*models.Story, error) {
	var story *models.Story
	err := s.mutateStory(ctx, userID, roles, storyID, func(st *models.Story) error {
		st.Status = models.StatusDraft
		story = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Story unpublished", zap.Stringer("storyID", storyID))
	return story, nil
}

// Preview lets the owner read the start page of a draft without touching
// the start counter.
func (s *StoryService) Preview(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID) (*models.Story, *models.Page, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOwner(story, userID, roles); err != nil {
		return nil, nil, err
	}
	if story.StartPageID == nil {
		return nil, nil, models.ErrNoStartPage
	}
	start := story.StartPage()
	if start == nil {
		return nil, nil, models.ErrInvalidReference
	}
	return story, start, nil
}

// Suspend hides a story from readers. Admin only; the handler enforces the
// role, the service just performs the transition.
func (s *StoryService) Suspend(ctx context.Context, storyID uuid.UUID) error {
	if err := s.storyRepo.UpdateStatus(ctx, s.db, storyID, models.StatusSuspended); err != nil {
		return err
	}
	s.logger.Info("Story suspended", zap.Stringer("storyID", storyID))
	return nil
}

// Reinstate returns a suspended story to published.
func (s *StoryService) Reinstate(ctx context.Context, storyID uuid.UUID) error {
	if err := s.storyRepo.UpdateStatus(ctx, s.db, storyID, models.StatusPublished); err != nil {
		return err
	}
	s.logger.Info("Story reinstated", zap.Stringer("storyID", storyID))
	return nil
}

// mutateStory runs a read-modify-write cycle on an owned story under a row
// lock.
func (s *StoryService) mutateStory(ctx context.Context, userID uuid.UUID, roles []string, storyID uuid.UUID, mutate func(*models.Story) error) error {
	return s.txManager.WithTx(ctx, func(q interfaces.DBTX) error {
		story, err := s.storyRepo.GetForUpdate(ctx, q, storyID)
		if err != nil {
			return err
		}
		if err := requireOwner(story, userID, roles); err != nil {
			return err
		}
		if err := mutate(story); err != nil {
			return err
		}
		return s.storyRepo.Update(ctx, q, story)
	})
}
