package service_test

import (
	"context"
	"testing"

	"fable-server/internal/interfaces/mocks"
	"fable-server/internal/models"
	"fable-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStoryService(storyRepo *mocks.StoryRepository) *service.StoryService {
	return service.NewStoryService(nil, &mocks.TxManager{}, storyRepo, zap.NewNop())
}

func TestCreateStory(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("creates a draft", func(t *testing.T) {
		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
			assert.Equal(t, authorID, s.AuthorID)
			assert.Equal(t, models.StatusDraft, s.Status)
			assert.Equal(t, "The Cave", s.Title)
			assert.NotNil(t, s.Pages)
			return true
		})).Return(nil).Once()

		story, err := svc.CreateStory(ctx, authorID, service.CreateStoryParams{Title: "The Cave"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, story.Status)
		storyRepo.AssertExpectations(t)
	})

	t.Run("rejects blank title", func(t *testing.T) {
		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		_, err := svc.CreateStory(ctx, authorID, service.CreateStoryParams{Title: "   "})
		assert.ErrorIs(t, err, models.ErrValidation)
		storyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	newDraft := func() *models.Story {
		story := &models.Story{ID: uuid.New(), AuthorID: authorID, Status: models.StatusDraft}
		return story
	}

	t.Run("publishes when the gate passes", func(t *testing.T) {
		story := newDraft()
		start := story.AddPage(models.Page{Text: "start"})
		require.NoError(t, story.SetStartPage(start.ID))

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", ctx, mock.Anything, mock.MatchedBy(func(s *models.Story) bool {
			return s.Status == models.StatusPublished
		})).Return(nil).Once()

		published, err := svc.Publish(ctx, authorID, nil, story.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPublished, published.Status)
		storyRepo.AssertExpectations(t)
	})

	t.Run("refusal leaves the story in draft", func(t *testing.T) {
		story := newDraft()
		story.AddPage(models.Page{Text: "no start set"})

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.Publish(ctx, authorID, nil, story.ID)
		assert.ErrorIs(t, err, models.ErrNoStartPage)
		assert.Equal(t, models.StatusDraft, story.Status)
		storyRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("refusal on stale start pointer", func(t *testing.T) {
		story := newDraft()
		stale := uuid.New()
		story.StartPageID = &stale

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.Publish(ctx, authorID, nil, story.ID)
		assert.ErrorIs(t, err, models.ErrInvalidReference)
		assert.Equal(t, models.StatusDraft, story.Status)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		story := newDraft()

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := svc.Publish(ctx, uuid.New(), []string{string(models.RoleAuthor)}, story.ID)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		story := newDraft()
		start := story.AddPage(models.Page{Text: "start"})
		require.NoError(t, story.SetStartPage(start.ID))

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", ctx, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Publish(ctx, uuid.New(), []string{string(models.RoleAdmin)}, story.ID)
		assert.NoError(t, err)
	})
}

func TestPageMutations(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("AddPage requires text", func(t *testing.T) {
		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		_, err := svc.AddPage(ctx, authorID, nil, uuid.New(), service.PageParams{Text: ""})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("AddChoice accepts an unresolvable target", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), AuthorID: authorID}
		page := story.AddPage(models.Page{Text: "crossroads"})

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		storyRepo.On("Update", ctx, mock.Anything, story).Return(nil).Once()

		danglingTarget := uuid.New()
		choice, err := svc.AddChoice(ctx, authorID, nil, story.ID, page.ID, "into the mist", danglingTarget)
		require.NoError(t, err)
		assert.Equal(t, danglingTarget, choice.TargetPageID)
	})

	t.Run("RemovePage on unknown page", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), AuthorID: authorID}

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		err := svc.RemovePage(ctx, authorID, nil, story.ID, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()

	t.Run("owner reads the start page without counters", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), AuthorID: authorID, Status: models.StatusDraft}
		start := story.AddPage(models.Page{Text: "draft start"})
		require.NoError(t, story.SetStartPage(start.ID))

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, page, err := svc.Preview(ctx, authorID, nil, story.ID)
		require.NoError(t, err)
		assert.Equal(t, start.ID, page.ID)
		storyRepo.AssertNotCalled(t, "IncrementTimesStarted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("preview without a start page", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), AuthorID: authorID, Status: models.StatusDraft}

		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, _, err := svc.Preview(ctx, authorID, nil, story.ID)
		assert.ErrorIs(t, err, models.ErrNoStartPage)
	})
}

func TestAdminTransitions(t *testing.T) {
	ctx := context.Background()
	storyID := uuid.New()

	t.Run("suspend", func(t *testing.T) {
		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("UpdateStatus", ctx, mock.Anything, storyID, models.StatusSuspended).Return(nil).Once()
		assert.NoError(t, svc.Suspend(ctx, storyID))
		storyRepo.AssertExpectations(t)
	})

	t.Run("reinstate", func(t *testing.T) {
		storyRepo := new(mocks.StoryRepository)
		svc := newStoryService(storyRepo)

		storyRepo.On("UpdateStatus", ctx, mock.Anything, storyID, models.StatusPublished).Return(nil).Once()
		assert.NoError(t, svc.Reinstate(ctx, storyID))
		storyRepo.AssertExpectations(t)
	})
}
