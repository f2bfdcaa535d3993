package service_test

import (
	"context"
	"testing"
	"time"

	"fable-server/internal/interfaces/mocks"
	"fable-server/internal/models"
	"fable-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type readingFixture struct {
	storyRepo  *mocks.StoryRepository
	stateRepo  *mocks.PlayStateRepository
	recordRepo *mocks.PlayRecordRepository
	svc        *service.ReadingService
}

func newReadingFixture() *readingFixture {
	f := &readingFixture{
		storyRepo:  new(mocks.StoryRepository),
		stateRepo:  new(mocks.PlayStateRepository),
		recordRepo: new(mocks.PlayRecordRepository),
	}
	f.svc = service.NewReadingService(nil, &mocks.TxManager{}, f.storyRepo, f.stateRepo, f.recordRepo, zap.NewNop())
	return f
}

// publishedStory builds a published three-page story: start -> middle -> ending.
func publishedStory() (*models.Story, *models.Page, *models.Page, *models.Page) {
	story := &models.Story{ID: uuid.New(), AuthorID: uuid.New(), Status: models.StatusPublished}
	start := story.AddPage(models.Page{Text: "start"})
	middle := story.AddPage(models.Page{Text: "middle"})
	ending := story.AddPage(models.Page{Text: "the end", IsEnding: true, EndingLabel: "classic"})
	story.FindPage(start.ID).AddChoice("continue", middle.ID)
	story.FindPage(middle.ID).AddChoice("finish", ending.ID)
	_ = story.SetStartPage(start.ID)
	return story, story.FindPage(start.ID), story.FindPage(middle.ID), story.FindPage(ending.ID)
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()

	t.Run("returns the start page and bumps the counter", func(t *testing.T) {
		story, start, _, _ := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.storyRepo.On("IncrementTimesStarted", ctx, mock.Anything, story.ID).Return(nil).Once()

		result, err := f.svc.Start(ctx, readerID, story.ID)
		require.NoError(t, err)
		assert.Equal(t, start.ID, result.StartPage.ID)
		assert.Equal(t, int64(1), result.Story.TimesStarted)
		f.storyRepo.AssertExpectations(t)
	})

	t.Run("draft story cannot be started", func(t *testing.T) {
		story, _, _, _ := publishedStory()
		story.Status = models.StatusDraft
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Start(ctx, readerID, story.ID)
		assert.ErrorIs(t, err, models.ErrNotPublished)
		f.storyRepo.AssertNotCalled(t, "IncrementTimesStarted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("published story without a start page", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Start(ctx, readerID, story.ID)
		assert.ErrorIs(t, err, models.ErrNoStartPage)
	})
}

func TestAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("follows a choice to its target", func(t *testing.T) {
		story, start, middle, _ := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		result, err := f.svc.Advance(ctx, story.ID, start.ID, start.Choices[0].ID)
		require.NoError(t, err)
		assert.Equal(t, middle.ID, result.Page.ID)
		assert.False(t, result.Ended)
	})

	t.Run("reports the ended flag on an ending page", func(t *testing.T) {
		story, _, middle, ending := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		result, err := f.svc.Advance(ctx, story.ID, middle.ID, middle.Choices[0].ID)
		require.NoError(t, err)
		assert.Equal(t, ending.ID, result.Page.ID)
		assert.True(t, result.Ended)
	})

	t.Run("broken choice target is recoverable", func(t *testing.T) {
		story, start, middle, _ := publishedStory()
		story.RemovePage(middle.ID)
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Advance(ctx, story.ID, start.ID, start.Choices[0].ID)
		assert.ErrorIs(t, err, models.ErrInvalidReference)
	})
}

func TestSaveProgress(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()

	t.Run("upserts the state", func(t *testing.T) {
		story, _, middle, _ := publishedStory()
		f := newReadingFixture()
		path := []uuid.UUID{*story.StartPageID, middle.ID}

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.stateRepo.On("Upsert", ctx, mock.Anything, mock.MatchedBy(func(s *models.PlayState) bool {
			assert.Equal(t, readerID, s.ReaderID)
			assert.Equal(t, middle.ID, s.CurrentPageID)
			assert.Equal(t, path, s.Path)
			return true
		})).Return(nil).Once()

		state, err := f.svc.SaveProgress(ctx, readerID, story.ID, middle.ID, path)
		require.NoError(t, err)
		assert.Equal(t, middle.ID, state.CurrentPageID)
		f.stateRepo.AssertExpectations(t)
	})

	t.Run("rejects a page outside the story", func(t *testing.T) {
		story, _, _, _ := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.SaveProgress(ctx, readerID, story.ID, uuid.New(), nil)
		assert.ErrorIs(t, err, models.ErrInvalidReference)
		f.stateRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()

	t.Run("resolves the saved page", func(t *testing.T) {
		story, _, middle, _ := publishedStory()
		f := newReadingFixture()
		state := &models.PlayState{ReaderID: readerID, StoryID: story.ID, CurrentPageID: middle.ID}

		f.stateRepo.On("Get", ctx, mock.Anything, readerID, story.ID).Return(state, nil).Once()
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		result, err := f.svc.Resume(ctx, readerID, story.ID)
		require.NoError(t, err)
		assert.Equal(t, middle.ID, result.CurrentPage.ID)
	})

	t.Run("no save", func(t *testing.T) {
		story, _, _, _ := publishedStory()
		f := newReadingFixture()

		f.stateRepo.On("Get", ctx, mock.Anything, readerID, story.ID).Return(nil, models.ErrNotFound).Once()

		_, err := f.svc.Resume(ctx, readerID, story.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("saved page deleted since keeps the save", func(t *testing.T) {
		story, _, middle, _ := publishedStory()
		f := newReadingFixture()
		state := &models.PlayState{ReaderID: readerID, StoryID: story.ID, CurrentPageID: middle.ID}
		story.RemovePage(middle.ID)

		f.stateRepo.On("Get", ctx, mock.Anything, readerID, story.ID).Return(state, nil).Once()
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Resume(ctx, readerID, story.ID)
		assert.ErrorIs(t, err, models.ErrInvalidReference)
		f.stateRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFinish(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()
	startedAt := time.Now().Add(-10 * time.Minute)

	t.Run("records, clears the save and bumps the counter", func(t *testing.T) {
		story, start, middle, ending := publishedStory()
		f := newReadingFixture()
		path := []uuid.UUID{start.ID, middle.ID, ending.ID}

		f.storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("Create", ctx, mock.Anything, mock.MatchedBy(func(r *models.PlayRecord) bool {
			assert.Equal(t, readerID, r.ReaderID)
			assert.Equal(t, ending.ID, r.EndingPageID)
			assert.Equal(t, path, r.Path)
			return true
		})).Return(nil).Once()
		f.stateRepo.On("Delete", ctx, mock.Anything, readerID, story.ID).Return(nil).Once()
		f.storyRepo.On("IncrementTimesFinished", ctx, mock.Anything, story.ID).Return(nil).Once()

		record, err := f.svc.Finish(ctx, readerID, story.ID, ending.ID, path, startedAt)
		require.NoError(t, err)
		assert.Equal(t, ending.ID, record.EndingPageID)
		f.recordRepo.AssertExpectations(t)
		f.stateRepo.AssertExpectations(t)
		f.storyRepo.AssertExpectations(t)
	})

	t.Run("non-ending page creates nothing and deletes nothing", func(t *testing.T) {
		story, _, middle, _ := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Finish(ctx, readerID, story.ID, middle.ID, nil, startedAt)
		assert.ErrorIs(t, err, models.ErrNotAnEnding)
		f.recordRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		f.stateRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.storyRepo.AssertNotCalled(t, "IncrementTimesFinished", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown page", func(t *testing.T) {
		story, _, _, _ := publishedStory()
		f := newReadingFixture()

		f.storyRepo.On("GetForUpdate", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		_, err := f.svc.Finish(ctx, readerID, story.ID, uuid.New(), nil, startedAt)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestListMyPlays(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()

	t.Run("enriches records with story and ending details", func(t *testing.T) {
		story, _, _, ending := publishedStory()
		story.Title = "The Cave"
		f := newReadingFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), ReaderID: readerID, StoryID: story.ID, EndingPageID: ending.ID},
		}
		f.recordRepo.On("ListByReader", ctx, mock.Anything, readerID).Return(records, nil).Once()
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		plays, err := f.svc.ListMyPlays(ctx, readerID)
		require.NoError(t, err)
		require.Len(t, plays, 1)
		assert.Equal(t, "The Cave", plays[0].StoryTitle)
		assert.Equal(t, "classic", plays[0].EndingLabel)
	})

	t.Run("removed ending keeps the bare record", func(t *testing.T) {
		story, _, _, ending := publishedStory()
		endingID := ending.ID
		story.RemovePage(endingID)
		f := newReadingFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), ReaderID: readerID, StoryID: story.ID, EndingPageID: endingID},
		}
		f.recordRepo.On("ListByReader", ctx, mock.Anything, readerID).Return(records, nil).Once()
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()

		plays, err := f.svc.ListMyPlays(ctx, readerID)
		require.NoError(t, err)
		require.Len(t, plays, 1)
		assert.Empty(t, plays[0].EndingLabel)
	})
}
