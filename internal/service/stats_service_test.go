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

type statsFixture struct {
	storyRepo  *mocks.StoryRepository
	stateRepo  *mocks.PlayStateRepository
	recordRepo *mocks.PlayRecordRepository
	svc        *service.StatsService
}

func newStatsFixture() *statsFixture {
	f := &statsFixture{
		storyRepo:  new(mocks.StoryRepository),
		stateRepo:  new(mocks.PlayStateRepository),
		recordRepo: new(mocks.PlayRecordRepository),
	}
	f.svc = service.NewStatsService(nil, f.storyRepo, f.stateRepo, f.recordRepo, zap.NewNop())
	return f
}

func TestGetStoryStats(t *testing.T) {
	ctx := context.Background()

	t.Run("distribution is zero-initialised and completion uses distinct endings", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished, TimesStarted: 10, TimesFinished: 1}
		endA := story.AddPage(models.Page{Text: "end A", IsEnding: true, EndingLabel: "good"})
		endB := story.AddPage(models.Page{Text: "end B", IsEnding: true, EndingLabel: "bad"})
		f := newStatsFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), StoryID: story.ID, EndingPageID: endA.ID},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return(records, nil).Once()
		f.stateRepo.On("CountByStory", ctx, mock.Anything, story.ID).Return(int64(3), nil).Once()

		stats, err := f.svc.GetStoryStats(ctx, story.ID)
		require.NoError(t, err)

		// One ending reached, the other present with a zero count.
		assert.Equal(t, 1, stats.Distribution[endA.ID])
		assert.Equal(t, 0, stats.Distribution[endB.ID])
		assert.Equal(t, 50.0, stats.CompletionRate)
		assert.Equal(t, int64(3), stats.AbandonedCount)
		assert.Equal(t, int64(10), stats.TimesStarted)
	})

	t.Run("records for removed endings drop from the tally but not the counter", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished, TimesFinished: 2}
		endA := story.AddPage(models.Page{Text: "end A", IsEnding: true})
		removed := uuid.New()
		f := newStatsFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), StoryID: story.ID, EndingPageID: endA.ID},
			{ID: uuid.New(), StoryID: story.ID, EndingPageID: removed},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return(records, nil).Once()
		f.stateRepo.On("CountByStory", ctx, mock.Anything, story.ID).Return(int64(0), nil).Once()

		stats, err := f.svc.GetStoryStats(ctx, story.ID)
		require.NoError(t, err)

		sum := 0
		for _, n := range stats.Distribution {
			sum += n
		}
		assert.Equal(t, 1, sum)
		assert.Equal(t, int64(2), stats.TimesFinished)
		assert.NotContains(t, stats.Distribution, removed)
	})

	t.Run("no endings means zero completion", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}
		story.AddPage(models.Page{Text: "loop"})
		f := newStatsFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return([]*models.PlayRecord{}, nil).Once()
		f.stateRepo.On("CountByStory", ctx, mock.Anything, story.ID).Return(int64(0), nil).Once()

		stats, err := f.svc.GetStoryStats(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, stats.CompletionRate)
		assert.Empty(t, stats.Distribution)
	})

	t.Run("mean rating is derived at one decimal", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}
		story.Ratings = []models.Rating{
			{ReaderID: uuid.New(), Score: 3},
			{ReaderID: uuid.New(), Score: 4},
		}
		f := newStatsFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return([]*models.PlayRecord{}, nil).Once()
		f.stateRepo.On("CountByStory", ctx, mock.Anything, story.ID).Return(int64(0), nil).Once()

		stats, err := f.svc.GetStoryStats(ctx, story.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.5, stats.MeanRating)
		assert.Equal(t, 2, stats.RatingCount)
	})
}

func TestPathSimilarity(t *testing.T) {
	ctx := context.Background()
	story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}

	pages := make([]uuid.UUID, 4)
	for i := range pages {
		pages[i] = uuid.New()
	}

	t.Run("per-record set intersection over the longer path", func(t *testing.T) {
		f := newStatsFixture()

		// Record shares 2 of its 4 pages with a 3-page candidate: 2/4 = 50%.
		records := []*models.PlayRecord{
			{ID: uuid.New(), StoryID: story.ID, Path: []uuid.UUID{pages[0], pages[1], pages[2], pages[3]}},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return(records, nil).Once()

		candidate := []uuid.UUID{pages[0], pages[1], uuid.New()}
		result, err := f.svc.PathSimilarity(ctx, story.ID, candidate)
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.MeanSimilarity)
		assert.Equal(t, 1, result.ComparedCount)
		assert.False(t, result.FirstToFinish)
	})

	t.Run("mean over several records", func(t *testing.T) {
		f := newStatsFixture()

		// 100% against an identical path, 0% against a disjoint one: mean 50%.
		records := []*models.PlayRecord{
			{ID: uuid.New(), StoryID: story.ID, Path: []uuid.UUID{pages[0], pages[1]}},
			{ID: uuid.New(), StoryID: story.ID, Path: []uuid.UUID{pages[2], pages[3]}},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return(records, nil).Once()

		result, err := f.svc.PathSimilarity(ctx, story.ID, []uuid.UUID{pages[0], pages[1]})
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.MeanSimilarity)
	})

	t.Run("loops dilute the score through the raw path length", func(t *testing.T) {
		f := newStatsFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), StoryID: story.ID, Path: []uuid.UUID{pages[0], pages[1]}},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return(records, nil).Once()

		// Revisits still count pages once in the intersection, but the
		// denominator is the full walk: 2 / max(4, 2) = 50%.
		candidate := []uuid.UUID{pages[0], pages[1], pages[0], pages[1]}
		result, err := f.svc.PathSimilarity(ctx, story.ID, candidate)
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.MeanSimilarity)
	})

	t.Run("first to finish", func(t *testing.T) {
		f := newStatsFixture()

		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByStory", ctx, mock.Anything, story.ID).Return([]*models.PlayRecord{}, nil).Once()

		result, err := f.svc.PathSimilarity(ctx, story.ID, []uuid.UUID{pages[0]})
		require.NoError(t, err)
		assert.True(t, result.FirstToFinish)
		assert.Equal(t, 0.0, result.MeanSimilarity)
		assert.Equal(t, 0, result.ComparedCount)
	})
}

func TestGetUnlockedEndings(t *testing.T) {
	ctx := context.Background()
	readerID := uuid.New()

	t.Run("dedupes endings and keeps the first reach time", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}
		endA := story.AddPage(models.Page{Text: "end A", IsEnding: true, EndingLabel: "good"})
		story.AddPage(models.Page{Text: "end B", IsEnding: true, EndingLabel: "bad"})
		f := newStatsFixture()

		first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		second := first.Add(24 * time.Hour)
		// Oldest first, as the repository contract promises.
		records := []*models.PlayRecord{
			{ID: uuid.New(), ReaderID: readerID, StoryID: story.ID, EndingPageID: endA.ID, FinishedAt: first},
			{ID: uuid.New(), ReaderID: readerID, StoryID: story.ID, EndingPageID: endA.ID, FinishedAt: second},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByReaderAndStory", ctx, mock.Anything, readerID, story.ID).Return(records, nil).Once()

		result, err := f.svc.GetUnlockedEndings(ctx, readerID, story.ID)
		require.NoError(t, err)
		require.Len(t, result.Unlocked, 1)
		assert.Equal(t, endA.ID, result.Unlocked[0].PageID)
		assert.Equal(t, "good", result.Unlocked[0].EndingLabel)
		assert.Equal(t, first, result.Unlocked[0].FirstReached)
		assert.Equal(t, 2, result.TotalEndings)
	})

	t.Run("ending removed from the graph still counts as unlocked", func(t *testing.T) {
		story := &models.Story{ID: uuid.New(), Status: models.StatusPublished}
		story.AddPage(models.Page{Text: "survivor", IsEnding: true})
		removed := uuid.New()
		f := newStatsFixture()

		records := []*models.PlayRecord{
			{ID: uuid.New(), ReaderID: readerID, StoryID: story.ID, EndingPageID: removed, FinishedAt: time.Now()},
		}
		f.storyRepo.On("GetByID", ctx, mock.Anything, story.ID).Return(story, nil).Once()
		f.recordRepo.On("ListByReaderAndStory", ctx, mock.Anything, readerID, story.ID).Return(records, nil).Once()

		result, err := f.svc.GetUnlockedEndings(ctx, readerID, story.ID)
		require.NoError(t, err)
		require.Len(t, result.Unlocked, 1)
		assert.Empty(t, result.Unlocked[0].EndingLabel)
		assert.Equal(t, 1, result.TotalEndings)
	})
}
