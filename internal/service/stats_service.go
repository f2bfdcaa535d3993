package service

import (
	"context"
	"time"

	"fable-server/internal/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatsService derives figures from accumulated play records and the live
// story graph. Nothing here is persisted; every call recomputes from the
// current state.
type StatsService struct {
	db         interfaces.DBTX
	storyRepo  interfaces.StoryRepository
	stateRepo  interfaces.PlayStateRepository
	recordRepo interfaces.PlayRecordRepository
	logger     *zap.Logger
}

// NewStatsService creates the statistics service.
func NewStatsService(
	db interfaces.DBTX,
	storyRepo interfaces.StoryRepository,
	stateRepo interfaces.PlayStateRepository,
	recordRepo interfaces.PlayRecordRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		db:         db,
		storyRepo:  storyRepo,
		stateRepo:  stateRepo,
		recordRepo: recordRepo,
		logger:     logger.Named("StatsService"),
	}
}

// StoryStats is the aggregate view of one story.
type StoryStats struct {
	StoryID        uuid.UUID            `json:"story_id"`
	TimesStarted   int64                `json:"times_started"`
	TimesFinished  int64                `json:"times_finished"`
	MeanRating     float64              `json:"mean_rating"`
	RatingCount    int                  `json:"rating_count"`
	Distribution   map[uuid.UUID]int    `json:"ending_distribution"`
	EndingLabels   map[uuid.UUID]string `json:"ending_labels"`
	CompletionRate float64              `json:"completion_rate"`
	AbandonedCount int64                `json:"abandoned_count"`
}

// GetStoryStats computes the full aggregate for a story.
//
// The distribution is keyed by ending page id and zero-initialised from the
// live graph, so endings nobody reached still appear. Records whose ending
// page has since been removed are excluded from the tally but stay inside
// TimesFinished, which is why the distribution may sum to less than the
// counter.
func (s *StatsService) GetStoryStats(ctx context.Context, storyID uuid.UUID) (*StoryStats, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByStory(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	abandoned, err := s.stateRepo.CountByStory(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}

	endings := story.EndingPages()
	distribution := make(map[uuid.UUID]int, len(endings))
	labels := make(map[uuid.UUID]string, len(endings))
	for _, page := range endings {
		distribution[page.ID] = 0
		labels[page.ID] = page.EndingLabel
	}

	reached := make(map[uuid.UUID]struct{})
	for _, record := range records {
		if _, ok := distribution[record.EndingPageID]; ok {
			distribution[record.EndingPageID]++
			reached[record.EndingPageID] = struct{}{}
		}
	}

	completionRate := 0.0
	if len(endings) > 0 {
		completionRate = round1(float64(len(reached)) / float64(len(endings)) * 100)
	}

	return &StoryStats{
		StoryID:        story.ID,
		TimesStarted:   story.TimesStarted,
		TimesFinished:  story.TimesFinished,
		MeanRating:     story.MeanRating(),
		RatingCount:    len(story.Ratings),
		Distribution:   distribution,
		EndingLabels:   labels,
		CompletionRate: completionRate,
		AbandonedCount: abandoned,
	}, nil
}

// SimilarityResult reports how close a candidate path is to the paths of
// everyone who already finished the story.
type SimilarityResult struct {
	StoryID        uuid.UUID `json:"story_id"`
	MeanSimilarity float64   `json:"mean_similarity"`
	ComparedCount  int       `json:"compared_count"`
	FirstToFinish  bool      `json:"first_to_finish"`
}

// PathSimilarity compares the candidate path against every play record of
// the story. Per record the score is the size of the page-set intersection
// divided by the longer raw path, times 100; the result is the mean over
// all records. With no records the caller is the first to finish and the
// mean is 0.
func (s *StatsService) PathSimilarity(ctx context.Context, storyID uuid.UUID, candidate []uuid.UUID) (*SimilarityResult, error) {
	if _, err := s.storyRepo.GetByID(ctx, s.db, storyID); err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByStory(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &SimilarityResult{StoryID: storyID, FirstToFinish: true}, nil
	}

	candidateSet := pageSet(candidate)
	total := 0.0
	for _, record := range records {
		total += similarity(candidateSet, len(candidate), record.Path)
	}

	return &SimilarityResult{
		StoryID:        storyID,
		MeanSimilarity: round1(total / float64(len(records))),
		ComparedCount:  len(records),
	}, nil
}

// UnlockedEnding is one distinct ending a reader has reached.
type UnlockedEnding struct {
	PageID       uuid.UUID `json:"page_id"`
	EndingLabel  string    `json:"ending_label,omitempty"`
	FirstReached time.Time `json:"first_reached"`
}

// UnlockedEndingsResult pairs the reader's endings with the story's total.
type UnlockedEndingsResult struct {
	StoryID      uuid.UUID         `json:"story_id"`
	Unlocked     []*UnlockedEnding `json:"unlocked"`
	TotalEndings int               `json:"total_endings"`
}

// GetUnlockedEndings lists the distinct endings a reader reached in a
// story with the time of the first reach, plus the story's current ending
// count. Endings removed from the graph since still count as unlocked.
func (s *StatsService) GetUnlockedEndings(ctx context.Context, readerID, storyID uuid.UUID) (*UnlockedEndingsResult, error) {
	story, err := s.storyRepo.GetByID(ctx, s.db, storyID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListByReaderAndStory(ctx, s.db, readerID, storyID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	unlocked := make([]*UnlockedEnding, 0)
	// Records arrive oldest first, so the first sighting is the first reach.
	for _, record := range records {
		if _, ok := seen[record.EndingPageID]; ok {
			continue
		}
		seen[record.EndingPageID] = struct{}{}

		ending := &UnlockedEnding{PageID: record.EndingPageID, FirstReached: record.FinishedAt}
		if page := story.FindPage(record.EndingPageID); page != nil {
			ending.EndingLabel = page.EndingLabel
		}
		unlocked = append(unlocked, ending)
	}

	return &UnlockedEndingsResult{
		StoryID:      storyID,
		Unlocked:     unlocked,
		TotalEndings: len(story.EndingPages()),
	}, nil
}

func pageSet(path []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(path))
	for _, id := range path {
		set[id] = struct{}{}
	}
	return set
}

// similarity scores a candidate path against a historical one. Pages are
// compared as sets, but the denominator is the longer raw path, so loops
// through revisited pages dilute the score instead of collapsing.
func similarity(candidateSet map[uuid.UUID]struct{}, candidateLen int, historical []uuid.UUID) float64 {
	longer := candidateLen
	if len(historical) > longer {
		longer = len(historical)
	}
	if longer == 0 {
		return 0
	}
	intersection := 0
	for id := range pageSet(historical) {
		if _, ok := candidateSet[id]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(longer) * 100
}
