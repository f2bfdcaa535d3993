// Code generated by mockery. Edited by hand to track interface changes.
package mocks

import (
	"context"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// StoryRepository is a mock for interfaces.StoryRepository.
type StoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*StoryRepository)(nil)

func (m *StoryRepository) Create(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	args := m.Called(ctx, querier, story)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, querier, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *StoryRepository) GetForUpdate(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, querier, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *StoryRepository) Update(ctx context.Context, querier interfaces.DBTX, story *models.Story) error {
	args := m.Called(ctx, querier, story)
	return args.Error(0)
}

func (m *StoryRepository) Delete(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, querier, id)
	return args.Error(0)
}

func (m *StoryRepository) ListByAuthor(ctx context.Context, querier interfaces.DBTX, authorID uuid.UUID) ([]*models.Story, error) {
	args := m.Called(ctx, querier, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Story), args.Error(1)
}

func (m *StoryRepository) ListPublished(ctx context.Context, querier interfaces.DBTX, filter interfaces.StoryFilter) ([]*models.Story, error) {
	args := m.Called(ctx, querier, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Story), args.Error(1)
}

func (m *StoryRepository) UpdateStatus(ctx context.Context, querier interfaces.DBTX, id uuid.UUID, status models.StoryStatus) error {
	args := m.Called(ctx, querier, id, status)
	return args.Error(0)
}

func (m *StoryRepository) IncrementTimesStarted(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, querier, id)
	return args.Error(0)
}

func (m *StoryRepository) IncrementTimesFinished(ctx context.Context, querier interfaces.DBTX, id uuid.UUID) error {
	args := m.Called(ctx, querier, id)
	return args.Error(0)
}

// PlayStateRepository is a mock for interfaces.PlayStateRepository.
type PlayStateRepository struct {
	mock.Mock
}

var _ interfaces.PlayStateRepository = (*PlayStateRepository)(nil)

func (m *PlayStateRepository) Upsert(ctx context.Context, querier interfaces.DBTX, state *models.PlayState) error {
	args := m.Called(ctx, querier, state)
	return args.Error(0)
}

func (m *PlayStateRepository) Get(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) (*models.PlayState, error) {
	args := m.Called(ctx, querier, readerID, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayState), args.Error(1)
}

func (m *PlayStateRepository) Delete(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) error {
	args := m.Called(ctx, querier, readerID, storyID)
	return args.Error(0)
}

func (m *PlayStateRepository) CountByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, querier, storyID)
	return args.Get(0).(int64), args.Error(1)
}

// PlayRecordRepository is a mock for interfaces.PlayRecordRepository.
type PlayRecordRepository struct {
	mock.Mock
}

var _ interfaces.PlayRecordRepository = (*PlayRecordRepository)(nil)

func (m *PlayRecordRepository) Create(ctx context.Context, querier interfaces.DBTX, record *models.PlayRecord) error {
	args := m.Called(ctx, querier, record)
	return args.Error(0)
}

func (m *PlayRecordRepository) ListByStory(ctx context.Context, querier interfaces.DBTX, storyID uuid.UUID) ([]*models.PlayRecord, error) {
	args := m.Called(ctx, querier, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayRecord), args.Error(1)
}

func (m *PlayRecordRepository) ListByReaderAndStory(ctx context.Context, querier interfaces.DBTX, readerID, storyID uuid.UUID) ([]*models.PlayRecord, error) {
	args := m.Called(ctx, querier, readerID, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayRecord), args.Error(1)
}

func (m *PlayRecordRepository) ListByReader(ctx context.Context, querier interfaces.DBTX, readerID uuid.UUID) ([]*models.PlayRecord, error) {
	args := m.Called(ctx, querier, readerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayRecord), args.Error(1)
}

// TxManager is a mock for interfaces.TxManager: it invokes the callback
// immediately with a nil querier, so repository mocks see the call.
type TxManager struct {
	mock.Mock
}

var _ interfaces.TxManager = (*TxManager)(nil)

func (m *TxManager) WithTx(ctx context.Context, fn func(q interfaces.DBTX) error) error {
	return fn(nil)
}
