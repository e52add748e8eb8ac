package services

import (
	"errors"
	"testing"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockReadFactRepository is a mock type for the ReadFactRepository interface
type MockReadFactRepository struct {
	mock.Mock
}

func (m *MockReadFactRepository) UpsertReadFact(userID string, articleID uint, isRead bool, readAt time.Time) (*models.ReadFact, error) {
	args := m.Called(userID, articleID, isRead, readAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReadFact), args.Error(1)
}

func (m *MockReadFactRepository) CountReadArticles(userID string, categoryID *uint) (int64, error) {
	args := m.Called(userID, categoryID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReadFactRepository) GetRecentlyRead(userID string, limit int) ([]*models.ReadFact, error) {
	args := m.Called(userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReadFact), args.Error(1)
}

// MockAchievementService is a mock type for the AchievementService interface
type MockAchievementService struct {
	mock.Mock
}

func (m *MockAchievementService) RecordEvent(userID, achievementCode string, delta int, eventKey string) (*models.AchievementEventResponse, error) {
	args := m.Called(userID, achievementCode, delta, eventKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AchievementEventResponse), args.Error(1)
}

func (m *MockAchievementService) RecordEventForCategory(userID, category string, delta int, eventKey string) ([]models.AchievementEventResponse, error) {
	args := m.Called(userID, category, delta, eventKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AchievementEventResponse), args.Error(1)
}

func (m *MockAchievementService) ListUserAchievements(userID string) ([]models.UserAchievement, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserAchievement), args.Error(1)
}

func (m *MockAchievementService) TotalRewardPoints(userID string) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockAchievementService) MarkNotificationSeen(userID string, achievementID uint) error {
	args := m.Called(userID, achievementID)
	return args.Error(0)
}

func TestProgressService_Progress(t *testing.T) {
	userID := "testUser"

	t.Run("Overall percentage from read and total counts", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("CountArticles", (*uint)(nil)).Return(int64(10), nil).Once()
		mockReads.On("CountReadArticles", userID, (*uint)(nil)).Return(int64(4), nil).Once()

		progress, err := svc.OverallProgress(userID)
		assert.NoError(t, err)
		assert.InDelta(t, 40.0, progress.Percentage, 0.001)
		assert.Equal(t, 4, progress.ReadCount)
		assert.Equal(t, 10, progress.TotalCount)
		assert.GreaterOrEqual(t, progress.Percentage, 0.0)
		assert.LessOrEqual(t, progress.Percentage, 100.0)
		mockArticles.AssertExpectations(t)
		mockReads.AssertExpectations(t)
	})

	t.Run("Empty corpus yields zero percent, not an error", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("CountArticles", (*uint)(nil)).Return(int64(0), nil).Once()

		progress, err := svc.OverallProgress(userID)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, progress.Percentage)
		mockReads.AssertNotCalled(t, "CountReadArticles", mock.Anything, mock.Anything)
		mockArticles.AssertExpectations(t)
	})

	t.Run("Every article read yields one hundred percent", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("CountArticles", (*uint)(nil)).Return(int64(7), nil).Once()
		mockReads.On("CountReadArticles", userID, (*uint)(nil)).Return(int64(7), nil).Once()

		progress, err := svc.OverallProgress(userID)
		assert.NoError(t, err)
		assert.InDelta(t, 100.0, progress.Percentage, 0.001)
	})

	t.Run("Category progress checks the category exists", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		categoryID := uint(3)
		mockArticles.On("GetCategoryByID", categoryID).Return(&models.Category{ID: categoryID, Name: "Earth Science"}, nil).Once()
		mockArticles.On("CountArticles", mock.AnythingOfType("*uint")).Return(int64(4), nil).Once()
		mockReads.On("CountReadArticles", userID, mock.AnythingOfType("*uint")).Return(int64(1), nil).Once()

		progress, err := svc.CategoryProgress(userID, categoryID)
		assert.NoError(t, err)
		assert.InDelta(t, 25.0, progress.Percentage, 0.001)
		assert.NotNil(t, progress.CategoryID)
		assert.Equal(t, categoryID, *progress.CategoryID)
	})

	t.Run("Unknown category yields not found", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("GetCategoryByID", uint(99)).Return(nil, nil).Once()

		progress, err := svc.CategoryProgress(userID, 99)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Nil(t, progress)
	})

	t.Run("Empty user ID is rejected", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		progress, err := svc.OverallProgress("")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		assert.Nil(t, progress)
	})
}

func TestProgressService_MarkRead(t *testing.T) {
	userID := "testUser"
	article := &models.Article{ID: 5, Title: "Volcanoes", CategoryID: 1}

	t.Run("First read upserts the fact and advances reading achievements", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		mockAchievements := new(MockAchievementService)
		svc := NewProgressService(mockArticles, mockReads, mockAchievements)

		mockArticles.On("GetArticleByID", uint(5)).Return(article, nil).Once()
		mockReads.On("UpsertReadFact", userID, uint(5), true, mock.AnythingOfType("time.Time")).
			Return(&models.ReadFact{ID: 1, UserID: userID, ArticleID: 5, IsRead: true}, nil).Once()
		mockAchievements.On("RecordEventForCategory", userID, models.AchievementCategoryReading, 1, "read:5").
			Return([]models.AchievementEventResponse{{Progress: 1, Target: 25}}, nil).Once()

		err := svc.MarkRead(userID, 5)
		assert.NoError(t, err)
		mockArticles.AssertExpectations(t)
		mockReads.AssertExpectations(t)
		mockAchievements.AssertExpectations(t)
	})

	t.Run("Re-reading re-issues the event under the same key", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		mockAchievements := new(MockAchievementService)
		svc := NewProgressService(mockArticles, mockReads, mockAchievements)

		existing := &models.ReadFact{ID: 1, UserID: userID, ArticleID: 5, IsRead: true}
		mockArticles.On("GetArticleByID", uint(5)).Return(article, nil).Once()
		mockReads.On("UpsertReadFact", userID, uint(5), true, mock.AnythingOfType("time.Time")).
			Return(existing, nil).Once()
		// The achievement engine deduplicates on the key, so the re-read cannot
		// inflate any counter.
		mockAchievements.On("RecordEventForCategory", userID, models.AchievementCategoryReading, 1, "read:5").
			Return([]models.AchievementEventResponse{{Progress: 1, Target: 25}}, nil).Once()

		err := svc.MarkRead(userID, 5)
		assert.NoError(t, err)
		mockReads.AssertExpectations(t)
		mockAchievements.AssertExpectations(t)
	})

	t.Run("Retry after a failed achievement event re-issues it", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		mockAchievements := new(MockAchievementService)
		svc := NewProgressService(mockArticles, mockReads, mockAchievements)

		fact := &models.ReadFact{ID: 1, UserID: userID, ArticleID: 5, IsRead: true}
		mockArticles.On("GetArticleByID", uint(5)).Return(article, nil).Times(2)
		mockReads.On("UpsertReadFact", userID, uint(5), true, mock.AnythingOfType("time.Time")).
			Return(fact, nil).Times(2)

		// First attempt: the upsert commits but the achievement event fails.
		mockAchievements.On("RecordEventForCategory", userID, models.AchievementCategoryReading, 1, "read:5").
			Return(nil, errors.New("database locked")).Once()
		err := svc.MarkRead(userID, 5)
		assert.Error(t, err)

		// The retry must deliver the event even though the row already says
		// read; otherwise the increment would be lost for good.
		mockAchievements.On("RecordEventForCategory", userID, models.AchievementCategoryReading, 1, "read:5").
			Return([]models.AchievementEventResponse{{Progress: 1, Target: 25}}, nil).Once()
		err = svc.MarkRead(userID, 5)
		assert.NoError(t, err)
		mockAchievements.AssertExpectations(t)
	})

	t.Run("Unknown article yields not found and writes nothing", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("GetArticleByID", uint(404)).Return(nil, nil).Once()

		err := svc.MarkRead(userID, 404)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		mockReads.AssertNotCalled(t, "UpsertReadFact", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Repository failure surfaces as unavailable", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		mockArticles.On("GetArticleByID", uint(5)).Return(nil, errors.New("database connection error")).Once()

		err := svc.MarkRead(userID, 5)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable))
	})
}

func TestProgressService_RecentlyRead(t *testing.T) {
	userID := "testUser"

	t.Run("Returns up to limit facts, most recent first", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		facts := []*models.ReadFact{
			{ID: 2, UserID: userID, ArticleID: 9, IsRead: true},
			{ID: 1, UserID: userID, ArticleID: 5, IsRead: true},
		}
		mockReads.On("GetRecentlyRead", userID, 2).Return(facts, nil).Once()

		got, err := svc.RecentlyRead(userID, 2)
		assert.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, uint(9), got[0].ArticleID)
		mockReads.AssertExpectations(t)
	})

	t.Run("Non-positive limit is rejected", func(t *testing.T) {
		mockArticles := new(MockArticleRepository)
		mockReads := new(MockReadFactRepository)
		svc := NewProgressService(mockArticles, mockReads, nil)

		for _, limit := range []int{0, -3} {
			got, err := svc.RecentlyRead(userID, limit)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Nil(t, got)
		}
		mockReads.AssertNotCalled(t, "GetRecentlyRead", mock.Anything, mock.Anything)
	})
}
