package services

import (
	"errors"
	"testing"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockArticleRepository is a mock type for the ArticleRepository interface
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) GetArticleByID(articleID uint) (*models.Article, error) {
	args := m.Called(articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *MockArticleRepository) GetCategoryByID(categoryID uint) (*models.Category, error) {
	args := m.Called(categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockArticleRepository) FindArticlesByTitleSubstring(text string) ([]*models.Article, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *MockArticleRepository) FindArticlesByBodySubstring(text string) ([]*models.Article, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *MockArticleRepository) FindArticlesByTagSubstring(text string) ([]*models.Article, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *MockArticleRepository) FindArticlesByCategorySubstring(text string) ([]*models.Article, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *MockArticleRepository) GetArticleTagNames(articleID uint) ([]string, error) {
	args := m.Called(articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArticleRepository) CountArticles(categoryID *uint) (int64, error) {
	args := m.Called(categoryID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Test Helper Functions ---

func newSearchArticle(id uint, title, content, categoryName string, updatedAt time.Time) *models.Article {
	return &models.Article{
		ID:         id,
		Title:      title,
		Content:    content,
		CategoryID: 1,
		Category:   models.Category{ID: 1, Name: categoryName},
		Difficulty: models.DifficultyBeginner,
		CreatedAt:  updatedAt.Add(-24 * time.Hour),
		UpdatedAt:  updatedAt,
	}
}

func expectNoFinderHits(repo *MockArticleRepository, query string) {
	repo.On("FindArticlesByTitleSubstring", query).Return([]*models.Article{}, nil).Once()
	repo.On("FindArticlesByBodySubstring", query).Return([]*models.Article{}, nil).Once()
	repo.On("FindArticlesByTagSubstring", query).Return([]*models.Article{}, nil).Once()
	repo.On("FindArticlesByCategorySubstring", query).Return([]*models.Article{}, nil).Once()
}

func TestSearchService_Search(t *testing.T) {
	now := time.Now()
	volcano := newSearchArticle(1, "Volcanoes", "Lava flows from Earth's mantle.", "Earth Science", now)

	t.Run("Empty and whitespace queries return empty results without error", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		for _, query := range []string{"", "   ", "\t\n"} {
			results, err := svc.Search(query)
			assert.NoError(t, err)
			assert.Empty(t, results)
		}
		// No repository call may happen for an empty query.
		mockRepo.AssertNotCalled(t, "FindArticlesByTitleSubstring", mock.Anything)
	})

	t.Run("Title partial match is found and ranked", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		mockRepo.On("FindArticlesByTitleSubstring", "volcano").Return([]*models.Article{volcano}, nil).Once()
		mockRepo.On("FindArticlesByBodySubstring", "volcano").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByTagSubstring", "volcano").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByCategorySubstring", "volcano").Return([]*models.Article{}, nil).Once()
		mockRepo.On("GetArticleTagNames", uint(1)).Return([]string{"geology"}, nil).Once()

		results, err := svc.Search("volcano")
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, uint(1), results[0].ArticleID)
		assert.Equal(t, models.MatchTitlePartial, results[0].MatchKind)
		assert.Greater(t, results[0].Score, 0.0)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Tag query classifies as tag match", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		mockRepo.On("FindArticlesByTitleSubstring", "geology").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByBodySubstring", "geology").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByTagSubstring", "geology").Return([]*models.Article{volcano}, nil).Once()
		mockRepo.On("FindArticlesByCategorySubstring", "geology").Return([]*models.Article{}, nil).Once()
		mockRepo.On("GetArticleTagNames", uint(1)).Return([]string{"geology"}, nil).Once()

		results, err := svc.Search("geology")
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, models.MatchTag, results[0].MatchKind)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unmatched query returns empty list", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)
		expectNoFinderHits(mockRepo, "xyz123")

		results, err := svc.Search("xyz123")
		assert.NoError(t, err)
		assert.Empty(t, results)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Article surfaced by several strategies appears once with the best kind", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		// "earth" hits the body and the category name of the same article.
		mockRepo.On("FindArticlesByTitleSubstring", "earth").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByBodySubstring", "earth").Return([]*models.Article{volcano}, nil).Once()
		mockRepo.On("FindArticlesByTagSubstring", "earth").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByCategorySubstring", "earth").Return([]*models.Article{volcano}, nil).Once()
		mockRepo.On("GetArticleTagNames", uint(1)).Return([]string{"geology"}, nil).Once()

		results, err := svc.Search("earth")
		assert.NoError(t, err)
		assert.Len(t, results, 1, "the same article must not appear twice")
		// Body beats category in the precedence order; "Earth's" counts as a
		// whole-phrase occurrence of "earth".
		assert.Equal(t, models.MatchBodyExact, results[0].MatchKind)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Results are sorted by descending score, recency breaks ties", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		titleHit := newSearchArticle(10, "Gravity", "Mass attracts mass.", "Physics", now)
		bodyHitOld := newSearchArticle(11, "Apples", "Gravity pulls apples down.", "Botany", now.Add(-2*time.Hour))
		bodyHitNew := newSearchArticle(12, "Orbits", "Gravity keeps planets in orbit.", "Physics", now.Add(-1*time.Hour))

		mockRepo.On("FindArticlesByTitleSubstring", "gravity").Return([]*models.Article{titleHit}, nil).Once()
		mockRepo.On("FindArticlesByBodySubstring", "gravity").Return([]*models.Article{bodyHitOld, bodyHitNew}, nil).Once()
		mockRepo.On("FindArticlesByTagSubstring", "gravity").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByCategorySubstring", "gravity").Return([]*models.Article{}, nil).Once()
		mockRepo.On("GetArticleTagNames", mock.AnythingOfType("uint")).Return([]string{}, nil)

		results, err := svc.Search("gravity")
		assert.NoError(t, err)
		assert.Len(t, results, 3)
		for i := 0; i+1 < len(results); i++ {
			assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score, "scores must be non-increasing")
		}
		assert.Equal(t, uint(10), results[0].ArticleID, "title match ranks first")
		assert.Equal(t, uint(12), results[1].ArticleID, "more recently updated body match ranks before the older one")
		assert.Equal(t, uint(11), results[2].ArticleID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Max results cap is applied after ranking", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 1, 0)

		titleHit := newSearchArticle(10, "Gravity", "Mass attracts mass.", "Physics", now)
		bodyHit := newSearchArticle(11, "Apples", "Gravity pulls apples down.", "Botany", now)

		mockRepo.On("FindArticlesByTitleSubstring", "gravity").Return([]*models.Article{titleHit}, nil).Once()
		mockRepo.On("FindArticlesByBodySubstring", "gravity").Return([]*models.Article{bodyHit}, nil).Once()
		mockRepo.On("FindArticlesByTagSubstring", "gravity").Return([]*models.Article{}, nil).Once()
		mockRepo.On("FindArticlesByCategorySubstring", "gravity").Return([]*models.Article{}, nil).Once()
		mockRepo.On("GetArticleTagNames", mock.AnythingOfType("uint")).Return([]string{}, nil)

		results, err := svc.Search("gravity")
		assert.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, uint(10), results[0].ArticleID, "the cap keeps the best result")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository failure surfaces as retryable unavailable error", func(t *testing.T) {
		mockRepo := new(MockArticleRepository)
		svc := NewSearchService(mockRepo, 0, 0)

		mockRepo.On("FindArticlesByTitleSubstring", "volcano").Return(nil, errors.New("database connection error")).Once()

		results, err := svc.Search("volcano")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.Nil(t, results, "partial results must not be returned as authoritative")
		mockRepo.AssertExpectations(t)
	})
}
