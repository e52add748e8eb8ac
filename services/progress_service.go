package services

import (
	"fmt"
	"log"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/repository"
)

// AchievementCodeFirstRead is the well-known definition advanced alongside the
// READING category when seed data uses it; kept here so seeds and tests agree.
const AchievementCodeFirstRead = "first_read"

// ProgressService defines the interface for per-user reading progress: the
// read/completion percentages, the mark-read upsert and the recent-reads list.
type ProgressService interface {
	OverallProgress(userID string) (*models.ProgressResponse, error)
	CategoryProgress(userID string, categoryID uint) (*models.ProgressResponse, error)
	MarkRead(userID string, articleID uint) error
	RecentlyRead(userID string, limit int) ([]*models.ReadFact, error)
}

type progressService struct {
	articleRepo    repository.ArticleRepository
	readFactRepo   repository.ReadFactRepository
	achievementSvc AchievementService // May be nil; mark-read then skips achievement events
	keys           *keyedMutex
}

// NewProgressService creates a new instance of ProgressService.
func NewProgressService(articleRepo repository.ArticleRepository, readFactRepo repository.ReadFactRepository, achievementSvc AchievementService) ProgressService {
	return &progressService{
		articleRepo:    articleRepo,
		readFactRepo:   readFactRepo,
		achievementSvc: achievementSvc,
		keys:           newKeyedMutex(),
	}
}

func readKey(userID string, articleID uint) string {
	return fmt.Sprintf("%s/%d", userID, articleID)
}

// OverallProgress returns the user's read percentage across the whole corpus.
// An empty corpus yields 0, not an error.
func (s *progressService) OverallProgress(userID string) (*models.ProgressResponse, error) {
	return s.progress(userID, nil)
}

// CategoryProgress returns the user's read percentage restricted to one
// category. Unknown categories yield ErrNotFound.
func (s *progressService) CategoryProgress(userID string, categoryID uint) (*models.ProgressResponse, error) {
	category, err := s.articleRepo.GetCategoryByID(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: category lookup failed: %v", ErrUnavailable, err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	return s.progress(userID, &categoryID)
}

func (s *progressService) progress(userID string, categoryID *uint) (*models.ProgressResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}

	total, err := s.articleRepo.CountArticles(categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: article count failed: %v", ErrUnavailable, err)
	}

	response := &models.ProgressResponse{
		UserID:     userID,
		CategoryID: categoryID,
		TotalCount: int(total),
	}
	if total == 0 {
		// Zero denominator is defined as 0% progress.
		return response, nil
	}

	read, err := s.readFactRepo.CountReadArticles(userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: read count failed: %v", ErrUnavailable, err)
	}

	response.ReadCount = int(read)
	response.Percentage = float64(read) / float64(total) * 100
	return response, nil
}

// MarkRead records that the user has read an article. The write is an upsert:
// re-reading refreshes the read timestamp on the single existing row. After
// the read fact commits, READING (and GLOBAL) achievements advance by one.
// The event is always issued, keyed on the (user, article) read: the
// achievement engine credits each key once, so re-reads and retries after a
// partial failure cannot inflate counters, while a retry that comes after the
// upsert committed but before the event did still delivers the increment.
func (s *progressService) MarkRead(userID string, articleID uint) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}

	article, err := s.articleRepo.GetArticleByID(articleID)
	if err != nil {
		return fmt.Errorf("%w: article lookup failed: %v", ErrUnavailable, err)
	}
	if article == nil {
		return fmt.Errorf("%w: article %d", ErrNotFound, articleID)
	}

	unlock := s.keys.Lock(readKey(userID, articleID))
	defer unlock()

	if _, err := s.readFactRepo.UpsertReadFact(userID, articleID, true, time.Now()); err != nil {
		return fmt.Errorf("%w: read fact upsert failed: %v", ErrUnavailable, err)
	}
	log.Printf("INFO: [ProgressService] UserID %s marked article %d as read.", userID, articleID)

	if s.achievementSvc == nil {
		return nil
	}
	eventKey := fmt.Sprintf("read:%d", articleID)
	if _, err := s.achievementSvc.RecordEventForCategory(userID, models.AchievementCategoryReading, 1, eventKey); err != nil {
		log.Printf("WARN: [ProgressService] Achievement event failed after mark-read for userID %s, article %d: %v", userID, articleID, err)
		return err
	}
	return nil
}

// RecentlyRead returns up to limit of the user's read articles, most recent
// first.
func (s *progressService) RecentlyRead(userID string, limit int) ([]*models.ReadFact, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	facts, err := s.readFactRepo.GetRecentlyRead(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent reads lookup failed: %v", ErrUnavailable, err)
	}
	return facts, nil
}
