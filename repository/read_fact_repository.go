package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadFactRepository defines the interface for per-user read state. All writes
// are upserts keyed on (user, article): marking an article read twice must not
// create a second row.
type ReadFactRepository interface {
	UpsertReadFact(userID string, articleID uint, isRead bool, readAt time.Time) (*models.ReadFact, error)
	CountReadArticles(userID string, categoryID *uint) (int64, error)
	GetRecentlyRead(userID string, limit int) ([]*models.ReadFact, error)
}

type readFactRepository struct {
	db *gorm.DB
}

// NewReadFactRepository creates a new instance of ReadFactRepository.
func NewReadFactRepository(db *gorm.DB) ReadFactRepository {
	return &readFactRepository{db: db}
}

// UpsertReadFact creates or updates the read fact for a (user, article) pair.
// The (user_id, article_id) unique index drives GORM's OnConflict (UPSERT):
// a second mark-read refreshes is_read/read_at on the existing row instead of
// inserting a duplicate. The row is re-fetched afterwards because the struct
// passed to Create is not populated on the conflict path.
func (r *readFactRepository) UpsertReadFact(userID string, articleID uint, isRead bool, readAt time.Time) (*models.ReadFact, error) {
	if userID == "" {
		log.Printf("ERROR: [ReadFactRepository] UpsertReadFact: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}

	factToUpsert := models.ReadFact{
		UserID:    userID,
		ArticleID: articleID,
		IsRead:    isRead,
		ReadAt:    sql.NullTime{Time: readAt, Valid: isRead},
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_read":    isRead,
			"read_at":    factToUpsert.ReadAt,
			"updated_at": time.Now(),
		}),
	}).Create(&factToUpsert).Error
	if err != nil {
		log.Printf("ERROR: [ReadFactRepository] Failed to upsert read fact for userID %s, article %d: %v", userID, articleID, err)
		return nil, fmt.Errorf("failed to upsert read fact for userID %s: %w", userID, err)
	}

	var current models.ReadFact
	if fetchErr := r.db.First(&current, "user_id = ? AND article_id = ?", userID, articleID).Error; fetchErr != nil {
		log.Printf("ERROR: [ReadFactRepository] Failed to fetch read fact for userID %s after upsert: %v", userID, fetchErr)
		return nil, fmt.Errorf("failed to fetch read fact for userID %s after upsert: %w", userID, fetchErr)
	}

	log.Printf("INFO: [ReadFactRepository] Upserted read fact for userID %s, article %d (isRead=%t).", userID, articleID, isRead)
	return &current, nil
}

// CountReadArticles returns how many articles the user has read, optionally
// restricted to one category.
func (r *readFactRepository) CountReadArticles(userID string, categoryID *uint) (int64, error) {
	if userID == "" {
		log.Printf("ERROR: [ReadFactRepository] CountReadArticles: userID cannot be empty.")
		return 0, errors.New("user ID cannot be empty")
	}
	var count int64
	query := r.db.Model(&models.ReadFact{}).
		Where("read_facts.user_id = ? AND read_facts.is_read = ?", userID, true)
	if categoryID != nil {
		query = query.
			Joins("JOIN articles ON articles.id = read_facts.article_id").
			Where("articles.category_id = ?", *categoryID)
	}
	if err := query.Count(&count).Error; err != nil {
		log.Printf("ERROR: [ReadFactRepository] Failed to count read articles for userID %s: %v", userID, err)
		return 0, fmt.Errorf("failed to count read articles for userID %s: %w", userID, err)
	}
	return count, nil
}

// GetRecentlyRead returns the user's read facts ordered by read timestamp
// descending, bounded by limit.
func (r *readFactRepository) GetRecentlyRead(userID string, limit int) ([]*models.ReadFact, error) {
	if userID == "" {
		log.Printf("ERROR: [ReadFactRepository] GetRecentlyRead: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}
	var facts []*models.ReadFact
	err := r.db.
		Where("user_id = ? AND is_read = ?", userID, true).
		Order("read_at desc").
		Limit(limit).
		Find(&facts).Error
	if err != nil {
		log.Printf("ERROR: [ReadFactRepository] Failed to fetch recently read articles for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch recently read articles for userID %s: %w", userID, err)
	}
	return facts, nil
}
