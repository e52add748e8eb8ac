package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementRepository defines the interface for achievement definitions and
// per-user progress rows. Progress writes go through a compare-and-set so the
// increment-then-evaluate sequence in the service stays atomic with respect to
// concurrent updates on the same (user, achievement) key.
type AchievementRepository interface {
	GetDefinitionByCode(code string) (*models.AchievementDefinition, error)
	GetDefinitionByID(achievementID uint) (*models.AchievementDefinition, error)
	ListDefinitions() ([]*models.AchievementDefinition, error)
	GetOrCreateProgress(userID string, achievementID uint) (*models.UserAchievementProgress, error)
	CompareAndSetProgress(row *models.UserAchievementProgress, expectedProgress int, credit *models.AchievementEventCredit) (applied bool, alreadyCredited bool, err error)
	ListProgressByUser(userID string) ([]*models.UserAchievementProgress, error)
	MarkNotificationSeen(userID string, achievementID uint) error
}

type achievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new instance of AchievementRepository.
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

// GetDefinitionByCode retrieves an achievement definition by its stable code.
// Returns (nil, nil) when no definition exists.
func (r *achievementRepository) GetDefinitionByCode(code string) (*models.AchievementDefinition, error) {
	if code == "" {
		log.Printf("ERROR: [AchievementRepository] GetDefinitionByCode: code cannot be empty.")
		return nil, errors.New("achievement code cannot be empty")
	}
	var def models.AchievementDefinition
	err := r.db.First(&def, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AchievementRepository] Achievement definition with code %q not found.", code)
			return nil, nil
		}
		log.Printf("ERROR: [AchievementRepository] Failed to fetch achievement definition %q: %v", code, err)
		return nil, fmt.Errorf("failed to fetch achievement definition %q: %w", code, err)
	}
	return &def, nil
}

// GetDefinitionByID retrieves an achievement definition by primary key.
// Returns (nil, nil) when no definition exists.
func (r *achievementRepository) GetDefinitionByID(achievementID uint) (*models.AchievementDefinition, error) {
	var def models.AchievementDefinition
	err := r.db.First(&def, achievementID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [AchievementRepository] Achievement definition with ID %d not found.", achievementID)
			return nil, nil
		}
		log.Printf("ERROR: [AchievementRepository] Failed to fetch achievement definition ID %d: %v", achievementID, err)
		return nil, fmt.Errorf("failed to fetch achievement definition ID %d: %w", achievementID, err)
	}
	return &def, nil
}

// ListDefinitions returns all achievement definitions.
func (r *achievementRepository) ListDefinitions() ([]*models.AchievementDefinition, error) {
	var defs []*models.AchievementDefinition
	if err := r.db.Order("id asc").Find(&defs).Error; err != nil {
		log.Printf("ERROR: [AchievementRepository] Failed to list achievement definitions: %v", err)
		return nil, fmt.Errorf("failed to list achievement definitions: %w", err)
	}
	return defs, nil
}

// GetOrCreateProgress retrieves the progress row for a (user, achievement)
// pair, creating a zero-progress row when none exists yet.
func (r *achievementRepository) GetOrCreateProgress(userID string, achievementID uint) (*models.UserAchievementProgress, error) {
	if userID == "" {
		log.Printf("ERROR: [AchievementRepository] GetOrCreateProgress: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}
	var row models.UserAchievementProgress
	err := r.db.
		Where(models.UserAchievementProgress{UserID: userID, AchievementID: achievementID}).
		FirstOrCreate(&row).Error
	if err != nil {
		log.Printf("ERROR: [AchievementRepository] Failed to get or create progress for userID %s, achievement %d: %v", userID, achievementID, err)
		return nil, fmt.Errorf("failed to get or create progress for userID %s: %w", userID, err)
	}
	return &row, nil
}

// errCompareAndSetLost aborts the transaction when the optimistic guard
// misses, rolling the credit insert back so a retry can still claim the event.
var errCompareAndSetLost = errors.New("compare-and-set lost the race")

// CompareAndSetProgress writes the row's progress and completion timestamp,
// guarded on the progress value the caller read (optimistic lock). When a
// credit is supplied it is inserted in the same transaction: a duplicate
// credit means the event was already counted, so the write is skipped and
// alreadyCredited is returned instead. A concurrent update on the progress
// row yields (false, false, nil); the caller surfaces that as a retryable
// conflict, not a retry here.
func (r *achievementRepository) CompareAndSetProgress(row *models.UserAchievementProgress, expectedProgress int, credit *models.AchievementEventCredit) (applied bool, alreadyCredited bool, err error) {
	if row == nil {
		log.Printf("ERROR: [AchievementRepository] CompareAndSetProgress: row cannot be nil.")
		return false, false, errors.New("progress row cannot be nil")
	}
	if row.ID == 0 {
		log.Printf("ERROR: [AchievementRepository] CompareAndSetProgress: row ID must be provided.")
		return false, false, errors.New("progress row ID must be provided")
	}

	txErr := r.db.Transaction(func(tx *gorm.DB) error {
		if credit != nil {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(credit)
			if res.Error != nil {
				return fmt.Errorf("failed to insert event credit for userID %s, achievement %d: %w", credit.UserID, credit.AchievementID, res.Error)
			}
			if res.RowsAffected == 0 {
				alreadyCredited = true
				return nil
			}
		}

		result := tx.Model(&models.UserAchievementProgress{}).
			Where("id = ? AND progress = ?", row.ID, expectedProgress).
			Updates(map[string]interface{}{
				"progress":     row.Progress,
				"completed_at": row.CompletedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update progress row ID %d: %w", row.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return errCompareAndSetLost
		}
		applied = true
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errCompareAndSetLost) {
			log.Printf("WARN: [AchievementRepository] Compare-and-set lost the race for progress row ID %d (expected progress %d).", row.ID, expectedProgress)
			return false, false, nil
		}
		log.Printf("ERROR: [AchievementRepository] %v", txErr)
		return false, false, txErr
	}
	return applied, alreadyCredited, nil
}

// ListProgressByUser returns all progress rows for a user.
func (r *achievementRepository) ListProgressByUser(userID string) ([]*models.UserAchievementProgress, error) {
	if userID == "" {
		log.Printf("ERROR: [AchievementRepository] ListProgressByUser: userID cannot be empty.")
		return nil, errors.New("user ID cannot be empty")
	}
	var rows []*models.UserAchievementProgress
	if err := r.db.Where("user_id = ?", userID).Order("achievement_id asc").Find(&rows).Error; err != nil {
		log.Printf("ERROR: [AchievementRepository] Failed to list progress rows for userID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to list progress rows for userID %s: %w", userID, err)
	}
	return rows, nil
}

// MarkNotificationSeen flags a completed achievement's unlock notification as
// seen so the UI stops re-announcing it.
func (r *achievementRepository) MarkNotificationSeen(userID string, achievementID uint) error {
	if userID == "" {
		log.Printf("ERROR: [AchievementRepository] MarkNotificationSeen: userID cannot be empty.")
		return errors.New("user ID cannot be empty")
	}
	result := r.db.Model(&models.UserAchievementProgress{}).
		Where("user_id = ? AND achievement_id = ? AND completed_at IS NOT NULL", userID, achievementID).
		Update("notification_seen", true)
	if result.Error != nil {
		log.Printf("ERROR: [AchievementRepository] Failed to mark notification seen for userID %s, achievement %d: %v", userID, achievementID, result.Error)
		return fmt.Errorf("failed to mark notification seen for userID %s: %w", userID, result.Error)
	}
	return nil
}
