package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/repository"
)

// UnlockListener is notified exactly once when a user unlocks an achievement,
// after the unlock has been committed. Used by the API layer to queue the
// notification; must not block for long.
type UnlockListener func(userID string, definition models.AchievementDefinition)

// AchievementService defines the interface for the achievement engine: a
// monotonic progress counter per (user, achievement) pair with a one-time
// unlock when the counter reaches the definition's target.
type AchievementService interface {
	RecordEvent(userID, achievementCode string, delta int, eventKey string) (*models.AchievementEventResponse, error)
	RecordEventForCategory(userID, category string, delta int, eventKey string) ([]models.AchievementEventResponse, error)
	ListUserAchievements(userID string) ([]models.UserAchievement, error)
	TotalRewardPoints(userID string) (int, error)
	MarkNotificationSeen(userID string, achievementID uint) error
}

type achievementService struct {
	achievementRepo repository.AchievementRepository
	onUnlock        UnlockListener // May be nil
	keys            *keyedMutex
}

// NewAchievementService creates a new instance of AchievementService.
// onUnlock may be nil when no unlock notifications are wanted.
func NewAchievementService(achievementRepo repository.AchievementRepository, onUnlock UnlockListener) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		onUnlock:        onUnlock,
		keys:            newKeyedMutex(),
	}
}

func progressKey(userID string, achievementID uint) string {
	return fmt.Sprintf("%s/%d", userID, achievementID)
}

// RecordEvent applies a non-negative delta to the user's counter for one
// achievement and evaluates completion. State machine per (user, achievement):
// no row -> row with progress=delta; in progress -> progress += delta; once
// progress >= target the completion timestamp is set, the unlock listener
// fires, and the pair becomes terminal — later events are no-ops. The
// increment-then-evaluate step commits atomically via the repository's
// compare-and-set; a lost race surfaces as ErrConflict and the caller retries.
//
// A non-empty eventKey makes the event idempotent: the increment is recorded
// together with a credit for the key, and a retry carrying the same key finds
// the credit and skips the increment. An empty key counts unconditionally.
func (s *achievementService) RecordEvent(userID, achievementCode string, delta int, eventKey string) (*models.AchievementEventResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}
	if delta < 0 {
		log.Printf("WARN: [AchievementService] Rejected negative delta %d for userID %s, achievement %q.", delta, userID, achievementCode)
		return nil, fmt.Errorf("%w: delta must be non-negative, got %d", ErrInvalidArgument, delta)
	}

	def, err := s.achievementRepo.GetDefinitionByCode(achievementCode)
	if err != nil {
		return nil, fmt.Errorf("%w: definition lookup failed: %v", ErrUnavailable, err)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: achievement %q", ErrNotFound, achievementCode)
	}

	return s.applyDelta(userID, def, delta, eventKey)
}

// RecordEventForCategory advances every achievement in the given category plus
// all GLOBAL ones. This is what user actions call: marking an article read
// advances READING and GLOBAL achievements in one go. Callers pass an eventKey
// naming the triggering action; definitions already credited for that key are
// skipped, so a retry after a partial failure resumes where it stopped rather
// than double-counting the definitions that had committed.
func (s *achievementService) RecordEventForCategory(userID, category string, delta int, eventKey string) ([]models.AchievementEventResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}
	if delta < 0 {
		return nil, fmt.Errorf("%w: delta must be non-negative, got %d", ErrInvalidArgument, delta)
	}

	defs, err := s.achievementRepo.ListDefinitions()
	if err != nil {
		return nil, fmt.Errorf("%w: definition lookup failed: %v", ErrUnavailable, err)
	}

	var responses []models.AchievementEventResponse
	for _, def := range defs {
		if def.Category != category && def.Category != models.AchievementCategoryGlobal {
			continue
		}
		resp, err := s.applyDelta(userID, def, delta, eventKey)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// applyDelta runs the serialized increment-and-evaluate step for one
// definition. Callers have already validated userID and delta.
func (s *achievementService) applyDelta(userID string, def *models.AchievementDefinition, delta int, eventKey string) (*models.AchievementEventResponse, error) {
	unlock := s.keys.Lock(progressKey(userID, def.ID))
	defer unlock()

	row, err := s.achievementRepo.GetOrCreateProgress(userID, def.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: progress lookup failed: %v", ErrUnavailable, err)
	}

	if row.Completed() {
		// Terminal state: ignore further events entirely so the unlock never
		// re-fires and the counter cannot overflow.
		return &models.AchievementEventResponse{
			Unlocked: false,
			Progress: row.Progress,
			Target:   def.Target,
		}, nil
	}

	expected := row.Progress
	row.Progress = expected + delta

	unlocked := false
	if row.Progress >= def.Target {
		row.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}
		unlocked = true
	}

	var credit *models.AchievementEventCredit
	if eventKey != "" {
		credit = &models.AchievementEventCredit{UserID: userID, AchievementID: def.ID, EventKey: eventKey}
	}

	applied, alreadyCredited, err := s.achievementRepo.CompareAndSetProgress(row, expected, credit)
	if err != nil {
		return nil, fmt.Errorf("%w: progress update failed: %v", ErrUnavailable, err)
	}
	if alreadyCredited {
		// An earlier attempt already counted this event for this definition.
		return &models.AchievementEventResponse{
			Unlocked: false,
			Progress: expected,
			Target:   def.Target,
		}, nil
	}
	if !applied {
		return nil, fmt.Errorf("%w: achievement %q for userID %s", ErrConflict, def.Code, userID)
	}

	if unlocked {
		log.Printf("INFO: [AchievementService] UserID %s unlocked achievement %q (progress %d/%d, %d points).",
			userID, def.Code, row.Progress, def.Target, def.RewardPoints)
		if s.onUnlock != nil {
			s.onUnlock(userID, *def)
		}
	}

	return &models.AchievementEventResponse{
		Unlocked: unlocked,
		Progress: row.Progress,
		Target:   def.Target,
	}, nil
}

// ListUserAchievements returns the user's progress rows joined with their
// definitions. Pure read, never mutates state.
func (s *achievementService) ListUserAchievements(userID string) ([]models.UserAchievement, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}

	defs, err := s.achievementRepo.ListDefinitions()
	if err != nil {
		return nil, fmt.Errorf("%w: definition lookup failed: %v", ErrUnavailable, err)
	}
	defsByID := make(map[uint]*models.AchievementDefinition, len(defs))
	for _, def := range defs {
		defsByID[def.ID] = def
	}

	rows, err := s.achievementRepo.ListProgressByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: progress lookup failed: %v", ErrUnavailable, err)
	}

	achievements := make([]models.UserAchievement, 0, len(rows))
	for _, row := range rows {
		def, ok := defsByID[row.AchievementID]
		if !ok {
			// Progress row orphaned by a removed definition; skip rather than fail the listing.
			log.Printf("WARN: [AchievementService] Progress row ID %d references unknown achievement ID %d.", row.ID, row.AchievementID)
			continue
		}
		achievements = append(achievements, models.UserAchievement{
			Definition: *def,
			Progress:   *row,
		})
	}
	return achievements, nil
}

// TotalRewardPoints sums the reward points of the user's completed
// achievements. Pure read.
func (s *achievementService) TotalRewardPoints(userID string) (int, error) {
	achievements, err := s.ListUserAchievements(userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, a := range achievements {
		if a.Progress.Completed() {
			total += a.Definition.RewardPoints
		}
	}
	return total, nil
}

// MarkNotificationSeen flags a completed achievement's unlock notification as
// seen.
func (s *achievementService) MarkNotificationSeen(userID string, achievementID uint) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID cannot be empty", ErrInvalidArgument)
	}
	if err := s.achievementRepo.MarkNotificationSeen(userID, achievementID); err != nil {
		return fmt.Errorf("%w: notification update failed: %v", ErrUnavailable, err)
	}
	return nil
}
