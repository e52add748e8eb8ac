package models

import (
	"database/sql"
	"time"
)

// Achievement categories. GLOBAL achievements aggregate across all activity
// types; the typed ones are advanced by a single kind of user action.
const (
	AchievementCategoryGlobal  = "GLOBAL"
	AchievementCategoryReading = "READING"
	AchievementCategoryQuiz    = "QUIZ"
	AchievementCategorySocial  = "SOCIAL"
)

// AchievementDefinition describes an unlockable achievement and its target
// progress threshold.
type AchievementDefinition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Code         string    `gorm:"not null;uniqueIndex" json:"code"` // Stable identifier, e.g. "first_read"
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Category     string    `gorm:"index" json:"category"` // GLOBAL, READING, QUIZ, SOCIAL
	Target       int       `gorm:"not null" json:"target"`
	RewardPoints int       `json:"reward_points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the AchievementDefinition model.
func (AchievementDefinition) TableName() string {
	return "achievement_definitions"
}

// UserAchievementProgress tracks one user's counter toward one achievement.
// Progress never decreases and CompletedAt, once set, never changes.
// At most one row per (user, achievement) pair.
type UserAchievementProgress struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	UserID           string       `gorm:"not null;index:idx_user_achievement,unique" json:"user_id"`
	AchievementID    uint         `gorm:"not null;index:idx_user_achievement,unique" json:"achievement_id"`
	Progress         int          `gorm:"default:0" json:"progress"`
	CompletedAt      sql.NullTime `json:"completed_at"`
	NotificationSeen bool         `gorm:"default:false" json:"notification_seen"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the UserAchievementProgress model.
func (UserAchievementProgress) TableName() string {
	return "user_achievement_progress"
}

// Completed reports whether the achievement has been unlocked.
func (p *UserAchievementProgress) Completed() bool {
	return p.CompletedAt.Valid
}

// AchievementEventCredit records that a named event has already been counted
// toward a (user, achievement) pair. A retried operation re-issues its events
// with the same key; the unique index turns the duplicate into a no-op instead
// of a second increment.
type AchievementEventCredit struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"not null;index:idx_user_achievement_event,unique" json:"user_id"`
	AchievementID uint      `gorm:"not null;index:idx_user_achievement_event,unique" json:"achievement_id"`
	EventKey      string    `gorm:"not null;index:idx_user_achievement_event,unique" json:"event_key"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for the AchievementEventCredit model.
func (AchievementEventCredit) TableName() string {
	return "achievement_event_credits"
}

// UserAchievement is the joined view of a progress row with its definition,
// returned by list queries for the profile screen.
type UserAchievement struct {
	Definition AchievementDefinition   `json:"definition"`
	Progress   UserAchievementProgress `json:"progress"`
}
