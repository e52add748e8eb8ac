package models

import "time"

// MarkReadRequest is the body of POST /api/articles/:articleID/read.
type MarkReadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AchievementEventRequest is the body of POST /api/achievements/event.
// EventKey is an optional idempotency key: resubmitting the same event with
// the same key counts it once. An empty key counts unconditionally.
type AchievementEventRequest struct {
	UserID          string `json:"user_id" binding:"required"`
	AchievementCode string `json:"achievement_code" binding:"required"`
	Delta           int    `json:"delta"`
	EventKey        string `json:"event_key"`
}

// AchievementEventResponse reports the outcome of a recorded achievement event.
// Unlocked is true only on the single call that crossed the target.
type AchievementEventResponse struct {
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
	Target   int  `json:"target"`
}

// ProgressResponse carries a user's read-completion percentage, either overall
// or restricted to one category.
type ProgressResponse struct {
	UserID     string  `json:"user_id"`
	CategoryID *uint   `json:"category_id,omitempty"`
	Percentage float64 `json:"percentage"` // 0..100
	ReadCount  int     `json:"read_count"`
	TotalCount int     `json:"total_count"`
}

// CompanionResponse carries a short AI-generated blurb for an article, or a
// deterministic fallback when the completion provider is unavailable.
type CompanionResponse struct {
	ArticleID   uint      `json:"article_id"`
	Text        string    `json:"text"`
	Fallback    bool      `json:"fallback"` // True when the text came from the fallback policy
	GeneratedAt time.Time `json:"generated_at"`
}
