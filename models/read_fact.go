package models

import (
	"database/sql"
	"time"
)

// ReadFact records that a user has read an article. At most one row exists per
// (user, article) pair; marking an already-read article again only refreshes
// the timestamp (upsert semantics).
type ReadFact struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    string       `gorm:"not null;index:idx_user_article,unique" json:"user_id"`
	ArticleID uint         `gorm:"not null;index:idx_user_article,unique" json:"article_id"`
	IsRead    bool         `gorm:"default:false" json:"is_read"`
	ReadAt    sql.NullTime `json:"read_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName specifies the table name for the ReadFact model.
func (ReadFact) TableName() string {
	return "read_facts"
}
