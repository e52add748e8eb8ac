package models

import "time"

// Difficulty tiers for articles. Ordinal, 1 is the easiest.
const (
	DifficultyBeginner     = 1
	DifficultyIntermediate = 2
	DifficultyAdvanced     = 3
)

// Article represents an encyclopedia article in the content catalog.
type Article struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null;index" json:"title"`
	Content    string    `gorm:"type:text" json:"content"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	Category   Category  `json:"category"`
	Difficulty int       `gorm:"default:1" json:"difficulty"` // 1=beginner, 2=intermediate, 3=advanced
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// Category groups articles for browsing and per-category progress.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"` // Path or identifier for display
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// Tag is a free-form label attached to articles (many-to-many).
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}

// TableName specifies the table name for the Tag model.
func (Tag) TableName() string {
	return "tags"
}

// ArticleTag links an article to a tag. Set semantics: at most one row per
// (article, tag) pair, order irrelevant.
type ArticleTag struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ArticleID uint `gorm:"not null;index:idx_article_tag,unique" json:"article_id"`
	TagID     uint `gorm:"not null;index:idx_article_tag,unique" json:"tag_id"`
}

// TableName specifies the table name for the ArticleTag model.
func (ArticleTag) TableName() string {
	return "article_tags"
}
