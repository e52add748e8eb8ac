package repository

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"

	"gorm.io/gorm"
)

// ArticleRepository defines the interface for retrieving articles, categories
// and tags from the content catalog. The search service fans its query out
// across the four substring finders; they are allowed to return overlapping
// candidate sets.
type ArticleRepository interface {
	GetArticleByID(articleID uint) (*models.Article, error)
	GetCategoryByID(categoryID uint) (*models.Category, error)
	FindArticlesByTitleSubstring(text string) ([]*models.Article, error)
	FindArticlesByBodySubstring(text string) ([]*models.Article, error)
	FindArticlesByTagSubstring(text string) ([]*models.Article, error)
	FindArticlesByCategorySubstring(text string) ([]*models.Article, error)
	GetArticleTagNames(articleID uint) ([]string, error)
	CountArticles(categoryID *uint) (int64, error)
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// likePattern builds a case-insensitive LIKE pattern for a substring search.
// Comparison is done on LOWER() of both sides so non-ASCII titles behave the
// same across SQLite builds.
func likePattern(text string) string {
	return "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
}

// GetArticleByID retrieves a single article with its category preloaded.
// Returns (nil, nil) when the article does not exist.
func (r *articleRepository) GetArticleByID(articleID uint) (*models.Article, error) {
	var article models.Article
	err := r.db.Preload("Category").First(&article, articleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ArticleRepository] Article with ID %d not found.", articleID)
			return nil, nil
		}
		log.Printf("ERROR: [ArticleRepository] Failed to retrieve article ID %d: %v", articleID, err)
		return nil, fmt.Errorf("failed to retrieve article ID %d: %w", articleID, err)
	}
	return &article, nil
}

// GetCategoryByID retrieves a category. Returns (nil, nil) when absent.
func (r *articleRepository) GetCategoryByID(categoryID uint) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("INFO: [ArticleRepository] Category with ID %d not found.", categoryID)
			return nil, nil
		}
		log.Printf("ERROR: [ArticleRepository] Failed to retrieve category ID %d: %v", categoryID, err)
		return nil, fmt.Errorf("failed to retrieve category ID %d: %w", categoryID, err)
	}
	return &category, nil
}

// FindArticlesByTitleSubstring returns articles whose title contains the given
// text, case-insensitively.
func (r *articleRepository) FindArticlesByTitleSubstring(text string) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.Preload("Category").
		Where("LOWER(title) LIKE ?", likePattern(text)).
		Find(&articles).Error
	if err != nil {
		log.Printf("ERROR: [ArticleRepository] Title substring search for %q failed: %v", text, err)
		return nil, fmt.Errorf("title substring search failed: %w", err)
	}
	return articles, nil
}

// FindArticlesByBodySubstring returns articles whose body contains the given
// text, case-insensitively.
func (r *articleRepository) FindArticlesByBodySubstring(text string) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.Preload("Category").
		Where("LOWER(content) LIKE ?", likePattern(text)).
		Find(&articles).Error
	if err != nil {
		log.Printf("ERROR: [ArticleRepository] Body substring search for %q failed: %v", text, err)
		return nil, fmt.Errorf("body substring search failed: %w", err)
	}
	return articles, nil
}

// FindArticlesByTagSubstring returns articles carrying at least one tag whose
// name contains the given text.
func (r *articleRepository) FindArticlesByTagSubstring(text string) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.Preload("Category").
		Joins("JOIN article_tags ON article_tags.article_id = articles.id").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("LOWER(tags.name) LIKE ?", likePattern(text)).
		Distinct("articles.*").
		Find(&articles).Error
	if err != nil {
		log.Printf("ERROR: [ArticleRepository] Tag substring search for %q failed: %v", text, err)
		return nil, fmt.Errorf("tag substring search failed: %w", err)
	}
	return articles, nil
}

// FindArticlesByCategorySubstring returns articles whose category name
// contains the given text.
func (r *articleRepository) FindArticlesByCategorySubstring(text string) ([]*models.Article, error) {
	var articles []*models.Article
	err := r.db.Preload("Category").
		Joins("JOIN categories ON categories.id = articles.category_id").
		Where("LOWER(categories.name) LIKE ?", likePattern(text)).
		Find(&articles).Error
	if err != nil {
		log.Printf("ERROR: [ArticleRepository] Category substring search for %q failed: %v", text, err)
		return nil, fmt.Errorf("category substring search failed: %w", err)
	}
	return articles, nil
}

// GetArticleTagNames returns the names of all tags linked to an article.
// Returns an empty slice for an untagged (or unknown) article.
func (r *articleRepository) GetArticleTagNames(articleID uint) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Tag{}).
		Joins("JOIN article_tags ON article_tags.tag_id = tags.id").
		Where("article_tags.article_id = ?", articleID).
		Pluck("tags.name", &names).Error
	if err != nil {
		log.Printf("ERROR: [ArticleRepository] Failed to retrieve tag names for article ID %d: %v", articleID, err)
		return nil, fmt.Errorf("failed to retrieve tag names for article ID %d: %w", articleID, err)
	}
	return names, nil
}

// CountArticles returns the number of articles, optionally restricted to one
// category.
func (r *articleRepository) CountArticles(categoryID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Article{})
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if err := query.Count(&count).Error; err != nil {
		log.Printf("ERROR: [ArticleRepository] Failed to count articles (categoryID=%v): %v", categoryID, err)
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}
