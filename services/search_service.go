package services

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
	"github.com/TemirlanOspanov/mobileencoapp-sub001/repository"
)

// SearchService defines the interface for ranked article search.
type SearchService interface {
	Search(query string) ([]models.SearchResult, error)
}

type searchService struct {
	articleRepo   repository.ArticleRepository
	maxResults    int // 0 = unlimited
	excerptRadius int
}

// NewSearchService creates a new instance of SearchService. maxResults of 0
// disables the cap; excerptRadius of 0 falls back to DefaultExcerptRadius.
func NewSearchService(articleRepo repository.ArticleRepository, maxResults, excerptRadius int) SearchService {
	return &searchService{
		articleRepo:   articleRepo,
		maxResults:    maxResults,
		excerptRadius: excerptRadius,
	}
}

// Search fans the query out across title, body, tag and category lookups,
// scores every distinct candidate, keeps the best result per article and
// returns them sorted by descending relevance. An empty or whitespace-only
// query yields an empty list, not an error. Repository failures surface as
// ErrUnavailable so the caller can retry; partial results are never returned
// as if they were authoritative.
func (s *searchService) Search(query string) ([]models.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		log.Printf("INFO: [SearchService] Empty query, returning no results.")
		return []models.SearchResult{}, nil
	}

	// The four strategies overlap on purpose; dedup happens after scoring.
	finders := []struct {
		name string
		find func(string) ([]*models.Article, error)
	}{
		{"title", s.articleRepo.FindArticlesByTitleSubstring},
		{"body", s.articleRepo.FindArticlesByBodySubstring},
		{"tag", s.articleRepo.FindArticlesByTagSubstring},
		{"category", s.articleRepo.FindArticlesByCategorySubstring},
	}

	candidates := make(map[uint]*models.Article)
	var order []uint
	for _, f := range finders {
		articles, err := f.find(trimmed)
		if err != nil {
			log.Printf("ERROR: [SearchService] %s lookup failed for query %q: %v", f.name, trimmed, err)
			return nil, fmt.Errorf("%w: %s lookup failed: %v", ErrUnavailable, f.name, err)
		}
		for _, article := range articles {
			if _, seen := candidates[article.ID]; !seen {
				candidates[article.ID] = article
				order = append(order, article.ID)
			}
		}
	}

	results := make([]models.SearchResult, 0, len(order))
	for _, id := range order {
		article := candidates[id]
		tagNames, err := s.articleRepo.GetArticleTagNames(id)
		if err != nil {
			log.Printf("ERROR: [SearchService] Tag lookup failed for article ID %d: %v", id, err)
			return nil, fmt.Errorf("%w: tag lookup failed for article ID %d: %v", ErrUnavailable, id, err)
		}
		result, ok := ScoreArticle(trimmed, article, tagNames, article.Category.Name, s.excerptRadius)
		if !ok {
			// A finder can surface an article the scorer rejects (e.g. the
			// trimmed query only matched via SQL wildcards); drop it.
			continue
		}
		results = append(results, *result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		a, b := candidates[results[i].ArticleID], candidates[results[j].ArticleID]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})

	if s.maxResults > 0 && len(results) > s.maxResults {
		results = results[:s.maxResults]
	}

	log.Printf("INFO: [SearchService] Query %q matched %d articles.", trimmed, len(results))
	return results, nil
}
