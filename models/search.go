package models

// MatchKind classifies how a search query matched an article. It is a closed
// set: new kinds require touching the scorer's precedence table as well.
type MatchKind string

const (
	MatchTitleExact   MatchKind = "title_exact"
	MatchTitlePartial MatchKind = "title_partial"
	MatchBodyExact    MatchKind = "body_exact"
	MatchBodyPartial  MatchKind = "body_partial"
	MatchTag          MatchKind = "tag"
	MatchCategory     MatchKind = "category"
)

// SearchResult is a transient, per-query ranking entry. It is never persisted;
// every search recomputes its results from scratch.
type SearchResult struct {
	ArticleID    uint      `json:"article_id"`
	Title        string    `json:"title"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Difficulty   int       `json:"difficulty"`
	ImageURL     string    `json:"image_url,omitempty"`
	MatchKind    MatchKind `json:"match_kind"`
	Excerpt      string    `json:"excerpt,omitempty"` // Highlighted body window, body matches only
	Score        float64   `json:"score"`             // Higher is more relevant
}
