package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/TemirlanOspanov/mobileencoapp-sub001/models"
)

// Relevance weights per match kind. The ordering is the contract (title beats
// body beats tag beats category, exact beats partial); the exact values are a
// tuning choice.
const (
	ScoreTitleExact   = 1.0
	ScoreTitlePartial = 0.8
	ScoreBodyExact    = 0.6
	ScoreTag          = 0.5
	ScoreBodyPartial  = 0.4
	ScoreCategory     = 0.3
)

// DefaultExcerptRadius is the number of runes kept on each side of the first
// body occurrence when building a highlighted excerpt.
const DefaultExcerptRadius = 40

// normalizeQuery lowercases and trims text for case-insensitive comparison.
func normalizeQuery(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ScoreArticle classifies how the query matches one candidate article and
// returns the single best-scoring result for it. Field types are evaluated in
// fixed precedence (title, body, tag, category; exact before partial) and the
// highest-scoring classification wins. Returns (nil, false) when the query is
// empty or nothing matches.
//
// Pure function: no side effects, deterministic given its inputs.
func ScoreArticle(query string, article *models.Article, tagNames []string, categoryName string, excerptRadius int) (*models.SearchResult, bool) {
	if article == nil {
		return nil, false
	}
	q := normalizeQuery(query)
	if q == "" {
		return nil, false
	}
	if excerptRadius <= 0 {
		excerptRadius = DefaultExcerptRadius
	}

	var best *models.SearchResult
	consider := func(kind models.MatchKind, score float64, excerpt string) {
		if best != nil && best.Score >= score {
			return
		}
		best = &models.SearchResult{
			ArticleID:    article.ID,
			Title:        article.Title,
			CategoryID:   article.CategoryID,
			CategoryName: categoryName,
			Difficulty:   article.Difficulty,
			ImageURL:     article.ImageURL,
			MatchKind:    kind,
			Excerpt:      excerpt,
			Score:        score,
		}
	}

	title := normalizeQuery(article.Title)
	if title == q {
		consider(models.MatchTitleExact, ScoreTitleExact, "")
	} else if strings.Contains(title, q) {
		consider(models.MatchTitlePartial, ScoreTitlePartial, "")
	}

	if start, end, found := matchFold(article.Content, q); found {
		excerpt := buildExcerpt(article.Content, start, end, excerptRadius)
		if isPhraseMatch(article.Content, start, end) {
			consider(models.MatchBodyExact, ScoreBodyExact, excerpt)
		} else {
			consider(models.MatchBodyPartial, ScoreBodyPartial, excerpt)
		}
	}

	for _, tag := range tagNames {
		if strings.Contains(normalizeQuery(tag), q) {
			consider(models.MatchTag, ScoreTag, "")
			break
		}
	}

	if strings.Contains(normalizeQuery(categoryName), q) {
		consider(models.MatchCategory, ScoreCategory, "")
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

// matchFold locates the first case-insensitive occurrence of the
// already-lowercased needle in s and returns its byte bounds within s.
// Folding is done rune by rune: lowercasing a whole string can change its
// byte length (e.g. U+023A grows from two bytes to three), so offsets taken
// from a lowered copy are not safe to apply to the original.
func matchFold(s, needle string) (start, end int, found bool) {
	if needle == "" {
		return 0, 0, false
	}
	for i := range s {
		if n, ok := prefixFoldLen(s[i:], needle); ok {
			return i, i + n, true
		}
	}
	return 0, 0, false
}

// prefixFoldLen reports whether s starts with the lowercased needle under
// rune-wise folding, and how many bytes of s the match spans.
func prefixFoldLen(s, needle string) (int, bool) {
	n := 0
	for _, nr := range needle {
		sr, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || unicode.ToLower(sr) != nr {
			return 0, false
		}
		n += size
	}
	return n, true
}

// isPhraseMatch reports whether the occurrence spanning [start, end) stands
// alone as a whole phrase, i.e. is not glued to surrounding letters or digits.
// "lava" inside "lava flows" is a phrase match; inside "lavatory" it is not.
func isPhraseMatch(body string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(body[:start])
		if unicode.IsLetter(before) || unicode.IsDigit(before) {
			return false
		}
	}
	if end < len(body) {
		after, _ := utf8.DecodeRuneInString(body[end:])
		if unicode.IsLetter(after) || unicode.IsDigit(after) {
			return false
		}
	}
	return true
}

// buildExcerpt cuts a window of at most radius runes on each side of the match
// spanning [start, end), clamped to the body. Ellipses mark truncated sides.
func buildExcerpt(body string, start, end, radius int) string {
	lo := start
	for i := 0; i < radius && lo > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(body[:lo])
		lo -= size
	}
	hi := end
	if hi > len(body) {
		hi = len(body)
	}
	for i := 0; i < radius && hi < len(body); i++ {
		_, size := utf8.DecodeRuneInString(body[hi:])
		hi += size
	}

	excerpt := body[lo:hi]
	if lo > 0 {
		excerpt = "..." + excerpt
	}
	if hi < len(body) {
		excerpt = excerpt + "..."
	}
	return excerpt
}
