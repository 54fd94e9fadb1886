package book

import (
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/validation"
)

// Sort orders accepted by SearchQuery.Sort.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortAuthorAZ  = "author_az"
)

// ConditionAny disables the condition filter.
const ConditionAny = "any"

// cacheKeyVersion is bumped whenever the cached SearchResult shape changes.
const cacheKeyVersion = "search:v1"

// SearchQuery is one caller request.
type SearchQuery struct {
	Title     string `json:"title,omitempty" validate:"required_without_all=Author Category Subject,max=256"`
	Author    string `json:"author,omitempty" validate:"max=256"`
	Category  string `json:"category,omitempty" validate:"max=128"`
	Subject   string `json:"subject,omitempty" validate:"max=128"`
	Condition string `json:"condition,omitempty" validate:"omitempty,oneof=any new used"`
	Sort      string `json:"sort,omitempty" validate:"omitempty,oneof=relevance newest author_az"`
	Page      int    `json:"page" validate:"min=1"`
}

// Normalized returns a copy with text fields trimmed and whitespace collapsed,
// enum fields lower-cased and the defaults ("any", "relevance") filled in.
func (q SearchQuery) Normalized() SearchQuery {
	q.Title = collapse(q.Title)
	q.Author = collapse(q.Author)
	q.Category = collapse(q.Category)
	q.Subject = collapse(q.Subject)

	q.Condition = strings.ToLower(strings.TrimSpace(q.Condition))
	if q.Condition == "" {
		q.Condition = ConditionAny
	}
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	return q
}

// Validate checks the query after normalization. The returned error, when
// non-nil, lists every invalid field.
func (q SearchQuery) Validate() *apperrors.ValidationError {
	return validation.ValidateStruct(&q)
}

// HasText reports whether any free-text field is set.
func (q SearchQuery) HasText() bool {
	return q.Title != "" || q.Author != "" || q.Category != "" || q.Subject != ""
}

// CacheKey serializes every field in a stable order. Two queries that differ
// only in whitespace or letter case map to the same key.
func (q SearchQuery) CacheKey() string {
	n := q.Normalized()
	v := url.Values{}
	v.Set("title", strings.ToLower(n.Title))
	v.Set("author", strings.ToLower(n.Author))
	v.Set("category", strings.ToLower(n.Category))
	v.Set("subject", strings.ToLower(n.Subject))
	v.Set("condition", n.Condition)
	v.Set("sort", n.Sort)
	v.Set("page", strconv.Itoa(n.Page))
	return cacheKeyVersion + "?" + v.Encode()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
