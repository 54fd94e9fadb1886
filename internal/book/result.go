package book

import (
	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
)

// ProviderOutcome is the settled result of one adapter call: records or an error, never both.
type ProviderOutcome struct {
	Provider string
	Records  []RawRecord
	Err      *apperrors.ProviderError
}

// Succeeded builds a successful outcome.
func Succeeded(provider string, records []RawRecord) ProviderOutcome {
	if records == nil {
		records = []RawRecord{}
	}
	return ProviderOutcome{Provider: provider, Records: records}
}

// Failed builds a failed outcome.
func Failed(provider string, err *apperrors.ProviderError) ProviderOutcome {
	return ProviderOutcome{Provider: provider, Err: err}
}

// OK reports whether the provider call succeeded.
func (o ProviderOutcome) OK() bool {
	return o.Err == nil
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int  `json:"currentPage" yaml:"currentPage"`
	TotalPages   int  `json:"totalPages" yaml:"totalPages"`
	TotalResults int  `json:"totalResults" yaml:"totalResults"`
	HasNext      bool `json:"hasNext" yaml:"hasNext"`
	HasPrevious  bool `json:"hasPrevious" yaml:"hasPrevious"`
}

// SearchResult is the page returned to callers and stored in the response cache.
type SearchResult struct {
	Items        []CanonicalBook `json:"items" yaml:"items"`
	Pagination   Pagination      `json:"pagination" yaml:"pagination"`
	SourceStatus map[string]bool `json:"sourceStatus" yaml:"sourceStatus"`
	Errors       []string        `json:"errors" yaml:"errors"`
}

// EmptyResult returns a well-formed result with no items for the given page.
func EmptyResult(page int) SearchResult {
	return SearchResult{
		Items:        []CanonicalBook{},
		Pagination:   Pagination{CurrentPage: page, HasPrevious: page > 1},
		SourceStatus: map[string]bool{},
		Errors:       []string{},
	}
}

// AllFailed reports whether at least one provider was asked and none succeeded.
func (r SearchResult) AllFailed() bool {
	if len(r.SourceStatus) == 0 {
		return false
	}
	for _, ok := range r.SourceStatus {
		if ok {
			return false
		}
	}
	return true
}
