// Package provider contains the adapters that query external book catalogues
// and map their responses onto book.RawRecord.
package provider

import (
	"context"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

// Adapter is one external book source.
type Adapter interface {
	// Name is the stable identifier used in sourceStatus and merge priority.
	Name() string

	// Accepts reports whether the adapter can serve the query shape. Declined
	// queries are never sent to Fetch.
	Accepts(q book.SearchQuery) bool

	// Fetch runs the query upstream. Errors are *errors.ProviderError.
	Fetch(ctx context.Context, q book.SearchQuery) ([]book.RawRecord, error)

	// Ping checks that the upstream is reachable.
	Ping(ctx context.Context) error
}
