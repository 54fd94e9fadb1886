package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"openlibrary", "googlebooks", "isbndb"}, Names())
}

func TestBuildKeepsRegistrationOrder(t *testing.T) {
	adapters := Build(map[string]Config{
		"openlibrary": {Enabled: true},
		"googlebooks": {Enabled: true, RatePerSecond: 5},
		"isbndb":      {Enabled: true, APIKey: "k"},
	}, DefaultBreakerSettings(), nil)

	require.Len(t, adapters, 3)
	for i, name := range Names() {
		assert.Equal(t, name, adapters[i].Name())
		assert.Equal(t, "closed", BreakerState(adapters[i]))
	}
	assert.True(t, adapters[2].Accepts(book.SearchQuery{Title: "dune"}))
}

func TestBuildSkipsDisabled(t *testing.T) {
	adapters := Build(map[string]Config{
		"openlibrary": {Enabled: false},
		"isbndb":      {Enabled: false},
	}, DefaultBreakerSettings(), nil)

	require.Len(t, adapters, 1)
	assert.Equal(t, "googlebooks", adapters[0].Name())
}
