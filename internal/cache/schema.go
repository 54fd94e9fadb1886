package cache

// searchCacheTable is the only table the SQLite backend uses.
const searchCacheTable = "search_cache"

// SearchCacheSchema defines the schema for cached search results.
// expires_at is stored as unix seconds so expiry checks are integer compares.
const SearchCacheSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data BLOB NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_cache_expires_at ON search_cache(expires_at);
`
