package cache

import "fmt"

// FeedKeyPrefix is the shared prefix of all feed query keys.
const FeedKeyPrefix = "feed:"

// FeedKeyParams identifies a feed query for key derivation. Two requests with
// identical semantic parameters derive the identical key; any differing
// parameter derives a different key.
type FeedKeyParams struct {
	// AuthorID restricts the feed to one author's posts; nil means all posts.
	AuthorID *uint
	Category string
	SortBy   string
	SortDir  string
	Skip     int
	Limit    int
}

// FeedKey derives the deterministic cache key for a feed query.
func FeedKey(p FeedKeyParams) string {
	scope := "all"
	if p.AuthorID != nil {
		scope = fmt.Sprintf("by-user:%d", *p.AuthorID)
	}
	category := p.Category
	if category == "" {
		category = "any"
	}
	return fmt.Sprintf("%s%s:cat=%s:sort=%s_%s:skip=%d:limit=%d",
		FeedKeyPrefix, scope, category, p.SortBy, p.SortDir, p.Skip, p.Limit)
}
