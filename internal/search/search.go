package search

import (
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       *model.Bookmark
	MatchedIndexes []int // indexes into Label(Bookmark)
	Score          int
}

// Label is the text a bookmark is matched against: its title, or its URL
// when the title is empty.
func Label(b *model.Bookmark) string {
	if b.Title != "" {
		return b.Title
	}
	return b.URL
}

// bookmarkLabels implements fuzzy.Source for a bookmark slice.
type bookmarkLabels []*model.Bookmark

func (bl bookmarkLabels) String(i int) string {
	return Label(bl[i])
}

func (bl bookmarkLabels) Len() int {
	return len(bl)
}

// FuzzySearchBookmarks searches bookmarks by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(list []model.Bookmark, query string) []SearchResult {
	if query == "" {
		return nil
	}

	bookmarks := make(bookmarkLabels, len(list))
	for i := range list {
		bookmarks[i] = &list[i]
	}

	matches := fuzzy.FindFrom(query, bookmarks)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       bookmarks[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// Filter returns the bookmarks matching query, best first.
// An empty query returns the list unchanged.
func Filter(list []model.Bookmark, query string) []model.Bookmark {
	if query == "" {
		return list
	}
	results := FuzzySearchBookmarks(list, query)
	out := make([]model.Bookmark, len(results))
	for i, r := range results {
		out[i] = *r.Bookmark
	}
	return out
}
