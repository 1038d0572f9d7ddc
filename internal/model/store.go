package model

import "strings"

// FindBookmark finds a bookmark by ID, returns nil if not found.
func FindBookmark(bookmarks []Bookmark, id int64) *Bookmark {
	for i := range bookmarks {
		if bookmarks[i].ID == id {
			return &bookmarks[i]
		}
	}
	return nil
}

// HasBookmarkURL reports whether any bookmark points at url.
// Comparison ignores a trailing slash.
func HasBookmarkURL(bookmarks []Bookmark, url string) bool {
	want := normalizeURL(url)
	for _, b := range bookmarks {
		if normalizeURL(b.URL) == want {
			return true
		}
	}
	return false
}

// FilterNew splits candidates into those whose URL is not yet bookmarked
// and a count of skipped duplicates. Duplicates within candidates are
// skipped as well.
func FilterNew(existing []Bookmark, candidates []BookmarkFields) ([]BookmarkFields, int) {
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, b := range existing {
		seen[normalizeURL(b.URL)] = true
	}

	var fresh []BookmarkFields
	skipped := 0
	for _, c := range candidates {
		key := normalizeURL(c.URL)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		fresh = append(fresh, c)
	}
	return fresh, skipped
}

func normalizeURL(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
