package search

import (
	"testing"

	"github.com/nikbrunner/bmc/internal/model"
)

func sampleBookmarks() []model.Bookmark {
	return []model.Bookmark{
		{ID: 1, Title: "GitHub", URL: "https://github.com"},
		{ID: 2, Title: "GitLab", URL: "https://gitlab.com"},
		{ID: 3, Title: "TanStack Router", URL: "https://tanstack.com/router"},
		{ID: 4, Title: "TanStack Query", URL: "https://tanstack.com/query"},
		{ID: 5, Title: "", URL: "https://untitled.example.com"},
	}
}

func TestFuzzySearchBookmarks_EmptyQuery(t *testing.T) {
	results := FuzzySearchBookmarks(sampleBookmarks(), "")

	if len(results) != 0 {
		t.Errorf("expected 0 results for empty query, got %d", len(results))
	}
}

func TestFuzzySearchBookmarks_ExactMatch(t *testing.T) {
	results := FuzzySearchBookmarks(sampleBookmarks(), "GitHub")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark.ID != 1 {
		t.Errorf("expected GitHub, got %s", results[0].Bookmark.Title)
	}
}

func TestFuzzySearchBookmarks_FuzzyMatch(t *testing.T) {
	results := FuzzySearchBookmarks(sampleBookmarks(), "tsq")

	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].Bookmark.Title != "TanStack Query" {
		t.Errorf("expected TanStack Query first, got %s", results[0].Bookmark.Title)
	}
	if len(results[0].MatchedIndexes) != 3 {
		t.Errorf("expected 3 matched indexes, got %v", results[0].MatchedIndexes)
	}
}

func TestFuzzySearchBookmarks_UntitledMatchesURL(t *testing.T) {
	results := FuzzySearchBookmarks(sampleBookmarks(), "untitled")

	if len(results) != 1 || results[0].Bookmark.ID != 5 {
		t.Fatalf("expected untitled bookmark to match by URL, got %v", results)
	}
}

func TestFuzzySearchBookmarks_PointsIntoList(t *testing.T) {
	list := sampleBookmarks()
	results := FuzzySearchBookmarks(list, "GitLab")

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Bookmark != &list[1] {
		t.Error("expected result to point into the searched slice")
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []int64
	}{
		{"empty query keeps order", "", []int64{1, 2, 3, 4, 5}},
		{"no match", "zzzz", []int64{}},
		{"single match", "lab", []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(sampleBookmarks(), tt.query)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("result %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}
