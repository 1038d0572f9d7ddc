package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

func TestBookmark_DecodeServerJSON(t *testing.T) {
	payload := `{
		"id": 7,
		"url": "https://tanstack.com/query",
		"title": "TanStack Query",
		"description": "async state",
		"created_at": "2025-01-15T10:30:00Z",
		"updated_at": "2025-01-20T14:22:00Z"
	}`

	var b model.Bookmark
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if b.ID != 7 {
		t.Errorf("ID mismatch: got %d, want 7", b.ID)
	}
	if b.Title != "TanStack Query" {
		t.Errorf("Title mismatch: got %q", b.Title)
	}
	if b.Description != "async state" {
		t.Errorf("Description mismatch: got %q", b.Description)
	}
	want := time.Date(2025, 1, 20, 14, 22, 0, 0, time.UTC)
	if !b.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt mismatch: got %v, want %v", b.UpdatedAt, want)
	}
}

func TestBookmarkFields_EncodesWireNames(t *testing.T) {
	data, err := json.Marshal(model.BookmarkFields{URL: "https://a.com", Title: "A"})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	want := `{"url":"https://a.com","title":"A","description":""}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestFindBookmark(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, Title: "One"},
		{ID: 2, Title: "Two"},
	}

	found := model.FindBookmark(bookmarks, 2)
	if found == nil {
		t.Fatal("expected to find bookmark 2")
	}
	if found.Title != "Two" {
		t.Errorf("expected title 'Two', got %q", found.Title)
	}

	if model.FindBookmark(bookmarks, 99) != nil {
		t.Error("expected nil for missing id")
	}
	if model.FindBookmark(nil, 1) != nil {
		t.Error("expected nil for empty list")
	}
}

func TestHasBookmarkURL(t *testing.T) {
	bookmarks := []model.Bookmark{
		{ID: 1, URL: "https://example.com/"},
	}

	if !model.HasBookmarkURL(bookmarks, "https://example.com") {
		t.Error("expected to find existing URL ignoring trailing slash")
	}
	if model.HasBookmarkURL(bookmarks, "https://notfound.com") {
		t.Error("should not find non-existing URL")
	}
}

func TestFilterNew(t *testing.T) {
	existing := []model.Bookmark{
		{ID: 1, URL: "https://example.com"},
	}
	candidates := []model.BookmarkFields{
		{URL: "https://example.com", Title: "Duplicate"},
		{URL: "https://newsite.com", Title: "New Site"},
		{URL: "https://newsite.com/", Title: "Same new site"},
	}

	fresh, skipped := model.FilterNew(existing, candidates)

	if len(fresh) != 1 {
		t.Fatalf("expected 1 new bookmark, got %d", len(fresh))
	}
	if fresh[0].Title != "New Site" {
		t.Errorf("expected 'New Site', got %q", fresh[0].Title)
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
}

func TestTabSeed_Fields(t *testing.T) {
	seed := model.TabSeed{Title: "Go", URL: "https://go.dev"}
	fields := seed.Fields()

	if fields.URL != "https://go.dev" || fields.Title != "Go" {
		t.Errorf("unexpected fields: %+v", fields)
	}
	if fields.Description != "" {
		t.Errorf("expected empty description, got %q", fields.Description)
	}
}
