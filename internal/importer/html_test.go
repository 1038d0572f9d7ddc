package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmc/internal/importer"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(entries))
	}

	e := entries[0]
	if e.Fields.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", e.Fields.Title)
	}
	if e.Fields.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", e.Fields.URL)
	}
	if e.Folder != "" {
		t.Errorf("expected root folder, got %q", e.Folder)
	}
	if !e.AddedAt.Equal(time.Unix(1234567890, 0)) {
		t.Errorf("unexpected AddedAt %v", e.AddedAt)
	}
}

func TestParseHTML_NestedFoldersBecomePaths(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3>Go</H3>
        <DL><p>
            <DT><A HREF="https://go.dev">Go</A>
        </DL><p>
        <DT><A HREF="https://github.com">GitHub</A>
    </DL><p>
    <DT><A HREF="https://news.ycombinator.com">HN</A>
</DL><p>`

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"https://go.dev":               "Development/Go",
		"https://github.com":           "Development",
		"https://news.ycombinator.com": "",
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for _, e := range entries {
		if folder, ok := want[e.Fields.URL]; !ok || folder != e.Folder {
			t.Errorf("%s: expected folder %q, got %q", e.Fields.URL, folder, e.Folder)
		}
	}
}

func TestParseHTML_DescriptionFromDD(t *testing.T) {
	html := `<DL><p>
    <DT><A HREF="https://a.com">A</A>
    <DD>First site
    <DT><A HREF="https://b.com">B</A>
</DL><p>`

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields.Description != "First site" {
		t.Errorf("expected description 'First site', got %q", entries[0].Fields.Description)
	}
	if entries[1].Fields.Description != "" {
		t.Errorf("expected empty description, got %q", entries[1].Fields.Description)
	}
}

func TestParseHTML_SkipsMissingHrefAndDefaultsTitle(t *testing.T) {
	html := `<DL><p>
    <DT><A>No link</A>
    <DT><A HREF="https://untitled.com"></A>
</DL><p>`

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Fields.Title != "https://untitled.com" {
		t.Errorf("expected URL as title, got %q", entries[0].Fields.Title)
	}
	if !entries[0].AddedAt.IsZero() {
		t.Error("expected zero AddedAt without ADD_DATE")
	}
}

func TestFields(t *testing.T) {
	entries := []importer.Entry{
		{Folder: "x"},
	}
	entries[0].Fields.URL = "https://a.com"

	fields := importer.Fields(entries)
	if len(fields) != 1 || fields[0].URL != "https://a.com" {
		t.Errorf("unexpected fields %v", fields)
	}
}
