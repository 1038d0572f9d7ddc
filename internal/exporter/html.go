package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders bookmarks as a Netscape bookmark file, oldest first.
// Descriptions are written as <DD> lines.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	sorted := append([]model.Bookmark(nil), bookmarks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	const prefix = "    "
	for _, bookmark := range sorted {
		fmt.Fprintf(&b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"", prefix, html.EscapeString(bookmark.URL), unix(bookmark.CreatedAt))
		if !bookmark.UpdatedAt.IsZero() {
			fmt.Fprintf(&b, " LAST_MODIFIED=\"%d\"", bookmark.UpdatedAt.Unix())
		}
		fmt.Fprintf(&b, ">%s</A>\n", html.EscapeString(bookmark.Title))

		if bookmark.Description != "" {
			fmt.Fprintf(&b, "%s<DD>%s\n", prefix, html.EscapeString(bookmark.Description))
		}
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

// WriteFile writes the export to path, creating parent directories.
func WriteFile(path string, bookmarks []model.Bookmark) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ExportHTML(bookmarks)), 0644)
}
