package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
	"golang.org/x/net/html"
)

// Entry is one bookmark found in a Netscape bookmark file.
type Entry struct {
	Fields  model.BookmarkFields
	Folder  string    // slash-joined folder path, "" at the root
	AddedAt time.Time // zero when ADD_DATE is missing
}

// ParseHTMLBookmarks parses Netscape bookmark HTML. The remote list is flat,
// so folders are kept only as a path on each entry. A <DD> following a link
// becomes its description.
func ParseHTMLBookmarks(r io.Reader) ([]Entry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []Entry

	// Track current folder stack for hierarchy
	var folderStack []string
	var pendingFolder string // folder waiting to be pushed on next DL
	var last *Entry          // entry a following DD describes; reset before the next append

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				pendingFolder = getTextContent(n)
				last = nil
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					// Skip bookmarks without URL
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href // fallback to URL as title
				}

				entry := Entry{
					Fields: model.BookmarkFields{URL: href, Title: title},
					Folder: strings.Join(folderStack, "/"),
				}
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						entry.AddedAt = time.Unix(ts, 0)
					}
				}
				entries = append(entries, entry)
				last = &entries[len(entries)-1]
				return // Don't recurse into A

			case "dd":
				if last != nil {
					last.Fields.Description = ownText(n)
					last = nil
				}
				// DD may wrap the next DT in sloppy files; keep walking.

			case "dl":
				// If we have a pending folder, push it now
				pushedFolder := false
				if pendingFolder != "" {
					folderStack = append(folderStack, pendingFolder)
					pendingFolder = ""
					pushedFolder = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushedFolder {
					folderStack = folderStack[:len(folderStack)-1]
				}
				last = nil
				return // Don't recurse further, we handled children
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return entries, nil
}

// Fields returns the bookmark fields of entries, in file order.
func Fields(entries []Entry) []model.BookmarkFields {
	out := make([]model.BookmarkFields, len(entries))
	for i, e := range entries {
		out[i] = e.Fields
	}
	return out
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// ownText returns the text directly inside n, ignoring nested elements.
func ownText(n *html.Node) string {
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
