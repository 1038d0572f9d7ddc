// Package tabseed derives add-form defaults from a web page.
package tabseed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"golang.org/x/net/html"
)

var ErrNotURL = errors.New("not an http(s) URL")

// maxPageBytes caps how much of a page is read looking for <head> metadata.
const maxPageBytes = 1 << 20

// Inspector fetches pages and reads their title and description.
type Inspector struct {
	client *http.Client
	log    logger.Logger
}

// InspectorParams holds parameters for creating a new Inspector.
type InspectorParams struct {
	HTTPClient *http.Client  // optional
	Logger     logger.Logger // optional
}

// NewInspector creates a page inspector.
func NewInspector(params InspectorParams) *Inspector {
	client := params.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Inspector{client: client, log: log.With(logger.String("component", "tabseed"))}
}

// Inspect fetches rawURL and returns its metadata.
func (i *Inspector) Inspect(ctx context.Context, rawURL string) (model.TabSeed, error) {
	pageURL, err := Normalize(rawURL)
	if err != nil {
		return model.TabSeed{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return model.TabSeed{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; bmc)")
	req.Header.Set("Accept", "text/html")

	resp, err := i.client.Do(req)
	if err != nil {
		return model.TabSeed{}, fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.TabSeed{}, fmt.Errorf("fetch page: %s", resp.Status)
	}

	seed, err := Parse(io.LimitReader(resp.Body, maxPageBytes), pageURL)
	if err != nil {
		return model.TabSeed{}, err
	}
	i.log.Debug("inspected page", logger.String("url", pageURL), logger.String("title", seed.Title))
	return seed, nil
}

// Seed is Inspect that never fails: on error it falls back to the URL alone.
func (i *Inspector) Seed(ctx context.Context, rawURL string) model.TabSeed {
	seed, err := i.Inspect(ctx, rawURL)
	if err != nil {
		i.log.Warn("page inspection failed", logger.String("url", rawURL), logger.Error(err))
		return Fallback(rawURL)
	}
	return seed
}

// Fallback builds a seed from the URL alone, titled with its host.
func Fallback(rawURL string) model.TabSeed {
	rawURL = strings.TrimSpace(rawURL)
	seed := model.TabSeed{URL: rawURL, Title: rawURL}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		seed.Title = u.Host
	}
	return seed
}

// Normalize trims rawURL and adds https:// when no scheme is given.
func Normalize(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrNotURL
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNotURL, rawURL)
	}
	return u.String(), nil
}

// ClipboardURL returns the clipboard content if it is a URL.
func ClipboardURL() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return Normalize(text)
}

// Parse reads title and description from an HTML document.
// og:title and og:description are used when the plain tags are missing.
func Parse(r io.Reader, pageURL string) (model.TabSeed, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.TabSeed{}, fmt.Errorf("parse page: %w", err)
	}

	var title, ogTitle, description, ogDescription string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "title":
				if title == "" {
					title = textContent(n)
				}
				return
			case "meta":
				content := strings.TrimSpace(getAttr(n, "content"))
				switch strings.ToLower(getAttr(n, "name") + getAttr(n, "property")) {
				case "description":
					description = content
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDescription = content
				}
				return
			case "body":
				// Metadata lives in <head>.
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if title == "" {
		title = ogTitle
	}
	if description == "" {
		description = ogDescription
	}

	seed := Fallback(pageURL)
	if title != "" {
		seed.Title = collapseSpace(title)
	}
	seed.Description = collapseSpace(description)
	return seed, nil
}

func textContent(n *html.Node) string {
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

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
