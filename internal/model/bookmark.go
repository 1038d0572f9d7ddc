package model

import "time"

// Bookmark is a saved URL as returned by the bookmark API.
// IDs and timestamps are assigned by the server.
type Bookmark struct {
	ID          int64     `json:"id" yaml:"id"`
	URL         string    `json:"url" yaml:"url"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// BookmarkFields holds the user-editable fields sent on create and update.
// Values are passed through unvalidated; the server is the only validator.
type BookmarkFields struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Fields returns the editable fields of the bookmark.
func (b Bookmark) Fields() BookmarkFields {
	return BookmarkFields{
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
	}
}

// TabSeed holds page metadata used to prefill the add form.
// It is derived once at startup and discarded after use.
type TabSeed struct {
	Title       string
	URL         string
	Description string // optional
}

// Fields converts the seed into default form values.
func (s TabSeed) Fields() BookmarkFields {
	return BookmarkFields{
		URL:         s.URL,
		Title:       s.Title,
		Description: s.Description,
	}
}
