// Package notify keeps transient, user-visible notices.
package notify

import (
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notice is one message shown to the user until it expires.
type Notice struct {
	ID          int
	Level       Level
	Title       string
	Description string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Notifier receives notices from mutation continuations.
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// Center stores notices. Safe for concurrent use.
type Center struct {
	mu      sync.Mutex
	notices []Notice
	nextID  int
	ttl     time.Duration
	now     func() time.Time
}

// Params holds parameters for creating a new Center.
type Params struct {
	TTL time.Duration    // how long a notice stays; default 4s
	Now func() time.Time // optional, for tests
}

const defaultTTL = 4 * time.Second

// NewCenter creates an empty notice center.
func NewCenter(params Params) *Center {
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Center{ttl: ttl, now: now}
}

// Success pushes a success notice.
func (c *Center) Success(title, description string) {
	c.push(LevelSuccess, title, description)
}

// Error pushes an error notice.
func (c *Center) Error(title, description string) {
	c.push(LevelError, title, description)
}

func (c *Center) push(level Level, title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	created := c.now()
	c.notices = append(c.notices, Notice{
		ID:          c.nextID,
		Level:       level,
		Title:       title,
		Description: description,
		CreatedAt:   created,
		ExpiresAt:   created.Add(c.ttl),
	})
}

// Active returns unexpired notices, oldest first, and drops expired ones.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.notices[:0]
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.notices = kept
	return append([]Notice(nil), kept...)
}

// All returns every notice still held, expired or not.
func (c *Center) All() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// Dismiss removes the notice with id.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return
		}
	}
}

// TTL returns how long notices stay visible.
func (c *Center) TTL() time.Duration {
	return c.ttl
}
