package storage

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/nikbrunner/bmc/internal/logger"
)

// PersistentJar is an http.CookieJar that writes every cookie change to a
// Storage, so a login survives across processes.
type PersistentJar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	storage Storage
	cookies map[string]Cookie // url + "\x00" + name
	log     logger.Logger
	now     func() time.Time
}

// JarParams holds parameters for creating a new PersistentJar.
type JarParams struct {
	Storage Storage
	Logger  logger.Logger    // optional
	Now     func() time.Time // optional, for tests
}

// NewPersistentJar loads stored cookies into a fresh jar.
// Expired cookies are dropped on load.
func NewPersistentJar(params JarParams) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	j := &PersistentJar{
		jar:     jar,
		storage: params.Storage,
		cookies: make(map[string]Cookie),
		log:     log.With(logger.String("component", "jar")),
		now:     now,
	}

	stored, err := params.Storage.Load()
	if err != nil {
		return nil, err
	}
	for _, c := range stored {
		if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
			continue
		}
		u, err := url.Parse(c.URL)
		if err != nil {
			j.log.Warn("skipping cookie with bad url", logger.String("url", c.URL), logger.Error(err))
			continue
		}
		j.jar.SetCookies(u, []*http.Cookie{c.httpCookie()})
		j.cookies[cookieKey(c.URL, c.Name)] = c
	}
	j.log.Debug("loaded cookies", logger.Int("count", len(j.cookies)))
	return j, nil
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	jar := j.jar
	j.mu.Unlock()
	return jar.Cookies(u)
}

// SetCookies implements http.CookieJar and persists the change.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)

	origin := originOf(u)
	for _, hc := range cookies {
		key := cookieKey(origin, hc.Name)
		if hc.MaxAge < 0 || (!hc.Expires.IsZero() && !hc.Expires.After(j.now())) {
			delete(j.cookies, key)
			continue
		}
		c := Cookie{
			URL:      origin,
			Name:     hc.Name,
			Value:    hc.Value,
			Domain:   hc.Domain,
			Path:     hc.Path,
			Expires:  hc.Expires,
			Secure:   hc.Secure,
			HttpOnly: hc.HttpOnly,
		}
		if hc.MaxAge > 0 {
			c.Expires = j.now().Add(time.Duration(hc.MaxAge) * time.Second)
		}
		j.cookies[key] = c
	}

	if err := j.storage.Save(j.snapshot()); err != nil {
		j.log.Error("failed to persist cookies", logger.Error(err))
	}
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
	j.cookies = make(map[string]Cookie)
	return j.storage.Save([]Cookie{})
}

// Stored returns the cookies the jar would persist, sorted by url and name.
func (j *PersistentJar) Stored() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot()
}

// snapshot must be called with j.mu held.
func (j *PersistentJar) snapshot() []Cookie {
	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].URL != out[b].URL {
			return out[a].URL < out[b].URL
		}
		return out[a].Name < out[b].Name
	})
	return out
}

func (c Cookie) httpCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
}

// originOf keeps scheme and host; cookie paths are stored on the cookie.
func originOf(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}).String()
}

func cookieKey(origin, name string) string {
	return origin + "\x00" + name
}
