// Package apitest provides an in-memory bookmark API server for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikbrunner/bmc/internal/model"
)

const SessionCookie = "bm_session"

// Server mimics the bookmark API: cookie sessions, per-user bookmark lists.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[string]string // username -> password
	sessions  map[string]string // token -> username
	bookmarks map[string][]model.Bookmark
	nextID    int64
	failures  map[string]int // route -> forced status
	calls     map[string]int // route -> request count
	delay     time.Duration
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:     make(map[string]string),
		sessions:  make(map[string]string),
		bookmarks: make(map[string][]model.Bookmark),
		failures:  make(map[string]int),
		calls:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/auth/whoami", s.route("GET /auth/whoami", s.whoami))
	r.Post("/auth/login", s.route("POST /auth/login", s.login))
	r.Post("/auth/logout", s.route("POST /auth/logout", s.logout))
	r.Get("/bookmarks", s.route("GET /bookmarks", s.authed(s.list)))
	r.Post("/bookmarks/new", s.route("POST /bookmarks/new", s.authed(s.create)))
	r.Put("/bookmarks/{id}", s.route("PUT /bookmarks/{id}", s.authed(s.update)))
	r.Delete("/bookmarks/{id}", s.route("DELETE /bookmarks/{id}", s.authed(s.remove)))

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a user that can log in.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// Seed stores bookmarks for username and returns them with assigned IDs.
func (s *Server) Seed(username string, fields ...model.BookmarkFields) []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Bookmark
	for _, f := range fields {
		b := s.newBookmark(f)
		s.bookmarks[username] = append(s.bookmarks[username], b)
		out = append(out, b)
	}
	return out
}

// Bookmarks returns the server-side list for username.
func (s *Server) Bookmarks(username string) []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Bookmark{}, s.bookmarks[username]...)
}

// Fail forces every request to route to answer with status until Recover.
// Routes are written as "METHOD /pattern", e.g. "POST /bookmarks/new".
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Recover removes a forced failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// SetDelay makes every handler sleep before answering.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

func (s *Server) route(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		status, failing := s.failures[name]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if failing {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next(w, r)
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, username string)

func (s *Server) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := s.sessionUser(r)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next(w, r, username)
	}
}

func (s *Server) sessionUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.sessions[cookie.Value]
	return username, ok
}

func (s *Server) whoami(w http.ResponseWriter, r *http.Request) {
	username, ok := s.sessionUser(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, model.Session{Username: username})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	password, known := s.users[creds.Username]
	if !known || password != creds.Password {
		s.mu.Unlock()
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	token := uuid.NewString()
	s.sessions[token] = creds.Username
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, model.Session{Username: creds.Username})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request, username string) {
	writeJSON(w, http.StatusOK, s.Bookmarks(username))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, username string) {
	var fields model.BookmarkFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || fields.URL == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	b := s.newBookmark(fields)
	s.bookmarks[username] = append(s.bookmarks[username], b)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, username string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	var fields model.BookmarkFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	b := model.FindBookmark(s.bookmarks[username], id)
	if b == nil {
		s.mu.Unlock()
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	b.URL, b.Title, b.Description = fields.URL, fields.Title, fields.Description
	b.UpdatedAt = time.Now().UTC()
	updated := *b
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request, username string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	list := s.bookmarks[username]
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	s.bookmarks[username] = append(list[:idx:idx], list[idx+1:]...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, true)
}

// newBookmark must be called with s.mu held.
func (s *Server) newBookmark(f model.BookmarkFields) model.Bookmark {
	s.nextID++
	now := time.Now().UTC()
	return model.Bookmark{
		ID:          s.nextID,
		URL:         f.URL,
		Title:       f.Title,
		Description: f.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
