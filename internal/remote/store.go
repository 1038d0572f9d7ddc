// Package remote binds the bookmark API to the query cache and the mutation
// runner. It owns the "users" and "bookmarks" queries and the invalidation
// and notice rules of every mutation.
package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/bmc/internal/api"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/mutation"
	"github.com/nikbrunner/bmc/internal/notify"
	"github.com/nikbrunner/bmc/internal/query"
)

// Query keys.
const (
	KeyUsers     = "users"
	KeyBookmarks = "bookmarks"
)

// Notice titles.
const (
	NoticeBookmarkAdded   = "Bookmark added"
	NoticeBookmarkUpdated = "Bookmark updated successfully"
	NoticeBookmarkDeleted = "Bookmark deleted"
	NoticeAddFailed       = "Failed to add bookmark"
	NoticeUpdateFailed    = "Failed to update bookmark"
	NoticeDeleteFailed    = "Failed to delete bookmark"
	NoticeLoginFailed     = "Failed to log in"
	NoticeLogoutFailed    = "Failed to log out"
)

// API is the subset of the bookmark API the store needs.
type API interface {
	Whoami(ctx context.Context) (model.Session, error)
	Login(ctx context.Context, creds model.Credentials) (model.Session, error)
	Logout(ctx context.Context) (string, error)
	ListBookmarks(ctx context.Context) ([]model.Bookmark, error)
	CreateBookmark(ctx context.Context, fields model.BookmarkFields) (model.Bookmark, error)
	UpdateBookmark(ctx context.Context, id int64, fields model.BookmarkFields) (model.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) (bool, error)
}

// Store is the application's view of the remote bookmark service.
type Store struct {
	api     API
	cache   *query.Cache
	runner  *mutation.Runner
	notices notify.Notifier
	log     logger.Logger
}

// StoreParams holds parameters for creating a new Store.
type StoreParams struct {
	API      API
	Cache    *query.Cache
	Runner   *mutation.Runner // optional
	Notifier notify.Notifier  // optional
	Logger   logger.Logger    // optional

	// BookmarksStaleTime is how long a fetched list stays fresh.
	// 0 keeps it until a mutation invalidates it.
	BookmarksStaleTime time.Duration
}

// NewStore creates a Store and registers its queries on the cache.
func NewStore(params StoreParams) *Store {
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}
	runner := params.Runner
	if runner == nil {
		runner = mutation.NewRunner(log)
	}
	notices := params.Notifier
	if notices == nil {
		notices = discard{}
	}

	s := &Store{
		api:     params.API,
		cache:   params.Cache,
		runner:  runner,
		notices: notices,
		log:     log.With(logger.String("component", "remote")),
	}

	// A failed whoami is how the server says "nobody is logged in", so the
	// session query never retries and maps it to an empty session.
	s.cache.Register(KeyUsers, s.fetchSession, query.Options{Retry: 0})
	s.cache.Register(KeyBookmarks, s.fetchBookmarks, query.Options{StaleTime: params.BookmarksStaleTime})
	return s
}

func (s *Store) fetchSession(ctx context.Context) (any, error) {
	session, err := s.api.Whoami(ctx)
	if errors.Is(err, api.ErrAuthAbsent) {
		s.log.Debug("no active session")
		return (*model.Session)(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) fetchBookmarks(ctx context.Context) (any, error) {
	return s.api.ListBookmarks(ctx)
}

// SessionState is the outcome of reading the "users" query.
type SessionState struct {
	Session *model.Session // nil when logged out
	Err     error          // set when the server could not be asked
}

// LoggedIn reports whether a session is present.
func (st SessionState) LoggedIn() bool {
	return st.Session != nil
}

// Session reads the current session, fetching it if needed.
func (s *Store) Session(ctx context.Context) SessionState {
	return sessionState(s.cache.Read(ctx, KeyUsers))
}

func sessionState(e query.Entry) SessionState {
	if errors.Is(e.Err, query.ErrRemoved) {
		// Logout dropped the session while it was being read.
		return SessionState{}
	}
	if e.Status == query.StatusError {
		return SessionState{Err: e.Err}
	}
	session, _ := e.Value.(*model.Session)
	return SessionState{Session: session}
}

// Bookmarks reads the bookmark list, fetching it if needed.
func (s *Store) Bookmarks(ctx context.Context) ([]model.Bookmark, error) {
	return bookmarksOf(s.cache.Read(ctx, KeyBookmarks))
}

// CachedBookmarks returns the cached list without fetching.
func (s *Store) CachedBookmarks() ([]model.Bookmark, bool) {
	e, ok := s.cache.Peek(KeyBookmarks)
	if !ok || e.Status != query.StatusSuccess {
		return nil, false
	}
	list, _ := e.Value.([]model.Bookmark)
	return list, true
}

// RefreshBookmarks invalidates the list and reads it again.
func (s *Store) RefreshBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	s.cache.Invalidate(KeyBookmarks)
	return s.Bookmarks(ctx)
}

func bookmarksOf(e query.Entry) ([]model.Bookmark, error) {
	if errors.Is(e.Err, query.ErrRemoved) {
		return []model.Bookmark{}, nil
	}
	if e.Status == query.StatusError {
		return nil, e.Err
	}
	list, ok := e.Value.([]model.Bookmark)
	if !ok {
		return nil, fmt.Errorf("bookmarks query returned %T", e.Value)
	}
	return list, nil
}

// Login starts a session. On success the session query is refetched.
func (s *Store) Login(ctx context.Context, creds model.Credentials) mutation.Result[model.Session] {
	return mutation.Execute(ctx, s.runner, mutation.Mutation[model.Session]{
		Name: "login",
		Fn: func(ctx context.Context) (model.Session, error) {
			return s.api.Login(ctx, creds)
		},
		OnSuccess: func(model.Session) {
			s.cache.Invalidate(KeyUsers)
		},
		OnFailure: s.failWith(NoticeLoginFailed),
	})
}

// Logout ends the session and drops both cached queries so the next user
// never sees this user's list.
func (s *Store) Logout(ctx context.Context) mutation.Result[string] {
	return mutation.Execute(ctx, s.runner, mutation.Mutation[string]{
		Name: "logout",
		Fn:   s.api.Logout,
		OnSuccess: func(string) {
			s.cache.Remove(KeyUsers)
			s.cache.Remove(KeyBookmarks)
		},
		OnFailure: s.failWith(NoticeLogoutFailed),
	})
}

// AddBookmark creates a bookmark.
func (s *Store) AddBookmark(ctx context.Context, fields model.BookmarkFields) mutation.Result[model.Bookmark] {
	return mutation.Execute(ctx, s.runner, mutation.Mutation[model.Bookmark]{
		Name: "createBookmark",
		Fn: func(ctx context.Context) (model.Bookmark, error) {
			return s.api.CreateBookmark(ctx, fields)
		},
		OnSuccess: func(model.Bookmark) { s.bookmarksChanged(NoticeBookmarkAdded) },
		OnFailure: s.failWith(NoticeAddFailed),
	})
}

// UpdateBookmark replaces the fields of bookmark id.
func (s *Store) UpdateBookmark(ctx context.Context, id int64, fields model.BookmarkFields) mutation.Result[model.Bookmark] {
	return mutation.Execute(ctx, s.runner, mutation.Mutation[model.Bookmark]{
		Name: "updateBookmark",
		Fn: func(ctx context.Context) (model.Bookmark, error) {
			return s.api.UpdateBookmark(ctx, id, fields)
		},
		OnSuccess: func(model.Bookmark) { s.bookmarksChanged(NoticeBookmarkUpdated) },
		OnFailure: s.failWith(NoticeUpdateFailed),
	})
}

// DeleteBookmark deletes bookmark id.
func (s *Store) DeleteBookmark(ctx context.Context, id int64) mutation.Result[bool] {
	return mutation.Execute(ctx, s.runner, mutation.Mutation[bool]{
		Name: "deleteBookmark",
		Fn: func(ctx context.Context) (bool, error) {
			return s.api.DeleteBookmark(ctx, id)
		},
		OnSuccess: func(bool) { s.bookmarksChanged(NoticeBookmarkDeleted) },
		OnFailure: s.failWith(NoticeDeleteFailed),
	})
}

func (s *Store) bookmarksChanged(title string) {
	s.cache.Invalidate(KeyBookmarks)
	s.notices.Success(title, "")
}

func (s *Store) failWith(title string) func(error) {
	return func(err error) {
		s.notices.Error(title, err.Error())
	}
}

// Close drops every cached entry.
func (s *Store) Close() {
	s.cache.Clear()
}

type discard struct{}

func (discard) Success(string, string) {}
func (discard) Error(string, string)   {}
