package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/nikbrunner/bmc/internal/api"
	"github.com/nikbrunner/bmc/internal/apitest"
	"github.com/nikbrunner/bmc/internal/model"
	"gotest.tools/v3/assert"
)

func newClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	assert.NilError(t, err)
	return api.NewClient(api.ClientParams{
		BaseURL:    srv.URL + "/",
		HTTPClient: &http.Client{Jar: jar},
	})
}

func TestClient_LoginWhoamiLogout(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("u", "p")
	client := newClient(t, srv)
	ctx := context.Background()

	_, err := client.Whoami(ctx)
	assert.Assert(t, errors.Is(err, api.ErrAuthAbsent), "whoami before login: %v", err)

	session, err := client.Login(ctx, model.Credentials{Username: "u", Password: "p"})
	assert.NilError(t, err)
	assert.Equal(t, session.Username, "u")

	// The session cookie rides along on the next request.
	session, err = client.Whoami(ctx)
	assert.NilError(t, err)
	assert.Equal(t, session.Username, "u")

	text, err := client.Logout(ctx)
	assert.NilError(t, err)
	assert.Equal(t, text, "OK")

	_, err = client.Whoami(ctx)
	assert.Assert(t, errors.Is(err, api.ErrAuthAbsent))
}

func TestClient_LoginUnauthorized(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("u", "p")
	client := newClient(t, srv)

	_, err := client.Login(context.Background(), model.Credentials{Username: "u", Password: "wrong"})

	var reqErr *api.RequestFailedError
	assert.Assert(t, errors.As(err, &reqErr))
	assert.Equal(t, reqErr.StatusCode, http.StatusUnauthorized)
	assert.Equal(t, err.Error(), "Unauthorized")
	assert.Assert(t, errors.Is(err, api.ErrRequestFailed))
	assert.Assert(t, !errors.Is(err, api.ErrAuthAbsent), "only whoami signals auth absence")
}

func TestClient_BookmarkCRUD(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.AddUser("u", "p")
	client := newClient(t, srv)
	ctx := context.Background()

	_, err := client.Login(ctx, model.Credentials{Username: "u", Password: "p"})
	assert.NilError(t, err)

	created, err := client.CreateBookmark(ctx, model.BookmarkFields{URL: "https://a.com", Title: "A"})
	assert.NilError(t, err)
	assert.Assert(t, created.ID != 0)
	assert.Equal(t, created.Title, "A")
	assert.Assert(t, !created.CreatedAt.IsZero())

	updated, err := client.UpdateBookmark(ctx, created.ID, model.BookmarkFields{
		URL:         "https://a.com",
		Title:       "A!",
		Description: "first",
	})
	assert.NilError(t, err)
	assert.Equal(t, updated.Title, "A!")
	assert.Equal(t, updated.Description, "first")

	list, err := client.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Equal(t, len(list), 1)
	assert.Equal(t, list[0].Title, "A!")

	ok, err := client.DeleteBookmark(ctx, created.ID)
	assert.NilError(t, err)
	assert.Assert(t, ok)

	list, err = client.ListBookmarks(ctx)
	assert.NilError(t, err)
	assert.Assert(t, model.FindBookmark(list, created.ID) == nil)
	assert.Assert(t, list != nil, "empty list decodes as empty slice")
}

func TestClient_ListBookmarksNullIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)
	client := api.NewClient(api.ClientParams{BaseURL: srv.URL})

	list, err := client.ListBookmarks(context.Background())

	assert.NilError(t, err)
	assert.Assert(t, list != nil)
	assert.Equal(t, len(list), 0)
}

func TestClient_NonSuccessCarriesStatusText(t *testing.T) {
	tests := []struct {
		name   string
		route  string
		status int
		call   func(*api.Client) error
		want   string
	}{
		{
			name:   "create 500",
			route:  "POST /bookmarks/new",
			status: http.StatusInternalServerError,
			call: func(c *api.Client) error {
				_, err := c.CreateBookmark(context.Background(), model.BookmarkFields{URL: "https://a.com"})
				return err
			},
			want: "Internal Server Error",
		},
		{
			name:   "update 404",
			route:  "PUT /bookmarks/{id}",
			status: http.StatusNotFound,
			call: func(c *api.Client) error {
				_, err := c.UpdateBookmark(context.Background(), 42, model.BookmarkFields{})
				return err
			},
			want: "Not Found",
		},
		{
			name:   "delete 403",
			route:  "DELETE /bookmarks/{id}",
			status: http.StatusForbidden,
			call: func(c *api.Client) error {
				_, err := c.DeleteBookmark(context.Background(), 1)
				return err
			},
			want: "Forbidden",
		},
		{
			name:   "list 502",
			route:  "GET /bookmarks",
			status: http.StatusBadGateway,
			call: func(c *api.Client) error {
				_, err := c.ListBookmarks(context.Background())
				return err
			},
			want: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			srv.Fail(tt.route, tt.status)
			client := newClient(t, srv)

			err := tt.call(client)

			assert.Assert(t, errors.Is(err, api.ErrRequestFailed))
			assert.Equal(t, err.Error(), tt.want)
			assert.Equal(t, srv.Calls(tt.route), 1)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := apitest.NewServer(t)
	client := newClient(t, srv)
	srv.Close()

	_, err := client.Whoami(context.Background())

	var reqErr *api.RequestFailedError
	assert.Assert(t, errors.As(err, &reqErr))
	assert.Equal(t, reqErr.StatusCode, 0)
	assert.Assert(t, reqErr.Err != nil)
	assert.Assert(t, !errors.Is(err, api.ErrAuthAbsent), "a transport failure is not auth absence")
}
