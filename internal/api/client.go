package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
)

var (
	ErrRequestFailed = errors.New("request failed")
	// ErrAuthAbsent marks a non-2xx whoami: no valid session, not a fault.
	ErrAuthAbsent = errors.New("not logged in")
)

// RequestFailedError is returned for any non-2xx response or transport failure.
type RequestFailedError struct {
	Op         string // "whoami", "login", "listBookmarks", ...
	StatusCode int    // 0 if no response arrived
	StatusText string
	Err        error // transport error, if any
}

// Error returns the status text, matching what a user should see.
func (e *RequestFailedError) Error() string {
	if e.StatusText != "" {
		return e.StatusText
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrRequestFailed.Error()
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

func (e *RequestFailedError) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	return target == ErrAuthAbsent && e.Op == opWhoami && !isSuccess(e.StatusCode) && e.StatusCode != 0
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}

const (
	opWhoami         = "whoami"
	opLogin          = "login"
	opLogout         = "logout"
	opListBookmarks  = "listBookmarks"
	opCreateBookmark = "createBookmark"
	opUpdateBookmark = "updateBookmark"
	opDeleteBookmark = "deleteBookmark"
)

// Client talks to the bookmark API. Session cookies travel through the
// http.Client's cookie jar on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// ClientParams holds parameters for creating a new Client.
type ClientParams struct {
	BaseURL    string
	HTTPClient *http.Client  // should carry a cookie jar
	Logger     logger.Logger // optional
}

// NewClient creates a new API client.
func NewClient(params ClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		httpClient: httpClient,
		log:        log.With(logger.String("component", "api")),
	}
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Whoami returns the current session.
// A non-2xx response matches both ErrRequestFailed and ErrAuthAbsent.
func (c *Client) Whoami(ctx context.Context) (model.Session, error) {
	var session model.Session
	err := c.do(ctx, opWhoami, http.MethodGet, "/auth/whoami", nil, &session)
	return session, err
}

// Login starts a session; the server sets the session cookie.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.Session, error) {
	var session model.Session
	err := c.do(ctx, opLogin, http.MethodPost, "/auth/login", creds, &session)
	return session, err
}

// Logout ends the session and returns the server's text response.
func (c *Client) Logout(ctx context.Context) (string, error) {
	var text string
	err := c.do(ctx, opLogout, http.MethodPost, "/auth/logout", nil, &text)
	return text, err
}

// ListBookmarks returns every bookmark of the current user.
func (c *Client) ListBookmarks(ctx context.Context) ([]model.Bookmark, error) {
	bookmarks := []model.Bookmark{}
	if err := c.do(ctx, opListBookmarks, http.MethodGet, "/bookmarks", nil, &bookmarks); err != nil {
		return nil, err
	}
	if bookmarks == nil {
		// A server answering null still means an empty list.
		bookmarks = []model.Bookmark{}
	}
	return bookmarks, nil
}

// CreateBookmark creates a bookmark and returns it with server-assigned fields.
func (c *Client) CreateBookmark(ctx context.Context, fields model.BookmarkFields) (model.Bookmark, error) {
	var created model.Bookmark
	err := c.do(ctx, opCreateBookmark, http.MethodPost, "/bookmarks/new", fields, &created)
	return created, err
}

// UpdateBookmark replaces the editable fields of bookmark id.
func (c *Client) UpdateBookmark(ctx context.Context, id int64, fields model.BookmarkFields) (model.Bookmark, error) {
	var updated model.Bookmark
	err := c.do(ctx, opUpdateBookmark, http.MethodPut, bookmarkPath(id), fields, &updated)
	return updated, err
}

// DeleteBookmark deletes bookmark id. It returns true on success.
func (c *Client) DeleteBookmark(ctx context.Context, id int64) (bool, error) {
	if err := c.do(ctx, opDeleteBookmark, http.MethodDelete, bookmarkPath(id), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

func bookmarkPath(id int64) string {
	return "/bookmarks/" + strconv.FormatInt(id, 10)
}

// do issues one request. body, if non-nil, is sent as JSON. out receives the
// decoded 2xx response: *string gets the raw text, nil discards it, anything
// else is JSON-decoded.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}

	requestID := uuid.NewString()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With(
		logger.String("op", op),
		logger.String("method", method),
		logger.String("path", path),
		logger.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", logger.Error(err))
		return &RequestFailedError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debug("response",
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if !isSuccess(resp.StatusCode) {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		if op != opWhoami {
			log.Warn("non-2xx response", logger.Int("status", resp.StatusCode))
		}
		return &RequestFailedError{
			Op:         op,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	switch dst := out.(type) {
	case nil:
		return nil
	case *string:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &RequestFailedError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
		}
		*dst = string(data)
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return &RequestFailedError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}
}

// statusText returns the reason phrase of the response, e.g. "Unauthorized".
func statusText(resp *http.Response) string {
	// resp.Status is "401 Unauthorized"; keep the server's phrase if present.
	if _, phrase, ok := strings.Cut(resp.Status, " "); ok && phrase != "" {
		return phrase
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "HTTP " + strconv.Itoa(resp.StatusCode)
}
