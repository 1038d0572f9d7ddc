package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmc/internal/browser"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/mutation"
	"github.com/nikbrunner/bmc/internal/notify"
	"github.com/nikbrunner/bmc/internal/remote"
	"github.com/nikbrunner/bmc/internal/search"
	"github.com/nikbrunner/bmc/internal/tui/layout"
)

const defaultNoticeRefresh = 500 * time.Millisecond

// Messages produced by commands. Network calls never run inside Update.
type sessionLoadedMsg struct {
	state remote.SessionState
}

type bookmarksLoadedMsg struct {
	list []model.Bookmark
	err  error
}

type loginDoneMsg struct {
	result mutation.Result[model.Session]
}

type logoutDoneMsg struct {
	result mutation.Result[string]
}

type savedMsg struct {
	result mutation.Result[model.Bookmark]
}

type deletedMsg struct {
	result mutation.Result[bool]
}

type noticeTickMsg time.Time

// App is the main bubbletea model for the bookmark client.
type App struct {
	ctx          context.Context
	store        *remote.Store
	notices      *notify.Center
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	log          logger.Logger

	openURL       func(string) error
	copyText      func(string) error
	noticeRefresh time.Duration

	state ViewState
	mode  Mode
	form  FormState
	login LoginState

	filterInput textinput.Model
	filterQuery string

	bookmarks []model.Bookmark
	listErr   error
	loading   bool
	pending   bool // a mutation is in flight
	cursor    int

	// For gg command
	lastKeyWasG bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Store        *remote.Store
	Notices      *notify.Center          // optional, a private center is created if nil
	Seed         *model.TabSeed          // optional prefill for the first add dialog
	Context      context.Context         // optional, used for every API call
	Keys         *KeyMap                 // optional, uses default if nil
	Styles       *Styles                 // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig    // optional, uses default if nil
	Logger       logger.Logger           // optional
	OpenURL      func(url string) error  // optional, defaults to the OS handler
	CopyText     func(text string) error // optional, defaults to the system clipboard

	// NoticeRefresh is how often the view redraws so expired notices
	// disappear. Negative disables it.
	NoticeRefresh time.Duration
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	notices := params.Notices
	if notices == nil {
		notices = notify.NewCenter(notify.Params{})
	}
	log := params.Logger
	if log == nil {
		log = logger.NewNop()
	}
	openURL := params.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}
	copyText := params.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	refresh := params.NoticeRefresh
	if refresh == 0 {
		refresh = defaultNoticeRefresh
	}

	filter := newInput("Filter...", layoutCfg.Input.FilterCharLimit)
	filter.Prompt = "/"

	return App{
		ctx:           ctx,
		store:         params.Store,
		notices:       notices,
		keys:          keys,
		styles:        styles,
		layoutConfig:  layoutCfg,
		log:           log.With(logger.String("component", "tui")),
		openURL:       openURL,
		copyText:      copyText,
		noticeRefresh: refresh,
		state:         NewViewState(params.Seed),
		form:          NewFormState(layoutCfg),
		login:         NewLoginState(layoutCfg),
		filterInput:   filter,
		width:         80,
		height:        24,
	}
}

// WithDimensions returns a copy of the app with the given size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// State returns the view state.
func (a App) State() ViewState {
	return a.state
}

// Mode returns the current browse mode.
func (a App) Mode() Mode {
	return a.mode
}

// Form returns the add/edit form.
func (a App) Form() FormState {
	return a.form
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Pending reports whether a mutation is in flight.
func (a App) Pending() bool {
	return a.pending
}

// Bookmarks returns the list as displayed, after the filter.
func (a App) Bookmarks() []model.Bookmark {
	return search.Filter(a.bookmarks, a.activeFilter())
}

func (a App) activeFilter() string {
	if a.mode == ModeFilter {
		return a.filterInput.Value()
	}
	return a.filterQuery
}

func (a App) selected() *model.Bookmark {
	list := a.Bookmarks()
	if a.cursor < 0 || a.cursor >= len(list) {
		return nil
	}
	return &list[a.cursor]
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.loadSession(), a.tickNotices())
}

func (a App) loadSession() tea.Cmd {
	store, ctx := a.store, a.ctx
	return func() tea.Msg {
		return sessionLoadedMsg{state: store.Session(ctx)}
	}
}

func (a App) loadBookmarks(refresh bool) tea.Cmd {
	store, ctx := a.store, a.ctx
	return func() tea.Msg {
		var (
			list []model.Bookmark
			err  error
		)
		if refresh {
			list, err = store.RefreshBookmarks(ctx)
		} else {
			list, err = store.Bookmarks(ctx)
		}
		return bookmarksLoadedMsg{list: list, err: err}
	}
}

func (a App) tickNotices() tea.Cmd {
	if a.noticeRefresh < 0 {
		return nil
	}
	return tea.Tick(a.noticeRefresh, func(t time.Time) tea.Msg {
		return noticeTickMsg(t)
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case noticeTickMsg:
		return a, a.tickNotices()

	case sessionLoadedMsg:
		return a.handleSession(msg.state)

	case bookmarksLoadedMsg:
		a.loading = false
		a.listErr = msg.err
		if msg.err == nil {
			a.bookmarks = msg.list
		}
		a.clampCursor()
		return a, nil

	case loginDoneMsg:
		a.pending = false
		if !msg.result.IsOk() {
			a.login.ClearPassword()
			return a, nil
		}
		a.login.Reset()
		// The session query was invalidated by the mutation; read it again.
		return a, a.loadSession()

	case logoutDoneMsg:
		a.pending = false
		if msg.result.IsOk() {
			a.state.LoggedOut()
			a.bookmarks = nil
			a.listErr = nil
			a.cursor = 0
			a.mode = ModeNormal
			a.filterQuery = ""
		}
		return a, nil

	case savedMsg:
		a.pending = false
		if !msg.result.IsOk() {
			// The dialog stays open with its input so the user can retry.
			return a, nil
		}
		a.state.SubmitSucceeded()
		a.form.Reset()
		return a, a.loadBookmarks(false)

	case deletedMsg:
		a.pending = false
		if !msg.result.IsOk() {
			return a, nil
		}
		a.state.CloseDialog()
		return a, a.loadBookmarks(false)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		switch a.state.Auth {
		case AuthLoading:
			return a, nil
		case AuthLoggedOut:
			return a.updateLogin(msg)
		}
		if a.state.Dialog != DialogNone {
			return a.updateDialog(msg)
		}
		switch a.mode {
		case ModeHelp:
			return a.updateHelp(msg)
		case ModeFilter:
			return a.updateFilter(msg)
		}
		return a.updateNormal(msg)
	}

	return a, nil
}

func (a App) handleSession(st remote.SessionState) (tea.Model, tea.Cmd) {
	a.state.ApplySession(st)
	if a.state.Auth != AuthLoggedIn {
		a.log.Debug("session absent", logger.Bool("unreachable", a.state.Unreachable))
		return a, nil
	}

	a.loading = true
	if a.state.Seed != nil && a.state.Dialog == DialogNone {
		a.openAdd()
	}
	return a, a.loadBookmarks(false)
}

func (a App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.pending {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.NextField), key.Matches(msg, a.keys.PrevField):
		a.login.ToggleFocus()
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		if !a.login.OnPassword() {
			a.login.ToggleFocus()
			return a, nil
		}
		a.pending = true
		store, ctx, creds := a.store, a.ctx, a.login.Credentials()
		return a, func() tea.Msg {
			return loginDoneMsg{result: store.Login(ctx, creds)}
		}
	}

	return a, a.login.Update(msg)
}

func (a App) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.pending {
		return a, nil
	}

	if a.state.Dialog == DialogConfirmDelete {
		switch {
		case key.Matches(msg, a.keys.Confirm):
			if a.state.EditID == nil {
				a.state.CloseDialog()
				return a, nil
			}
			a.pending = true
			store, ctx, id := a.store, a.ctx, *a.state.EditID
			return a, func() tea.Msg {
				return deletedMsg{result: store.DeleteBookmark(ctx, id)}
			}
		case key.Matches(msg, a.keys.Deny):
			a.state.CloseDialog()
		}
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.state.CloseDialog()
		a.form.Reset()
		return a, nil

	case key.Matches(msg, a.keys.NextField):
		a.form.FocusNext()
		return a, nil

	case key.Matches(msg, a.keys.PrevField):
		a.form.FocusPrev()
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		return a.submitForm()
	}

	return a, a.form.Update(msg)
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	store, ctx, fields := a.store, a.ctx, a.form.Fields()

	switch a.state.Dialog {
	case DialogAdd:
		a.pending = true
		return a, func() tea.Msg {
			return savedMsg{result: store.AddBookmark(ctx, fields)}
		}

	case DialogEdit:
		if a.state.EditID == nil {
			return a, nil
		}
		a.pending = true
		id := *a.state.EditID
		return a, func() tea.Msg {
			return savedMsg{result: store.UpdateBookmark(ctx, id, fields)}
		}
	}
	return a, nil
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Help) || key.Matches(msg, a.keys.Cancel) || key.Matches(msg, a.keys.Quit) {
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeNormal
		a.filterQuery = ""
		a.filterInput.Reset()
		a.filterInput.Blur()
		a.cursor = 0
		return a, nil

	case key.Matches(msg, a.keys.Submit):
		a.mode = ModeNormal
		a.filterQuery = a.filterInput.Value()
		a.filterInput.Blur()
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.cursor = 0
	return a, cmd
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}

	// Reset g flag for any other key
	a.lastKeyWasG = false

	list := a.Bookmarks()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Cancel):
		// Esc clears an applied filter.
		if a.filterQuery != "" {
			a.filterQuery = ""
			a.filterInput.Reset()
			a.clampCursor()
		}

	case key.Matches(msg, a.keys.Down):
		if len(list) > 0 && a.cursor < len(list)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(list) > 0 {
			a.cursor = len(list) - 1
		}

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filterInput.SetValue(a.filterQuery)
		a.filterInput.Focus()

	case key.Matches(msg, a.keys.Refresh):
		a.loading = true
		return a, a.loadBookmarks(true)

	case key.Matches(msg, a.keys.Add):
		a.openAdd()

	case key.Matches(msg, a.keys.Edit):
		if b := a.selected(); b != nil {
			a.state.OpenEdit(b.ID)
			a.form.Reset()
			if target := a.state.EditTarget(a.bookmarks); target != nil {
				a.form.Fill(target.Fields())
			}
		}

	case key.Matches(msg, a.keys.Delete):
		if b := a.selected(); b != nil {
			a.state.OpenConfirmDelete(b.ID)
		}

	case key.Matches(msg, a.keys.Open):
		if b := a.selected(); b != nil {
			if err := a.openURL(b.URL); err != nil {
				a.log.Warn("open url failed", logger.String("url", b.URL), logger.Error(err))
				a.notices.Error("Failed to open URL", err.Error())
			}
		}

	case key.Matches(msg, a.keys.YankURL):
		if b := a.selected(); b != nil {
			if err := a.copyText(b.URL); err != nil {
				a.notices.Error("Failed to copy URL", err.Error())
			} else {
				a.notices.Success("Copied URL", b.URL)
			}
		}

	case key.Matches(msg, a.keys.Logout):
		if a.pending {
			return a, nil
		}
		a.pending = true
		store, ctx := a.store, a.ctx
		return a, func() tea.Msg {
			return logoutDoneMsg{result: store.Logout(ctx)}
		}
	}

	return a, nil
}

func (a *App) openAdd() {
	a.form.Fill(a.state.OpenAdd())
}

func (a *App) clampCursor() {
	n := len(a.Bookmarks())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
