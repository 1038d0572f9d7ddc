package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/remote"
	"github.com/nikbrunner/bmc/internal/tui/layout"
)

// AuthState is what the UI knows about the session.
type AuthState int

const (
	AuthLoading AuthState = iota
	AuthLoggedOut
	AuthLoggedIn
)

func (s AuthState) String() string {
	switch s {
	case AuthLoggedOut:
		return "logged out"
	case AuthLoggedIn:
		return "logged in"
	default:
		return "loading"
	}
}

// DialogState is the dialog currently open. Only one is open at a time.
type DialogState int

const (
	DialogNone DialogState = iota
	DialogAdd
	DialogEdit
	DialogConfirmDelete
)

// Mode is the browse sub-mode while no dialog is open.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeHelp
)

// ViewState drives which screen and dialog are shown.
type ViewState struct {
	Auth        AuthState
	User        string // username while logged in
	Unreachable bool   // the session could not be checked

	Dialog DialogState
	EditID *int64         // bookmark targeted by edit/delete; nil when closed
	Seed   *model.TabSeed // prefill for the next add dialog
}

// NewViewState returns the initial state: loading, no dialog.
func NewViewState(seed *model.TabSeed) ViewState {
	return ViewState{Auth: AuthLoading, Seed: seed}
}

// ApplySession maps a session read onto the auth state. A logged-out
// session closes any dialog but keeps the seed for after login.
func (v *ViewState) ApplySession(st remote.SessionState) {
	switch {
	case st.Err != nil:
		v.Auth = AuthLoggedOut
		v.User = ""
		v.Unreachable = true
	case st.Session == nil:
		v.Auth = AuthLoggedOut
		v.User = ""
		v.Unreachable = false
	default:
		v.Auth = AuthLoggedIn
		v.User = st.Session.Username
		v.Unreachable = false
		return
	}
	v.Dialog = DialogNone
	v.EditID = nil
}

// LoggedOut is applied after a successful logout.
func (v *ViewState) LoggedOut() {
	v.Auth = AuthLoggedOut
	v.User = ""
	v.Unreachable = false
	v.Dialog = DialogNone
	v.EditID = nil
}

// OpenAdd opens the add dialog and returns the form defaults.
func (v *ViewState) OpenAdd() model.BookmarkFields {
	v.Dialog = DialogAdd
	v.EditID = nil
	if v.Seed == nil {
		return model.BookmarkFields{}
	}
	return v.Seed.Fields()
}

// OpenEdit opens the edit dialog for bookmark id.
func (v *ViewState) OpenEdit(id int64) {
	v.Dialog = DialogEdit
	v.EditID = &id
}

// OpenConfirmDelete asks before deleting bookmark id.
func (v *ViewState) OpenConfirmDelete(id int64) {
	v.Dialog = DialogConfirmDelete
	v.EditID = &id
}

// CloseDialog closes any dialog. The edit id and the seed are cleared.
func (v *ViewState) CloseDialog() {
	v.Dialog = DialogNone
	v.EditID = nil
	v.Seed = nil
}

// SubmitSucceeded closes the dialog after its mutation succeeded.
func (v *ViewState) SubmitSucceeded() {
	v.CloseDialog()
}

// EditTarget returns the bookmark the dialog targets, or nil when the id
// is not in list.
func (v ViewState) EditTarget(list []model.Bookmark) *model.Bookmark {
	if v.EditID == nil {
		return nil
	}
	return model.FindBookmark(list, *v.EditID)
}

const (
	fieldURL = iota
	fieldTitle
	fieldDescription
	fieldCount
)

// FormState holds the inputs of the add and edit dialogs.
type FormState struct {
	URL         textinput.Model
	Title       textinput.Model
	Description textinput.Model
	focus       int
}

// NewFormState creates empty form inputs.
func NewFormState(cfg layout.LayoutConfig) FormState {
	f := FormState{
		URL:         newInput("https://...", cfg.Input.URLCharLimit),
		Title:       newInput("Title", cfg.Input.TitleCharLimit),
		Description: newInput("Description (optional)", cfg.Input.DescriptionCharLimit),
	}
	f.setFocus(fieldURL)
	return f
}

func newInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Cursor.SetMode(cursor.CursorStatic)
	return input
}

// Fill replaces the form values and focuses the first field.
func (f *FormState) Fill(fields model.BookmarkFields) {
	f.URL.SetValue(fields.URL)
	f.Title.SetValue(fields.Title)
	f.Description.SetValue(fields.Description)
	f.setFocus(fieldURL)
}

// Reset empties the form.
func (f *FormState) Reset() {
	f.Fill(model.BookmarkFields{})
}

// Fields returns the current values as sent to the server.
func (f FormState) Fields() model.BookmarkFields {
	return model.BookmarkFields{
		URL:         f.URL.Value(),
		Title:       f.Title.Value(),
		Description: f.Description.Value(),
	}
}

// Focused returns the index of the focused field.
func (f FormState) Focused() int {
	return f.focus
}

// SetWidth sets the width of every input.
func (f *FormState) SetWidth(w int) {
	f.URL.Width = w
	f.Title.Width = w
	f.Description.Width = w
}

// FocusNext moves focus to the next field, wrapping around.
func (f *FormState) FocusNext() {
	f.setFocus((f.focus + 1) % fieldCount)
}

// FocusPrev moves focus to the previous field, wrapping around.
func (f *FormState) FocusPrev() {
	f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

func (f *FormState) setFocus(field int) {
	f.focus = field
	for i, input := range f.inputs() {
		if i == field {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (f *FormState) inputs() []*textinput.Model {
	return []*textinput.Model{&f.URL, &f.Title, &f.Description}
}

// Update forwards msg to the focused input.
func (f *FormState) Update(msg tea.Msg) tea.Cmd {
	input := f.inputs()[f.focus]
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

// LoginState holds the login form.
type LoginState struct {
	Username textinput.Model
	Password textinput.Model
	focus    int
}

// NewLoginState creates an empty login form focused on the username.
func NewLoginState(cfg layout.LayoutConfig) LoginState {
	l := LoginState{
		Username: newInput("username", cfg.Input.UsernameCharLimit),
		Password: newInput("password", cfg.Input.PasswordCharLimit),
	}
	l.Password.EchoMode = textinput.EchoPassword
	l.Password.EchoCharacter = '•'
	l.setFocus(0)
	return l
}

// Credentials returns what was typed.
func (l LoginState) Credentials() model.Credentials {
	return model.Credentials{
		Username: l.Username.Value(),
		Password: l.Password.Value(),
	}
}

// OnPassword reports whether the password field has focus.
func (l LoginState) OnPassword() bool {
	return l.focus == 1
}

// ToggleFocus switches between username and password.
func (l *LoginState) ToggleFocus() {
	l.setFocus(1 - l.focus)
}

// ClearPassword empties the password and focuses it.
func (l *LoginState) ClearPassword() {
	l.Password.Reset()
	l.setFocus(1)
}

// Reset empties both fields.
func (l *LoginState) Reset() {
	l.Username.Reset()
	l.Password.Reset()
	l.setFocus(0)
}

// SetWidth sets the width of both inputs.
func (l *LoginState) SetWidth(w int) {
	l.Username.Width = w
	l.Password.Width = w
}

func (l *LoginState) setFocus(field int) {
	l.focus = field
	if field == 0 {
		l.Username.Focus()
		l.Password.Blur()
		return
	}
	l.Password.Focus()
	l.Username.Blur()
}

// Update forwards msg to the focused input.
func (l *LoginState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if l.focus == 0 {
		l.Username, cmd = l.Username.Update(msg)
	} else {
		l.Password, cmd = l.Password.Update(msg)
	}
	return cmd
}
