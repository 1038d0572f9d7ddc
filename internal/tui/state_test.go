package tui_test

import (
	"errors"
	"testing"

	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/remote"
	"github.com/nikbrunner/bmc/internal/tui"
	"github.com/nikbrunner/bmc/internal/tui/layout"
	"gotest.tools/v3/assert"
)

func TestViewState_ApplySession(t *testing.T) {
	tests := []struct {
		name            string
		session         remote.SessionState
		wantAuth        tui.AuthState
		wantUser        string
		wantUnreachable bool
	}{
		{
			name:     "session present",
			session:  remote.SessionState{Session: &model.Session{Username: "u"}},
			wantAuth: tui.AuthLoggedIn,
			wantUser: "u",
		},
		{
			name:     "auth absent",
			session:  remote.SessionState{},
			wantAuth: tui.AuthLoggedOut,
		},
		{
			name:            "server unreachable",
			session:         remote.SessionState{Err: errors.New("connection refused")},
			wantAuth:        tui.AuthLoggedOut,
			wantUnreachable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tui.NewViewState(nil)
			assert.Equal(t, v.Auth, tui.AuthLoading)

			v.ApplySession(tt.session)

			assert.Equal(t, v.Auth, tt.wantAuth)
			assert.Equal(t, v.User, tt.wantUser)
			assert.Equal(t, v.Unreachable, tt.wantUnreachable)
		})
	}
}

func TestViewState_LoggedOutSessionClosesDialogKeepsSeed(t *testing.T) {
	seed := &model.TabSeed{URL: "https://a.com"}
	v := tui.NewViewState(seed)
	v.ApplySession(remote.SessionState{Session: &model.Session{Username: "u"}})
	v.OpenEdit(3)

	v.ApplySession(remote.SessionState{})

	assert.Equal(t, v.Dialog, tui.DialogNone)
	assert.Assert(t, v.EditID == nil)
	assert.Equal(t, v.Seed, seed)
}

func TestViewState_OpenAddPrefillsFromSeed(t *testing.T) {
	seed := &model.TabSeed{Title: "A", URL: "https://a.com", Description: "first"}
	v := tui.NewViewState(seed)

	fields := v.OpenAdd()

	assert.Equal(t, v.Dialog, tui.DialogAdd)
	assert.DeepEqual(t, fields, model.BookmarkFields{URL: "https://a.com", Title: "A", Description: "first"})
}

func TestViewState_OpenAddWithoutSeed(t *testing.T) {
	v := tui.NewViewState(nil)

	assert.DeepEqual(t, v.OpenAdd(), model.BookmarkFields{})
}

func TestViewState_CloseDialogClearsEditIDAndSeed(t *testing.T) {
	v := tui.NewViewState(&model.TabSeed{URL: "https://a.com"})
	v.OpenEdit(7)
	assert.Equal(t, *v.EditID, int64(7))

	v.CloseDialog()

	assert.Equal(t, v.Dialog, tui.DialogNone)
	assert.Assert(t, v.EditID == nil)
	assert.Assert(t, v.Seed == nil)
}

func TestViewState_SubmitSucceeded(t *testing.T) {
	v := tui.NewViewState(&model.TabSeed{URL: "https://a.com"})
	v.OpenAdd()

	v.SubmitSucceeded()

	assert.Equal(t, v.Dialog, tui.DialogNone)
	assert.Assert(t, v.Seed == nil)
}

func TestViewState_EditTarget(t *testing.T) {
	list := []model.Bookmark{{ID: 1, Title: "One"}, {ID: 2, Title: "Two"}}
	v := tui.NewViewState(nil)

	assert.Assert(t, v.EditTarget(list) == nil, "no dialog, no target")

	v.OpenEdit(2)
	target := v.EditTarget(list)
	assert.Assert(t, target != nil)
	assert.Equal(t, target.Title, "Two")

	v.OpenEdit(99)
	assert.Assert(t, v.EditTarget(list) == nil, "absent id renders an empty form")
}

func TestViewState_OnlyOneDialog(t *testing.T) {
	v := tui.NewViewState(nil)
	v.OpenConfirmDelete(4)
	v.OpenAdd()

	assert.Equal(t, v.Dialog, tui.DialogAdd)
	assert.Assert(t, v.EditID == nil)
}

func TestFormState_FocusAndFields(t *testing.T) {
	f := tui.NewFormState(layout.DefaultConfig())
	assert.Equal(t, f.Focused(), 0)

	f.Fill(model.BookmarkFields{URL: "https://a.com", Title: "A"})
	assert.DeepEqual(t, f.Fields(), model.BookmarkFields{URL: "https://a.com", Title: "A"})

	f.FocusNext()
	f.FocusNext()
	assert.Equal(t, f.Focused(), 2)
	f.FocusNext()
	assert.Equal(t, f.Focused(), 0, "focus wraps")
	f.FocusPrev()
	assert.Equal(t, f.Focused(), 2)

	f.Reset()
	assert.DeepEqual(t, f.Fields(), model.BookmarkFields{})
	assert.Equal(t, f.Focused(), 0)
}

func TestAuthState_String(t *testing.T) {
	assert.Equal(t, tui.AuthLoading.String(), "loading")
	assert.Equal(t, tui.AuthLoggedOut.String(), "logged out")
	assert.Equal(t, tui.AuthLoggedIn.String(), "logged in")
}
