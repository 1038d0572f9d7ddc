package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for bottom bar: "j/k:move a:add e:edit"
func (a App) renderHints(hints HintSet) string {
	allHints := hints.All()
	if len(allHints) == 0 {
		return ""
	}

	parts := make([]string, len(allHints))
	for i, h := range allHints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// renderHintsInline renders hints in inline format for modals: "Enter confirm  Esc cancel"
func (a App) renderHintsInline(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.styles.HintKey.Render(h.Key) + " " + a.styles.HintDesc.Render(h.Desc)
	}
	return strings.Join(parts, "  ")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, gg, etc.)
	Edit   []Hint // Edit hints (a, e, d)
	Action []Hint // Action hints (Enter, y, /)
	System []Hint // System hints (?, q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// getContextualHints returns the appropriate hints for the current screen.
func (a App) getContextualHints() HintSet {
	switch a.state.Auth {
	case AuthLoading:
		return HintSet{System: []Hint{{Key: "ctrl+c", Desc: "quit"}}}
	case AuthLoggedOut:
		return a.getLoginHints()
	}

	switch a.state.Dialog {
	case DialogAdd, DialogEdit:
		return a.getFormHints()
	case DialogConfirmDelete:
		return a.getConfirmDeleteHints()
	}

	switch a.mode {
	case ModeFilter:
		return a.getFilterModeHints()
	case ModeHelp:
		// Help overlay covers screen, minimal hints
		return HintSet{
			System: []Hint{{Key: "?/q/Esc", Desc: "close"}},
		}
	default:
		return a.getNormalModeHints()
	}
}

// getNormalModeHints returns hints for the main list.
func (a App) getNormalModeHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
		},
		Action: []Hint{
			{Key: "o", Desc: "open"},
			{Key: "y", Desc: "yank"},
			{Key: "/", Desc: "filter"},
			{Key: "r", Desc: "refresh"},
		},
		Edit: []Hint{
			{Key: "a", Desc: "add"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "del"},
		},
		System: []Hint{
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		},
	}
	if a.filterQuery != "" {
		hints.System = append([]Hint{{Key: "Esc", Desc: "clear filter"}}, hints.System...)
	}
	return hints
}

// getFilterModeHints returns hints while typing a filter.
func (a App) getFilterModeHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "filter"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "apply"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getFormHints returns hints for the add and edit dialogs.
func (a App) getFormHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "next field"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "save"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "cancel"},
		},
	}
}

// getConfirmDeleteHints returns hints for the delete confirmation.
func (a App) getConfirmDeleteHints() HintSet {
	return HintSet{
		Action: []Hint{
			{Key: "Enter/y", Desc: "confirm"},
		},
		System: []Hint{
			{Key: "Esc/n", Desc: "cancel"},
		},
	}
}

// getLoginHints returns hints for the login form.
func (a App) getLoginHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "Tab", Desc: "switch field"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "log in"},
		},
		System: []Hint{
			{Key: "ctrl+c", Desc: "quit"},
		},
	}
}
