package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/notify"
	"github.com/nikbrunner/bmc/internal/tui/layout"
)

// helpBarLines is the height reserved below a placed modal.
const helpBarLines = 3

// renderView creates the complete view for the current state.
func (a App) renderView() string {
	switch a.state.Auth {
	case AuthLoading:
		return a.renderLoading()
	case AuthLoggedOut:
		return a.renderLogin()
	}

	if a.state.Dialog != DialogNone {
		return a.renderModal()
	}
	if a.mode == ModeHelp {
		return a.renderHelpOverlay()
	}

	panes := layout.CalculatePanes(a.width, a.height, a.layoutConfig.List)

	columns := a.renderListPane(panes.ListWidth, panes.Height)
	if panes.ShowDetail() {
		columns = lipgloss.JoinHorizontal(
			lipgloss.Top,
			columns,
			a.renderDetailPane(panes.DetailWidth, panes.Height),
		)
	}

	header := a.renderHeader()
	helpBar := a.renderHelpBar(true)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, header, columns, helpBar),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the app name, user and bookmark count.
func (a App) renderHeader() string {
	count := len(a.bookmarks)
	noun := "bookmarks"
	if count == 1 {
		noun = "bookmark"
	}

	parts := []string{
		a.styles.Title.Render("bmc"),
		a.state.User,
		fmt.Sprintf("%d %s", count, noun),
	}
	if a.loading {
		parts = append(parts, "loading...")
	}
	return a.styles.Header.Render(strings.Join(parts, "  "))
}

func (a App) renderListPane(width, height int) string {
	var content strings.Builder

	innerWidth := width - 2 // border
	itemWidth := layout.CalculateItemWidth(innerWidth, a.layoutConfig.List)

	headerLines := 0
	if a.mode == ModeFilter {
		content.WriteString(a.filterInput.View() + "\n")
		headerLines = 1
	} else if a.filterQuery != "" {
		content.WriteString(a.styles.Match.Render("/"+a.filterQuery) + "\n")
		headerLines = 1
	}
	visibleRows := layout.CalculateVisibleRows(height, headerLines, a.layoutConfig.List)

	list := a.Bookmarks()
	switch {
	case a.listErr != nil:
		content.WriteString(a.styles.Unreachable.Render("Failed to load bookmarks: " + a.listErr.Error()))
	case len(list) == 0 && a.loading:
		content.WriteString(a.styles.Empty.Render("Loading..."))
	case len(list) == 0 && a.activeFilter() != "":
		content.WriteString(a.styles.Empty.Render("(no matches)"))
	case len(list) == 0:
		content.WriteString(a.styles.Empty.Render("(no bookmarks, press a to add one)"))
	default:
		// Calculate viewport offset to keep cursor visible
		offset := layout.CalculateViewportOffset(a.cursor, len(list), visibleRows)

		for i := range list {
			// Skip items before viewport
			if i < offset {
				continue
			}
			// Stop after viewport is filled
			if i >= offset+visibleRows {
				break
			}
			content.WriteString(a.renderItem(list[i], i == a.cursor, itemWidth) + "\n")
		}
	}

	return a.styles.PaneActive.
		Width(innerWidth).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderItem renders a bookmark as a title line and a URL line.
func (a App) renderItem(b model.Bookmark, isCursor bool, maxWidth int) string {
	title := b.Title
	if title == "" {
		title = b.URL
	}
	line, _ := layout.TruncateText(layout.SingleLine(title), maxWidth, a.layoutConfig.Text)
	url, _ := layout.TruncateText(b.URL, maxWidth, a.layoutConfig.Text)

	var first string
	if isCursor {
		// Pad to fill width for selection highlight
		if pad := maxWidth - layout.VisibleLength(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		first = a.styles.ItemSelected.Render(line)
	} else {
		first = a.styles.Item.Render(line)
	}
	return first + "\n " + a.styles.URL.Render(url)
}

func (a App) renderDetailPane(width, height int) string {
	var content strings.Builder

	innerWidth := width - 2
	itemWidth := layout.CalculateItemWidth(innerWidth, a.layoutConfig.List)

	if b := a.selected(); b != nil {
		title := b.Title
		if title == "" {
			title = "(untitled)"
		}
		content.WriteString(a.styles.Title.Width(itemWidth).Render(layout.SingleLine(title)) + "\n\n")

		// URL (potentially truncated)
		url, _ := layout.TruncateText(b.URL, itemWidth, a.layoutConfig.Text)
		content.WriteString(a.styles.URL.Render(url) + "\n\n")

		if b.Description != "" {
			content.WriteString(a.styles.Description.Width(itemWidth).Render(b.Description) + "\n\n")
		}

		// Dates
		content.WriteString(a.styles.Date.Render(
			fmt.Sprintf("Created: %s (%s)", b.CreatedAt.Local().Format("2006-01-02"), formatTimeAgo(b.CreatedAt)),
		) + "\n")
		if !b.UpdatedAt.IsZero() && !b.UpdatedAt.Equal(b.CreatedAt) {
			content.WriteString(a.styles.Date.Render(
				fmt.Sprintf("Updated: %s (%s)", b.UpdatedAt.Local().Format("2006-01-02"), formatTimeAgo(b.UpdatedAt)),
			))
		}
	}

	return a.styles.Pane.
		Width(innerWidth).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderModal renders the open dialog.
func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	inputWidth := layout.CalculateInputWidth(modalWidth, a.layoutConfig.Modal)

	switch a.state.Dialog {
	case DialogAdd, DialogEdit:
		if a.state.Dialog == DialogAdd {
			title.WriteString("Add Bookmark")
		} else {
			title.WriteString("Edit Bookmark")
		}

		form := a.form
		form.SetWidth(inputWidth)
		content.WriteString(a.styles.Label.Render("URL:") + "\n")
		content.WriteString(form.URL.View())
		content.WriteString("\n\n")
		content.WriteString(a.styles.Label.Render("Title:") + "\n")
		content.WriteString(form.Title.View())
		content.WriteString("\n\n")
		content.WriteString(a.styles.Label.Render("Description:") + "\n")
		content.WriteString(form.Description.View())
		content.WriteString("\n\n")

		if a.pending {
			content.WriteString(a.styles.Empty.Render("Saving..."))
		} else {
			content.WriteString(a.renderHintsInline([]Hint{
				{Key: "Enter", Desc: "save"},
				{Key: "Tab", Desc: "next"},
				{Key: "Esc", Desc: "cancel"},
			}))
		}

	case DialogConfirmDelete:
		name := "this bookmark"
		if target := a.state.EditTarget(a.bookmarks); target != nil {
			name = "\"" + layout.SingleLine(target.Title) + "\""
			if target.Title == "" {
				name = target.URL
			}
		}

		title.WriteString("Delete Bookmark?")
		content.WriteString(name + "\n\n")
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		if a.pending {
			content.WriteString(a.styles.Empty.Render("Deleting..."))
		} else {
			content.WriteString(a.renderHintsInline([]Hint{
				{Key: "Enter", Desc: "confirm"},
				{Key: "Esc", Desc: "cancel"},
			}))
		}
	}

	modalContent := a.styles.Title.Render(title.String()) + "\n\n" + content.String()
	return a.placeModal(a.styles.Modal.Width(modalWidth).Render(modalContent))
}

// renderLogin renders the login form shown while logged out.
func (a App) renderLogin() string {
	var content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)
	inputWidth := layout.CalculateInputWidth(modalWidth, a.layoutConfig.Modal)

	content.WriteString(a.styles.Title.Render("Log in") + "\n\n")
	if a.state.Unreachable {
		content.WriteString(a.styles.Unreachable.Render("server unreachable") + "\n\n")
	}

	login := a.login
	login.SetWidth(inputWidth)
	content.WriteString(a.styles.Label.Render("Username:") + "\n")
	content.WriteString(login.Username.View())
	content.WriteString("\n\n")
	content.WriteString(a.styles.Label.Render("Password:") + "\n")
	content.WriteString(login.Password.View())
	content.WriteString("\n\n")

	if a.pending {
		content.WriteString(a.styles.Empty.Render("Logging in..."))
	} else {
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "log in"},
			{Key: "Tab", Desc: "switch"},
		}))
	}

	return a.placeModal(a.styles.Modal.Width(modalWidth).Render(content.String()))
}

func (a App) renderLoading() string {
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Empty.Render("Checking session..."),
	)
}

// placeModal centers box with the active notices stacked on top of it,
// then adds the help bar at the bottom.
func (a App) placeModal(box string) string {
	if notices := a.renderNotices(); notices != "" {
		box = lipgloss.JoinVertical(lipgloss.Center, notices, "", box)
	}

	modal := lipgloss.Place(
		a.width,
		a.height-helpBarLines,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar(false))
}

// renderNotices renders active notices, newest last. Empty when none.
func (a App) renderNotices() string {
	active := a.notices.Active()
	if len(active) == 0 {
		return ""
	}

	lines := make([]string, len(active))
	for i, n := range active {
		lines[i] = a.renderNotice(n)
	}
	return strings.Join(lines, "\n")
}

// renderNotice renders the styled notice with prefix icon based on level.
func (a App) renderNotice(n notify.Notice) string {
	style, prefix := a.styles.NoticeSuccess, "✓ "
	if n.Level == notify.LevelError {
		style, prefix = a.styles.NoticeError, "✗ "
	}

	text := prefix + n.Title
	if n.Description != "" {
		text += ": " + layout.SingleLine(n.Description)
	}
	return style.Render(text)
}

// renderHelpBar renders the notice line and the contextual hints.
func (a App) renderHelpBar(withNotices bool) string {
	var lines []string

	// Line 1: Empty spacer OR notices (notices replace the gap)
	if notices := a.renderNotices(); withNotices && notices != "" {
		lines = append(lines, notices)
	} else {
		lines = append(lines, "") // Empty line provides gap when no notice
	}

	// Line 2: Local (contextual) keyboard hints
	if localHints := a.renderHints(a.getContextualHints()); localHints != "" {
		lines = append(lines, a.styles.HintLabel.Render("Local  ")+localHints)
	}

	return strings.Join(lines, "\n")
}

func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	entry := func(b *strings.Builder, keys, desc string) {
		b.WriteString(lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpKeyColumnWidth).Render(keys))
		b.WriteString(desc + "\n")
	}

	// Left column: Navigation + Actions
	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	entry(&left, "j/k", "move")
	entry(&left, "gg", "top")
	entry(&left, "G", "bottom")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("act") + "\n")
	entry(&left, "enter/o", "open url")
	entry(&left, "y", "yank url")
	entry(&left, "/", "filter")
	entry(&left, "r", "refresh")

	// Right column: Edit + Session
	var right strings.Builder
	right.WriteString(a.styles.Title.Render("edit") + "\n")
	entry(&right, "a", "add bookmark")
	entry(&right, "e", "edit")
	entry(&right, "d", "delete")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("session") + "\n")
	entry(&right, "L", "log out")
	entry(&right, "q", "quit")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close"))

	colWidth := a.layoutConfig.Modal.HelpKeyColumnWidth * 2
	leftCol := lipgloss.NewStyle().Width(colWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(colWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	// Top-left aligned, brutalist style
	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	if d < time.Minute {
		return "just now"
	} else if d < time.Hour {
		m := int(d.Minutes())
		if m == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", m)
	} else if d < 24*time.Hour {
		h := int(d.Hours())
		if h == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", h)
	}
	days := int(d.Hours() / 24)
	if days == 1 {
		return "1d ago"
	}
	return fmt.Sprintf("%dd ago", days)
}
