package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/search"
	"github.com/nikbrunner/bmc/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Action is what the user chose to do with the selection.
type Action int

const (
	ActionNone Action = iota
	ActionOpen
	ActionYank
)

// Picker is a small TUI for choosing one of the search results.
type Picker struct {
	results []search.SearchResult
	query   string
	cursor  int
	action  Action
	width   int
	height  int
	layout  layout.LayoutConfig
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
		layout:  layout.DefaultConfig(),
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.action = ActionNone
			return p, tea.Quit
		case "enter", "o":
			if len(p.results) > 0 {
				p.action = ActionOpen
			}
			return p, tea.Quit
		case "y":
			if len(p.results) > 0 {
				p.action = ActionYank
			}
			return p, tea.Quit
		case "down", "j", "ctrl+n":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case "up", "k", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
		case "g", "home":
			p.cursor = 0
		case "G", "end":
			if len(p.results) > 0 {
				p.cursor = len(p.results) - 1
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("Search: %s (%d results)", p.query, len(p.results))))
	b.WriteString("\n\n")

	maxVisible := p.layout.Modal.PickerMaxVisible
	if rows := (p.height - 5) / 2; rows > 0 && rows < maxVisible {
		maxVisible = rows
	}
	start, end := layout.CalculateVisibleListItems(maxVisible, p.cursor, len(p.results))
	width := p.width - 4

	for i := start; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		label := search.Label(result.Bookmark)
		title := layout.HighlightRunes(label, result.MatchedIndexes, func(s string) string {
			return matchStyle.Render(s)
		})
		title = layout.TruncateANSIAware(style.Render(title), width, p.layout.Text)
		url, _ := layout.TruncateText(result.Bookmark.URL, width, p.layout.Text)

		b.WriteString(fmt.Sprintf("%s%s\n", cursor, title))
		b.WriteString(fmt.Sprintf("  %s\n", urlStyle.Render(url)))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("j/k: move  Enter: open  y: copy URL  q/Esc: cancel"))

	return b.String()
}

// SelectedBookmark returns the chosen bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.action == ActionNone {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Action returns what the user chose.
func (p Picker) Action() Action {
	return p.action
}

// Cancelled returns true if the user left without choosing.
func (p Picker) Cancelled() bool {
	return p.action == ActionNone
}
