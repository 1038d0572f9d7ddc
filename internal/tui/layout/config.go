package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	List  ListConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// ListConfig holds dimensions of the bookmark list and its detail pane.
type ListConfig struct {
	// HeightReduction is subtracted from terminal height for pane content.
	// Accounts for: header (1) + status line (1) + pane borders (2) + hint bar (2) = 6
	HeightReduction int

	// MinHeight is the minimum pane height.
	MinHeight int

	// ListWidthPercent is the list pane's share of the terminal width when
	// the detail pane is shown.
	ListWidthPercent int

	// MinListWidth is the minimum list pane width.
	MinListWidth int

	// DetailBreakpoint is the terminal width below which the detail pane is hidden.
	DetailBreakpoint int

	// PaneGap is the horizontal space taken by borders between panes.
	PaneGap int

	// ContentPadding is subtracted from pane width for row rendering.
	ContentPadding int

	// RowHeight is the number of lines one bookmark takes (title + url).
	RowHeight int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// InputPadding is subtracted from modal width for text inputs.
	InputPadding int

	// HelpKeyColumnWidth: width of the key column in the help overlay.
	HelpKeyColumnWidth int

	// PickerMaxVisible: max rows shown by the search picker.
	PickerMaxVisible int
}

// InputConfig holds text input character limits.
type InputConfig struct {
	URLCharLimit         int
	TitleCharLimit       int
	DescriptionCharLimit int
	UsernameCharLimit    int
	PasswordCharLimit    int
	FilterCharLimit      int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		List: ListConfig{
			HeightReduction:  6,
			MinHeight:        4,
			ListWidthPercent: 55,
			MinListWidth:     30,
			DetailBreakpoint: 90,
			PaneGap:          4,
			ContentPadding:   4,
			RowHeight:        2,
		},
		Modal: ModalConfig{
			WidthPercent:       50,
			MinWidth:           40,
			MaxWidth:           80,
			InputPadding:       6,
			HelpKeyColumnWidth: 14,
			PickerMaxVisible:   10,
		},
		Input: InputConfig{
			URLCharLimit:         2048,
			TitleCharLimit:       200,
			DescriptionCharLimit: 1000,
			UsernameCharLimit:    100,
			PasswordCharLimit:    200,
			FilterCharLimit:      100,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
