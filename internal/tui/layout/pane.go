package layout

// PaneLayout holds calculated pane dimensions.
type PaneLayout struct {
	ListWidth   int
	DetailWidth int // 0 when the detail pane is hidden
	Height      int
}

// ShowDetail reports whether the detail pane fits.
func (p PaneLayout) ShowDetail() bool {
	return p.DetailWidth > 0
}

// CalculatePanes splits the terminal into the list pane and, when wide
// enough, the detail pane.
func CalculatePanes(terminalWidth, terminalHeight int, cfg ListConfig) PaneLayout {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		height = cfg.MinHeight
	}

	if terminalWidth < cfg.DetailBreakpoint {
		width := terminalWidth - cfg.PaneGap
		if width < 1 {
			width = 1
		}
		return PaneLayout{ListWidth: width, Height: height}
	}

	usable := terminalWidth - cfg.PaneGap
	listWidth := usable * cfg.ListWidthPercent / 100
	if listWidth < cfg.MinListWidth {
		listWidth = cfg.MinListWidth
	}
	return PaneLayout{
		ListWidth:   listWidth,
		DetailWidth: usable - listWidth,
		Height:      height,
	}
}

// CalculateItemWidth computes the width available for row content.
func CalculateItemWidth(paneWidth int, cfg ListConfig) int {
	width := paneWidth - cfg.ContentPadding
	if width < 1 {
		return 1
	}
	return width
}

// CalculateVisibleRows computes how many bookmarks fit in a pane.
func CalculateVisibleRows(paneHeight, headerLines int, cfg ListConfig) int {
	rowHeight := cfg.RowHeight
	if rowHeight < 1 {
		rowHeight = 1
	}
	rows := (paneHeight - headerLines) / rowHeight
	if rows < 1 {
		return 1
	}
	return rows
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
