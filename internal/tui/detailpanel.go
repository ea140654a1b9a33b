package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DetailPanel wraps a viewport holding the rendered systems.
type DetailPanel struct {
	viewport   viewport.Model
	totalLines int
	emptyHint  string
}

// NewDetailPanel creates a detail panel with the given dimensions.
func NewDetailPanel(width, height int) DetailPanel {
	d := DetailPanel{viewport: viewport.New(width, height)}
	d.SetSize(width, height)
	return d
}

// SetSize updates the viewport dimensions. Two lines are reserved for the
// scroll indicators.
func (d *DetailPanel) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = max(height-2, 1)
}

// SetContent replaces the content, keeping the scroll position when it is
// still valid.
func (d *DetailPanel) SetContent(content string) {
	d.emptyHint = ""
	d.totalLines = strings.Count(content, "\n") + 1
	d.viewport.SetContent(content)
}

// SetEmpty shows hint instead of content.
func (d *DetailPanel) SetEmpty(hint string) {
	d.emptyHint = hint
	d.totalLines = 0
	d.viewport.SetContent("")
	d.viewport.GotoTop()
}

// Reveal scrolls the minimum amount needed to bring line into view.
func (d *DetailPanel) Reveal(line int) {
	switch {
	case line < d.viewport.YOffset:
		d.viewport.SetYOffset(line)
	case line >= d.viewport.YOffset+d.viewport.Height:
		d.viewport.SetYOffset(line - d.viewport.Height + 1)
	}
}

// PageUp scrolls one page up.
func (d *DetailPanel) PageUp() { d.viewport.PageUp() }

// PageDown scrolls one page down.
func (d *DetailPanel) PageDown() { d.viewport.PageDown() }

// Update forwards mouse wheel and other viewport messages.
func (d *DetailPanel) Update(msg tea.Msg) {
	d.viewport, _ = d.viewport.Update(msg)
}

// YOffset is the first visible content line.
func (d DetailPanel) YOffset() int { return d.viewport.YOffset }

// View renders the viewport with scroll indicators above and below.
func (d DetailPanel) View() string {
	if d.emptyHint != "" {
		return styleDimItalic.Render(d.emptyHint)
	}

	var b strings.Builder
	if up := d.linesAbove(); up > 0 {
		b.WriteString(styleScrollIndicator.Render(fmt.Sprintf("↑ %d more", up)))
	}
	b.WriteString("\n")
	b.WriteString(d.viewport.View())
	b.WriteString("\n")
	if down := d.linesBelow(); down > 0 {
		b.WriteString(styleScrollIndicator.Render(fmt.Sprintf("↓ %d more", down)))
	}
	return b.String()
}

func (d DetailPanel) linesAbove() int {
	return d.viewport.YOffset
}

func (d DetailPanel) linesBelow() int {
	return max(d.totalLines-d.viewport.YOffset-d.viewport.Height, 0)
}
