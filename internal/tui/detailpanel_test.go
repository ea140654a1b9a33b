package tui

import (
	"fmt"
	"strings"
	"testing"
)

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return strings.Join(lines, "\n")
}

func TestDetailPanelScrollIndicators(t *testing.T) {
	t.Parallel()

	d := NewDetailPanel(40, 12) // 10 visible lines
	d.SetContent(numberedLines(30))

	view := d.View()
	if strings.Contains(view, "↑") {
		t.Errorf("no lines above at top:\n%s", view)
	}
	if !strings.Contains(view, "↓ 20 more") {
		t.Errorf("expected 20 lines below:\n%s", view)
	}

	d.PageDown()
	view = d.View()
	if !strings.Contains(view, "↑ 10 more") {
		t.Errorf("expected 10 lines above after page down:\n%s", view)
	}
}

func TestDetailPanelReveal(t *testing.T) {
	t.Parallel()

	d := NewDetailPanel(40, 12)
	d.SetContent(numberedLines(50))

	d.Reveal(5)
	if d.YOffset() != 0 {
		t.Errorf("visible line moved the viewport to %d", d.YOffset())
	}
	d.Reveal(25)
	if d.YOffset() != 16 {
		t.Errorf("YOffset = %d, want 16", d.YOffset())
	}
	d.Reveal(3)
	if d.YOffset() != 3 {
		t.Errorf("YOffset = %d, want 3", d.YOffset())
	}
}

func TestDetailPanelEmpty(t *testing.T) {
	t.Parallel()

	d := NewDetailPanel(40, 10)
	d.SetContent("something")
	d.SetEmpty(waitingHint)
	if view := d.View(); !strings.Contains(view, waitingHint) || strings.Contains(view, "something") {
		t.Errorf("empty view = %q", view)
	}
}
