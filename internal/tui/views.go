package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/papapumpkin/starchart/internal/ledger"
)

// ViewKind selects how the systems are rendered.
type ViewKind int

const (
	ViewDetailed ViewKind = iota
	ViewCompact
	ViewTable
	viewCount
)

var viewNames = [...]string{"detailed", "compact", "table"}

func (v ViewKind) String() string {
	if v < 0 || v >= viewCount {
		return "unknown"
	}
	return viewNames[v]
}

// Next returns the view after v, wrapping around.
func (v ViewKind) Next() ViewKind {
	return (v + 1) % viewCount
}

// ParseView maps a view name to its kind. Unknown names select the
// detailed view.
func ParseView(name string) ViewKind {
	for i, n := range viewNames {
		if strings.EqualFold(n, name) {
			return ViewKind(i)
		}
	}
	return ViewDetailed
}

// treeState is what a view needs besides the systems themselves.
type treeState struct {
	cursor     int
	hasCurrent bool // systems[0] is the current system
	expanded   func(i int) bool
}

func (st treeState) isCurrent(i int) bool { return i == 0 && st.hasCurrent }

// renderFunc renders systems and returns the content plus the line offset
// of every system's first line.
type renderFunc func(systems []ledger.System, st treeState) (string, []int)

func (v ViewKind) renderer() renderFunc {
	switch v {
	case ViewCompact:
		return renderCompact
	case ViewTable:
		return renderTable
	default:
		return renderDetailed
	}
}

// joinBlocks concatenates per-system blocks and records where each starts.
func joinBlocks(blocks []string) (string, []int) {
	anchors := make([]int, len(blocks))
	line := 0
	for i, b := range blocks {
		anchors[i] = line
		line += strings.Count(b, "\n") + 1
	}
	return strings.Join(blocks, "\n"), anchors
}

// selectionPrefix marks the selected row.
func selectionPrefix(selected bool) string {
	if selected {
		return styleSelectionIndicator.Render(selectionIndicator) + " "
	}
	return "  "
}

// foldMarker shows whether a system is expanded.
func foldMarker(expanded bool) string {
	if expanded {
		return styleDim.Render("▾ ")
	}
	return styleDim.Render("▸ ")
}

func newTree(root any) *tree.Tree {
	return tree.Root(root).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(styleEnumerator)
}

// signalBadges lists non-zero signal counts. withOther includes the
// uncategorised count.
func signalBadges(s ledger.Signals, sep string, withOther bool) []string {
	type badge struct {
		icon  string
		count int
	}
	all := []badge{
		{"🧬", s.Bio}, {"🌋", s.Geo}, {"👤", s.Human},
		{"🛡️", s.Guardian}, {"👽", s.Thargoid},
	}
	if withOther {
		all = append(all, badge{"❓", s.Other})
	}
	var out []string
	for _, b := range all {
		if b.count > 0 {
			out = append(out, fmt.Sprintf("%s%s%d", b.icon, sep, b.count))
		}
	}
	return out
}

// detailedPriority ranks bodies for the detailed tree and the table: value
// first, then notable planet classes, then weighted signals.
func detailedPriority(b ledger.Body) float64 {
	p := float64(b.Value) * 0.1
	switch t := b.Type; {
	case strings.Contains(t, "Earthlike"):
		p += 1_000_000
	case strings.Contains(t, "Water") && b.Terraformable():
		p += 900_000
	case strings.Contains(t, "Water"):
		p += 800_000
	case strings.Contains(t, "Ammonia"):
		p += 700_000
	case b.Terraformable():
		p += 600_000
	}
	p += float64(b.Signals.Bio) * 50_000
	p += float64(b.Signals.Guardian) * 40_000
	p += float64(b.Signals.Thargoid) * 30_000
	p += float64(b.Signals.Human) * 20_000
	p += float64(b.Signals.Geo) * 5_000
	return p
}

// compactPriority ranks bodies for the compact tree.
func compactPriority(b ledger.Body) float64 {
	p := float64(b.Value) + float64(b.Signals.Bio)*50_000
	if strings.Contains(b.Type, "Earthlike") {
		p += 1_000_000
	}
	return p
}

// sortBodies returns a copy of bodies ordered by descending score. Ties
// keep scan order.
func sortBodies(bodies []ledger.Body, score func(ledger.Body) float64) []ledger.Body {
	out := slices.Clone(bodies)
	slices.SortStableFunc(out, func(a, b ledger.Body) int {
		return cmp.Compare(score(b), score(a))
	})
	return out
}
