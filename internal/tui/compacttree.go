package tui

import (
	"fmt"
	"strings"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

// compactLimit is how many bodies a compact system lists.
const compactLimit = 20

func renderCompact(systems []ledger.System, st treeState) (string, []int) {
	blocks := make([]string, len(systems))
	for i, sys := range systems {
		expanded := st.expanded(i)
		label := selectionPrefix(i == st.cursor) + foldMarker(expanded) + compactSystemLabel(sys, st.isCurrent(i))
		if !expanded || len(sys.Bodies) == 0 {
			blocks[i] = label
			continue
		}
		t := newTree(label)
		bodies := sortBodies(sys.Bodies, compactPriority)
		for _, b := range bodies[:min(compactLimit, len(bodies))] {
			t.Child(compactBody(b))
		}
		if extra := len(bodies) - compactLimit; extra > 0 {
			t.Child(styleDimItalic.Render(fmt.Sprintf("... and %d more bodies", extra)))
		}
		blocks[i] = t.String()
	}
	return joinBlocks(blocks)
}

func compactSystemLabel(sys ledger.System, current bool) string {
	var b strings.Builder
	nameStyle := styleSystem
	if current {
		b.WriteString(styleCurrentMarker.Render("► "))
		nameStyle = styleSystemCurrent
	}
	b.WriteString(nameStyle.Render(sys.Name))
	marks := ""
	if sys.DSSUsed {
		marks += "💾"
	}
	if current {
		marks += "🎯"
	}
	if marks != "" {
		b.WriteString(" " + styleDSS.Render(marks))
	}
	b.WriteString(styleDim.Render(fmt.Sprintf(" │ %d bodies", len(sys.Bodies))))
	b.WriteString(styleCredits.Render(" │ " + value.Credits(sys.TotalValue)))
	return b.String()
}

// compactBody renders icon, short name, scan badge, signals and value on
// one line.
func compactBody(b ledger.Body) string {
	var s strings.Builder
	s.WriteString(b.Icon + " " + shortName(b.Name) + " ")
	switch {
	case b.ScannedDSS:
		s.WriteString(styleDSS.Render("[DSS] "))
	case b.ScannedFSS:
		s.WriteString(styleFSS.Render("[FSS] "))
	}
	if sig := signalBadges(b.Signals, "", false); len(sig) > 0 {
		s.WriteString(strings.Join(sig, " ") + " ")
	}
	if b.Value > 0 {
		s.WriteString(styleCredits.Render("│ " + value.Credits(b.Value)))
	}
	return strings.TrimRight(s.String(), " ")
}

// shortName drops the system prefix: "Sol A 1" becomes "1".
func shortName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return name
	}
	return fields[len(fields)-1]
}
