package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

// topMaterials is how many materials a body lists.
const topMaterials = 5

func renderDetailed(systems []ledger.System, st treeState) (string, []int) {
	blocks := make([]string, len(systems))
	for i, sys := range systems {
		expanded := st.expanded(i)
		label := selectionPrefix(i == st.cursor) + foldMarker(expanded) + detailedSystemLabel(sys, st.isCurrent(i))
		if !expanded {
			blocks[i] = label
			continue
		}
		t := newTree(label)
		if len(sys.Bodies) == 0 {
			t.Child(styleDim.Render("No bodies scanned"))
		}
		for _, b := range sortBodies(sys.Bodies, detailedPriority) {
			t.Child(detailedBody(b))
		}
		blocks[i] = t.String()
	}
	return joinBlocks(blocks)
}

func detailedSystemLabel(sys ledger.System, current bool) string {
	nameStyle := styleSystem
	if current {
		nameStyle = styleSystemCurrent
	}
	var b strings.Builder
	b.WriteString(nameStyle.Render(sys.Name))
	b.WriteString(styleDim.Render(fmt.Sprintf(" (%d bodies)", len(sys.Bodies))))
	if sys.DSSUsed {
		b.WriteString(styleDSS.Render(" 💾"))
	}
	if current {
		b.WriteString(styleCurrentMarker.Render(" 🎯"))
	}
	b.WriteString(styleCreditsBold.Render(" │ " + value.Credits(sys.TotalValue)))
	return b.String()
}

// detailedBody renders a body line with its summary, genera and materials
// as children.
func detailedBody(b ledger.Body) *tree.Tree {
	t := newTree(detailedBodyLabel(b))

	var summary []string
	if sig := signalBadges(b.Signals, " ", true); len(sig) > 0 {
		summary = append(summary, "Signals: "+strings.Join(sig, " "))
	}
	if b.Distance > 0 {
		summary = append(summary, "📍 "+humanize.Comma(int64(b.Distance+0.5))+" Ls")
	}
	if b.Gravity > 0 {
		summary = append(summary, "⚖️ "+gravityStyle(b.Gravity).Render(fmt.Sprintf("%.2fg", b.Gravity)))
	}
	if b.Landable {
		summary = append(summary, "✅ Landable")
	}
	if len(summary) > 0 {
		t.Child(strings.Join(summary, " │ "))
	}

	if len(b.BioDetails) > 0 {
		bio := newTree("🧬 Biological Signals")
		for _, genus := range b.BioDetails {
			if slices.Contains(b.ScannedGenomes, genus) {
				bio.Child(styleDSS.Render("✓ " + genus))
			} else {
				bio.Child("○ " + genus)
			}
		}
		t.Child(bio)
	}

	if len(b.Materials) > 0 {
		t.Child("📦 " + materialSummary(b.Materials))
	}

	if len(summary) == 0 && len(b.BioDetails) == 0 && len(b.Materials) == 0 {
		t.Child(styleDim.Render("No additional data"))
	}
	return t
}

func detailedBodyLabel(b ledger.Body) string {
	var s strings.Builder
	s.WriteString(b.Icon + " ")
	s.WriteString(styleBodyName.Render(b.Name))
	if sig := signalBadges(b.Signals, " ", true); len(sig) > 0 {
		s.WriteString(" | " + strings.Join(sig, " "))
	}
	if b.ScannedFSS {
		s.WriteString(styleFSS.Render(" [FSS]"))
	}
	if b.ScannedDSS {
		s.WriteString(styleDSS.Render(" [DSS]"))
	}
	s.WriteString(styleBodyType.Render(" │ " + b.Type))
	if b.Value > 0 {
		s.WriteString(styleCredits.Render(" │ " + value.Credits(b.Value)))
	}
	return s.String()
}

// materialSummary lists the most abundant materials.
func materialSummary(mats []ledger.Material) string {
	sorted := slices.Clone(mats)
	slices.SortStableFunc(sorted, func(a, b ledger.Material) int {
		switch {
		case a.Percent > b.Percent:
			return -1
		case a.Percent < b.Percent:
			return 1
		default:
			return 0
		}
	})
	if len(sorted) > topMaterials {
		sorted = sorted[:topMaterials]
	}
	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = fmt.Sprintf("%s (%.1f%%)", m.Name, m.Percent)
	}
	return strings.Join(parts, ", ")
}

func gravityStyle(g float64) lipgloss.Style {
	switch {
	case g > gravityHigh:
		return styleGravityHigh
	case g > gravityElevated:
		return styleGravityElevated
	default:
		return styleGravityLow
	}
}
