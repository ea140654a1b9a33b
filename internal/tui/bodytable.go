package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

var tableHeaders = []string{"Body", "Type", "Scan F/D", "Signals", "G", "L", "Value", "Distance"}

// Column indexes that are right aligned.
const (
	colValue    = 6
	colDistance = 7
)

func renderTable(systems []ledger.System, st treeState) (string, []int) {
	blocks := make([]string, len(systems))
	for i, sys := range systems {
		expanded := st.expanded(i)
		label := selectionPrefix(i == st.cursor) + foldMarker(expanded) + compactSystemLabel(sys, st.isCurrent(i))
		if !expanded || len(sys.Bodies) == 0 {
			blocks[i] = label
			continue
		}
		blocks[i] = label + "\n" + bodyTable(sys.Bodies)
	}
	return joinBlocks(blocks)
}

// bodyTable renders bodies as a bordered table in priority order.
func bodyTable(bodies []ledger.Body) string {
	sorted := sortBodies(bodies, detailedPriority)
	rows := make([][]string, len(sorted))
	for i, b := range sorted {
		rows[i] = bodyRow(b)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			if col == colValue || col == colDistance {
				return styleTableCell.Align(lipgloss.Right)
			}
			return styleTableCell
		})
	return t.String()
}

func bodyRow(b ledger.Body) []string {
	scan := check(b.ScannedFSS) + "/" + check(b.ScannedDSS)

	signals := strings.Join(signalBadges(b.Signals, "", true), " ")

	gravity := "-"
	if b.Gravity > 0 {
		gravity = fmt.Sprintf("%.2f", b.Gravity)
	}
	landable := ""
	if b.Landable {
		landable = "✓"
	}
	distance := "-"
	if b.Distance > 0 {
		distance = humanize.Comma(int64(b.Distance+0.5)) + " Ls"
	}
	return []string{
		b.Icon + " " + b.Name,
		b.Type,
		scan,
		signals,
		gravity,
		landable,
		value.FormatCredits(b.Value),
		distance,
	}
}

func check(ok bool) string {
	if ok {
		return "✓"
	}
	return "·"
}
