package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/value"
)

// headerPadding is the horizontal padding applied by styleHeader.
const headerPadding = 2

// StatusBar renders the header: current system, route and session clock.
type StatusBar struct {
	Width        int
	Current      *ledger.System
	Route        route.Progress
	SessionStart time.Time
	Now          time.Time
	Cached       bool   // current system is already in the cache
	ViewName     string // active body view
}

// View renders the header block.
func (s StatusBar) View() string {
	inner := max(s.Width-headerPadding, 0)

	title := styleHeaderTitle.Render("🚀 Elite Dangerous Explorer")
	if s.ViewName != "" && s.Width >= CompactWidth {
		right := styleHeaderView.Render(s.ViewName + " view")
		gap := inner - lipgloss.Width(title) - lipgloss.Width(right)
		if gap >= 1 {
			title += strings.Repeat(" ", gap) + right
		}
	}

	lines := []string{title, s.systemLine()}
	if next := s.routeLine(); next != "" {
		lines = append(lines, next)
	}
	lines = append(lines, s.sessionLine())
	if s.Current != nil {
		lines = append(lines, styleHeaderLabel.Render("est. System Value: ")+
			styleCreditsBold.Render(value.Credits(s.Current.TotalValue)))
	}

	for i, l := range lines {
		if inner > 0 {
			lines[i] = ansi.Truncate(l, inner, "…")
		}
	}
	return styleHeader.Width(s.Width).Render(strings.Join(lines, "\n"))
}

func (s StatusBar) systemLine() string {
	label := styleHeaderLabel.Render("System: ")
	if s.Current == nil {
		return label + styleDim.Render(ledger.UnknownType)
	}
	line := label + styleHeaderValue.Render(s.Current.Name)
	if s.Current.DSSUsed {
		line += " 💾"
	}
	if s.Current.StarClass != "" {
		line += " " + scoopBadge(s.Current.StarClass)
	}
	if s.Cached {
		line += " " + styleDSS.Render("★ cached")
	}
	return line
}

func (s StatusBar) routeLine() string {
	if s.Route.NextSystem == "" {
		return ""
	}
	line := styleHeaderLabel.Render("→  ") + styleHeaderValue.Render(s.Route.NextSystem)
	if s.Route.NextStarClass != "" {
		line += " " + scoopBadge(s.Route.NextStarClass)
	}
	return line
}

func (s StatusBar) sessionLine() string {
	line := styleHeaderLabel.Render("Session: ") + sessionClock(s.Now.Sub(s.SessionStart))
	if s.Route.RemainingJumps > 0 {
		line += styleDim.Render("  |  ") + styleHeaderLabel.Render("Jumps: ") + fmt.Sprint(s.Route.RemainingJumps)
	}
	return line
}

// scoopBadge renders "(K ⛽)" for scoopable star classes and "(D ✗)" otherwise.
func scoopBadge(class string) string {
	if route.Scoopable(class) {
		return styleScoop.Render("(" + class + " ⛽)")
	}
	return styleNoScoop.Render("(" + class + " ✗)")
}

// sessionClock formats d as HH:MM.
func sessionClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
