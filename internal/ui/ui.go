package ui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/papapumpkin/starchart/internal/ansi"
	"github.com/papapumpkin/starchart/internal/cache"
	"github.com/papapumpkin/starchart/internal/journal"
	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/value"
)

// topBodies is how many bodies a system summary lists.
const topBodies = 5

// Printer writes human-oriented CLI output to stderr.
type Printer struct {
	w io.Writer
}

func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewTo returns a Printer writing to w.
func NewTo(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) Banner() {
	p.printf(ansi.Bold + ansi.Cyan + "  ╔═══════════════════════════════════╗" + ansi.Reset + "\n")
	p.printf(ansi.Bold + ansi.Cyan + "  ║" + ansi.Reset + ansi.Bold + "   STARCHART  " + ansi.Dim + "exploration ledger" + ansi.Reset + ansi.Bold + ansi.Cyan + "   ║" + ansi.Reset + "\n")
	p.printf(ansi.Bold + ansi.Cyan + "  ╚═══════════════════════════════════╝" + ansi.Reset + "\n\n")
}

func (p *Printer) Error(msg string) {
	p.printf(ansi.Red+ansi.Bold+"error: "+ansi.Reset+"%s\n", msg)
}

func (p *Printer) Warn(msg string) {
	p.printf(ansi.Yellow+ansi.Bold+"⚠ "+ansi.Reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	p.printf(ansi.Dim+"%s"+ansi.Reset+"\n", msg)
}

func (p *Printer) Success(msg string) {
	p.printf(ansi.Green+ansi.Bold+"✓ "+ansi.Reset+"%s\n", msg)
}

// SessionSummary prints every system of a snapshot, current first.
func (p *Printer) SessionSummary(snap ledger.Snapshot) {
	systems := snap.Systems()
	total := 0
	for _, s := range systems {
		total += s.TotalValue
	}
	p.printf("\n"+ansi.Bold+ansi.Magenta+"── session: %d system(s), %s ──"+ansi.Reset+"\n", len(systems), value.Credits(total))
	if len(systems) == 0 {
		p.printf(ansi.Dim + "  (no systems)" + ansi.Reset + "\n")
		return
	}
	for i, s := range systems {
		p.SystemSummary(s, i == 0 && snap.Current != nil)
	}
}

// SystemSummary prints a system header and its most valuable bodies.
func (p *Printer) SystemSummary(sys ledger.System, current bool) {
	marker := " "
	if current {
		marker = ansi.Paint("▶", ansi.Cyan)
	}
	dss := ""
	if sys.DSSUsed {
		dss = " 💾"
	}
	star := ""
	if sys.StarClass != "" {
		star = ansi.Dim + " [" + sys.StarClass + "]" + ansi.Reset
	}
	p.printf("%s "+ansi.Bold+"%s"+ansi.Reset+"%s%s  "+ansi.Yellow+"%s"+ansi.Reset+ansi.Dim+"  %d bodies"+ansi.Reset+"\n",
		marker, sys.Name, star, dss, value.FormatCredits(sys.TotalValue), len(sys.Bodies))

	bodies := slices.Clone(sys.Bodies)
	slices.SortStableFunc(bodies, func(a, b ledger.Body) int { return b.Value - a.Value })
	for i, b := range bodies {
		if i == topBodies {
			p.printf(ansi.Dim+"    … and %d more"+ansi.Reset+"\n", len(bodies)-topBodies)
			break
		}
		p.printf("    %s %-28s "+ansi.Dim+"%-28s"+ansi.Reset+" %10s%s\n",
			b.Icon, b.Name, b.Type, value.FormatCredits(b.Value), signalSuffix(b.Signals))
	}
}

func signalSuffix(s ledger.Signals) string {
	var parts []string
	if s.Bio > 0 {
		parts = append(parts, fmt.Sprintf("🧬%d", s.Bio))
	}
	if s.Geo > 0 {
		parts = append(parts, fmt.Sprintf("🌋%d", s.Geo))
	}
	if s.Guardian > 0 {
		parts = append(parts, fmt.Sprintf("🏛%d", s.Guardian))
	}
	if s.Thargoid > 0 {
		parts = append(parts, fmt.Sprintf("👽%d", s.Thargoid))
	}
	if s.Human > 0 {
		parts = append(parts, fmt.Sprintf("👤%d", s.Human))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + strings.Join(parts, " ")
}

// Stats prints journal processing counters.
func (p *Printer) Stats(st journal.Stats) {
	p.printf(ansi.Dim+"lines: %d  applied: %d  ignored: %d"+ansi.Reset+"\n", st.Lines, st.Applied, st.Ignored)
	if len(st.Skipped) == 0 {
		return
	}
	reasons := make([]string, 0, len(st.Skipped))
	for r := range st.Skipped {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	for _, r := range reasons {
		p.printf("  "+ansi.Yellow+"skipped %-16s"+ansi.Reset+" %d\n", r, st.Skipped[r])
	}
}

// RouteProgress prints the plotted route state for the current system.
func (p *Printer) RouteProgress(system string, prog route.Progress) {
	if system != "" {
		p.printf(ansi.Bold+"system:"+ansi.Reset+"  %s\n", system)
	}
	if prog.NextSystem == "" && prog.RemainingJumps == 0 {
		p.printf(ansi.Dim + "no route plotted" + ansi.Reset + "\n")
		return
	}
	if prog.NextSystem != "" {
		p.printf(ansi.Bold+"next:"+ansi.Reset+"    %s %s\n", prog.NextSystem, scoopLabel(prog.NextStarClass))
	}
	p.printf(ansi.Bold+"jumps:"+ansi.Reset+"   %d\n", prog.RemainingJumps)
}

func scoopLabel(class string) string {
	if class == "" {
		return ""
	}
	if route.Scoopable(class) {
		return ansi.Paint("("+class+" ⛽)", ansi.Green)
	}
	return ansi.Paint("("+class+" ✗)", ansi.Red)
}

// CacheList prints one line per cached system.
func (p *Printer) CacheList(entries []cache.Entry) {
	if len(entries) == 0 {
		p.Info("cache is empty")
		return
	}
	for _, e := range entries {
		p.printf("%-20d "+ansi.Bold+"%-28s"+ansi.Reset+" "+ansi.Yellow+"%10s"+ansi.Reset+"  "+ansi.Dim+"%s  %s"+ansi.Reset+"\n",
			e.Address, e.Name, e.ValueFormatted, e.VisitedAt.Local().Format(time.DateTime), strings.Join(e.Flags, ","))
	}
	p.printf(ansi.Dim+"%d system(s)"+ansi.Reset+"\n", len(entries))
}

// CacheEntry prints one cached system with its bodies.
func (p *Printer) CacheEntry(e cache.Entry) {
	p.printf(ansi.Bold+ansi.Cyan+"%s"+ansi.Reset+ansi.Dim+" (%d)"+ansi.Reset+"\n", e.Name, e.Address)
	if e.StarClass != "" {
		p.printf("  star:     %s %s\n", e.StarClass, scoopLabel(e.StarClass))
	}
	p.printf("  visited:  %s\n", e.VisitedAt.Local().Format(time.DateTime))
	p.printf("  value:    %s (%s)\n", e.ValueFormatted, value.Credits(e.TotalValue))
	if len(e.Flags) > 0 {
		p.printf("  flags:    %s\n", strings.Join(e.Flags, ", "))
	}
	for _, b := range e.Bodies {
		var marks []string
		if b.ScannedDSS {
			marks = append(marks, "DSS")
		}
		if b.Landable {
			marks = append(marks, "landable")
		}
		if b.BioSignals > 0 {
			marks = append(marks, fmt.Sprintf("bio %d", b.BioSignals))
		}
		if b.GeoSignals > 0 {
			marks = append(marks, fmt.Sprintf("geo %d", b.GeoSignals))
		}
		p.printf("    %-28s "+ansi.Dim+"%-36s"+ansi.Reset+" %10s  %s\n", b.Name, b.Type, b.ValueFormatted, strings.Join(marks, " "))
	}
}
