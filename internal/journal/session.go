package journal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/metrics"
	"github.com/papapumpkin/starchart/internal/telemetry"
)

// DefaultSettleDelay is how long after a jump the route is read again.
// Status.json is rewritten a moment after the FSDJump line lands.
const DefaultSettleDelay = time.Second

// maxLineSize bounds a single journal line during replay.
const maxLineSize = 4 << 20

// Outcome describes what happened to one journal line.
type Outcome struct {
	Op   ledger.OpKind // empty when nothing was applied
	Skip string        // classifier or ledger skip reason
}

// Applied reports whether the line changed the ledger.
func (o Outcome) Applied() bool { return o.Op != "" && o.Skip == "" }

// Stats are the diagnostic counters of a session.
type Stats struct {
	Lines   int
	Applied int
	Ignored int            // events the dashboard does not use
	Skipped map[string]int // by reason
}

// Session is the single writer of a ledger. It decodes, classifies and
// applies journal lines, and keeps counters for every outcome.
type Session struct {
	Ledger    *ledger.Ledger
	Metrics   *metrics.Collector
	Telemetry *telemetry.Emitter

	// SettleDelay postpones the route refresh after a jump. Zero disables
	// the delayed refresh.
	SettleDelay time.Duration

	// OnChange is called after every line that changed the ledger, and after
	// a delayed route refresh.
	OnChange func()

	mu     sync.Mutex
	stats  Stats
	settle *time.Timer
}

// NewSession returns a session writing to l.
func NewSession(l *ledger.Ledger) *Session {
	return &Session{Ledger: l, SettleDelay: DefaultSettleDelay}
}

// HandleLine processes one live journal line.
func (s *Session) HandleLine(line []byte) Outcome {
	return s.handle(line, true)
}

func (s *Session) handle(line []byte, live bool) Outcome {
	rec, err := Decode(line)
	if err != nil {
		return s.record(Outcome{Skip: string(SkipDecode)}, "", err.Error())
	}

	op, skip := Classify(rec)
	if skip == SkipUnknownEvent {
		return s.record(Outcome{}, "", "")
	}
	if skip != SkipNone {
		return s.record(Outcome{Skip: string(skip)}, rec.Event, "")
	}

	res := s.Ledger.Apply(op)
	out := Outcome{Op: op.Kind(), Skip: string(res.Skip)}
	s.record(out, rec.Event, "")
	if !res.Changed {
		return out
	}

	if a, ok := op.(ledger.Arrival); ok {
		s.Metrics.SetSystems(s.Ledger.SystemCount())
		s.Telemetry.Record(telemetry.KindArrival, a.SystemName, map[string]any{
			"address": a.SystemAddress,
			"jump":    a.Jump,
		})
		if live && a.Jump {
			s.scheduleRouteRefresh()
		}
	}
	s.notify()
	return out
}

// record updates counters for one line. event and detail only feed the
// telemetry of skipped lines.
func (s *Session) record(out Outcome, event, detail string) Outcome {
	s.mu.Lock()
	s.stats.Lines++
	switch {
	case out.Skip != "":
		if s.stats.Skipped == nil {
			s.stats.Skipped = make(map[string]int)
		}
		s.stats.Skipped[out.Skip]++
	case out.Op == "":
		s.stats.Ignored++
	default:
		s.stats.Applied++
	}
	s.mu.Unlock()

	switch {
	case out.Skip != "":
		s.Metrics.ObserveLine(out.Skip)
		data := map[string]string{"reason": out.Skip}
		if event != "" {
			data["event"] = event
		}
		if detail != "" {
			data["error"] = detail
		}
		s.Telemetry.Record(telemetry.KindLineSkipped, "", data)
	case out.Op == "":
		s.Metrics.ObserveLine(metrics.OutcomeIgnored)
	default:
		s.Metrics.ObserveLine(metrics.OutcomeApplied)
		s.Metrics.ObserveOp(string(out.Op))
	}
	return out
}

func (s *Session) scheduleRouteRefresh() {
	if s.SettleDelay <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settle != nil {
		s.settle.Stop()
	}
	s.settle = time.AfterFunc(s.SettleDelay, func() {
		s.Ledger.RefreshRoute()
		s.notify()
	})
}

func (s *Session) notify() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.Skipped = make(map[string]int, len(s.stats.Skipped))
	for k, v := range s.stats.Skipped {
		out.Skipped[k] = v
	}
	return out
}

// Stop cancels a pending route refresh.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settle != nil {
		s.settle.Stop()
		s.settle = nil
	}
}

// Run feeds every line from t into the session until ctx is cancelled or
// the tail fails.
func (s *Session) Run(ctx context.Context, t *Tailer) error {
	defer s.Stop()

	prev := t.OnSwitch
	t.OnSwitch = func(path string) {
		s.Telemetry.Record(telemetry.KindJournalSwitched, "", map[string]string{"path": path})
		if prev != nil {
			prev(path)
		}
	}

	err := t.Run(ctx, func(line []byte) { s.HandleLine(line) })
	if err != nil {
		s.Telemetry.Record(telemetry.KindTailStopped, "", map[string]string{"error": err.Error()})
	}
	return err
}

// Bootstrap replays the tail of the journal at path starting from its most
// recent arrival, so bodies scanned before the dashboard started are shown.
// It returns the offset just past the last complete line; tailing should
// resume there.
func Bootstrap(path string, s *Session) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("journal: bootstrap %s: %w", path, err)
	}

	end := bytes.LastIndexByte(data, '\n') + 1
	complete := data[:end]

	start := lastArrival(complete)
	if start < 0 {
		return int64(end), nil
	}
	for _, line := range bytes.Split(complete[start:], []byte{'\n'}) {
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		s.handle(line, false)
	}
	return int64(end), nil
}

// lastArrival walks buf backwards and returns the offset of the last line
// recording an arrival, or -1.
func lastArrival(buf []byte) int {
	end := len(buf)
	for end > 0 {
		start := bytes.LastIndexByte(buf[:end-1], '\n') + 1
		line := buf[start:end]
		if bytes.Contains(line, []byte(`"event"`)) {
			if rec, err := Decode(line); err == nil && rec.IsArrival() {
				return start
			}
		}
		end = start
	}
	return -1
}

// Replay processes a whole journal offline. Route refreshes are not
// scheduled.
func Replay(r io.Reader, s *Session) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		s.handle(line, false)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("journal: replay: %w", err)
	}
	return nil
}
