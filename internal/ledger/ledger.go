// Package ledger reconstructs the systems and bodies seen during a play
// session from classified journal events.
//
// Events about one body arrive in any order: signals before the scan, the
// scan before the surface map, organic samples last. The ledger merges each
// partial update into the stored body without losing what it already knew
// and recomputes values after every mutation.
//
// A Ledger has a single writer (the journal session) and any number of
// readers. Every Apply runs under the write lock, and readers only ever see
// deep copies returned by Snapshot.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/value"
)

// Skip explains why an operation did not change the ledger.
type Skip string

// Ledger skip reasons.
const (
	SkipNone         Skip = ""
	SkipNoSystem     Skip = "no_system"
	SkipNoBody       Skip = "no_body"
	SkipEmptySignals Skip = "empty_signals"
)

// Result is the outcome of applying one operation.
type Result struct {
	Changed bool
	Skip    Skip
}

// Router computes route progress for the current system address.
type Router interface {
	Progress(current int64) route.Progress
}

// Archiver receives a copy of every populated system the player leaves.
type Archiver interface {
	Archive(sys System)
}

// Ledger is the in-memory model of the session.
type Ledger struct {
	mu           sync.RWMutex
	current      *System
	visited      []*System // most recent first
	sessionStart time.Time
	route        route.Progress

	router   Router
	archiver Archiver
	now      func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRouter sets the route source consulted after arrivals.
func WithRouter(r Router) Option {
	return func(l *Ledger) { l.router = r }
}

// WithArchiver sets the receiver of departed systems.
func WithArchiver(a Archiver) Option {
	return func(l *Ledger) { l.archiver = a }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates an empty ledger whose session starts now.
func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, o := range opts {
		o(l)
	}
	l.sessionStart = l.now()
	return l
}

// Apply dispatches op to the matching Apply method.
func (l *Ledger) Apply(op Op) Result {
	switch o := op.(type) {
	case Arrival:
		return l.ApplyArrival(o)
	case BodyScanned:
		return l.ApplyBodyScan(o)
	case SignalsDiscovered:
		return l.ApplySignals(o)
	case SurfaceScanCompleted:
		return l.ApplySurfaceScanCompleted(o)
	case OrganicScanned:
		return l.ApplyOrganicScanned(o)
	default:
		panic(fmt.Sprintf("ledger: unknown op %T", op))
	}
}

// ApplyArrival archives the current system if it has bodies and installs a
// fresh one. A repeated arrival at the address of a still empty current
// system only refreshes its metadata.
func (l *Ledger) ApplyArrival(a Arrival) Result {
	name := a.SystemName
	if name == "" {
		name = UnknownType
	}

	// The router reads files; keep that outside the lock.
	prog := l.progress(a.SystemAddress)

	l.mu.Lock()
	var departed *System
	if cur := l.current; cur != nil {
		if len(cur.Bodies) == 0 && cur.Address == a.SystemAddress {
			cur.Name = name
			if a.StarClass != "" {
				cur.StarClass = a.StarClass
			}
			l.route = prog
			l.mu.Unlock()
			return Result{Changed: true}
		}
		if len(cur.Bodies) > 0 {
			l.visited = append([]*System{cur}, l.visited...)
			c := cur.clone()
			departed = &c
		}
	}
	l.current = &System{
		Name:      name,
		Address:   a.SystemAddress,
		StarClass: a.StarClass,
		VisitedAt: l.now(),
	}
	l.route = prog
	l.mu.Unlock()

	if departed != nil && l.archiver != nil {
		l.archiver.Archive(*departed)
	}
	return Result{Changed: true}
}

// ApplyBodyScan inserts or merges a scanned body into the current system.
func (l *Ledger) ApplyBodyScan(op BodyScanned) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current
	if cur == nil {
		return Result{Skip: SkipNoSystem}
	}

	b := op.Body.clone()
	b.ScannedFSS = true
	if b.Icon == "" {
		b.Icon = DefaultIcon
	}

	if i := cur.index(b.Name); i >= 0 {
		b = layerHistory(cur.Bodies[i], b)
		b.revalue()
		cur.Bodies[i] = b
	} else {
		b.BioDetails = union(nil, b.BioDetails...)
		b.ScannedGenomes = union(nil, b.ScannedGenomes...)
		b.revalue()
		cur.Bodies = append(cur.Bodies, b)
	}
	if cur.StarClass == "" && b.Distance == 0 {
		// The arrival star sits at distance 0 and names the system's class.
		if code, ok := strings.CutPrefix(b.Type, value.StarPrefix); ok {
			cur.StarClass = code
		}
	}
	cur.retotal()
	return Result{Changed: true}
}

// ApplySignals records signal counts and genera for a body, creating a
// placeholder when the body is unknown and at least one count is non-zero.
func (l *Ledger) ApplySignals(op SignalsDiscovered) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current
	if cur == nil {
		return Result{Skip: SkipNoSystem}
	}

	i := cur.index(op.BodyName)
	if i < 0 {
		if !op.Signals.Any() {
			return Result{Skip: SkipEmptySignals}
		}
		b := Body{
			Name:       op.BodyName,
			ID:         op.BodyID,
			Type:       UnknownType,
			Icon:       DefaultIcon,
			Signals:    op.Signals,
			BioDetails: union(nil, op.Genera...),
		}
		b.revalue()
		cur.Bodies = append(cur.Bodies, b)
		cur.retotal()
		return Result{Changed: true}
	}

	b := &cur.Bodies[i]
	b.Signals = b.Signals.update(op.Signals)
	b.BioDetails = union(b.BioDetails, op.Genera...)
	if b.ID == NoBodyID {
		b.ID = op.BodyID
	}
	b.revalue()
	cur.retotal()
	return Result{Changed: true}
}

// ApplySurfaceScanCompleted marks the system as surface mapped and, if the
// body is known, the body too.
func (l *Ledger) ApplySurfaceScanCompleted(op SurfaceScanCompleted) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current
	if cur == nil {
		return Result{Skip: SkipNoSystem}
	}

	cur.DSSUsed = true
	if i := cur.index(op.BodyName); i >= 0 {
		b := &cur.Bodies[i]
		b.ScannedDSS = true
		b.Value = value.BodyValue(b.Type, true)
	}
	cur.retotal()
	return Result{Changed: true}
}

// ApplyOrganicScanned adds a sampled genus to a known body. Samples for
// unknown bodies are dropped.
func (l *Ledger) ApplyOrganicScanned(op OrganicScanned) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.current
	if cur == nil {
		return Result{Skip: SkipNoSystem}
	}

	i := -1
	if op.BodyName != "" {
		i = cur.index(op.BodyName)
	}
	if i < 0 {
		i = cur.indexID(op.BodyID)
	}
	if i < 0 {
		return Result{Skip: SkipNoBody}
	}

	b := &cur.Bodies[i]
	b.ScannedGenomes = union(b.ScannedGenomes, op.Genus)
	return Result{Changed: true}
}

// RefreshRoute recomputes route progress for the current system. Only the
// writer may call it. The result is dropped if the current system changed
// while the route files were read.
func (l *Ledger) RefreshRoute() {
	l.mu.RLock()
	cur := l.current
	var addr int64
	if cur != nil {
		addr = cur.Address
	}
	l.mu.RUnlock()

	prog := route.Progress{}
	if cur != nil {
		prog = l.progress(addr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == cur {
		l.route = prog
	}
}

// progress asks the router without holding the lock.
func (l *Ledger) progress(address int64) route.Progress {
	if l.router == nil {
		return route.Progress{}
	}
	return l.router.Progress(address)
}

// Current returns a copy of the current system.
func (l *Ledger) Current() (System, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return System{}, false
	}
	return l.current.clone(), true
}

// SystemCount returns the number of systems recorded this session.
func (l *Ledger) SystemCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.visited)
	if l.current != nil {
		n++
	}
	return n
}

// Flush hands the current system to the archiver if it has bodies. It is
// called at shutdown so the last system is not lost.
func (l *Ledger) Flush() {
	l.mu.RLock()
	var sys *System
	if l.current != nil && len(l.current.Bodies) > 0 {
		c := l.current.clone()
		sys = &c
	}
	l.mu.RUnlock()

	if sys != nil && l.archiver != nil {
		l.archiver.Archive(*sys)
	}
}

// Snapshot is an immutable deep copy of the ledger.
type Snapshot struct {
	Current      *System
	Visited      []System // most recent first
	SessionStart time.Time
	Route        route.Progress
}

// Systems returns the current system followed by the visited ones.
func (s Snapshot) Systems() []System {
	out := make([]System, 0, len(s.Visited)+1)
	if s.Current != nil {
		out = append(out, *s.Current)
	}
	return append(out, s.Visited...)
}

// Snapshot copies the ledger state for rendering.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{
		SessionStart: l.sessionStart,
		Route:        l.route,
		Visited:      make([]System, len(l.visited)),
	}
	if l.current != nil {
		c := l.current.clone()
		snap.Current = &c
	}
	for i, s := range l.visited {
		snap.Visited[i] = s.clone()
	}
	return snap
}
