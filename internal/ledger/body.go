package ledger

import (
	"slices"

	"github.com/papapumpkin/starchart/internal/value"
)

// NoBodyID marks a body whose journal BodyID has not been seen yet.
// Real body ids start at 0 (the arrival star).
const NoBodyID = -1

// Defaults for bodies known only from signal events.
const (
	UnknownType = "Unknown"
	DefaultIcon = "◯"
)

// Signals holds per-category signal counts of a body.
type Signals struct {
	Bio      int
	Geo      int
	Human    int
	Guardian int
	Thargoid int
	Other    int
}

// Any reports whether at least one count is non-zero.
func (s Signals) Any() bool {
	return s != Signals{}
}

// update returns s with every non-zero count in n replacing the stored one.
// Zero counts in n never erase what is already known.
func (s Signals) update(n Signals) Signals {
	pick := func(old, next int) int {
		if next != 0 {
			return next
		}
		return old
	}
	return Signals{
		Bio:      pick(s.Bio, n.Bio),
		Geo:      pick(s.Geo, n.Geo),
		Human:    pick(s.Human, n.Human),
		Guardian: pick(s.Guardian, n.Guardian),
		Thargoid: pick(s.Thargoid, n.Thargoid),
		Other:    pick(s.Other, n.Other),
	}
}

// Material is one entry of a body's surface composition.
type Material struct {
	Name    string
	Percent float64
}

// Body is a celestial object inside a system. Name is unique per system.
type Body struct {
	Name string
	ID   int
	Type string
	Icon string

	ScannedFSS bool
	ScannedDSS bool

	Signals        Signals
	BioDetails     []string // genus names reported by signal scans
	ScannedGenomes []string // genus names sampled with the genetic sampler

	Distance       float64 // light seconds from arrival
	Gravity        float64 // g
	Landable       bool
	Materials      []Material
	TerraformState string

	Value int
}

// EstimatedValue returns the last computed value.
func (b Body) EstimatedValue() int {
	return b.Value
}

// Terraformable reports whether the body type carries the terraformable marker.
func (b Body) Terraformable() bool {
	return value.IsTerraformable(b.Type)
}

func (b Body) clone() Body {
	b.BioDetails = slices.Clone(b.BioDetails)
	b.ScannedGenomes = slices.Clone(b.ScannedGenomes)
	b.Materials = slices.Clone(b.Materials)
	return b
}

func (b *Body) revalue() {
	b.Value = value.BodyValue(b.Type, b.ScannedDSS)
}

// layerHistory carries signal and scan history from a stored body onto a
// fresh scan payload. Scan payloads are authoritative for physical data but
// know nothing about signals or deeper scans.
func layerHistory(stored, scan Body) Body {
	out := scan.clone()
	out.Signals = Signals{
		Bio:      keepKnown(stored.Signals.Bio, scan.Signals.Bio),
		Geo:      keepKnown(stored.Signals.Geo, scan.Signals.Geo),
		Human:    keepKnown(stored.Signals.Human, scan.Signals.Human),
		Guardian: keepKnown(stored.Signals.Guardian, scan.Signals.Guardian),
		Thargoid: keepKnown(stored.Signals.Thargoid, scan.Signals.Thargoid),
		Other:    keepKnown(stored.Signals.Other, scan.Signals.Other),
	}
	out.ScannedFSS = stored.ScannedFSS || scan.ScannedFSS
	out.ScannedDSS = stored.ScannedDSS || scan.ScannedDSS
	out.BioDetails = union(stored.BioDetails, scan.BioDetails...)
	out.ScannedGenomes = union(stored.ScannedGenomes, scan.ScannedGenomes...)
	if out.ID == NoBodyID {
		out.ID = stored.ID
	}
	return out
}

func keepKnown(stored, incoming int) int {
	if stored != 0 {
		return stored
	}
	return incoming
}

// union returns a new slice holding set followed by every item not yet in it.
// The result never shares storage with set.
func union(set []string, items ...string) []string {
	out := slices.Clone(set)
	for _, it := range items {
		if it == "" || slices.Contains(out, it) {
			continue
		}
		out = append(out, it)
	}
	return out
}
