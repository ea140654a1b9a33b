// Package journal turns the game's journal files into ledger operations.
//
// It decodes journal lines, classifies the events the dashboard cares about,
// tails the live journal and feeds the results into a ledger.Ledger.
package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/value"
)

// Journal event names.
const (
	EventLocation        = "Location"
	EventFSDJump         = "FSDJump"
	EventScan            = "Scan"
	EventFSSBodySignals  = "FSSBodySignals"
	EventSAASignalsFound = "SAASignalsFound"
	EventSAAScanComplete = "SAAScanComplete"
	EventScanOrganic     = "ScanOrganic"
)

// scanTypes lists the Scan sub-types that describe a body.
var scanTypes = map[string]bool{
	"Detailed":        true,
	"AutoScan":        true,
	"Basic":           true,
	"NavBeaconDetail": true,
}

// surfaceGravityG converts the journal's m/s² to g.
const surfaceGravityG = 9.81

// Skip explains why a line produced no ledger operation.
type Skip string

// Classification skip reasons.
const (
	SkipNone         Skip = ""
	SkipDecode       Skip = "decode"
	SkipUnknownEvent Skip = "unknown_event"
	SkipScanType     Skip = "scan_type"
	SkipMissingField Skip = "missing_field"
)

// ErrNoEvent is returned by Decode for JSON objects without an event name.
var ErrNoEvent = errors.New("journal: record has no event")

type material struct {
	Name    string  `json:"Name"`
	Percent float64 `json:"Percent"`
}

type signal struct {
	Type          string `json:"Type"`
	TypeLocalised string `json:"Type_Localised"`
	Count         int    `json:"Count"`
}

type genus struct {
	Genus          string `json:"Genus"`
	GenusLocalised string `json:"Genus_Localised"`
}

// Record is a decoded journal line. Only fields used by the classifier are
// kept; pointer fields distinguish "absent" from zero.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`

	StarSystem    string `json:"StarSystem"`
	SystemAddress *int64 `json:"SystemAddress"`
	StarClass     string `json:"StarClass"`

	ScanType              string     `json:"ScanType"`
	BodyName              string     `json:"BodyName"`
	BodyID                *int       `json:"BodyID"`
	PlanetClass           string     `json:"PlanetClass"`
	StarType              string     `json:"StarType"`
	TerraformState        string     `json:"TerraformState"`
	DistanceFromArrivalLS float64    `json:"DistanceFromArrivalLS"`
	SurfaceGravity        float64    `json:"SurfaceGravity"`
	Landable              bool       `json:"Landable"`
	Materials             []material `json:"Materials"`

	Signals []signal `json:"Signals"`
	Genuses []genus  `json:"Genuses"`

	Body           json.RawMessage `json:"Body"`
	Genus          string          `json:"Genus"`
	GenusLocalised string          `json:"Genus_Localised"`
}

// Decode parses one journal line.
func Decode(line []byte) (Record, error) {
	var rec Record
	line = bytes.TrimSpace(line)
	if err := json.Unmarshal(line, &rec); err != nil {
		return Record{}, fmt.Errorf("journal: decode line: %w", err)
	}
	if rec.Event == "" {
		return Record{}, ErrNoEvent
	}
	return rec, nil
}

// IsArrival reports whether the event enters a system.
func (r Record) IsArrival() bool {
	return r.Event == EventLocation || r.Event == EventFSDJump
}

// Classify maps a record to a ledger operation. Records the dashboard does
// not use, or that lack required fields, return a nil Op and a Skip.
func Classify(rec Record) (ledger.Op, Skip) {
	switch rec.Event {
	case EventLocation, EventFSDJump:
		return classifyArrival(rec)
	case EventScan:
		return classifyScan(rec)
	case EventFSSBodySignals, EventSAASignalsFound:
		return classifySignals(rec)
	case EventSAAScanComplete:
		if rec.BodyName == "" {
			return nil, SkipMissingField
		}
		return ledger.SurfaceScanCompleted{BodyName: rec.BodyName}, SkipNone
	case EventScanOrganic:
		return classifyOrganic(rec)
	default:
		return nil, SkipUnknownEvent
	}
}

func classifyArrival(rec Record) (ledger.Op, Skip) {
	if rec.StarSystem == "" && rec.SystemAddress == nil {
		return nil, SkipMissingField
	}
	a := ledger.Arrival{
		SystemName: rec.StarSystem,
		StarClass:  rec.StarClass,
		Jump:       rec.Event == EventFSDJump,
	}
	if a.SystemName == "" {
		a.SystemName = ledger.UnknownType
	}
	if rec.SystemAddress != nil {
		a.SystemAddress = *rec.SystemAddress
	}
	return a, SkipNone
}

func classifyScan(rec Record) (ledger.Op, Skip) {
	if !scanTypes[rec.ScanType] {
		return nil, SkipScanType
	}
	if rec.BodyName == "" {
		return nil, SkipMissingField
	}
	return ledger.BodyScanned{Body: bodyFromScan(rec)}, SkipNone
}

// bodyFromScan builds the scan payload. Belt clusters, stars and
// terraformable planets get their own type strings so the value model can
// recognise them.
func bodyFromScan(rec Record) ledger.Body {
	b := ledger.Body{
		Name:           rec.BodyName,
		ID:             bodyID(rec.BodyID),
		Type:           rec.PlanetClass,
		Icon:           ledger.DefaultIcon,
		Distance:       max(rec.DistanceFromArrivalLS, 0),
		Landable:       rec.Landable,
		TerraformState: rec.TerraformState,
	}
	if rec.SurfaceGravity > 0 {
		b.Gravity = rec.SurfaceGravity / surfaceGravityG
	}
	for _, m := range rec.Materials {
		b.Materials = append(b.Materials, ledger.Material{
			Name:    strings.ReplaceAll(m.Name, "_name", ""),
			Percent: m.Percent,
		})
	}

	terraformable := rec.TerraformState == value.TerraformableMarker
	switch {
	case strings.Contains(rec.BodyName, "Belt Cluster"):
		b.Icon, b.Type = "🪨", value.AsteroidCluster
	case rec.StarType != "":
		b.Icon, b.Type = "⭐", value.StarPrefix+rec.StarType
	case rec.PlanetClass == "Earthlike body":
		b.Icon = "🌍"
	case rec.PlanetClass == "Water world":
		b.Icon = "💧"
		if terraformable {
			b.Type = rec.PlanetClass + " (" + value.TerraformableMarker + ")"
		}
	case terraformable:
		b.Icon = "🛸"
		b.Type = rec.PlanetClass + " (" + value.TerraformableMarker + ")"
	case rec.PlanetClass == "Ammonia world":
		b.Icon = "☢"
	}
	if b.Type == "" {
		b.Type = ledger.UnknownType
	}
	return b
}

func classifySignals(rec Record) (ledger.Op, Skip) {
	if rec.BodyName == "" {
		return nil, SkipMissingField
	}
	op := ledger.SignalsDiscovered{
		BodyName: rec.BodyName,
		BodyID:   bodyID(rec.BodyID),
	}
	for _, s := range rec.Signals {
		// Category fields take the latest count; Other sums everything else.
		switch {
		case strings.Contains(s.Type, "Biological"):
			op.Signals.Bio = s.Count
		case strings.Contains(s.Type, "Geological"):
			op.Signals.Geo = s.Count
		case strings.Contains(s.Type, "Human"):
			op.Signals.Human = s.Count
		case strings.Contains(s.Type, "Guardian"):
			op.Signals.Guardian = s.Count
		case strings.Contains(s.Type, "Thargoid"):
			op.Signals.Thargoid = s.Count
		default:
			op.Signals.Other += s.Count
		}
	}
	for _, g := range rec.Genuses {
		op.Genera = append(op.Genera, genusName(g.GenusLocalised, g.Genus))
	}
	return op, SkipNone
}

func classifyOrganic(rec Record) (ledger.Op, Skip) {
	op := ledger.OrganicScanned{
		BodyID: ledger.NoBodyID,
		Genus:  genusName(rec.GenusLocalised, rec.Genus),
	}
	if len(rec.Body) > 0 {
		var id int
		var name string
		switch {
		case json.Unmarshal(rec.Body, &id) == nil:
			op.BodyID = id
		case json.Unmarshal(rec.Body, &name) == nil:
			op.BodyName = name
		}
	}
	if op.BodyName == "" && op.BodyID == ledger.NoBodyID {
		return nil, SkipMissingField
	}
	return op, SkipNone
}

func genusName(localised, raw string) string {
	switch {
	case localised != "":
		return localised
	case raw != "":
		return raw
	default:
		return ledger.UnknownType
	}
}

func bodyID(id *int) int {
	if id == nil {
		return ledger.NoBodyID
	}
	return *id
}
