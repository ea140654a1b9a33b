// Package route derives plotted-route progress from the game's Status.json
// and NavRoute.json snapshot files.
package route

import (
	"encoding/json"
	"path/filepath"

	"github.com/spf13/afero"
)

// Snapshot file names inside the journal directory.
const (
	StatusFile   = "Status.json"
	NavRouteFile = "NavRoute.json"
)

// Hop is one entry of the plotted route.
type Hop struct {
	Address   int64  `json:"SystemAddress"`
	Name      string `json:"StarSystem"`
	StarClass string `json:"StarClass"`
}

// Destination is the target selected in the galaxy map.
type Destination struct {
	System int64  `json:"System"`
	Body   int    `json:"Body"`
	Name   string `json:"Name"`
}

// Progress is what the dashboard shows about the route.
// The zero value means "no route".
type Progress struct {
	NextSystem     string
	NextStarClass  string
	RemainingJumps int
}

// Compute derives route progress for the system at current.
// A nil destination or an empty route yields the zero Progress.
func Compute(current int64, dest *Destination, hops []Hop) Progress {
	if dest == nil || dest.System == 0 || hops == nil {
		return Progress{}
	}

	var p Progress
	p.RemainingJumps = len(hops)
	for i, h := range hops {
		if h.Address == current {
			p.RemainingJumps = len(hops) - (i + 1)
			break
		}
	}

	// Destination equal to current means we already arrived; nothing to show.
	for _, h := range hops {
		if h.Address == dest.System && h.Address != current {
			p.NextSystem = h.Name
			p.NextStarClass = h.StarClass
			break
		}
	}
	return p
}

// scoopable star classes can refuel a ship.
var scoopable = map[string]bool{"O": true, "B": true, "A": true, "F": true, "G": true, "K": true, "M": true}

// Scoopable reports whether a star class allows fuel scooping.
func Scoopable(starClass string) bool {
	return scoopable[starClass]
}

// Tracker reads the snapshot files on demand.
type Tracker struct {
	Fs           afero.Fs
	StatusPath   string
	NavRoutePath string
}

// NewTracker returns a Tracker reading the snapshot files in journalDir
// from the OS filesystem.
func NewTracker(journalDir string) *Tracker {
	return &Tracker{
		Fs:           afero.NewOsFs(),
		StatusPath:   filepath.Join(journalDir, StatusFile),
		NavRoutePath: filepath.Join(journalDir, NavRouteFile),
	}
}

type statusDoc struct {
	Destination *Destination `json:"Destination"`
}

type navRouteDoc struct {
	Route []Hop `json:"Route"`
}

// Progress reads both snapshots and computes progress for current.
// Unreadable or malformed files yield the zero Progress.
func (t *Tracker) Progress(current int64) Progress {
	var status statusDoc
	if !t.readJSON(t.StatusPath, &status) || status.Destination == nil {
		return Progress{}
	}
	var nav navRouteDoc
	if !t.readJSON(t.NavRoutePath, &nav) {
		return Progress{}
	}
	return Compute(current, status.Destination, nav.Route)
}

func (t *Tracker) readJSON(path string, v any) bool {
	if path == "" {
		return false
	}
	data, err := afero.ReadFile(t.Fs, path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
