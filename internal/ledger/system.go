package ledger

import (
	"time"

	"github.com/papapumpkin/starchart/internal/value"
)

// System groups the bodies seen in one star system.
type System struct {
	Name       string
	Address    int64 // authoritative key; Name is for display
	StarClass  string
	DSSUsed    bool
	TotalValue int
	VisitedAt  time.Time
	Bodies     []Body
}

// Body returns the body with the given name.
func (s System) Body(name string) (Body, bool) {
	if i := s.index(name); i >= 0 {
		return s.Bodies[i], true
	}
	return Body{}, false
}

func (s System) index(name string) int {
	for i := range s.Bodies {
		if s.Bodies[i].Name == name {
			return i
		}
	}
	return -1
}

func (s System) indexID(id int) int {
	if id == NoBodyID {
		return -1
	}
	for i := range s.Bodies {
		if s.Bodies[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *System) retotal() {
	s.TotalValue = value.SystemValue(s.Bodies)
}

func (s System) clone() System {
	bodies := make([]Body, len(s.Bodies))
	for i := range s.Bodies {
		bodies[i] = s.Bodies[i].clone()
	}
	s.Bodies = bodies
	return s
}
