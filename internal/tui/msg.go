package tui

import "time"

// MsgLedgerChanged is sent by the journal session whenever the ledger
// changed. The model pulls a fresh snapshot in response.
type MsgLedgerChanged struct{}

// MsgTick is sent every second to refresh the session clock.
type MsgTick struct {
	Time time.Time
}

// MsgTailStopped is sent when the journal tail ends with an error. The last
// snapshot keeps rendering.
type MsgTailStopped struct {
	Err error
}

// MsgSystemStored is sent after a departed system was written to the cache.
type MsgSystemStored struct {
	Name       string
	Address    int64
	TotalValue int
}

// MsgCacheStatus reports whether a system address is in the cache.
type MsgCacheStatus struct {
	Address int64
	Cached  bool
}

// MsgToastExpired is sent when a toast notification should be dismissed.
type MsgToastExpired struct {
	ID int
}
