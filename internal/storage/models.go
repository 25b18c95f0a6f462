package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SessionRecord is a persisted wizard session snapshot. Payload holds the
// full session JSON; Step is duplicated as a column for cheap listing.
type SessionRecord struct {
	ID        string
	Step      string
	Payload   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FinalizedRecord is one finalized audience or growth lever, recorded when
// the corresponding wizard step completes. Kind is "audience" or
// "growth_lever"; Payload holds the record JSON as sent to the backend.
type FinalizedRecord struct {
	ID        string
	SessionID string
	Kind      string
	RecordID  string
	Name      string
	Payload   string
	CreatedAt time.Time
}
