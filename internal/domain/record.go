package domain

import "time"

// State is the lifecycle tier of a persisted record.
type State string

const (
	StateActive   State = "active"
	StateArchived State = "archived"
	StatePurged   State = "purged"
)

// ValidTransition reports whether a record may move from one state to the
// next. The state machine only ever moves forward.
func ValidTransition(from, to State) bool {
	switch {
	case from == StateActive && to == StateArchived:
		return true
	case from == StateArchived && to == StatePurged:
		return true
	default:
		return false
	}
}

// DisasterRecord is the persisted form of a DisasterEvent. The ID is the
// codec-produced identifier and is immutable once assigned.
type DisasterRecord struct {
	ID string `json:"id"`

	DisasterEvent

	State          State      `json:"state"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}
