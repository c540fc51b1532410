package domain

import "time"

// ChangeType classifies a detected content change.
type ChangeType string

const (
	ChangeTypeNew     ChangeType = "new"
	ChangeTypeUpdated ChangeType = "updated"
	ChangeTypeDeleted ChangeType = "deleted"
)

// IsValid reports whether the change type is one of the known values.
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeNew, ChangeTypeUpdated, ChangeTypeDeleted:
		return true
	}
	return false
}

// ChangeLogEntry is one append-only audit record of a detected change.
// Entries are never mutated after creation and are ordered by DetectedAt.
type ChangeLogEntry struct {
	ID             string
	URL            string
	OldFingerprint string
	NewFingerprint string
	ChangeType     ChangeType
	DetectedAt     time.Time
}

// ContentChange is the transient result of one URL's detection step.
// It carries the full normalized text (not the stored preview) and is
// consumed by the document processor within the same cycle.
type ContentChange struct {
	URL            string
	OldFingerprint string
	NewFingerprint string
	Content        string
	Timestamp      time.Time
	ChangeType     ChangeType
}

// ChangeResult is the outcome of a manual single-URL check.
type ChangeResult struct {
	URL            string
	Changed        bool
	ChangeType     ChangeType
	DetectedAt     time.Time
	OldFingerprint string
	NewFingerprint string
}
