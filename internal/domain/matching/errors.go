package matching

import "errors"

// Sentinel kinds for matching errors. These allow errors.Is from callers.
var (
	// ErrInvalidConfig is returned when weights or other tunables are out of range.
	ErrInvalidConfig = errors.New("invalid matching config")
	// ErrInvalidEmergency is returned when the emergency cannot be located.
	ErrInvalidEmergency = errors.New("invalid emergency")
)

// SkipReason explains why a volunteer was left out of matching.
type SkipReason string

// Skip reasons.
const (
	SkipMissingID       SkipReason = "missing_id"
	SkipDuplicateID     SkipReason = "duplicate_id"
	SkipMissingLocation SkipReason = "missing_location"
)

// Warning describes one volunteer entry that was skipped.
type Warning struct {
	Index       int        `json:"index"`
	VolunteerID string     `json:"volunteerId,omitempty"`
	Reason      SkipReason `json:"reason"`
	Message     string     `json:"message"`
}
