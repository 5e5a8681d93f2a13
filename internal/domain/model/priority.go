package model

import "strings"

// Priority is an ordered urgency level: low < medium < high < critical.
type Priority int

// Priority levels.
const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{ //nolint:gochecknoglobals // closed enum
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityCritical: "critical",
}

// ParsePriority parses a priority name. Missing or unrecognized values
// resolve to PriorityMedium; ok reports whether s named a level.
func ParsePriority(s string) (p Priority, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for level, name := range priorityNames {
		if name == key {
			return level, true
		}
	}
	return PriorityMedium, false
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return priorityNames[PriorityMedium]
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It never fails.
func (p *Priority) UnmarshalText(b []byte) error {
	*p, _ = ParsePriority(string(b))
	return nil
}
