// Package model contains domain models passed between layers.
package model

import (
	"strings"
)

// EmergencyType categorizes an emergency report.
type EmergencyType string

// Known emergency types.
const (
	EmergencyMedical    EmergencyType = "medical"
	EmergencyFood       EmergencyType = "food"
	EmergencyWater      EmergencyType = "water"
	EmergencyShelter    EmergencyType = "shelter"
	EmergencyFire       EmergencyType = "fire"
	EmergencyFlood      EmergencyType = "flood"
	EmergencyEarthquake EmergencyType = "earthquake"
	EmergencyUnknown    EmergencyType = "unknown"
)

var knownEmergencyTypes = map[EmergencyType]struct{}{ //nolint:gochecknoglobals // closed enum
	EmergencyMedical:    {},
	EmergencyFood:       {},
	EmergencyWater:      {},
	EmergencyShelter:    {},
	EmergencyFire:       {},
	EmergencyFlood:      {},
	EmergencyEarthquake: {},
}

// ParseEmergencyType maps free text to a known type. Anything unrecognized,
// including the empty string, becomes EmergencyUnknown.
func ParseEmergencyType(s string) EmergencyType {
	t := EmergencyType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownEmergencyTypes[t]; ok {
		return t
	}
	return EmergencyUnknown
}

// Known reports whether t is one of the recognized categories.
func (t EmergencyType) Known() bool {
	_, ok := knownEmergencyTypes[t]
	return ok
}

// Emergency describes what needs responding to and where.
type Emergency struct {
	ID          string        `json:"id,omitempty"`
	Type        EmergencyType `json:"type"`
	Priority    Priority      `json:"priority"`
	Location    Location      `json:"location"`
	Victims     int           `json:"victims,omitempty"`
	Description string        `json:"description,omitempty"`
}
