package model

import (
	"strings"

	"github.com/okian/relief/internal/domain/geo"
)

// Status is a volunteer's self-reported availability.
type Status string

// Common statuses. Other values are allowed and count as not available.
const (
	StatusAvailable Status = "available"
	StatusBusy      Status = "busy"
	StatusOffline   Status = "offline"
)

// ParseStatus lowercases and trims a status string.
func ParseStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// Location is either a coordinate pair or a place name.
type Location struct {
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
	Place string   `json:"place,omitempty"`
}

// At builds a coordinate location.
func At(lat, lng float64) Location {
	return Location{Lat: &lat, Lng: &lng}
}

// Named builds a place-name location.
func Named(place string) Location {
	return Location{Place: place}
}

// Coordinates returns the explicit coordinates, if both are present and valid.
func (l Location) Coordinates() (geo.Point, bool) {
	if l.Lat == nil || l.Lng == nil {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: *l.Lat, Lng: *l.Lng}
	return p, p.Valid()
}

// Resolve returns the location's point, preferring coordinates and falling
// back to the place name looked up in g.
func (l Location) Resolve(g *geo.Gazetteer) (geo.Point, bool) {
	if p, ok := l.Coordinates(); ok {
		return p, true
	}
	if strings.TrimSpace(l.Place) == "" {
		return geo.Point{}, false
	}
	return g.Resolve(l.Place)
}

// IsZero reports whether no location information was given at all.
func (l Location) IsZero() bool {
	return l.Lat == nil && l.Lng == nil && strings.TrimSpace(l.Place) == ""
}

// Volunteer is a candidate responder.
type Volunteer struct {
	ID                string   `json:"id"`
	Name              string   `json:"name,omitempty"`
	Skills            []string `json:"skills"`
	Location          Location `json:"location"`
	Status            Status   `json:"status"`
	CompletedMissions int      `json:"completedMissions"`
	Rating            *float64 `json:"rating,omitempty"`
}

// NormalizedSkills returns the skill tags lowercased and trimmed, without
// empties or duplicates, in first-seen order.
func (v *Volunteer) NormalizedSkills() []string {
	out := make([]string, 0, len(v.Skills))
	seen := make(map[string]struct{}, len(v.Skills))
	for _, s := range v.Skills {
		key := NormalizeSkill(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// NormalizeSkill canonicalizes a skill tag for comparison.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DisplayName returns the volunteer's name or a generic label.
func (v *Volunteer) DisplayName() string {
	if name := strings.TrimSpace(v.Name); name != "" {
		return name
	}
	return "Volunteer"
}
