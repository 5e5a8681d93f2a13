// Package types contains the wire shapes shared by the HTTP API, the CLI and
// the load simulator.
package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/model"
)

// LocationPayload is a coordinate pair and/or a place name.
type LocationPayload struct {
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
	Place string   `json:"place,omitempty"`
}

// UnmarshalJSON accepts either the object form or a bare place name, as in
// "location": "Central Delhi".
func (l *LocationPayload) UnmarshalJSON(b []byte) error {
	var place string
	if err := json.Unmarshal(b, &place); err == nil {
		*l = LocationPayload{Place: place}
		return nil
	}
	type plain LocationPayload
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*l = LocationPayload(p)
	return nil
}

// location merges the nested object with flat lat/lng/area fields; the
// nested object wins.
func location(nested *LocationPayload, lat, lng *float64, area string) model.Location {
	loc := model.Location{Lat: lat, Lng: lng, Place: strings.TrimSpace(area)}
	if nested == nil {
		return loc
	}
	if nested.Lat != nil || nested.Lng != nil {
		loc.Lat, loc.Lng = nested.Lat, nested.Lng
	}
	if p := strings.TrimSpace(nested.Place); p != "" {
		loc.Place = p
	}
	return loc
}

// EmergencyPayload describes the emergency in a match request.
type EmergencyPayload struct {
	ID          string           `json:"id,omitempty"`
	Type        string           `json:"type"`
	Priority    string           `json:"priority,omitempty"`
	Location    *LocationPayload `json:"location,omitempty"`
	Lat         *float64         `json:"lat,omitempty"`
	Lng         *float64         `json:"lng,omitempty"`
	Area        string           `json:"area,omitempty"`
	Victims     int              `json:"victims,omitempty"`
	Description string           `json:"description,omitempty"`
}

// ToModel normalizes the payload. Unknown types and priorities degrade to
// unknown and medium.
func (p EmergencyPayload) ToModel() model.Emergency {
	prio, _ := model.ParsePriority(p.Priority)
	return model.Emergency{
		ID:          strings.TrimSpace(p.ID),
		Type:        model.ParseEmergencyType(p.Type),
		Priority:    prio,
		Location:    location(p.Location, p.Lat, p.Lng, p.Area),
		Victims:     p.Victims,
		Description: p.Description,
	}
}

// VolunteerPayload describes one candidate.
type VolunteerPayload struct {
	ID                string           `json:"id"`
	Name              string           `json:"name,omitempty"`
	Skills            []string         `json:"skills"`
	Location          *LocationPayload `json:"location,omitempty"`
	Lat               *float64         `json:"lat,omitempty"`
	Lng               *float64         `json:"lng,omitempty"`
	Area              string           `json:"area,omitempty"`
	Status            string           `json:"status"`
	CompletedMissions int              `json:"completedMissions"`
	Rating            *float64         `json:"rating,omitempty"`
}

// ToModel converts the payload.
func (p VolunteerPayload) ToModel() model.Volunteer {
	return model.Volunteer{
		ID:                p.ID,
		Name:              p.Name,
		Skills:            p.Skills,
		Location:          location(p.Location, p.Lat, p.Lng, p.Area),
		Status:            model.ParseStatus(p.Status),
		CompletedMissions: p.CompletedMissions,
		Rating:            p.Rating,
	}
}

// OptionsPayload overrides profile settings for one request.
type OptionsPayload struct {
	Weights       *matching.Weights `json:"weights,omitempty"`
	ExperienceCap *int              `json:"experienceCap,omitempty"`
	DecayPerRank  *float64          `json:"decayPerRank,omitempty"`
	Confidence    *string           `json:"confidence,omitempty"`
}

// MatchRequest is the body of the match endpoints. The emergency may be sent
// as "emergency" or, for older clients, as "request".
type MatchRequest struct {
	Emergency  *EmergencyPayload  `json:"emergency,omitempty"`
	Request    *EmergencyPayload  `json:"request,omitempty"`
	Volunteers []VolunteerPayload `json:"volunteers"`
	TopK       *int               `json:"topK,omitempty"`
	Profile    string             `json:"profile,omitempty"`
	Options    *OptionsPayload    `json:"options,omitempty"`
}

// EmergencyPayload returns whichever emergency field was sent.
func (r MatchRequest) EmergencyPayload() (EmergencyPayload, bool) {
	switch {
	case r.Emergency != nil:
		return *r.Emergency, true
	case r.Request != nil:
		return *r.Request, true
	default:
		return EmergencyPayload{}, false
	}
}

// ToMatching converts the body into an engine request.
func (r MatchRequest) ToMatching() matching.Request {
	em, _ := r.EmergencyPayload()
	vols := make([]model.Volunteer, len(r.Volunteers))
	for i, v := range r.Volunteers {
		vols[i] = v.ToModel()
	}
	return matching.Request{Emergency: em.ToModel(), Volunteers: vols}
}

// Overrides collects the per-request profile adjustments.
func (r MatchRequest) Overrides() matching.Overrides {
	o := matching.Overrides{TopK: r.TopK}
	if r.Options == nil {
		return o
	}
	o.Weights = r.Options.Weights
	o.ExperienceCap = r.Options.ExperienceCap
	o.DecayPerRank = r.Options.DecayPerRank
	if r.Options.Confidence != nil {
		s := matching.ConfidenceStrategy(strings.ToLower(strings.TrimSpace(*r.Options.Confidence)))
		o.Confidence = &s
	}
	return o
}

// MatchResponse is returned by the match endpoints.
type MatchResponse struct {
	RunID           string                    `json:"runId"`
	Profile         string                    `json:"profile"`
	EmergencyType   model.EmergencyType       `json:"emergencyType"`
	Priority        model.Priority            `json:"priority"`
	Recommendations []matching.Recommendation `json:"recommendations"`
	Considered      int                       `json:"considered"`
	Skipped         int                       `json:"skipped"`
	Warnings        []matching.Warning        `json:"warnings"`
	GeneratedAt     time.Time                 `json:"generatedAt"`
}

// ClassifyRequest is the body of the classification endpoint.
type ClassifyRequest struct {
	Description string `json:"description"`
	Type        string `json:"type,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Victims     int    `json:"victims,omitempty"`
	Area        string `json:"area,omitempty"`
	Contact     string `json:"contact,omitempty"`
	ReportedBy  string `json:"reportedBy,omitempty"`
}

// ToInput converts the body into classifier input.
func (r ClassifyRequest) ToInput() classify.Input {
	return classify.Input{Description: r.Description, Type: r.Type, Priority: r.Priority, Victims: r.Victims}
}

// ChatRequest is the body of the chat endpoint.
type ChatRequest struct {
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Profiles  []string  `json:"profiles"`
}
