// Package triage answers emergency chat messages: it estimates urgency,
// guesses the emergency type and suggests next actions.
package triage

import (
	"fmt"
	"strings"

	"github.com/okian/relief/internal/domain/keywords"
	"github.com/okian/relief/internal/domain/model"
)

// Level buckets the urgency of a message.
type Level string

// Urgency levels and their scores.
const (
	LevelUrgent   Level = "urgent"
	LevelModerate Level = "moderate"
	LevelRoutine  Level = "routine"

	urgentScore   = 0.9
	moderateScore = 0.6
	routineScore  = 0.3
)

// Action is a suggested follow-up for the client UI.
type Action struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// EmergencyData pre-fills an emergency report for urgent messages.
type EmergencyData struct {
	Type          model.EmergencyType `json:"type"`
	Priority      model.Priority      `json:"priority"`
	ExtractedInfo string              `json:"extractedInfo"`
}

// Reply is the response to one chat message.
type Reply struct {
	Message       string              `json:"message"`
	UrgencyLevel  float64             `json:"urgencyLevel"`
	Level         Level               `json:"level"`
	DetectedType  model.EmergencyType `json:"detectedType"`
	Actions       []Action            `json:"actions"`
	EmergencyData *EmergencyData      `json:"emergencyData,omitempty"`
}

// Responder is immutable and safe for concurrent use.
type Responder struct {
	assistant string
	urgent    []string
	moderate  []string
	types     keywords.Table
}

// New builds a responder with the default keyword lists.
func New(opts ...Option) *Responder {
	r := &Responder{
		assistant: "CrisisConnect",
		urgent:    []string{"emergency", "urgent", "help", "critical", "dying", "fire", "flood", "accident", "blood", "unconscious"},
		moderate:  []string{"sick", "injured", "pain", "need help", "problem", "trouble"},
		types: keywords.Table{
			{Label: string(model.EmergencyMedical), Terms: []string{"medical", "sick", "injured", "doctor", "hospital"}},
			{Label: string(model.EmergencyFire), Terms: []string{"fire", "burning", "smoke", "flames"}},
			{Label: string(model.EmergencyFlood), Terms: []string{"flood", "water", "drowning"}},
			{Label: string(model.EmergencyFood), Terms: []string{"food", "hungry", "starving"}},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond triages a message. It never fails; an empty message gets the
// routine greeting.
func (r *Responder) Respond(message string) Reply {
	txt := keywords.Parse(message)

	detected := model.EmergencyUnknown
	if label, ok := r.types.First(txt); ok {
		detected = model.ParseEmergencyType(label)
	}

	switch {
	case txt.Any(r.urgent):
		kind := "critical"
		if detected != model.EmergencyUnknown {
			kind = string(detected)
		}
		return Reply{
			Message: fmt.Sprintf("I've detected a %s emergency! I'm immediately connecting you to our emergency response system. "+
				"Please stay calm and provide your exact location.", kind),
			UrgencyLevel: urgentScore,
			Level:        LevelUrgent,
			DetectedType: detected,
			Actions: []Action{
				{Type: "call_emergency", Text: "Call Emergency Services NOW"},
				{Type: "open_form", Text: "Quick Emergency Form"},
				{Type: "get_location", Text: "Share Location"},
			},
			EmergencyData: &EmergencyData{
				Type:          detected,
				Priority:      model.PriorityCritical,
				ExtractedInfo: strings.TrimSpace(message),
			},
		}
	case txt.Any(r.moderate):
		situation := "a situation"
		if detected != model.EmergencyUnknown {
			situation = "a " + string(detected) + " situation"
		}
		return Reply{
			Message:      fmt.Sprintf("I understand you need assistance with %s. Let me help you report this properly.", situation),
			UrgencyLevel: moderateScore,
			Level:        LevelModerate,
			DetectedType: detected,
			Actions: []Action{
				{Type: "open_form", Text: "Report Emergency"},
				{Type: "get_location", Text: "Share Location"},
			},
		}
	default:
		return Reply{
			Message: fmt.Sprintf("Hello! I'm your %s assistant. I'm here to help with emergency reporting and disaster coordination. "+
				"How can I assist you today?", r.assistant),
			UrgencyLevel: routineScore,
			Level:        LevelRoutine,
			DetectedType: detected,
			Actions: []Action{
				{Type: "open_form", Text: "Report Issue"},
				{Type: "get_info", Text: "Get Information"},
			},
		}
	}
}
