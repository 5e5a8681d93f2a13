// Package classify derives an emergency's type and priority from its free
// text description using fixed keyword tables.
package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/relief/internal/domain/keywords"
	"github.com/okian/relief/internal/domain/model"
)

// Input is a raw emergency report. Type and Priority are the reporter's hints.
type Input struct {
	Description string
	Type        string
	Priority    string
	Victims     int
}

// Result is the classification of one report.
type Result struct {
	EmergencyType     model.EmergencyType `json:"emergencyType"`
	SuggestedPriority model.Priority      `json:"suggestedPriority"`
	UrgencyScore      float64             `json:"urgencyScore"`
	EstimatedPeople   int                 `json:"estimatedPeople"`
	ResourceNeeds     []string            `json:"resourceNeeds"`
	Confidence        float64             `json:"confidence"`
	ResponseWindow    string              `json:"responseWindow"`
	KeyInsights       []string            `json:"keyInsights"`
}

var confidenceByPriority = map[model.Priority]float64{ //nolint:gochecknoglobals // fixed table
	model.PriorityCritical: 0.95,
	model.PriorityHigh:     0.85,
	model.PriorityMedium:   0.75,
	model.PriorityLow:      0.65,
}

func defaultTypeTable() keywords.Table {
	return keywords.Table{
		{Label: string(model.EmergencyMedical), Terms: []string{"medical", "injured", "sick", "hospital", "doctor", "ambulance"}},
		{Label: string(model.EmergencyFood), Terms: []string{"food", "hungry", "starving", "eat", "nutrition", "supplies"}},
		{Label: string(model.EmergencyWater), Terms: []string{"water", "thirsty", "drinking", "clean", "contaminated"}},
		{Label: string(model.EmergencyShelter), Terms: []string{"shelter", "homeless", "roof", "house", "building"}},
	}
}

func defaultPriorityTable() keywords.Table {
	return keywords.Table{
		{Label: model.PriorityCritical.String(), Terms: []string{"urgent", "critical", "dying", "emergency", "life", "death"}},
		{Label: model.PriorityHigh.String(), Terms: []string{"serious", "important", "severe", "bad", "help"}},
		{Label: model.PriorityLow.String(), Terms: []string{"minor", "small", "later", "tomorrow"}},
	}
}

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	types      keywords.Table
	priorities keywords.Table
}

// New builds a classifier with the default keyword tables.
func New(opts ...Option) *Classifier {
	c := &Classifier{types: defaultTypeTable(), priorities: defaultPriorityTable()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: without keyword hits it falls back to the hints,
// then to unknown type and medium priority.
func (c *Classifier) Classify(in Input) Result {
	txt := keywords.Parse(in.Description)

	t := model.ParseEmergencyType(in.Type)
	if label, ok := c.types.First(txt); ok {
		t = model.ParseEmergencyType(label)
	}

	prio, _ := model.ParsePriority(in.Priority)
	if label, ok := c.priorities.First(txt); ok {
		prio, _ = model.ParsePriority(label)
	}

	people := in.Victims
	if people < 0 {
		people = 0
	}
	for _, n := range txt.Numbers() {
		if n > people {
			people = n
		}
	}

	conf := confidenceByPriority[prio]
	window := responseWindow(prio)
	factor := "standard protocol"
	if prio == model.PriorityCritical {
		factor = "immediate response needed"
	}

	return Result{
		EmergencyType:     t,
		SuggestedPriority: prio,
		UrgencyScore:      conf,
		EstimatedPeople:   people,
		ResourceNeeds:     []string{string(t), "personnel", "transport"},
		Confidence:        conf,
		ResponseWindow:    window,
		KeyInsights: []string{
			fmt.Sprintf("Detected %s emergency with %s priority", t, prio),
			fmt.Sprintf("Analysis confidence: %d%%", int(math.Round(conf*100))),
			fmt.Sprintf("Estimated %d people affected", people),
			"Recommended response time: " + window,
			"Key factors: " + strings.Join([]string{factor, "weather conditions", "resource availability"}, ", "),
		},
	}
}

func responseWindow(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return "5-10 mins"
	case model.PriorityHigh:
		return "15-30 mins"
	default:
		return "30-60 mins"
	}
}
