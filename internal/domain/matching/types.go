package matching

import (
	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/model"
)

// Request is one matching call: an emergency and the candidate pool.
type Request struct {
	Emergency  model.Emergency
	Volunteers []model.Volunteer
}

// Target is the normalized emergency the pool is scored against.
type Target struct {
	Type     model.EmergencyType
	Priority model.Priority
	Point    geo.Point
	Required []string
}

// Candidate is a validated volunteer ready for scoring. Volunteer points into
// the request's slice and must not be modified.
type Candidate struct {
	ID        string
	Index     int
	Volunteer *model.Volunteer
	Point     geo.Point
	Skills    map[string]struct{}
}

// Plan is the output of Prepare: what will be scored and what was dropped.
type Plan struct {
	Target     Target
	Candidates []Candidate
	Skipped    int
	Warnings   []Warning
}

// Breakdown holds the per-dimension component scores, each in [0,1].
type Breakdown struct {
	Skill        float64 `json:"skill"`
	Distance     float64 `json:"distance"`
	Availability float64 `json:"availability"`
	Experience   float64 `json:"experience"`
	Rating       float64 `json:"rating"`
}

func (b Breakdown) components() [5]float64 {
	return [5]float64{b.Skill, b.Distance, b.Availability, b.Experience, b.Rating}
}

// Scored is a candidate with its component and aggregate scores.
type Scored struct {
	Candidate    Candidate
	Breakdown    Breakdown
	Score        float64
	DistanceKm   float64
	SkillMatches []string
}

// Recommendation is one entry of the ranked result.
type Recommendation struct {
	VolunteerID string `json:"volunteerId"`
	Name        string `json:"name,omitempty"`
	// Position is the 1-based place in the list.
	Position int `json:"position"`
	// Rank is shared by candidates whose aggregate scores tie.
	Rank                 int              `json:"rank"`
	Score                float64          `json:"score"`
	Confidence           float64          `json:"confidence"`
	SkillMatches         []string         `json:"skillMatches"`
	SkillMatchPercentage int              `json:"skillMatchPercentage"`
	DistanceKm           float64          `json:"distanceKm"`
	Distance             string           `json:"distance"`
	EstimatedArrival     string           `json:"estimatedArrival"`
	Reasoning            string           `json:"reasoning"`
	Breakdown            Breakdown        `json:"breakdown"`
	Volunteer            *model.Volunteer `json:"volunteer"`
}

// Result is the outcome of Match.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Considered      int              `json:"considered"`
	Skipped         int              `json:"skipped"`
	Warnings        []Warning        `json:"warnings"`
}
