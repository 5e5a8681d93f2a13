package matching

import (
	"fmt"
	"math"

	"github.com/okian/relief/internal/domain/model"
)

// weightSumTolerance is how far the weight sum may drift from 1.0.
const weightSumTolerance = 0.001

// Weights are the named coefficients of the aggregate score.
type Weights struct {
	Skill        float64 `json:"skill"`
	Distance     float64 `json:"distance"`
	Availability float64 `json:"availability"`
	Experience   float64 `json:"experience"`
	Rating       float64 `json:"rating"`
}

type namedWeight struct {
	name  string
	value float64
}

func (w Weights) named() []namedWeight {
	return []namedWeight{
		{"skill", w.Skill},
		{"distance", w.Distance},
		{"availability", w.Availability},
		{"experience", w.Experience},
		{"rating", w.Rating},
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Skill + w.Distance + w.Availability + w.Experience + w.Rating
}

// Validate checks that every weight is finite and non-negative and that they
// sum to 1.0 within tolerance. Weights are never renormalized.
func (w Weights) Validate() error {
	for _, nw := range w.named() {
		if math.IsNaN(nw.value) || math.IsInf(nw.value, 0) || nw.value < 0 {
			return fmt.Errorf("%w: weight %q must be a finite number >= 0, got %v", ErrInvalidConfig, nw.name, nw.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0 (+/- %.3f), got %.4f", ErrInvalidConfig, weightSumTolerance, sum)
	}
	return nil
}

// ConfidenceStrategy names how confidence is derived from a scored candidate.
type ConfidenceStrategy string

// Confidence strategies.
const (
	// ConfidenceScaled is the final score multiplied by ConfidenceScale.
	ConfidenceScaled ConfidenceStrategy = "scaled"
	// ConfidenceConsensus rewards candidates whose components agree:
	// 0.5*mean(components) + 0.5*(1 - (max - min)).
	ConfidenceConsensus ConfidenceStrategy = "consensus"
)

// Config holds every tunable of the scoring model.
type Config struct {
	Weights Weights

	// TopK bounds the number of recommendations returned.
	TopK int
	// DecayPerRank is subtracted once per list position after ordering.
	DecayPerRank float64

	// ExperienceCap is the mission count at which experience saturates.
	ExperienceCap int
	// DefaultRating substitutes a missing rating (0..5).
	DefaultRating float64
	// AvailabilityFallback scores any status other than available.
	AvailabilityFallback float64
	// UnknownSkillScore is used when the emergency type has no skill requirements.
	UnknownSkillScore float64

	// MaxDistanceKm is where the proximity score reaches zero.
	MaxDistanceKm float64
	// TravelSpeedKmh estimates arrival time; 0 switches to a rank-based estimate.
	TravelSpeedKmh float64

	Confidence      ConfidenceStrategy
	ConfidenceScale float64

	// SkillMap lists the required skills per emergency type, most important first.
	SkillMap map[model.EmergencyType][]string
}

// DefaultSkillMap returns the built-in emergency type -> skills table.
func DefaultSkillMap() map[model.EmergencyType][]string {
	return map[model.EmergencyType][]string{
		model.EmergencyMedical: {"medical", "rescue", "first_aid"},
		model.EmergencyFood:    {"food", "logistics", "distribution"},
		model.EmergencyWater:   {"water", "sanitation", "logistics"},
		model.EmergencyShelter: {"shelter", "construction", "logistics"},
	}
}

// DefaultConfig is the full scoring profile.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Skill:        0.35,
			Distance:     0.25,
			Availability: 0.20,
			Experience:   0.10,
			Rating:       0.10,
		},
		TopK:                 10,
		DecayPerRank:         0,
		ExperienceCap:        50,
		DefaultRating:        4.0,
		AvailabilityFallback: 0.3,
		UnknownSkillScore:    0.5,
		MaxDistanceKm:        50,
		TravelSpeedKmh:       30,
		Confidence:           ConfidenceScaled,
		ConfidenceScale:      0.95,
		SkillMap:             DefaultSkillMap(),
	}
}

// QuickConfig is the lightweight profile: no distance term, a short list and
// positional decay with rank-based arrival estimates.
func QuickConfig() Config {
	c := DefaultConfig()
	c.Weights = Weights{Skill: 0.4, Distance: 0, Availability: 0.2, Experience: 0.2, Rating: 0.2}
	c.TopK = 5
	c.DecayPerRank = 0.05
	c.TravelSpeedKmh = 0
	return c
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	switch {
	case c.TopK <= 0:
		return fmt.Errorf("%w: topK must be > 0, got %d", ErrInvalidConfig, c.TopK)
	case !finite(c.DecayPerRank) || c.DecayPerRank < 0:
		return fmt.Errorf("%w: decayPerRank must be >= 0, got %v", ErrInvalidConfig, c.DecayPerRank)
	case c.ExperienceCap <= 0:
		return fmt.Errorf("%w: experienceCap must be > 0, got %d", ErrInvalidConfig, c.ExperienceCap)
	case !finite(c.DefaultRating) || c.DefaultRating < 0 || c.DefaultRating > maxRating:
		return fmt.Errorf("%w: defaultRating must be in [0,5], got %v", ErrInvalidConfig, c.DefaultRating)
	case !finite(c.AvailabilityFallback) || c.AvailabilityFallback < 0 || c.AvailabilityFallback >= 1:
		return fmt.Errorf("%w: availabilityFallback must be in [0,1), got %v", ErrInvalidConfig, c.AvailabilityFallback)
	case !finite(c.UnknownSkillScore) || c.UnknownSkillScore < 0 || c.UnknownSkillScore > 1:
		return fmt.Errorf("%w: unknownSkillScore must be in [0,1], got %v", ErrInvalidConfig, c.UnknownSkillScore)
	case !finite(c.MaxDistanceKm) || c.MaxDistanceKm <= 0:
		return fmt.Errorf("%w: maxDistanceKm must be > 0, got %v", ErrInvalidConfig, c.MaxDistanceKm)
	case !finite(c.TravelSpeedKmh) || c.TravelSpeedKmh < 0:
		return fmt.Errorf("%w: travelSpeedKmh must be >= 0, got %v", ErrInvalidConfig, c.TravelSpeedKmh)
	case c.Confidence != ConfidenceScaled && c.Confidence != ConfidenceConsensus:
		return fmt.Errorf("%w: unknown confidence strategy %q", ErrInvalidConfig, c.Confidence)
	case !finite(c.ConfidenceScale) || c.ConfidenceScale <= 0 || c.ConfidenceScale > 1:
		return fmt.Errorf("%w: confidenceScale must be in (0,1], got %v", ErrInvalidConfig, c.ConfidenceScale)
	}
	for t, skills := range c.SkillMap {
		if len(normalizeRequired(skills)) == 0 {
			return fmt.Errorf("%w: skill map entry %q must list at least one skill", ErrInvalidConfig, t)
		}
	}
	return nil
}

// Overrides adjusts a profile for a single request. Nil fields keep the
// profile's value.
type Overrides struct {
	Weights       *Weights
	TopK          *int
	DecayPerRank  *float64
	ExperienceCap *int
	Confidence    *ConfidenceStrategy
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Weights == nil && o.TopK == nil && o.DecayPerRank == nil &&
		o.ExperienceCap == nil && o.Confidence == nil
}

// With returns a copy of c with the overrides applied. The result still needs
// validation.
func (c Config) With(o Overrides) Config {
	if o.Weights != nil {
		c.Weights = *o.Weights
	}
	if o.TopK != nil {
		c.TopK = *o.TopK
	}
	if o.DecayPerRank != nil {
		c.DecayPerRank = *o.DecayPerRank
	}
	if o.ExperienceCap != nil {
		c.ExperienceCap = *o.ExperienceCap
	}
	if o.Confidence != nil {
		c.Confidence = *o.Confidence
	}
	return c
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
