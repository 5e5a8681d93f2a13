// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/model"
)

// Built-in profile names.
const (
	ProfileStandard = "standard"
	ProfileQuick    = "quick"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// ParallelThreshold is the candidate count from which scoring moves to the
	// worker pool. Zero disables the pool.
	ParallelThreshold int `koanf:"parallel_threshold"`

	// MaxVolunteers caps the pool size of a single request.
	MaxVolunteers int `koanf:"max_volunteers"`

	// DefaultProfile is used when a request names none.
	DefaultProfile string `koanf:"default_profile"`

	// Profiles tune the scoring model by name. Missing fields inherit from the
	// built-in profile of the same name, or from standard.
	Profiles map[string]Profile `koanf:"profiles"`

	// Places extends the built-in gazetteer.
	Places map[string]Place `koanf:"places"`
}

// Weights mirrors matching.Weights for file-based configuration.
type Weights struct {
	Skill        float64 `koanf:"skill"`
	Distance     float64 `koanf:"distance"`
	Availability float64 `koanf:"availability"`
	Experience   float64 `koanf:"experience"`
	Rating       float64 `koanf:"rating"`
}

// Profile is a partial scoring configuration. Nil fields inherit.
type Profile struct {
	Weights              *Weights            `koanf:"weights"`
	TopK                 *int                `koanf:"top_k"`
	DecayPerRank         *float64            `koanf:"decay_per_rank"`
	ExperienceCap        *int                `koanf:"experience_cap"`
	DefaultRating        *float64            `koanf:"default_rating"`
	AvailabilityFallback *float64            `koanf:"availability_fallback"`
	UnknownSkillScore    *float64            `koanf:"unknown_skill_score"`
	MaxDistanceKm        *float64            `koanf:"max_distance_km"`
	TravelSpeedKmh       *float64            `koanf:"travel_speed_kmh"`
	Confidence           string              `koanf:"confidence"`
	ConfidenceScale      *float64            `koanf:"confidence_scale"`
	SkillMap             map[string][]string `koanf:"skill_map"`
}

// Place is a named coordinate.
type Place struct {
	Lat float64 `koanf:"lat"`
	Lng float64 `koanf:"lng"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU() * 2,
		ParallelThreshold: 256,
		MaxVolunteers:     10_000,
		DefaultProfile:    ProfileStandard,
	}
}

// builtin returns the base scoring config for a profile name.
func builtin(name string) matching.Config {
	if name == ProfileQuick {
		return matching.QuickConfig()
	}
	return matching.DefaultConfig()
}

// Apply layers the set fields of p over base.
func (p Profile) Apply(base matching.Config) matching.Config {
	c := base
	if p.Weights != nil {
		c.Weights = matching.Weights(*p.Weights)
	}
	if p.TopK != nil {
		c.TopK = *p.TopK
	}
	if p.DecayPerRank != nil {
		c.DecayPerRank = *p.DecayPerRank
	}
	if p.ExperienceCap != nil {
		c.ExperienceCap = *p.ExperienceCap
	}
	if p.DefaultRating != nil {
		c.DefaultRating = *p.DefaultRating
	}
	if p.AvailabilityFallback != nil {
		c.AvailabilityFallback = *p.AvailabilityFallback
	}
	if p.UnknownSkillScore != nil {
		c.UnknownSkillScore = *p.UnknownSkillScore
	}
	if p.MaxDistanceKm != nil {
		c.MaxDistanceKm = *p.MaxDistanceKm
	}
	if p.TravelSpeedKmh != nil {
		c.TravelSpeedKmh = *p.TravelSpeedKmh
	}
	if s := strings.TrimSpace(p.Confidence); s != "" {
		c.Confidence = matching.ConfidenceStrategy(strings.ToLower(s))
	}
	if p.ConfidenceScale != nil {
		c.ConfidenceScale = *p.ConfidenceScale
	}
	if len(p.SkillMap) > 0 {
		merged := make(map[model.EmergencyType][]string, len(base.SkillMap)+len(p.SkillMap))
		for t, skills := range base.SkillMap {
			merged[t] = skills
		}
		for t, skills := range p.SkillMap {
			merged[model.EmergencyType(strings.ToLower(strings.TrimSpace(t)))] = skills
		}
		c.SkillMap = merged
	}
	return c
}

// MatchingProfiles resolves and validates every profile, including the
// built-in ones.
func (c *Config) MatchingProfiles() (map[string]matching.Config, error) {
	out := map[string]matching.Config{
		ProfileStandard: matching.DefaultConfig(),
		ProfileQuick:    matching.QuickConfig(),
	}
	for _, name := range c.ProfileNames() {
		p, ok := c.Profiles[name]
		if !ok {
			continue
		}
		out[name] = p.Apply(builtin(name))
	}
	for name, mc := range out {
		if err := mc.Validate(); err != nil {
			return nil, fmt.Errorf("%w: profile %q: %w", ErrInvalidConfig, name, err)
		}
	}
	return out, nil
}

// ProfileNames lists the configured and built-in profile names, sorted.
func (c *Config) ProfileNames() []string {
	set := map[string]struct{}{ProfileStandard: {}, ProfileQuick: {}}
	for name := range c.Profiles {
		set[name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Gazetteer returns the built-in places extended by the configured ones.
func (c *Config) Gazetteer() *geo.Gazetteer {
	places := geo.DefaultPlaces()
	for name, p := range c.Places {
		places[name] = geo.Point{Lat: p.Lat, Lng: p.Lng}
	}
	return geo.NewGazetteer(places)
}

// Validate checks process-level settings and every profile.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be > 0, got %d", ErrInvalidConfig, c.QueueSize)
	case c.ParallelThreshold < 0:
		return fmt.Errorf("%w: parallel_threshold must be >= 0, got %d", ErrInvalidConfig, c.ParallelThreshold)
	case c.MaxVolunteers <= 0:
		return fmt.Errorf("%w: max_volunteers must be > 0, got %d", ErrInvalidConfig, c.MaxVolunteers)
	}
	for name, p := range c.Places {
		if !(geo.Point{Lat: p.Lat, Lng: p.Lng}).Valid() {
			return fmt.Errorf("%w %q has invalid coordinates %v,%v", ErrInvalidPlace, name, p.Lat, p.Lng)
		}
	}
	profiles, err := c.MatchingProfiles()
	if err != nil {
		return err
	}
	if _, ok := profiles[c.DefaultProfile]; !ok {
		return fmt.Errorf("%w: default_profile %q", ErrUndefinedProfile, c.DefaultProfile)
	}
	return nil
}
