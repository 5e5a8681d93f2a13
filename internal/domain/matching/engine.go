// Package matching ranks volunteers for an emergency.
//
// Every volunteer gets five component scores in [0,1]: skill overlap with the
// emergency type's requirements, proximity, availability, experience and
// rating. The aggregate is their weighted sum. Candidates are ordered by
// aggregate score descending with the volunteer id as tie-breaker, truncated
// to top-K and annotated with confidence, travel estimates and a short
// explanation.
//
// An Engine is immutable after New and safe for concurrent use. Matching is
// deterministic: identical requests produce identical results regardless of
// the order in which candidates were scored.
package matching

import (
	"fmt"
	"strings"

	"github.com/okian/relief/internal/domain/dedupe"
	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/model"
	"github.com/okian/relief/internal/domain/ranking"
)

// Engine scores and ranks volunteers under one validated Config.
type Engine struct {
	cfg        Config
	skills     map[model.EmergencyType][]string
	places     *geo.Gazetteer
	confidence confidenceFunc
}

// New validates cfg and builds an engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:        cfg,
		skills:     make(map[model.EmergencyType][]string, len(cfg.SkillMap)),
		places:     geo.NewGazetteer(nil),
		confidence: newConfidence(cfg),
	}
	for t, skills := range cfg.SkillMap {
		e.skills[model.EmergencyType(strings.ToLower(strings.TrimSpace(string(t))))] = normalizeRequired(skills)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Match runs Prepare, Score and Rank sequentially.
func (e *Engine) Match(req Request) (Result, error) {
	plan, err := e.Prepare(req)
	if err != nil {
		return Result{}, err
	}
	return e.Rank(plan, e.ScoreAll(plan))
}

// Prepare normalizes the emergency and filters the pool. Volunteers without
// an id, with a repeated id or without a resolvable location are skipped and
// reported; the first valid entry for an id wins.
func (e *Engine) Prepare(req Request) (Plan, error) {
	em := req.Emergency
	point, ok := em.Location.Resolve(e.places)
	if !ok {
		if em.Location.IsZero() {
			return Plan{}, fmt.Errorf("%w: location is required", ErrInvalidEmergency)
		}
		return Plan{}, fmt.Errorf("%w: location could not be resolved", ErrInvalidEmergency)
	}

	t := model.ParseEmergencyType(string(em.Type))
	prio := em.Priority
	if prio < model.PriorityLow || prio > model.PriorityCritical {
		prio = model.PriorityMedium
	}
	plan := Plan{
		Target: Target{
			Type:     t,
			Priority: prio,
			Point:    point,
			Required: e.skills[t],
		},
		Candidates: make([]Candidate, 0, len(req.Volunteers)),
		Warnings:   []Warning{},
	}

	seen := dedupe.New(dedupe.WithCapacity(len(req.Volunteers)))
	for i := range req.Volunteers {
		v := &req.Volunteers[i]
		id := strings.TrimSpace(v.ID)
		if id == "" {
			plan.skip(i, "", SkipMissingID, "volunteer has no id")
			continue
		}
		if seen.SeenAndRecord(id) {
			plan.skip(i, id, SkipDuplicateID, "duplicate volunteer id")
			continue
		}
		vp, ok := v.Location.Resolve(e.places)
		if !ok {
			// a later entry with the same id may still be valid
			seen.Unrecord(id)
			plan.skip(i, id, SkipMissingLocation, "volunteer location missing or unresolvable")
			continue
		}
		skills := v.NormalizedSkills()
		have := make(map[string]struct{}, len(skills))
		for _, s := range skills {
			have[s] = struct{}{}
		}
		plan.Candidates = append(plan.Candidates, Candidate{
			ID:        id,
			Index:     i,
			Volunteer: v,
			Point:     vp,
			Skills:    have,
		})
	}
	return plan, nil
}

func (p *Plan) skip(index int, id string, reason SkipReason, msg string) {
	p.Skipped++
	p.Warnings = append(p.Warnings, Warning{Index: index, VolunteerID: id, Reason: reason, Message: msg})
}

// Score computes one candidate's component and aggregate scores. It is pure
// and may be called from any goroutine.
func (e *Engine) Score(t Target, c Candidate) Scored {
	skill, matches := skillScore(t.Required, c.Skills, e.cfg.UnknownSkillScore)
	km := t.Point.DistanceKm(c.Point)
	b := Breakdown{
		Skill:        skill,
		Distance:     proximityScore(km, e.cfg.MaxDistanceKm),
		Availability: availabilityScore(c.Volunteer.Status, e.cfg.AvailabilityFallback),
		Experience:   experienceScore(c.Volunteer.CompletedMissions, e.cfg.ExperienceCap),
		Rating:       ratingScore(c.Volunteer.Rating, e.cfg.DefaultRating),
	}
	w := e.cfg.Weights
	score := w.Skill*b.Skill +
		w.Distance*b.Distance +
		w.Availability*b.Availability +
		w.Experience*b.Experience +
		w.Rating*b.Rating
	return Scored{
		Candidate:    c,
		Breakdown:    b,
		Score:        roundScore(clamp01(score)),
		DistanceKm:   km,
		SkillMatches: matches,
	}
}

// ScoreAll scores every candidate of the plan in order.
func (e *Engine) ScoreAll(plan Plan) []Scored {
	out := make([]Scored, len(plan.Candidates))
	for i, c := range plan.Candidates {
		out[i] = e.Score(plan.Target, c)
	}
	return out
}

// Rank orders scored candidates, truncates to top-K and builds the
// recommendations. The order of scored does not affect the result.
func (e *Engine) Rank(plan Plan, scored []Scored) (Result, error) {
	res := Result{
		Recommendations: []Recommendation{},
		Considered:      len(scored),
		Skipped:         plan.Skipped,
		Warnings:        plan.Warnings,
	}
	if res.Warnings == nil {
		res.Warnings = []Warning{}
	}
	if len(scored) == 0 {
		return res, nil
	}

	r := ranking.New(ranking.WithCapacity(len(scored)))
	for i := range scored {
		if err := r.Insert(scored[i].Candidate.ID, scored[i].Score, i); err != nil {
			return Result{}, fmt.Errorf("rank %q: %w", scored[i].Candidate.ID, err)
		}
	}
	entries, err := r.TopN(e.cfg.TopK)
	if err != nil {
		return Result{}, err
	}

	res.Recommendations = make([]Recommendation, len(entries))
	for pos, en := range entries {
		s := scored[en.Ref]
		final := clamp01(s.Score - e.cfg.DecayPerRank*float64(pos))
		v := s.Candidate.Volunteer
		res.Recommendations[pos] = Recommendation{
			VolunteerID:          s.Candidate.ID,
			Name:                 strings.TrimSpace(v.Name),
			Position:             pos + 1,
			Rank:                 en.Rank,
			Score:                final,
			Confidence:           e.confidence(final, s.Breakdown),
			SkillMatches:         s.SkillMatches,
			SkillMatchPercentage: skillPercentage(s.Breakdown.Skill),
			DistanceKm:           s.DistanceKm,
			Distance:             formatDistance(s.DistanceKm),
			EstimatedArrival:     estimateArrival(s.DistanceKm, e.cfg.TravelSpeedKmh, pos),
			Reasoning:            reasoning(final, plan.Target.Type, v, s.SkillMatches),
			Breakdown:            s.Breakdown,
			Volunteer:            v,
		}
	}
	return res, nil
}

// normalizeRequired lowercases and deduplicates a requirement list, keeping order.
func normalizeRequired(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		k := model.NormalizeSkill(s)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
