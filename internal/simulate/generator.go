package simulate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/types"
)

// Spread of generated coordinates around a place, in degrees.
const (
	emergencySpread = 0.05
	volunteerSpread = 0.4
	maxMissions     = 80
	minRating       = 2.5
	ratingRange     = 2.5
	cloneRate       = 0.1
)

// Noise kinds, picked uniformly for a noisy volunteer.
const (
	noiseMissingID = iota
	noiseDuplicateID
	noiseNoLocation
	noiseKinds
)

var (
	emergencyTypes = []string{"medical", "food", "water", "shelter", "fire", "flood", "earthquake"} //nolint:gochecknoglobals // fixed table
	priorities     = []string{"low", "medium", "high", "critical"}                                   //nolint:gochecknoglobals // fixed table
	statuses       = []string{"available", "available", "available", "busy", "offline"}              //nolint:gochecknoglobals // fixed table
	skillPool      = []string{                                                                       //nolint:gochecknoglobals // fixed table
		"medical", "rescue", "first_aid", "food", "logistics", "distribution",
		"water", "sanitation", "shelter", "construction", "driving", "translation",
	}
)

// Generator produces reproducible match requests. It is not safe for
// concurrent use; create one per goroutine.
type Generator struct {
	rng    *rand.Rand
	places []string
	points map[string]geo.Point
	noise  float64
}

// NewGenerator seeds a generator. Volunteer ids are derived from the same
// source, so equal seeds give byte-identical requests.
func NewGenerator(seed int64, noise float64) *Generator {
	points := geo.DefaultPlaces()
	places := make([]string, 0, len(points))
	for name := range points {
		places = append(places, name)
	}
	sort.Strings(places)
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // reproducible load, not security
		places: places,
		points: points,
		noise:  noise,
	}
}

// Request builds one emergency with a pool of n volunteers asking for topK.
func (g *Generator) Request(n, topK int, profile string) types.MatchRequest {
	em := g.emergency()
	vols := make([]types.VolunteerPayload, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case len(vols) > 0 && g.rng.Float64() < cloneRate:
			// same attributes under a new id, to produce score ties
			c := vols[g.rng.Intn(len(vols))]
			c.ID = g.id()
			vols = append(vols, c)
		case g.rng.Float64() < g.noise:
			vols = append(vols, g.noisy(vols))
		default:
			vols = append(vols, g.volunteer())
		}
	}
	k := topK
	return types.MatchRequest{
		Emergency:  &em,
		Volunteers: vols,
		TopK:       &k,
		Profile:    profile,
	}
}

func (g *Generator) emergency() types.EmergencyPayload {
	em := types.EmergencyPayload{
		ID:       g.id(),
		Type:     emergencyTypes[g.rng.Intn(len(emergencyTypes))],
		Priority: priorities[g.rng.Intn(len(priorities))],
		Victims:  g.rng.Intn(50),
	}
	place := g.places[g.rng.Intn(len(g.places))]
	if g.rng.Intn(2) == 0 {
		em.Area = place
		return em
	}
	lat, lng := g.near(place, emergencySpread)
	em.Lat, em.Lng = &lat, &lng
	return em
}

func (g *Generator) volunteer() types.VolunteerPayload {
	skills := make([]string, 1+g.rng.Intn(3))
	for i := range skills {
		skills[i] = skillPool[g.rng.Intn(len(skillPool))]
	}
	v := types.VolunteerPayload{
		ID:                g.id(),
		Skills:            skills,
		Status:            statuses[g.rng.Intn(len(statuses))],
		CompletedMissions: g.rng.Intn(maxMissions),
	}
	if g.rng.Intn(4) > 0 {
		r := math.Round((minRating+g.rng.Float64()*ratingRange)*10) / 10
		v.Rating = &r
	}
	place := g.places[g.rng.Intn(len(g.places))]
	if g.rng.Intn(5) == 0 {
		v.Area = place
		return v
	}
	lat, lng := g.near(place, volunteerSpread)
	v.Lat, v.Lng = &lat, &lng
	return v
}

// noisy returns a volunteer the engine has to skip.
func (g *Generator) noisy(prev []types.VolunteerPayload) types.VolunteerPayload {
	v := g.volunteer()
	switch g.rng.Intn(noiseKinds) {
	case noiseMissingID:
		v.ID = ""
	case noiseDuplicateID:
		if len(prev) > 0 {
			v.ID = prev[g.rng.Intn(len(prev))].ID
		}
	case noiseNoLocation:
		v.Lat, v.Lng, v.Area = nil, nil, ""
	}
	return v
}

func (g *Generator) near(place string, spread float64) (float64, float64) {
	p := g.points[place]
	return p.Lat + (g.rng.Float64()*2-1)*spread, p.Lng + (g.rng.Float64()*2-1)*spread
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		// math/rand never fails to read
		panic(err)
	}
	return id.String()
}
