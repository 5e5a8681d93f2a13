package geo

import "strings"

// Gazetteer resolves place names to coordinates. Lookups are case-insensitive
// and ignore surrounding whitespace.
type Gazetteer struct {
	places map[string]Point
}

// DefaultPlaces are the service areas known out of the box.
func DefaultPlaces() map[string]Point {
	return map[string]Point{
		"central delhi": {Lat: 28.6139, Lng: 77.2090},
		"noida":         {Lat: 28.5355, Lng: 77.3910},
		"gurgaon":       {Lat: 28.4595, Lng: 77.0266},
		"faridabad":     {Lat: 28.4089, Lng: 77.3178},
		"ghaziabad":     {Lat: 28.6692, Lng: 77.4538},
	}
}

// NewGazetteer builds a gazetteer from name -> point. Invalid points are dropped.
func NewGazetteer(places map[string]Point) *Gazetteer {
	g := &Gazetteer{places: make(map[string]Point, len(places))}
	for name, p := range places {
		key := normalizePlace(name)
		if key == "" || !p.Valid() {
			continue
		}
		g.places[key] = p
	}
	return g
}

// Resolve returns the coordinates of a named place.
func (g *Gazetteer) Resolve(name string) (Point, bool) {
	if g == nil {
		return Point{}, false
	}
	p, ok := g.places[normalizePlace(name)]
	return p, ok
}

// Len returns the number of known places.
func (g *Gazetteer) Len() int {
	if g == nil {
		return 0
	}
	return len(g.places)
}

func normalizePlace(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
