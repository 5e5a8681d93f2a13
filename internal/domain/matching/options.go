package matching

import "github.com/okian/relief/internal/domain/geo"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGazetteer resolves place-name locations. Without one only coordinates
// are accepted.
func WithGazetteer(g *geo.Gazetteer) Option {
	return func(e *Engine) {
		if g != nil {
			e.places = g
		}
	}
}
