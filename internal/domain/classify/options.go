package classify

import (
	"github.com/okian/relief/internal/domain/keywords"
	"github.com/okian/relief/internal/domain/model"
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithTypeKeywords appends a keyword group for t. Built-in groups keep
// precedence.
func WithTypeKeywords(t model.EmergencyType, terms ...string) Option {
	return func(c *Classifier) {
		if len(terms) == 0 || !t.Known() {
			return
		}
		c.types = append(c.types, keywords.Group{Label: string(t), Terms: terms})
	}
}
