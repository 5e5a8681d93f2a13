package triage

import "strings"

// Option applies a configuration option to the Responder.
type Option func(*Responder)

// WithAssistantName sets the name used in the greeting.
func WithAssistantName(name string) Option {
	return func(r *Responder) {
		if name = strings.TrimSpace(name); name != "" {
			r.assistant = name
		}
	}
}
