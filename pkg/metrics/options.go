// Package metrics exposes the relief service's Prometheus collectors through
// package-level recorders backed by a private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option adjusts a Manager before its collectors are registered.
type Option func(*Manager)

// WithPrefix names every collector namespace_subsystem_*. Empty parts keep
// relief and matching.
func WithPrefix(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets shared by the match, HTTP,
// worker and GC histograms.
func WithLatencyBuckets(ms ...float64) Option {
	return func(m *Manager) {
		if len(ms) > 0 {
			m.histogramBuckets = ms
		}
	}
}

// WithRecommendationBuckets sets the buckets for recommendations per match.
// The largest useful bound is the biggest topK a profile allows.
func WithRecommendationBuckets(counts ...float64) Option {
	return func(m *Manager) {
		if len(counts) > 0 {
			m.recommendationBuckets = counts
		}
	}
}

// WithLabels attaches constant labels, such as deployment region, to every
// collector.
func WithLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.constLabels = labels
		}
	}
}

// WithRegistry registers the collectors on r instead of the default registerer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
