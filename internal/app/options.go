package service

import (
	"strings"

	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the scoring job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithParallelThreshold sets the candidate count from which scoring is fanned
// out to the worker pool. Zero keeps all scoring inline.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.parallelThreshold = n
		}
	}
}

// WithMaxVolunteers caps the pool size of one request.
func WithMaxVolunteers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxVolunteers = n
		}
	}
}

// WithProfiles replaces the scoring profiles and names the default one.
func WithProfiles(profiles map[string]matching.Config, defaultProfile string) Option {
	return func(s *Service) {
		if len(profiles) == 0 {
			return
		}
		s.profiles = make(map[string]matching.Config, len(profiles))
		for name, cfg := range profiles {
			s.profiles[normalizeProfile(name)] = cfg
		}
		if p := normalizeProfile(defaultProfile); p != "" {
			s.defaultProfile = p
		}
	}
}

// WithGazetteer sets the place-name resolver shared by all profiles.
func WithGazetteer(g *geo.Gazetteer) Option {
	return func(s *Service) {
		if g != nil {
			s.places = g
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func normalizeProfile(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
