// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/relief/internal/adapters/mq/queue"
	workerpool "github.com/okian/relief/internal/adapters/mq/worker"
	"github.com/okian/relief/internal/domain/classify"
	"github.com/okian/relief/internal/domain/geo"
	"github.com/okian/relief/internal/domain/matching"
	"github.com/okian/relief/internal/domain/triage"
	"github.com/okian/relief/internal/domain/types"
	"github.com/okian/relief/pkg/logger"
	"github.com/okian/relief/pkg/metrics"
)

const (
	defaultQueueSize         = 10_000
	defaultParallelThreshold = 256
	defaultMaxVolunteers     = 10_000
	stopTimeout              = 10 * time.Second

	modeInline = "inline"
	modePool   = "pool"
)

// Service matches volunteers to emergencies and answers the auxiliary
// classification and chat endpoints.
type Service struct {
	mu sync.RWMutex

	// Core components
	engines    map[string]*matching.Engine
	places     *geo.Gazetteer
	classifier *classify.Classifier
	responder  *triage.Responder
	jobs       *jobqueue.InMemoryQueue
	pool       *workerpool.Pool

	// Configuration
	profiles          map[string]matching.Config
	defaultProfile    string
	workerCount       int
	queueSize         int
	parallelThreshold int
	maxVolunteers     int

	// State
	started bool

	// Counters
	matchCount      atomic.Int64
	inlineRuns      atomic.Int64
	poolRuns        atomic.Int64
	inlineFallbacks atomic.Int64
	considered      atomic.Int64
	skipped         atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with the built-in profiles.
func New(opts ...Option) *Service {
	s := &Service{
		profiles: map[string]matching.Config{
			"standard": matching.DefaultConfig(),
			"quick":    matching.QuickConfig(),
		},
		defaultProfile:    "standard",
		places:            geo.NewGazetteer(geo.DefaultPlaces()),
		workerCount:       runtime.NumCPU() * 2,
		queueSize:         defaultQueueSize,
		parallelThreshold: defaultParallelThreshold,
		maxVolunteers:     defaultMaxVolunteers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates every profile and starts the scoring worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if _, ok := s.profiles[s.defaultProfile]; !ok {
		return fmt.Errorf("%w: default profile %q", ErrUnknownProfile, s.defaultProfile)
	}

	engines := make(map[string]*matching.Engine, len(s.profiles))
	for name, cfg := range s.profiles {
		e, err := matching.New(cfg, matching.WithGazetteer(s.places))
		if err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		engines[name] = e
	}
	s.engines = engines
	s.classifier = classify.New()
	s.responder = triage.New()

	s.jobs = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobs, workerpool.WithLogger(s.logger))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("parallelThreshold", s.parallelThreshold),
		logger.String("defaultProfile", s.defaultProfile),
		logger.Int("places", s.places.Len()),
	)
	return nil
}

// Stop drains the worker pool. In-flight matches finish first.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping matching service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "matching service stopped")
}

// Match ranks the request's volunteers under the named profile. An empty
// profile selects the default; non-zero overrides build a one-off engine.
func (s *Service) Match(ctx context.Context, profile string, req matching.Request, o matching.Overrides) (types.MatchResponse, error) {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := normalizeProfile(profile)
	if name == "" {
		name = s.defaultProfile
	}

	resp, err := s.match(ctx, name, req, o)
	metrics.RecordMatch(name, outcome(err), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		return types.MatchResponse{}, err
	}
	s.logger.Debug(ctx, "match completed",
		logger.String("runId", resp.RunID),
		logger.String("profile", name),
		logger.Int("considered", resp.Considered),
		logger.Int("skipped", resp.Skipped),
		logger.Int("returned", len(resp.Recommendations)),
		logger.Duration("took", time.Since(start)),
	)
	return resp, nil
}

func (s *Service) match(ctx context.Context, name string, req matching.Request, o matching.Overrides) (types.MatchResponse, error) {
	if !s.started {
		return types.MatchResponse{}, ErrNotStarted
	}
	if n := len(req.Volunteers); n > s.maxVolunteers {
		return types.MatchResponse{}, fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooManyVolunteers, n, s.maxVolunteers)
	}
	engine, ok := s.engines[name]
	if !ok {
		return types.MatchResponse{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	if !o.IsZero() {
		var err error
		engine, err = matching.New(engine.Config().With(o), matching.WithGazetteer(s.places))
		if err != nil {
			return types.MatchResponse{}, err
		}
	}

	plan, err := engine.Prepare(req)
	if err != nil {
		return types.MatchResponse{}, err
	}
	scored, err := s.score(ctx, engine, plan)
	if err != nil {
		return types.MatchResponse{}, err
	}
	res, err := engine.Rank(plan, scored)
	if err != nil {
		return types.MatchResponse{}, err
	}

	s.matchCount.Add(1)
	s.considered.Add(int64(res.Considered))
	s.skipped.Add(int64(res.Skipped))
	metrics.RecordVolunteersConsidered(res.Considered)
	metrics.RecordRecommendations(len(res.Recommendations))
	for _, w := range res.Warnings {
		metrics.RecordVolunteerSkipped(string(w.Reason))
	}

	return types.MatchResponse{
		RunID:           uuid.NewString(),
		Profile:         name,
		EmergencyType:   plan.Target.Type,
		Priority:        plan.Target.Priority,
		Recommendations: res.Recommendations,
		Considered:      res.Considered,
		Skipped:         res.Skipped,
		Warnings:        res.Warnings,
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// score runs the candidates inline, or through the worker pool once the pool
// is large enough. Jobs the queue refuses are scored inline.
func (s *Service) score(ctx context.Context, engine *matching.Engine, plan matching.Plan) ([]matching.Scored, error) {
	n := len(plan.Candidates)
	if s.parallelThreshold == 0 || n < s.parallelThreshold {
		s.inlineRuns.Add(1)
		metrics.RecordScoringMode(modeInline)
		return engine.ScoreAll(plan), nil
	}
	s.poolRuns.Add(1)
	metrics.RecordScoringMode(modePool)

	out := make([]matching.Scored, n)
	done := make([]bool, n)
	reply := make(chan jobqueue.Outcome, n)
	jobs := make([]jobqueue.Job, n)
	for i, c := range plan.Candidates {
		jobs[i] = jobqueue.Job{Index: i, Scorer: engine, Target: plan.Target, Candidate: c, Reply: reply}
	}
	pending := 0
	select {
	case <-s.pool.Stopped():
		// no worker is left to drain the queue
	default:
		pending = s.jobs.Submit(ctx, jobs)
	}
	for i := pending; i < n; i++ {
		s.inlineFallbacks.Add(1)
		out[i] = engine.Score(plan.Target, plan.Candidates[i])
		done[i] = true
	}

	for pending > 0 {
		select {
		case o := <-reply:
			if !done[o.Index] {
				out[o.Index] = o.Scored
				done[o.Index] = true
				pending--
			}
		case <-ctx.Done():
			return nil, fmt.Errorf("scoring interrupted: %w", ctx.Err())
		case <-s.pool.Stopped():
			for i := range out {
				if !done[i] {
					out[i] = engine.Score(plan.Target, plan.Candidates[i])
					done[i] = true
				}
			}
			pending = 0
		}
	}
	return out, nil
}

// Classify derives type, priority and resource needs from a free-text report.
func (s *Service) Classify(ctx context.Context, in classify.Input) classify.Result {
	res := s.classifierOrDefault().Classify(in)
	metrics.RecordClassification(string(res.EmergencyType), res.SuggestedPriority.String())
	if s.logger != nil {
		s.logger.Debug(ctx, "emergency classified",
			logger.String("type", string(res.EmergencyType)),
			logger.String("priority", res.SuggestedPriority.String()),
		)
	}
	return res
}

// Chat triages one free-text message.
func (s *Service) Chat(_ context.Context, message string) triage.Reply {
	s.mu.RLock()
	r := s.responder
	s.mu.RUnlock()
	if r == nil {
		r = triage.New()
	}
	reply := r.Respond(message)
	metrics.RecordTriage(string(reply.Level))
	return reply
}

func (s *Service) classifierOrDefault() *classify.Classifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.classifier == nil {
		return classify.New()
	}
	return s.classifier
}

// Profiles lists the profile names, sorted.
func (s *Service) Profiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfile returns the profile used when a request names none.
func (s *Service) DefaultProfile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultProfile
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":              s.started,
		"workerCount":          s.workerCount,
		"queueSize":            s.queueSize,
		"parallelThreshold":    s.parallelThreshold,
		"maxVolunteers":        s.maxVolunteers,
		"defaultProfile":       s.defaultProfile,
		"matches":              s.matchCount.Load(),
		"inlineRuns":           s.inlineRuns.Load(),
		"poolRuns":             s.poolRuns.Load(),
		"inlineFallbacks":      s.inlineFallbacks.Load(),
		"volunteersConsidered": s.considered.Load(),
		"volunteersSkipped":    s.skipped.Load(),
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(context.Background())
		stats["activeWorkers"] = s.pool.Active()
	}
	return stats
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, matching.ErrInvalidEmergency):
		return "invalid_emergency"
	case errors.Is(err, matching.ErrInvalidConfig):
		return "invalid_options"
	case errors.Is(err, ErrUnknownProfile):
		return "unknown_profile"
	case errors.Is(err, ErrTooManyVolunteers):
		return "too_many_volunteers"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
