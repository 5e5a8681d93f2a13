package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/relief/internal/domain/types"
	"github.com/okian/relief/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrViolations is returned when any response broke an ordering property.
var ErrViolations = errors.New("ranking properties violated")

// Report is the outcome of Run.
type Report struct {
	Stats      Stats
	Violations []Violation
}

type scenarioResult struct {
	index      int
	req        types.MatchRequest
	resp       types.MatchResponse
	latency    time.Duration
	err        error
	violations []Violation
}

// Run generates cfg.Scenarios requests and sends each one twice to target,
// verifying every response and that both runs agree. The report is returned
// even when it carries violations; the error then wraps ErrViolations.
func Run(ctx context.Context, cfg Config, target Target) (*Report, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	log := logger.Get().Named("simulate")
	log.Info(ctx, "starting simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("scenarios", cfg.Scenarios),
		logger.Int("volunteers", cfg.Volunteers),
		logger.Int("topK", cfg.TopK),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
		logger.Float64("noise", cfg.Noise))

	rep := &Report{Stats: Stats{StartTime: time.Now()}}
	requests := make([]types.MatchRequest, cfg.Scenarios)

	indices := make(chan int, cfg.Workers*2)
	results := make(chan scenarioResult, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results <- runScenario(ctx, cfg, target, i)
			}
		}()
	}
	go func() {
		defer close(indices)
		for i := 0; i < cfg.Scenarios; i++ {
			select {
			case <-ctx.Done():
				return
			case indices <- i:
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		requests[r.index] = r.req
		rep.Stats.Scenarios++
		if r.err != nil {
			rep.Stats.Failed++
			log.Warn(ctx, "scenario failed", logger.Int("scenario", r.index), logger.Error(r.err))
			continue
		}
		rep.Stats.Matches += 2
		rep.Stats.TotalLatency += r.latency
		if half := r.latency / 2; half > rep.Stats.MaxLatency {
			rep.Stats.MaxLatency = half
		}
		rep.Stats.Considered += r.resp.Considered
		rep.Stats.Skipped += r.resp.Skipped
		rep.Stats.Recommendations += len(r.resp.Recommendations)
		rep.Violations = append(rep.Violations, r.violations...)
		if cfg.Verbose {
			for _, v := range r.violations {
				log.Warn(ctx, "violation", logger.String("detail", v.String()))
			}
		}
	}
	rep.Stats.Violations = len(rep.Violations)
	rep.Stats.EndTime = time.Now()
	rep.Stats.Duration = rep.Stats.EndTime.Sub(rep.Stats.StartTime)

	if cfg.OutputFile != "" {
		if err := saveRequests(cfg.OutputFile, requests); err != nil {
			log.Warn(ctx, "failed to save requests to file", logger.Error(err))
		} else {
			log.Info(ctx, "requests saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	log.Info(ctx, "simulation finished",
		logger.Int("matches", rep.Stats.Matches),
		logger.Int("failed", rep.Stats.Failed),
		logger.Int("violations", rep.Stats.Violations),
		logger.Duration("duration", rep.Stats.Duration),
		logger.Float64("matchesPerSecond", rep.Stats.MatchesPerSecond()))

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("simulation interrupted: %w", err)
	}
	if rep.Stats.Violations > 0 {
		return rep, fmt.Errorf("%w: %d across %d scenarios", ErrViolations, rep.Stats.Violations, rep.Stats.Scenarios)
	}
	return rep, nil
}

// runScenario derives its seed from the scenario index, so the request set
// does not depend on worker scheduling.
func runScenario(ctx context.Context, cfg Config, target Target, i int) scenarioResult {
	req := NewGenerator(cfg.Seed+int64(i), cfg.Noise).Request(cfg.Volunteers, cfg.TopK, cfg.Profile)
	res := scenarioResult{index: i, req: req}

	start := time.Now()
	first, err := target.MatchRequest(ctx, req)
	if err != nil {
		res.err = err
		return res
	}
	second, err := target.MatchRequest(ctx, req)
	if err != nil {
		res.err = err
		return res
	}
	res.latency = time.Since(start)
	res.resp = first
	res.violations = append(Verify(i, req, first), Compare(i, first, second)...)
	return res
}

func saveRequests(filename string, requests []types.MatchRequest) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal requests: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
