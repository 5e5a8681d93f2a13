package simulate

import (
	"errors"
	"fmt"
	"time"
)

// Defaults used when a Config field is left at its zero value.
const (
	DefaultScenarios  = 100
	DefaultVolunteers = 200
	DefaultWorkers    = 4
	DefaultTopK       = 10
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of a running server; empty runs in process
	Scenarios  int           // Number of emergencies to generate
	Volunteers int           // Pool size per emergency
	TopK       int           // Requested list length
	Profile    string        // Matching profile; empty uses the server default
	Seed       int64         // Seed for the generator
	Noise      float64       // Fraction of volunteers generated invalid or duplicated
	Workers    int           // Number of concurrent scenarios
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Optional file receiving the generated requests
	Verbose    bool          // Log every violation
}

// ErrInvalidSimulation is returned for unusable configuration.
var ErrInvalidSimulation = errors.New("invalid simulation config")

// withDefaults fills zero fields and validates the rest.
func (c Config) withDefaults() (Config, error) {
	if c.Scenarios == 0 {
		c.Scenarios = DefaultScenarios
	}
	if c.Volunteers == 0 {
		c.Volunteers = DefaultVolunteers
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.Scenarios < 0:
		return c, fmt.Errorf("%w: scenarios must be positive", ErrInvalidSimulation)
	case c.Volunteers < 0:
		return c, fmt.Errorf("%w: volunteers must be positive", ErrInvalidSimulation)
	case c.TopK < 0:
		return c, fmt.Errorf("%w: topK must be positive", ErrInvalidSimulation)
	case c.Noise < 0 || c.Noise >= 1:
		return c, fmt.Errorf("%w: noise must be in [0,1)", ErrInvalidSimulation)
	}
	return c, nil
}

// Stats holds run statistics.
type Stats struct {
	Scenarios       int
	Matches         int
	Failed          int
	Violations      int
	Considered      int
	Skipped         int
	Recommendations int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
	MaxLatency      time.Duration
	TotalLatency    time.Duration
}

// AvgLatency is the mean latency of one match call.
func (s Stats) AvgLatency() time.Duration {
	if s.Matches == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Matches)
}

// MatchesPerSecond is the overall throughput.
func (s Stats) MatchesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Matches) / s.Duration.Seconds()
}
