package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/okian/relief/internal/simulate"
)

const defaultSimulationTimeout = 10 * time.Minute

func newSimulateCmd(root *rootOptions) *cobra.Command {
	cfg := simulate.Config{}
	var total time.Duration
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run synthetic matches and verify the ranking properties",
		Long: "Generates reproducible emergencies and volunteer pools, runs each one twice " +
			"in process or against --url, and checks ordering, truncation and determinism.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appCfg, err := root.loadConfig(ctx, "")
			if err != nil {
				return err
			}
			ctx, cancel := contextWithTimeout(ctx, total)
			defer cancel()

			var target simulate.Target
			if cfg.BaseURL != "" {
				client := simulate.NewHTTPClient(cfg.BaseURL, cfg.Timeout)
				if err := client.CheckHealth(ctx); err != nil {
					return fmt.Errorf("service health check failed: %w", err)
				}
				target = client
			} else {
				svc, err := newService(appCfg)
				if err != nil {
					return err
				}
				if err := svc.Start(ctx); err != nil {
					return fmt.Errorf("failed to start service: %w", err)
				}
				defer svc.Stop()
				target = simulate.Local{M: svc}
			}

			rep, err := simulate.Run(ctx, cfg, target)
			if rep != nil {
				renderReport(cmd.OutOrStdout(), rep)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "", "base URL of a running server (default: in process)")
	f.IntVar(&cfg.Scenarios, "scenarios", simulate.DefaultScenarios, "number of emergencies to generate")
	f.IntVar(&cfg.Volunteers, "volunteers", simulate.DefaultVolunteers, "volunteers per emergency")
	f.IntVar(&cfg.TopK, "top-k", simulate.DefaultTopK, "requested list length")
	f.StringVar(&cfg.Profile, "profile", "", "matching profile (default from server)")
	f.Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "generator seed")
	f.Float64Var(&cfg.Noise, "noise", 0.1, "fraction of invalid or duplicate volunteers")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "concurrent scenarios")
	f.DurationVar(&cfg.Timeout, "timeout", simulate.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&total, "deadline", defaultSimulationTimeout, "overall time limit")
	f.StringVar(&cfg.OutputFile, "output", "", "write the generated requests to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every violation")
	return cmd
}

func renderReport(w io.Writer, rep *simulate.Report) {
	s := rep.Stats
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Scenarios", "Matches", "Failed", "Violations", "Considered", "Skipped", "Returned", "Avg", "Max", "Matches/s"})
	t.AppendRow(table.Row{
		s.Scenarios, s.Matches, s.Failed, s.Violations, s.Considered, s.Skipped, s.Recommendations,
		s.AvgLatency().Round(time.Microsecond), s.MaxLatency.Round(time.Microsecond),
		fmt.Sprintf("%.1f", s.MatchesPerSecond()),
	})
	t.Render()

	if len(rep.Violations) == 0 {
		return
	}
	vt := table.NewWriter()
	vt.SetOutputMirror(w)
	vt.AppendHeader(table.Row{"Scenario", "Check", "Detail"})
	for _, v := range rep.Violations {
		vt.AppendRow(table.Row{v.Scenario, v.Check, v.Detail})
	}
	vt.Render()
}

func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
