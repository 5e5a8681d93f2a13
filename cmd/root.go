package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/relief/internal/app"
	"github.com/okian/relief/internal/config"
	"github.com/okian/relief/pkg/logger"
)

const app = "relief"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           app,
		Short:         "relief matches disaster-relief volunteers to emergencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := logger.Init(); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			// stdout cannot be synced on every platform
			_ = logger.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file (default $RELIEF_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newMatchCmd(opts),
		newClassifyCmd(opts),
		newSimulateCmd(opts),
	)
	return cmd
}

// loadConfig reads defaults, the optional file and the environment, then
// applies the log level: the flag wins, then fallback when set, then the
// configured level.
func (o *rootOptions) loadConfig(ctx context.Context, fallbackLevel string) (*config.Config, error) {
	cfg, err := config.Load(ctx, config.WithFile(o.configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	o.applyLogLevel(ctx, cfg.LogLevel, fallbackLevel)
	return cfg, nil
}

func (o *rootOptions) applyLogLevel(ctx context.Context, configured, fallback string) {
	lvl := configured
	switch {
	case o.logLevel != "":
		lvl = o.logLevel
	case fallback != "":
		lvl = fallback
	}
	if err := logger.SetLevelString(lvl); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", lvl), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
}

// newService builds the matching service from configuration.
func newService(cfg *config.Config) (*service.Service, error) {
	profiles, err := cfg.MatchingProfiles()
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithProfiles(profiles, cfg.DefaultProfile),
		service.WithGazetteer(cfg.Gazetteer()),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithParallelThreshold(cfg.ParallelThreshold),
		service.WithMaxVolunteers(cfg.MaxVolunteers),
	), nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
