package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/ghostrun/internal/adapters/repository"
	service "github.com/okian/ghostrun/internal/app"
	"github.com/okian/ghostrun/internal/config"
	"github.com/okian/ghostrun/internal/domain/race"
	"github.com/okian/ghostrun/pkg/logger"
	"github.com/okian/ghostrun/pkg/metrics"
)

// rootOptions holds flags shared by every command and the config they resolve to.
type rootOptions struct {
	configPath string
	ghostsDir  string
	logLevel   string
	jsonLogs   bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ghostrun",
		Short:         "Record, share and race ghost laps",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file (default $GHOST_CONFIG)")
	flags.StringVar(&opts.ghostsDir, "ghosts-dir", "", "folder holding personal/ and shared/ ghosts")
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "log as JSON")

	cmd.AddCommand(
		newRoutesCmd(opts),
		newScanCmd(opts),
		newInspectCmd(opts),
		newDeleteCmd(opts),
		newSimulateCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// load resolves config (defaults, file, env, then flags) and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), o.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.ghostsDir != "" {
		cfg.GhostsDir = o.ghostsDir
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logOpts := []logger.Option{logger.WithWriter(cmd.ErrOrStderr())}
	if o.jsonLogs {
		logOpts = append(logOpts, logger.WithJSON())
	}
	if err := logger.Init(logOpts...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Fall back to info on invalid input.
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
	)

	o.cfg = cfg
	return nil
}

// serviceOptions maps the resolved config onto the service and its parts.
func (o *rootOptions) serviceOptions(extra ...service.Option) []service.Option {
	cfg := o.cfg
	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithGhostsDir(cfg.GhostsDir),
		service.WithQueueSize(cfg.InputQueueSize),
		service.WithAsyncSave(cfg.AsyncSave),
		service.WithRaceOptions(
			race.WithLogger(logger.Named("race")),
			race.WithSampleRate(cfg.SampleRate),
			race.WithMaxRaceTime(cfg.MaxRaceTime),
			race.WithCountdown(cfg.CountdownSteps, cfg.CountdownStep),
			race.WithFinishDisplay(cfg.FinishDisplay),
			race.WithCancelCooldown(cfg.CancelCooldown),
			race.WithProgressWindow(cfg.ProgressWindow),
			race.WithProgressThreshold(cfg.ProgressThreshold),
			race.WithWheelRadius(cfg.WheelRadius),
		),
		service.WithStoreOptions(
			repository.WithLogger(logger.Named("repository")),
			repository.WithMaxSharedFiles(cfg.MaxSharedFiles),
			repository.WithMaxFileSize(cfg.MaxFileSize),
		),
	}
	return append(opts, extra...)
}

// startService builds and starts a service from the resolved config.
func (o *rootOptions) startService(cmd *cobra.Command, extra ...service.Option) (*service.Service, func(), error) {
	svc := service.New(o.serviceOptions(extra...)...)
	if err := svc.Start(cmd.Context()); err != nil {
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}
	stop := func() {
		if err := svc.Stop(cmd.Context()); err != nil {
			logger.Get().Error(cmd.Context(), "service stop failed", logger.Error(err))
		}
	}
	return svc, stop, nil
}
