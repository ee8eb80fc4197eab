package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/wrangle/acquire"
	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/internal/config"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	input    string
	refresh  bool

	cfg    *config.Config
	runID  string
	logger log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wrangle",
		Short: "Acquire, clean, split and scale a tabular dataset",
		Long: `wrangle loads a dataset from SQL (cached as CSV on disk or in redis),
reports on its shape and missing values, and prepares min-max scaled
train/validate/test partitions.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./wrangle.yaml when present)")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flags.StringVar(&a.input, "input", "", "read the dataset from this CSV instead of the database")
	flags.BoolVar(&a.refresh, "refresh", false, "ignore the cache and query the database again")

	root.AddCommand(newSummarizeCmd(a), newPrepareCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log.SetupLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel)
	provider := log.NewZerologProviderTo(cmd.ErrOrStderr(), log.ToLogLevel(cfg.LogLevel))
	log.SetDefaultProvider(provider)
	log.InstallWarningHook(provider)

	a.runID = uuid.NewString()
	a.logger = provider.GetLogger().With(log.RunIDKey, a.runID)
	a.logger.Debug("configuration loaded", "command", cmd.Name(), "config_file", a.cfgFile)
	return nil
}

// acquire returns the raw dataset from --input or from the configured database
// through the cache.
func (a *app) acquire(ctx context.Context) (*frame.Frame, error) {
	if a.input != "" {
		return acquire.NewAcquirer(acquire.CSVSource{Path: a.input}, nil).
			WithLogger(a.logger.With(log.ComponentKey, "Acquirer")).
			Acquire(ctx)
	}

	cache, err := acquire.NewCache(a.cfg.Cache)
	if err != nil {
		return nil, err
	}
	src := &lazySQLSource{cfg: a.cfg}
	defer src.Close()

	acq := acquire.NewAcquirer(src, cache).WithLogger(a.logger.With(log.ComponentKey, "Acquirer"))
	acq.Refresh = a.refresh
	return acq.Acquire(ctx)
}
