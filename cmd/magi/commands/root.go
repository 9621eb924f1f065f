package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/ai"
	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/config"
	"github.com/NethermindEth/magi/consensus"
	"github.com/NethermindEth/magi/core"
	"github.com/NethermindEth/magi/insights"
	"github.com/NethermindEth/magi/simulator"
	"github.com/NethermindEth/magi/storage"
	"github.com/NethermindEth/magi/utils"
)

var (
	configPath string
	debug      bool
)

// RootCmd is the magi command line entry point
var RootCmd = &cobra.Command{
	Use:           "magi",
	Short:         "MAGI decision council",
	Long:          `Submit proposals to the three MAGI personalities and read their verdict.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	RootCmd.AddCommand(DeliberateCmd)
	RootCmd.AddCommand(ReportCmd)
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(PersonalitiesCmd)
}

// app holds everything a command wires together
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     storage.Store
	llm       ai.LLM
	source    core.Source
	publisher communication.Publishers
	messenger *communication.Messenger
}

type appOptions struct {
	persistent bool
	draw       simulator.DrawFunc
	onRetry    func(attempt, maxAttempts int, err error)
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Logging.Debug = true
	}

	logger, err := utils.NewLogger(cfg.Logging.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, source: core.SourceSimulation}

	a.llm, a.source, err = ai.NewLLM(ctx, cfg.AIConfig())
	switch {
	case errors.Is(err, ai.ErrNoAPIKey):
		logger.Warn("No API key configured, running offline simulation")
	case err != nil:
		return nil, err
	}

	if opts.persistent && !cfg.Storage.InMemory {
		logger.Info("Opening session store",
			zap.String("dir", cfg.Storage.DataDir),
			zap.Bool("existing", utils.FileExists(cfg.Storage.DataDir)))
		db, err := storage.OpenBadger(storage.DefaultConfig(cfg.Storage.DataDir), logger)
		if err != nil {
			return nil, err
		}
		a.store = db
	} else {
		a.store = storage.NewMemoryStore()
	}

	if cfg.NATS.URL != "" {
		m, err := communication.NewMessenger(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			// events are optional; the council still runs
			logger.Warn("NATS unavailable, events stay local", zap.String("url", cfg.NATS.URL), zap.Error(err))
		} else {
			a.messenger = m
			a.publisher = append(a.publisher, m)
		}
	}
	return a, nil
}

func (a *app) council(opts appOptions, extra ...consensus.Option) (*consensus.Council, error) {
	delay, err := a.cfg.SimulationDelay()
	if err != nil {
		return nil, err
	}
	policy := a.cfg.RetryPolicy()
	policy.OnRetry = opts.onRetry

	options := []consensus.Option{
		consensus.WithSimulationDelay(delay),
		consensus.WithRetryPolicy(policy),
		consensus.WithStore(a.store),
		consensus.WithDraw(opts.draw),
		consensus.WithLogger(a.logger),
	}
	if a.llm != nil {
		options = append(options, consensus.WithLLM(a.llm, a.source))
	}
	if len(a.publisher) > 0 {
		options = append(options, consensus.WithPublisher(a.publisher))
	}
	options = append(options, extra...)
	return consensus.NewCouncil(options...), nil
}

func (a *app) reporter(onRetry func(attempt, maxAttempts int, err error)) *insights.Reporter {
	policy := a.cfg.ReportPolicy()
	policy.OnRetry = onRetry
	return insights.NewReporter(a.llm, a.store, policy, a.logger)
}

func (a *app) Close() {
	if a.messenger != nil {
		a.messenger.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
