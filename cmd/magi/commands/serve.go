package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/api"
	"github.com/NethermindEth/magi/communication"
	"github.com/NethermindEth/magi/consensus"
	"github.com/NethermindEth/magi/core"
)

var servePort int

// ServeCmd runs the HTTP API and the WebSocket event stream
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the council over HTTP",
	Long:  `Start the REST API and WebSocket event stream, publishing events to NATS when configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := appOptions{persistent: true}
		a, err := newApp(ctx, opts)
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.APIPort
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		hub := communication.NewWebSocketManager(a.logger)
		go hub.Run(ctx)
		a.publisher = append(a.publisher, hub)

		logger := a.logger
		opts.onRetry = func(attempt, maxAttempts int, err error) {
			logger.Warn("Council overloaded, retrying",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err))
		}

		results := make(chan *core.Session, 16)
		council, err := a.council(opts)
		if err != nil {
			return err
		}
		council.SubscribeResult(results)
		go logResults(ctx, logger, council, results)

		logger.Info("MAGI council online",
			zap.String("source", string(council.Source())),
			zap.Int("port", port))

		return api.StartServer(ctx, port, api.Deps{
			Council:   council,
			Store:     a.store,
			Reporter:  a.reporter(nil),
			Hub:       hub,
			Publisher: a.publisher,
			Logger:    logger,
		})
	},
}

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 3000, "API server port")
}

func logResults(ctx context.Context, logger *zap.Logger, council *consensus.Council, results <-chan *core.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-results:
			logger.Debug("Session recorded",
				zap.String("session", s.ID),
				zap.String("kind", string(s.Outcome.Kind)),
				zap.Bool("report_available", council.ReportAvailable(s)))
		}
	}
}
