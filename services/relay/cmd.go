package relay

import (
	"os/signal"
	"syscall"

	"github.com/kaytu-io/assistant-relay/pkg/httpserver"
	"github.com/kaytu-io/assistant-relay/services/relay/api"
	"github.com/kaytu-io/assistant-relay/services/relay/config"
	"github.com/kaytu-io/assistant-relay/services/relay/openai"
	"github.com/kaytu-io/assistant-relay/services/relay/poller"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Command() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	cmd := &cobra.Command{
		Use:   "assistant-relay",
		Short: "Relay chat messages to an OpenAI assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cnf, err := config.Load(configPath, envFile)
			if err != nil {
				return err
			}
			if err := cnf.Validate(); err != nil {
				return err
			}

			logger, err := newLogger(cnf.Log)
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger = logger.Named("relay")

			oc := openai.New(cnf.OpenAI)
			logger.Info("openai client initialized", zap.String("assistant_id", oc.AssistantID()))

			p := poller.New(logger, oc,
				poller.WithInterval(cnf.Poll.Interval),
				poller.WithMaxAttempts(cnf.Poll.MaxAttempts),
			)

			cmd.SilenceUsage = true

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = httpserver.RegisterAndStart(
				ctx,
				logger,
				cnf.Http.Address,
				httpserver.Tracing{
					AgentHost:   cnf.Tracing.AgentHost,
					ServiceName: cnf.Tracing.ServiceName,
				},
				api.New(logger, oc, p),
			)
			logger.Info("application shutting down")
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file, ignored when missing")

	return cmd
}

func newLogger(cnf config.Log) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cnf.Level != "" {
		if err := level.Set(cnf.Level); err != nil {
			return nil, err
		}
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
