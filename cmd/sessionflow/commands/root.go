package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petrijr/sessionflow/internal/config"
)

var (
	configPath string
	cfg        config.Config
	logger     *slog.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:          "sessionflow",
		Short:        "Drive an identity SDK through interactive workflows",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = c
			l, err := config.NewLogger(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $SESSIONFLOW_CONFIG or ~/.config/sessionflow/config.toml)")

	root.AddCommand(tuiCmd(), runCmd(), actionsCmd(), stateCmd(), configCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return root.ExecuteContext(ctx)
}
