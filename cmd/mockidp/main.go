// Command mockidp serves the in-memory identity service for local use.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrijr/sessionflow/internal/config"
	"github.com/petrijr/sessionflow/internal/mockidp"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath   string
		addr         string
		clientID     string
		clientSecret string
	)
	cmd := &cobra.Command{
		Use:          "mockidp",
		Short:        "Serve an in-memory identity service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log, os.Stderr)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("addr") {
				addr = cfg.MockIDP.Addr
			}
			if !cmd.Flags().Changed("client-id") {
				clientID = cfg.MockIDP.ClientID
			}
			if !cmd.Flags().Changed("client-secret") {
				clientSecret = cfg.MockIDP.ClientSecret
			}

			srv := mockidp.NewServer(
				mockidp.WithLogger(logger),
				mockidp.WithClient(clientID, clientSecret),
			)
			return serve(cmd.Context(), logger, addr, srv.Router())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default mockidp.addr)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "accepted OAuth2 client id (default mockidp.client_id)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "accepted OAuth2 client secret (default mockidp.client_secret)")
	return cmd
}

func serve(ctx context.Context, logger *slog.Logger, addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mockidp_listening",
			slog.String("addr", addr),
			slog.String("link_qr", "http://"+addr+"/qr/link.png"),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
