package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiaot623/chatbot/internal/observability"
	httpserver "github.com/xiaot623/chatbot/internal/transport/http"
	"github.com/xiaot623/chatbot/internal/transport/ws"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	Long: `Start the HTTP API and the websocket chat endpoint.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		log := observability.Logger()
		log.Info("starting chatbot",
			"port", cfg.Port,
			"store_backend", cfg.StoreBackend,
			"database_name", cfg.DatabaseName,
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, db, err := newService(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		chat := ws.NewServer(cfg, svc)
		e := httpserver.NewServer(svc, chat)

		errCh := make(chan error, 1)
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Port)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		log.Info("chat API started", "port", cfg.Port)

		select {
		case <-ctx.Done():
		case err := <-errCh:
			return fmt.Errorf("failed to start server: %w", err)
		}

		log.Info("shutting down chatbot")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		chat.Shutdown()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown server gracefully", "error", err)
		}

		log.Info("chatbot stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
