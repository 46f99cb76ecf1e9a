package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheusHen/chaoskey/chaoskey"
	"github.com/TheusHen/chaoskey/chaoskey/session"
	"github.com/TheusHen/chaoskey/internal/metrics"
)

// serve: accept initiators and log what they send.
func serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for peers and decipher their messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.MetricsAddr != "" {
				srv := metricsServer(cfg.MetricsAddr)
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error().Err(err).Msg("metrics server stopped")
					}
				}()
				defer shutdown(srv)
				logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
			}

			p := chaoskey.NewPeer(sessionConfig())
			if err := p.Listen(cfg.Listen); err != nil {
				return err
			}
			defer p.Close()
			logger.Info().Str("addr", p.ListenAddr()).Msg("listening")

			return p.Serve(ctx, func(m session.Message) {
				logger.Info().
					Str("session", m.Session).
					Str("ciphertext", m.Ciphertext).
					Str("plaintext", string(m.Plaintext)).
					Msg("message received")
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "UDP address to listen on (default from config)")
	return cmd
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
