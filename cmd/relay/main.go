package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ciphera-lobby/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listen     string
		maxMembers int
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the Ciphera lobby relay",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(app.ConfigPath(configPath))
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.Listen = listen
			}
			if flags.Changed("max-members") {
				cfg.MaxMembers = maxMembers
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := app.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, logger, ln)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file (default $"+app.ConfigEnv+")")
	f.StringVar(&listen, "listen", "", "listen address (e.g. :8080)")
	f.IntVar(&maxMembers, "max-members", 0, "maximum concurrent identities, 0 for unlimited")
	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&logFormat, "log-format", "", "log format: json or console")
	return cmd
}

// run serves the relay on ln until ctx is cancelled, then shuts down.
func run(ctx context.Context, cfg app.Config, logger *zap.Logger, ln net.Listener) error {
	srv := app.NewServer(cfg, logger)
	httpSrv := &http.Server{
		Handler:           srv.Relay,
		ReadHeaderTimeout: cfg.AuthTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening",
			zap.String("addr", ln.Addr().String()),
			zap.Int("max_members", cfg.MaxMembers),
			zap.Bool("metrics", cfg.Metrics.Enabled),
		)
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("relay shutting down", zap.Int("members", srv.Directory.Len()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			httpSrv.Shutdown(shutdownCtx),
			srv.Relay.Shutdown(shutdownCtx),
		)
	})
	return g.Wait()
}
