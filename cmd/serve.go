package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/conneroisu/liveserve/internal/bus"
	"github.com/conneroisu/liveserve/internal/config"
	"github.com/conneroisu/liveserve/internal/errors"
	"github.com/conneroisu/liveserve/internal/logging"
	"github.com/conneroisu/liveserve/internal/server"
	"github.com/conneroisu/liveserve/internal/trigger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve [directory]",
	Short: "Serve a directory with live reload",
	Long: `Serve a directory over HTTP with SIGHUP-triggered live reload.

HTML responses carry an injected WebSocket client; send the process a
hangup signal and every connected tab reloads.

Examples:
  liveserve serve                  # Serve the current directory on :4000
  liveserve serve ./public -p 8080 # Serve ./public on port 8080
  liveserve serve --static ./dist  # Plain static server, no reload`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	bindServeFlags(serveCmd.Flags())
}

func bindServeFlags(flags *pflag.FlagSet) {
	flags.IntP("port", "p", 4000, "Port on which to listen for requests")
	flags.String("host", "0.0.0.0", "Address on which to listen for requests")
	flags.BoolP("static", "s", false, "Serve statically with no reload script or websocket api")

	viper.BindPFlag("server.port", flags.Lookup("port"))
	viper.BindPFlag("server.host", flags.Lookup("host"))
	viper.BindPFlag("static", flags.Lookup("static"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		viper.Set("root", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		suggestions := errors.ConfigurationError(err.Error(), ".liveserve.yml")
		return errors.NewEnhancedError("Failed to load configuration", err, suggestions)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Output: os.Stderr,
	})

	reloadBus := bus.New()
	srv := server.New(cfg, reloadBus, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	if !cfg.Static {
		listener := trigger.NewListener(reloadBus, logger)
		defer listener.Stop()

		group.Go(func() error {
			if err := listener.Run(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	// SIGINT/SIGTERM drain the server; SIGHUP is the reload trigger and
	// is owned by the listener above.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	group.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-sigChan:
			logger.Info(ctx, "shutting down")
			if err := srv.Shutdown(context.Background()); err != nil {
				logger.Error(ctx, err, "server shutdown")
			}
			cancel()
			return nil
		}
	})

	group.Go(func() error {
		defer cancel()
		return srv.Start(ctx)
	})

	if err := group.Wait(); err != nil {
		if strings.Contains(err.Error(), "address already in use") ||
			strings.Contains(err.Error(), "bind") ||
			strings.Contains(err.Error(), "permission denied") {
			suggestions := errors.ServerStartError(err, cfg.Server.Port)
			return errors.NewEnhancedError(
				fmt.Sprintf("Failed to start server on port %d", cfg.Server.Port),
				err,
				suggestions,
			)
		}
		return err
	}

	return nil
}
