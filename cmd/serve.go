package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/roadmapper/internal/app"
	"github.com/abhisek/roadmapper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API for the browser UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		addr := e.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		srv := server.New(e.shell,
			server.WithAssistant(e.assistant()),
			server.WithSync(e.sync()),
			server.WithAllowedOrigin(e.cfg.Server.AllowedOrigin),
			server.WithLogger(e.logger.Named("server")))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			e.logger.Info("serving dashboard API", zap.String("addr", addr))
			return srv.ListenAndServe(ctx, addr)
		})
		g.Go(func() error {
			return refreshLoop(ctx, e)
		})
		return g.Wait()
	},
}

// refreshLoop re-projects statuses so reviews that fall due while the
// server runs show up without a progress change.
func refreshLoop(ctx context.Context, e *env) error {
	t := time.NewTicker(app.RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			e.shell.Refresh()
		}
	}
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
