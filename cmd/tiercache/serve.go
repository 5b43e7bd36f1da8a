package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LavishGent/tiercache/internal/admin"
	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/metrics/datadog"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP server and metrics publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := flags.open(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, s)
		},
	}
}

// serve runs until ctx is cancelled or a component fails, then releases
// the registry and publisher.
func serve(ctx context.Context, s *session) (err error) {
	logger := s.logger.With("component", "serve")

	publisher, err := metrics.NewPublisher(s.cfg.Metrics, datadog.NewPublisher, s.logger)
	if err != nil {
		_ = s.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, publisher.Close(), s.Close())
	}()

	registry := s.registry
	collector := metrics.NewCollector(registry, s.tracker, func() (bool, bool, string) {
		return registry.RemoteEnabled(), registry.Remote().IsAvailable(), registry.PolicyStats().CircuitState
	})

	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.Metrics.Enabled && s.cfg.Metrics.PublishInterval > 0 {
		bg := metrics.NewBackgroundPublisher(publisher, s.cfg.Metrics.PublishInterval, collector.Collect, s.logger)
		g.Go(func() error { return bg.Run(ctx) })
	}

	if s.cfg.Admin.Enabled {
		srv := admin.NewServer(s.cfg.Admin, admin.New(registry, s.tracker, s.logger), s.logger)
		g.Go(func() error { return srv.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	logger.Info("tiercache serving",
		"admin", s.cfg.Admin.Enabled,
		"admin_address", s.cfg.Admin.Address,
		"metrics", s.cfg.Metrics.Enabled,
		"remote", registry.RemoteEnabled(),
	)
	err = g.Wait()
	logger.Info("tiercache stopped")
	return err
}
