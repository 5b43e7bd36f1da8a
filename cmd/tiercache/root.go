package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LavishGent/tiercache/internal/cache"
	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/metrics"
)

type rootFlags struct {
	configPath string
	envFiles   []string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "tiercache",
		Short: "Two-tier cache operator tool",
		Long: `tiercache operates a fail-open two-tier cache: a bounded in-process L1
in front of a shared Redis L2.

"serve" runs the admin HTTP server and metrics publisher. The other
commands act on Redis through a short-lived registry; their L1 effects
are local to this process.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a JSON or YAML config file")
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "Dotenv files to load (default .env)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newServeCmd(flags),
		newGetCmd(flags),
		newSetCmd(flags),
		newDelCmd(flags),
		newPurgeCmd(flags),
		newExistsCmd(flags),
		newExpireCmd(flags),
		newVersionCmd(),
	)
	return root
}

func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(f.configPath, f.envFiles...)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}

// session is what every command needs: config, logger and a registry.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *cache.Registry
	tracker  *metrics.Tracker
}

func (f *rootFlags) open(cmd *cobra.Command) (*session, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}
	return f.openWith(cmd, cfg)
}

func (f *rootFlags) openWith(cmd *cobra.Command, cfg *config.Config) (*session, error) {
	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	tracker := metrics.NewTracker()
	registry, err := cache.NewRegistry(cfg, logger, cache.WithRecorder(tracker))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, registry: registry, tracker: tracker}, nil
}

func (s *session) Close() error {
	return s.registry.Close()
}

// warnIfLocalOnly tells the operator that a write only reached this
// process's L1.
func (s *session) warnIfLocalOnly(cmd *cobra.Command) {
	if !s.registry.Remote().IsAvailable() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: remote tier unavailable; only this process was affected")
	}
}
