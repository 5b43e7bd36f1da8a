package tiercache

import (
	"log/slog"

	"github.com/LavishGent/tiercache/internal/cache"
	"github.com/LavishGent/tiercache/internal/config"
	"github.com/LavishGent/tiercache/internal/metrics"
	"github.com/LavishGent/tiercache/internal/types"
)

// New creates a registry from the default configuration.
func New(opts ...Option) (*Registry, error) {
	return NewFromConfig(config.DefaultConfig(), opts...)
}

// NewFromConfig creates a registry from cfg. cfg is copied before options
// are applied.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Registry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	c := *cfg
	for _, mutate := range o.config {
		mutate(&c)
	}

	var registryOpts []cache.RegistryOption
	if o.recorder != nil {
		registryOpts = append(registryOpts, cache.WithRecorder(o.recorder))
	}
	return cache.NewRegistry(&c, o.logger, registryOpts...)
}

// NewFromFile loads a JSON or YAML config file, applies .env and
// TIERCACHE_* overrides, and creates a registry.
func NewFromFile(path string, opts ...Option) (*Registry, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// NewLocalOnly creates a registry whose L2 is disabled.
func NewLocalOnly(opts ...Option) (*Registry, error) {
	return New(append(opts, WithoutRedis())...)
}

// Config returns a default configuration that can be modified before
// creating a registry.
func Config() *config.Config {
	return config.DefaultConfig()
}

// TestConfig returns a small local-only configuration for unit tests.
func TestConfig() *config.Config {
	return config.ForTesting()
}

// NewTracker returns an in-memory metrics recorder for WithMetrics.
func NewTracker() *Tracker {
	return metrics.NewTracker()
}

// NewKeyValidator returns a validator for keys built outside the provider.
func NewKeyValidator(cfg KeyValidationConfig) *KeyValidator {
	return types.NewKeyValidator(cfg)
}

// Option configures a registry built by this package.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	recorder MetricsRecorder
	config   []func(*config.Config)
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(recorder MetricsRecorder) Option {
	return func(o *options) {
		o.recorder = recorder
	}
}

// WithRedisAddress enables L2 at addr.
func WithRedisAddress(addr string) Option {
	return withConfig(func(c *config.Config) {
		c.Remote.Enabled = true
		c.Remote.Address = addr
	})
}

func WithRedisPassword(password string) Option {
	return withConfig(func(c *config.Config) {
		c.Remote.Password = types.NewSecretString(password)
	})
}

func WithRedisDB(db int) Option {
	return withConfig(func(c *config.Config) {
		c.Remote.DB = db
	})
}

func WithKeyPrefix(prefix string) Option {
	return withConfig(func(c *config.Config) {
		c.Remote.KeyPrefix = prefix
	})
}

func WithoutRedis() Option {
	return withConfig(func(c *config.Config) {
		c.Remote.Enabled = false
	})
}

// WithoutResilience disables the circuit breaker and bulkhead around L2.
func WithoutResilience() Option {
	return withConfig(func(c *config.Config) {
		c.CircuitBreaker.Enabled = false
		c.Bulkhead.Enabled = false
	})
}

func withConfig(fn func(*config.Config)) Option {
	return func(o *options) {
		o.config = append(o.config, fn)
	}
}
