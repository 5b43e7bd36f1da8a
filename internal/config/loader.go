package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TIERCACHE_"

// Load loads configuration from a JSON or YAML file, chosen by extension.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a file, then applies variables from
// dotenv files (if present) and the process environment.
func LoadWithEnv(path string, envFiles ...string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv never overrides variables already set in the environment.
func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

//nolint:gocyclo // Environment variable parsing requires many conditional checks
func applyEnvOverrides(cfg *Config) {
	if v := getenv("REMOTE_ENABLED"); v != "" {
		cfg.Remote.Enabled = parseBool(v)
	}
	if v := getenv("REMOTE_ADDRESS"); v != "" {
		cfg.Remote.Address = v
	}
	if v := getenv("REMOTE_USERNAME"); v != "" {
		cfg.Remote.Username = v
	}
	if v := getenv("REMOTE_PASSWORD"); v != "" {
		cfg.Remote.Password = NewSecretString(v)
	}
	if v := getenv("REMOTE_DB"); v != "" {
		cfg.Remote.DB = parseInt(v, cfg.Remote.DB)
	}
	if v := getenv("REMOTE_KEY_PREFIX"); v != "" {
		cfg.Remote.KeyPrefix = v
	}
	if v := getenv("REMOTE_POOL_SIZE"); v != "" {
		cfg.Remote.PoolSize = parseInt(v, cfg.Remote.PoolSize)
	}
	if v := getenv("REMOTE_POOL_TIMEOUT"); v != "" {
		cfg.Remote.PoolTimeout = parseDuration(v, cfg.Remote.PoolTimeout)
	}
	if v := getenv("REMOTE_OPERATION_TIMEOUT"); v != "" {
		cfg.Remote.OperationTimeout = parseDuration(v, cfg.Remote.OperationTimeout)
	}
	if v := getenv("REMOTE_ENABLE_TLS"); v != "" {
		cfg.Remote.EnableTLS = parseBool(v)
	}
	if v := getenv("REMOTE_TLS_SKIP_VERIFY"); v != "" {
		cfg.Remote.TLSSkipVerify = parseBool(v)
	}

	if v := getenv("PROVIDER_DEFAULT_TTL"); v != "" {
		cfg.Provider.DefaultTTL = parseDuration(v, cfg.Provider.DefaultTTL)
	}

	if v := getenv("TIERED_MAX_ENTRIES"); v != "" {
		cfg.Tiered.MaxEntries = parseInt(v, cfg.Tiered.MaxEntries)
	}
	if v := getenv("TIERED_TTL"); v != "" {
		cfg.Tiered.TTL = parseDuration(v, cfg.Tiered.TTL)
	}

	for name, lc := range cfg.Caches {
		envName := "CACHE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
		if v := getenv(envName + "MAX_ENTRIES"); v != "" {
			lc.MaxEntries = parseInt(v, lc.MaxEntries)
		}
		if v := getenv(envName + "TTL"); v != "" {
			lc.TTL = parseDuration(v, lc.TTL)
		}
		if v := getenv(envName + "MAX_SIZE_MB"); v != "" {
			lc.MaxSizeMB = parseInt(v, lc.MaxSizeMB)
		}
		cfg.Caches[name] = lc
	}

	if v := getenv("CIRCUIT_BREAKER_ENABLED"); v != "" {
		cfg.CircuitBreaker.Enabled = parseBool(v)
	}
	if v := getenv("CIRCUIT_BREAKER_FAILURE_THRESHOLD"); v != "" {
		cfg.CircuitBreaker.FailureThreshold = parseInt(v, cfg.CircuitBreaker.FailureThreshold)
	}
	if v := getenv("CIRCUIT_BREAKER_OPEN_DURATION"); v != "" {
		cfg.CircuitBreaker.OpenDuration = parseDuration(v, cfg.CircuitBreaker.OpenDuration)
	}

	if v := getenv("BULKHEAD_ENABLED"); v != "" {
		cfg.Bulkhead.Enabled = parseBool(v)
	}
	if v := getenv("BULKHEAD_MAX_CONCURRENT"); v != "" {
		cfg.Bulkhead.MaxConcurrent = parseInt(v, cfg.Bulkhead.MaxConcurrent)
	}

	if v := getenv("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := getenv("METRICS_PUBLISH_INTERVAL"); v != "" {
		cfg.Metrics.PublishInterval = parseDuration(v, cfg.Metrics.PublishInterval)
	}

	if v := getenv("ADMIN_ENABLED"); v != "" {
		cfg.Admin.Enabled = parseBool(v)
	}
	if v := getenv("ADMIN_ADDRESS"); v != "" {
		cfg.Admin.Address = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("DD_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
		cfg.Metrics.DataDog.Enabled = true
	}
	if v := os.Getenv("DD_DOGSTATSD_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
	if v := os.Getenv("DD_SERVICE"); v != "" {
		cfg.Metrics.DataDog.Prefix = v
	}
	if v := os.Getenv("DD_ENV"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "env:"+v)
	}
	if v := os.Getenv("DD_VERSION"); v != "" {
		cfg.Metrics.DataDog.Tags = append(cfg.Metrics.DataDog.Tags, "version:"+v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Remote.Enabled {
		if c.Remote.Address == "" {
			return fmt.Errorf("remote.address is required when remote is enabled")
		}
		if c.Remote.PoolSize <= 0 {
			return fmt.Errorf("remote.poolSize must be positive")
		}
		if c.Remote.OperationTimeout <= 0 {
			return fmt.Errorf("remote.operationTimeout must be positive")
		}
	}

	if c.Provider.DefaultTTL <= 0 {
		return fmt.Errorf("provider.defaultTTL must be positive")
	}

	if err := c.Tiered.validate("tiered"); err != nil {
		return err
	}
	for name, lc := range c.Caches {
		if name == "" {
			return fmt.Errorf("caches: empty cache name")
		}
		if err := lc.validate("caches." + name); err != nil {
			return err
		}
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold <= 0 {
			return fmt.Errorf("circuitBreaker.failureThreshold must be positive")
		}
		if c.CircuitBreaker.OpenDuration <= 0 {
			return fmt.Errorf("circuitBreaker.openDuration must be positive")
		}
	}

	if c.Bulkhead.Enabled && c.Bulkhead.MaxConcurrent <= 0 {
		return fmt.Errorf("bulkhead.maxConcurrent must be positive")
	}

	if c.Metrics.Enabled && c.Metrics.PublishInterval <= 0 {
		return fmt.Errorf("metrics.publishInterval must be positive")
	}

	return nil
}

func (c LocalConfig) validate(path string) error {
	if c.TTL <= 0 {
		return fmt.Errorf("%s.ttl must be positive", path)
	}

	switch c.Engine {
	case "", EngineLRU:
		if c.MaxEntries <= 0 {
			return fmt.Errorf("%s.maxEntries must be positive", path)
		}
	case EngineBigCache:
		if c.MaxSizeMB <= 0 {
			return fmt.Errorf("%s.maxSizeMB must be positive", path)
		}
		if c.Shards <= 0 || (c.Shards&(c.Shards-1)) != 0 {
			return fmt.Errorf("%s.shards must be a positive power of 2", path)
		}
	default:
		return fmt.Errorf("%s.engine %q is not one of %s, %s", path, c.Engine, EngineLRU, EngineBigCache)
	}
	return nil
}

func getenv(name string) string {
	return os.Getenv(envPrefix + name)
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseInt(s string, defaultVal int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultVal
	}
	return v
}

// parseDuration accepts Go durations ("90s") or bare seconds ("90").
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}
