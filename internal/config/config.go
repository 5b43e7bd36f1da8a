// Package config provides configuration management for tiercache.
package config

import (
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// SecretString is a string type that redacts its value when marshaled.
type SecretString = types.SecretString

// NewSecretString creates a new SecretString with the provided value.
func NewSecretString(value string) SecretString {
	return types.NewSecretString(value)
}

// L1 engines.
const (
	EngineLRU      = "lru"
	EngineBigCache = "bigcache"
)

// Config contains all configuration needed to stand up the cache layer.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type Config struct {
	Remote         RemoteConfig           `json:"remote" yaml:"remote"`
	Provider       ProviderConfig         `json:"provider" yaml:"provider"`
	Tiered         LocalConfig            `json:"tiered" yaml:"tiered"`
	Caches         map[string]LocalConfig `json:"caches" yaml:"caches"`
	CircuitBreaker CircuitBreakerConfig   `json:"circuitBreaker" yaml:"circuitBreaker"`
	Bulkhead       BulkheadConfig         `json:"bulkhead" yaml:"bulkhead"`
	KeyValidation  KeyValidationConfig    `json:"keyValidation" yaml:"keyValidation"`
	Metrics        MetricsConfig          `json:"metrics" yaml:"metrics"`
	Admin          AdminConfig            `json:"admin" yaml:"admin"`
	Logging        LoggingConfig          `json:"logging" yaml:"logging"`
}

// ProviderConfig tunes the tiered provider.
type ProviderConfig struct {
	// DefaultTTL is the L2 TTL used when Set is called without one.
	DefaultTTL time.Duration `json:"defaultTTL" yaml:"defaultTTL"`
}

// LocalConfig tunes one L1 instance. TTL is fixed for the instance and is
// usually shorter than the L2 TTL to bound the staleness window.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type LocalConfig struct {
	Engine          string        `json:"engine" yaml:"engine"`
	TTL             time.Duration `json:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `json:"cleanupInterval" yaml:"cleanupInterval"`
	// MaxEntries bounds the lru engine.
	MaxEntries int `json:"maxEntries" yaml:"maxEntries"`
	// MaxSizeMB, Shards and MaxEntrySize bound the bigcache engine.
	MaxSizeMB    int `json:"maxSizeMB" yaml:"maxSizeMB"`
	Shards       int `json:"shards" yaml:"shards"`
	MaxEntrySize int `json:"maxEntrySize" yaml:"maxEntrySize"`
}

// RemoteConfig contains L2 connection parameters.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type RemoteConfig struct {
	DialTimeout         time.Duration `json:"dialTimeout" yaml:"dialTimeout"`
	ReadTimeout         time.Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout        time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	PoolTimeout         time.Duration `json:"poolTimeout" yaml:"poolTimeout"`
	OperationTimeout    time.Duration `json:"operationTimeout" yaml:"operationTimeout"`
	HealthCheckInterval time.Duration `json:"healthCheckInterval" yaml:"healthCheckInterval"`
	Password            SecretString  `json:"password" yaml:"password"`
	Address             string        `json:"address" yaml:"address"`
	Username            string        `json:"username" yaml:"username"`
	KeyPrefix           string        `json:"keyPrefix" yaml:"keyPrefix"`
	DB                  int           `json:"db" yaml:"db"`
	PoolSize            int           `json:"poolSize" yaml:"poolSize"`
	MinIdleConns        int           `json:"minIdleConns" yaml:"minIdleConns"`
	ScanCount           int64         `json:"scanCount" yaml:"scanCount"`
	Enabled             bool          `json:"enabled" yaml:"enabled"`
	EnableTLS           bool          `json:"enableTLS" yaml:"enableTLS"`
	TLSSkipVerify       bool          `json:"tlsSkipVerify" yaml:"tlsSkipVerify"`
}

// CircuitBreakerConfig guards L2 calls once the store starts failing.
type CircuitBreakerConfig struct {
	Enabled             bool          `json:"enabled" yaml:"enabled"`
	FailureThreshold    int           `json:"failureThreshold" yaml:"failureThreshold"`
	SuccessThreshold    int           `json:"successThreshold" yaml:"successThreshold"`
	OpenDuration        time.Duration `json:"openDuration" yaml:"openDuration"`
	HalfOpenMaxRequests int           `json:"halfOpenMaxRequests" yaml:"halfOpenMaxRequests"`
}

// BulkheadConfig caps concurrent L2 calls so request goroutines never pile
// up behind a slow store.
type BulkheadConfig struct {
	Enabled        bool          `json:"enabled" yaml:"enabled"`
	MaxConcurrent  int           `json:"maxConcurrent" yaml:"maxConcurrent"`
	MaxQueue       int           `json:"maxQueue" yaml:"maxQueue"`
	AcquireTimeout time.Duration `json:"acquireTimeout" yaml:"acquireTimeout"`
}

// KeyValidationConfig contains configuration for cache key validation.
type KeyValidationConfig struct {
	ReservedPrefixes []string `json:"reservedPrefixes" yaml:"reservedPrefixes"`
	MaxKeyLength     int      `json:"maxKeyLength" yaml:"maxKeyLength"`
	Enabled          bool     `json:"enabled" yaml:"enabled"`
	AllowWhitespace  bool     `json:"allowWhitespace" yaml:"allowWhitespace"`
	AllowGlobChars   bool     `json:"allowGlobChars" yaml:"allowGlobChars"`
}

// ToTypesConfig converts this config to a types.KeyValidationConfig.
func (c KeyValidationConfig) ToTypesConfig() types.KeyValidationConfig {
	return types.KeyValidationConfig{
		ReservedPrefixes: c.ReservedPrefixes,
		MaxKeyLength:     c.MaxKeyLength,
		AllowWhitespace:  c.AllowWhitespace,
		AllowGlobChars:   c.AllowGlobChars,
	}
}

// MetricsConfig contains configuration for metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval" yaml:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog" yaml:"datadog"`
	Enabled         bool          `json:"enabled" yaml:"enabled"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type DataDogConfig struct {
	Tags      []string `json:"tags" yaml:"tags"`
	AgentHost string   `json:"agentHost" yaml:"agentHost"`
	Prefix    string   `json:"prefix" yaml:"prefix"`
	Port      int      `json:"port" yaml:"port"`
	Enabled   bool     `json:"enabled" yaml:"enabled"`
}

// AdminConfig controls the operator HTTP surface.
type AdminConfig struct {
	Address         string        `json:"address" yaml:"address"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	Enabled         bool          `json:"enabled" yaml:"enabled"`
}

// LoggingConfig selects the slog handler used by the command line tool.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}
