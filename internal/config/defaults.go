package config

import "time"

// Names of the L1 caches every deployment gets.
const (
	CachePermissions = "permissions"
	CacheRoles       = "roles"
	CacheMenus       = "menus"
	CacheConfig      = "config"
	CacheDict        = "dict"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			Enabled:             true,
			Address:             "localhost:6379",
			Password:            SecretString{},
			DB:                  0,
			KeyPrefix:           "",
			PoolSize:            50,
			MinIdleConns:        5,
			DialTimeout:         5 * time.Second,
			ReadTimeout:         3 * time.Second,
			WriteTimeout:        3 * time.Second,
			PoolTimeout:         4 * time.Second,
			OperationTimeout:    2 * time.Second,
			HealthCheckInterval: 5 * time.Second,
			ScanCount:           100,
		},
		Provider: ProviderConfig{
			DefaultTTL: time.Hour,
		},
		Tiered: LocalConfig{
			Engine:          EngineLRU,
			MaxEntries:      10000,
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Caches: DefaultCaches(),
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             true,
			FailureThreshold:    5,
			SuccessThreshold:    2,
			OpenDuration:        30 * time.Second,
			HalfOpenMaxRequests: 3,
		},
		Bulkhead: BulkheadConfig{
			Enabled:        true,
			MaxConcurrent:  100,
			MaxQueue:       50,
			AcquireTimeout: 100 * time.Millisecond,
		},
		KeyValidation: KeyValidationConfig{
			Enabled:      true,
			MaxKeyLength: 512,
		},
		Metrics: MetricsConfig{
			Enabled:         true,
			PublishInterval: 30 * time.Second,
			DataDog: DataDogConfig{
				Enabled:   false,
				AgentHost: "127.0.0.1",
				Port:      8125,
				Prefix:    "tiercache",
				Tags:      []string{},
			},
		},
		Admin: AdminConfig{
			Enabled:         true,
			Address:         ":8086",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultCaches returns the per-domain L1 tuning: short TTLs for lists that
// change with user actions, long ones for near-static configuration.
func DefaultCaches() map[string]LocalConfig {
	return map[string]LocalConfig{
		CachePermissions: {
			Engine:          EngineLRU,
			MaxEntries:      5000,
			TTL:             5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		CacheRoles: {
			Engine:          EngineLRU,
			MaxEntries:      1000,
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
		},
		CacheMenus: {
			Engine:          EngineBigCache,
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
			MaxSizeMB:       32,
			Shards:          64,
			MaxEntrySize:    64 * 1024,
		},
		CacheConfig: {
			Engine:          EngineLRU,
			MaxEntries:      500,
			TTL:             time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		CacheDict: {
			Engine:          EngineLRU,
			MaxEntries:      2000,
			TTL:             30 * time.Minute,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// ForTesting returns a minimal configuration suitable for unit tests.
func ForTesting() *Config {
	return &Config{
		Remote: RemoteConfig{
			Enabled:          false, // Disabled for unit tests
			Address:          "localhost:6379",
			KeyPrefix:        "test:",
			PoolSize:         5,
			MinIdleConns:     1,
			DialTimeout:      time.Second,
			ReadTimeout:      time.Second,
			WriteTimeout:     time.Second,
			PoolTimeout:      time.Second,
			OperationTimeout: time.Second,
			ScanCount:        10,
		},
		Provider: ProviderConfig{
			DefaultTTL: time.Minute,
		},
		Tiered: LocalConfig{
			Engine:     EngineLRU,
			MaxEntries: 100,
			TTL:        time.Minute,
		},
		Caches: map[string]LocalConfig{
			CachePermissions: {Engine: EngineLRU, MaxEntries: 10, TTL: time.Minute},
			CacheMenus: {
				Engine:       EngineBigCache,
				TTL:          time.Minute,
				MaxSizeMB:    1,
				Shards:       8,
				MaxEntrySize: 1024,
			},
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:             false,
			FailureThreshold:    3,
			SuccessThreshold:    1,
			OpenDuration:        time.Second,
			HalfOpenMaxRequests: 1,
		},
		Bulkhead: BulkheadConfig{
			Enabled:        false,
			MaxConcurrent:  10,
			MaxQueue:       5,
			AcquireTimeout: 50 * time.Millisecond,
		},
		KeyValidation: KeyValidationConfig{
			Enabled:      true,
			MaxKeyLength: 512,
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			PublishInterval: time.Second,
		},
		Admin: AdminConfig{
			Enabled:         false,
			Address:         "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "text",
		},
	}
}

// ForTestingWithRedis returns a test config with the remote tier enabled.
func ForTestingWithRedis(addr string) *Config {
	cfg := ForTesting()
	cfg.Remote.Enabled = true
	cfg.Remote.Address = addr
	return cfg
}
