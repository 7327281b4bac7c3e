package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Timing struct {
	InterceptWindow    time.Duration `yaml:"intercept_window"`
	DeferredWriteDelay time.Duration `yaml:"deferred_write_delay"`
	BootGuard          time.Duration `yaml:"boot_guard"`
	PositionPoll       time.Duration `yaml:"position_poll"`
	VendorPoll         time.Duration `yaml:"vendor_poll"`
	GenericPoll        time.Duration `yaml:"generic_poll"`
	VendorStartDelay   time.Duration `yaml:"vendor_start_delay"`
	InitialRetry       time.Duration `yaml:"initial_retry"`
	InitialRetries     int           `yaml:"initial_retries"`
	APIPollInterval    time.Duration `yaml:"api_poll_interval"`
	APIPollAttempts    int           `yaml:"api_poll_attempts"`
	MutationDebounce   time.Duration `yaml:"mutation_debounce"`
	ReloadGuard        time.Duration `yaml:"reload_guard"`
}

type Storage struct {
	// OriginBackend is one of memory, sqlite or redis.
	OriginBackend string `yaml:"origin_backend"`
	SQLitePath    string `yaml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPrefix   string `yaml:"redis_prefix"`
}

type Bridge struct {
	Listen     string  `yaml:"listen"`
	InboundRPS float64 `yaml:"inbound_rps"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	DataDir string  `yaml:"data_dir"`
	Timing  Timing  `yaml:"timing"`
	Storage Storage `yaml:"storage"`
	Bridge  Bridge  `yaml:"bridge"`
	Log     Log     `yaml:"log"`
}

// DefaultTiming holds the engine's timing constants.
func DefaultTiming() Timing {
	return Timing{
		InterceptWindow:    10 * time.Second,
		DeferredWriteDelay: 2 * time.Second,
		BootGuard:          10 * time.Second,
		PositionPoll:       2 * time.Second,
		VendorPoll:         time.Second,
		GenericPoll:        800 * time.Millisecond,
		VendorStartDelay:   3 * time.Second,
		InitialRetry:       200 * time.Millisecond,
		InitialRetries:     5,
		APIPollInterval:    200 * time.Millisecond,
		APIPollAttempts:    50,
		MutationDebounce:   500 * time.Millisecond,
		ReloadGuard:        15 * time.Second,
	}
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir: dataDir,
		Timing:  DefaultTiming(),
		Storage: Storage{
			OriginBackend: "sqlite",
			SQLitePath:    filepath.Join(dataDir, ".scormtrack", "storage.db"),
			RedisPrefix:   "scormtrack:",
		},
		Bridge: Bridge{Listen: "127.0.0.1:8787", InboundRPS: 5},
		Log:    Log{Level: "info", Format: "console"},
	}, nil
}

// Load starts from New(dataDir) and overlays the YAML file at path, if any.
func Load(dataDir, path string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.OriginBackend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown origin storage backend %q", c.Storage.OriginBackend)
	}
	if c.Storage.OriginBackend == "redis" && c.Storage.RedisAddr == "" {
		return fmt.Errorf("storage.redis_addr is required for the redis backend")
	}
	if c.Timing.InterceptWindow <= 0 {
		return fmt.Errorf("timing.intercept_window must be positive")
	}
	if c.Timing.InitialRetries < 0 || c.Timing.APIPollAttempts < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	return nil
}
