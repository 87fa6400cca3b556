package config

import (
	"time"

	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Duration reads "2s" style strings from toml
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	NumExecutors int    `toml:"num_executors"`
	Log2NumLanes uint32 `toml:"log2_num_lanes"`

	// bounded wait of the monitor while a slice runs, expiry only logs
	SliceWaitTimeout Duration `toml:"slice_wait_timeout"`
	// how long fee settlement may wait for an idle executor
	SettleFeesTimeout  Duration `toml:"settle_fees_timeout"`
	StartRetries       int      `toml:"start_retries"`
	StartRetryInterval Duration `toml:"start_retry_interval"`

	CacheLifetime            Duration `toml:"cache_lifetime"`
	CacheMaintenanceInterval uint64   `toml:"cache_maintenance_interval"`
	CacheSize                int      `toml:"cache_size"`

	DataDir  string `toml:"data_dir"`
	LogLevel string `toml:"log_level"`
}

func Default() *Config {
	return &Config{
		NumExecutors:             4,
		Log2NumLanes:             2,
		SliceWaitTimeout:         Duration{2 * time.Second},
		SettleFeesTimeout:        Duration{time.Second},
		StartRetries:             20,
		StartRetryInterval:       Duration{100 * time.Millisecond},
		CacheLifetime:            Duration{time.Hour},
		CacheMaintenanceInterval: 16,
		CacheSize:                1024,
		DataDir:                  "./ledgerdata",
		LogLevel:                 "info",
	}
}

// Load reads path on top of the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := tml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.NumExecutors <= 0 {
		return errors.New("num_executors must be positive")
	}
	if cfg.Log2NumLanes > 16 {
		return errors.Errorf("log2_num_lanes %d is too large", cfg.Log2NumLanes)
	}
	if cfg.CacheMaintenanceInterval == 0 {
		return errors.New("cache_maintenance_interval must be positive")
	}
	if cfg.CacheSize <= 0 {
		return errors.New("cache_size must be positive")
	}
	if cfg.StartRetries <= 0 {
		return errors.New("start_retries must be positive")
	}
	for _, d := range []struct {
		key   string
		value Duration
	}{
		{"slice_wait_timeout", cfg.SliceWaitTimeout},
		{"settle_fees_timeout", cfg.SettleFeesTimeout},
		{"start_retry_interval", cfg.StartRetryInterval},
		{"cache_lifetime", cfg.CacheLifetime},
	} {
		if d.value.Duration <= 0 {
			return errors.Errorf("%s must be positive, got %s", d.key, d.value.Duration)
		}
	}
	return nil
}

func (cfg *Config) NumLanes() uint32 {
	return uint32(1) << cfg.Log2NumLanes
}
