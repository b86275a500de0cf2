package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/paladin-bladesmith/bifrost/internal/schedule"
	"github.com/paladin-bladesmith/bifrost/internal/types"
)

// Stake source kinds accepted in StakeConfig.Source.
const (
	StakeSourceStatic = "static"
	StakeSourceFile   = "file"
)

type EpochConfig struct {
	SlotsPerEpoch  uint64 `mapstructure:"slots_per_epoch"`
	LeaderSlotSpan uint64 `mapstructure:"leader_slot_span"`
}

type CacheConfig struct {
	RetainedEpochs int `mapstructure:"retained_epochs"`
}

type StorageConfig struct {
	// LevelDBPath enables stake snapshot persistence when set.
	LevelDBPath string `mapstructure:"leveldb_path"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"` // e.g., 0.0.0.0:9095
}

type StaticValidator struct {
	ID       string `mapstructure:"id"`
	Stake    uint64 `mapstructure:"stake"`
	Endpoint string `mapstructure:"endpoint"`
}

type StakeConfig struct {
	// Source selects where stakes come from: static (inline list below)
	// or file (YAML validator file at File).
	Source string            `mapstructure:"source"`
	File   string            `mapstructure:"file"`
	Static []StaticValidator `mapstructure:"static"`
}

type AppConfig struct {
	LogLevel string        `mapstructure:"log_level"`
	Epoch    EpochConfig   `mapstructure:"epoch"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Storage  StorageConfig `mapstructure:"storage"`
	Server   ServerConfig  `mapstructure:"server"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Stake    StakeConfig   `mapstructure:"stake"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		Epoch: EpochConfig{
			SlotsPerEpoch:  432000,
			LeaderSlotSpan: schedule.DefaultLeaderSlotSpan,
		},
		Cache:  CacheConfig{RetainedEpochs: schedule.DefaultRetainedEpochs},
		Server: ServerConfig{ListenAddr: ":8080"},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: ":9095",
		},
		Stake: StakeConfig{Source: StakeSourceStatic},
	}
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Epoch.SlotsPerEpoch == 0 {
		return fmt.Errorf("epoch.slots_per_epoch must be greater than zero")
	}
	if c.Cache.RetainedEpochs < 0 {
		return fmt.Errorf("cache.retained_epochs must not be negative")
	}
	switch c.Stake.Source {
	case StakeSourceStatic:
		if len(c.Stake.Static) == 0 {
			return fmt.Errorf("stake.source is static but stake.static lists no validators")
		}
		if _, _, err := c.Stake.ToStakeEntries(); err != nil {
			return err
		}
	case StakeSourceFile:
		if c.Stake.File == "" {
			return fmt.Errorf("stake.source is file but stake.file is empty")
		}
	default:
		return fmt.Errorf("unknown stake.source %q", c.Stake.Source)
	}
	return nil
}

// ToStakeEntries converts the inline validator list to stake entries plus
// the endpoint mapping for the ones that advertise an endpoint.
func (c StakeConfig) ToStakeEntries() ([]types.StakeEntry, map[types.ValidatorID]string, error) {
	entries := make([]types.StakeEntry, 0, len(c.Static))
	endpoints := make(map[types.ValidatorID]string)
	for i, v := range c.Static {
		id, err := types.ParseValidatorID(v.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("stake.static entry %d: %w", i, err)
		}
		entries = append(entries, types.StakeEntry{ID: id, Stake: v.Stake})
		if v.Endpoint != "" {
			endpoints[id] = v.Endpoint
		}
	}
	return entries, endpoints, nil
}
