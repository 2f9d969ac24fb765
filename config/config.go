// Package config loads tickmesh configuration from YAML files and the
// environment, on top of built-in defaults, and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/tickmesh/search"
	"github.com/hupe1980/tickmesh/sim"
)

// Config is the top-level configuration.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after creation.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Runner  RunnerConfig  `yaml:"runner"`
	Budget  BudgetConfig  `yaml:"budget"`
	Search  SearchConfig  `yaml:"search"`
	Store   StoreConfig   `yaml:"store"`
	Sim     SimConfig     `yaml:"sim"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// RunnerConfig configures the tick runner.
type RunnerConfig struct {
	// MemoryKey is the checkpoint key entity memory is stored under.
	MemoryKey string `yaml:"memory_key" validate:"required"`
	// PruneInterval is how often, in ticks, dead entities are pruned from memory.
	PruneInterval uint64 `yaml:"prune_interval" validate:"min=1"`
}

// BudgetConfig holds the budget requirements of the built-in tasks.
type BudgetConfig struct {
	Construction int `yaml:"construction" validate:"min=0"`
	Repair       int `yaml:"repair" validate:"min=0"`
}

// SearchConfig tunes the placement search.
type SearchConfig struct {
	TodoCapacity  int `yaml:"todo_capacity" validate:"min=1,max=4096"`
	OpenCapacity  int `yaml:"open_capacity" validate:"min=5,max=64"`
	FreeThreshold int `yaml:"free_threshold" validate:"min=1,max=3"`
	// MaxSteps bounds the cells expanded per region per tick.
	MaxSteps int `yaml:"max_steps" validate:"min=1"`
}

// SearchOptions converts the section to search.Config.
func (c SearchConfig) SearchOptions() search.Config {
	return search.Config{
		TodoCapacity:  c.TodoCapacity,
		OpenCapacity:  c.OpenCapacity,
		FreeThreshold: c.FreeThreshold,
	}
}

// StoreConfig selects the checkpoint store.
type StoreConfig struct {
	Kind     string `yaml:"kind" validate:"oneof=memory badger"`
	Path     string `yaml:"path" validate:"required_if=Kind badger InMemory false"`
	InMemory bool   `yaml:"in_memory"`
	MaxSize  int    `yaml:"max_size" validate:"min=0"`
}

// SimConfig configures the deterministic host simulator.
type SimConfig struct {
	Seed              uint64   `yaml:"seed"`
	Regions           []string `yaml:"regions" validate:"min=1,dive,required"`
	WallDensity       float64  `yaml:"wall_density" validate:"min=0,max=1"`
	BucketStart       int      `yaml:"bucket_start" validate:"min=0"`
	BucketLimit       int      `yaml:"bucket_limit" validate:"min=0"`
	BucketMax         int      `yaml:"bucket_max" validate:"gtefield=BucketStart"`
	NodeCost          int      `yaml:"node_cost" validate:"min=0"`
	StructuresPerTick int      `yaml:"structures_per_tick" validate:"min=1"`
	StructuresPerRoom int      `yaml:"structures_per_room" validate:"min=1"`
	MaxHits           int      `yaml:"max_hits" validate:"min=1"`
	Decay             int      `yaml:"decay" validate:"min=0"`
}

// WorldOptions converts the section into simulator options. The seed is
// offset by shard so every shard simulates a different world.
func (c SimConfig) WorldOptions(shard int) func(o *sim.Options) {
	return func(o *sim.Options) {
		o.Seed = c.Seed + uint64(shard)
		o.Regions = c.Regions
		o.WallDensity = c.WallDensity
		o.BucketStart = c.BucketStart
		o.BucketLimit = c.BucketLimit
		o.BucketMax = c.BucketMax
		o.NodeCost = c.NodeCost
		o.StructuresPerRoom = c.StructuresPerRoom
		o.MaxHits = c.MaxHits
		o.Decay = c.Decay
	}
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Runner: RunnerConfig{
			MemoryKey:     "memory",
			PruneInterval: 16,
		},
		Budget: BudgetConfig{Construction: 5000, Repair: 500},
		Search: SearchConfig{
			TodoCapacity:  128,
			OpenCapacity:  8,
			FreeThreshold: 3,
			MaxSteps:      4,
		},
		Store: StoreConfig{Kind: "memory", MaxSize: 100 * 1024},
		Sim: SimConfig{
			Seed:              1,
			Regions:           []string{"W1N1", "W2N1", "W1N2"},
			WallDensity:       0.25,
			BucketStart:       6000,
			BucketLimit:       20,
			BucketMax:         10000,
			NodeCost:          10,
			StructuresPerTick: 2,
			StructuresPerRoom: 40,
			MaxHits:           5000,
			Decay:             1,
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %s is %q but must satisfy %s", verrs[0].Namespace(), fmt.Sprint(verrs[0].Value()), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// not empty) and the TICKMESH_* environment variables, validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TICKMESH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TICKMESH_STORE_KIND"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("TICKMESH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TICKMESH_SIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Sim.Seed = n
		}
	}
	if v := os.Getenv("TICKMESH_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
