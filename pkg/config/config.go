// Package config loads tayobell configuration from defaults, an optional
// YAML file and TAYOBELL_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

const defaultBusAPIURL = "http://ws.bus.go.kr/api/rest/arrive/getLowArrInfoByStId"

type Config struct {
	Listen string `yaml:"listen" validate:"required"`

	Feed      FeedConfig      `yaml:"feed"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Condition ConditionConfig `yaml:"condition"`
	Events    EventsConfig    `yaml:"events"`
}

type FeedConfig struct {
	BaseURL           string        `yaml:"baseURL" validate:"required,url"`
	ServiceKey        string        `yaml:"serviceKey"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond" validate:"gt=0"`
	MaxRetries        int           `yaml:"maxRetries" validate:"gte=0"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory redis mongo"`
}

type RedisConfig struct {
	Address  string `yaml:"address" validate:"required"`
	Password string `yaml:"password"`
	Database int    `yaml:"database" validate:"gte=0"`
}

type MongoConfig struct {
	Connection string `yaml:"connection" validate:"required"`
	Database   string `yaml:"database" validate:"required"`
}

type TrackerConfig struct {
	Stations    []string      `yaml:"stations"`
	RefreshRate time.Duration `yaml:"refreshRate" validate:"gt=0"`
	Concurrency int           `yaml:"concurrency" validate:"gt=0"`
}

type ConditionConfig struct {
	TimeRule string `yaml:"timeRule" validate:"required"`
	StopRule string `yaml:"stopRule" validate:"required"`
}

type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Queue   string `yaml:"queue" validate:"required"`
}

func Default() Config {
	return Config{
		Listen: ":3000",
		Feed: FeedConfig{
			BaseURL:           defaultBusAPIURL,
			Timeout:           5 * time.Second,
			RequestsPerSecond: 10,
			MaxRetries:        2,
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Mongo: MongoConfig{
			Connection: "mongodb://localhost:27017/",
			Database:   "tayobell",
		},
		Tracker: TrackerConfig{
			RefreshRate: 15 * time.Second,
			Concurrency: 4,
		},
		Condition: ConditionConfig{
			TimeRule: "arrivalTime <= 60",
			StopRule: "remainingStops <= 1",
		},
		Events: EventsConfig{
			Queue: "call-events",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// TAYOBELL_CONFIG (if any) and the environment.
func Load() (Config, error) {
	return LoadFrom(GetEnvironmentVariables())
}

func LoadFrom(env map[string]string) (Config, error) {
	cfg := Default()

	if path := env["TAYOBELL_CONFIG"]; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironment(env); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// NeedsRedis reports whether any configured component talks to Redis.
func (c Config) NeedsRedis() bool {
	return c.Storage.Backend == StorageRedis || c.Events.Enabled
}
