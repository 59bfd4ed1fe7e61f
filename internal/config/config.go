package config

import (
	"driver-route-planner/internal/domain"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the planner configuration. Values come from an optional YAML
// file and are overridden by environment variables.
type Config struct {
	DriverCost    float64 `yaml:"driver_cost"`
	MaxTime       float64 `yaml:"max_time"`
	Depot         string  `yaml:"depot"`
	Engine        string  `yaml:"engine"`
	MaxExactLoads int     `yaml:"max_exact_loads"`
	// Go duration, e.g. "30s". Empty means no deadline.
	SearchTimeout        string `yaml:"search_timeout"`
	SearchWorkers        int    `yaml:"search_workers"`
	ProgressInterval     string `yaml:"progress_interval"`
	GreedyStrictBudget   bool   `yaml:"greedy_strict_budget"`
	GreedySkipUnroutable bool   `yaml:"greedy_skip_unroutable"`

	RedisURL    string `yaml:"redis_url"`
	CacheDBPath string `yaml:"cache_db_path"`
	CacheTTL    string `yaml:"cache_ttl"`

	DatabaseURL string `yaml:"database_url"`
	DBPath      string `yaml:"db_path"`
	MetricsFile string `yaml:"metrics_file"`
}

func Default() Config {
	return Config{
		DriverCost:       domain.DefaultDriverCost,
		MaxTime:          domain.DefaultMaxTime,
		Depot:            "(0,0)",
		Engine:           "auto",
		MaxExactLoads:    9,
		SearchWorkers:    1,
		ProgressInterval: "5s",
		CacheTTL:         "24h",
	}
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads .env into the environment if present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error

	floatVar := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = f
		}
	}
	intVar := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = n
		}
	}
	boolVar := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q: %w", key, v, err))
				return
			}
			*dst = b
		}
	}
	stringVar := func(key string, dst *string) {
		*dst = Get(key, *dst)
	}

	floatVar("DRIVER_COST", &c.DriverCost)
	floatVar("MAX_TIME", &c.MaxTime)
	stringVar("DEPOT", &c.Depot)
	stringVar("ENGINE", &c.Engine)
	intVar("MAX_EXACT_LOADS", &c.MaxExactLoads)
	stringVar("SEARCH_TIMEOUT", &c.SearchTimeout)
	intVar("SEARCH_WORKERS", &c.SearchWorkers)
	stringVar("PROGRESS_INTERVAL", &c.ProgressInterval)
	boolVar("GREEDY_STRICT_BUDGET", &c.GreedyStrictBudget)
	boolVar("GREEDY_SKIP_UNROUTABLE", &c.GreedySkipUnroutable)
	stringVar("REDIS_URL", &c.RedisURL)
	stringVar("CACHE_DB_PATH", &c.CacheDBPath)
	stringVar("CACHE_TTL", &c.CacheTTL)
	stringVar("DATABASE_URL", &c.DatabaseURL)
	stringVar("DB_PATH", &c.DBPath)
	stringVar("METRICS_FILE", &c.MetricsFile)

	return errors.Join(errs...)
}

// Validate rejects values the planner cannot run with.
func (c Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}

	switch strings.ToLower(c.Engine) {
	case "auto", "exact", "greedy":
	default:
		return fmt.Errorf("config: unknown engine %q", c.Engine)
	}

	if c.MaxExactLoads < 0 {
		return fmt.Errorf("config: max exact loads must not be negative, got %d", c.MaxExactLoads)
	}
	if c.SearchWorkers < 0 {
		return fmt.Errorf("config: search workers must not be negative, got %d", c.SearchWorkers)
	}

	for name, v := range map[string]string{
		"search_timeout":    c.SearchTimeout,
		"progress_interval": c.ProgressInterval,
		"cache_ttl":         c.CacheTTL,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}

	return nil
}

// Params converts the cost model fields.
func (c Config) Params() (domain.Params, error) {
	depot, err := domain.ParsePoint(c.Depot)
	if err != nil {
		return domain.Params{}, fmt.Errorf("config: depot: %w", err)
	}

	p := domain.Params{DriverCost: c.DriverCost, MaxTime: c.MaxTime, Depot: depot}
	if err := p.Validate(); err != nil {
		return domain.Params{}, fmt.Errorf("config: %w", err)
	}
	return p, nil
}

func (c Config) EngineName() string { return strings.ToLower(c.Engine) }

func (c Config) SearchTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.SearchTimeout)
	return d
}

func (c Config) ProgressIntervalDuration() time.Duration {
	d, _ := parseDuration(c.ProgressInterval)
	return d
}

func (c Config) CacheTTLDuration() time.Duration {
	d, _ := parseDuration(c.CacheTTL)
	return d
}

func parseDuration(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
