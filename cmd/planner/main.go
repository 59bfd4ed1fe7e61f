package main

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/adapters/cache"
	"driver-route-planner/internal/adapters/loadfile"
	"driver-route-planner/internal/adapters/repositories"
	"driver-route-planner/internal/config"
	"driver-route-planner/internal/platform/db"
	"driver-route-planner/internal/platform/metrics"
	"driver-route-planner/internal/ports"
	"driver-route-planner/internal/report"
	"driver-route-planner/internal/services"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

type flags struct {
	problemFile string
	configPath  string
	engine      string
	format      string
	source      string
	dbPath      string
	metricsFile string
	verbose     bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.StringVar(&f.problemFile, "problemFile", "", "Problem file with loadNumber pickup dropoff columns")
	fs.StringVar(&f.configPath, "config", config.Get("PLANNER_CONFIG", ""), "YAML configuration file")
	fs.StringVar(&f.engine, "engine", "", "Engine: auto, exact or greedy (overrides ENGINE)")
	fs.StringVar(&f.format, "format", report.FormatText, "Output format: text or json")
	fs.StringVar(&f.source, "source", "file", "Load source: file, sqlite or postgres")
	fs.StringVar(&f.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file (overrides METRICS_FILE)")
	fs.BoolVar(&f.verbose, "v", false, "Print a summary line and warnings after the routes")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	if f.problemFile == "" && fs.NArg() > 0 {
		f.problemFile = fs.Arg(0)
	}
	return f, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	config.LoadDotEnv()

	f, err := parseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if f.engine != "" {
		cfg.Engine = f.engine
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := cfg.Params()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openSource(f, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	loads, err := repo.ListLoads(ctx)
	if err != nil {
		return fmt.Errorf("list loads: %w", err)
	}

	solutionCache, closeCache := openCache(ctx, cfg)
	defer closeCache()

	metrics.RegisterDefault()

	planner := services.NewPlanner(params, options(cfg), solutionCache)
	res, planErr := planner.Plan(ctx, loads)

	if res != nil {
		if err := report.Write(stdout, res, f.format, f.verbose); err != nil {
			return err
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Printf("op=write_metrics err=%v", err)
		}
	}

	if planErr != nil {
		return planErr
	}
	return nil
}

func options(cfg config.Config) services.Options {
	return services.Options{
		Engine:         cfg.EngineName(),
		MaxExactLoads:  cfg.MaxExactLoads,
		SearchTimeout:  cfg.SearchTimeoutDuration(),
		Workers:        cfg.SearchWorkers,
		ProgressEvery:  cfg.ProgressIntervalDuration(),
		StrictBudget:   cfg.GreedyStrictBudget,
		SkipUnroutable: cfg.GreedySkipUnroutable,
		CacheTTL:       cfg.CacheTTLDuration(),
	}
}

// Select the load repository for the requested source.
func openSource(f flags, cfg config.Config) (ports.LoadRepository, func(), error) {
	noop := func() {}

	switch strings.ToLower(f.source) {
	case "file":
		if f.problemFile == "" {
			return nil, noop, errors.New("-problemFile is required for source=file")
		}
		return loadfile.NewRepository(f.problemFile), noop, nil

	case "sqlite":
		path := cfg.DBPath
		if path == "" {
			path = "data/app.db"
		}
		sqlDB, err := db.OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return repositories.NewSqliteLoadRepository(sqlDB), closer(sqlDB), nil

	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, noop, errors.New("DATABASE_URL is required for source=postgres")
		}
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		return repositories.NewSQLLoadRepository(sqlDB), closer(sqlDB), nil
	}

	return nil, noop, fmt.Errorf("unknown source %q", f.source)
}

// Pick a solution cache. A cache that cannot be reached is logged and
// skipped; planning never depends on it.
func openCache(ctx context.Context, cfg config.Config) (ports.SolutionCache, func()) {
	noop := func() {}

	if cfg.CacheTTLDuration() <= 0 {
		return nil, noop
	}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisSolutionCache(cfg.RedisURL)
		if err != nil {
			log.Printf("op=open_cache backend=redis err=%v", err)
			return nil, noop
		}
		if err := rc.Ping(ctx); err != nil {
			log.Printf("op=open_cache backend=redis err=%v", err)
			_ = rc.Close()
			return nil, noop
		}
		return rc, func() { _ = rc.Close() }
	}

	if cfg.CacheDBPath != "" {
		sqlDB, err := db.OpenSQLite(cfg.CacheDBPath)
		if err != nil {
			log.Printf("op=open_cache backend=sqlite err=%v", err)
			return nil, noop
		}
		if err := repositories.InitSchema(sqlDB); err != nil {
			log.Printf("op=open_cache backend=sqlite err=%v", err)
			_ = sqlDB.Close()
			return nil, noop
		}
		sc := cache.NewSqliteSolutionCache(sqlDB)
		if n, err := sc.Purge(ctx); err != nil {
			log.Printf("op=open_cache backend=sqlite purge_err=%v", err)
		} else if n > 0 {
			log.Printf("op=open_cache backend=sqlite purged=%d", n)
		}
		return sc, closer(sqlDB)
	}

	return nil, noop
}

func closer(sqlDB *sql.DB) func() {
	return func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("op=close_db err=%v", err)
		}
	}
}
