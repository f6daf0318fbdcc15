package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mlintelligence/config"
	"mlintelligence/internal/mlmarket/app"
	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/metrics"
	"mlintelligence/pkg/dbconnect"
	"mlintelligence/pkg/dbconnect/postgres"
	"mlintelligence/pkg/dbconnect/sqlite"
	"mlintelligence/pkg/logger"
)

// termsFlag accepts repeated --terms flags and comma-separated lists.
type termsFlag []string

func (t *termsFlag) String() string {
	return strings.Join(*t, ",")
}

func (t *termsFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

func main() {
	var terms termsFlag
	mode := flag.String("mode", "full", "pipeline mode: search, detail or full")
	flag.Var(&terms, "terms", "search term, repeatable or comma-separated")
	pages := flag.Int("pages", 3, "maximum result pages per term")
	minPrice := flag.Float64("min-price", 0, "minimum current price for detail candidates")
	minRating := flag.Float64("min-rating", 0, "minimum review rating; unrated products stay eligible")
	minSales := flag.Int("min-sales", 0, "minimum sales count from the search pass")
	limit := flag.Int("limit", 20, "maximum candidates per detail pass")
	searchTerm := flag.String("search-term", "", "restrict detail candidates to one search term")
	daysSince := flag.Int("days-since-update", 0, "only revisit products last updated at least this many days ago")
	onlyNew := flag.Bool("only-new", false, "only visit products never enriched")
	configPath := flag.String("config", "", "path to a yaml config file")
	dbPath := flag.String("db", "", "override the sqlite database path")
	flag.Parse()

	switch *mode {
	case "search", "detail", "full":
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q, expected search, detail or full\n", *mode)
		os.Exit(2)
	}
	if (*mode == "search" || *mode == "full") && len(terms) == 0 {
		fmt.Fprintln(os.Stderr, "--terms is required when mode is search or full")
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Sqlite.Path = *dbPath
	}

	log := logger.NewLogger("[pipeline]")
	defer log.Sync()

	dbCfg, err := cfg.Database.Pick()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var connector dbconnect.Database
	switch dbCfg.DriverName() {
	case "sqlite":
		connector = sqlite.NewConnector(cfg.Database.Sqlite)
	case "postgres":
		connector = postgres.NewPgConnector(cfg.Database.Postgres)
	}

	srv, closeDB, err := app.NewServer(cfg, log, connector)
	if err != nil {
		log.Error("startup failed: %v", err)
		os.Exit(1)
	}
	defer closeDB()

	if cfg.MetricsAddr != "" {
		mlog := log.WithPrefix("[metrics]")
		go func() {
			http.Handle("/metrics", metrics.MetricsHandler())
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
				mlog.Error("listener stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	filter := models.CandidateFilter{
		MinPrice:        *minPrice,
		MinRating:       *minRating,
		MinSales:        *minSales,
		DaysSinceUpdate: *daysSince,
		SearchTerm:      *searchTerm,
		OnlyNew:         *onlyNew,
		Limit:           *limit,
	}

	if err := srv.Run(ctx, *mode, terms, *pages, filter); err != nil {
		log.Error("run failed: %v", err)
		os.Exit(1)
	}
}
