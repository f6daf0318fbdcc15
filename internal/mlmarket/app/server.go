// Package app wires the pipeline together and drives the search and detail
// passes.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"mlintelligence/config"
	"mlintelligence/internal/mlmarket/business/models"
	"mlintelligence/internal/mlmarket/business/services/discovery"
	"mlintelligence/internal/mlmarket/business/services/enrichment"
	"mlintelligence/internal/mlmarket/pkg/fetch"
	"mlintelligence/internal/mlmarket/storage"
	"mlintelligence/internal/mlmarket/storage/repositories"
	"mlintelligence/metrics"
	"mlintelligence/pkg/dbconnect"
	"mlintelligence/pkg/dbconnect/migration"
	"mlintelligence/pkg/logger"
)

// Ingestor lands a shaped search page in the store.
type Ingestor interface {
	IngestPage(ctx context.Context, page *fetch.RawSearchPage, startRanking int) (int, int, error)
}

// Enricher shapes and persists one detail observation.
type Enricher interface {
	Process(ctx context.Context, mlID string, detail *fetch.RawDetail) error
}

// CandidateSelector picks the products the detail pass will visit.
type CandidateSelector interface {
	SelectCandidates(ctx context.Context, f models.CandidateFilter) ([]models.CandidateRef, error)
}

type Server struct {
	scraper  configValues
	log      logger.Logger
	search   fetch.SearchFetcher
	detail   fetch.DetailFetcher
	ingestor Ingestor
	enricher Enricher
	selector CandidateSelector
	limiter  *rate.Limiter
	run      *metrics.RunMetrics
}

// configValues is the subset of scraper tuning the run loops read.
type configValues struct {
	minDelay      time.Duration
	maxDelay      time.Duration
	detailTimeout time.Duration
}

// NewServer connects the configured database, applies migrations and builds
// the pipeline. The returned close function releases the connection pool.
func NewServer(cfg *config.AppConfig, log logger.Logger, connector dbconnect.Database) (*Server, func() error, error) {
	db, err := connector.Connect()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	migrations := []migration.MigrationInterface{
		&storage.MigrationsSchema{},
		&storage.ProductsTable{},
		&storage.SellersTable{},
	}
	for _, m := range migrations {
		if err := m.UpMigration(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	products := repositories.NewProductRepository(db, connector.DriverName())

	searchFetcher, detailFetcher, err := fetch.NewEngine(cfg.Scraper)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	rpm := cfg.Scraper.RequestsPerMinute
	if rpm <= 0 {
		rpm = 12
	}

	srv := &Server{
		scraper: configValues{
			minDelay:      time.Duration(cfg.Scraper.MinDelaySeconds * float64(time.Second)),
			maxDelay:      time.Duration(cfg.Scraper.MaxDelaySeconds * float64(time.Second)),
			detailTimeout: cfg.Scraper.DetailTimeout(),
		},
		log:      log,
		search:   searchFetcher,
		detail:   detailFetcher,
		ingestor: discovery.NewService(products, log),
		enricher: enrichment.NewService(products, log),
		selector: products,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		run:      &metrics.RunMetrics{},
	}
	return srv, db.Close, nil
}

// RunSearch walks up to maxPages result pages per term and lands every
// usable card. A fetch failure abandons the remaining pages of that term
// only; a storage failure halts the whole pass.
func (s *Server) RunSearch(ctx context.Context, terms []string, maxPages int) error {
	for _, term := range terms {
		ranking := 1
		for page := 0; page < maxPages; page++ {
			raw, err := s.search.FetchSearchPage(ctx, term, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Error("term %q page %d: fetch failed: %v", term, page+1, err)
				metrics.RecordFailure("search")
				s.run.ErroredCount.Add(1)
				break
			}
			if len(raw.Cards) == 0 {
				s.log.Log("term %q page %d: no results, stopping pagination", term, page+1)
				break
			}
			saved, next, err := s.ingestor.IngestPage(ctx, raw, ranking)
			if err != nil {
				return fmt.Errorf("search pass halted on term %q: %w", term, err)
			}
			ranking = next
			metrics.RecordDiscovered(saved)
			s.run.DiscoveredCount.Add(int32(saved))
			if err := s.politeDelay(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunDetail enriches every product matching the filter. Fetch failures and
// vanished products skip the item; storage failures halt the pass.
func (s *Server) RunDetail(ctx context.Context, filter models.CandidateFilter) error {
	candidates, err := s.selector.SelectCandidates(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to select candidates: %w", err)
	}
	if len(candidates) == 0 {
		s.log.Log("no products matched the detail filter, nothing to do")
		return nil
	}
	s.log.Log("detail pass visiting %d candidates", len(candidates))

	for i, c := range candidates {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		itemCtx, cancel := context.WithTimeout(ctx, s.scraper.detailTimeout)
		raw, err := s.detail.FetchDetail(itemCtx, c.Permalink)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Error("item %s (%d/%d): fetch failed: %v", c.MLID, i+1, len(candidates), err)
			metrics.RecordFailure("detail_fetch")
			s.run.SkippedCount.Add(1)
			continue
		}

		err = s.enricher.Process(ctx, c.MLID, raw)
		switch {
		case errors.Is(err, repositories.ErrProductNotFound):
			s.log.Error("item %s: no longer in the store, skipping", c.MLID)
			metrics.RecordFailure("detail_store")
			s.run.SkippedCount.Add(1)
			continue
		case err != nil:
			return fmt.Errorf("detail pass halted on %s: %w", c.MLID, err)
		}

		metrics.RecordEnriched()
		metrics.ObserveDetailDuration(time.Since(start))
		s.run.EnrichedCount.Add(1)
		s.log.Log("item %s (%d/%d): enriched", c.MLID, i+1, len(candidates))

		if err := s.politeDelay(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run executes one pipeline mode and logs the run summary.
func (s *Server) Run(ctx context.Context, mode string, terms []string, maxPages int, filter models.CandidateFilter) error {
	var err error
	switch mode {
	case "search":
		err = s.RunSearch(ctx, terms, maxPages)
	case "detail":
		err = s.RunDetail(ctx, filter)
	case "full":
		if err = s.RunSearch(ctx, terms, maxPages); err == nil {
			err = s.RunDetail(ctx, filter)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	s.log.Log("run summary: discovered=%d enriched=%d skipped=%d errored=%d",
		s.run.DiscoveredCount.Load(), s.run.EnrichedCount.Load(),
		s.run.SkippedCount.Load(), s.run.ErroredCount.Load())
	return err
}

// politeDelay sleeps a random interval between the configured bounds,
// honoring context cancellation.
func (s *Server) politeDelay(ctx context.Context) error {
	if s.scraper.maxDelay <= 0 {
		return nil
	}
	d := s.scraper.minDelay
	if spread := s.scraper.maxDelay - s.scraper.minDelay; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
