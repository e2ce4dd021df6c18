package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jakobng/showtimes/internal/cache"
	"github.com/jakobng/showtimes/internal/dedupe"
	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/enrich"
	"github.com/jakobng/showtimes/internal/normalize"
	"github.com/jakobng/showtimes/internal/ports"
	"github.com/jakobng/showtimes/internal/scraper"
)

// PipelineDeps wires all collaborators into the orchestration pipeline.
type PipelineDeps struct {
	Sources    []scraper.Source
	Normalizer *normalize.Normalizer
	Enricher   *enrich.Enricher
	Cache      *cache.Store
	Store      ports.DatasetStore
	Notifier   ports.ReportNotifier
	Logger     *slog.Logger

	Concurrency int
	Timeout     time.Duration
	Location    *time.Location
}

// Pipeline orchestrates one aggregation run: scrape all sources with
// bounded parallelism, normalize, merge, enrich, persist, report.
type Pipeline struct {
	sources    []scraper.Source
	normalizer *normalize.Normalizer
	enricher   *enrich.Enricher
	cache      *cache.Store
	store      ports.DatasetStore
	notifier   ports.ReportNotifier
	logger     *slog.Logger

	concurrency int
	timeout     time.Duration
	loc         *time.Location
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		sources:     deps.Sources,
		normalizer:  deps.Normalizer,
		enricher:    deps.Enricher,
		cache:       deps.Cache,
		store:       deps.Store,
		notifier:    deps.Notifier,
		logger:      logger,
		concurrency: concurrency,
		timeout:     deps.Timeout,
		loc:         loc,
		now:         time.Now,
	}
}

// sourceResult carries one source's complete execution outcome off its
// worker goroutine.
type sourceResult struct {
	source   scraper.Source
	listings []domain.RawListing
	err      error
}

// Run executes one aggregation run and returns the finalized report. The
// returned error is non-nil only when the final dataset could not be
// persisted; every other failure is isolated and recorded in the report.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}

	batches := p.collect(ctx, &report)
	for _, b := range batches {
		report.RawListings += len(b.raw)
	}

	canonical := p.normalizeAll(batches, &report)
	report.BeforeDedup = len(canonical)

	merged := dedupe.Merge(canonical)
	report.AfterDedup = len(merged)
	p.logger.Info("dedup complete", "before", report.BeforeDedup, "after", report.AfterDedup)

	if p.enricher != nil {
		merged, report.Enrichment = p.enricher.EnrichAll(ctx, merged)
	}

	today := p.now().In(p.loc).Format("2006-01-02")
	for _, l := range merged {
		if l.Date == today {
			report.TodayListings++
		}
	}

	if p.cache != nil {
		if err := p.cache.Save(); err != nil {
			p.logger.Error("cache save failed, next run pays full lookup cost", "error", err)
		}
	}

	dataset := domain.Dataset{
		RunID:       report.RunID,
		GeneratedAt: p.now().UTC(),
		Listings:    merged,
	}
	if err := p.store.ReplaceDataset(ctx, dataset); err != nil {
		report.FinishedAt = p.now().UTC()
		report.Finalize()
		return report, fmt.Errorf("persist dataset: %w", err)
	}

	report.FinishedAt = p.now().UTC()
	report.Finalize()

	if p.notifier != nil {
		if err := p.notifier.Deliver(ctx, report); err != nil {
			p.logger.Error("report delivery failed", "error", err)
		}
	}

	return report, nil
}

// sourceBatch is one successful source's raw listings, tagged with the
// source identity the merge step needs.
type sourceBatch struct {
	name  string
	order int
	raw   []domain.RawListing
}

// collect runs every source on a bounded worker pool and gathers raw
// listings per source. A source failure, panic or timeout contributes zero
// listings and a failed outcome; it never aborts the run. Scrapers are not
// trusted to honor cancellation: once the deadline passes, sources that
// have not reported are recorded as timed out and their goroutines
// abandoned.
func (p *Pipeline) collect(ctx context.Context, report *domain.RunReport) []sourceBatch {
	runCtx := ctx
	cancel := func() {}
	if p.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	jobs := make(chan scraper.Source, len(p.sources))
	// Buffered so abandoned workers can deliver late results and exit.
	results := make(chan sourceResult, len(p.sources))

	for i := 0; i < p.concurrency; i++ {
		go func() {
			for src := range jobs {
				results <- p.runSource(runCtx, src)
			}
		}()
	}

	for _, src := range p.sources {
		jobs <- src
	}
	close(jobs)

	var batches []sourceBatch
	completed := make(map[string]bool, len(p.sources))
	record := func(res sourceResult) {
		completed[res.source.Name] = true
		if res.err != nil {
			report.AddOutcome(domain.SourceOutcome{
				Source:      res.source.Name,
				Status:      domain.SourceStatusFailed,
				ErrorDetail: errorDetail(res.err),
			})
			p.logger.Error("source failed", "source", res.source.Name, "error", res.err)
			return
		}

		report.AddOutcome(domain.SourceOutcome{
			Source:       res.source.Name,
			Status:       domain.SourceStatusOK,
			ListingCount: len(res.listings),
		})
		p.logger.Info("source scraped", "source", res.source.Name, "listings", len(res.listings))
		batches = append(batches, sourceBatch{
			name:  res.source.Name,
			order: res.source.Order,
			raw:   res.listings,
		})
	}

	remaining := len(p.sources)
	for remaining > 0 {
		select {
		case res := <-results:
			record(res)
			remaining--
		case <-runCtx.Done():
			// Take whatever finished before the deadline, then fail the rest
			// without waiting on their workers.
			for remaining > 0 {
				select {
				case res := <-results:
					record(res)
					remaining--
				default:
					remaining = 0
				}
			}
			for _, src := range p.sources {
				if completed[src.Name] {
					continue
				}
				report.AddOutcome(domain.SourceOutcome{
					Source:      src.Name,
					Status:      domain.SourceStatusFailed,
					ErrorDetail: errorDetail(runCtx.Err()),
				})
				p.logger.Error("source abandoned", "source", src.Name, "error", runCtx.Err())
			}
		}
	}

	return batches
}

// runSource executes one source, converting panics into ordinary failures
// so a broken scraper cannot take the run down.
func (p *Pipeline) runSource(ctx context.Context, src scraper.Source) (res sourceResult) {
	res.source = src
	defer func() {
		if r := recover(); r != nil {
			res.listings = nil
			res.err = fmt.Errorf("scraper panicked: %v", r)
		}
	}()

	res.listings, res.err = src.Produce(ctx)
	return res
}

func (p *Pipeline) normalizeAll(batches []sourceBatch, report *domain.RunReport) []domain.CanonicalListing {
	var canonical []domain.CanonicalListing
	for _, b := range batches {
		for _, r := range b.raw {
			listing, err := p.normalizer.Listing(r, b.name, b.order)
			if err != nil {
				report.Dropped++
				p.logger.Warn("record dropped", "error", err)
				continue
			}
			canonical = append(canonical, listing)
		}
	}
	return canonical
}

// errorDetail renders an error for the report, naming timeouts explicitly
// so operators can tell a slow venue from a broken one.
func errorDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout: " + err.Error()
	}
	return err.Error()
}
