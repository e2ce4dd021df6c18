package enrich

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jakobng/showtimes/internal/cache"
	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/normalize"
	"github.com/jakobng/showtimes/internal/ports"
)

const (
	broadcastThreshold = 0.7
	maxRuntimeChecks   = 3
)

// Options tunes the enrichment client.
type Options struct {
	// Parallelism bounds simultaneous external calls; cache hits are never
	// throttled.
	Parallelism int
	// ScoreThreshold is the minimum candidate score accepted as a match.
	ScoreThreshold float64
}

// Enricher resolves listing titles against the external metadata source,
// consulting and populating the shared cache.
type Enricher struct {
	searcher  ports.MetadataSearcher
	store     *cache.Store
	logger    *slog.Logger
	threshold float64
	sem       chan struct{}
	now       func() time.Time
}

// New wires a metadata searcher and the persistent cache.
func New(searcher ports.MetadataSearcher, store *cache.Store, logger *slog.Logger, opts Options) *Enricher {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.ScoreThreshold <= 0 {
		opts.ScoreThreshold = 0.65
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		searcher:  searcher,
		store:     store,
		logger:    logger,
		threshold: opts.ScoreThreshold,
		sem:       make(chan struct{}, opts.Parallelism),
		now:       time.Now,
	}
}

// lookupHints is the per-title evidence gathered across listings.
type lookupHints struct {
	title   string
	year    int
	runtime int
}

// EnrichAll resolves every distinct title once and applies the results to
// the listings. Lookup failures leave enrichment fields empty and are never
// fatal.
func (e *Enricher) EnrichAll(ctx context.Context, listings []domain.CanonicalListing) ([]domain.CanonicalListing, domain.EnrichmentStats) {
	var stats domain.EnrichmentStats

	unique := make(map[string]lookupHints)
	var order []string
	for _, l := range listings {
		key := normalize.MatchKey(l.MovieTitle)
		if key == "" {
			continue
		}
		hints, seen := unique[key]
		if !seen {
			hints.title = l.MovieTitle
			order = append(order, key)
		}
		if hints.year == 0 {
			hints.year, _ = strconv.Atoi(l.ReleaseYear)
		}
		if hints.runtime == 0 {
			hints.runtime, _ = strconv.Atoi(l.RuntimeMinutes)
		}
		unique[key] = hints
	}

	e.logger.Info("enrichment start", "listings", len(listings), "unique_titles", len(order))

	resolved := make(map[string]domain.CacheEntry, len(order))
	var pending []string
	for _, key := range order {
		if entry, ok := e.store.Get(key); ok {
			resolved[key] = entry
			stats.CacheHits++
			continue
		}
		pending = append(pending, key)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, key := range pending {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			entry, queried, ok := e.resolve(ctx, key, unique[key])

			mu.Lock()
			defer mu.Unlock()
			if queried {
				stats.ExternalLookups++
			}
			if !ok {
				stats.Misses++
				return
			}
			resolved[key] = entry
			if entry.Found {
				stats.Matches++
			} else {
				stats.Misses++
			}
		}(key)
	}
	wg.Wait()

	for i := range listings {
		key := normalize.MatchKey(listings[i].MovieTitle)
		entry, ok := resolved[key]
		if !ok || !entry.Found {
			continue
		}
		apply(&listings[i], entry)
	}

	return listings, stats
}

// resolve produces the cache entry for one lookup key. The second return
// reports whether the external source was contacted; the third is false
// when an external failure left the key unresolved (nothing is cached so a
// later run retries).
func (e *Enricher) resolve(ctx context.Context, key string, hints lookupHints) (domain.CacheEntry, bool, bool) {
	if reason, skip := SkipReason(hints.title); skip {
		e.logger.Debug("enrichment skipped", "title", hints.title, "reason", reason)
		entry := domain.CacheEntry{Found: false, ResolvedAt: e.now().UTC()}
		e.store.Put(key, entry)
		return entry, false, true
	}
	if HasBroadcastBrand(hints.title) && len(requiredGuardTokens(hints.title)) == 0 {
		// Broadcast brand with no usable guard tokens: never match.
		entry := domain.CacheEntry{Found: false, ResolvedAt: e.now().UTC()}
		e.store.Put(key, entry)
		return entry, false, true
	}

	threshold := e.threshold
	strict := HasBroadcastBrand(hints.title)
	if strict && threshold < broadcastThreshold {
		threshold = broadcastThreshold
	}
	guard := requiredGuardTokens(hints.title)

	type scored struct {
		candidate domain.Candidate
		score     float64
		query     string
	}

	var candidates []scored
	seenIDs := map[int64]struct{}{}
	searchErrs := 0
	queried := false

	collect := func(year int) {
		for _, query := range TitleQueries(hints.title) {
			if len(query) < 2 {
				continue
			}

			results, err := e.search(ctx, query, year)
			queried = true
			if err != nil {
				searchErrs++
				e.logger.Warn("metadata search failed", "query", query, "error", err)
				continue
			}

			for _, c := range results {
				if _, dup := seenIDs[c.ID]; dup {
					continue
				}
				seenIDs[c.ID] = struct{}{}

				// Candidate-side broadcast filter: a stage/opera recording must
				// not be matched to a film listing, and vice versa.
				if !strict && HasBroadcastBrand(c.Title) {
					continue
				}
				if !passesGuard(guard, c) {
					continue
				}

				candidates = append(candidates, scored{
					candidate: c,
					score: scoreCandidate(query, c, scoreHints{
						Year:        hints.year,
						CurrentYear: e.now().Year(),
						StrictYear:  strict,
					}),
					query: query,
				})
			}
		}
	}

	acceptable := func() []scored {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
		var top []scored
		for _, c := range candidates {
			if c.score >= threshold {
				top = append(top, c)
			}
		}
		return top
	}

	collect(hints.year)
	top := acceptable()

	// Repertory listings often carry the screening year of a revival, and
	// the year-qualified search filters hard. Retry without the year before
	// concluding there is no match, so a negative is never cached off a
	// year-filtered search alone.
	if len(top) == 0 && hints.year > 0 {
		collect(0)
		top = acceptable()
	}

	if len(top) == 0 {
		if searchErrs > 0 && len(candidates) == 0 {
			// Every query failed outright; do not cache, retry next run.
			return domain.CacheEntry{}, queried, false
		}
		entry := domain.CacheEntry{Found: false, ResolvedAt: e.now().UTC()}
		e.store.Put(key, entry)
		return entry, queried, true
	}

	// Fetch details for the winner; when the listing carries a runtime we
	// verify it against the next-best candidates too, since double features
	// and shorts share titles with features.
	checkLimit := 1
	if hints.runtime > 0 && len(top) > 1 {
		checkLimit = maxRuntimeChecks
	}
	if checkLimit > len(top) {
		checkLimit = len(top)
	}

	for _, c := range top[:checkLimit] {
		details, err := e.details(ctx, c.candidate.ID)
		if err != nil {
			e.logger.Warn("metadata details failed", "id", c.candidate.ID, "error", err)
			continue
		}

		if hints.runtime > 0 && details.RuntimeMinutes > 0 {
			diff := hints.runtime - details.RuntimeMinutes
			if diff < 0 {
				diff = -diff
			}
			allowed := 30
			if hints.runtime > 180 {
				// Long showings often include an intermission.
				allowed = 45
			}
			if diff > allowed {
				e.logger.Debug("runtime mismatch", "title", hints.title, "candidate", details.Title, "listed", hints.runtime, "external", details.RuntimeMinutes)
				continue
			}
		}

		entry := domain.CacheEntry{
			Found:          true,
			MatchedTitle:   details.Title,
			OriginalTitle:  details.OriginalTitle,
			ExternalID:     details.ID,
			PosterPath:     details.PosterPath,
			BackdropPath:   details.BackdropPath,
			Overview:       details.Overview,
			Genres:         details.Genres,
			Rating:         details.VoteAverage,
			Director:       details.Director,
			ReleaseDate:    details.ReleaseDate,
			RuntimeMinutes: details.RuntimeMinutes,
			ResolvedAt:     e.now().UTC(),
		}
		e.store.Put(key, entry)
		e.logger.Info("title matched", "title", hints.title, "matched", details.Title, "id", details.ID, "score", c.score, "via", c.query)
		return entry, true, true
	}

	entry := domain.CacheEntry{Found: false, ResolvedAt: e.now().UTC()}
	e.store.Put(key, entry)
	return entry, true, true
}

func (e *Enricher) search(ctx context.Context, query string, year int) ([]domain.Candidate, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-e.sem }()
	return e.searcher.SearchMovies(ctx, query, year)
}

func (e *Enricher) details(ctx context.Context, id int64) (domain.MovieDetails, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return domain.MovieDetails{}, ctx.Err()
	}
	defer func() { <-e.sem }()
	return e.searcher.MovieDetails(ctx, id)
}

// apply copies enrichment fields onto a listing; descriptive fields are
// only filled when the scraper left them empty.
func apply(l *domain.CanonicalListing, entry domain.CacheEntry) {
	l.MatchedTitle = entry.MatchedTitle
	l.ExternalID = entry.ExternalID
	l.PosterPath = entry.PosterPath
	l.BackdropPath = entry.BackdropPath
	l.Overview = entry.Overview
	l.Genres = entry.Genres
	l.Rating = entry.Rating

	if l.Director == "" {
		l.Director = entry.Director
	}
	if l.ReleaseYear == "" {
		l.ReleaseYear = entry.Year()
	}
	if l.RuntimeMinutes == "" && entry.RuntimeMinutes > 0 {
		l.RuntimeMinutes = strconv.Itoa(entry.RuntimeMinutes)
	}
}
