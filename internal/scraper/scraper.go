package scraper

import (
	"context"
	"fmt"

	"github.com/jakobng/showtimes/internal/config"
	"github.com/jakobng/showtimes/internal/domain"
)

// Request carries all parameters required to scrape one venue.
type Request struct {
	Venue   string
	URL     string
	Options map[string]string
}

// Scraper captures a single venue-scraping strategy (HOME, Savoy, etc.).
// Scrape must return cleanly on failure; it is called once per run and must
// never panic the process.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context, req Request) ([]domain.RawListing, error)
}

// Source binds a configured venue to its scraper strategy. Order is the
// registration index, used downstream as the merge tie-break.
type Source struct {
	Name    string
	Order   int
	Request Request
	Scraper Scraper
}

// Produce runs the bound scraper and stamps the venue name on listings that
// did not set their own.
func (s Source) Produce(ctx context.Context) ([]domain.RawListing, error) {
	rows, err := s.Scraper.Scrape(ctx, s.Request)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].CinemaName == "" {
			rows[i].CinemaName = s.Name
		}
	}
	return rows, nil
}

// Registry keeps a mapping from scraper names to their implementations.
type Registry struct {
	scrapers map[string]Scraper
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scrapers: map[string]Scraper{}}
}

// Register adds or replaces a scraper implementation.
func (r *Registry) Register(s Scraper) {
	if r.scrapers == nil {
		r.scrapers = map[string]Scraper{}
	}
	r.scrapers[s.Name()] = s
}

// Resolve returns a scraper by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scraper, error) {
	if s, ok := r.scrapers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("scraper %s is not registered", name)
}

// BindSources resolves every configured venue against the registry, giving
// one runnable Source per venue in configuration order.
func BindSources(reg *Registry, venues []config.VenueConfig) ([]Source, error) {
	if reg == nil {
		return nil, fmt.Errorf("scraper registry is not configured")
	}

	sources := make([]Source, 0, len(venues))
	for i, venue := range venues {
		strategy, err := reg.Resolve(venue.Scraper)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", venue.Name, err)
		}
		sources = append(sources, Source{
			Name:  venue.Name,
			Order: i,
			Request: Request{
				Venue:   venue.Name,
				URL:     venue.URL,
				Options: venue.Options,
			},
			Scraper: strategy,
		})
	}
	return sources, nil
}
