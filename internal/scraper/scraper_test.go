package scraper

import (
	"context"
	"testing"

	"github.com/jakobng/showtimes/internal/config"
	"github.com/jakobng/showtimes/internal/domain"
)

type namedScraper struct {
	name string
	rows []domain.RawListing
}

func (n *namedScraper) Name() string { return n.name }

func (n *namedScraper) Scrape(context.Context, Request) ([]domain.RawListing, error) {
	return n.rows, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&namedScraper{name: "homemcr"})

	if _, err := reg.Resolve("homemcr"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if _, err := reg.Resolve("unknown"); err == nil {
		t.Fatal("expected error for unregistered scraper")
	}
}

func TestBindSources(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&namedScraper{name: "homemcr"})
	reg.Register(&namedScraper{name: "savoy"})

	venues := []config.VenueConfig{
		{Name: "The Savoy", Scraper: "savoy", URL: "https://savoycinemas.co.uk"},
		{Name: "HOME Manchester", Scraper: "homemcr", URL: "https://homemcr.org/cinema/"},
	}

	sources, err := BindSources(reg, venues)
	if err != nil {
		t.Fatalf("BindSources error: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("sources = %d", len(sources))
	}

	// Order follows configuration order, not registration order.
	if sources[0].Name != "The Savoy" || sources[0].Order != 0 {
		t.Fatalf("first source: %+v", sources[0])
	}
	if sources[1].Name != "HOME Manchester" || sources[1].Order != 1 {
		t.Fatalf("second source: %+v", sources[1])
	}
	if sources[0].Request.URL != "https://savoycinemas.co.uk" {
		t.Fatalf("request url: %+v", sources[0].Request)
	}

	if _, err := BindSources(reg, []config.VenueConfig{{Name: "X", Scraper: "missing"}}); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestProduceStampsCinemaName(t *testing.T) {
	t.Parallel()

	src := Source{
		Name: "HOME Manchester",
		Scraper: &namedScraper{name: "homemcr", rows: []domain.RawListing{
			{MovieTitle: "Aftersun"},
			{CinemaName: "HOME Cinema 1", MovieTitle: "Oppenheimer"},
		}},
	}

	rows, err := src.Produce(context.Background())
	if err != nil {
		t.Fatalf("Produce error: %v", err)
	}
	if rows[0].CinemaName != "HOME Manchester" {
		t.Fatalf("missing name not stamped: %+v", rows[0])
	}
	if rows[1].CinemaName != "HOME Cinema 1" {
		t.Fatalf("scraper-provided name overwritten: %+v", rows[1])
	}
}
