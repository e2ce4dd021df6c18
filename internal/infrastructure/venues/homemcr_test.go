package venues

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jakobng/showtimes/internal/scraper"
)

const homePage = `
<html><body>
<article class="film">
  <h2 class="film-title"><a href="/cinema/film/aftersun/">Aftersun</a></h2>
  <p class="film-meta">Dir. Charlotte Wells | 2022 | 101 mins | UK</p>
  <p class="film-synopsis">Sophie reflects on a holiday with her father.</p>
  <div class="screening-day" data-date="2026-09-05">
    <h3 class="day-heading">Saturday 5 Sep</h3>
    <span class="screening-time">14:00</span>
    <span class="screening-time">19:30</span>
  </div>
  <div class="screening-day" data-date="2026-09-06">
    <span class="screening-time">18:15</span>
  </div>
</article>
<article class="film">
  <h2 class="film-title"><a href="/cinema/film/untitled/"></a></h2>
</article>
</body></html>`

func TestHomeMCRScrape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(homePage))
	}))
	defer srv.Close()

	s := NewHomeMCRScraper(srv.Client())
	listings, err := s.Scrape(context.Background(), scraper.Request{Venue: "HOME Manchester", URL: srv.URL + "/cinema/"})
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.CinemaName != "HOME Manchester" {
		t.Fatalf("cinema = %q", first.CinemaName)
	}
	if first.MovieTitle != "Aftersun" {
		t.Fatalf("title = %q", first.MovieTitle)
	}
	if first.Date != "2026-09-05" || first.Showtime != "14:00" {
		t.Fatalf("date/time = %q %q", first.Date, first.Showtime)
	}
	if first.DetailPageURL != srv.URL+"/cinema/film/aftersun/" {
		t.Fatalf("url = %q", first.DetailPageURL)
	}
	if first.Director != "Charlotte Wells" || first.ReleaseYear != "2022" || first.RuntimeMin != "101" || first.Country != "UK" {
		t.Fatalf("meta not parsed: %+v", first)
	}
	if first.Synopsis == "" {
		t.Fatal("synopsis not captured")
	}

	if listings[2].Date != "2026-09-06" || listings[2].Showtime != "18:15" {
		t.Fatalf("second day not captured: %+v", listings[2])
	}
}

func TestHomeMCRScrapeErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewHomeMCRScraper(srv.Client())
	if _, err := s.Scrape(context.Background(), scraper.Request{Venue: "HOME Manchester", URL: srv.URL}); err == nil {
		t.Fatal("expected error for 503 response")
	}

	if _, err := s.Scrape(context.Background(), scraper.Request{Venue: "HOME Manchester"}); err == nil {
		t.Fatal("expected error for missing url")
	}
}

func TestParseFilmMeta(t *testing.T) {
	t.Parallel()

	director, year, runtime, country := parseFilmMeta("Dir. Céline Sciamma | 2019 | 122 mins | France")
	if director != "Céline Sciamma" || year != "2019" || runtime != "122" || country != "France" {
		t.Fatalf("got %q %q %q %q", director, year, runtime, country)
	}

	director, year, runtime, country = parseFilmMeta("2022 | UK")
	if director != "" || year != "2022" || runtime != "" || country != "UK" {
		t.Fatalf("got %q %q %q %q", director, year, runtime, country)
	}
}
