package venues

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jakobng/showtimes/internal/scraper"
)

const savoyPage = `
<html><body>
<div class="whats-on-item">
  <a class="film-link" href="/manchester/film/oppenheimer">Oppenheimer (15)</a>
  <p class="film-blurb">The story of J. Robert Oppenheimer.</p>
  <ul class="performances">
    <li data-date="2026-09-05"><span class="time">7.30pm</span></li>
    <li data-date="2026-09-06"><span class="time">2:00pm</span></li>
    <li data-date=""><span class="time">9pm</span></li>
  </ul>
</div>
</body></html>`

func TestSavoyScrape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(savoyPage))
	}))
	defer srv.Close()

	s := NewSavoyScraper(srv.Client())
	listings, err := s.Scrape(context.Background(), scraper.Request{Venue: "The Savoy", URL: srv.URL + "/manchester/whats-on"})
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}

	// The row without a date is dropped.
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d: %+v", len(listings), listings)
	}

	first := listings[0]
	if first.CinemaName != "The Savoy" || first.MovieTitle != "Oppenheimer (15)" {
		t.Fatalf("identity fields: %+v", first)
	}
	if first.Date != "2026-09-05" || first.Showtime != "7.30pm" {
		t.Fatalf("date/time = %q %q", first.Date, first.Showtime)
	}
	if first.DetailPageURL != srv.URL+"/manchester/film/oppenheimer" {
		t.Fatalf("url = %q", first.DetailPageURL)
	}
	if first.Synopsis == "" {
		t.Fatal("blurb not captured")
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		page string
		href string
		want string
	}{
		{"https://homemcr.org/cinema/", "/cinema/film/aftersun/", "https://homemcr.org/cinema/film/aftersun/"},
		{"https://homemcr.org/cinema/", "film/aftersun/", "https://homemcr.org/cinema/film/aftersun/"},
		{"https://homemcr.org/cinema/", "https://other.org/x", "https://other.org/x"},
	}

	for _, tc := range cases {
		if got := absoluteURL(tc.page, tc.href); got != tc.want {
			t.Fatalf("absoluteURL(%q, %q) = %q, want %q", tc.page, tc.href, got, tc.want)
		}
	}
}
