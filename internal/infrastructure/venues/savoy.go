package venues

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/scraper"
)

// SavoyScraper crawls the Savoy what's-on page: a flat list of performance
// rows grouped under each film.
type SavoyScraper struct {
	client *http.Client
}

// NewSavoyScraper wires an HTTP client with a default timeout.
func NewSavoyScraper(client *http.Client) *SavoyScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SavoyScraper{client: client}
}

// Name identifies the strategy inside the registry.
func (s *SavoyScraper) Name() string {
	return "savoy"
}

// Scrape loads the what's-on page and extracts one raw listing per
// performance row.
func (s *SavoyScraper) Scrape(ctx context.Context, req scraper.Request) ([]domain.RawListing, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url configured for venue %s", req.Venue)
	}

	doc, err := fetchDocument(ctx, s.client, req.URL)
	if err != nil {
		return nil, err
	}

	var listings []domain.RawListing
	doc.Find(".whats-on-item").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.film-link").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		pageURL := absoluteURL(req.URL, href)
		synopsis := strings.TrimSpace(item.Find(".film-blurb").First().Text())

		item.Find(".performances li").Each(func(_ int, perf *goquery.Selection) {
			date, _ := perf.Attr("data-date")
			showtime := strings.TrimSpace(perf.Find(".time").First().Text())
			if strings.TrimSpace(date) == "" || showtime == "" {
				return
			}

			listings = append(listings, domain.RawListing{
				CinemaName:    req.Venue,
				MovieTitle:    title,
				Date:          strings.TrimSpace(date),
				Showtime:      showtime,
				DetailPageURL: pageURL,
				Synopsis:      synopsis,
			})
		})
	})

	return listings, nil
}
