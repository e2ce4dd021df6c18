package venues

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/scraper"
)

var (
	directorRE = regexp.MustCompile(`(?i)^Dir\.?\s+(.+)$`)
	yearMetaRE = regexp.MustCompile(`^(19|20)\d{2}$`)
	minsMetaRE = regexp.MustCompile(`(?i)^(\d+)\s*mins?$`)
)

// HomeMCRScraper crawls the HOME Manchester programme: one article per film
// with day-by-day screening times.
type HomeMCRScraper struct {
	client *http.Client
}

// NewHomeMCRScraper wires an HTTP client with a default timeout.
func NewHomeMCRScraper(client *http.Client) *HomeMCRScraper {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HomeMCRScraper{client: client}
}

// Name identifies the strategy inside the registry.
func (h *HomeMCRScraper) Name() string {
	return "homemcr"
}

// Scrape loads the programme page and extracts one raw listing per film,
// day and time.
func (h *HomeMCRScraper) Scrape(ctx context.Context, req scraper.Request) ([]domain.RawListing, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url configured for venue %s", req.Venue)
	}

	doc, err := fetchDocument(ctx, h.client, req.URL)
	if err != nil {
		return nil, err
	}

	var listings []domain.RawListing
	doc.Find("article.film").Each(func(_ int, film *goquery.Selection) {
		link := film.Find(".film-title a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		pageURL := absoluteURL(req.URL, href)

		director, year, runtime, country := parseFilmMeta(film.Find(".film-meta").First().Text())
		synopsis := strings.TrimSpace(film.Find(".film-synopsis").First().Text())

		film.Find(".screening-day").Each(func(_ int, day *goquery.Selection) {
			date, ok := day.Attr("data-date")
			if !ok {
				date = day.Find(".day-heading").First().Text()
			}
			date = strings.TrimSpace(date)
			if date == "" {
				return
			}

			day.Find(".screening-time").Each(func(_ int, slot *goquery.Selection) {
				showtime := strings.TrimSpace(slot.Text())
				if showtime == "" {
					return
				}
				listings = append(listings, domain.RawListing{
					CinemaName:    req.Venue,
					MovieTitle:    title,
					Date:          date,
					Showtime:      showtime,
					DetailPageURL: pageURL,
					Director:      director,
					ReleaseYear:   year,
					Country:       country,
					RuntimeMin:    runtime,
					Synopsis:      synopsis,
				})
			})
		})
	})

	return listings, nil
}

// parseFilmMeta splits a pipe-separated meta line such as
// "Dir. Charlotte Wells | 2022 | 101 mins | UK".
func parseFilmMeta(meta string) (director, year, runtime, country string) {
	for _, part := range strings.Split(meta, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case directorRE.MatchString(part):
			director = directorRE.FindStringSubmatch(part)[1]
		case yearMetaRE.MatchString(part):
			year = part
		case minsMetaRE.MatchString(part):
			runtime = minsMetaRE.FindStringSubmatch(part)[1]
		case country == "":
			country = part
		}
	}
	return director, year, runtime, country
}
