package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jakobng/showtimes/internal/domain"
)

// Date layouts venues are known to use, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Yearless layouts ("Sunday 23 Nov") resolve against the current year.
var yearlessLayouts = []string{
	"2 Jan",
	"2 January",
}

var (
	dayNameRE = regexp.MustCompile(`(?i)^(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)[,\s]+`)
	time12hRE = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})\s*(am|pm)$`)
	hour12hRE = regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`)
	time24hRE = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	yearRE    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitsRE  = regexp.MustCompile(`\d+`)
)

// Normalizer coerces raw venue records into the canonical schema. The
// location anchors yearless dates; now is injectable for tests.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// New builds a normalizer anchored to the given location.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, now: time.Now}
}

// Listing converts one raw record from the named source into a canonical
// listing. A record missing any identity field after coercion is a
// normalization failure; the caller drops it.
func (n *Normalizer) Listing(raw domain.RawListing, source string, order int) (domain.CanonicalListing, error) {
	cinema := strings.TrimSpace(raw.CinemaName)
	if cinema == "" {
		cinema = strings.TrimSpace(source)
	}
	title := CleanTitle(strings.TrimSpace(raw.MovieTitle))
	pageURL := strings.TrimSpace(raw.DetailPageURL)

	if cinema == "" || title == "" || pageURL == "" {
		return domain.CanonicalListing{}, fmt.Errorf("source %s: missing identity field (cinema=%q title=%q url=%q)", source, cinema, raw.MovieTitle, pageURL)
	}

	date, err := n.Date(raw.Date)
	if err != nil {
		return domain.CanonicalListing{}, fmt.Errorf("source %s: %w", source, err)
	}

	showtime, err := Time24(raw.Showtime)
	if err != nil {
		return domain.CanonicalListing{}, fmt.Errorf("source %s: %w", source, err)
	}

	return domain.CanonicalListing{
		CinemaName:    cinema,
		MovieTitle:    title,
		Date:          date,
		Showtime:      showtime,
		DetailPageURL: pageURL,

		Director:       strings.TrimSpace(raw.Director),
		ReleaseYear:    Year(raw.ReleaseYear),
		Country:        strings.TrimSpace(raw.Country),
		RuntimeMinutes: RuntimeMinutes(raw.RuntimeMin),
		Synopsis:       strings.TrimSpace(raw.Synopsis),

		SourceOrder: order,
	}, nil
}

// Date coerces a venue date representation to an ISO calendar date.
func (n *Normalizer) Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	s = dayNameRE.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	// Venues often print "23 Nov" with no year; take the current year, and
	// roll to the next one when that lands more than a month in the past.
	today := n.now().In(n.loc)
	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, s, n.loc)
		if err != nil {
			continue
		}
		t = t.AddDate(today.Year(), 0, 0)
		if t.Before(today.AddDate(0, 0, -30)) {
			t = t.AddDate(1, 0, 0)
		}
		return t.Format("2006-01-02"), nil
	}

	return "", fmt.Errorf("unparseable date %q", raw)
}

// Time24 coerces a venue time representation to 24-hour wall-clock "HH:MM".
// Accepts 12-hour ("2:00pm", "7.30pm", "6pm") and 24-hour ("18:30", "18.30")
// forms.
func Time24(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty showtime")
	}

	if m := time12hRE.FindStringSubmatch(s); m != nil {
		return format12h(m[1], m[2], m[3])
	}
	if m := hour12hRE.FindStringSubmatch(s); m != nil {
		return format12h(m[1], "00", m[2])
	}
	if m := time24hRE.FindStringSubmatch(s); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		if hour > 23 || minute > 59 {
			return "", fmt.Errorf("time %q out of range", raw)
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	return "", fmt.Errorf("unparseable showtime %q", raw)
}

// Year extracts a 4-digit year from free-form text, or "".
func Year(raw string) string {
	return yearRE.FindString(raw)
}

// RuntimeMinutes extracts the numeric minute count from values like
// "96 min", or "".
func RuntimeMinutes(raw string) string {
	return digitsRE.FindString(raw)
}

func format12h(hourStr, minuteStr, period string) (string, error) {
	hour, minute := atoi(hourStr), atoi(minuteStr)
	if hour < 1 || hour > 12 || minute > 59 {
		return "", fmt.Errorf("time %s:%s%s out of range", hourStr, minuteStr, period)
	}
	if period == "pm" && hour != 12 {
		hour += 12
	}
	if period == "am" && hour == 12 {
		hour = 0
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
