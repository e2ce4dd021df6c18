package domain

import (
	"strings"
	"time"
)

// RawListing is one showing exactly as a venue scraper reported it.
// Values keep whatever formatting the venue uses; only the normalizer
// consumes them, and the struct is discarded after normalization.
type RawListing struct {
	CinemaName    string
	MovieTitle    string
	Date          string
	Showtime      string
	DetailPageURL string

	Director    string
	ReleaseYear string
	Country     string
	RuntimeMin  string
	Synopsis    string
}

// CanonicalListing is the unit of record all sources normalize into.
// The first five fields form the identity of a listing within one run;
// descriptive fields are empty strings when unknown, never absent.
type CanonicalListing struct {
	CinemaName    string `json:"cinema_name"`
	MovieTitle    string `json:"movie_title"`
	Date          string `json:"date"`
	Showtime      string `json:"showtime"`
	DetailPageURL string `json:"detail_page_url"`

	Director       string `json:"director"`
	ReleaseYear    string `json:"release_year"`
	Country        string `json:"country"`
	RuntimeMinutes string `json:"runtime_minutes"`
	Synopsis       string `json:"synopsis"`

	MatchedTitle string   `json:"matched_title,omitempty"`
	ExternalID   int64    `json:"external_id,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Rating       float64  `json:"rating,omitempty"`

	// SourceOrder is the registration index of the source that produced
	// the listing; the merge step uses it as a deterministic tie-break.
	SourceOrder int `json:"-"`
}

// IdentityKey joins the identity fields with an unprintable separator.
// Two listings with equal keys describe the same physical showing.
func (l CanonicalListing) IdentityKey() string {
	return strings.Join([]string{
		l.CinemaName,
		l.MovieTitle,
		l.Date,
		l.Showtime,
		l.DetailPageURL,
	}, "\x1f")
}

// Dataset is the persisted output of one run. It replaces the previous
// run's dataset wholesale.
type Dataset struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Listings    []CanonicalListing `json:"listings"`
}
