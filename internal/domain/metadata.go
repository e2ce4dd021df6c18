package domain

import "time"

// Candidate is one ranked result from the external metadata search.
type Candidate struct {
	ID            int64
	Title         string
	OriginalTitle string
	ReleaseDate   string
	Overview      string
	PosterPath    string
	BackdropPath  string
	VoteAverage   float64
	VoteCount     int
	Popularity    float64
}

// MovieDetails is the full record fetched for a chosen candidate.
type MovieDetails struct {
	Candidate

	Director       string
	RuntimeMinutes int
	Genres         []string
}

// CacheEntry is the persisted outcome of one metadata lookup, positive or
// negative. Entries are replaced whole; partial updates are not allowed.
type CacheEntry struct {
	Found bool `json:"found"`

	MatchedTitle   string   `json:"matched_title,omitempty"`
	OriginalTitle  string   `json:"original_title,omitempty"`
	ExternalID     int64    `json:"external_id,omitempty"`
	PosterPath     string   `json:"poster_path,omitempty"`
	BackdropPath   string   `json:"backdrop_path,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	Genres         []string `json:"genres,omitempty"`
	Rating         float64  `json:"rating,omitempty"`
	Director       string   `json:"director,omitempty"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`

	ResolvedAt time.Time `json:"resolved_at"`
}

// Year extracts the release year from the cached release date.
func (e CacheEntry) Year() string {
	if len(e.ReleaseDate) >= 4 {
		return e.ReleaseDate[:4]
	}
	return ""
}
