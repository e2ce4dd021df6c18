package dedupe

import (
	"sort"

	"github.com/jakobng/showtimes/internal/domain"
)

// Merge collapses listings that share identity fields into one record per
// identity key. Some venues publish the same physical showing through more
// than one feed or page; the duplicates differ only in which descriptive
// fields they managed to fill in.
//
// For each descriptive field independently, the merged record takes the
// first non-empty value in source-registration order. Output ordering is
// deterministic: date, showtime, cinema, title, detail URL.
func Merge(listings []domain.CanonicalListing) []domain.CanonicalListing {
	groups := make(map[string][]domain.CanonicalListing, len(listings))
	for _, l := range listings {
		key := l.IdentityKey()
		groups[key] = append(groups[key], l)
	}

	merged := make([]domain.CanonicalListing, 0, len(groups))
	for _, group := range groups {
		merged = append(merged, mergeGroup(group))
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Showtime != b.Showtime {
			return a.Showtime < b.Showtime
		}
		if a.CinemaName != b.CinemaName {
			return a.CinemaName < b.CinemaName
		}
		if a.MovieTitle != b.MovieTitle {
			return a.MovieTitle < b.MovieTitle
		}
		return a.DetailPageURL < b.DetailPageURL
	})

	return merged
}

func mergeGroup(group []domain.CanonicalListing) domain.CanonicalListing {
	if len(group) == 1 {
		return group[0]
	}

	// Registration order decides which source's value wins; the stable sort
	// keeps arrival order for duplicates from the same source.
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].SourceOrder < group[j].SourceOrder
	})

	out := group[0]
	for _, l := range group[1:] {
		if out.Director == "" {
			out.Director = l.Director
		}
		if out.ReleaseYear == "" {
			out.ReleaseYear = l.ReleaseYear
		}
		if out.Country == "" {
			out.Country = l.Country
		}
		if out.RuntimeMinutes == "" {
			out.RuntimeMinutes = l.RuntimeMinutes
		}
		if out.Synopsis == "" {
			out.Synopsis = l.Synopsis
		}
	}
	return out
}
