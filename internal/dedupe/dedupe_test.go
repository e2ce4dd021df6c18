package dedupe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jakobng/showtimes/internal/domain"
)

func listing(cinema, title, date, showtime, pageURL string, order int) domain.CanonicalListing {
	return domain.CanonicalListing{
		CinemaName:    cinema,
		MovieTitle:    title,
		Date:          date,
		Showtime:      showtime,
		DetailPageURL: pageURL,
		SourceOrder:   order,
	}
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	a := listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 0)
	a.ReleaseYear = "2022"
	b := listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 1)
	b.Director = "Charlotte Wells"
	b.Synopsis = "A father and daughter on holiday."

	merged := Merge([]domain.CanonicalListing{a, b})
	require.Len(t, merged, 1)

	got := merged[0]
	require.Equal(t, "Charlotte Wells", got.Director)
	require.Equal(t, "2022", got.ReleaseYear)
	require.Equal(t, "A father and daughter on holiday.", got.Synopsis)
}

func TestMergeDistinctURLsRetained(t *testing.T) {
	t.Parallel()

	a := listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 0)
	b := listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/event/aftersun-qa/", 1)

	merged := Merge([]domain.CanonicalListing{a, b})
	require.Len(t, merged, 2, "differing detail URLs are different showings")
}

func TestMergeTitleCaseDistinct(t *testing.T) {
	t.Parallel()

	a := listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 0)
	b := listing("HOME Manchester", "AFTERSUN", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 1)

	merged := Merge([]domain.CanonicalListing{a, b})
	require.Len(t, merged, 2, "identity comparison is exact, not case-folded")
}

func TestMergePrefersEarlierSource(t *testing.T) {
	t.Parallel()

	late := listing("The Savoy", "Oppenheimer", "2026-09-06", "20:00", "https://savoycinemas.co.uk/oppenheimer", 3)
	late.Director = "Wrong Name"
	early := listing("The Savoy", "Oppenheimer", "2026-09-06", "20:00", "https://savoycinemas.co.uk/oppenheimer", 1)
	early.Director = "Christopher Nolan"

	// Input order must not matter, only registration order.
	merged := Merge([]domain.CanonicalListing{late, early})
	require.Len(t, merged, 1)
	require.Equal(t, "Christopher Nolan", merged[0].Director)
}

func TestMergeOutputOrderDeterministic(t *testing.T) {
	t.Parallel()

	input := []domain.CanonicalListing{
		listing("The Savoy", "Oppenheimer", "2026-09-06", "20:00", "https://savoycinemas.co.uk/oppenheimer", 0),
		listing("HOME Manchester", "Aftersun", "2026-09-05", "19:30", "https://homemcr.org/film/aftersun/", 0),
		listing("HOME Manchester", "Aftersun", "2026-09-05", "14:00", "https://homemcr.org/film/aftersun/", 0),
	}

	merged := Merge(input)
	require.Len(t, merged, 3)
	require.Equal(t, "14:00", merged[0].Showtime)
	require.Equal(t, "19:30", merged[1].Showtime)
	require.Equal(t, "2026-09-06", merged[2].Date)
}
