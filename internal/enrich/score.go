package enrich

import (
	"strconv"
	"strings"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/normalize"
)

// scoreHints carries the listing-side evidence available for disambiguation.
type scoreHints struct {
	Year        int
	CurrentYear int
	StrictYear  bool
}

// scoreCandidate rates how plausibly a search result matches the query.
// Factors: title similarity, token overlap, year proximity, vote count.
// The result is clamped to [0, 1]; the caller applies the acceptance
// threshold.
func scoreCandidate(query string, c domain.Candidate, h scoreHints) float64 {
	queryNorm := normalize.MatchKey(query)
	if queryNorm == "" {
		return 0
	}

	titleNorm := normalize.MatchKey(c.Title)
	originalNorm := normalize.MatchKey(c.OriginalTitle)

	titleRatio := 0.0
	originalRatio := 0.0
	if titleNorm != "" {
		titleRatio = similarity(queryNorm, titleNorm)
	}
	if originalNorm != "" && originalNorm != titleNorm {
		originalRatio = similarity(queryNorm, originalNorm)
	}

	bestRatio := titleRatio
	if originalRatio > bestRatio {
		bestRatio = originalRatio
	}
	if bestRatio == 0 {
		return 0
	}

	score := 0.7*bestRatio + 0.3*tokenOverlap(queryNorm, titleNorm, originalNorm)

	// A query matching the original-language title much better than the
	// localized one usually means the correct foreign film.
	if originalRatio > titleRatio+0.1 {
		score += 0.1
	}

	if h.Year > 0 {
		if candYear := releaseYear(c.ReleaseDate); candYear > 0 {
			diff := candYear - h.Year
			if diff < 0 {
				diff = -diff
			}

			// A listing "year" at or past the current year is usually the
			// screening year of a revival, not the release year; a very
			// strong title match forgives the gap.
			screeningYear := h.Year >= h.CurrentYear
			forgiven := screeningYear && bestRatio > 0.9 && !h.StrictYear

			switch {
			case diff == 0:
				score += 0.15
			case diff == 1:
				score += 0.05
			case diff > 20:
				if !forgiven {
					score -= 0.3
				}
			default:
				if !forgiven {
					score -= 0.1
				}
			}
		}
	}

	if c.VoteCount > 5000 {
		score += 0.05
	} else if c.VoteCount < 5 {
		score -= 0.05
	}

	// Single-word queries match far too much; demand near-exactness or an
	// established film.
	if len(strings.Fields(queryNorm)) <= 1 {
		if c.VoteCount < 50 {
			score -= 0.25
		} else if c.VoteCount < 200 {
			score -= 0.1
		}
		if bestRatio < 0.95 {
			score -= 0.1
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// similarity is a normalized edit-distance ratio over match-key strings:
// 1.0 for equal strings, 0.0 for nothing in common.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	longest := la
	if lb > longest {
		longest = lb
	}
	return 1 - float64(prev[lb])/float64(longest)
}

func tokenOverlap(query string, titles ...string) float64 {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return 0
	}

	best := 0.0
	for _, title := range titles {
		titleTokens := tokenSet(title)
		if len(titleTokens) == 0 {
			continue
		}
		inter := 0
		for tok := range queryTokens {
			if _, ok := titleTokens[tok]; ok {
				inter++
			}
		}
		union := len(queryTokens) + len(titleTokens) - inter
		if union > 0 {
			if j := float64(inter) / float64(union); j > best {
				best = j
			}
		}
	}
	return best
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func releaseYear(releaseDate string) int {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(releaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

func minInt(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
