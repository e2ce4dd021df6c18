package enrich

import (
	"fmt"
	"strings"

	"github.com/jakobng/showtimes/internal/domain"
)

// Recorded stage/opera/event broadcast brands. These are not films, and the
// film database indexes many of them, so textually similar candidates
// pollute metadata unless filtered.
var broadcastBrands = []string{
	"nt live", "national theatre live",
	"met opera live", "met opera encore",
	"royal opera", "royal ballet", "bolshoi ballet",
	"exhibition on screen",
	"rbo live", "rbo encore",
}

// Venue programme entries that are not screenings at all.
var nonFilmEventKeywords = []string{
	"open mic", "quiz", "trivia", "workshop", "masterclass",
	"panel", "discussion", "in conversation", "live podcast",
	"book launch", "stand up", "stand-up", "comedy night",
	"live music", "dj set", "club night", "karaoke",
	"an evening with",
}

// HasBroadcastBrand reports whether a title names a broadcast brand.
func HasBroadcastBrand(title string) bool {
	lower := strings.ToLower(title)
	for _, brand := range broadcastBrands {
		if strings.Contains(lower, brand) {
			return true
		}
	}
	return false
}

// SkipReason returns a non-empty reason when a title should never be sent
// to the external metadata source.
func SkipReason(title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "empty title", true
	}

	lower := strings.ToLower(title)
	for _, keyword := range nonFilmEventKeywords {
		if strings.Contains(lower, keyword) {
			return fmt.Sprintf("non-film event keyword %q", keyword), true
		}
	}
	return "", false
}

// requiredGuardTokens lists words an accepted candidate must mention when
// the query title itself carries a broadcast brand; a plain feature film
// with the same name must not match a stage recording.
func requiredGuardTokens(title string) []string {
	if !HasBroadcastBrand(title) {
		return nil
	}

	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "nt live") || strings.Contains(lower, "national theatre live"):
		return []string{"theatre", "play", "stage"}
	case strings.Contains(lower, "met opera") || strings.Contains(lower, "royal opera"):
		return []string{"opera"}
	case strings.Contains(lower, "royal ballet") || strings.Contains(lower, "bolshoi ballet"):
		return []string{"ballet", "dance"}
	}
	return nil
}

func passesGuard(tokens []string, c domain.Candidate) bool {
	if len(tokens) == 0 {
		return true
	}

	text := strings.ToLower(c.Title + " " + c.Overview)
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
