package enrich

import (
	"regexp"
	"strings"

	"github.com/jakobng/showtimes/internal/normalize"
)

var (
	akaRE       = regexp.MustCompile(`(?i)\baka\s+(.*)`)
	billSplitRE = regexp.MustCompile(`\s*(?:\+|&)\s*`)
)

// Words left over from event descriptions after a double-bill split.
var splitNoiseWords = map[string]struct{}{
	"intro": {}, "q": {}, "a": {}, "qa": {}, "discussion": {},
	"panel": {}, "talk": {}, "with": {}, "recorded": {}, "cast": {},
}

// TitleQueries derives the search queries to try for a listing title, best
// candidate first: the cleaned base title, any "AKA" alternative, the halves
// of a double bill, and the part after a colon when the prefix is an event
// label rather than a broadcast brand.
func TitleQueries(title string) []string {
	cleaned := normalize.CleanTitle(title)

	var queries []string
	seen := map[string]struct{}{}
	add := func(q string) {
		q = strings.Trim(q, " .,:;")
		if q == "" {
			return
		}
		if _, dup := seen[q]; dup {
			return
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	add(cleaned)

	if m := akaRE.FindStringSubmatch(title); m != nil {
		add(normalize.CleanTitle(m[1]))
	}

	if strings.Contains(cleaned, " + ") || strings.Contains(cleaned, " & ") {
		for _, part := range billSplitRE.Split(cleaned, -1) {
			part = normalize.CleanTitle(strings.TrimSpace(part))
			if len(part) <= 3 {
				continue
			}
			if _, noise := splitNoiseWords[strings.ToLower(part)]; noise {
				continue
			}
			add(part)
		}
	}

	if idx := strings.Index(cleaned, ":"); idx >= 0 && shouldSplitOnColon(title) {
		add(strings.TrimSpace(cleaned[idx+1:]))
	}

	return queries
}

// shouldSplitOnColon rejects the colon split when the prefix is a broadcast
// brand: for "NT Live: Hamlet" searching bare "Hamlet" would find the film,
// not the stage recording.
func shouldSplitOnColon(title string) bool {
	before, _, found := strings.Cut(title, ":")
	if !found {
		return true
	}
	return !HasBroadcastBrand(before)
}
