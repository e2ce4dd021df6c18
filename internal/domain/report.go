package domain

import (
	"sort"
	"time"
)

const (
	SourceStatusOK     = "ok"
	SourceStatusFailed = "failed"
)

// SourceOutcome records how one source fared during a run. It is written
// once, when the source's execution completes, and never mutated after.
type SourceOutcome struct {
	Source       string `json:"source"`
	Status       string `json:"status"`
	ListingCount int    `json:"listing_count"`
	ErrorDetail  string `json:"error_detail,omitempty"`
}

// EnrichmentStats counts how the enrichment layer resolved lookup keys.
type EnrichmentStats struct {
	CacheHits       int `json:"cache_hits"`
	ExternalLookups int `json:"external_lookups"`
	Matches         int `json:"matches"`
	Misses          int `json:"misses"`
}

// RunReport is the per-run summary handed to the notifier. The pipeline is
// its only writer; after Finalize it must be treated as read-only.
type RunReport struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Outcomes []SourceOutcome `json:"sources"`

	RawListings   int `json:"raw_listings"`
	Dropped       int `json:"dropped_records"`
	BeforeDedup   int `json:"listings_before_dedup"`
	AfterDedup    int `json:"listings_after_dedup"`
	TodayListings int `json:"listings_today"`

	Enrichment EnrichmentStats `json:"enrichment"`

	HasFailures bool `json:"has_failures"`
}

// AddOutcome appends a completed source outcome.
func (r *RunReport) AddOutcome(o SourceOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// TotalShowings sums listing counts over all outcomes.
func (r *RunReport) TotalShowings() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.ListingCount
	}
	return total
}

// Failures returns the outcomes that did not succeed.
func (r *RunReport) Failures() []SourceOutcome {
	var failed []SourceOutcome
	for _, o := range r.Outcomes {
		if o.Status != SourceStatusOK {
			failed = append(failed, o)
		}
	}
	return failed
}

// Finalize normalizes the report for hand-off: timestamps become UTC,
// outcomes are sorted by source name for stable output, and HasFailures
// is derived from the outcomes.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Outcomes, func(i, j int) bool {
		return r.Outcomes[i].Source < r.Outcomes[j].Source
	})

	r.HasFailures = false
	for _, o := range r.Outcomes {
		if o.Status != SourceStatusOK {
			r.HasFailures = true
			break
		}
	}
}
