package domain

import (
	"testing"
	"time"
)

func TestRunReportFinalize(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BST", 3600)
	report := RunReport{
		RunID:      "run-1",
		StartedAt:  time.Date(2026, 8, 31, 10, 0, 0, 0, loc),
		FinishedAt: time.Date(2026, 8, 31, 10, 5, 0, 0, loc),
	}
	report.AddOutcome(SourceOutcome{Source: "savoy", Status: SourceStatusOK, ListingCount: 12})
	report.AddOutcome(SourceOutcome{Source: "homemcr", Status: SourceStatusFailed, ErrorDetail: "connection refused"})

	report.Finalize()

	if report.StartedAt.Location() != time.UTC || report.FinishedAt.Location() != time.UTC {
		t.Fatal("timestamps should be UTC after Finalize")
	}
	if report.Outcomes[0].Source != "homemcr" || report.Outcomes[1].Source != "savoy" {
		t.Fatalf("outcomes not sorted by source: %+v", report.Outcomes)
	}
	if !report.HasFailures {
		t.Fatal("HasFailures should be derived from outcomes")
	}
	if report.TotalShowings() != 12 {
		t.Fatalf("TotalShowings = %d, want 12", report.TotalShowings())
	}

	failed := report.Failures()
	if len(failed) != 1 || failed[0].Source != "homemcr" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunReportFinalizeAllOK(t *testing.T) {
	t.Parallel()

	report := RunReport{HasFailures: true}
	report.AddOutcome(SourceOutcome{Source: "savoy", Status: SourceStatusOK})
	report.Finalize()

	if report.HasFailures {
		t.Fatal("HasFailures should reset when every source succeeded")
	}
}

func TestIdentityKey(t *testing.T) {
	t.Parallel()

	a := CanonicalListing{
		CinemaName:    "HOME Manchester",
		MovieTitle:    "Aftersun",
		Date:          "2026-09-05",
		Showtime:      "19:30",
		DetailPageURL: "https://homemcr.org/film/aftersun/",
	}
	b := a
	b.Director = "Charlotte Wells"

	if a.IdentityKey() != b.IdentityKey() {
		t.Fatal("descriptive fields must not affect the identity key")
	}

	c := a
	c.Showtime = "21:00"
	if a.IdentityKey() == c.IdentityKey() {
		t.Fatal("different showtimes must give different keys")
	}
}
