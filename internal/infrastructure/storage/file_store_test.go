package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakobng/showtimes/internal/domain"
)

func TestFileStoreReplaceDataset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "showtimes.json")
	store := NewFileStore(path)

	ds := domain.Dataset{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		Listings: []domain.CanonicalListing{{
			CinemaName:    "HOME Manchester",
			MovieTitle:    "Aftersun",
			Date:          "2026-09-05",
			Showtime:      "19:30",
			DetailPageURL: "https://homemcr.org/film/aftersun/",
		}},
	}
	if err := store.ReplaceDataset(context.Background(), ds); err != nil {
		t.Fatalf("ReplaceDataset error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}

	var got domain.Dataset
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("parse dataset: %v", err)
	}
	if got.RunID != "run-1" || len(got.Listings) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Empty descriptive fields serialize as empty strings, not nulls.
	var shape struct {
		Listings []map[string]any `json:"listings"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("parse shape: %v", err)
	}
	if v, ok := shape.Listings[0]["director"]; !ok || v != "" {
		t.Fatalf("director field = %v", shape.Listings[0]["director"])
	}
	if _, ok := shape.Listings[0]["external_id"]; ok {
		t.Fatal("enrichment fields should be omitted when absent")
	}

	// A second run replaces the file wholesale.
	ds.RunID = "run-2"
	ds.Listings = nil
	if err := store.ReplaceDataset(context.Background(), ds); err != nil {
		t.Fatalf("ReplaceDataset error: %v", err)
	}
	raw, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("parse dataset: %v", err)
	}
	if got.RunID != "run-2" || len(got.Listings) != 0 {
		t.Fatalf("replace mismatch: %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}
