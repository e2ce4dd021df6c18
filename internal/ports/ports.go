package ports

import (
	"context"

	"github.com/jakobng/showtimes/internal/domain"
)

// MetadataSearcher resolves titles against the external film database.
// Implementations are expected to be rate-limited by the caller.
type MetadataSearcher interface {
	SearchMovies(ctx context.Context, query string, year int) ([]domain.Candidate, error)
	MovieDetails(ctx context.Context, id int64) (domain.MovieDetails, error)
}

// DatasetStore persists the full listing set for a run, replacing the
// previous run's output wholesale.
type DatasetStore interface {
	ReplaceDataset(ctx context.Context, ds domain.Dataset) error
}

// ReportNotifier receives the finalized run report. Implementations decide
// how (or whether) the report gets delivered.
type ReportNotifier interface {
	Deliver(ctx context.Context, report domain.RunReport) error
}
