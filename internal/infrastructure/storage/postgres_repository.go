package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/ports"
)

// PostgresRepository persists the run dataset into Postgres. Each run
// replaces the previous one inside a single transaction.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DatasetStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ReplaceDataset deletes the prior run's rows and inserts the new set
// atomically.
func (r *PostgresRepository) ReplaceDataset(ctx context.Context, ds domain.Dataset) error {
	if r.db == nil {
		return fmt.Errorf("postgres repository has no connection")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteSQL, deleteArgs, err := r.builder.Delete("showings").ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return fmt.Errorf("clear prior run: %w", err)
	}

	insert := r.builder.Insert("showings").Columns(
		"run_id", "generated_at",
		"cinema_name", "movie_title", "show_date", "showtime", "detail_page_url",
		"director", "release_year", "country", "runtime_minutes", "synopsis",
		"matched_title", "external_id", "poster_path", "backdrop_path",
		"overview", "genres", "rating",
	)

	for _, l := range ds.Listings {
		insert = insert.Values(
			ds.RunID, ds.GeneratedAt,
			l.CinemaName, l.MovieTitle, l.Date, l.Showtime, l.DetailPageURL,
			l.Director, l.ReleaseYear, l.Country, l.RuntimeMinutes, l.Synopsis,
			l.MatchedTitle, l.ExternalID, l.PosterPath, l.BackdropPath,
			l.Overview, pq.Array(l.Genres), l.Rating,
		)
	}

	if len(ds.Listings) > 0 {
		insertSQL, insertArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return fmt.Errorf("insert listings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
