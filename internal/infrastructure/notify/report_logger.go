package notify

import (
	"context"
	"log/slog"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/ports"
)

// ReportLogger is the default ReportNotifier: it writes the run summary to
// the structured log. Outbound channels (email, chat) plug in behind the
// same port.
type ReportLogger struct {
	logger *slog.Logger
}

var _ ports.ReportNotifier = (*ReportLogger)(nil)

// NewReportLogger wires a logger.
func NewReportLogger(logger *slog.Logger) *ReportLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportLogger{logger: logger}
}

// Deliver logs one line per source plus the run totals.
func (n *ReportLogger) Deliver(_ context.Context, report domain.RunReport) error {
	for _, o := range report.Outcomes {
		if o.Status == domain.SourceStatusOK {
			n.logger.Info("source ok", "source", o.Source, "listings", o.ListingCount)
			continue
		}
		n.logger.Error("source failed", "source", o.Source, "error", o.ErrorDetail)
	}

	n.logger.Info("run report",
		"run_id", report.RunID,
		"total_showings", report.TotalShowings(),
		"before_dedup", report.BeforeDedup,
		"after_dedup", report.AfterDedup,
		"dropped", report.Dropped,
		"today", report.TodayListings,
		"cache_hits", report.Enrichment.CacheHits,
		"external_lookups", report.Enrichment.ExternalLookups,
		"matches", report.Enrichment.Matches,
		"misses", report.Enrichment.Misses,
		"has_failures", report.HasFailures,
	)

	if report.TodayListings == 0 && report.AfterDedup > 0 {
		n.logger.Warn("no listings for today; venue schedules may not have updated yet")
	}
	return nil
}
