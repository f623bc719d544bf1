package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type cycleTotals struct {
	mu       sync.Mutex
	listings int
	threats  int
	alerts   int
	errs     []error
}

func (t *cycleTotals) fail(err error) {
	t.mu.Lock()
	t.errs = append(t.errs, err)
	t.mu.Unlock()
}

// ScanCycle searches every platform for every keyword once. A failing
// search or archive is recorded in the returned run and error but never
// stops the other searches.
func (b *Bot) ScanCycle(ctx context.Context) (evidence.ScanRun, error) {
	if !b.scanning.CompareAndSwap(false, true) {
		return evidence.ScanRun{}, ErrScanInProgress
	}
	defer b.scanning.Store(false)

	run := evidence.ScanRun{
		ID:        uuid.NewString(),
		StartedAt: timezone.Now(),
	}

	ctx, span := tracer.Start(ctx, "ScanCycle")
	defer span.End()
	span.SetAttributes(attribute.String("scan_id", run.ID))

	slog.InfoContext(ctx, "scan cycle started", "scan_id", run.ID, "platforms", len(b.searchers), "keywords", len(b.keywords))

	totals := &cycleTotals{}
	limits := make(map[string]*semaphore.Weighted, len(b.searchers))
	for _, s := range b.searchers {
		limits[s.Name()] = semaphore.NewWeighted(int64(b.perPlatform))
	}

	var group errgroup.Group
	group.SetLimit(b.concurrency)
	for _, searcher := range b.searchers {
		for _, keyword := range b.keywords {
			group.Go(func() error {
				limit := limits[searcher.Name()]
				if err := limit.Acquire(ctx, 1); err != nil {
					totals.fail(err)
					return nil
				}
				defer limit.Release(1)

				b.searchKeyword(ctx, run.ID, searcher, keyword, totals)
				return nil
			})
		}
	}
	group.Wait()

	run.FinishedAt = timezone.Now()
	run.Listings = totals.listings
	run.Threats = totals.threats
	run.Alerts = totals.alerts

	errs := totals.errs
	for _, err := range errs {
		run.Errors = append(run.Errors, err.Error())
	}
	// recorded with the caller's context gone as well, a cancelled
	// cycle should still leave a trace
	err := b.archiver.RecordScan(context.WithoutCancel(ctx), run)
	if err != nil {
		errs = append(errs, fmt.Errorf("record scan: %w", err))
	}

	b.recordRun(run)
	b.metrics.cycleTime.Record(ctx, run.FinishedAt.Sub(run.StartedAt).Seconds())

	joined := errors.Join(errs...)
	if joined != nil {
		span.RecordError(joined)
		span.SetStatus(codes.Error, "scan cycle had errors")
	}
	slog.InfoContext(
		ctx, "scan cycle finished",
		"scan_id", run.ID,
		"listings", run.Listings,
		"threats", run.Threats,
		"alerts", run.Alerts,
		"errors", len(run.Errors),
		"took", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
	)
	return run, joined
}

func (b *Bot) searchKeyword(ctx context.Context, scanID string, searcher Searcher, keyword string, totals *cycleTotals) {
	ctx, span := tracer.Start(ctx, "searchKeyword")
	defer span.End()
	platformAttr := attribute.String("platform", searcher.Name())
	span.SetAttributes(platformAttr, attribute.String("keyword", keyword))

	listings, err := searcher.Search(ctx, keyword)
	if err != nil {
		// partial results are still worth looking at
		span.RecordError(err)
		slog.WarnContext(ctx, "search failed", "platform", searcher.Name(), "keyword", keyword, "err", err)
		totals.fail(fmt.Errorf("%s %q: %w", searcher.Name(), keyword, err))
	}

	for _, listing := range listings {
		if ctx.Err() != nil {
			return
		}
		if !b.firstSighting(listing.ID) {
			continue
		}

		assessment := b.analyzer.Analyze(ctx, listing)
		b.metrics.listings.Add(ctx, 1, metric.WithAttributes(platformAttr))
		totals.mu.Lock()
		totals.listings++
		totals.mu.Unlock()

		if assessment.Level < b.archiveLevel {
			continue
		}

		pkg, err := b.archiver.Archive(ctx, listing, assessment)
		if err != nil {
			// retried on the next cycle
			b.forget(listing.ID)
			totals.fail(err)
			slog.WarnContext(ctx, "archive failed", "listing", listing.ID, "err", err)
			continue
		}
		b.metrics.threats.Add(ctx, 1, metric.WithAttributes(platformAttr))
		totals.mu.Lock()
		totals.threats++
		totals.mu.Unlock()

		if assessment.Level < b.alertLevel {
			continue
		}

		raised, err := b.notifier.Notify(ctx, alerts.Alert{
			Level:      assessment.Level,
			Score:      assessment.Score,
			Title:      listing.Title,
			Message:    describe(assessment),
			Platform:   listing.Platform,
			URL:        listing.URL,
			ListingID:  listing.ID,
			EvidenceID: pkg.ID,
			Species:    assessment.Species,
		})
		if err != nil {
			totals.fail(fmt.Errorf("notify %s: %w", listing.ID, err))
		}
		if raised.ID == "" {
			continue
		}
		b.metrics.alerts.Add(ctx, 1, metric.WithAttributes(platformAttr))
		totals.mu.Lock()
		totals.alerts++
		totals.mu.Unlock()
	}

	slog.DebugContext(ctx, "searched", "scan_id", scanID, "platform", searcher.Name(), "keyword", keyword, "listings", len(listings))
}

func describe(a threat.Assessment) string {
	msg := "Indicators:"
	for _, ind := range a.Indicators {
		msg += fmt.Sprintf("\n- %s %q (%+d)", ind.Kind, ind.Term, ind.Weight)
	}
	if a.Rationale != "" {
		msg += "\n\nReviewer: " + a.Rationale
	}
	return msg
}
