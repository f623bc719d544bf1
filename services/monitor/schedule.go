package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"

	"github.com/robfig/cron/v3"
)

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(fmt.Sprintf("cron: %s", msg), keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(fmt.Sprintf("cron: %s", msg), append(keysAndValues, "err", err)...)
}

// Start runs ScanCycle on the configured schedule until ctx is done. It
// returns once the schedule is registered.
func (b *Bot) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return errors.New("monitor is already running")
	}

	scheduler := cron.New(
		cron.WithLocation(timezone.Location),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	_, err := scheduler.AddFunc(b.schedule, func() {
		b.runScheduled(ctx)
	})
	if err != nil {
		b.running.Store(false)
		return fmt.Errorf("invalid schedule %q: %w", b.schedule, err)
	}

	b.statusLock.Lock()
	b.cron = scheduler
	b.statusLock.Unlock()

	scheduler.Start()
	slog.InfoContext(ctx, "monitor started", "schedule", b.schedule)

	if b.runOnStart {
		go b.runScheduled(ctx)
	}

	go func() {
		<-ctx.Done()
		<-scheduler.Stop().Done()
		b.statusLock.Lock()
		b.cron = nil
		b.statusLock.Unlock()
		b.running.Store(false)
		slog.Info("monitor stopped")
	}()
	return nil
}

func (b *Bot) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := b.ScanCycle(ctx)
	if errors.Is(err, ErrScanInProgress) {
		slog.InfoContext(ctx, "skipping scan, previous cycle still running")
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "scan cycle finished with errors", "err", err)
	}
}
