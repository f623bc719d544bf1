package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/robfig/cron/v3"
)

var ErrScanInProgress = errors.New("a scan cycle is already running")

// Searcher is one platform, *marketplace.Scanner implements it.
type Searcher interface {
	Name() string
	Search(ctx context.Context, keyword string) ([]threat.Listing, error)
}

type Archiver interface {
	Archive(ctx context.Context, listing threat.Listing, assessment threat.Assessment) (evidence.Package, error)
	RecordScan(ctx context.Context, run evidence.ScanRun) error
}

// Notifier records an alert. A returned alert with an ID was raised even
// when err reports a failed delivery.
type Notifier interface {
	Notify(ctx context.Context, alert alerts.Alert) (alerts.Alert, error)
}

type Options struct {
	Searchers []Searcher
	Analyzer  *threat.Analyzer
	Archiver  Archiver
	Notifier  Notifier
	Keywords  []string
	// translates keywords into its languages, optional
	Language *language.Processor
	// assessments at or above this level are archived
	ArchiveLevel threat.Level
	// assessments at or above this level raise an alert
	AlertLevel threat.Level
	// concurrent searches, defaults to 4
	Concurrency int
	// concurrent searches against one platform, defaults to 1
	PerPlatform int
	// how long a listing id is remembered, defaults to 24h
	DedupeTTL time.Duration
	// defaults to 10000
	DedupeSize int
	// cron spec, defaults to "@every 30m"
	Schedule   string
	RunOnStart bool
}

// Bot is the marketplace monitor: it searches every platform for every
// keyword, scores what it finds, archives evidence and raises alerts.
type Bot struct {
	searchers    []Searcher
	analyzer     *threat.Analyzer
	archiver     Archiver
	notifier     Notifier
	keywords     []string
	archiveLevel threat.Level
	alertLevel   threat.Level
	concurrency  int
	perPlatform  int
	schedule     string
	runOnStart   bool
	metrics      metrics

	seenLock sync.Mutex
	seen     *expirable.LRU[string, struct{}]

	scanning atomic.Bool
	running  atomic.Bool

	statusLock sync.Mutex
	status     Status
	cron       *cron.Cron
}

func NewBot(opts Options) (*Bot, error) {
	if opts.Analyzer == nil {
		return nil, errors.New("monitor: analyzer is required")
	}
	if opts.Archiver == nil {
		return nil, errors.New("monitor: archiver is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("monitor: notifier is required")
	}
	if len(opts.Keywords) == 0 {
		return nil, errors.New("monitor: no keywords configured")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.PerPlatform <= 0 {
		opts.PerPlatform = 1
	}
	if opts.DedupeTTL <= 0 {
		opts.DedupeTTL = 24 * time.Hour
	}
	if opts.DedupeSize <= 0 {
		opts.DedupeSize = 10000
	}
	if opts.Schedule == "" {
		opts.Schedule = "@every 30m"
	}

	keywords := opts.Keywords
	if opts.Language != nil {
		keywords = opts.Language.ExpandAll(opts.Keywords)
	}

	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	platforms := make([]string, len(opts.Searchers))
	for i, s := range opts.Searchers {
		platforms[i] = s.Name()
	}

	return &Bot{
		searchers:    opts.Searchers,
		analyzer:     opts.Analyzer,
		archiver:     opts.Archiver,
		notifier:     opts.Notifier,
		keywords:     keywords,
		archiveLevel: opts.ArchiveLevel,
		alertLevel:   opts.AlertLevel,
		concurrency:  opts.Concurrency,
		perPlatform:  opts.PerPlatform,
		schedule:     opts.Schedule,
		runOnStart:   opts.RunOnStart,
		metrics:      m,
		seen:         expirable.NewLRU[string, struct{}](opts.DedupeSize, nil, opts.DedupeTTL),
		status: Status{
			Platforms: platforms,
			Keywords:  len(keywords),
			Schedule:  opts.Schedule,
		},
	}, nil
}

// Keywords are the search terms after translation.
func (b *Bot) Keywords() []string {
	return b.keywords
}

// firstSighting marks the listing as seen and reports whether it was new.
func (b *Bot) firstSighting(id string) bool {
	b.seenLock.Lock()
	defer b.seenLock.Unlock()
	if b.seen.Contains(id) {
		return false
	}
	b.seen.Add(id, struct{}{})
	return true
}

func (b *Bot) forget(id string) {
	b.seenLock.Lock()
	defer b.seenLock.Unlock()
	b.seen.Remove(id)
}

// Forget clears the dedupe cache so the next cycle looks at everything.
func (b *Bot) Forget() {
	b.seenLock.Lock()
	defer b.seenLock.Unlock()
	b.seen.Purge()
}

type Status struct {
	Running   bool              `json:"running"`
	Scanning  bool              `json:"scanning"`
	Schedule  string            `json:"schedule"`
	NextRun   time.Time         `json:"next_run,omitempty"`
	LastRun   *evidence.ScanRun `json:"last_run,omitempty"`
	Cycles    int               `json:"cycles"`
	Listings  int               `json:"listings"`
	Threats   int               `json:"threats"`
	Alerts    int               `json:"alerts"`
	Platforms []string          `json:"platforms"`
	Keywords  int               `json:"keywords"`
}

func (b *Bot) Status() Status {
	b.statusLock.Lock()
	defer b.statusLock.Unlock()

	status := b.status
	status.Running = b.running.Load()
	status.Scanning = b.scanning.Load()
	if b.cron != nil {
		entries := b.cron.Entries()
		if len(entries) > 0 {
			status.NextRun = entries[0].Next
		}
	}
	return status
}

func (b *Bot) recordRun(run evidence.ScanRun) {
	b.statusLock.Lock()
	defer b.statusLock.Unlock()

	b.status.LastRun = &run
	b.status.Cycles++
	b.status.Listings += run.Listings
	b.status.Threats += run.Threats
	b.status.Alerts += run.Alerts
}
