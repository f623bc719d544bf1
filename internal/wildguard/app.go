package wildguard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/restyutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/scrapers/marketplace"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/alerts"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence/db"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/monitor"
)

// App holds every component of the marketplace monitor.
type App struct {
	Config   Config
	DB       *sql.DB
	Store    evidence.Store
	Alerts   *alerts.Manager
	Analyzer *threat.Analyzer
	Language *language.Processor
	Scanners []*marketplace.Scanner
	Bot      *monitor.Bot

	browser *marketplace.BrowserFetcher
}

type Options struct {
	// dump marketplace requests and responses here when debug logging is on
	DumpDir string
}

// OpenDB opens the configured database and applies the evidence schema.
func OpenDB(cfg Config) (*sql.DB, error) {
	if cfg.Database == (Config{}).Database {
		cfg.Database.File = "<dev_state>/wildguard.db"
	}
	return cfg.Database.OpenWithSchema(db.Schema)
}

func NewAnalyzer(cfg Config, lang *language.Processor) (*threat.Analyzer, error) {
	opts := threat.AnalyzerOptions{
		Language:       lang,
		ReviewMinScore: cfg.Reviewer.MinScore,
	}
	if cfg.Reviewer.Enabled() {
		reviewer, err := threat.NewAzureReviewer(cfg.Reviewer.Endpoint, cfg.Reviewer.ApiKey, cfg.Reviewer.Deployment)
		if err != nil {
			return nil, fmt.Errorf("ai reviewer: %w", err)
		}
		opts.Reviewer = reviewer
	}
	return threat.NewAnalyzer(opts), nil
}

// NewFetchers returns the page fetchers of the configured platforms, the
// browser is only launched once a browser rendered page is fetched.
func NewFetchers(cfg Config, opts Options) (marketplace.Fetchers, *marketplace.BrowserFetcher, error) {
	httpOpts := marketplace.HttpFetcherOptions{}
	if opts.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(opts.DumpDir)
		if err != nil {
			return marketplace.Fetchers{}, nil, err
		}
		httpOpts.Dump = output
	}
	httpFetcher, err := marketplace.NewHttpFetcher(httpOpts)
	if err != nil {
		return marketplace.Fetchers{}, nil, err
	}
	browser := marketplace.NewBrowserFetcher(marketplace.BrowserFetcherOptions{
		ControlUrl: cfg.Browser.ControlUrl,
		Bin:        cfg.Browser.Bin,
		Headless:   !cfg.Browser.Headful,
	})
	return marketplace.Fetchers{Http: httpFetcher, Browser: browser}, browser, nil
}

func Build(cfg Config, opts Options) (*App, error) {
	archiveLevel, err := parseLevel(cfg.Monitor.ArchiveLevel, threat.LevelMedium)
	if err != nil {
		return nil, fmt.Errorf("archive_level: %w", err)
	}
	alertLevel, err := parseLevel(cfg.Monitor.AlertLevel, threat.LevelHigh)
	if err != nil {
		return nil, fmt.Errorf("alert_level: %w", err)
	}
	emailLevel, err := parseLevel(cfg.Alerts.EmailLevel, threat.LevelHigh)
	if err != nil {
		return nil, fmt.Errorf("email_level: %w", err)
	}

	app := &App{Config: cfg}
	app.Language = language.New(cfg.Monitor.Languages)
	app.Analyzer, err = NewAnalyzer(cfg, app.Language)
	if err != nil {
		return nil, err
	}

	fetchers, browser, err := NewFetchers(cfg, opts)
	if err != nil {
		return nil, err
	}
	app.browser = browser
	app.Scanners, err = marketplace.NewScanners(cfg.PlatformConfigs(), fetchers)
	if err != nil {
		browser.Close()
		return nil, err
	}

	app.DB, err = OpenDB(cfg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	app.Store = evidence.NewStore(app.DB)

	alertOpts := alerts.Options{
		Capacity:  cfg.Alerts.Capacity,
		SendLevel: emailLevel,
	}
	if cfg.Alerts.Smtp.Enabled() {
		alertOpts.Sender = alerts.NewEmailSender(cfg.Alerts.Smtp)
	} else {
		slog.Info("smtp not configured, alerts will not be e-mailed")
	}
	app.Alerts = alerts.NewManager(alertOpts)

	searchers := make([]monitor.Searcher, len(app.Scanners))
	for i, s := range app.Scanners {
		searchers[i] = s
	}
	app.Bot, err = monitor.NewBot(monitor.Options{
		Searchers:    searchers,
		Analyzer:     app.Analyzer,
		Archiver:     app.Store,
		Notifier:     app.Alerts,
		Keywords:     cfg.Monitor.Keywords,
		Language:     app.Language,
		ArchiveLevel: archiveLevel,
		AlertLevel:   alertLevel,
		Concurrency:  cfg.Monitor.Concurrency,
		PerPlatform:  cfg.Monitor.PerPlatform,
		DedupeTTL:    cfg.DedupeTTL(),
		Schedule:     cfg.Monitor.Schedule,
		RunOnStart:   cfg.Monitor.RunOnStart,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Scan runs a single cycle, it is used by the cli and the -scan flag.
func (a *App) Scan(ctx context.Context) (evidence.ScanRun, error) {
	return a.Bot.ScanCycle(ctx)
}
