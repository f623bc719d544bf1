package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Scanner searches one platform.
type Scanner struct {
	config  PlatformConfig
	fetcher Fetcher
}

func NewScanner(cfg PlatformConfig, fetcher Fetcher) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{config: cfg, fetcher: fetcher}, nil
}

func (s *Scanner) Name() string {
	return s.config.Name
}

func (s *Scanner) Config() PlatformConfig {
	return s.config
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Search walks the configured number of result pages for a keyword. It
// stops at the first page without listings. When a later page fails the
// listings collected so far are returned along with the error.
func (s *Scanner) Search(ctx context.Context, keyword string) ([]threat.Listing, error) {
	ctx, span := tracer.Start(ctx, "Scanner.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", s.config.Name),
		attribute.String("keyword", keyword),
	)

	seen := map[string]struct{}{}
	var listings []threat.Listing
	for page := 1; page <= s.config.PageCount(); page++ {
		if page > 1 {
			if err := sleep(ctx, s.config.Delay()); err != nil {
				return listings, err
			}
		}

		found, err := s.searchPage(ctx, keyword, page)
		if errors.Is(err, ErrNoSelectorMatch) && page > 1 {
			// some platforms serve a different layout past the last page
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return listings, err
		}
		if len(found) == 0 {
			break
		}

		added := 0
		for _, l := range found {
			if _, ok := seen[l.ID]; ok {
				continue
			}
			seen[l.ID] = struct{}{}
			l.Keyword = keyword
			listings = append(listings, l)
			added++
		}
		// pagination past the end repeats the last page on some sites
		if added == 0 {
			break
		}
	}

	span.SetAttributes(attribute.Int("listings", len(listings)))
	slog.DebugContext(ctx, "search finished", "platform", s.config.Name, "keyword", keyword, "listings", len(listings))
	return listings, nil
}

func (s *Scanner) searchPage(ctx context.Context, keyword string, page int) ([]threat.Listing, error) {
	pageUrl, err := s.config.SearchUrl(keyword, page)
	if err != nil {
		return nil, err
	}
	body, err := s.fetcher.Fetch(ctx, pageUrl)
	if err != nil {
		return nil, fmt.Errorf("%s page %d: %w", s.config.Name, page, err)
	}
	return ParseListings(s.config, pageUrl, body)
}

// Fetchers holds one fetcher per render mode.
type Fetchers struct {
	Http    Fetcher
	Browser Fetcher
}

func (f Fetchers) For(cfg PlatformConfig) (Fetcher, error) {
	switch cfg.Render {
	case "", RenderHttp:
		if f.Http == nil {
			return nil, fmt.Errorf("platform %q: no http fetcher", cfg.Name)
		}
		return f.Http, nil
	case RenderBrowser:
		if f.Browser == nil {
			return nil, fmt.Errorf("platform %q: browser rendering is not enabled", cfg.Name)
		}
		return f.Browser, nil
	}
	return nil, fmt.Errorf("platform %q: unknown render mode %q", cfg.Name, cfg.Render)
}

// NewScanners builds a scanner for every enabled platform.
func NewScanners(platforms []PlatformConfig, fetchers Fetchers) ([]*Scanner, error) {
	var scanners []*Scanner
	for _, cfg := range platforms {
		if cfg.Disabled {
			continue
		}
		fetcher, err := fetchers.For(cfg)
		if err != nil {
			return nil, err
		}
		scanner, err := NewScanner(cfg, fetcher)
		if err != nil {
			return nil, err
		}
		scanners = append(scanners, scanner)
	}
	return scanners, nil
}
