package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

type BrowserFetcherOptions struct {
	// connect to an already running browser instead of launching one
	ControlUrl string
	// browser binary, the launcher downloads chromium when empty
	Bin      string
	Headless bool
	// per page, defaults to 45s
	Timeout time.Duration
	// how long the DOM must stay unchanged before it is read, defaults to 1.5s
	Settle time.Duration
}

// BrowserFetcher renders pages in a headless browser for platforms whose
// results only exist after javascript runs. The browser is started on
// first use and shared by every fetch.
type BrowserFetcher struct {
	opts BrowserFetcherOptions

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewBrowserFetcher(opts BrowserFetcherOptions) *BrowserFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 45 * time.Second
	}
	if opts.Settle == 0 {
		opts.Settle = 1500 * time.Millisecond
	}
	return &BrowserFetcher{opts: opts}
}

func (b *BrowserFetcher) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	controlUrl := b.opts.ControlUrl
	if controlUrl == "" {
		l := launcher.New().Headless(b.opts.Headless)
		if b.opts.Bin != "" {
			l = l.Bin(b.opts.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		b.launcher = l
		controlUrl = url
	}

	browser := rod.New().ControlURL(controlUrl)
	if err := browser.Connect(); err != nil {
		if b.launcher != nil {
			b.launcher.Kill()
			b.launcher = nil
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	b.browser = browser
	return browser, nil
}

func (b *BrowserFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "BrowserFetcher.Fetch")
	defer span.End()

	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Timeout(b.opts.Timeout).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", url, err)
	}
	defer func() {
		// the fetch context may be past its deadline, the tab has to be
		// closed regardless or it stays open in the shared browser
		err := page.Context(context.WithoutCancel(ctx)).Close()
		if err != nil {
			slog.DebugContext(ctx, "close page", "url", url, "err", err)
		}
	}()

	err = page.WaitLoad()
	if err != nil {
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	err = page.WaitStable(b.opts.Settle)
	if err != nil {
		return nil, fmt.Errorf("wait stable %s: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	body := []byte(html)
	if err := detectBlock(0, body); err != nil {
		return nil, fmt.Errorf("render %s: %w", url, err)
	}
	return body, nil
}

func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
		b.launcher = nil
	}
	return err
}
