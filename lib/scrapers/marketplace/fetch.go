package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// ErrBlocked is returned when a platform answers with an anti-bot page
// instead of search results.
var ErrBlocked = errors.New("request blocked by platform")

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
}

type HttpFetcherOptions struct {
	// rotated per request, defaults to DefaultUserAgents
	UserAgents []string
	// defaults to 30s
	Timeout time.Duration
	// retries on 429 and 5xx, defaults to 2, negative disables retries
	Retries int
	// minimum wait between retries, defaults to 2s
	RetryWait time.Duration
	// optional, request/response dumps are written here when debug
	// logging is enabled
	Dump restyutil.InstrumentOutput
}

type HttpFetcher struct {
	client     *resty.Client
	userAgents []string
	next       atomic.Uint64
}

func NewHttpFetcher(opts HttpFetcherOptions) (*HttpFetcher, error) {
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = DefaultUserAgents
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 2
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = 2 * time.Second
	}

	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	client.SetRetryWaitTime(opts.RetryWait)
	client.SetRetryMaxWaitTime(opts.RetryWait * 4)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if res == nil {
			return false
		}
		code := res.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	})

	restyutil.InstrumentClient(client, tracer, opts.Dump)

	return &HttpFetcher{
		client:     client,
		userAgents: opts.UserAgents,
	}, nil
}

func (f *HttpFetcher) userAgent() string {
	n := f.next.Add(1) - 1
	return f.userAgents[n%uint64(len(f.userAgents))]
}

func (f *HttpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		SetHeader("user-agent", f.userAgent()).
		Get(url)
	if err != nil {
		return nil, err
	}

	body := res.Body()
	if err := detectBlock(res.StatusCode(), body); err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, res.Status())
	}
	return body, nil
}

var titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

var blockedTitleHints = []string{
	"access denied",
	"attention required",
	"captcha",
	"are you a robot",
	"are you a human",
	"pardon our interruption",
	"security check",
	"just a moment",
	"verify you are human",
}

var blockedBodyHints = []string{
	`id="px-captcha"`,
	`class="g-recaptcha"`,
	`id="challenge-form"`,
	`/cdn-cgi/challenge-platform/`,
	`geo.captcha-delivery.com`,
}

// detectBlock recognizes the usual anti-bot interstitials. Only the page
// title and a few challenge markers are checked, search results often
// mention "captcha" in unrelated scripts.
func detectBlock(status int, body []byte) error {
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrBlocked, status)
	}

	if m := titleRegex.FindSubmatch(body); m != nil {
		title := strings.ToLower(string(m[1]))
		for _, hint := range blockedTitleHints {
			if strings.Contains(title, hint) {
				return fmt.Errorf("%w: page title %q", ErrBlocked, strings.TrimSpace(string(m[1])))
			}
		}
	}

	lower := strings.ToLower(string(body))
	for _, hint := range blockedBodyHints {
		if strings.Contains(lower, strings.ToLower(hint)) {
			return fmt.Errorf("%w: challenge marker %s", ErrBlocked, hint)
		}
	}
	return nil
}
