package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/telemetry"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

const firstPage = `<html><head><title>Search results</title></head><body>
<div class="item">
  <a class="link" href="/itm/1?ref=search"><span class="name">Carved  Ivory Bangle</span></a>
  <span class="price">US $1,250.00</span>
  <img src="data:image/gif;base64,R0lGOD" data-src="/img/1.jpg">
  <span class="seller">oldcurios</span>
  <span class="loc">Hong Kong</span>
</div>
<div class="item">
  <a class="link" href="https://cdn.example.org/itm/2"><span class="name">Pangolin scale pendant</span></a>
  <span class="price">1.250,00 €</span>
</div>
<div class="item">
  <a class="link" href="/itm/3"></a>
  <span class="price">$5</span>
</div>
<div class="item">
  <a class="link" href="/itm/1?ref=duplicate"><span class="name">Carved Ivory Bangle</span></a>
</div>
</body></html>`

const secondPage = `<html><body>
<div class="item">
  <a class="link" href="/itm/4"><span class="name">Tiger claw necklace</span></a>
  <span class="price">£80</span>
</div>
</body></html>`

const emptyPage = `<html><body><div class="no-results">No results for your search</div></body></html>`

func testPlatform(baseUrl string) PlatformConfig {
	return PlatformConfig{
		Name:       "testmarket",
		BaseUrl:    baseUrl,
		SearchPath: "/search?q={query}&page={page}",
		Pages:      3,
		Selectors: Selectors{
			Card:     []string{"div.item-v2", "div.item"},
			Title:    []string{".name-v2", ".name"},
			Price:    []string{".price"},
			Link:     []string{"a.link@href"},
			Image:    []string{"img@data-src", "img@src"},
			Seller:   []string{".seller"},
			Location: []string{".loc"},
			Empty:    []string{".no-results"},
		},
	}
}

func TestSearchUrl(t *testing.T) {
	ebay, ok := Find(DefaultPlatforms(), "eBay")
	require.True(t, ok)
	link, err := ebay.SearchUrl("rhino horn", 2)
	require.NoError(t, err)
	require.Equal(t, "https://www.ebay.com/sch/i.html?_nkw=rhino+horn&_pgn=2", link)

	craigslist, ok := Find(DefaultPlatforms(), "craigslist")
	require.True(t, ok)
	link, err = craigslist.SearchUrl("ivory", 3)
	require.NoError(t, err)
	require.Equal(t, "https://newyork.craigslist.org/search/sss?query=ivory&s=240", link)

	_, ok = Find(DefaultPlatforms(), "etsy")
	require.False(t, ok)
}

func TestValidate(t *testing.T) {
	for _, p := range DefaultPlatforms() {
		require.NoError(t, p.Validate(), p.Name)
	}

	err := PlatformConfig{Name: "broken", BaseUrl: "not a url", SearchPath: "/search", Render: "carrier-pigeon"}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "{query}")
	require.Contains(t, err.Error(), "carrier-pigeon")
}

func TestParseListings(t *testing.T) {
	cfg := testPlatform("https://market.example.com")
	pageUrl := "https://market.example.com/search?q=ivory&page=1"

	listings, err := ParseListings(cfg, pageUrl, []byte(firstPage))
	require.NoError(t, err)

	expected := []threat.Listing{
		{
			ID:        threat.ListingID("testmarket", "https://market.example.com/itm/1"),
			Platform:  "testmarket",
			Title:     "Carved Ivory Bangle",
			URL:       "https://market.example.com/itm/1?ref=search",
			Price:     1250,
			Currency:  "USD",
			PriceText: "US $1,250.00",
			ImageURL:  "https://market.example.com/img/1.jpg",
			Seller:    "oldcurios",
			Location:  "Hong Kong",
		},
		{
			ID:        threat.ListingID("testmarket", "https://cdn.example.org/itm/2"),
			Platform:  "testmarket",
			Title:     "Pangolin scale pendant",
			URL:       "https://cdn.example.org/itm/2",
			Price:     1250,
			Currency:  "EUR",
			PriceText: "1.250,00 €",
		},
	}
	if diff := cmp.Diff(expected, listings, cmpopts.IgnoreFields(threat.Listing{}, "ScrapedAt")); diff != "" {
		t.Fatalf("listings (-want +got):\n%s", diff)
	}
	for _, l := range listings {
		require.False(t, l.ScrapedAt.IsZero())
	}
}

func TestParseListingsQueryIds(t *testing.T) {
	cfg := testPlatform("https://bazaar.example")
	page := `<html><body>
<div class="item"><a class="link" href="/viewitem.php?id=101"><span class="name">Rhino horn cup</span></a></div>
<div class="item"><a class="link" href="/viewitem.php?id=202&utm_source=feed"><span class="name">Ivory netsuke</span></a></div>
<div class="item"><a class="link" href="/viewitem.php?id=101&ref=related"><span class="name">Rhino horn cup</span></a></div>
</body></html>`

	listings, err := ParseListings(cfg, "https://bazaar.example/search?q=horn", []byte(page))
	require.NoError(t, err)
	require.Len(t, listings, 2)
	require.Equal(t, "Rhino horn cup", listings[0].Title)
	require.Equal(t, "Ivory netsuke", listings[1].Title)
	require.NotEqual(t, listings[0].ID, listings[1].ID)
}

func TestParseListingsNoMatch(t *testing.T) {
	cfg := testPlatform("https://market.example.com")

	_, err := ParseListings(cfg, "https://market.example.com/search", []byte(`<html><body><div class="card-2030">redesigned</div></body></html>`))
	require.ErrorIs(t, err, ErrNoSelectorMatch)

	listings, err := ParseListings(cfg, "https://market.example.com/search", []byte(emptyPage))
	require.NoError(t, err)
	require.Empty(t, listings)
}

func TestDetectBlock(t *testing.T) {
	require.ErrorIs(t, detectBlock(http.StatusForbidden, nil), ErrBlocked)
	require.ErrorIs(t, detectBlock(http.StatusTooManyRequests, nil), ErrBlocked)
	require.ErrorIs(t, detectBlock(200, []byte(`<html><head><title>Just a moment...</title></head></html>`)), ErrBlocked)
	require.ErrorIs(t, detectBlock(200, []byte(`<div id="px-captcha"></div>`)), ErrBlocked)
	require.NoError(t, detectBlock(200, []byte(firstPage)))
	require.NoError(t, detectBlock(200, []byte(`<title>Ivory</title><script>loadRecaptcha()</script>`)))
}

func newTestFetcher(t *testing.T) *HttpFetcher {
	fetcher, err := NewHttpFetcher(HttpFetcherOptions{Retries: -1})
	require.NoError(t, err)
	return fetcher
}

func TestScannerSearch(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:marketplace")
	defer cleanup()

	var userAgents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents = append(userAgents, r.UserAgent())
		if r.URL.Query().Get("q") != "ivory" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, firstPage)
		case "2":
			fmt.Fprint(w, secondPage)
		default:
			fmt.Fprint(w, emptyPage)
		}
	}))
	defer srv.Close()

	scanner, err := NewScanner(testPlatform(srv.URL), newTestFetcher(t))
	require.NoError(t, err)

	listings, err := scanner.Search(context.Background(), "ivory")
	require.NoError(t, err)
	require.Len(t, listings, 3)
	require.Equal(t, "Tiger claw necklace", listings[2].Title)
	require.Equal(t, "GBP", listings[2].Currency)
	for _, l := range listings {
		require.Equal(t, "ivory", l.Keyword)
		require.Equal(t, "testmarket", l.Platform)
	}

	require.Len(t, userAgents, 3)
	require.NotEqual(t, userAgents[0], userAgents[1])
}

func TestScannerBlocked(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:marketplace")
	defer cleanup()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "<html><head><title>Access Denied</title></head></html>")
	}))
	defer srv.Close()

	scanner, err := NewScanner(testPlatform(srv.URL), newTestFetcher(t))
	require.NoError(t, err)

	_, err = scanner.Search(context.Background(), "ivory")
	require.ErrorIs(t, err, ErrBlocked)
}

type staticFetcher struct {
	body []byte
	err  error
}

func (f staticFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.body, f.err
}

func TestDiagnose(t *testing.T) {
	cfg := testPlatform("https://market.example.com")

	diagnosis := Diagnose(context.Background(), cfg, staticFetcher{body: []byte(firstPage)}, "ivory")
	require.Empty(t, diagnosis.Error)
	require.True(t, diagnosis.Healthy())
	require.Equal(t, 4, diagnosis.Cards)
	require.Equal(t, 2, diagnosis.Listings)

	card := diagnosis.Groups[0]
	require.Equal(t, "card", card.Field)
	require.Equal(t, 1, card.Winner)
	require.Equal(t, []Probe{{Selector: "div.item-v2"}, {Selector: "div.item", Matches: 4}}, card.Probes)

	title := diagnosis.Groups[1]
	require.Equal(t, "title", title.Field)
	require.Equal(t, 1, title.Winner)
	require.Equal(t, 3, title.Probes[1].Matches)
	require.Equal(t, "Carved Ivory Bangle", title.Probes[1].Sample)

	blocked := Diagnose(context.Background(), cfg, staticFetcher{err: fmt.Errorf("wrapped: %w", ErrBlocked)}, "ivory")
	require.True(t, blocked.Blocked)
	require.False(t, blocked.Healthy())

	broken := DiagnoseHTML(cfg, "https://market.example.com/search", []byte(`<html><body><p>new layout</p></body></html>`))
	require.Equal(t, -1, broken.Groups[0].Winner)
	require.Contains(t, broken.Error, ErrNoSelectorMatch.Error())
	require.False(t, broken.Healthy())
}

func TestFetchers(t *testing.T) {
	fetchers := Fetchers{Http: newTestFetcher(t)}

	scanners, err := NewScanners(DefaultPlatforms(), fetchers)
	require.Error(t, err)
	require.Nil(t, scanners)

	var httpOnly []PlatformConfig
	for _, p := range DefaultPlatforms() {
		if p.Render == RenderBrowser {
			p.Disabled = true
		}
		httpOnly = append(httpOnly, p)
	}
	scanners, err = NewScanners(httpOnly, fetchers)
	require.NoError(t, err)
	require.Len(t, scanners, 4)
}

func TestBrowserFetcherClosesTimedOutPages(t *testing.T) {
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chromium installed")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	fetcher := NewBrowserFetcher(BrowserFetcherOptions{
		Bin:      bin,
		Headless: true,
		Timeout:  300 * time.Millisecond,
	})
	defer fetcher.Close()

	browser, err := fetcher.connect()
	require.NoError(t, err)
	before, err := browser.Pages()
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), srv.URL+"/slow")
	require.Error(t, err)

	after, err := browser.Pages()
	require.NoError(t, err)
	require.Len(t, after, len(before))
}
