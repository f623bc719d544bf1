package marketplace

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/htmlutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/textutil"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/threat"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/timezone"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoSelectorMatch means none of the card selectors matched a page that
// wasn't recognized as an empty result page, usually because the
// platform changed its markup.
var ErrNoSelectorMatch = errors.New("no card selector matched")

// ParseListings extracts listings from a search results page. pageUrl is
// used to resolve relative links and images.
func ParseListings(cfg PlatformConfig, pageUrl string, body []byte) ([]threat.Listing, error) {
	base, err := url.Parse(pageUrl)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	cards, idx := htmlutil.FirstMatch(doc.Selection, cfg.Selectors.Card)
	if idx < 0 {
		if isEmptyPage(doc, cfg.Selectors.Empty) || len(bytes.TrimSpace(body)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrNoSelectorMatch)
	}

	now := timezone.Now()
	seen := map[string]struct{}{}
	var listings []threat.Listing
	cards.Each(func(_ int, card *goquery.Selection) {
		listing, ok := parseCard(cfg, base, card)
		if !ok {
			return
		}
		if _, dup := seen[listing.ID]; dup {
			return
		}
		seen[listing.ID] = struct{}{}
		listing.ScrapedAt = now
		listings = append(listings, listing)
	})
	return listings, nil
}

func isEmptyPage(doc *goquery.Document, markers []string) bool {
	_, idx := htmlutil.FirstMatch(doc.Selection, markers)
	return idx >= 0
}

func parseCard(cfg PlatformConfig, base *url.URL, card *goquery.Selection) (threat.Listing, bool) {
	sel := cfg.Selectors

	title, _ := htmlutil.FirstField(card, sel.Title)
	href, _ := htmlutil.FirstField(card, sel.Link)
	link := htmlutil.ResolveUrl(base, href)
	if title == "" || link == "" {
		return threat.Listing{}, false
	}

	listing := threat.Listing{
		ID:       threat.ListingID(cfg.Name, link),
		Platform: cfg.Name,
		Title:    title,
		URL:      link,
	}

	priceText, _ := htmlutil.FirstField(card, sel.Price)
	if priceText != "" {
		listing.PriceText = priceText
		amount, currency, ok := textutil.ParsePrice(priceText)
		if ok {
			listing.Price = amount
		}
		listing.Currency = currency
	}

	image, _ := htmlutil.FirstField(card, sel.Image)
	// lazy loaded images often carry a data: placeholder in src
	if !strings.HasPrefix(image, "data:") {
		listing.ImageURL = htmlutil.ResolveUrl(base, image)
	}
	listing.Seller, _ = htmlutil.FirstField(card, sel.Seller)
	listing.Location, _ = htmlutil.FirstField(card, sel.Location)
	listing.Description, _ = htmlutil.FirstField(card, sel.Description)

	return listing, true
}
