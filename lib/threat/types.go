package threat

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Listing is a scraped marketplace item.
type Listing struct {
	ID          string    `json:"id"`
	Platform    string    `json:"platform"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	PriceText   string    `json:"price_text,omitempty"`
	URL         string    `json:"url"`
	Seller      string    `json:"seller,omitempty"`
	Location    string    `json:"location,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Keyword     string    `json:"keyword,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// trackingParams never identify an item, they are dropped from the
// canonical url. Keys ending in "_" match as prefixes.
var trackingParams = []string{
	"utm_", "ref", "ref_", "hash", "_trksid", "_trkparms", "_trkpg",
	"fbclid", "gclid", "mc_cid", "mc_eid", "spm", "tracking_id",
}

func isTrackingParam(key string) bool {
	key = strings.ToLower(key)
	for _, p := range trackingParams {
		if key == p || (strings.HasSuffix(p, "_") && strings.HasPrefix(key, p)) {
			return true
		}
	}
	return false
}

// CanonicalURL lowercases scheme, host and path, drops the fragment,
// a trailing slash and tracking parameters, and sorts what is left of
// the query.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		canonical := raw
		if idx := strings.IndexAny(canonical, "?#"); idx >= 0 {
			canonical = canonical[:idx]
		}
		return strings.TrimSuffix(strings.ToLower(canonical), "/")
	}

	query := u.Query()
	for key := range query {
		if isTrackingParam(key) {
			delete(query, key)
		}
	}

	canonical := strings.ToLower(u.Scheme + "://" + u.Host + u.EscapedPath())
	canonical = strings.TrimSuffix(canonical, "/")
	if len(query) > 0 {
		canonical += "?" + query.Encode()
	}
	return canonical
}

// ListingID derives a stable id from the platform and canonical url.
// Items that differ only by query (viewitem.php?id=101) get their own id.
func ListingID(platform, url string) string {
	sum := sha1.Sum([]byte(CanonicalURL(url)))
	return fmt.Sprintf("%s-%s", platform, hex.EncodeToString(sum[:])[:16])
}

// Text is everything the analyzer reads from a listing.
func (l Listing) Text() string {
	return strings.TrimSpace(l.Title + " " + l.Description)
}

type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"}

func (l Level) String() string {
	if l < LevelLow || l > LevelCritical {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Level(i), nil
		}
	}
	return LevelLow, fmt.Errorf("unknown threat level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LevelFor buckets a 0-100 score.
func LevelFor(score int) Level {
	switch {
	case score >= 80:
		return LevelCritical
	case score >= 60:
		return LevelHigh
	case score >= 40:
		return LevelMedium
	default:
		return LevelLow
	}
}

type IndicatorKind string

const (
	KindSpecies      IndicatorKind = "species"
	KindProduct      IndicatorKind = "product"
	KindEvasion      IndicatorKind = "evasion"
	KindLegitimacy   IndicatorKind = "legitimacy"
	KindCooccurrence IndicatorKind = "cooccurrence"
)

// Indicator is one reason a listing scored the way it did.
type Indicator struct {
	Kind    IndicatorKind `json:"kind"`
	Term    string        `json:"term"`
	Matched string        `json:"matched,omitempty"`
	Fuzzy   bool          `json:"fuzzy,omitempty"`
	Weight  int           `json:"weight"`
}

type Assessment struct {
	Score      int         `json:"score"`
	Level      Level       `json:"level"`
	RuleScore  int         `json:"rule_score"`
	Indicators []Indicator `json:"indicators"`
	Species    []string    `json:"species,omitempty"`
	Language   string      `json:"language"`
	Reviewed   bool        `json:"reviewed"`
	Rationale  string      `json:"rationale,omitempty"`
}
