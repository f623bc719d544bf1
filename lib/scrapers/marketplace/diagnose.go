package marketplace

import (
	"bytes"
	"context"
	"errors"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Probe is the result of trying one selector.
type Probe struct {
	Selector string `json:"selector"`
	// nodes matched for card selectors, cards with a non-empty value for
	// field selectors
	Matches int    `json:"matches"`
	Sample  string `json:"sample,omitempty"`
}

type GroupReport struct {
	Field string `json:"field"`
	// index into Probes of the selector that would be used, -1 if none
	Winner int     `json:"winner"`
	Probes []Probe `json:"probes"`
}

type Diagnosis struct {
	Platform string        `json:"platform"`
	Url      string        `json:"url"`
	Error    string        `json:"error,omitempty"`
	Blocked  bool          `json:"blocked"`
	Empty    bool          `json:"empty"`
	Cards    int           `json:"cards"`
	Listings int           `json:"listings"`
	Groups   []GroupReport `json:"groups"`
}

// Healthy is true when results were found and both required fields
// could be extracted.
func (d Diagnosis) Healthy() bool {
	if d.Error != "" || d.Listings == 0 {
		return false
	}
	for _, g := range d.Groups {
		if (g.Field == "card" || g.Field == "title" || g.Field == "link") && g.Winner < 0 {
			return false
		}
	}
	return true
}

// Diagnose fetches the first result page for keyword and reports which
// selectors of each group still match.
func Diagnose(ctx context.Context, cfg PlatformConfig, fetcher Fetcher, keyword string) Diagnosis {
	ctx, span := tracer.Start(ctx, "Diagnose")
	defer span.End()

	pageUrl, err := cfg.SearchUrl(keyword, 1)
	if err != nil {
		return Diagnosis{Platform: cfg.Name, Error: err.Error()}
	}
	body, err := fetcher.Fetch(ctx, pageUrl)
	if err != nil {
		span.RecordError(err)
		return Diagnosis{
			Platform: cfg.Name,
			Url:      pageUrl,
			Error:    err.Error(),
			Blocked:  errors.Is(err, ErrBlocked),
		}
	}
	return DiagnoseHTML(cfg, pageUrl, body)
}

// DiagnoseHTML is Diagnose on an already fetched page.
func DiagnoseHTML(cfg PlatformConfig, pageUrl string, body []byte) Diagnosis {
	diagnosis := Diagnosis{Platform: cfg.Name, Url: pageUrl}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		diagnosis.Error = err.Error()
		return diagnosis
	}
	diagnosis.Empty = isEmptyPage(doc, cfg.Selectors.Empty)

	cardGroup := GroupReport{Field: "card", Winner: -1}
	for _, s := range cfg.Selectors.Card {
		found := doc.Find(s)
		cardGroup.Probes = append(cardGroup.Probes, Probe{Selector: s, Matches: found.Length()})
		if found.Length() > 0 && cardGroup.Winner < 0 {
			cardGroup.Winner = len(cardGroup.Probes) - 1
		}
	}
	diagnosis.Groups = append(diagnosis.Groups, cardGroup)

	cards, _ := htmlutil.FirstMatch(doc.Selection, cfg.Selectors.Card)
	diagnosis.Cards = cards.Length()

	fields := []struct {
		name      string
		selectors []string
	}{
		{"title", cfg.Selectors.Title},
		{"link", cfg.Selectors.Link},
		{"price", cfg.Selectors.Price},
		{"image", cfg.Selectors.Image},
		{"seller", cfg.Selectors.Seller},
		{"location", cfg.Selectors.Location},
		{"description", cfg.Selectors.Description},
	}
	for _, f := range fields {
		if len(f.selectors) == 0 {
			continue
		}
		diagnosis.Groups = append(diagnosis.Groups, probeField(f.name, f.selectors, cards))
	}

	listings, err := ParseListings(cfg, pageUrl, body)
	if err != nil {
		diagnosis.Error = err.Error()
	}
	diagnosis.Listings = len(listings)
	return diagnosis
}

func probeField(name string, selectors []string, cards *goquery.Selection) GroupReport {
	report := GroupReport{Field: name, Winner: -1}
	for _, s := range selectors {
		probe := Probe{Selector: s}
		cards.Each(func(_ int, card *goquery.Selection) {
			value := htmlutil.FieldSelector(s).Extract(card)
			if value == "" {
				return
			}
			probe.Matches++
			if probe.Sample == "" {
				probe.Sample = value
			}
		})
		report.Probes = append(report.Probes, probe)
		if probe.Matches > 0 && report.Winner < 0 {
			report.Winner = len(report.Probes) - 1
		}
	}
	return report
}
