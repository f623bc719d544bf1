package threat

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wildlife-tracker/lib/threat")

// Review is a second opinion on a listing, typically from a language model.
type Review struct {
	Score     int
	Rationale string
}

type Reviewer interface {
	Review(ctx context.Context, listing Listing, rule Assessment) (Review, error)
}

type AnalyzerOptions struct {
	// defaults to DefaultRuleset()
	Ruleset *Ruleset
	// defaults to a processor with every language enabled
	Language *language.Processor
	// optional
	Reviewer Reviewer
	// listings whose rule score is below this are not sent to the reviewer
	ReviewMinScore int
}

type Analyzer struct {
	rules          Ruleset
	lang           *language.Processor
	reviewer       Reviewer
	reviewMinScore int
}

func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	rules := DefaultRuleset()
	if opts.Ruleset != nil {
		rules = *opts.Ruleset
	}
	lang := opts.Language
	if lang == nil {
		lang = language.New(nil)
	}
	return &Analyzer{
		rules:          rules,
		lang:           lang,
		reviewer:       opts.Reviewer,
		reviewMinScore: opts.ReviewMinScore,
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// matchGroup matches a group of terms, longest first. A term contained in
// an already matched longer term ("horn" inside "rhino horn") is skipped
// so one phrase isn't counted twice.
func (a *Analyzer) matchGroup(doc document, kind IndicatorKind, terms []Term, allowFuzzy bool) []Indicator {
	sorted := slices.Clone(terms)
	slices.SortStableFunc(sorted, func(x, y Term) int {
		return len(y.Text) - len(x.Text)
	})

	var matched []string
	var indicators []Indicator
	for _, term := range sorted {
		covered := false
		for _, m := range matched {
			if strings.Contains(m, term.Text) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		for _, form := range a.lang.Expand(term.Text) {
			if doc.contains(form) {
				indicators = append(indicators, Indicator{
					Kind:    kind,
					Term:    term.Text,
					Matched: form,
					Weight:  term.Weight,
				})
				matched = append(matched, term.Text)
				break
			}
		}
		if slices.Contains(matched, term.Text) || !allowFuzzy {
			continue
		}

		token, ok := doc.fuzzy(term.Text, a.rules.FuzzyThreshold)
		if ok {
			indicators = append(indicators, Indicator{
				Kind:    kind,
				Term:    term.Text,
				Matched: token,
				Fuzzy:   true,
				Weight:  int(math.Round(float64(term.Weight) * a.rules.FuzzyWeight)),
			})
			matched = append(matched, term.Text)
		}
	}
	return indicators
}

func (a *Analyzer) speciesFor(text string) string {
	for _, s := range a.rules.Species {
		if s.Text == text {
			return s.Species
		}
	}
	return ""
}

// Score runs only the ruleset, no reviewer is consulted.
func (a *Analyzer) Score(listing Listing) Assessment {
	text := listing.Text()
	doc := newDocument(text)

	species := a.matchGroup(doc, KindSpecies, a.rules.Species, true)
	products := a.matchGroup(doc, KindProduct, a.rules.Products, true)
	evasion := a.matchGroup(doc, KindEvasion, a.rules.Evasion, false)
	legitimacy := a.matchGroup(doc, KindLegitimacy, a.rules.Legitimacy, false)

	indicators := []Indicator{}
	indicators = append(indicators, species...)
	indicators = append(indicators, products...)
	indicators = append(indicators, evasion...)
	indicators = append(indicators, legitimacy...)
	if len(species) > 0 && len(products) > 0 && a.rules.CooccurrenceBonus != 0 {
		indicators = append(indicators, Indicator{
			Kind:   KindCooccurrence,
			Term:   species[0].Term + "+" + products[0].Term,
			Weight: a.rules.CooccurrenceBonus,
		})
	}

	total := 0
	for _, ind := range indicators {
		total += ind.Weight
	}

	var speciesNames []string
	for _, s := range species {
		name := a.speciesFor(s.Term)
		if name != "" && !slices.Contains(speciesNames, name) {
			speciesNames = append(speciesNames, name)
		}
	}

	score := clamp(total)
	return Assessment{
		Score:      score,
		Level:      LevelFor(score),
		RuleScore:  score,
		Indicators: indicators,
		Species:    speciesNames,
		Language:   a.lang.Detect(text),
	}
}

// Analyze scores the listing with the ruleset and, when a reviewer is
// configured and the rule score is high enough, averages in its score.
// A failing reviewer leaves the rule assessment untouched.
func (a *Analyzer) Analyze(ctx context.Context, listing Listing) Assessment {
	ctx, span := tracer.Start(ctx, "Analyze")
	defer span.End()

	assessment := a.Score(listing)
	span.SetAttributes(
		attribute.String("listing", listing.ID),
		attribute.Int("rule_score", assessment.RuleScore),
	)

	if a.reviewer == nil || assessment.RuleScore < a.reviewMinScore || listing.Text() == "" {
		return assessment
	}

	review, err := a.reviewer.Review(ctx, listing, assessment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "review failed")
		slog.WarnContext(ctx, "threat review failed, keeping rule score", "listing", listing.ID, "err", err)
		return assessment
	}

	score := clamp((assessment.RuleScore + clamp(review.Score)) / 2)
	assessment.Score = score
	assessment.Level = LevelFor(score)
	assessment.Reviewed = true
	assessment.Rationale = review.Rationale
	span.SetAttributes(attribute.Int("score", score))
	return assessment
}
