package threat

import (
	"context"
	"errors"
	"testing"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		score int
		level Level
	}{
		{0, LevelLow},
		{39, LevelLow},
		{40, LevelMedium},
		{59, LevelMedium},
		{60, LevelHigh},
		{79, LevelHigh},
		{80, LevelCritical},
		{100, LevelCritical},
	}
	for _, c := range cases {
		require.Equal(t, c.level, LevelFor(c.score), "score %d", c.score)
	}

	level, err := ParseLevel(" high ")
	require.NoError(t, err)
	require.Equal(t, LevelHigh, level)
	_, err = ParseLevel("severe")
	require.Error(t, err)
}

func TestListingID(t *testing.T) {
	a := ListingID("ebay", "https://www.ebay.com/itm/123?hash=abc#photos")
	b := ListingID("ebay", "https://www.ebay.com/itm/123/")
	require.Equal(t, a, b)
	require.Len(t, a, len("ebay-")+16)
	require.NotEqual(t, a, ListingID("ebay", "https://www.ebay.com/itm/124"))

	require.Equal(t,
		ListingID("ebay", "https://www.ebay.com/itm/123?utm_source=mail&_trksid=p2047675"),
		ListingID("ebay", "HTTPS://www.eBay.com/itm/123"),
	)

	first := ListingID("bazaar", "https://bazaar.example/viewitem.php?id=101&ref=search")
	second := ListingID("bazaar", "https://bazaar.example/viewitem.php?id=202")
	require.NotEqual(t, first, second)
	require.Equal(t, first, ListingID("bazaar", "https://bazaar.example/viewitem.php?ref=home&id=101"))
}

func TestCanonicalURL(t *testing.T) {
	require.Equal(t,
		"https://bazaar.example/viewitem.php?cat=7&id=101",
		CanonicalURL("https://Bazaar.example/viewitem.php?id=101&utm_campaign=x&cat=7#gallery"),
	)
	require.Equal(t, "https://www.ebay.com/itm/123", CanonicalURL("https://www.ebay.com/itm/123/?hash=item1c"))
}

func TestScore(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerOptions{Language: language.New(nil)})

	cases := []struct {
		name       string
		listing    Listing
		score      int
		level      Level
		species    []string
		indicators []Indicator
	}{
		{
			name:    "empty",
			listing: Listing{},
			score:   0,
			level:   LevelLow,
		},
		{
			name: "rhino horn with evasion",
			listing: Listing{
				Title:       "Genuine rhino horn carving",
				Description: "No questions asked.",
			},
			score:   100,
			level:   LevelCritical,
			species: []string{"Rhinoceros"},
			indicators: []Indicator{
				{Kind: KindSpecies, Term: "rhino", Matched: "rhino", Weight: 35},
				{Kind: KindProduct, Term: "rhino horn", Matched: "rhino horn", Weight: 30},
				{Kind: KindEvasion, Term: "no questions asked", Matched: "no questions asked", Weight: 15},
				{Kind: KindEvasion, Term: "genuine", Matched: "genuine", Weight: 5},
				{Kind: KindCooccurrence, Term: "rhino+rhino horn", Weight: 15},
			},
		},
		{
			name:    "toy",
			listing: Listing{Title: "Plush elephant toy"},
			score:   0,
			level:   LevelLow,
			species: []string{"African/Asian elephant"},
			indicators: []Indicator{
				{Kind: KindSpecies, Term: "elephant", Matched: "elephant", Weight: 35},
				{Kind: KindLegitimacy, Term: "plush", Matched: "plush", Weight: -30},
				{Kind: KindLegitimacy, Term: "toy", Matched: "toy", Weight: -30},
			},
		},
		{
			name:    "misspelled",
			listing: Listing{Title: "Antique ivorry bangle"},
			score:   18,
			level:   LevelLow,
			indicators: []Indicator{
				{Kind: KindProduct, Term: "ivory", Matched: "ivorry", Fuzzy: true, Weight: 18},
			},
		},
		{
			name:    "character substitution",
			listing: Listing{Title: "Pang0lin scales for sale"},
			score:   80,
			level:   LevelCritical,
			species: []string{"Pangolin"},
			indicators: []Indicator{
				{Kind: KindSpecies, Term: "pangolin", Matched: "pangolin", Weight: 35},
				{Kind: KindProduct, Term: "pangolin scales", Matched: "pangolin scales", Weight: 30},
				{Kind: KindCooccurrence, Term: "pangolin+pangolin scales", Weight: 15},
			},
		},
		{
			name:    "translated term",
			listing: Listing{Title: "出售象牙手镯"},
			score:   30,
			level:   LevelLow,
			indicators: []Indicator{
				{Kind: KindProduct, Term: "ivory", Matched: "象牙", Weight: 30},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := analyzer.Score(c.listing)
			require.Equal(t, c.score, got.Score)
			require.Equal(t, c.score, got.RuleScore)
			require.Equal(t, c.level, got.Level)
			require.Equal(t, c.species, got.Species)
			require.False(t, got.Reviewed)

			want := c.indicators
			if want == nil {
				want = []Indicator{}
			}
			if diff := cmp.Diff(want, got.Indicators); diff != "" {
				t.Fatalf("indicators (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScoreDetectsLanguage(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerOptions{})
	require.Equal(t, "zh", analyzer.Score(Listing{Title: "出售象牙手镯"}).Language)
	require.Equal(t, "en", analyzer.Score(Listing{}).Language)
}

type fakeReviewer struct {
	review Review
	err    error
	calls  int
}

func (f *fakeReviewer) Review(ctx context.Context, listing Listing, rule Assessment) (Review, error) {
	f.calls++
	return f.review, f.err
}

func TestAnalyzeWithReviewer(t *testing.T) {
	listing := Listing{
		ID:          "ebay-1",
		Title:       "Genuine rhino horn carving",
		Description: "No questions asked.",
	}

	reviewer := &fakeReviewer{review: Review{Score: 40, Rationale: "looks like resin"}}
	analyzer := NewAnalyzer(AnalyzerOptions{Reviewer: reviewer, ReviewMinScore: 40})
	got := analyzer.Analyze(context.Background(), listing)
	require.Equal(t, 1, reviewer.calls)
	require.True(t, got.Reviewed)
	require.Equal(t, 100, got.RuleScore)
	require.Equal(t, 70, got.Score)
	require.Equal(t, LevelHigh, got.Level)
	require.Equal(t, "looks like resin", got.Rationale)

	failing := &fakeReviewer{err: errors.New("rate limited")}
	analyzer = NewAnalyzer(AnalyzerOptions{Reviewer: failing})
	got = analyzer.Analyze(context.Background(), listing)
	require.Equal(t, 1, failing.calls)
	require.False(t, got.Reviewed)
	require.Equal(t, 100, got.Score)
	require.Equal(t, LevelCritical, got.Level)

	skipped := &fakeReviewer{review: Review{Score: 100}}
	analyzer = NewAnalyzer(AnalyzerOptions{Reviewer: skipped, ReviewMinScore: 40})
	got = analyzer.Analyze(context.Background(), Listing{Title: "Plush elephant toy"})
	require.Equal(t, 0, skipped.calls)
	require.Equal(t, 0, got.Score)
}

func TestParseReview(t *testing.T) {
	review, err := ParseReview("SCORE: 85\nREASON: Carved ivory sold with evasion language.")
	require.NoError(t, err)
	require.Equal(t, Review{Score: 85, Rationale: "Carved ivory sold with evasion language."}, review)

	review, err = ParseReview("**Score:** 120\n**Reason:** certain")
	require.NoError(t, err)
	require.Equal(t, 100, review.Score)
	require.Equal(t, "certain", review.Rationale)

	_, err = ParseReview("I cannot help with that.")
	require.Error(t, err)
}

func TestReviewPrompt(t *testing.T) {
	prompt := reviewPromptFor(
		Listing{Platform: "ebay", Title: "ivory bangle", Price: 120, Currency: "USD"},
		Assessment{RuleScore: 30, Level: LevelLow, Indicators: []Indicator{{Kind: KindProduct, Term: "ivory", Weight: 30}}},
	)
	require.Contains(t, prompt, "Title: ivory bangle")
	require.Contains(t, prompt, "Price: 120.00 USD")
	require.Contains(t, prompt, "product:ivory(+30)")
	require.Contains(t, prompt, "SCORE: <0-100>")
}
