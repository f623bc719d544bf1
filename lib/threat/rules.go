package threat

// Term is a phrase the analyzer looks for. Species terms carry the
// species name they identify.
type Term struct {
	Text    string
	Weight  int
	Species string
}

type Ruleset struct {
	Species    []Term
	Products   []Term
	Evasion    []Term
	Legitimacy []Term
	// added once when a species and a product term both match
	CooccurrenceBonus int
	// minimum Jaro-Winkler similarity for a misspelled token to count
	FuzzyThreshold float64
	// fraction of a term's weight awarded to a fuzzy match
	FuzzyWeight float64
}

const (
	citesAppendixI  = 35
	citesAppendixII = 20
)

func DefaultRuleset() Ruleset {
	return Ruleset{
		Species: []Term{
			{Text: "elephant", Weight: citesAppendixI, Species: "African/Asian elephant"},
			{Text: "rhino", Weight: citesAppendixI, Species: "Rhinoceros"},
			{Text: "rhinoceros", Weight: citesAppendixI, Species: "Rhinoceros"},
			{Text: "pangolin", Weight: citesAppendixI, Species: "Pangolin"},
			{Text: "tiger", Weight: citesAppendixI, Species: "Tiger"},
			{Text: "leopard", Weight: citesAppendixI, Species: "Leopard"},
			{Text: "snow leopard", Weight: citesAppendixI, Species: "Snow leopard"},
			{Text: "cheetah", Weight: citesAppendixI, Species: "Cheetah"},
			{Text: "hawksbill", Weight: citesAppendixI, Species: "Hawksbill turtle"},
			{Text: "helmeted hornbill", Weight: citesAppendixI, Species: "Helmeted hornbill"},
			{Text: "orangutan", Weight: citesAppendixI, Species: "Orangutan"},
			{Text: "slow loris", Weight: citesAppendixI, Species: "Slow loris"},
			{Text: "sun bear", Weight: citesAppendixI, Species: "Sun bear"},
			{Text: "african grey", Weight: citesAppendixI, Species: "African grey parrot"},
			{Text: "totoaba", Weight: citesAppendixI, Species: "Totoaba"},
			{Text: "shark", Weight: citesAppendixII, Species: "Shark"},
			{Text: "seahorse", Weight: citesAppendixII, Species: "Seahorse"},
			{Text: "python", Weight: citesAppendixII, Species: "Python"},
			{Text: "tortoise", Weight: citesAppendixII, Species: "Tortoise"},
			{Text: "saiga", Weight: citesAppendixII, Species: "Saiga antelope"},
			{Text: "black coral", Weight: citesAppendixII, Species: "Black coral"},
			{Text: "bear", Weight: citesAppendixII, Species: "Bear"},
		},
		Products: []Term{
			{Text: "ivory", Weight: 30},
			{Text: "tusk", Weight: 25},
			{Text: "rhino horn", Weight: 30},
			{Text: "horn", Weight: 15},
			{Text: "pangolin scales", Weight: 30},
			{Text: "scales", Weight: 10},
			{Text: "tiger bone", Weight: 30},
			{Text: "bone", Weight: 10},
			{Text: "bear bile", Weight: 30},
			{Text: "bile", Weight: 20},
			{Text: "shark fin", Weight: 25},
			{Text: "turtle shell", Weight: 20},
			{Text: "casque", Weight: 25},
			{Text: "skin", Weight: 15},
			{Text: "pelt", Weight: 15},
			{Text: "hide", Weight: 10},
			{Text: "claw", Weight: 15},
			{Text: "fang", Weight: 10},
			{Text: "teeth", Weight: 10},
			{Text: "taxidermy", Weight: 10},
			{Text: "live parrot", Weight: 20},
		},
		Evasion: []Term{
			{Text: "no questions asked", Weight: 15},
			{Text: "discreet shipping", Weight: 15},
			{Text: "discreet packaging", Weight: 15},
			{Text: "ship discreetly", Weight: 15},
			{Text: "hard to find", Weight: 5},
			{Text: "white gold", Weight: 15},
			{Text: "ox bone", Weight: 15},
			{Text: "bovine bone", Weight: 10},
			{Text: "pre-ban", Weight: 15},
			{Text: "old stock", Weight: 5},
			{Text: "no paperwork", Weight: 15},
			{Text: "dm for price", Weight: 10},
			{Text: "whatsapp", Weight: 5},
			{Text: "telegram", Weight: 5},
			{Text: "cash only", Weight: 5},
			{Text: "genuine", Weight: 5},
		},
		Legitimacy: []Term{
			{Text: "replica", Weight: -25},
			{Text: "faux", Weight: -25},
			{Text: "fake", Weight: -20},
			{Text: "imitation", Weight: -25},
			{Text: "synthetic", Weight: -20},
			{Text: "resin", Weight: -20},
			{Text: "plastic", Weight: -20},
			{Text: "plush", Weight: -30},
			{Text: "toy", Weight: -30},
			{Text: "vegan", Weight: -25},
			{Text: "poster", Weight: -30},
			{Text: "print", Weight: -15},
			{Text: "t-shirt", Weight: -30},
			{Text: "sticker", Weight: -30},
			{Text: "costume", Weight: -25},
			{Text: "cites permit", Weight: -15},
		},
		CooccurrenceBonus: 15,
		FuzzyThreshold:    0.92,
		FuzzyWeight:       0.6,
	}
}
