package language

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Processor expands search keywords into the languages a monitor covers
// and normalizes listing text before matching.
type Processor struct {
	languages  []string
	dictionary map[string]map[string][]string
}

// New returns a processor for the given language codes, an empty list
// enables every language in the dictionary.
func New(languages []string) *Processor {
	return &Processor{
		languages:  languages,
		dictionary: builtinDictionary,
	}
}

func (p *Processor) Languages() []string {
	if len(p.languages) > 0 {
		return p.languages
	}
	seen := map[string]struct{}{}
	var out []string
	for _, translations := range p.dictionary {
		for lang := range translations {
			if _, ok := seen[lang]; ok {
				continue
			}
			seen[lang] = struct{}{}
			out = append(out, lang)
		}
	}
	slices.Sort(out)
	return out
}

func (p *Processor) enabled(lang string) bool {
	return len(p.languages) == 0 || slices.Contains(p.languages, lang)
}

// Expand returns the keyword followed by its translations, duplicates
// removed. Unknown keywords expand to themselves.
func (p *Processor) Expand(keyword string) []string {
	out := []string{keyword}
	translations, ok := p.dictionary[strings.ToLower(strings.TrimSpace(keyword))]
	if !ok {
		return out
	}

	langs := make([]string, 0, len(translations))
	for lang := range translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)

	for _, lang := range langs {
		if !p.enabled(lang) {
			continue
		}
		for _, term := range translations[lang] {
			if !slices.Contains(out, term) {
				out = append(out, term)
			}
		}
	}
	return out
}

func (p *Processor) ExpandAll(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		for _, term := range p.Expand(k) {
			if !slices.Contains(out, term) {
				out = append(out, term)
			}
		}
	}
	return out
}

// Fold lowercases text, strips diacritics and collapses whitespace so
// "Corne de Rhinocéros" and "corne de rhinoceros" compare equal.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Detect makes a best effort guess at the language of text, "en" when
// nothing points elsewhere.
func (p *Processor) Detect(text string) string {
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			return "zh"
		case unicode.Is(unicode.Thai, r):
			return "th"
		}
	}
	if strings.ContainsAny(text, "ăắằẳẵặơờớởỡợưừứửữựđĐ") {
		return "vi"
	}

	folded := Fold(text)
	hits := map[string]int{}
	for _, translations := range p.dictionary {
		for lang, terms := range translations {
			for _, term := range terms {
				if strings.Contains(folded, Fold(term)) {
					hits[lang]++
				}
			}
		}
	}

	best := "en"
	bestHits := 0
	for lang, n := range hits {
		if n > bestHits || n == bestHits && n > 0 && lang < best {
			best = lang
			bestHits = n
		}
	}
	return best
}
