package threat

import (
	"strings"

	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/language"
	"github.com/ParkerCase/wildlife-conservation-tracker-sub003/lib/textutil"

	"github.com/antzucaro/matchr"
)

// document is listing text prepared for matching.
type document struct {
	folded string
	tokens []string
}

func newDocument(text string) document {
	folded := deleet(language.Fold(text))
	return document{
		folded: folded,
		tokens: textutil.Tokenize(folded),
	}
}

var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'@': 'a',
	'$': 's',
}

func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// deleet undoes character substitutions sellers use to slip past keyword
// filters ("1vory", "pang0lin"), only next to letters so prices survive.
func deleet(s string) string {
	runes := []rune(s)
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = r
		replacement, ok := leet[r]
		if !ok {
			continue
		}
		prevLetter := i > 0 && isLetter(runes[i-1])
		nextLetter := i+1 < len(runes) && isLetter(runes[i+1])
		if prevLetter || nextLetter {
			out[i] = replacement
		}
	}
	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

func tokenEquals(token, word string) bool {
	return token == word || token == word+"s" || token == word+"es"
}

// contains reports whether the phrase occurs as whole words. Phrases in
// scripts without spaces (chinese, thai) fall back to substring search.
func (d document) contains(phrase string) bool {
	phrase = language.Fold(phrase)
	if phrase == "" {
		return false
	}
	if !isASCII(phrase) {
		return strings.Contains(d.folded, phrase)
	}

	words := textutil.Tokenize(phrase)
	if len(words) == 0 {
		return false
	}
	for i := 0; i+len(words) <= len(d.tokens); i++ {
		matched := true
		for j, w := range words {
			if !tokenEquals(d.tokens[i+j], w) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// fuzzy finds a token that is a likely misspelling of a single word term.
// Tokens must share the first two letters with the term, otherwise common
// words like "sales" land next to "scales".
func (d document) fuzzy(term string, threshold float64) (string, bool) {
	term = language.Fold(term)
	if len(term) < 5 || strings.Contains(term, " ") || !isASCII(term) {
		return "", false
	}
	for _, token := range d.tokens {
		if len(token) < 5 || tokenEquals(token, term) || token[:2] != term[:2] {
			continue
		}
		if matchr.JaroWinkler(token, term, false) >= threshold {
			return token, true
		}
	}
	return "", false
}
