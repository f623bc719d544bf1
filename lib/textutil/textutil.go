package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// Tokenize splits lowercased text into words, punctuation is dropped.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '-' || r == '\'' || isWordRune(r))
	})
}

func isWordRune(r rune) bool {
	return r >= '0' && r <= '9' ||
		r >= 'a' && r <= 'z' ||
		r > 0x7f
}

// checked in order, longer prefixes must come first
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"R$", "BRL"},
	{"US $", "USD"},
	{"US$", "USD"},
	{"C $", "CAD"},
	{"C$", "CAD"},
	{"AU $", "AUD"},
	{"A$", "AUD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"₫", "VND"},
	{"฿", "THB"},
	{"Rp", "IDR"},
	{"KSh", "KES"},
}

var currencyCode = regexp.MustCompile(`\b([A-Z]{3})\b`)
var priceNumber = regexp.MustCompile(`\d[\d.,\s]*`)

// ParsePrice extracts an amount and ISO currency code from marketplace
// price text like "US $1,250.00" or "1.250,00 €". The currency is empty
// when it can't be determined, ok is false when no number was found.
func ParsePrice(text string) (amount float64, currency string, ok bool) {
	text = strings.TrimSpace(text)
	for _, c := range currencySymbols {
		if strings.Contains(text, c.symbol) {
			currency = c.code
			break
		}
	}
	if currency == "" {
		if m := currencyCode.FindStringSubmatch(text); len(m) == 2 {
			currency = m[1]
		}
	}

	raw := priceNumber.FindString(text)
	if raw == "" {
		return 0, currency, false
	}
	raw = strings.Join(strings.Fields(raw), "")
	raw = strings.TrimRight(raw, ".,")

	value, err := strconv.ParseFloat(normalizeSeparators(raw), 64)
	if err != nil {
		return 0, currency, false
	}
	return value, currency, true
}

func normalizeSeparators(raw string) string {
	lastDot := strings.LastIndex(raw, ".")
	lastComma := strings.LastIndex(raw, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// whichever comes last is the decimal separator
		if lastComma > lastDot {
			raw = strings.ReplaceAll(raw, ".", "")
			return strings.Replace(raw, ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case lastComma >= 0:
		if strings.Count(raw, ",") == 1 && len(raw)-lastComma-1 != 3 {
			return strings.Replace(raw, ",", ".", 1)
		}
		return strings.ReplaceAll(raw, ",", "")
	case lastDot >= 0:
		if strings.Count(raw, ".") > 1 || len(raw)-lastDot-1 == 3 {
			return strings.ReplaceAll(raw, ".", "")
		}
		return raw
	}
	return raw
}
