package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		text     string
		amount   float64
		currency string
		ok       bool
	}{
		{text: "$120.00", amount: 120, currency: "USD", ok: true},
		{text: "US $1,250.50", amount: 1250.5, currency: "USD", ok: true},
		{text: "1.250,00 €", amount: 1250, currency: "EUR", ok: true},
		{text: "€ 45,5", amount: 45.5, currency: "EUR", ok: true},
		{text: "R$ 3.400", amount: 3400, currency: "BRL", ok: true},
		{text: "£30", amount: 30, currency: "GBP", ok: true},
		{text: "KES 15 000", amount: 15000, currency: "KES", ok: true},
		{text: "2 500 000 ₫", amount: 2500000, currency: "VND", ok: true},
		{text: "Free", amount: 0, currency: "", ok: false},
		{text: "", amount: 0, currency: "", ok: false},
	}

	for _, test := range cases {
		amount, currency, ok := ParsePrice(test.text)
		require.Equal(t, test.ok, ok, test.text)
		require.InDelta(t, test.amount, amount, 0.001, test.text)
		require.Equal(t, test.currency, currency, test.text)
	}
}

func TestTokenize(t *testing.T) {
	require.Equal(
		t,
		[]string{"rare", "rhino-horn", "cup", "100", "genuine"},
		Tokenize("RARE rhino-horn cup!! (100% genuine)"),
	)
	require.Empty(t, Tokenize("  ... "))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("  Tiger Bone  Wine", []string{"tigerbone"}))
	require.False(t, MatchName("bamboo", []string{"tigerbone"}))
}
