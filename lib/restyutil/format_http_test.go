package restyutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("User-Agent", "wildguard")
	headers.Add("Accept", "text/html")
	headers.Add("Accept", "application/json")

	require.Equal(
		t,
		"Accept: text/html\nAccept: application/json\nUser-Agent: wildguard",
		formatHeaders(headers),
	)
	require.Equal(t, "", formatHeaders(http.Header{}))
}
