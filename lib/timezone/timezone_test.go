package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	cases := []struct {
		now      time.Time
		expected time.Time
	}{
		{
			now:      time.Date(2024, time.August, 26, 13, 45, 0, 0, time.UTC),
			expected: time.Date(2024, time.August, 26, 0, 0, 0, 0, time.UTC),
		},
		{
			now:      time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			expected: time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, test := range cases {
		require.Equal(t, test.expected, StartOfDay(test.now))
	}
}

func TestSetLocation(t *testing.T) {
	defer func() { Location = time.UTC }()

	require.NoError(t, SetLocation(""))
	require.Equal(t, time.UTC, Location)
	require.Error(t, SetLocation("Not/AZone"))
}
