package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		layout   string
		value    string
		expected time.Time
	}{
		{
			layout:   "2006-01-02 15:04:05",
			value:    "2024-01-15 14:30:00",
			expected: time.Date(2024, time.January, 15, 11, 30, 0, 0, time.UTC),
		},
		{
			layout:   "02.01.2006 15:04",
			value:    "01.01.2024 02:00",
			expected: time.Date(2023, time.December, 31, 23, 0, 0, 0, time.UTC),
		},
	}

	for _, test := range cases {
		parsed, err := Parse(test.layout, test.value)
		require.NoError(t, err)
		require.True(t, test.expected.Equal(parsed), "%s != %s", test.expected, parsed)
	}
}

func TestNow(t *testing.T) {
	_, offset := Now().Zone()
	require.Equal(t, 3*60*60, offset)
}
