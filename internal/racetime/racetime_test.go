package racetime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSmartDigits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		m, s, f int
	}{
		{"704", 7, 4, 0},
		{"7", 7, 0, 0},
		{"1150123", 11, 50, 123},
		{"11150123", 111, 50, 123},
		{"652500", 6, 52, 500},
	}
	for _, tc := range cases {
		m, s, f, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.m, m, tc.in)
		require.Equal(t, tc.s, s, tc.in)
		require.Equal(t, tc.f, f, tc.in)
	}
}

func TestParseFormatted(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		m, s, f int
	}{
		{"7:04.123", 7, 4, 123},
		{"7:04", 7, 4, 0},
		{"7:04.1", 7, 4, 100},
		{"18:47.000", 18, 47, 0},
		{"44.5", 0, 44, 500},
	}
	for _, tc := range cases {
		m, s, f, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.m, m, tc.in)
		require.Equal(t, tc.s, s, tc.in)
		require.Equal(t, tc.f, f, tc.in)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "abc", "7:61", "761"} {
		_, _, _, err := Parse(in)
		require.Error(t, err, in)
	}
}

func TestToSecondsAndFormatRoundTrip(t *testing.T) {
	t.Parallel()

	secs, err := ToSeconds("7:04.123")
	require.NoError(t, err)
	require.InDelta(t, 424.123, secs, 0.0001)
	require.Equal(t, "07:04.123", Format(secs))
}

func TestFormatMargin(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Winner", FormatMargin(0))
	require.Equal(t, "+00:03.250", FormatMargin(3.25))
}
