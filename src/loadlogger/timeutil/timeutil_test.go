package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFloorToFiveMinutes(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2024, 6, 1, 9, 7, 42, 0, Zone), time.Date(2024, 6, 1, 9, 5, 0, 0, Zone)},
		{time.Date(2024, 6, 1, 9, 12, 0, 0, Zone), time.Date(2024, 6, 1, 9, 10, 0, 0, Zone)},
		{time.Date(2024, 6, 1, 9, 0, 0, 0, Zone), time.Date(2024, 6, 1, 9, 0, 0, 0, Zone)},
		{time.Date(2024, 6, 1, 9, 4, 59, 999, Zone), time.Date(2024, 6, 1, 9, 0, 0, 0, Zone)},
		{time.Date(2024, 12, 31, 23, 59, 1, 0, Zone), time.Date(2024, 12, 31, 23, 55, 0, 0, Zone)},
	}

	for _, tc := range cases {
		require.True(t, FloorToFiveMinutes(tc.in).Equal(tc.want),
			"floor(%s) = %s, want %s", tc.in, FloorToFiveMinutes(tc.in), tc.want)
	}
}

func TestNowUsesCanonicalZone(t *testing.T) {
	require.Equal(t, Zone, Now().Location())
}

func TestSetZoneRejectsUnknownName(t *testing.T) {
	before := Zone
	SetZone("Not/AZone")
	require.Equal(t, before, Zone)
}
