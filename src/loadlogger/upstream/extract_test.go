package upstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
)

func f(v float64) *float64 { return &v }

func TestParseLabel(t *testing.T) {
	ts, err := ParseLabel("06/01/2024 9:00")
	require.NoError(t, err)
	require.True(t, ts.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, timeutil.Zone)))

	// No leading-zero guarantee upstream.
	ts, err = ParseLabel("6/1/2024 14:30")
	require.NoError(t, err)
	require.True(t, ts.Equal(time.Date(2024, 6, 1, 14, 30, 0, 0, timeutil.Zone)))

	_, err = ParseLabel("bad")
	require.Error(t, err)

	_, err = ParseLabel("2024-06-01 09:00")
	require.Error(t, err)
}

func TestExtractActualPicksActualSeries(t *testing.T) {
	resp := &AreaGridResponse{
		ID: 1,
		ChartLineData: []ChartSeries{
			{Label: "Forecast", Data: []*float64{f(100), f(200)}},
			{Label: "ACTUAL", Data: []*float64{f(123.4), f(130)}},
		},
		LineChartLabels: []string{"06/01/2024 9:00", "06/01/2024 10:00"},
	}

	points := ExtractActual(resp)
	require.Len(t, points, 2)
	require.Equal(t, 123.4, points[0].KW)
	require.True(t, points[0].Timestamp.Equal(time.Date(2024, 6, 1, 9, 0, 0, 0, timeutil.Zone)))
}

func TestExtractActualSkipsNullsAndBadLabels(t *testing.T) {
	resp := &AreaGridResponse{
		ID: 1,
		ChartLineData: []ChartSeries{
			{Label: "Actual", Data: []*float64{f(123.4), nil, f(99), f(140)}},
		},
		// Third label is unparsable, fourth is missing entirely.
		LineChartLabels: []string{"06/01/2024 9:00", "06/01/2024 10:00", "bad"},
	}

	points := ExtractActual(resp)
	require.Len(t, points, 1)
	require.Equal(t, 123.4, points[0].KW)
}

func TestExtractActualNoActualSeries(t *testing.T) {
	resp := &AreaGridResponse{
		ID:              7,
		ChartLineData:   []ChartSeries{{Label: "Forecast", Data: []*float64{f(1)}}},
		LineChartLabels: []string{"06/01/2024 9:00"},
	}
	require.Empty(t, ExtractActual(resp))
}
