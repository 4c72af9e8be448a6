package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/area", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Test Electric","abrev":"TST","selected":true}]`))
	})
	mux.HandleFunc("/areagrid/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Id": 1,
			"chartLineData": [
				{"label": "Forecast", "data": [110.0, 120.0]},
				{"label": "Actual", "data": [123.4, null]}
			],
			"lineChartLabels": ["06/01/2024 9:00", "06/01/2024 10:00"]
		}`))
	})
	mux.HandleFunc("/arealoadtable/1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Id": 1,
			"areaLoadData": [
				{"name": "North Sub", "kw": 1500.5, "kvar": 120.2, "pf": 0.98, "quality": true, "qualityNow": false},
				{"name": "South Sub", "kw": 900.0, "kvar": 80.0, "pf": 0.97}
			]
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFetches(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, 5*time.Second)
	ctx := context.Background()

	coops, err := c.Cooperatives(ctx)
	require.NoError(t, err)
	require.Len(t, coops, 1)
	require.Equal(t, uint32(1), coops[0].ID)
	require.Equal(t, "TST", coops[0].Abrev)

	grid, err := c.AreaGrid(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), grid.ID)
	require.Len(t, grid.ChartLineData, 2)
	require.Nil(t, grid.ChartLineData[1].Data[1])

	table, err := c.AreaSubstations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, table.AreaLoadData, 2)
	require.Equal(t, "North Sub", table.AreaLoadData[0].Name)
	// Omitted quality flags stay nil instead of defaulting to false.
	require.Nil(t, table.AreaLoadData[1].Quality)
	require.Nil(t, table.AreaLoadData[1].QualityNow)
}

func TestCheckConnectivity(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	require.True(t, NewClient(srv.URL, 5*time.Second).CheckConnectivity(ctx))

	srv.Close()
	require.False(t, NewClient(srv.URL, time.Second).CheckConnectivity(ctx))
}

func TestGetNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second)
	_, err := c.Cooperatives(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 502")
}
