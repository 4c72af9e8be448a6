package upstream

import "time"

// Wire shapes exactly as the upstream API serves them, field casing
// included.

type Cooperative struct {
	ID       uint32 `json:"id"`
	Name     string `json:"name"`
	Abrev    string `json:"abrev"`
	Selected bool   `json:"selected"`
}

// ChartSeries is one labeled series from the area chart endpoint. Values are
// pointers because upstream pads series with nulls.
type ChartSeries struct {
	Label string     `json:"label"`
	Data  []*float64 `json:"data"`
}

// AreaGridResponse bundles several series (forecast, actual, ...) sharing
// one array of time labels.
type AreaGridResponse struct {
	ID              uint32        `json:"Id"`
	ChartLineData   []ChartSeries `json:"chartLineData"`
	LineChartLabels []string      `json:"lineChartLabels"`
}

type Substation struct {
	Name       string  `json:"name"`
	KW         float64 `json:"kw"`
	KVar       float64 `json:"kvar"`
	PF         float64 `json:"pf"`
	Quality    *bool   `json:"quality"`
	QualityNow *bool   `json:"qualityNow"`
}

// AreaLoadTableResponse is the point-in-time substation table for one area.
// Upstream attaches no timestamp; the importer stamps rows with the shared
// 5-minute mark of the poll cycle.
type AreaLoadTableResponse struct {
	ID           uint32       `json:"Id"`
	AreaLoadData []Substation `json:"areaLoadData"`
}

// LoadPoint is one parsed (timestamp, kW) pair from the actual series.
type LoadPoint struct {
	Timestamp time.Time
	KW        float64
}
