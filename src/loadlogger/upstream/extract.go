package upstream

import (
	"log"
	"strings"
	"time"

	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
)

// Upstream date labels look like "06/01/2024 9:00" (month/day/year
// hour:minute, no leading-zero guarantees).
const labelLayout = "1/2/2006 15:04"

// ParseLabel parses one chart label into a wall-clock time in the canonical
// zone. A failure only invalidates that label.
func ParseLabel(label string) (time.Time, error) {
	return time.ParseInLocation(labelLayout, label, timeutil.Zone)
}

// ExtractActual selects the series labeled "actual" (case-insensitive) and
// pairs each non-null value with its time label by index. Null values and
// unparsable labels are skipped, never fatal.
func ExtractActual(resp *AreaGridResponse) []LoadPoint {
	var actual *ChartSeries
	for i := range resp.ChartLineData {
		if strings.EqualFold(resp.ChartLineData[i].Label, "actual") {
			actual = &resp.ChartLineData[i]
			break
		}
	}
	if actual == nil {
		log.Printf("upstream: no actual series for area %d", resp.ID)
		return nil
	}

	points := make([]LoadPoint, 0, len(actual.Data))
	for i, v := range actual.Data {
		if v == nil || i >= len(resp.LineChartLabels) {
			continue
		}
		ts, err := ParseLabel(resp.LineChartLabels[i])
		if err != nil {
			log.Printf("upstream: skipping unparsable label %q for area %d", resp.LineChartLabels[i], resp.ID)
			continue
		}
		points = append(points, LoadPoint{Timestamp: ts, KW: *v})
	}
	return points
}
