package timeutil

import (
	"log"
	"time"
)

// Zone is the canonical timezone for every persisted timestamp. The upstream
// service and its operators reason in US Central wall-clock time, so stored
// values are naive Central time, never UTC.
var Zone = mustLoadLocation("America/Chicago")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Fatalf("timeutil: load location %s: %v", name, err)
	}
	return loc
}

// SetZone overrides the canonical zone. Called once at startup, before any
// importer or scheduler activity.
func SetZone(name string) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("timeutil: unknown timezone %q, keeping %s", name, Zone)
		return
	}
	Zone = loc
}

// Now returns the current wall-clock time in the canonical zone.
func Now() time.Time {
	return time.Now().In(Zone)
}

// FloorToFiveMinutes drops seconds and rounds the minute down to the nearest
// multiple of five: 9:07:42 -> 9:05:00.
func FloorToFiveMinutes(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%5, 0, 0, t.Location())
}
