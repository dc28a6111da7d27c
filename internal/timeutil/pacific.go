package timeutil

import (
	"time"
)

// Pacific is the crew-facing timezone. Schedules and day boundaries are
// reckoned here regardless of where the server runs.
var Pacific *time.Location

func init() {
	var err error
	Pacific, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		// Fallback: fixed PST if the tzdata is unavailable
		Pacific = time.FixedZone("PST", -8*60*60)
	}
}

// Now returns the current time in Pacific
func Now() time.Time {
	return time.Now().In(Pacific)
}

// ToPacific converts any time to Pacific
func ToPacific(t time.Time) time.Time {
	return t.In(Pacific)
}

// ParseInPacific parses a time string and returns it in Pacific
func ParseInPacific(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, Pacific)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// StartOfDay returns the start of day (00:00:00) in Pacific for the given time
func StartOfDay(t time.Time) time.Time {
	p := t.In(Pacific)
	return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, Pacific)
}

// EndOfDay returns the end of day (23:59:59) in Pacific for the given time
func EndOfDay(t time.Time) time.Time {
	p := t.In(Pacific)
	return time.Date(p.Year(), p.Month(), p.Day(), 23, 59, 59, 999999999, Pacific)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
