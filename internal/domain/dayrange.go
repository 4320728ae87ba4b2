package domain

import "time"

// DayLayout is the canonical key format for calendar days.
const DayLayout = "2006-01-02"

// DayRange is one day-level OHLC bar for a ticker. Volume is optional
// (0 = unknown) and only feeds the volume-weight tiers.
type DayRange struct {
	Ticker string
	Day    string // yyyy-mm-dd
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// DayKey normalizes a timestamp to its canonical calendar-day key in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// DayOf parses a canonical day key back into a UTC midnight timestamp.
// Invalid keys yield the zero time.
func DayOf(day string) time.Time {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}
	}
	return t
}
