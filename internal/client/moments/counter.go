package moments

import (
	"fmt"
	"time"
)

// CounterStart is the day the running counter counts from.
const CounterStart = "2023-01-01"

// Elapsed is the running "time together" counter. Months are 30 days and
// years 365 days, so the fields do not add up to a calendar date.
type Elapsed struct {
	Years, Months, Days, Hours, Minutes, Seconds int64
}

// Since splits now-start into counter units.
func Since(start, now time.Time) Elapsed {
	ms := now.Sub(start).Milliseconds()
	const (
		second = int64(1000)
		minute = 60 * second
		hour   = 60 * minute
		day    = 24 * hour
		month  = 30 * day
		year   = 365 * day
	)
	return Elapsed{
		Years:   floorDiv(ms, year),
		Months:  floorDiv(ms, month) % 12,
		Days:    floorDiv(ms, day) % 30,
		Hours:   floorDiv(ms, hour) % 24,
		Minutes: floorDiv(ms, minute) % 60,
		Seconds: floorDiv(ms, second) % 60,
	}
}

// CounterSince parses a YYYY-MM-DD start date as UTC midnight and returns
// the counter at now.
func CounterSince(startDate string, now time.Time) (Elapsed, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return Elapsed{}, fmt.Errorf("parse start date: %w", err)
	}
	return Since(start, now), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
