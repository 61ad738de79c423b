// Package forecast reduces the 3-hour forecast feed into daily summaries.
package forecast

import (
	"math"
	"time"

	"weatherwatch/models"
)

const (
	// DefaultDays is the number of day summaries kept
	DefaultDays = 6

	dateKeyLayout = "2006-01-02"
)

// SamplePolicy selects which raw entry supplies a day's qualitative fields
// (condition, humidity, pressure, wind, visibility, precipitation).
type SamplePolicy int

const (
	// SampleFirst keeps the first entry seen for the date
	SampleFirst SamplePolicy = iota
	// SampleNearestNoon keeps the entry closest to 12:00 local time; ties keep the earlier entry
	SampleNearestNoon
)

// ParseSamplePolicy maps "first" and "noon" to a policy. Anything else is SampleFirst.
func ParseSamplePolicy(s string) SamplePolicy {
	if s == "noon" {
		return SampleNearestNoon
	}
	return SampleFirst
}

// Options controls AggregateByDay
type Options struct {
	Days     int            // maximum number of days returned; <= 0 means DefaultDays
	Location *time.Location // zone used to derive calendar dates; nil means time.Local
	Sample   SamplePolicy
}

// DateKey returns the calendar date of t in loc
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateKeyLayout)
}

// daySet is an ordered mapping from date key to day aggregate. days keeps
// first-seen order and index maps a date key to its position in days.
type daySet struct {
	index map[string]int
	days  []models.ForecastDay
	// distance from noon of the entry currently supplying each day's qualitative fields
	noonDist []time.Duration
}

func newDaySet(capacity int) *daySet {
	return &daySet{
		index: make(map[string]int, capacity),
	}
}

// fold merges one entry into the set. A new date key seeds a day from the entry.
// An existing key only widens TempMin/TempMax, unless the sample policy elects
// the entry as the day's new representative.
func (s *daySet) fold(entry models.ForecastEntry, loc *time.Location, policy SamplePolicy) {
	local := entry.Timestamp.In(loc)
	key := local.Format(dateKeyLayout)
	dist := distanceFromNoon(local)

	i, ok := s.index[key]
	if !ok {
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		day := models.ForecastDay{DateKey: key, Date: midnight, TempMin: entry.TempMin, TempMax: entry.TempMax}
		applySample(&day, entry)
		day.Samples = 1

		s.index[key] = len(s.days)
		s.days = append(s.days, day)
		s.noonDist = append(s.noonDist, dist)
		return
	}

	day := &s.days[i]
	day.TempMin = math.Min(day.TempMin, entry.TempMin)
	day.TempMax = math.Max(day.TempMax, entry.TempMax)
	day.Samples++

	if policy == SampleNearestNoon && dist < s.noonDist[i] {
		applySample(day, entry)
		s.noonDist[i] = dist
	}
}

func applySample(day *models.ForecastDay, entry models.ForecastEntry) {
	day.Humidity = entry.Humidity
	day.Pressure = entry.Pressure
	day.WindSpeed = entry.WindSpeed
	day.WindDeg = entry.WindDeg
	day.Visibility = entry.Visibility
	day.Precipitation = entry.Precipitation
	day.Condition = entry.Condition
}

func distanceFromNoon(t time.Time) time.Duration {
	noon := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	d := t.Sub(noon)
	if d < 0 {
		d = -d
	}
	return d
}

// AggregateByDay groups entries by calendar date in input order and returns at
// most opts.Days summaries in first-seen order. Empty input yields an empty slice.
// No rounding is applied.
func AggregateByDay(entries []models.ForecastEntry, opts Options) []models.ForecastDay {
	limit := opts.Days
	if limit <= 0 {
		limit = DefaultDays
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	set := newDaySet(limit)
	for _, entry := range entries {
		set.fold(entry, loc, opts.Sample)
	}

	if len(set.days) > limit {
		return set.days[:limit]
	}
	if set.days == nil {
		return []models.ForecastDay{}
	}
	return set.days
}
