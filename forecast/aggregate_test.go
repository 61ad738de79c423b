package forecast

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherwatch/models"
)

func entryAt(t time.Time, min, max float64, desc string) models.ForecastEntry {
	return models.ForecastEntry{
		Timestamp:   t,
		TempMin:     min,
		TempMax:     max,
		Temperature: (min + max) / 2,
		Humidity:    50,
		Condition:   models.Condition{Description: desc, Icon: desc + "-icon"},
	}
}

// feed returns n 3-hourly entries starting at start
func feed(start time.Time, n int) []models.ForecastEntry {
	out := make([]models.ForecastEntry, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * 3 * time.Hour)
		out = append(out, entryAt(ts, float64(10+i%8), float64(15+i%8), ts.Format("15")))
	}
	return out
}

func TestAggregateEmpty(t *testing.T) {
	days := AggregateByDay(nil, Options{Location: time.UTC})
	assert.NotNil(t, days)
	assert.Empty(t, days)
}

func TestAggregateFoldsMinMaxAndKeepsFirst(t *testing.T) {
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	entries := []models.ForecastEntry{
		entryAt(day.Add(9*time.Hour), 14.2, 16.0, "morning"),
		entryAt(day.Add(12*time.Hour), 17.5, 21.3, "noon"),
		entryAt(day.Add(21*time.Hour), 11.9, 13.0, "night"),
		entryAt(day.Add(27*time.Hour), 10.0, 12.0, "next"),
	}

	days := AggregateByDay(entries, Options{Location: time.UTC})
	require.Len(t, days, 2)

	first := days[0]
	assert.Equal(t, "2024-06-05", first.DateKey)
	assert.Equal(t, day, first.Date)
	assert.Equal(t, 11.9, first.TempMin)
	assert.Equal(t, 21.3, first.TempMax)
	assert.Equal(t, "morning", first.Condition.Description)
	assert.Equal(t, "morning-icon", first.Condition.Icon)
	assert.Equal(t, 3, first.Samples)

	assert.Equal(t, "2024-06-06", days[1].DateKey)
	assert.Equal(t, 1, days[1].Samples)
}

func TestAggregateNoRounding(t *testing.T) {
	day := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	days := AggregateByDay([]models.ForecastEntry{
		entryAt(day, 0.123456789, 1.987654321, "a"),
		entryAt(day.Add(time.Hour), 0.123456788, 1.987654322, "b"),
	}, Options{Location: time.UTC})

	require.Len(t, days, 1)
	assert.Equal(t, 0.123456788, days[0].TempMin)
	assert.Equal(t, 1.987654322, days[0].TempMax)
}

func TestAggregateCap(t *testing.T) {
	start := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	entries := feed(start, 8*8) // eight full days

	assert.Len(t, AggregateByDay(entries, Options{Location: time.UTC}), 6)
	assert.Len(t, AggregateByDay(entries, Options{Location: time.UTC, Days: 5}), 5)
}

func TestAggregateUsesLocationForDateKey(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-06-05 20:00 UTC is 2024-06-06 05:00 in Tokyo
	entries := []models.ForecastEntry{
		entryAt(time.Date(2024, 6, 5, 14, 0, 0, 0, time.UTC), 1, 2, "a"),
		entryAt(time.Date(2024, 6, 5, 20, 0, 0, 0, time.UTC), 3, 4, "b"),
	}

	utc := AggregateByDay(entries, Options{Location: time.UTC})
	assert.Len(t, utc, 1)

	jst := AggregateByDay(entries, Options{Location: tokyo})
	require.Len(t, jst, 2)
	assert.Equal(t, "2024-06-05", jst[0].DateKey)
	assert.Equal(t, "2024-06-06", jst[1].DateKey)
	assert.Equal(t, tokyo, jst[1].Date.Location())
}

func TestAggregateNearestNoon(t *testing.T) {
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	entries := []models.ForecastEntry{
		entryAt(day.Add(3*time.Hour), 10, 12, "03"),
		entryAt(day.Add(9*time.Hour), 12, 15, "09"),
		entryAt(day.Add(12*time.Hour), 15, 19, "12"),
		entryAt(day.Add(15*time.Hour), 14, 18, "15"),
	}

	first := AggregateByDay(entries, Options{Location: time.UTC})
	noon := AggregateByDay(entries, Options{Location: time.UTC, Sample: SampleNearestNoon})

	require.Len(t, noon, 1)
	assert.Equal(t, "03", first[0].Condition.Description)
	assert.Equal(t, "12", noon[0].Condition.Description)
	// the policy never changes the folded range
	assert.Equal(t, first[0].TempMin, noon[0].TempMin)
	assert.Equal(t, first[0].TempMax, noon[0].TempMax)
}

func TestParseSamplePolicy(t *testing.T) {
	assert.Equal(t, SampleNearestNoon, ParseSamplePolicy("noon"))
	assert.Equal(t, SampleFirst, ParseSamplePolicy("first"))
	assert.Equal(t, SampleFirst, ParseSamplePolicy(""))
}

// Randomized checks of the length bound, the distinct-date property and the
// order independence of the folded extremes.
func TestAggregateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(45)
		entries := make([]models.ForecastEntry, 0, n)
		for i := 0; i < n; i++ {
			ts := start.Add(time.Duration(rng.Intn(7*24)) * time.Hour)
			lo := rng.Float64()*40 - 10
			entries = append(entries, entryAt(ts, lo, lo+rng.Float64()*8, "x"))
		}

		distinct := map[string]bool{}
		wantMin := map[string]float64{}
		wantMax := map[string]float64{}
		for _, e := range entries {
			k := DateKey(e.Timestamp, time.UTC)
			if !distinct[k] {
				wantMin[k], wantMax[k] = e.TempMin, e.TempMax
			}
			distinct[k] = true
			if e.TempMin < wantMin[k] {
				wantMin[k] = e.TempMin
			}
			if e.TempMax > wantMax[k] {
				wantMax[k] = e.TempMax
			}
		}

		days := AggregateByDay(entries, Options{Location: time.UTC})
		assert.LessOrEqual(t, len(days), len(entries))
		assert.LessOrEqual(t, len(days), min(len(distinct), DefaultDays))

		seen := map[string]bool{}
		for _, d := range days {
			assert.False(t, seen[d.DateKey], "duplicate date %s", d.DateKey)
			seen[d.DateKey] = true
			assert.Equal(t, wantMin[d.DateKey], d.TempMin)
			assert.Equal(t, wantMax[d.DateKey], d.TempMax)
		}

		// shuffling changes which days come first but not any day's extremes
		shuffled := append([]models.ForecastEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for _, d := range AggregateByDay(shuffled, Options{Location: time.UTC, Days: 100}) {
			assert.Equal(t, wantMin[d.DateKey], d.TempMin)
			assert.Equal(t, wantMax[d.DateKey], d.TempMax)
		}
	}
}
