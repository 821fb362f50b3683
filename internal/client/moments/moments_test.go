package moments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Label
	}
	return out
}

func TestTimeline_MidYear(t *testing.T) {
	now := time.Date(2024, time.June, 1, 15, 0, 0, 0, time.UTC)

	got := Timeline(now)

	assert.Equal(t, []string{
		"12 Mart 2022",
		"14 Eylül 2022",
		"7 Aralık 2022",
		"12 Mart 2023",
		"14 Eylül 2023",
		"12 Mart 2024",
		"14 Eylül 2024",
	}, labels(got))
	assert.Equal(t, "2. İlişki Yıl Dönümü", got[6].Title)
	assert.Equal(t, IconHeart, got[6].Icon)
}

func TestTimeline_NextYearOnlyWhenReached(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	got := labels(Timeline(now))
	assert.NotContains(t, got, "12 Mart 2025")

	now = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	got = labels(Timeline(now))
	assert.Contains(t, got, "12 Mart 2025", "an anniversary falling today is included")
	assert.Contains(t, got, "14 Eylül 2025", "the current year is always shown")
	assert.NotContains(t, got, "12 Mart 2026")
}

func TestTimeline_Sorted(t *testing.T) {
	events := Timeline(time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.Before(events[i-1].Date), "event %d out of order", i)
	}
}

func TestTurkishDate(t *testing.T) {
	assert.Equal(t, "1 Ocak 2023", TurkishDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "29 Şubat 2024", TurkishDate(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestSince(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Elapsed{}, Since(start, start))

	now := start.Add(400*24*time.Hour + 5*time.Hour + 6*time.Minute + 7*time.Second)
	assert.Equal(t, Elapsed{Years: 1, Months: 1, Days: 10, Hours: 5, Minutes: 6, Seconds: 7}, Since(start, now))
}

func TestCounterSince(t *testing.T) {
	now := time.Date(2023, 1, 2, 0, 0, 1, 0, time.UTC)
	got, err := CounterSince(CounterStart, now)
	require.NoError(t, err)
	assert.Equal(t, Elapsed{Days: 1, Seconds: 1}, got)

	_, err = CounterSince("yesterday", now)
	assert.Error(t, err)
}

func TestCapsule(t *testing.T) {
	unlock := "2025-02-14"
	target := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)

	st, err := Capsule(unlock, target.Add(-(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 30*time.Second)))
	require.NoError(t, err)
	assert.False(t, st.Open)
	assert.Equal(t, "2 gün 3 saat 4 dakika", st.Label)

	st, err = Capsule(unlock, target)
	require.NoError(t, err)
	assert.False(t, st.Open, "opens only after the instant has passed")

	st, err = Capsule(unlock, target.Add(time.Millisecond))
	require.NoError(t, err)
	assert.True(t, st.Open)
	assert.Equal(t, OpenLabel, st.Label)

	_, err = Capsule("someday", target)
	assert.Error(t, err)
}
