// Package moments computes the time-based parts of the site: the
// relationship timeline, the running counter and the time capsule
// countdown.
package moments

import (
	"fmt"
	"slices"
	"time"
)

// Icon marks the kind of a timeline event.
type Icon string

const (
	IconCalendar Icon = "calendar"
	IconHeart    Icon = "heart"
)

// Event is one entry on the timeline.
type Event struct {
	Date        time.Time
	Label       string
	Title       string
	Description string
	Icon        Icon
}

var monthsTR = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// TurkishDate formats t as "12 Mart 2022".
func TurkishDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsTR[t.Month()-1], t.Year())
}

const (
	firstYear       = 2022
	anniversaryFrom = 2023
)

// Timeline returns the fixed milestones and every anniversary up to and
// including next year, skipping future anniversaries outside the current
// year. Dates are midnight in now's location; events are sorted by date.
func Timeline(now time.Time) []Event {
	loc := now.Location()
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, loc) }

	events := []Event{
		{
			Date:        day(2022, time.March, 12),
			Title:       "Tanışma Tarihi",
			Description: "Hikayemizin başladığı, yollarımızın kesiştiği o ilk gün.",
			Icon:        IconCalendar,
		},
		{
			Date:        day(2022, time.September, 14),
			Title:       `İlk "Seni Seviyorum"`,
			Description: "Kalbimden dökülen o iki kelimenin, bizim sonsuzluğumuzun başlangıcı olduğu gün.",
			Icon:        IconHeart,
		},
		{
			Date:        day(2022, time.December, 7),
			Title:       "Seni İlk Gördüğüm Gün",
			Description: "Gözlerinin içine ilk baktığım ve orada kaybolduğum o an.",
			Icon:        IconCalendar,
		},
	}

	current := now.Year()
	for year := anniversaryFrom; year <= current+1; year++ {
		meeting := day(year, time.March, 12)
		if !meeting.After(now) || year == current {
			events = append(events, Event{
				Date:        meeting,
				Title:       fmt.Sprintf("%d. Tanışma Yıl Dönümü", year-firstYear),
				Description: "Seninle geçen her yıl, ömrüme ömür katıyor. İyi ki varsın.",
				Icon:        IconCalendar,
			})
		}
		together := day(year, time.September, 14)
		if !together.After(now) || year == current {
			events = append(events, Event{
				Date:        together,
				Title:       fmt.Sprintf("%d. İlişki Yıl Dönümü", year-firstYear),
				Description: "Aşkımızın büyüdüğü, kök saldığı bir yıl daha. Seni çok seviyorum.",
				Icon:        IconHeart,
			})
		}
	}

	for i := range events {
		events[i].Label = TurkishDate(events[i].Date)
	}
	slices.SortStableFunc(events, func(a, b Event) int { return a.Date.Compare(b.Date) })
	return events
}
