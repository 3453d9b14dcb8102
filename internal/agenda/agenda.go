// Package agenda buckets reminders relative to the current day.
package agenda

import (
	"time"

	"github.com/sadopc/bondvault/internal/store"
)

type Bucket int

const (
	Overdue Bucket = iota
	Today
	Tomorrow
	Upcoming
)

// Buckets lists the buckets in display order.
var Buckets = []Bucket{Overdue, Today, Tomorrow, Upcoming}

func (b Bucket) String() string {
	switch b {
	case Overdue:
		return "Overdue"
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	}
	return "Upcoming"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BucketFor classifies date against now by calendar day in now's location.
// A reminder due earlier today is still Today.
func BucketFor(date, now time.Time) Bucket {
	today := startOfDay(now)
	day := startOfDay(date.In(now.Location()))
	switch {
	case day.Before(today):
		return Overdue
	case day.Equal(today):
		return Today
	case day.Equal(today.AddDate(0, 0, 1)):
		return Tomorrow
	}
	return Upcoming
}

// Section is one non-empty bucket of reminders.
type Section struct {
	Bucket Bucket
	Items  []store.ReminderEntry
}

// Group splits entries into sections in display order, skipping empty
// buckets. Entry order within a section is preserved.
func Group(entries []store.ReminderEntry, now time.Time) []Section {
	byBucket := make(map[Bucket][]store.ReminderEntry, len(Buckets))
	for _, e := range entries {
		b := BucketFor(e.Date, now)
		byBucket[b] = append(byBucket[b], e)
	}
	var out []Section
	for _, b := range Buckets {
		if items := byBucket[b]; len(items) > 0 {
			out = append(out, Section{Bucket: b, Items: items})
		}
	}
	return out
}
