// Package calendar mirrors reminders into an iCalendar file that desktop
// calendar applications can subscribe to or import.
package calendar

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// EventDuration is the length of every mirrored event.
const EventDuration = time.Hour

const prodID = "-//bondvault//reminders//EN"

// Writer creates calendar events and returns their id.
type Writer interface {
	CreateEvent(title string, start time.Time, notes string) (string, error)
}

// ICSWriter appends events to a single .ics file.
type ICSWriter struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewICSWriter(path string) *ICSWriter {
	return &ICSWriter{path: path, now: time.Now}
}

func (w *ICSWriter) Path() string { return w.path }

// CreateEvent adds a one-hour event starting at start and returns its UID.
// Events already in the file, including ones other applications added, are
// kept as they are.
func (w *ICSWriter) CreateEvent(title string, start time.Time, notes string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("calendar event needs a title")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	cal, err := w.load()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	ev := cal.AddEvent(id)
	ev.SetDtStampTime(w.now().UTC())
	ev.SetStartAt(start.UTC())
	ev.SetEndAt(start.UTC().Add(EventDuration))
	ev.SetSummary(title)
	if notes != "" {
		ev.SetDescription(notes)
	}
	if err := w.save(cal); err != nil {
		return "", err
	}
	return id, nil
}

func (w *ICSWriter) load() (*ics.Calendar, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		cal := ics.NewCalendar()
		cal.SetProductId(prodID)
		return cal, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	cal, err := ics.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	return cal, nil
}

func (w *ICSWriter) save(cal *ics.Calendar) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0700); err != nil {
		return fmt.Errorf("create calendar dir: %w", err)
	}
	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return os.Rename(tmp, w.path)
}
