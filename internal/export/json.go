package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/bondvault/internal/store"
)

// BackupFileName is the name of the backup written into the export dir.
const BackupFileName = "bondvault_backup.json"

// Backup is the backup document. Media rows are not included.
type Backup struct {
	Contacts     []backupContact     `json:"contacts"`
	Interactions []backupInteraction `json:"interactions"`
	Reminders    []backupReminder    `json:"reminders"`
	Timestamp    string              `json:"timestamp"`
}

type backupContact struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	MobileNumber    string `json:"mobileNumber"`
	Email           string `json:"email"`
	RelationType    string `json:"relationType"`
	Birthday        string `json:"birthday"`
	ProfileImageURI string `json:"profileImageUri"`
	Notes           string `json:"notes"`
	IsPrivate       bool   `json:"isPrivate"`
	CreatedAt       string `json:"createdAt"`
}

type backupInteraction struct {
	ID         int64  `json:"id"`
	ContactID  int64  `json:"contactId"`
	Type       string `json:"type"`
	Notes      string `json:"notes"`
	Date       string `json:"date"`
	Location   string `json:"location"`
	Transcript string `json:"transcript"`
}

type backupReminder struct {
	ID              int64  `json:"id"`
	ContactID       *int64 `json:"contactId"`
	Title           string `json:"title"`
	Date            string `json:"date"`
	CalendarEventID string `json:"calendarEventId"`
	Completed       bool   `json:"completed"`
}

// Source is the part of the store a backup reads.
type Source interface {
	ListAllContacts() ([]store.Contact, error)
	ListTimeline() ([]store.TimelineEntry, error)
	ListReminders() ([]store.ReminderEntry, error)
}

// BuildBackup collects every contact, interaction and reminder.
func BuildBackup(src Source, now time.Time) (*Backup, error) {
	contacts, err := src.ListAllContacts()
	if err != nil {
		return nil, err
	}
	timeline, err := src.ListTimeline()
	if err != nil {
		return nil, err
	}
	reminders, err := src.ListReminders()
	if err != nil {
		return nil, err
	}

	b := &Backup{
		Contacts:     make([]backupContact, 0, len(contacts)),
		Interactions: make([]backupInteraction, 0, len(timeline)),
		Reminders:    make([]backupReminder, 0, len(reminders)),
		Timestamp:    now.UTC().Format(time.RFC3339),
	}
	for _, c := range contacts {
		b.Contacts = append(b.Contacts, backupContact{
			ID:              c.ID,
			FirstName:       c.FirstName,
			LastName:        c.LastName,
			MobileNumber:    c.MobileNumber,
			Email:           c.Email,
			RelationType:    c.RelationType,
			Birthday:        c.Birthday,
			ProfileImageURI: c.ProfileImageURI,
			Notes:           c.Notes,
			IsPrivate:       c.IsPrivate,
			CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	for _, e := range timeline {
		b.Interactions = append(b.Interactions, backupInteraction{
			ID:         e.ID,
			ContactID:  e.ContactID,
			Type:       string(e.Type),
			Notes:      e.Notes,
			Date:       e.Date.UTC().Format(time.RFC3339),
			Location:   e.Location,
			Transcript: e.Transcript,
		})
	}
	for _, r := range reminders {
		b.Reminders = append(b.Reminders, backupReminder{
			ID:              r.ID,
			ContactID:       r.ContactID,
			Title:           r.Title,
			Date:            r.Date.UTC().Format(time.RFC3339),
			CalendarEventID: r.CalendarEventID,
			Completed:       r.Completed,
		})
	}
	return b, nil
}

// WriteBackup writes the backup to dir/bondvault_backup.json and returns the
// path.
func WriteBackup(src Source, dir string) (string, error) {
	b, err := BuildBackup(src, time.Now())
	if err != nil {
		return "", fmt.Errorf("collect backup: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, BackupFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write json file: %w", err)
	}
	return path, nil
}
