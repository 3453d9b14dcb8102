package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const reminderColumns = `r.id, r.contact_id, r.title, r.date, r.calendar_event_id, r.completed`

func scanReminder(r rowScanner, extra ...any) (Reminder, error) {
	var rem Reminder
	var contactID sql.NullInt64
	var date string
	var completed int
	dest := append([]any{&rem.ID, &contactID, &rem.Title, &date, &rem.CalendarEventID, &completed}, extra...)
	if err := r.Scan(dest...); err != nil {
		return rem, err
	}
	if contactID.Valid {
		rem.ContactID = &contactID.Int64
	}
	rem.Date, _ = time.Parse(time.RFC3339, date)
	rem.Completed = completed == 1
	return rem, nil
}

func (s *Store) CreateReminder(in ReminderInput) (*Reminder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		`INSERT INTO reminders (contact_id, title, date, calendar_event_id) VALUES (?, ?, ?, ?)`,
		in.ContactID, strings.TrimSpace(in.Title), in.Date.UTC().Format(time.RFC3339), in.CalendarEventID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetReminder(id)
}

// GetReminder returns nil, nil when the reminder does not exist.
func (s *Store) GetReminder(id int64) (*Reminder, error) {
	r, err := scanReminder(s.db.QueryRow(`SELECT `+reminderColumns+` FROM reminders r WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder %d: %w", id, err)
	}
	return &r, nil
}

// ListReminders returns every reminder, soonest first, with the linked
// contact's name when there is one.
func (s *Store) ListReminders() ([]ReminderEntry, error) {
	rows, err := s.db.Query(
		`SELECT ` + reminderColumns + `, COALESCE(c.first_name, ''), COALESCE(c.last_name, '')
		 FROM reminders r
		 LEFT JOIN contacts c ON c.id = r.contact_id
		 ORDER BY r.date ASC, r.id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var out []ReminderEntry
	for rows.Next() {
		var e ReminderEntry
		r, err := scanReminder(rows, &e.ContactFirstName, &e.ContactLastName)
		if err != nil {
			return nil, err
		}
		e.Reminder = r
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListContactReminders returns the reminders linked to one contact, latest first.
func (s *Store) ListContactReminders(contactID int64) ([]Reminder, error) {
	rows, err := s.db.Query(
		`SELECT `+reminderColumns+` FROM reminders r WHERE r.contact_id = ? ORDER BY r.date DESC, r.id DESC`,
		contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contact reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetReminderCompleted(id int64, completed bool) error {
	_, err := s.db.Exec(`UPDATE reminders SET completed = ? WHERE id = ?`, boolInt(completed), id)
	if err != nil {
		return fmt.Errorf("set reminder %d completed: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteReminder(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete reminder %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
