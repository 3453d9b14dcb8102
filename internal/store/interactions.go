package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const interactionColumns = `i.id, i.contact_id, i.type, i.notes, i.date, i.location, i.transcript`

func scanInteraction(r rowScanner, extra ...any) (Interaction, error) {
	var i Interaction
	var typ, date string
	dest := append([]any{&i.ID, &i.ContactID, &typ, &i.Notes, &date, &i.Location, &i.Transcript}, extra...)
	if err := r.Scan(dest...); err != nil {
		return i, err
	}
	i.Type = InteractionType(typ)
	i.Date, _ = time.Parse(time.RFC3339, date)
	return i, nil
}

// CreateInteraction logs a touchpoint. A zero Date is stamped with the current
// time. Interactions are never updated afterwards.
func (s *Store) CreateInteraction(in InteractionInput) (*Interaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO interactions (contact_id, type, notes, date, location) VALUES (?, ?, ?, ?, ?)`,
		in.ContactID, string(in.Type), strings.TrimSpace(in.Notes), date.UTC().Format(time.RFC3339), in.Location,
	)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetInteraction(id)
}

// GetInteraction returns nil, nil when the interaction does not exist.
func (s *Store) GetInteraction(id int64) (*Interaction, error) {
	i, err := scanInteraction(s.db.QueryRow(`SELECT `+interactionColumns+` FROM interactions i WHERE i.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction %d: %w", id, err)
	}
	return &i, nil
}

// ListInteractions returns a contact's interactions, newest first.
func (s *Store) ListInteractions(contactID int64) ([]Interaction, error) {
	rows, err := s.db.Query(
		`SELECT `+interactionColumns+` FROM interactions i
		 WHERE i.contact_id = ? ORDER BY i.date DESC, i.id DESC`, contactID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// ListTimeline returns every interaction with its contact's name, newest first.
func (s *Store) ListTimeline() ([]TimelineEntry, error) {
	rows, err := s.db.Query(
		`SELECT ` + interactionColumns + `, COALESCE(c.first_name, ''), COALESCE(c.last_name, '')
		 FROM interactions i
		 LEFT JOIN contacts c ON c.id = i.contact_id
		 ORDER BY i.date DESC, i.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	var out []TimelineEntry
	for rows.Next() {
		var e TimelineEntry
		i, err := scanInteraction(rows, &e.ContactFirstName, &e.ContactLastName)
		if err != nil {
			return nil, err
		}
		e.Interaction = i
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountInteractionsByDay groups interactions in [from, to) by UTC day.
func (s *Store) CountInteractionsByDay(from, to time.Time) ([]DayCount, error) {
	rows, err := s.db.Query(`
		SELECT date(date) AS day, COUNT(*)
		FROM interactions
		WHERE date >= ? AND date < ?
		GROUP BY day
		ORDER BY day`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("count interactions: %w", err)
	}
	defer rows.Close()

	var counts []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, dc)
	}
	return counts, rows.Err()
}
