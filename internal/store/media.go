package store

import (
	"database/sql"
	"fmt"
	"time"
)

const mediaColumns = `id, contact_id, interaction_id, type, uri, mime_type, file_name, is_private, created_at`

func scanMedia(r rowScanner) (Media, error) {
	var m Media
	var typ, createdAt string
	var interactionID sql.NullInt64
	var private int
	err := r.Scan(&m.ID, &m.ContactID, &interactionID, &typ, &m.URI, &m.MimeType, &m.FileName, &private, &createdAt)
	if err != nil {
		return m, err
	}
	if interactionID.Valid {
		m.InteractionID = &interactionID.Int64
	}
	m.Type = MediaType(typ)
	m.IsPrivate = private == 1
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}

func (s *Store) CreateMedia(in MediaInput) (*Media, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO media (contact_id, interaction_id, type, uri, mime_type, file_name, is_private, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ContactID, in.InteractionID, string(in.Type), in.URI, in.MimeType, in.FileName, boolInt(in.IsPrivate), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetMedia(id)
}

// GetMedia returns nil, nil when the media row does not exist.
func (s *Store) GetMedia(id int64) (*Media, error) {
	m, err := scanMedia(s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media %d: %w", id, err)
	}
	return &m, nil
}

// ListMedia returns all attachments of a contact, newest first.
func (s *Store) ListMedia(contactID int64) ([]Media, error) {
	return s.queryMedia(`SELECT `+mediaColumns+` FROM media WHERE contact_id = ? ORDER BY created_at DESC, id DESC`, contactID)
}

// ListInteractionMedia returns the attachments captured with one interaction.
func (s *Store) ListInteractionMedia(interactionID int64) ([]Media, error) {
	return s.queryMedia(`SELECT `+mediaColumns+` FROM media WHERE interaction_id = ? ORDER BY id`, interactionID)
}

func (s *Store) queryMedia(query string, args ...any) ([]Media, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var out []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
