package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const contactColumns = `id, first_name, last_name, mobile_number, email, relation_type, birthday,
	profile_image_uri, notes, is_private, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(r rowScanner) (Contact, error) {
	var c Contact
	var createdAt string
	var private int
	err := r.Scan(&c.ID, &c.FirstName, &c.LastName, &c.MobileNumber, &c.Email, &c.RelationType,
		&c.Birthday, &c.ProfileImageURI, &c.Notes, &private, &createdAt)
	if err != nil {
		return c, err
	}
	c.IsPrivate = private == 1
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func relationOrDefault(r string) string {
	r = strings.TrimSpace(r)
	if r == "" {
		return DefaultRelation
	}
	return r
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) CreateContact(in ContactInput) (*Contact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO contacts (first_name, last_name, mobile_number, email, relation_type, birthday,
			profile_image_uri, notes, is_private, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName), in.MobileNumber, in.Email,
		relationOrDefault(in.RelationType), in.Birthday, in.ProfileImageURI, in.Notes,
		boolInt(in.IsPrivate), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetContact(id)
}

// GetContact returns nil, nil when no contact has the given id.
func (s *Store) GetContact(id int64) (*Contact, error) {
	c, err := scanContact(s.db.QueryRow(`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact %d: %w", id, err)
	}
	return &c, nil
}

// ListContacts returns the contacts whose private flag equals private, by
// first name.
func (s *Store) ListContacts(private bool) ([]Contact, error) {
	return s.queryContacts(
		`SELECT `+contactColumns+` FROM contacts WHERE is_private = ? ORDER BY first_name COLLATE NOCASE, id`,
		boolInt(private),
	)
}

func (s *Store) ListAllContacts() ([]Contact, error) {
	return s.queryContacts(`SELECT ` + contactColumns + ` FROM contacts ORDER BY first_name COLLATE NOCASE, id`)
}

func (s *Store) queryContacts(query string, args ...any) ([]Contact, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// UpdateContact applies the non-nil fields of p. It returns nil, nil when the
// contact does not exist.
func (s *Store) UpdateContact(id int64, p ContactPatch) (*Contact, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.FirstName != nil {
		set("first_name", strings.TrimSpace(*p.FirstName))
	}
	if p.LastName != nil {
		set("last_name", strings.TrimSpace(*p.LastName))
	}
	if p.MobileNumber != nil {
		set("mobile_number", *p.MobileNumber)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.RelationType != nil {
		set("relation_type", relationOrDefault(*p.RelationType))
	}
	if p.Birthday != nil {
		set("birthday", *p.Birthday)
	}
	if p.ProfileImageURI != nil {
		set("profile_image_uri", *p.ProfileImageURI)
	}
	if p.Notes != nil {
		set("notes", *p.Notes)
	}
	if p.IsPrivate != nil {
		set("is_private", boolInt(*p.IsPrivate))
	}

	if len(sets) > 0 {
		args = append(args, id)
		_, err := s.db.Exec(`UPDATE contacts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("update contact %d: %w", id, err)
		}
	}
	return s.GetContact(id)
}

// SetContactPrivate moves a contact into or out of the vault.
func (s *Store) SetContactPrivate(id int64, private bool) error {
	_, err := s.db.Exec(`UPDATE contacts SET is_private = ? WHERE id = ?`, boolInt(private), id)
	if err != nil {
		return fmt.Errorf("set contact %d private: %w", id, err)
	}
	return nil
}

// DeleteContact removes the contact row only. Dependent interactions, media
// and reminders are not touched, so the delete is refused while any exist.
func (s *Store) DeleteContact(id int64) (bool, error) {
	var dependents int
	err := s.db.QueryRow(
		`SELECT (SELECT COUNT(*) FROM interactions WHERE contact_id = ?) +
		        (SELECT COUNT(*) FROM media WHERE contact_id = ?) +
		        (SELECT COUNT(*) FROM reminders WHERE contact_id = ?)`, id, id, id,
	).Scan(&dependents)
	if err != nil {
		return false, fmt.Errorf("count contact %d dependents: %w", id, err)
	}
	if dependents > 0 {
		return false, fmt.Errorf("delete contact %d: %w", id, ErrContactHasDependents)
	}

	res, err := s.db.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete contact %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// PurgeContact deletes a contact together with its media and interactions and
// detaches its reminders, in one transaction.
func (s *Store) PurgeContact(id int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []string{
		`DELETE FROM media WHERE contact_id = ?`,
		`DELETE FROM interactions WHERE contact_id = ?`,
		`UPDATE reminders SET contact_id = NULL WHERE contact_id = ?`,
	}
	for _, q := range steps {
		if _, err := tx.Exec(q, id); err != nil {
			return false, fmt.Errorf("purge contact %d: %w", id, err)
		}
	}

	res, err := tx.Exec(`DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("purge contact %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit purge: %w", err)
	}
	return n > 0, nil
}
