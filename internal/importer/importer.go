// Package importer reads an address-book CSV export and creates contacts
// from the rows the user selects.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/store"
)

// ImportedNote is stored in the notes of every imported contact.
const ImportedNote = "Imported from device"

var ErrNoHeader = errors.New("csv has no header row")

// Candidate is one importable address-book entry.
type Candidate struct {
	Name      string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Birthday  string
}

// DisplayName is the full name, or the raw name column when the split
// columns are empty.
func (c Candidate) DisplayName() string {
	if n := strings.TrimSpace(c.FirstName + " " + c.LastName); n != "" {
		return n
	}
	return c.Name
}

// Input converts the candidate to a new contact. The relation type is left
// empty so the store default applies.
func (c Candidate) Input() store.ContactInput {
	first := c.FirstName
	if first == "" {
		first = c.Name
	}
	if first == "" {
		first = "Unknown"
	}
	return store.ContactInput{
		FirstName:    first,
		LastName:     c.LastName,
		MobileNumber: c.Phone,
		Email:        c.Email,
		Birthday:     normalizeBirthday(c.Birthday),
		Notes:        ImportedNote,
	}
}

var columnAliases = map[string]string{
	"name":         "name",
	"full_name":    "name",
	"display_name": "name",
	"first_name":   "first_name",
	"given_name":   "first_name",
	"last_name":    "last_name",
	"family_name":  "last_name",
	"phone":        "phone",
	"mobile":       "phone",
	"mobile_phone": "phone",
	"email":        "email",
	"e-mail":       "email",
	"birthday":     "birthday",
}

func headerKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.ReplaceAll(h, " ", "_")
	return columnAliases[h]
}

// Parse reads a CSV with a header row. Rows without a name or without a
// phone number are skipped.
func Parse(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		if k := headerKey(h); k != "" {
			if _, dup := cols[k]; !dup {
				cols[k] = i
			}
		}
	}

	var out []Candidate
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		field := func(k string) string {
			i, ok := cols[k]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		c := Candidate{
			Name:      field("name"),
			FirstName: field("first_name"),
			LastName:  field("last_name"),
			Phone:     field("phone"),
			Email:     field("email"),
			Birthday:  field("birthday"),
		}
		if c.DisplayName() == "" || c.Phone == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func ParseFile(path string) ([]Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// normalizeBirthday accepts Y-M-D with or without zero padding and returns
// YYYY-MM-DD, or "" when the value is not a date.
func normalizeBirthday(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Creator is the part of the store used by Import.
type Creator interface {
	CreateContact(in store.ContactInput) (*store.Contact, error)
}

// Result counts the outcome of an import.
type Result struct {
	Imported int
	Failed   int
}

// Import creates a contact per candidate. A failure is logged and the rest
// of the batch continues.
func Import(c Creator, cands []Candidate, logger *zap.Logger) Result {
	var res Result
	for _, cand := range cands {
		if _, err := c.CreateContact(cand.Input()); err != nil {
			logger.Warn("import contact failed", zap.String("name", cand.DisplayName()), zap.Error(err))
			res.Failed++
			continue
		}
		res.Imported++
	}
	return res
}
