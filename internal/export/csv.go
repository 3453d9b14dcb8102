package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sadopc/bondvault/internal/store"
)

// ContactsFileName is the name of the CSV written into the export dir.
const ContactsFileName = "bondvault_contacts.csv"

// ContactsToCSV writes one row per contact. The column names are the ones
// the importer recognises, so the file can be imported again.
func ContactsToCSV(contacts []store.Contact, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"id", "first_name", "last_name", "phone", "email", "relation", "birthday", "private", "notes", "created_at"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, c := range contacts {
		row := []string{
			strconv.FormatInt(c.ID, 10),
			c.FirstName,
			c.LastName,
			c.MobileNumber,
			c.Email,
			c.RelationType,
			c.Birthday,
			strconv.FormatBool(c.IsPrivate),
			c.Notes,
			c.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
