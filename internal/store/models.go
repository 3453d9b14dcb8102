package store

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultRelation is stored when a contact is created without a relation type.
const DefaultRelation = "Other"

// RelationTypes are the suggested labels offered by the contact form. The
// column itself is free-form.
var RelationTypes = []string{"Friend", "Family", "Work", "Client", "Partner", "Other"}

type InteractionType string

const (
	InteractionCall    InteractionType = "Call"
	InteractionMeeting InteractionType = "Meeting"
	InteractionMessage InteractionType = "Message"
	InteractionNote    InteractionType = "Note"
)

var InteractionTypes = []InteractionType{InteractionCall, InteractionMeeting, InteractionMessage, InteractionNote}

func (t InteractionType) Valid() bool {
	for _, v := range InteractionTypes {
		if t == v {
			return true
		}
	}
	return false
}

type MediaType string

const (
	MediaImage    MediaType = "Image"
	MediaVideo    MediaType = "Video"
	MediaAudio    MediaType = "Audio"
	MediaDocument MediaType = "Document"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio, MediaDocument:
		return true
	}
	return false
}

const birthdayLayout = "2006-01-02"

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrContactHasDependents is returned by DeleteContact when interactions,
	// media or reminders still reference the contact.
	ErrContactHasDependents = errors.New("contact still has interactions, media or reminders")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type Contact struct {
	ID              int64
	FirstName       string
	LastName        string
	MobileNumber    string
	Email           string
	RelationType    string
	Birthday        string // YYYY-MM-DD or empty
	ProfileImageURI string
	Notes           string
	IsPrivate       bool
	CreatedAt       time.Time
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type ContactInput struct {
	FirstName       string
	LastName        string
	MobileNumber    string
	Email           string
	RelationType    string
	Birthday        string
	ProfileImageURI string
	Notes           string
	IsPrivate       bool
}

func (in ContactInput) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return validationError("first name is required")
	}
	return validateBirthday(in.Birthday)
}

func validateBirthday(b string) error {
	if b == "" {
		return nil
	}
	if _, err := time.Parse(birthdayLayout, b); err != nil {
		return validationError("birthday %q is not YYYY-MM-DD", b)
	}
	return nil
}

// ContactPatch carries a partial update; nil fields are left unchanged.
type ContactPatch struct {
	FirstName       *string
	LastName        *string
	MobileNumber    *string
	Email           *string
	RelationType    *string
	Birthday        *string
	ProfileImageURI *string
	Notes           *string
	IsPrivate       *bool
}

func (p ContactPatch) Validate() error {
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		return validationError("first name is required")
	}
	if p.Birthday != nil {
		return validateBirthday(*p.Birthday)
	}
	return nil
}

type Interaction struct {
	ID         int64
	ContactID  int64
	Type       InteractionType
	Notes      string
	Date       time.Time
	Location   string
	Transcript string
}

type InteractionInput struct {
	ContactID int64
	Type      InteractionType
	Notes     string
	Date      time.Time // zero means now
	Location  string
}

func (in InteractionInput) Validate() error {
	if in.ContactID <= 0 {
		return validationError("contact is required")
	}
	if !in.Type.Valid() {
		return validationError("unknown interaction type %q", in.Type)
	}
	if strings.TrimSpace(in.Notes) == "" {
		return validationError("notes are required")
	}
	return nil
}

// TimelineEntry is an interaction joined with its contact's name.
type TimelineEntry struct {
	Interaction
	ContactFirstName string
	ContactLastName  string
}

func (e TimelineEntry) ContactName() string {
	return strings.TrimSpace(e.ContactFirstName + " " + e.ContactLastName)
}

type Media struct {
	ID            int64
	ContactID     int64
	InteractionID *int64
	Type          MediaType
	URI           string
	MimeType      string
	FileName      string
	IsPrivate     bool
	CreatedAt     time.Time
}

type MediaInput struct {
	ContactID     int64
	InteractionID *int64
	Type          MediaType
	URI           string
	MimeType      string
	FileName      string
	IsPrivate     bool
}

func (in MediaInput) Validate() error {
	if in.ContactID <= 0 {
		return validationError("contact is required")
	}
	if !in.Type.Valid() {
		return validationError("unknown media type %q", in.Type)
	}
	if in.URI == "" {
		return validationError("media uri is required")
	}
	return nil
}

type Reminder struct {
	ID              int64
	ContactID       *int64
	Title           string
	Date            time.Time
	CalendarEventID string
	Completed       bool
}

type ReminderInput struct {
	ContactID       *int64
	Title           string
	Date            time.Time
	CalendarEventID string
}

func (in ReminderInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return validationError("title is required")
	}
	if in.Date.IsZero() {
		return validationError("date is required")
	}
	return nil
}

// ReminderEntry is a reminder joined with its (optional) contact's name.
type ReminderEntry struct {
	Reminder
	ContactFirstName string
	ContactLastName  string
}

func (e ReminderEntry) ContactName() string {
	return strings.TrimSpace(e.ContactFirstName + " " + e.ContactLastName)
}

type Setting struct {
	Key   string
	Value string
}

// DayCount is the number of interactions logged on one UTC day.
type DayCount struct {
	Date  string
	Count int
}
