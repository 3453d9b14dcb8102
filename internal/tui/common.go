package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/theme"
)

// viewState represents the currently active view.
type viewState int

const (
	viewContacts viewState = iota
	viewTimeline
	viewReminders
	viewVault
	viewSettings
)

var viewNames = []string{"Contacts", "Timeline", "Reminders", "Vault", "Settings"}

// route is a modal screen drawn over the active view.
type route int

const (
	routeNone route = iota
	routeContactForm
	routeImport
	routeProfile
	routeLogInteraction
	routeAddReminder
)

var (
	errContactNotFound = errors.New("contact not found")
	errVaultLocked     = errors.New("contact is in the locked vault")
)

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
	err     error
}

type tickMsg time.Time

type themeChangedMsg struct {
	theme theme.Theme
}

type exportDoneMsg struct {
	path    string
	skipped int // vault contacts left out while locked
}

// Navigation.

type openContactFormMsg struct {
	contact *store.Contact // nil for a new contact
	private bool
}

type openImportMsg struct{}

type openProfileMsg struct {
	id string
}

type openLogMsg struct {
	contact store.Contact
}

type openReminderMsg struct {
	contactID *int64
}

// closeRouteMsg dismisses the modal screen and refreshes the view behind it.
// With err set, status is the failed action.
type closeRouteMsg struct {
	status string
	err    error
}

// Data.

type contactsLoadedMsg struct {
	private  bool
	contacts []store.Contact
}

type timelineLoadedMsg struct {
	entries []store.TimelineEntry
	counts  []store.DayCount
}

type remindersLoadedMsg struct {
	entries []store.ReminderEntry
}

type profileLoadedMsg struct {
	contact      *store.Contact
	interactions []store.Interaction
	media        []store.Media
	reminders    []store.Reminder
}

type vaultLockedMsg struct{}

type biometricResultMsg struct {
	ok  bool
	err error
}

// --- Helpers ---

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true, err: err}
}

func formatDate(t time.Time) string {
	return t.Local().Format("Jan 2, 2006")
}

func formatDateTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04")
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
