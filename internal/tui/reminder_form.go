package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/calendar"
	"github.com/sadopc/bondvault/internal/store"
)

type reminderFields struct {
	Title     string
	When      string
	ContactID int64
	Mirror    bool
}

// addReminder saves a reminder for a contact. When mirroring is asked for,
// a calendar event is created first; a calendar failure is logged and the
// reminder is saved without an event id.
func addReminder(s *store.Store, cal calendar.Writer, logger *zap.Logger, f reminderFields) (*store.Reminder, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", store.ErrValidation)
	}
	if f.ContactID <= 0 {
		return nil, fmt.Errorf("%w: contact is required", store.ErrValidation)
	}
	when, err := parseWhen(f.When)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}
	if when.IsZero() {
		return nil, fmt.Errorf("%w: date is required", store.ErrValidation)
	}

	c, err := s.GetContact(f.ContactID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errContactNotFound
	}

	eventID := ""
	if f.Mirror && cal != nil {
		id, err := cal.CreateEvent(title, when, "Reminder for "+c.FullName())
		if err != nil {
			logger.Warn("calendar event failed", zap.String("title", title), zap.Error(err))
		} else {
			eventID = id
		}
	}

	contactID := c.ID
	return s.CreateReminder(store.ReminderInput{
		ContactID:       &contactID,
		Title:           title,
		Date:            when,
		CalendarEventID: eventID,
	})
}

type reminderContactsMsg struct {
	contacts []store.Contact
}

type reminderFormModel struct {
	store    *store.Store
	calendar calendar.Writer
	logger   *zap.Logger
	st       styles
	width    int
	height   int

	form    *huh.Form
	fields  *reminderFields
	private bool // preset contact is in the vault
}

func newReminderFormModel(s *store.Store, cal calendar.Writer, logger *zap.Logger, st styles) reminderFormModel {
	return reminderFormModel{store: s, calendar: cal, logger: logger, st: st, fields: &reminderFields{}}
}

func (m *reminderFormModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *reminderFormModel) setStyles(st styles) {
	m.st = st
}

// open loads the contact choices; the form is built when they arrive.
func (m reminderFormModel) open(contactID *int64) (reminderFormModel, tea.Cmd) {
	m.form = nil
	m.private = false
	*m.fields = reminderFields{Mirror: m.calendar != nil}
	if contactID != nil {
		m.fields.ContactID = *contactID
	}
	s, preset := m.store, m.fields.ContactID
	return m, func() tea.Msg {
		list, err := reminderChoices(s, preset)
		if err != nil {
			return closeRouteMsg{status: "Load contacts", err: err}
		}
		return reminderContactsMsg{contacts: list}
	}
}

// reminderChoices lists the public contacts. A preset private contact is
// added in front so vault contacts can get reminders without exposing the
// rest of the vault.
func reminderChoices(s *store.Store, preset int64) ([]store.Contact, error) {
	list, err := s.ListContacts(false)
	if err != nil {
		return nil, err
	}
	if preset == 0 {
		return list, nil
	}
	for _, c := range list {
		if c.ID == preset {
			return list, nil
		}
	}
	c, err := s.GetContact(preset)
	if err != nil {
		return nil, err
	}
	if c != nil {
		list = append([]store.Contact{*c}, list...)
	}
	return list, nil
}

func (m reminderFormModel) build(contacts []store.Contact) (reminderFormModel, tea.Cmd) {
	if len(contacts) == 0 {
		return m, func() tea.Msg {
			return closeRouteMsg{status: "Add reminder", err: fmt.Errorf("add a contact first")}
		}
	}
	if m.fields.ContactID == 0 {
		m.fields.ContactID = contacts[0].ID
	}
	for _, c := range contacts {
		if c.ID == m.fields.ContactID {
			m.private = c.IsPrivate
		}
	}
	options := make([]huh.Option[int64], len(contacts))
	for i, c := range contacts {
		options[i] = huh.NewOption(c.FullName(), c.ID)
	}

	f := m.fields
	fields := []huh.Field{
		huh.NewInput().Title("Title").Value(&f.Title).Validate(requiredField("title")),
		huh.NewInput().Title("When").Placeholder("YYYY-MM-DD HH:MM").Value(&f.When).Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("date is required")
			}
			return validWhenField(s)
		}),
		huh.NewSelect[int64]().Title("Contact").Options(options...).Value(&f.ContactID),
	}
	if m.calendar != nil {
		fields = append(fields, huh.NewConfirm().Title("Add to calendar?").Value(&f.Mirror))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func (m reminderFormModel) update(msg tea.Msg) (reminderFormModel, tea.Cmd) {
	if msg, ok := msg.(reminderContactsMsg); ok {
		return m.build(msg.contacts)
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return closeRouteMsg{} }
	}
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.form = nil
		s, cal, logger, fields := m.store, m.calendar, m.logger, *m.fields
		return m, func() tea.Msg {
			r, err := addReminder(s, cal, logger, fields)
			if err != nil {
				return closeRouteMsg{status: "Add reminder", err: err}
			}
			text := "Reminder set for " + formatDateTime(r.Date)
			if fields.Mirror && r.CalendarEventID == "" {
				text += " (calendar unavailable)"
			}
			return closeRouteMsg{status: text}
		}
	}
	return m, cmd
}

func (m reminderFormModel) view() string {
	title := m.st.title.Render("New Reminder")
	body := m.st.muted.Render("Loading contacts...")
	if m.form != nil {
		body = m.form.View()
	}
	return m.st.panel.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}
