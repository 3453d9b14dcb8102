package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/store"
)

var whenLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// parseWhen reads a local date or date-time. Blank means the zero time.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("use YYYY-MM-DD or YYYY-MM-DD HH:MM")
}

func validWhenField(s string) error {
	_, err := parseWhen(s)
	return err
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, expandHome(p))
		}
	}
	return out
}

func validAttachmentsField(s string) error {
	for _, p := range splitPaths(s) {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("cannot read %s", p)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
	}
	return nil
}

type interactionFields struct {
	Type        store.InteractionType
	Notes       string
	Location    string
	When        string
	Attachments string
}

// logInteraction copies the attachments into app storage, creates the
// interaction and then one media row per attachment. Steps are not wrapped in
// a transaction; the first failure is returned.
func logInteraction(s *store.Store, files *attach.Store, c store.Contact, f interactionFields) (*store.Interaction, error) {
	if strings.TrimSpace(f.Notes) == "" {
		return nil, fmt.Errorf("%w: notes are required", store.ErrValidation)
	}
	when, err := parseWhen(f.When)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	var copied []*attach.Attachment
	for _, p := range splitPaths(f.Attachments) {
		if files == nil {
			return nil, errors.New("attachments are not configured")
		}
		a, err := files.Copy(p)
		if err != nil {
			removeCopies(files, copied)
			return nil, err
		}
		copied = append(copied, a)
	}

	it, err := s.CreateInteraction(store.InteractionInput{
		ContactID: c.ID,
		Type:      f.Type,
		Notes:     f.Notes,
		Date:      when,
		Location:  strings.TrimSpace(f.Location),
	})
	if err != nil {
		removeCopies(files, copied)
		return nil, err
	}
	for _, a := range copied {
		if _, err := s.CreateMedia(a.Input(c.ID, &it.ID, c.IsPrivate)); err != nil {
			return it, err
		}
	}
	return it, nil
}

func removeCopies(files *attach.Store, copied []*attach.Attachment) {
	for _, a := range copied {
		_ = files.Remove(a.Path)
	}
}

type logInteractionModel struct {
	store  *store.Store
	files  *attach.Store
	st     styles
	width  int
	height int

	form    *huh.Form
	contact store.Contact
	fields  *interactionFields
}

func newLogInteractionModel(s *store.Store, files *attach.Store, st styles) logInteractionModel {
	return logInteractionModel{store: s, files: files, st: st, fields: &interactionFields{}}
}

func (m *logInteractionModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *logInteractionModel) setStyles(st styles) {
	m.st = st
}

func (m logInteractionModel) open(c store.Contact) (logInteractionModel, tea.Cmd) {
	m.contact = c
	*m.fields = interactionFields{Type: store.InteractionCall}

	typeOptions := make([]huh.Option[store.InteractionType], len(store.InteractionTypes))
	for i, t := range store.InteractionTypes {
		typeOptions[i] = huh.NewOption(string(t), t)
	}

	f := m.fields
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[store.InteractionType]().Title("Type").Options(typeOptions...).Value(&f.Type),
			huh.NewText().Title("Notes").Value(&f.Notes).Validate(requiredField("notes")),
			huh.NewInput().Title("Location").Value(&f.Location),
			huh.NewInput().Title("When (blank for now)").Placeholder("YYYY-MM-DD HH:MM").Value(&f.When).Validate(validWhenField),
			huh.NewInput().Title("Attachments (comma-separated paths)").Value(&f.Attachments).Validate(validAttachmentsField),
		),
	).WithShowHelp(true).WithShowErrors(true)

	return m, m.form.Init()
}

func (m logInteractionModel) update(msg tea.Msg) (logInteractionModel, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return closeRouteMsg{} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.form = nil
		s, files, c, fields := m.store, m.files, m.contact, *m.fields
		return m, func() tea.Msg {
			it, err := logInteraction(s, files, c, fields)
			if err != nil {
				return closeRouteMsg{status: "Log interaction", err: err}
			}
			return closeRouteMsg{status: loggedStatus(s, it, c)}
		}
	}
	return m, cmd
}

func (m logInteractionModel) view() string {
	title := m.st.title.Render("Log Interaction") + "  " + m.st.accent.Render(m.contact.FullName())
	formView := ""
	if m.form != nil {
		formView = m.form.View()
	}
	return m.st.panel.Width(m.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", formView))
}

// loggedStatus confirms a saved interaction and how many attachments made it
// into storage.
func loggedStatus(s *store.Store, it *store.Interaction, c store.Contact) string {
	text := fmt.Sprintf("Logged %s with %s", strings.ToLower(string(it.Type)), c.FullName())
	media, err := s.ListInteractionMedia(it.ID)
	if err != nil || len(media) == 0 {
		return text
	}
	if len(media) == 1 {
		return text + " (1 attachment)"
	}
	return fmt.Sprintf("%s (%d attachments)", text, len(media))
}
