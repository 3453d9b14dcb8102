package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/agenda"
	"github.com/sadopc/bondvault/internal/store"
)

type remindersModel struct {
	store  *store.Store
	st     styles
	width  int
	height int

	// entries are ordered by date, so grouping keeps cursor positions stable.
	entries []store.ReminderEntry
	cursor  int
	now     func() time.Time
}

func newRemindersModel(s *store.Store, st styles) remindersModel {
	return remindersModel{store: s, st: st, now: time.Now}
}

func (m *remindersModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *remindersModel) setStyles(st styles) {
	m.st = st
}

func (m remindersModel) refresh() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		list, err := s.ListReminders()
		if err != nil {
			return errStatus("Load reminders", err)
		}
		return remindersLoadedMsg{entries: list}
	}
}

func (m remindersModel) update(msg tea.Msg) (remindersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case remindersLoadedMsg:
		m.entries = msg.entries
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, keys.New):
			return m, func() tea.Msg { return openReminderMsg{} }
		}

		if m.cursor >= len(m.entries) {
			return m, nil
		}
		r := m.entries[m.cursor]
		switch {
		case key.Matches(msg, keys.Toggle):
			return m, tea.Sequence(m.setCompleted(r.ID, !r.Completed), m.refresh())
		case key.Matches(msg, keys.Delete):
			return m, tea.Sequence(m.remove(r), m.refresh())
		case key.Matches(msg, keys.Enter):
			if r.ContactID != nil {
				id := strconv.FormatInt(*r.ContactID, 10)
				return m, func() tea.Msg { return openProfileMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m remindersModel) setCompleted(id int64, done bool) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.SetReminderCompleted(id, done); err != nil {
			return errStatus("Update reminder", err)
		}
		return nil
	}
}

func (m remindersModel) remove(r store.ReminderEntry) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if _, err := s.DeleteReminder(r.ID); err != nil {
			return errStatus("Delete reminder", err)
		}
		return statusMsg{text: "Deleted reminder " + r.Title}
	}
}

func (m remindersModel) view() string {
	w := m.width - 4
	title := m.st.title.Render("Reminders")

	if len(m.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			m.st.muted.Render("No reminders. Press n to add one."),
		)
		return m.st.panel.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	i := 0
	for _, sec := range agenda.Group(m.entries, m.now()) {
		heading := m.st.accent
		if sec.Bucket == agenda.Overdue {
			heading = m.st.err
		}
		rows = append(rows, heading.Bold(true).Render(fmt.Sprintf("%s (%d)", sec.Bucket, len(sec.Items))))
		for _, r := range sec.Items {
			cursor := "  "
			style := m.st.normalItem
			if i == m.cursor {
				cursor = "> "
				style = m.st.selectedItem
			}
			mark := m.st.muted.Render("○")
			text := style.Render(truncate(r.Title, max(10, w-50)))
			if r.Completed {
				mark = m.st.success.Render("✓")
				text = m.st.muted.Strikethrough(true).Render(truncate(r.Title, max(10, w-50)))
			}
			who := ""
			if name := r.ContactName(); name != "" {
				who = m.st.muted.Render("  " + name)
			}
			cal := ""
			if r.CalendarEventID != "" {
				cal = m.st.muted.Render(" ▣")
			}
			rows = append(rows, fmt.Sprintf("%s%s %s  %s%s%s", cursor, mark,
				m.st.muted.Render(formatDateTime(r.Date)), text, who, cal))
			i++
		}
		rows = append(rows, "")
	}

	rows = append(rows, m.st.muted.Render("  n: new  space: done  d: delete  enter: contact"))
	return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
}
