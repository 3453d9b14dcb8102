package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/search"
	"github.com/sadopc/bondvault/internal/store"
)

// contactsModel lists either the public contacts or, inside the vault, the
// private ones.
type contactsModel struct {
	store   *store.Store
	st      styles
	private bool
	width   int
	height  int

	all       []store.Contact
	filtered  []store.Contact
	relations []string
	relation  string
	cursor    int

	query     textinput.Model
	searching bool
}

func newContactsModel(s *store.Store, st styles, private bool) contactsModel {
	q := textinput.New()
	q.Placeholder = "name or relation"
	q.Prompt = "/ "
	q.CharLimit = 64
	return contactsModel{
		store:     s,
		st:        st,
		private:   private,
		relation:  search.All,
		relations: []string{search.All},
		query:     q,
	}
}

func (m *contactsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *contactsModel) setStyles(st styles) {
	m.st = st
}

func (m contactsModel) capturing() bool {
	return m.searching
}

func (m contactsModel) refresh() tea.Cmd {
	s, private := m.store, m.private
	return func() tea.Msg {
		list, err := s.ListContacts(private)
		if err != nil {
			return errStatus("Load contacts", err)
		}
		return contactsLoadedMsg{private: private, contacts: list}
	}
}

// apply recomputes the visible list from the full list, query and filter.
func (m *contactsModel) apply() {
	m.relations = search.Relations(m.all)
	found := false
	for _, r := range m.relations {
		if r == m.relation {
			found = true
			break
		}
	}
	if !found {
		m.relation = search.All
	}
	m.filtered = search.Contacts(m.all, m.query.Value(), m.relation)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m contactsModel) selected() (store.Contact, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return store.Contact{}, false
	}
	return m.filtered[m.cursor], true
}

func (m contactsModel) update(msg tea.Msg) (contactsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case contactsLoadedMsg:
		if msg.private != m.private {
			return m, nil
		}
		m.all = msg.contacts
		m.apply()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m contactsModel) updateSearch(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.searching = false
		m.query.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.apply()
	return m, cmd
}

func (m contactsModel) updateList(msg tea.KeyMsg) (contactsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Search):
		m.searching = true
		return m, m.query.Focus()
	case key.Matches(msg, keys.Back):
		if m.query.Value() != "" || m.relation != search.All {
			m.query.SetValue("")
			m.relation = search.All
			m.apply()
		}
	case key.Matches(msg, keys.Filter):
		m.relation = nextOption(m.relations, m.relation)
		m.apply()
	case key.Matches(msg, keys.New):
		private := m.private
		return m, func() tea.Msg { return openContactFormMsg{private: private} }
	case key.Matches(msg, keys.Import):
		if !m.private {
			return m, func() tea.Msg { return openImportMsg{} }
		}
	}

	c, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Enter):
		id := strconv.FormatInt(c.ID, 10)
		return m, func() tea.Msg { return openProfileMsg{id: id} }
	case key.Matches(msg, keys.Edit):
		return m, func() tea.Msg { return openContactFormMsg{contact: &c, private: c.IsPrivate} }
	case key.Matches(msg, keys.Log):
		return m, func() tea.Msg { return openLogMsg{contact: c} }
	case key.Matches(msg, keys.Remind):
		id := c.ID
		return m, func() tea.Msg { return openReminderMsg{contactID: &id} }
	case key.Matches(msg, keys.Private):
		return m, m.togglePrivate(c)
	}
	return m, nil
}

func (m contactsModel) togglePrivate(c store.Contact) tea.Cmd {
	s := m.store
	move := func() tea.Msg {
		if err := s.SetContactPrivate(c.ID, !c.IsPrivate); err != nil {
			return errStatus("Move contact", err)
		}
		where := "vault"
		if c.IsPrivate {
			where = "contacts"
		}
		return statusMsg{text: fmt.Sprintf("Moved %s to %s", c.FullName(), where)}
	}
	return tea.Sequence(move, m.refresh())
}

func nextOption(relations []string, current string) string {
	if len(relations) == 0 {
		return search.All
	}
	for i, r := range relations {
		if r == current {
			return relations[(i+1)%len(relations)]
		}
	}
	return relations[0]
}

func (m contactsModel) view() string {
	w := m.width - 4
	title := "Contacts"
	if m.private {
		title = "Private Contacts"
	}

	var rows []string
	rows = append(rows, m.st.title.Render(title)+"  "+
		m.st.muted.Render(fmt.Sprintf("%d of %d", len(m.filtered), len(m.all))))

	if m.searching || m.query.Value() != "" {
		rows = append(rows, m.query.View())
	}
	rows = append(rows, m.st.muted.Render("Relation: ")+m.st.accent.Render(m.relation))
	rows = append(rows, "")

	if len(m.all) == 0 {
		hint := "No contacts yet. Press n to add one or i to import."
		if m.private {
			hint = "No private contacts. Press p on a contact to move it here."
		}
		rows = append(rows, m.st.muted.Render(hint))
		return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
	}
	if len(m.filtered) == 0 {
		rows = append(rows, m.st.muted.Render("No contacts match."))
		return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, m.st.muted.Render(fmt.Sprintf("  %-28s %-12s %-16s", "Name", "Relation", "Phone")))

	start, end := window(m.cursor, len(m.filtered), m.height-12)
	for i := start; i < end; i++ {
		c := m.filtered[i]
		cursor := "  "
		style := m.st.normalItem
		if i == m.cursor {
			cursor = "> "
			style = m.st.selectedItem
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-28s %-12s %-16s",
			cursor, truncate(c.FullName(), 28), truncate(c.RelationType, 12), truncate(c.MobileNumber, 16))))
	}

	rows = append(rows, "")
	help := "  n: new  e: edit  enter: profile  l: log  r: remind  p: vault  /: search  f: filter"
	if !m.private {
		help += "  i: import"
	}
	rows = append(rows, m.st.muted.Render(help))

	return m.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// window returns the slice bounds of at most size rows keeping cursor visible.
func window(cursor, n, size int) (int, int) {
	if size < 1 {
		size = 1
	}
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
