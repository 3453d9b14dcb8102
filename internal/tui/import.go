package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/importer"
	"github.com/sadopc/bondvault/internal/store"
)

type candidatesLoadedMsg struct {
	path       string
	candidates []importer.Candidate
}

// importModel picks an address-book CSV, then lets the user choose which
// rows become contacts.
type importModel struct {
	store  *store.Store
	st     styles
	logger *zap.Logger
	width  int
	height int

	form *huh.Form
	path *string

	source     string
	candidates []importer.Candidate
	selected   map[int]bool
	cursor     int
}

func newImportModel(s *store.Store, st styles, logger *zap.Logger) importModel {
	path := ""
	return importModel{store: s, st: st, logger: logger, path: &path}
}

func (m *importModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *importModel) setStyles(st styles) {
	m.st = st
}

func (m importModel) open() (importModel, tea.Cmd) {
	m.candidates = nil
	m.selected = map[int]bool{}
	m.cursor = 0
	m.source = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Address book CSV").
				Description("Columns: name, first_name, last_name, phone, email, birthday").
				Value(m.path).
				Validate(validCSVPath),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return m, m.form.Init()
}

func validCSVPath(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Errorf("path is required")
	}
	info, err := os.Stat(expandHome(p))
	if err != nil {
		return fmt.Errorf("cannot read %s", p)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", p)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func loadCandidates(path string) tea.Cmd {
	return func() tea.Msg {
		cands, err := importer.ParseFile(path)
		if err != nil {
			return closeRouteMsg{status: "Read address book", err: err}
		}
		return candidatesLoadedMsg{path: path, candidates: cands}
	}
}

func (m importModel) capturing() bool {
	return m.form != nil
}

func (m importModel) update(msg tea.Msg) (importModel, tea.Cmd) {
	if m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case candidatesLoadedMsg:
		m.source = msg.path
		m.candidates = msg.candidates
		m.selected = map[int]bool{}
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			return m, func() tea.Msg { return closeRouteMsg{} }
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			if len(m.candidates) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case msg.String() == "a":
			all := len(m.chosen()) < len(m.candidates)
			for i := range m.candidates {
				m.selected[i] = all
			}
		case key.Matches(msg, keys.Enter):
			chosen := m.chosen()
			if len(chosen) == 0 {
				return m, func() tea.Msg { return statusMsg{text: "Select at least one contact"} }
			}
			return m, m.importChosen(chosen)
		}
	}
	return m, nil
}

func (m importModel) updateForm(msg tea.Msg) (importModel, tea.Cmd) {
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
		return m, loadCandidates(expandHome(strings.TrimSpace(*m.path)))
	}
	return m, cmd
}

func (m importModel) chosen() []importer.Candidate {
	var out []importer.Candidate
	for i, c := range m.candidates {
		if m.selected[i] {
			out = append(out, c)
		}
	}
	return out
}

func (m importModel) importChosen(chosen []importer.Candidate) tea.Cmd {
	s, logger := m.store, m.logger
	return func() tea.Msg {
		res := importer.Import(s, chosen, logger)
		text := fmt.Sprintf("Imported %d contacts", res.Imported)
		if res.Failed > 0 {
			text += fmt.Sprintf(", %d failed", res.Failed)
		}
		return closeRouteMsg{status: text}
	}
}

func (m importModel) view() string {
	w := m.width - 4
	title := m.st.title.Render("Import Contacts")

	if m.form != nil {
		return m.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	var rows []string
	rows = append(rows, title+"  "+m.st.muted.Render(m.source))
	rows = append(rows, "")

	if len(m.candidates) == 0 {
		rows = append(rows, m.st.muted.Render("No rows with both a name and a phone number."))
		rows = append(rows, "", m.st.muted.Render("  esc: back"))
		return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, m.st.muted.Render(fmt.Sprintf("%d selected of %d", len(m.chosen()), len(m.candidates))))
	start, end := window(m.cursor, len(m.candidates), m.height-10)
	for i := start; i < end; i++ {
		c := m.candidates[i]
		cursor := "  "
		style := m.st.normalItem
		if i == m.cursor {
			cursor = "> "
			style = m.st.selectedItem
		}
		box := "[ ]"
		if m.selected[i] {
			box = m.st.success.Render("[x]")
		}
		rows = append(rows, cursor+box+" "+style.Render(fmt.Sprintf("%-28s %s", truncate(c.DisplayName(), 28), c.Phone)))
	}

	rows = append(rows, "")
	rows = append(rows, m.st.muted.Render("  space: select  a: all  enter: import  esc: cancel"))
	return m.st.panel.Width(w).Render(strings.Join(rows, "\n"))
}
