package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/store"
)

// fetchProfile loads a contact and everything attached to it. The queries run
// concurrently and the first failure wins.
func fetchProfile(s *store.Store, id int64) (profileLoadedMsg, error) {
	var (
		out profileLoadedMsg
		g   errgroup.Group
	)
	g.Go(func() error {
		c, err := s.GetContact(id)
		out.contact = c
		return err
	})
	g.Go(func() error {
		list, err := s.ListInteractions(id)
		out.interactions = list
		return err
	})
	g.Go(func() error {
		list, err := s.ListMedia(id)
		out.media = list
		return err
	})
	g.Go(func() error {
		list, err := s.ListContactReminders(id)
		out.reminders = list
		return err
	})
	if err := g.Wait(); err != nil {
		return profileLoadedMsg{}, err
	}
	if out.contact == nil {
		return profileLoadedMsg{}, errContactNotFound
	}
	return out, nil
}

// loadProfile parses the route id. A malformed id never reaches the store.
// Private contacts only load while the vault is open.
func loadProfile(s *store.Store, rawID string, vaultOpen bool) tea.Cmd {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return func() tea.Msg {
			return closeRouteMsg{status: "Open profile", err: fmt.Errorf("invalid contact id %q", rawID)}
		}
	}
	return func() tea.Msg {
		msg, err := fetchProfile(s, id)
		if err == nil && msg.contact.IsPrivate && !vaultOpen {
			err = errVaultLocked
		}
		if err != nil {
			return closeRouteMsg{status: "Load profile", err: err}
		}
		return msg
	}
}

// purgeContact removes a contact with its history and then the attachment
// files its media and profile photo pointed at.
func purgeContact(s *store.Store, files *attach.Store, logger *zap.Logger, c store.Contact, media []store.Media) error {
	ok, err := s.PurgeContact(c.ID)
	if err != nil {
		return err
	}
	if !ok {
		return errContactNotFound
	}
	if files == nil {
		return nil
	}
	for _, md := range media {
		if err := files.Remove(md.URI); err != nil {
			logger.Warn("remove attachment", zap.Int64("media_id", md.ID), zap.Error(err))
		}
	}
	if c.ProfileImageURI != "" {
		if err := files.Remove(c.ProfileImageURI); err != nil {
			logger.Warn("remove profile photo", zap.Int64("contact_id", c.ID), zap.Error(err))
		}
	}
	return nil
}

type profileModel struct {
	store  *store.Store
	files  *attach.Store
	logger *zap.Logger
	st     styles
	width  int
	height int

	vaultOpen     func() bool
	loading       bool
	data          profileLoadedMsg
	confirmDelete bool
}

func newProfileModel(s *store.Store, files *attach.Store, logger *zap.Logger, vaultOpen func() bool, st styles) profileModel {
	return profileModel{store: s, files: files, logger: logger, vaultOpen: vaultOpen, st: st}
}

func (m *profileModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *profileModel) setStyles(st styles) {
	m.st = st
}

func (m profileModel) open(id string, vaultOpen bool) (profileModel, tea.Cmd) {
	m.loading = true
	m.confirmDelete = false
	m.data = profileLoadedMsg{}
	return m, loadProfile(m.store, id, vaultOpen)
}

func (m profileModel) reload() tea.Cmd {
	if m.data.contact == nil {
		return nil
	}
	return loadProfile(m.store, strconv.FormatInt(m.data.contact.ID, 10), m.vaultOpen())
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		m.data = msg
		return m, nil

	case tea.KeyMsg:
		if m.data.contact == nil {
			if key.Matches(msg, keys.Back) {
				return m, func() tea.Msg { return closeRouteMsg{} }
			}
			return m, nil
		}
		c := *m.data.contact

		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() != "y" {
				return m, nil
			}
			s, files, logger, media := m.store, m.files, m.logger, m.data.media
			return m, func() tea.Msg {
				if err := purgeContact(s, files, logger, c, media); err != nil {
					return closeRouteMsg{status: "Delete contact", err: err}
				}
				return closeRouteMsg{status: "Deleted " + c.FullName()}
			}
		}

		switch {
		case key.Matches(msg, keys.Back):
			return m, func() tea.Msg { return closeRouteMsg{} }
		case key.Matches(msg, keys.Log):
			return m, func() tea.Msg { return openLogMsg{contact: c} }
		case key.Matches(msg, keys.Remind):
			id := c.ID
			return m, func() tea.Msg { return openReminderMsg{contactID: &id} }
		case key.Matches(msg, keys.Edit):
			return m, func() tea.Msg { return openContactFormMsg{contact: &c, private: c.IsPrivate} }
		case key.Matches(msg, keys.Private):
			s := m.store
			toggle := func() tea.Msg {
				if err := s.SetContactPrivate(c.ID, !c.IsPrivate); err != nil {
					return errStatus("Move contact", err)
				}
				return statusMsg{text: "Updated " + c.FullName()}
			}
			return m, tea.Sequence(toggle, m.reload())
		case key.Matches(msg, keys.Delete):
			m.confirmDelete = true
		}
	}
	return m, nil
}

func (m profileModel) view() string {
	w := m.width - 4
	if m.loading || m.data.contact == nil {
		return m.st.panel.Width(w).Render(m.st.muted.Render("Loading profile..."))
	}
	c := m.data.contact

	name := m.st.title.Render(c.FullName())
	if c.IsPrivate {
		name += " " + m.st.warning.Render("[private]")
	}

	details := []string{
		name,
		m.st.accent.Render(c.RelationType),
		"",
		m.st.muted.Render("Phone:    ") + orDash(c.MobileNumber),
		m.st.muted.Render("Email:    ") + orDash(c.Email),
		m.st.muted.Render("Birthday: ") + orDash(c.Birthday),
		m.st.muted.Render("Added:    ") + formatDate(c.CreatedAt),
	}
	if c.ProfileImageURI != "" {
		details = append(details, m.st.muted.Render("Photo:    ")+filepath.Base(c.ProfileImageURI))
	}
	if strings.TrimSpace(c.Notes) != "" {
		details = append(details, "", truncate(c.Notes, w-4))
	}

	var hist []string
	hist = append(hist, m.st.title.Render(fmt.Sprintf("Interactions (%d)", len(m.data.interactions))))
	if len(m.data.interactions) == 0 {
		hist = append(hist, m.st.muted.Render("Nothing logged yet. Press l to log one."))
	}
	limit := max(3, (m.height-20)/2)
	for i, it := range m.data.interactions {
		if i >= limit {
			hist = append(hist, m.st.muted.Render(fmt.Sprintf("  … %d more", len(m.data.interactions)-limit)))
			break
		}
		typ := lipgloss.NewStyle().Foreground(m.st.interactionColor(string(it.Type))).Render(fmt.Sprintf("%-8s", it.Type))
		hist = append(hist, fmt.Sprintf("  %s %s  %s", typ,
			m.st.muted.Render(formatDateTime(it.Date)), truncate(it.Notes, w-40)))
	}

	var extra []string
	extra = append(extra, m.st.title.Render(fmt.Sprintf("Media (%d)", len(m.data.media))))
	for i, md := range m.data.media {
		if i >= limit {
			break
		}
		extra = append(extra, fmt.Sprintf("  %-9s %s", md.Type, truncate(md.FileName, w-16)))
	}
	extra = append(extra, "", m.st.title.Render(fmt.Sprintf("Reminders (%d)", len(m.data.reminders))))
	for i, r := range m.data.reminders {
		if i >= limit {
			break
		}
		mark := "○"
		if r.Completed {
			mark = m.st.success.Render("✓")
		}
		extra = append(extra, fmt.Sprintf("  %s %s  %s", mark, m.st.muted.Render(formatDateTime(r.Date)), truncate(r.Title, w-30)))
	}

	footer := "  l: log  r: remind  e: edit  p: vault  d: delete  esc: back"
	if m.confirmDelete {
		footer = m.st.err.Render("  Delete this contact with all interactions and media? y to confirm")
	} else {
		footer = m.st.muted.Render(footer)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(details, "\n"),
		"",
		strings.Join(hist, "\n"),
		"",
		strings.Join(extra, "\n"),
		"",
		footer,
	)
	return m.st.activePanel.Width(w).Render(content)
}
