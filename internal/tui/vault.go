package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/vault"
)

const biometricTimeout = 30 * time.Second

type autoLockMsg struct {
	timeout time.Duration
}

// vaultModel is the PIN pad in front of the private contact list.
type vaultModel struct {
	store  *store.Store
	gate   *vault.Gate
	st     styles
	width  int
	height int

	list    contactsModel
	idle    idleLock
	message string
	failed  bool
	bio     bool // biometric prompt on offer
}

func newVaultModel(s *store.Store, gate *vault.Gate, st styles) vaultModel {
	return vaultModel{
		store: s,
		gate:  gate,
		st:    st,
		list:  newContactsModel(s, st, true),
		idle:  newIdleLock(0),
	}
}

func (m *vaultModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.list.setSize(w, h)
}

func (m *vaultModel) setStyles(st styles) {
	m.st = st
	m.list.setStyles(st)
}

func (m vaultModel) unlocked() bool {
	return m.gate.Unlocked()
}

// capturesKey reports whether the PIN pad or the list search wants msg ahead
// of the global bindings.
func (m vaultModel) capturesKey(msg tea.KeyMsg) bool {
	if m.unlocked() {
		return m.list.capturing()
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyEnter, tea.KeyEsc:
		return true
	case tea.KeyRunes:
		r := msg.Runes
		return len(r) == 1 && r[0] >= '0' && r[0] <= '9'
	}
	return false
}

// enter runs when the tab becomes active.
func (m vaultModel) enter() (vaultModel, tea.Cmd) {
	cmds := []tea.Cmd{m.loadAutoLock()}
	m.bio = m.gate.OfferBiometric(context.Background())
	if m.unlocked() {
		cmds = append(cmds, m.list.refresh())
	} else if m.bio {
		cmds = append(cmds, m.tryBiometric())
	}
	return m, tea.Batch(cmds...)
}

func (m vaultModel) loadAutoLock() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		secs, err := s.VaultAutoLock()
		if err != nil {
			return errStatus("Load auto-lock", err)
		}
		return autoLockMsg{timeout: time.Duration(secs) * time.Second}
	}
}

func (m vaultModel) tryBiometric() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), biometricTimeout)
		defer cancel()
		ok, err := gate.TryBiometric(ctx)
		return biometricResultMsg{ok: ok, err: err}
	}
}

func (m vaultModel) lock(reason string) (vaultModel, tea.Cmd) {
	if err := m.gate.Lock(); err != nil {
		return m, func() tea.Msg { return errStatus("Lock vault", err) }
	}
	m.list.all = nil
	m.list.apply()
	m.message = reason
	m.failed = false
	m.bio = m.gate.OfferBiometric(context.Background())
	return m, tea.Batch(
		func() tea.Msg { return vaultLockedMsg{} },
		func() tea.Msg { return statusMsg{text: reason} },
	)
}

func (m vaultModel) opened() (vaultModel, tea.Cmd) {
	m.message = ""
	m.failed = false
	m.idle.recordActivity(time.Now())
	return m, tea.Batch(m.list.refresh(), func() tea.Msg { return statusMsg{text: "Vault unlocked"} })
}

func (m vaultModel) update(msg tea.Msg) (vaultModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.unlocked() && m.idle.expired(time.Time(msg)) {
			return m.lock("Vault locked after inactivity")
		}
		return m, nil

	case autoLockMsg:
		m.idle.setTimeout(msg.timeout)
		return m, nil

	case biometricResultMsg:
		if msg.ok {
			return m.opened()
		}
		if msg.err != nil {
			m.message = "Biometric check failed. Use your PIN."
			m.failed = true
		}
		return m, nil

	case contactsLoadedMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.unlocked() {
			m.idle.recordActivity(time.Now())
			if !m.list.capturing() && key.Matches(msg, keys.Lock) {
				return m.lock("Vault locked")
			}
			var cmd tea.Cmd
			m.list, cmd = m.list.update(msg)
			return m, cmd
		}
		return m.updatePad(msg)
	}
	return m, nil
}

func (m vaultModel) updatePad(msg tea.KeyMsg) (vaultModel, tea.Cmd) {
	var (
		out vault.Outcome
		err error
	)
	switch msg.Type {
	case tea.KeyBackspace:
		m.gate.Backspace()
		return m, nil
	case tea.KeyEsc:
		m.gate.Clear()
		return m, nil
	case tea.KeyEnter:
		out, err = m.gate.Submit()
	case tea.KeyRunes:
		if key.Matches(msg, keys.Bio) {
			if m.bio {
				return m, m.tryBiometric()
			}
			return m, nil
		}
		if len(msg.Runes) != 1 {
			return m, nil
		}
		out, err = m.gate.Press(msg.Runes[0])
	default:
		return m, nil
	}
	if err != nil {
		m.message = "Could not check the PIN"
		m.failed = true
		return m, func() tea.Msg { return errStatus("Vault", err) }
	}

	switch out {
	case vault.OutcomeConfirm:
		m.message = "Enter the same PIN again to confirm"
		m.failed = false
	case vault.OutcomeMismatch:
		m.message = "PINs did not match. Choose a new PIN."
		m.failed = true
	case vault.OutcomeWrongPIN:
		m.message = "Wrong PIN"
		m.failed = true
	case vault.OutcomeUnlocked:
		return m.opened()
	}
	return m, nil
}

func (m vaultModel) view() string {
	if m.unlocked() {
		return m.list.view()
	}

	w := m.width - 4
	var prompt string
	switch m.gate.Mode() {
	case vault.ModeSetupCreate:
		prompt = "Choose a 4-digit PIN for your private vault"
	case vault.ModeSetupConfirm:
		prompt = "Confirm your PIN"
	default:
		prompt = "Enter your PIN"
	}

	entered := m.gate.Entered()
	var dots []string
	for i := 0; i < vault.PINLength; i++ {
		if i < entered {
			dots = append(dots, m.st.pinDigit.Render("●"))
		} else {
			dots = append(dots, m.st.pinEmpty.Render("○"))
		}
	}

	message := ""
	if m.message != "" {
		if m.failed {
			message = m.st.err.Render(m.message)
		} else {
			message = m.st.accent.Render(m.message)
		}
	}

	controls := "0-9: digit  backspace: delete  esc: clear"
	if m.bio {
		controls += "  b: biometric"
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		m.st.title.Render("Private Vault"),
		"",
		m.st.subtitle.Render(prompt),
		"",
		strings.Join(dots, "  "),
		"",
		message,
		"",
		m.st.muted.Render(controls),
	)
	return m.st.activePanel.Width(w).Align(lipgloss.Center).Render(content)
}

func formatAutoLock(secs int) string {
	if secs <= 0 {
		return "off"
	}
	if secs%60 == 0 {
		return fmt.Sprintf("%d min", secs/60)
	}
	return fmt.Sprintf("%d s", secs)
}
