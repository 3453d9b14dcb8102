package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/calllog"
	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/theme"
	"github.com/sadopc/bondvault/internal/vault"
)

type settingItem int

const (
	itemTheme settingItem = iota
	itemBiometric
	itemAutoSync
	itemSyncNow
	itemAutoLock
	itemChangePIN
	itemBackup
	itemCSV
)

var settingItems = []settingItem{
	itemTheme, itemBiometric, itemAutoSync, itemSyncNow,
	itemAutoLock, itemChangePIN, itemBackup, itemCSV,
}

// switchViewMsg moves the app to another tab.
type switchViewMsg struct {
	view viewState
}

type settingsModel struct {
	store    *store.Store
	themes   *theme.Provider
	gate     *vault.Gate
	calls    *calllog.Syncer
	st       styles
	width    int
	height   int
	cursor   int
	settings []store.Setting

	bioEnabled   bool
	autoSync     bool
	lastSync     int64
	autoLockSecs int

	formActive bool
	form       *huh.Form
	formItem   settingItem

	// Form values as pointers (survive value copies)
	autoLockMin *string
	currentPIN  *string
}

func newSettingsModel(s *store.Store, themes *theme.Provider, gate *vault.Gate, calls *calllog.Syncer, st styles) settingsModel {
	al, pin := "", ""
	return settingsModel{
		store:       s,
		themes:      themes,
		gate:        gate,
		calls:       calls,
		st:          st,
		autoLockMin: &al,
		currentPIN:  &pin,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) setStyles(st styles) {
	s.st = st
}

type settingValues struct {
	bioEnabled   bool
	autoSync     bool
	lastSync     int64
	autoLockSecs int
}

type settingsDataMsg struct {
	settings []store.Setting
	loaded   settingValues
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		loaded, err := loadSettings(st)
		if err != nil {
			return errStatus("Load settings", err)
		}
		all, err := st.GetAllSettings()
		if err != nil {
			return errStatus("Load settings", err)
		}
		return settingsDataMsg{settings: all, loaded: loaded}
	}
}

func loadSettings(s *store.Store) (settingValues, error) {
	var (
		out settingValues
		err error
	)
	if out.bioEnabled, err = s.BiometricEnabled(); err != nil {
		return out, err
	}
	if out.autoSync, err = s.CallLogAutoSync(); err != nil {
		return out, err
	}
	if out.lastSync, err = s.LastCallLogSync(); err != nil {
		return out, err
	}
	if out.autoLockSecs, err = s.VaultAutoLock(); err != nil {
		return out, err
	}
	return out, nil
}

// syncCallLog runs one sync and reports the outcome as a status line.
func syncCallLog(calls *calllog.Syncer) tea.Cmd {
	return func() tea.Msg {
		res, err := calls.Sync(context.Background())
		if errors.Is(err, calllog.ErrUnavailable) {
			return statusMsg{text: "Call log sync is not available on this device", isError: true}
		}
		if err != nil {
			return errStatus("Call log sync", err)
		}
		text := fmt.Sprintf("Synced %d calls", res.Synced)
		if res.Errors > 0 {
			text += fmt.Sprintf(", %d failed", res.Errors)
		}
		return statusMsg{text: text}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.bioEnabled = msg.loaded.bioEnabled
		s.autoSync = msg.loaded.autoSync
		s.lastSync = msg.loaded.lastSync
		s.autoLockSecs = msg.loaded.autoLockSecs
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keys.Down):
			if s.cursor < len(settingItems)-1 {
				s.cursor++
			}
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Toggle):
			return s.activate(settingItems[s.cursor])
		}
	}
	return s, nil
}

func (s settingsModel) activate(item settingItem) (settingsModel, tea.Cmd) {
	st := s.store
	switch item {
	case itemTheme:
		themes := s.themes
		next := theme.Modes[0]
		for i, m := range theme.Modes {
			if m == themes.Current().Mode {
				next = theme.Modes[(i+1)%len(theme.Modes)]
			}
		}
		return s, func() tea.Msg {
			// The provider publishes the new theme to the app.
			if _, err := themes.Set(next); err != nil {
				return errStatus("Theme", err)
			}
			return statusMsg{text: "Theme: " + string(next)}
		}

	case itemBiometric:
		enabled := !s.bioEnabled
		return s, tea.Sequence(func() tea.Msg {
			if err := st.SetBiometricEnabled(enabled); err != nil {
				return errStatus("Biometric", err)
			}
			return nil
		}, s.refresh())

	case itemAutoSync:
		enabled := !s.autoSync
		return s, tea.Sequence(func() tea.Msg {
			if err := st.SetCallLogAutoSync(enabled); err != nil {
				return errStatus("Auto-sync", err)
			}
			return nil
		}, s.refresh())

	case itemSyncNow:
		return s, tea.Sequence(syncCallLog(s.calls), s.refresh())

	case itemAutoLock:
		*s.autoLockMin = strconv.Itoa(s.autoLockSecs / 60)
		s.formItem = itemAutoLock
		s.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Lock the vault after idle minutes (0 = never)").
					Value(s.autoLockMin).
					Validate(validMinutes),
			),
		).WithShowHelp(true).WithShowErrors(true)
		s.formActive = true
		return s, s.form.Init()

	case itemChangePIN:
		*s.currentPIN = ""
		s.formItem = itemChangePIN
		s.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Current PIN").
					EchoMode(huh.EchoModePassword).
					CharLimit(vault.PINLength).
					Value(s.currentPIN),
			),
		).WithShowHelp(true).WithShowErrors(true)
		s.formActive = true
		return s, s.form.Init()

	case itemBackup:
		return s, func() tea.Msg { return exportRequestMsg{format: exportBackup} }

	case itemCSV:
		return s, func() tea.Msg { return exportRequestMsg{format: exportContactsCSV} }
	}
	return s, nil
}

func validMinutes(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return errors.New("enter a whole number of minutes")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		switch s.formItem {
		case itemAutoLock:
			return s, tea.Sequence(s.saveAutoLock(*s.autoLockMin), s.refresh())
		case itemChangePIN:
			return s, s.beginChange(*s.currentPIN)
		}
	}

	return s, cmd
}

func (s settingsModel) saveAutoLock(minutes string) tea.Cmd {
	st := s.store
	return func() tea.Msg {
		n, _ := strconv.Atoi(strings.TrimSpace(minutes))
		if err := st.SetVaultAutoLock(n * 60); err != nil {
			return errStatus("Auto-lock", err)
		}
		return statusMsg{text: "Vault auto-lock: " + formatAutoLock(n*60)}
	}
}

// beginChange verifies the current PIN and sends the user to the vault tab
// to choose a new one.
func (s settingsModel) beginChange(current string) tea.Cmd {
	gate := s.gate
	return func() tea.Msg {
		if err := gate.BeginChange(current); err != nil {
			if errors.Is(err, vault.ErrWrongPIN) {
				return statusMsg{text: "Wrong PIN, passcode unchanged", isError: true}
			}
			return errStatus("Change passcode", err)
		}
		return switchViewMsg{view: viewVault}
	}
}

func (s settingsModel) itemLabel(item settingItem) (string, string) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	switch item {
	case itemTheme:
		return "Theme", string(s.themes.Current().Mode)
	case itemBiometric:
		return "Biometric unlock", onOff(s.bioEnabled)
	case itemAutoSync:
		return "Call log auto-sync", onOff(s.autoSync)
	case itemSyncNow:
		last := "never"
		if s.lastSync > 0 {
			last = formatDateTime(time.Unix(s.lastSync, 0))
		}
		return "Sync call log now", "last: " + last
	case itemAutoLock:
		return "Vault auto-lock", formatAutoLock(s.autoLockSecs)
	case itemChangePIN:
		return "Change passcode", ""
	case itemBackup:
		return "Export backup (JSON)", ""
	case itemCSV:
		return "Export contacts (CSV)", ""
	}
	return "", ""
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := s.st.title.Render("Settings")

	if s.formActive && s.form != nil {
		return s.st.panel.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")

	for i, item := range settingItems {
		label, value := s.itemLabel(item)
		cursor := "  "
		style := s.st.normalItem
		if i == s.cursor {
			cursor = "> "
			style = s.st.selectedItem
		}
		rows = append(rows, cursor+style.Width(26).Render(label)+" "+s.st.highlight.Render(value))
	}

	rows = append(rows, "", s.st.subtitle.Render("Stored values"))
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		rows = append(rows, fmt.Sprintf("  %s %s", s.st.muted.Render(label), s.st.muted.Render(setting.Value)))
	}

	rows = append(rows, "", s.st.muted.Render("  enter: change"))
	return s.st.panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
