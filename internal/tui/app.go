package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/bondvault/internal/attach"
	"github.com/sadopc/bondvault/internal/calendar"
	"github.com/sadopc/bondvault/internal/calllog"
	"github.com/sadopc/bondvault/internal/export"
	"github.com/sadopc/bondvault/internal/store"
	"github.com/sadopc/bondvault/internal/theme"
	"github.com/sadopc/bondvault/internal/vault"
)

type exportFormat int

const (
	exportBackup exportFormat = iota
	exportContactsCSV
)

var exportNames = []string{"Backup (JSON)", "Contacts (CSV)"}

type exportRequestMsg struct {
	format exportFormat
}

// Deps are the services the TUI drives. Store, Gate and Themes are required.
type Deps struct {
	Store     *store.Store
	Gate      *vault.Gate
	Themes    *theme.Provider
	Files     *attach.Store
	Calendar  calendar.Writer
	CallLog   *calllog.Syncer
	ExportDir string
	Logger    *zap.Logger
}

// App is the root Bubble Tea model.
type App struct {
	store     *store.Store
	gate      *vault.Gate
	themes    *theme.Provider
	calls     *calllog.Syncer
	exportDir string
	logger    *zap.Logger
	width     int
	height    int

	st          styles
	themeCh     <-chan theme.Theme
	unsubscribe func()

	activeView    viewState
	routes        []route
	showHelp      bool
	exportPicking bool
	exportCursor  int

	contacts    contactsModel
	timeline    timelineModel
	reminders   remindersModel
	vault       vaultModel
	settings    settingsModel
	contactForm contactFormModel
	importer    importModel
	profile     profileModel
	logForm     logInteractionModel
	remindForm  reminderFormModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(d Deps) App {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.CallLog == nil {
		d.CallLog = calllog.New(nil, d.Store)
	}

	h := help.New()
	h.ShowAll = false

	st := newStyles(d.Themes.Current().Palette)
	ch, unsubscribe := d.Themes.Subscribe(1)

	return App{
		store:       d.Store,
		gate:        d.Gate,
		themes:      d.Themes,
		calls:       d.CallLog,
		exportDir:   d.ExportDir,
		logger:      d.Logger,
		st:          st,
		themeCh:     ch,
		unsubscribe: unsubscribe,
		activeView:  viewContacts,
		contacts:    newContactsModel(d.Store, st, false),
		timeline:    newTimelineModel(d.Store, st),
		reminders:   newRemindersModel(d.Store, st),
		vault:       newVaultModel(d.Store, d.Gate, st),
		settings:    newSettingsModel(d.Store, d.Themes, d.Gate, d.CallLog, st),
		contactForm: newContactFormModel(d.Store, d.Files, st),
		importer:    newImportModel(d.Store, st, d.Logger),
		profile:     newProfileModel(d.Store, d.Files, d.Logger, d.Gate.Unlocked, st),
		logForm:     newLogInteractionModel(d.Store, d.Files, st),
		remindForm:  newReminderFormModel(d.Store, d.Calendar, d.Logger, st),
		help:        h,
	}
}

// Close drops the theme subscription.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.contacts.refresh(),
		tickCmd(),
		waitForTheme(a.themeCh),
		a.autoSync(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForTheme(ch <-chan theme.Theme) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return themeChangedMsg{theme: t}
	}
}

// autoSync runs a call-log sync at startup when the preference is on.
func (a App) autoSync() tea.Cmd {
	s, calls, logger := a.store, a.calls, a.logger
	return func() tea.Msg {
		on, err := s.CallLogAutoSync()
		if err != nil {
			return errStatus("Load auto-sync", err)
		}
		if !on {
			return nil
		}
		if !calls.Available() {
			logger.Debug("call log auto-sync skipped", zap.Error(calllog.ErrUnavailable))
			return nil
		}
		return syncCallLog(calls)()
	}
}

func (a App) route() route {
	if len(a.routes) == 0 {
		return routeNone
	}
	return a.routes[len(a.routes)-1]
}

func (a App) push(r route) App {
	a.routes = append(append([]route(nil), a.routes...), r)
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.contacts.setSize(a.width, contentHeight)
		a.timeline.setSize(a.width, contentHeight)
		a.reminders.setSize(a.width, contentHeight)
		a.vault.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.contactForm.setSize(a.width, contentHeight)
		a.importer.setSize(a.width, contentHeight)
		a.profile.setSize(a.width, contentHeight)
		a.logForm.setSize(a.width, contentHeight)
		a.remindForm.setSize(a.width, contentHeight)
		return a, nil

	case themeChangedMsg:
		a = a.applyTheme(msg.theme)
		return a, waitForTheme(a.themeCh)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Typing anywhere counts as vault activity, forms included.
		if a.gate.Unlocked() {
			a.vault.idle.recordActivity(time.Now())
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// Modal screens take every key.
		if a.route() != routeNone {
			return a.updateRoute(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isCapturing(msg) {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewContacts)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTimeline)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewReminders)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewVault)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The vault watches for inactivity on every tick.
		var cmd tea.Cmd
		a.vault, cmd = a.vault.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		if msg.isError {
			a.logger.Warn("operation failed", zap.String("status", msg.text), zap.Error(msg.err))
		}
		return a, nil

	case switchViewMsg:
		return a.switchTo(msg.view)

	case exportRequestMsg:
		return a, a.doExport(msg.format)

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		if msg.skipped > 0 {
			a.status += fmt.Sprintf(" (%d vault contacts left out while locked)", msg.skipped)
		}
		a.statusErr = false
		a.exportPicking = false
		a.logger.Info("export written", zap.String("path", msg.path))
		return a, nil

	// Navigation.

	case openContactFormMsg:
		a = a.push(routeContactForm)
		var cmd tea.Cmd
		a.contactForm, cmd = a.contactForm.open(msg)
		return a, cmd

	case openImportMsg:
		a = a.push(routeImport)
		var cmd tea.Cmd
		a.importer, cmd = a.importer.open()
		return a, cmd

	case openProfileMsg:
		a = a.push(routeProfile)
		var cmd tea.Cmd
		a.profile, cmd = a.profile.open(msg.id, a.gate.Unlocked())
		return a, cmd

	case openLogMsg:
		a = a.push(routeLogInteraction)
		var cmd tea.Cmd
		a.logForm, cmd = a.logForm.open(msg.contact)
		return a, cmd

	case openReminderMsg:
		a = a.push(routeAddReminder)
		var cmd tea.Cmd
		a.remindForm, cmd = a.remindForm.open(msg.contactID)
		return a, cmd

	case closeRouteMsg:
		return a.closeRoute(msg)

	case vaultLockedMsg:
		if a.showsPrivate() {
			a.routes = nil
			return a, a.refreshCurrentView()
		}
		return a, nil

	// Data.

	case contactsLoadedMsg:
		var cmd1, cmd2 tea.Cmd
		a.contacts, cmd1 = a.contacts.update(msg)
		a.vault, cmd2 = a.vault.update(msg)
		return a, tea.Batch(cmd1, cmd2)

	case timelineLoadedMsg:
		var cmd tea.Cmd
		a.timeline, cmd = a.timeline.update(msg)
		return a, cmd

	case remindersLoadedMsg:
		var cmd tea.Cmd
		a.reminders, cmd = a.reminders.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case autoLockMsg, biometricResultMsg:
		var cmd tea.Cmd
		a.vault, cmd = a.vault.update(msg)
		return a, cmd

	case profileLoadedMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.update(msg)
		return a, cmd

	case candidatesLoadedMsg:
		var cmd tea.Cmd
		a.importer, cmd = a.importer.update(msg)
		return a, cmd

	case reminderContactsMsg:
		var cmd tea.Cmd
		a.remindForm, cmd = a.remindForm.update(msg)
		return a, cmd
	}

	if a.route() != routeNone {
		return a.updateRoute(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) closeRoute(msg closeRouteMsg) (tea.Model, tea.Cmd) {
	if len(a.routes) > 0 {
		a.routes = a.routes[:len(a.routes)-1]
	}
	if msg.err != nil {
		text := fmt.Sprintf("%s: %v", msg.status, msg.err)
		a.status = text
		a.statusErr = true
		a.logger.Warn("operation failed", zap.String("status", msg.status), zap.Error(msg.err))
	} else if msg.status != "" {
		a.status = msg.status
		a.statusErr = false
	}

	if a.route() == routeProfile {
		return a, a.profile.reload()
	}
	cmds := []tea.Cmd{a.refreshCurrentView()}
	if a.activeView != viewContacts {
		cmds = append(cmds, a.contacts.refresh())
	}
	return a, tea.Batch(cmds...)
}

// showsPrivate reports whether any open modal screen holds a vault contact.
func (a App) showsPrivate() bool {
	for _, r := range a.routes {
		switch r {
		case routeProfile:
			if c := a.profile.data.contact; c != nil && c.IsPrivate {
				return true
			}
		case routeContactForm:
			if a.contactForm.fields.Private {
				return true
			}
		case routeLogInteraction:
			if a.logForm.contact.IsPrivate {
				return true
			}
		case routeAddReminder:
			if a.remindForm.private {
				return true
			}
		}
	}
	return false
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewVault {
		var cmd tea.Cmd
		a.vault, cmd = a.vault.enter()
		return a, cmd
	}
	return a, a.refreshCurrentView()
}

func (a App) applyTheme(t theme.Theme) App {
	st := newStyles(t.Palette)
	a.st = st
	a.contacts.setStyles(st)
	a.timeline.setStyles(st)
	a.reminders.setStyles(st)
	a.vault.setStyles(st)
	a.settings.setStyles(st)
	a.contactForm.setStyles(st)
	a.importer.setStyles(st)
	a.profile.setStyles(st)
	a.logForm.setStyles(st)
	a.remindForm.setStyles(st)
	return a
}

func (a App) updateRoute(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route() {
	case routeContactForm:
		a.contactForm, cmd = a.contactForm.update(msg)
	case routeImport:
		a.importer, cmd = a.importer.update(msg)
	case routeProfile:
		a.profile, cmd = a.profile.update(msg)
	case routeLogInteraction:
		a.logForm, cmd = a.logForm.update(msg)
	case routeAddReminder:
		a.remindForm, cmd = a.remindForm.update(msg)
	}
	return a, cmd
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewContacts:
		a.contacts, cmd = a.contacts.update(msg)
	case viewTimeline:
		a.timeline, cmd = a.timeline.update(msg)
	case viewReminders:
		a.reminders, cmd = a.reminders.update(msg)
	case viewVault:
		a.vault, cmd = a.vault.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing(msg tea.KeyMsg) bool {
	switch a.activeView {
	case viewContacts:
		return a.contacts.capturing()
	case viewTimeline:
		return a.timeline.capturing()
	case viewVault:
		return a.vault.capturesKey(msg)
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewContacts:
		return a.contacts.refresh()
	case viewTimeline:
		return a.timeline.refresh()
	case viewReminders:
		return a.reminders.refresh()
	case viewVault:
		if a.vault.unlocked() {
			return a.vault.list.refresh()
		}
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.route() {
	case routeContactForm:
		content = a.contactForm.view()
	case routeImport:
		content = a.importer.view()
	case routeProfile:
		content = a.profile.view()
	case routeLogInteraction:
		content = a.logForm.view()
	case routeAddReminder:
		content = a.remindForm.view()
	default:
		switch a.activeView {
		case viewContacts:
			content = a.contacts.view()
		case viewTimeline:
			content = a.timeline.view()
		case viewReminders:
			content = a.reminders.view()
		case viewVault:
			content = a.vault.view()
		case viewSettings:
			content = a.settings.view()
		}
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, a.st.activeTab.Render(name))
		} else {
			tabs = append(tabs, a.st.inactiveTab.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(a.st.palette.Primary).Render("bondvault")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return a.st.header.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := a.st.muted
		if a.statusErr {
			style = a.st.err
		}
		status = style.Render(" " + a.status)
	}

	// Vault indicator in footer
	vaultInfo := a.st.muted.Render(" ○ vault locked")
	if a.gate.Unlocked() {
		vaultInfo = a.st.success.Render(" ● vault open")
	}

	left := a.st.footer.Render(helpView)
	right := vaultInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := a.st.title.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, a.st.muted.Render("to "+a.exportDir))
	rows = append(rows, "")
	for i, f := range exportNames {
		cursor := "  "
		style := a.st.normalItem
		if i == a.exportCursor {
			cursor = "> "
			style = a.st.selectedItem
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, a.st.muted.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return a.st.activePanel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportNames)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormat(a.exportCursor))
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format exportFormat) tea.Cmd {
	s, dir, unlocked := a.store, a.exportDir, a.gate.Unlocked()
	return func() tea.Msg {
		switch format {
		case exportContactsCSV:
			contacts, err := s.ListAllContacts()
			if err != nil {
				return errStatus("CSV export", err)
			}
			var skipped int
			if !unlocked {
				contacts, skipped = publicOnly(contacts)
			}
			path := filepath.Join(dir, export.ContactsFileName)
			if err := export.ContactsToCSV(contacts, path); err != nil {
				return errStatus("CSV export", err)
			}
			return exportDoneMsg{path: path, skipped: skipped}
		default:
			path, err := export.WriteBackup(s, dir)
			if err != nil {
				return errStatus("Backup", err)
			}
			return exportDoneMsg{path: path}
		}
	}
}

func publicOnly(list []store.Contact) ([]store.Contact, int) {
	out := make([]store.Contact, 0, len(list))
	for _, c := range list {
		if !c.IsPrivate {
			out = append(out, c)
		}
	}
	return out, len(list) - len(out)
}
