package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bondvault/internal/search"
	"github.com/sadopc/bondvault/internal/store"
)

// activityDays is the span of the activity chart above the timeline.
const activityDays = 14

var timelineFilters = func() []string {
	out := []string{search.All}
	for _, t := range store.InteractionTypes {
		out = append(out, string(t))
	}
	return out
}()

type timelineModel struct {
	store  *store.Store
	st     styles
	width  int
	height int

	entries  []store.TimelineEntry
	filtered []store.TimelineEntry
	counts   []store.DayCount
	typ      string
	cursor   int

	query     textinput.Model
	searching bool

	chart barchart.Model
}

func newTimelineModel(s *store.Store, st styles) timelineModel {
	q := textinput.New()
	q.Placeholder = "notes or name"
	q.Prompt = "/ "
	q.CharLimit = 64
	return timelineModel{
		store: s,
		st:    st,
		typ:   search.All,
		query: q,
		chart: barchart.New(60, 8),
	}
}

func (m *timelineModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.buildChart()
}

func (m *timelineModel) setStyles(st styles) {
	m.st = st
	m.buildChart()
}

func (m timelineModel) capturing() bool {
	return m.searching
}

// activityRange is the UTC day window ending today.
func activityRange(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, 1-activityDays), today.AddDate(0, 0, 1)
}

func (m timelineModel) refresh() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		entries, err := s.ListTimeline()
		if err != nil {
			return errStatus("Load timeline", err)
		}
		from, to := activityRange(time.Now())
		counts, err := s.CountInteractionsByDay(from, to)
		if err != nil {
			return errStatus("Load activity", err)
		}
		return timelineLoadedMsg{entries: entries, counts: counts}
	}
}

func (m *timelineModel) apply() {
	m.filtered = search.Timeline(m.entries, m.query.Value(), m.typ)
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m timelineModel) update(msg tea.Msg) (timelineModel, tea.Cmd) {
	switch msg := msg.(type) {
	case timelineLoadedMsg:
		m.entries = msg.entries
		m.counts = msg.counts
		m.apply()
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
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
		case key.Matches(msg, keys.Filter):
			m.typ = nextOption(timelineFilters, m.typ)
			m.apply()
		case key.Matches(msg, keys.Back):
			m.query.SetValue("")
			m.typ = search.All
			m.apply()
		case key.Matches(msg, keys.Enter):
			if m.cursor < len(m.filtered) {
				id := fmt.Sprint(m.filtered[m.cursor].ContactID)
				return m, func() tea.Msg { return openProfileMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m *timelineModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 6
	if m.height > 30 {
		chartHeight = 8
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	byDay := make(map[string]int, len(m.counts))
	for _, c := range m.counts {
		byDay[c.Date] = c.Count
	}

	from, to := activityRange(time.Now())
	barStyle := lipgloss.NewStyle().Foreground(m.st.palette.Primary)
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		bars = append(bars, barchart.BarData{
			Label: d.Format("02"),
			Values: []barchart.BarValue{{
				Name:  "interactions",
				Value: float64(byDay[d.Format("2006-01-02")]),
				Style: barStyle,
			}},
		})
	}
	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m timelineModel) view() string {
	w := m.width - 4

	total := 0
	for _, c := range m.counts {
		total += c.Count
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		m.st.title.Render("Timeline"), "  ",
		m.st.muted.Render(fmt.Sprintf("%d in the last %d days", total, activityDays)),
	)

	var rows []string
	if m.searching || m.query.Value() != "" {
		rows = append(rows, m.query.View())
	}
	rows = append(rows, m.st.muted.Render("Type: ")+m.st.accent.Render(m.typ), "")

	switch {
	case len(m.entries) == 0:
		rows = append(rows, m.st.muted.Render("No interactions yet. Log one from a contact."))
	case len(m.filtered) == 0:
		rows = append(rows, m.st.muted.Render("No interactions match."))
	default:
		start, end := window(m.cursor, len(m.filtered), m.height-22)
		for i := start; i < end; i++ {
			e := m.filtered[i]
			cursor := "  "
			style := m.st.normalItem
			if i == m.cursor {
				cursor = "> "
				style = m.st.selectedItem
			}
			dot := lipgloss.NewStyle().Foreground(m.st.interactionColor(string(e.Type))).Render("●")
			rows = append(rows, cursor+dot+" "+style.Render(fmt.Sprintf("%-18s %-20s %s",
				formatDateTime(e.Date), truncate(e.ContactName(), 20), truncate(e.Notes, max(10, w-50)))))
		}
	}

	rows = append(rows, "", m.st.muted.Render("  /: search  f: type  enter: profile  esc: clear"))

	return m.st.panel.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", strings.Join(rows, "\n"),
		),
	)
}
