package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/store"
)

// theoryModel is the study-time screen. Unlike game sessions the
// running theory timer lives only in memory; quitting before saving
// loses it.
type theoryModel struct {
	store  *store.Store
	width  int
	height int

	running   bool
	startedAt time.Time
	now       time.Time

	sessions  []store.TheorySession
	weekTotal int64

	formActive bool
	form       *huh.Form
	formTopic  *string
	formNotes  *string
	pendingDur int64
}

func newTheoryModel(s *store.Store) theoryModel {
	topic, notes := "", ""
	return theoryModel{
		store:     s,
		now:       time.Now(),
		formTopic: &topic,
		formNotes: &notes,
	}
}

func (m *theoryModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type theoryDataMsg struct {
	sessions  []store.TheorySession
	weekTotal int64
}

func (m theoryModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := m.store.ListTheorySessions()
		cutoff := time.Now().AddDate(0, 0, -7)
		return theoryDataMsg{
			sessions:  sessions,
			weekTotal: report.TheoryTotalSince(sessions, cutoff),
		}
	}
}

func (m theoryModel) update(msg tea.Msg) (theoryModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case theoryDataMsg:
		m.sessions = msg.sessions
		m.weekTotal = msg.weekTotal
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if !m.running {
				m.running = true
				m.startedAt = time.Now()
			}
			return m, nil

		case key.Matches(msg, keys.Stop):
			if !m.running {
				return m, nil
			}
			m.running = false
			m.pendingDur = int64(time.Since(m.startedAt).Seconds())
			if m.pendingDur < 1 {
				return m, textStatus("Too short to save")
			}
			return m.showForm()
		}
	}
	return m, nil
}

func (m theoryModel) showForm() (theoryModel, tea.Cmd) {
	*m.formTopic = ""
	*m.formNotes = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Topic").Value(m.formTopic),
			huh.NewInput().Title("Notes").Value(m.formNotes),
		).Title("Save theory session"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m theoryModel) updateForm(msg tea.Msg) (theoryModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, textStatus("Theory session discarded")
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		_, err := m.store.AddTheorySession(*m.formTopic, m.pendingDur, *m.formNotes, time.Now())
		if err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), textStatus("Theory session saved"))
	}

	return m, cmd
}

func (m theoryModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Theory session finished")
		dur := mutedStyle.Render("Duration: " + formatSeconds(m.pendingDur))
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, dur, "", m.form.View()),
		)
	}

	timerPanel := m.renderTimerPanel(w)
	listPanel := m.renderListPanel(w)
	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, listPanel)
}

func (m theoryModel) renderTimerPanel(w int) string {
	if m.running {
		elapsed := m.now.Sub(m.startedAt)
		if elapsed < 0 {
			elapsed = 0
		}
		timeDisplay := timerPlayStyle.Width(w - 6).Render(formatDuration(elapsed))
		indicator := successStyle.Render("●  STUDYING")
		hint := mutedStyle.Render("x: stop and save")
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint),
		)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  IDLE")
	hint := mutedStyle.Render("Press s to start studying")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint),
	)
}

func (m theoryModel) renderListPanel(w int) string {
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Theory log"), "  ",
		mutedStyle.Render("this week: "+formatHours(m.weekTotal)),
	)

	if len(m.sessions) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No theory sessions yet")),
		)
	}

	var rows []string
	rows = append(rows, title)

	// Newest last in store order; show the most recent ten, newest first.
	start := len(m.sessions) - 10
	if start < 0 {
		start = 0
	}
	recent := m.sessions[start:]
	for i := len(recent) - 1; i >= 0; i-- {
		ts := recent[i]
		topic := ts.Topic
		if topic == "" {
			topic = "(no topic)"
		}
		row := fmt.Sprintf("  %s  %-24s %8s",
			ts.EndTime.Local().Format("02 Jan 15:04"),
			topic,
			formatSeconds(ts.Duration),
		)
		if ts.Notes != "" {
			row += mutedStyle.Render("  " + ts.Notes)
		}
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
