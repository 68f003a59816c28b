package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/session"
	"github.com/avakulenko/grindlog/internal/store"
)

type trackerModel struct {
	store   *store.Store
	tracker *session.Tracker
	width   int
	height  int

	now      time.Time
	today    report.DayRollup
	settings store.Settings

	totalPlaySecs int64
	totalHands    int64
	totalSessions int

	// Post-stop confirmation
	draft      *store.Session
	formActive bool
	form       *huh.Form
	formNotes  *string
	formHands  *string
}

func newTrackerModel(s *store.Store, tr *session.Tracker) trackerModel {
	notes, hands := "", ""
	return trackerModel{
		store:     s,
		tracker:   tr,
		now:       time.Now(),
		formNotes: &notes,
		formHands: &hands,
	}
}

func (m trackerModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *trackerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type trackerDataMsg struct {
	today    report.DayRollup
	settings store.Settings
	draft    *store.Session

	totalPlaySecs int64
	totalHands    int64
	totalSessions int
}

func (m trackerModel) loadData() tea.Cmd {
	return func() tea.Msg {
		settings, _ := m.store.Settings()
		sessions, _ := m.store.ListSessions()
		draft, _ := m.store.CompletedSession()

		var playSecs, hands int64
		for _, s := range sessions {
			playSecs += s.PlayDuration()
			hands += s.HandsPlayed
		}

		return trackerDataMsg{
			today:         report.Rollup(time.Now(), sessions, settings),
			settings:      settings,
			draft:         draft,
			totalPlaySecs: playSecs,
			totalHands:    hands,
			totalSessions: len(sessions),
		}
	}
}

func (m trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateConfirmForm(msg)
	}

	switch msg := msg.(type) {
	case trackerDataMsg:
		m.today = msg.today
		m.settings = msg.settings
		m.totalPlaySecs = msg.totalPlaySecs
		m.totalHands = msg.totalHands
		m.totalSessions = msg.totalSessions
		m.draft = msg.draft
		// A draft left over from a previous run reopens the
		// confirmation dialog.
		if m.draft != nil && !m.formActive {
			return m.showConfirmForm()
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if m.tracker.Running() || m.draft != nil {
				return m, nil
			}
			if err := m.tracker.Start(); err != nil {
				return m, errStatus(err)
			}
			return m, func() tea.Msg { return sessionStartedMsg{} }

		case key.Matches(msg, keys.Stop):
			if !m.tracker.Running() {
				return m, nil
			}
			draft, err := m.tracker.Stop()
			if err != nil {
				return m, errStatus(err)
			}
			m.draft = draft
			next, cmd := m.showConfirmForm()
			return next, tea.Batch(cmd, func() tea.Msg { return sessionStoppedMsg{draft: draft} })

		case key.Matches(msg, keys.Play):
			return m.togglePeriod(store.PeriodPlay)
		case key.Matches(msg, keys.Select):
			return m.togglePeriod(store.PeriodSelect)
		case key.Matches(msg, keys.Break):
			return m.togglePeriod(store.PeriodBreak)

		case key.Matches(msg, keys.Enter):
			if m.draft != nil {
				return m.showConfirmForm()
			}
		}
	}
	return m, nil
}

func (m trackerModel) togglePeriod(pt store.PeriodType) (trackerModel, tea.Cmd) {
	if !m.tracker.Running() {
		return m, nil
	}
	if err := m.tracker.Toggle(pt); err != nil {
		return m, errStatus(err)
	}
	return m, nil
}

func (m trackerModel) showConfirmForm() (trackerModel, tea.Cmd) {
	*m.formNotes = m.draft.Notes
	*m.formHands = ""
	if m.draft.HandsPlayed > 0 {
		*m.formHands = strconv.FormatInt(m.draft.HandsPlayed, 10)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Hands played").Value(m.formHands),
			huh.NewInput().Title("Notes").Value(m.formNotes),
		).Title("Save session"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m trackerModel) updateConfirmForm(msg tea.Msg) (trackerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			// Cancel discards the finished session entirely.
			m.formActive = false
			m.form = nil
			m.draft = nil
			if err := m.store.ClearCompletedSession(); err != nil {
				return m, errStatus(err)
			}
			return m, tea.Batch(m.loadData(), textStatus("Session discarded"))
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		hands, _ := strconv.ParseInt(*m.formHands, 10, 64)
		saved, err := m.tracker.Confirm(*m.draft, *m.formNotes, hands)
		if err != nil {
			return m, errStatus(err)
		}
		m.draft = nil
		m.form = nil
		return m, tea.Batch(
			m.loadData(),
			func() tea.Msg { return sessionConfirmedMsg{session: saved} },
		)
	}

	return m, cmd
}

func (m trackerModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	contentWidth := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Session finished")
		summary := m.renderDraftSummary()
		return activePanelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, summary, "", m.form.View()),
		)
	}

	timerPanel := m.renderTimerPanel(contentWidth)
	todayPanel := m.renderTodayPanel(contentWidth)
	goalsPanel := m.renderGoalsPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, todayPanel, goalsPanel)
}

func (m trackerModel) renderDraftSummary() string {
	if m.draft == nil {
		return ""
	}
	return mutedStyle.Render(fmt.Sprintf(
		"%s  total %s  play %s  select %s",
		m.draft.OverallStartTime.Local().Format("15:04"),
		formatSeconds(m.draft.OverallDuration),
		formatSeconds(m.draft.PlayDuration()),
		formatSeconds(m.draft.SelectDuration()),
	))
}

func (m trackerModel) renderTimerPanel(w int) string {
	if m.tracker.Running() {
		label := periodLabel(m.tracker.CurrentType())
		elapsed := m.tracker.Elapsed(m.now)
		timeDisplay := timerStyleFor(label).Width(w - 6).Render(formatSeconds(elapsed))
		indicator := timerStyleFor(label).Render("●  " + label)
		hint := mutedStyle.Render("p: play  c: select  b: break  x: stop")

		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  IDLE")
	hint := mutedStyle.Render("Press s to start a session")
	if m.draft != nil {
		hint = warningStyle.Render("Unsaved session. Press enter to review it.")
	}

	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
	return panelStyle.Width(w).Render(content)
}

func (m trackerModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")

	if m.today.IsOffDay {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			offDayStyle.Render("Day off"),
		)
		return panelStyle.Width(w).Render(content)
	}

	rows := []string{
		title,
		fmt.Sprintf("  %-14s %s", "Play", highlightStyle.Render(formatSeconds(m.today.PlaySeconds))),
		fmt.Sprintf("  %-14s %s", "Select", highlightStyle.Render(formatSeconds(m.today.SelectSeconds))),
		fmt.Sprintf("  %-14s %s", "Hands", highlightStyle.Render(strconv.FormatInt(m.today.HandsPlayed, 10))),
	}
	if m.today.PlanHours > 0 {
		remaining := fmt.Sprintf("%.2fh of %.2fh left", m.today.RemainingHours, m.today.PlanHours)
		style := warningStyle
		if m.today.RemainingHours == 0 {
			remaining = "plan done"
			style = successStyle
		}
		rows = append(rows, fmt.Sprintf("  %-14s %s", "Plan", style.Render(remaining)))
	}
	if m.today.HandsPerHour > 0 {
		rows = append(rows, fmt.Sprintf("  %-14s %s", "Hands/hour", highlightStyle.Render(strconv.FormatInt(m.today.HandsPerHour, 10))))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m trackerModel) renderGoalsPanel(w int) string {
	g := m.settings.Goals
	if g.Hours <= 0 && g.Hands <= 0 && g.Sessions <= 0 {
		return ""
	}

	title := titleStyle.Render("Goals")
	rows := []string{title}
	if g.Hours > 0 {
		rows = append(rows, goalRow("Play hours", float64(m.totalPlaySecs)/3600, g.Hours))
	}
	if g.Hands > 0 {
		rows = append(rows, goalRow("Hands", float64(m.totalHands), float64(g.Hands)))
	}
	if g.Sessions > 0 {
		rows = append(rows, goalRow("Sessions", float64(m.totalSessions), float64(g.Sessions)))
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func goalRow(label string, current, target float64) string {
	pct := 0.0
	if target > 0 {
		pct = current / target * 100
	}
	style := highlightStyle
	if pct >= 100 {
		style = successStyle
	}
	return fmt.Sprintf("  %-14s %s", label, style.Render(fmt.Sprintf("%.1f / %.1f (%.0f%%)", current, target, pct)))
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func textStatus(text string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text}
	}
}
