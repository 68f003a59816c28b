package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/store"
)

type daysModel struct {
	store  *store.Store
	width  int
	height int

	settings store.Settings
	days     []report.DayRollup
	totals   report.Totals
	offset   int // months or weeks back from the current period
	cursor   int

	// Manual session edit
	formActive bool
	form       *huh.Form
	editID     string
	editDay    time.Time
	editStart  *string
	editEnd    *string
	editPlay   *string
	editHands  *string
	editNotes  *string
}

func newDaysModel(s *store.Store) daysModel {
	start, end, play, hands, notes := "", "", "", "", ""
	return daysModel{
		store:     s,
		editStart: &start,
		editEnd:   &end,
		editPlay:  &play,
		editHands: &hands,
		editNotes: &notes,
	}
}

func (m *daysModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type daysDataMsg struct {
	settings store.Settings
	days     []report.DayRollup
	totals   report.Totals
}

func (m daysModel) refresh() tea.Cmd {
	offset := m.offset
	return func() tea.Msg {
		settings, _ := m.store.Settings()
		sessions, _ := m.store.ListSessions()

		from, to, ok := rangeFor(settings.ListViewOptions, sessions, offset)
		if !ok {
			return daysDataMsg{settings: settings}
		}
		descending := settings.ListViewOptions.SortOrder == "desc"
		days := report.Days(sessions, settings, from, to, descending)
		return daysDataMsg{
			settings: settings,
			days:     days,
			totals:   report.Sum(days),
		}
	}
}

// rangeFor resolves the list range from the configured mode. offset
// shifts whole weeks or months into the past; mode "all" spans the
// recorded history and ignores it.
func rangeFor(opts store.ListViewOptions, sessions []store.Session, offset int) (time.Time, time.Time, bool) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	switch opts.DateRangeMode {
	case "week":
		weekday := today.Weekday()
		if weekday == time.Sunday {
			weekday = 7
		}
		start := today.AddDate(0, 0, -int(weekday-time.Monday)-7*offset)
		return start, start.AddDate(0, 0, 6), true
	case "custom":
		from, err1 := time.ParseInLocation("2006-01-02", opts.CustomStartDate, time.Local)
		to, err2 := time.ParseInLocation("2006-01-02", opts.CustomEndDate, time.Local)
		if err1 != nil || err2 != nil || to.Before(from) {
			return time.Time{}, time.Time{}, false
		}
		return from, to, true
	case "all":
		return report.SessionsBounds(sessions)
	default: // month
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -offset, 0)
		return first, first.AddDate(0, 1, -1), true
	}
}

func (m daysModel) update(msg tea.Msg) (daysModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateEditForm(msg)
	}

	switch msg := msg.(type) {
	case daysDataMsg:
		m.settings = msg.settings
		m.days = msg.days
		m.totals = msg.totals
		if m.cursor >= len(m.days) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if m.navigable() {
				m.offset++
				return m, m.refresh()
			}
		case key.Matches(msg, keys.Right):
			if m.navigable() && m.offset > 0 {
				m.offset--
				return m, m.refresh()
			}
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.days)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New), key.Matches(msg, keys.Enter):
			return m.showEditForm()
		}
	}
	return m, nil
}

// showEditForm opens a manual edit of the selected day's latest
// session.
func (m daysModel) showEditForm() (daysModel, tea.Cmd) {
	if m.cursor >= len(m.days) {
		return m, nil
	}
	day := m.days[m.cursor]
	if !day.HasSessions() {
		return m, nil
	}
	if !m.settings.AllowManualEditing {
		return m, textStatus("Manual editing is disabled in settings")
	}

	sess := day.Sessions[len(day.Sessions)-1]
	m.editID = sess.ID
	m.editDay = day.Date
	*m.editStart = sess.OverallStartTime.Local().Format("15:04")
	*m.editEnd = sess.OverallEndTime.Local().Format("15:04")
	*m.editPlay = strconv.FormatInt(sess.PlayDuration()/60, 10)
	*m.editHands = strconv.FormatInt(sess.HandsPlayed, 10)
	*m.editNotes = sess.Notes

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start (HH:MM)").Value(m.editStart),
			huh.NewInput().Title("End (HH:MM)").Value(m.editEnd),
			huh.NewInput().Title("Play minutes").Value(m.editPlay),
			huh.NewInput().Title("Hands played").Value(m.editHands),
			huh.NewInput().Title("Notes").Value(m.editNotes),
		).Title("Edit session " + day.Date.Format("2 Jan")),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m daysModel) updateEditForm(msg tea.Msg) (daysModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		if err := m.applyEdit(); err != nil {
			return m, errStatus(err)
		}
		return m, tea.Batch(m.refresh(), textStatus("Session updated"))
	}

	return m, cmd
}

// applyEdit rebuilds the session from the form values. The play/select
// split collapses to two periods: play first, the remainder as select.
func (m daysModel) applyEdit() error {
	start, err := timeOnDay(m.editDay, *m.editStart)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := timeOnDay(m.editDay, *m.editEnd)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if !end.After(start) {
		// Sessions crossing midnight end on the next day.
		end = end.AddDate(0, 0, 1)
	}

	total := int64(end.Sub(start) / time.Second)
	playSecs, _ := strconv.ParseInt(strings.TrimSpace(*m.editPlay), 10, 64)
	playSecs *= 60
	if playSecs > total {
		playSecs = total
	}
	periods := []store.Period{
		{Start: start, End: start.Add(time.Duration(playSecs) * time.Second), Type: store.PeriodPlay},
	}
	if playSecs < total {
		periods = append(periods, store.Period{
			Start: start.Add(time.Duration(playSecs) * time.Second),
			End:   end,
			Type:  store.PeriodSelect,
		})
	}

	hands, _ := strconv.ParseInt(strings.TrimSpace(*m.editHands), 10, 64)
	return m.store.UpdateSession(m.editID, store.SessionUpdate{
		OverallStartTime: &start,
		OverallEndTime:   &end,
		HandsPlayed:      &hands,
		Notes:            m.editNotes,
		Periods:          periods,
	})
}

func timeOnDay(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", strings.TrimSpace(hhmm), time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

func (m daysModel) navigable() bool {
	mode := m.settings.ListViewOptions.DateRangeMode
	return mode == "week" || mode == "month" || mode == ""
}

func (m daysModel) view() string {
	w := m.width - 4
	opts := m.settings.ListViewOptions

	if m.formActive && m.form != nil {
		return activePanelStyle.Width(w).Render(m.form.View())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Days"), "  ", mutedStyle.Render(m.rangeLabel()),
	)

	if len(m.days) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("No days in range")),
		)
	}

	var rows []string
	rows = append(rows, header, "")
	rows = append(rows, mutedStyle.Render("  "+m.tableHeader()))
	rows = append(rows, mutedStyle.Render(strings.Repeat("─", minInt(w-6, 78))))

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		rows = append(rows, m.dayRow(m.days[i], i == m.cursor))
	}

	if opts.ShowTotalsRow {
		rows = append(rows, mutedStyle.Render(strings.Repeat("─", minInt(w-6, 78))))
		rows = append(rows, m.totalsRow())
	}
	hint := "↑/↓: select  n: edit session"
	if m.navigable() {
		hint = "←/→: earlier/later  " + hint
	}
	rows = append(rows, "", mutedStyle.Render("  "+hint))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m daysModel) visibleRange() (int, int) {
	limit := m.height - 12
	if limit < 5 {
		limit = 5
	}
	if len(m.days) <= limit {
		return 0, len(m.days)
	}
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	if start > len(m.days)-limit {
		start = len(m.days) - limit
	}
	return start, start + limit
}

func (m daysModel) rangeLabel() string {
	switch m.settings.ListViewOptions.DateRangeMode {
	case "week":
		if m.offset == 0 {
			return "this week"
		}
		return fmt.Sprintf("%d week(s) back", m.offset)
	case "custom":
		return m.settings.ListViewOptions.CustomStartDate + " — " + m.settings.ListViewOptions.CustomEndDate
	case "all":
		return "all time"
	default:
		month := time.Now().AddDate(0, -m.offset, 0)
		return month.Format("January 2006")
	}
}

func (m daysModel) dateCell(d report.DayRollup) string {
	opts := m.settings.ListViewOptions
	layout := "02"
	if opts.ShowMonth {
		layout = "02 Jan"
	}
	if opts.ShowYear {
		layout += " 2006"
	}
	cell := d.Date.Format(layout)
	if opts.ShowDayOfWeek {
		cell = d.Date.Format("Mon ") + cell
	}
	return cell
}

func (m daysModel) tableHeader() string {
	opts := m.settings.ListViewOptions
	cols := []string{fmt.Sprintf("  %-14s", "Date")}
	if opts.ShowStartTime {
		cols = append(cols, fmt.Sprintf("%-6s", "Start"))
	}
	if opts.ShowEndTime {
		cols = append(cols, fmt.Sprintf("%-6s", "End"))
	}
	if opts.ShowSessionCount {
		cols = append(cols, fmt.Sprintf("%4s", "Cnt"))
	}
	if opts.ShowDuration {
		cols = append(cols, fmt.Sprintf("%9s", "Total"))
	}
	if opts.ShowTotalPlayTime {
		cols = append(cols, fmt.Sprintf("%9s", "Play"))
	}
	if opts.ShowHandsPerHour {
		cols = append(cols, fmt.Sprintf("%6s", "H/h"))
	}
	if opts.ShowDailyPlan {
		cols = append(cols, fmt.Sprintf("%6s", "Plan"))
	}
	if opts.ShowDailyPlanRemaining {
		cols = append(cols, fmt.Sprintf("%6s", "Left"))
	}
	if opts.ShowDailyPlanHands {
		cols = append(cols, fmt.Sprintf("%7s", "PlanH"))
	}
	return strings.Join(cols, " ")
}

func (m daysModel) dayRow(d report.DayRollup, selected bool) string {
	opts := m.settings.ListViewOptions
	marker := "  "
	if selected {
		marker = selectedItemStyle.Render("> ")
	}
	cols := []string{fmt.Sprintf("  %-14s", m.dateCell(d))}

	if d.IsOffDay {
		return marker + strings.Join(cols, " ") + " " + offDayStyle.Render("day off")
	}

	startStr, endStr := "", ""
	if d.HasSessions() {
		startStr = d.Sessions[0].OverallStartTime.Local().Format("15:04")
		endStr = d.Sessions[len(d.Sessions)-1].OverallEndTime.Local().Format("15:04")
	}
	if opts.ShowStartTime {
		cols = append(cols, fmt.Sprintf("%-6s", startStr))
	}
	if opts.ShowEndTime {
		cols = append(cols, fmt.Sprintf("%-6s", endStr))
	}
	if opts.ShowSessionCount {
		cols = append(cols, fmt.Sprintf("%4d", d.SessionCount))
	}
	if opts.ShowDuration {
		cols = append(cols, fmt.Sprintf("%9s", blankZero(d.TotalSeconds)))
	}
	if opts.ShowTotalPlayTime {
		cols = append(cols, fmt.Sprintf("%9s", blankZero(d.PlaySeconds)))
	}
	if opts.ShowHandsPerHour {
		cols = append(cols, fmt.Sprintf("%6d", d.HandsPerHour))
	}
	if opts.ShowDailyPlan {
		cols = append(cols, fmt.Sprintf("%6s", blankZeroF(d.PlanHours)))
	}
	if opts.ShowDailyPlanRemaining {
		cols = append(cols, fmt.Sprintf("%6s", blankZeroF(d.RemainingHours)))
	}
	if opts.ShowDailyPlanHands {
		cols = append(cols, fmt.Sprintf("%7s", blankZeroI(d.PlanHands)))
	}

	row := strings.Join(cols, " ")
	if !d.HasSessions() {
		return marker + mutedStyle.Render(row)
	}
	return marker + row
}

func (m daysModel) totalsRow() string {
	opts := m.settings.ListViewOptions
	t := m.totals
	cols := []string{fmt.Sprintf("  %-14s", fmt.Sprintf("%d days", t.PlayingDays))}
	if opts.ShowStartTime {
		cols = append(cols, fmt.Sprintf("%-6s", ""))
	}
	if opts.ShowEndTime {
		cols = append(cols, fmt.Sprintf("%-6s", ""))
	}
	if opts.ShowSessionCount {
		cols = append(cols, fmt.Sprintf("%4d", t.SessionCount))
	}
	if opts.ShowDuration {
		cols = append(cols, fmt.Sprintf("%9s", formatSeconds(t.TotalSeconds)))
	}
	if opts.ShowTotalPlayTime {
		cols = append(cols, fmt.Sprintf("%9s", formatSeconds(t.PlaySeconds)))
	}
	if opts.ShowHandsPerHour {
		cols = append(cols, fmt.Sprintf("%6d", t.AvgHandsPerHour))
	}
	if opts.ShowDailyPlan {
		cols = append(cols, fmt.Sprintf("%6s", blankZeroF(t.PlanHours)))
	}
	if opts.ShowDailyPlanRemaining {
		cols = append(cols, fmt.Sprintf("%6s", blankZeroF(t.RemainingHours)))
	}
	if opts.ShowDailyPlanHands {
		cols = append(cols, fmt.Sprintf("%7s", blankZeroI(t.PlanHands)))
	}
	return "  " + titleStyle.Render(strings.Join(cols, " "))
}

func blankZero(secs int64) string {
	if secs == 0 {
		return ""
	}
	return formatSeconds(secs)
}

func blankZeroF(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", v)
}

func blankZeroI(v int64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
