package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/avakulenko/grindlog/internal/store"
)

type plansModel struct {
	store  *store.Store
	width  int
	height int

	settings store.Settings
	cursor   int // days ahead of today

	formActive bool
	form       *huh.Form
	formType   string // "plan", "weekly", "settings"

	// Plan form
	planHours *string
	planHands *string

	// Weekly schedule form: one entry per weekday, "4", "4/500" or "off"
	weekdayPlans [7]*string
	weeksAhead   *string

	// Settings form
	theme         *string
	goalHours     *string
	goalHands     *string
	goalSessions  *string
	rangeMode     *string
	sortOrder     *string
	showTotalsRow *bool
}

func newPlansModel(s *store.Store) plansModel {
	ph, pn := "", ""
	wa := "4"
	th, gh, gn, gs, rm, so := "", "", "", "", "", ""
	totals := false

	m := plansModel{
		store:         s,
		planHours:     &ph,
		planHands:     &pn,
		weeksAhead:    &wa,
		theme:         &th,
		goalHours:     &gh,
		goalHands:     &gn,
		goalSessions:  &gs,
		rangeMode:     &rm,
		sortOrder:     &so,
		showTotalsRow: &totals,
	}
	for i := range m.weekdayPlans {
		v := ""
		m.weekdayPlans[i] = &v
	}
	return m
}

func (m *plansModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type plansDataMsg struct {
	settings store.Settings
}

func (m plansModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := m.store.Settings()
		return plansDataMsg{settings: settings}
	}
}

func (m plansModel) cursorDate() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local).AddDate(0, 0, m.cursor)
}

func (m plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plansDataMsg:
		m.settings = msg.settings
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < 27 {
				m.cursor++
			}
		case key.Matches(msg, keys.OffDay):
			date := m.cursorDate()
			off, err := m.store.IsOffDay(date)
			if err != nil {
				return m, errStatus(err)
			}
			if err := m.store.SetOffDay(date, !off); err != nil {
				return m, errStatus(err)
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return m.showPlanForm()
		case key.Matches(msg, keys.Weekly):
			return m.showWeeklyForm()
		case key.Matches(msg, keys.Goals):
			return m.showSettingsForm()
		}
	}
	return m, nil
}

func (m plansModel) showPlanForm() (plansModel, tea.Cmd) {
	date := m.cursorDate()
	*m.planHours = ""
	*m.planHands = ""
	if plan, ok := m.settings.Plans[store.DateKey(date)]; ok {
		if plan.Hours > 0 {
			*m.planHours = strconv.FormatFloat(plan.Hours, 'f', -1, 64)
		}
		if plan.Hands > 0 {
			*m.planHands = strconv.FormatInt(plan.Hands, 10)
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Hours").Value(m.planHours),
			huh.NewInput().Title("Hands").Value(m.planHands),
		).Title("Plan for "+date.Format("Mon 2 Jan")),
	).WithShowHelp(true).WithShowErrors(true)

	m.formType = "plan"
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) showWeeklyForm() (plansModel, tea.Cmd) {
	for i := range m.weekdayPlans {
		*m.weekdayPlans[i] = ""
	}
	*m.weeksAhead = "4"

	weekdayNames := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	fields := make([]huh.Field, 0, 8)
	for i, name := range weekdayNames {
		fields = append(fields,
			huh.NewInput().Title(name).Placeholder("hours, hours/hands, or off").Value(m.weekdayPlans[i]))
	}
	fields = append(fields,
		huh.NewInput().Title("Apply for weeks ahead").Value(m.weeksAhead))

	m.form = huh.NewForm(
		huh.NewGroup(fields...).Title("Weekly schedule"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formType = "weekly"
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) showSettingsForm() (plansModel, tea.Cmd) {
	s := m.settings
	*m.theme = s.Theme
	*m.goalHours = blankZeroF(s.Goals.Hours)
	*m.goalHands = blankZeroI(s.Goals.Hands)
	*m.goalSessions = blankZeroI(s.Goals.Sessions)
	*m.rangeMode = s.ListViewOptions.DateRangeMode
	*m.sortOrder = s.ListViewOptions.SortOrder
	*m.showTotalsRow = s.ListViewOptions.ShowTotalsRow

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Goal: play hours").Value(m.goalHours),
			huh.NewInput().Title("Goal: hands").Value(m.goalHands),
			huh.NewInput().Title("Goal: sessions").Value(m.goalSessions),
		).Title("Goals"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).Value(m.theme),
			huh.NewSelect[string]().Title("Days range").
				Options(
					huh.NewOption("Month", "month"),
					huh.NewOption("Week", "week"),
					huh.NewOption("All time", "all"),
				).Value(m.rangeMode),
			huh.NewSelect[string]().Title("Sort order").
				Options(
					huh.NewOption("Newest first", "desc"),
					huh.NewOption("Oldest first", "asc"),
				).Value(m.sortOrder),
			huh.NewConfirm().Title("Show totals row").Value(m.showTotalsRow),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formType = "settings"
	m.formActive = true
	return m, m.form.Init()
}

func (m plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
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
		var err error
		switch m.formType {
		case "plan":
			err = m.savePlan()
		case "weekly":
			err = m.saveWeekly()
		case "settings":
			err = m.saveSettings()
		}
		if err != nil {
			return m, errStatus(err)
		}
		return m, m.refresh()
	}

	return m, cmd
}

func (m plansModel) savePlan() error {
	hours, _ := strconv.ParseFloat(strings.TrimSpace(*m.planHours), 64)
	hands, _ := strconv.ParseInt(strings.TrimSpace(*m.planHands), 10, 64)
	return m.store.SetPlanForDate(m.cursorDate(), store.Plan{Hours: hours, Hands: hands})
}

func (m plansModel) saveWeekly() error {
	schedule := map[time.Weekday]store.WeekdaySchedule{}
	weekdays := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	for i, wd := range weekdays {
		entry, ok := parseScheduleEntry(*m.weekdayPlans[i])
		if ok {
			schedule[wd] = entry
		}
	}
	if len(schedule) == 0 {
		return nil
	}

	weeks, err := strconv.Atoi(strings.TrimSpace(*m.weeksAhead))
	if err != nil || weeks < 1 {
		weeks = 4
	}
	start := time.Now()
	end := start.AddDate(0, 0, 7*weeks-1)
	return m.store.ApplyWeeklySchedule(start, end, schedule)
}

// parseScheduleEntry reads "4", "4/500" or "off"; blank means leave
// the weekday untouched.
func parseScheduleEntry(s string) (store.WeekdaySchedule, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return store.WeekdaySchedule{}, false
	}
	if s == "off" {
		return store.WeekdaySchedule{IsOff: true}, true
	}
	hoursPart, handsPart, _ := strings.Cut(s, "/")
	hours, err := strconv.ParseFloat(strings.TrimSpace(hoursPart), 64)
	if err != nil {
		return store.WeekdaySchedule{}, false
	}
	hands, _ := strconv.ParseInt(strings.TrimSpace(handsPart), 10, 64)
	return store.WeekdaySchedule{Hours: hours, Hands: hands}, true
}

func (m plansModel) saveSettings() error {
	hours, _ := strconv.ParseFloat(strings.TrimSpace(*m.goalHours), 64)
	hands, _ := strconv.ParseInt(strings.TrimSpace(*m.goalHands), 10, 64)
	sessions, _ := strconv.ParseInt(strings.TrimSpace(*m.goalSessions), 10, 64)

	_, err := m.store.UpdateSettings(func(s *store.Settings) {
		s.Theme = *m.theme
		s.Goals = store.Goals{Hours: hours, Hands: hands, Sessions: sessions}
		s.ListViewOptions.DateRangeMode = *m.rangeMode
		s.ListViewOptions.SortOrder = *m.sortOrder
		s.ListViewOptions.ShowTotalsRow = *m.showTotalsRow
	})
	return err
}

func (m plansModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return panelStyle.Width(w).Render(m.form.View())
	}

	title := titleStyle.Render("Plans")
	hint := mutedStyle.Render("  enter: set plan  o: off day  w: weekly schedule  g: goals/settings")

	var rows []string
	rows = append(rows, title, "")

	limit := m.height - 10
	if limit < 7 {
		limit = 7
	}
	if limit > 28 {
		limit = 28
	}
	// Scroll so the cursor row stays visible.
	start := 0
	if m.cursor >= limit {
		start = m.cursor - limit + 1
	}
	today := m.cursorDate().AddDate(0, 0, -m.cursor)
	for i := start; i < start+limit; i++ {
		rows = append(rows, m.planRow(today.AddDate(0, 0, i)))
	}

	rows = append(rows, "", hint)
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m plansModel) planRow(date time.Time) string {
	key := store.DateKey(date)
	label := date.Format("Mon 2 Jan")
	if store.DateKey(time.Now()) == key {
		label += " (today)"
	}

	var detail string
	switch {
	case m.settings.OffDays[key]:
		detail = offDayStyle.Render("day off")
	default:
		if plan, ok := m.settings.Plans[key]; ok {
			parts := []string{}
			if plan.Hours > 0 {
				parts = append(parts, fmt.Sprintf("%.1fh", plan.Hours))
			}
			if plan.Hands > 0 {
				parts = append(parts, fmt.Sprintf("%d hands", plan.Hands))
			}
			detail = highlightStyle.Render(strings.Join(parts, ", "))
		} else {
			detail = mutedStyle.Render("—")
		}
	}

	cursor := "  "
	style := normalItemStyle
	if store.DateKey(m.cursorDate()) == key {
		cursor = "> "
		style = selectedItemStyle
	}
	return style.Render(fmt.Sprintf("%s%-18s", cursor, label)) + " " + detail
}
