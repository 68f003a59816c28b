package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avakulenko/grindlog/internal/clock"
	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/session"
	"github.com/avakulenko/grindlog/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTracker(t *testing.T, s *store.Store) *session.Tracker {
	t.Helper()
	tr := session.New(s, clock.New(nil))
	t.Cleanup(tr.Close)
	return tr
}

// ============================================================
// Tracker model
// ============================================================

func TestTrackerStartStop(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	m, _ = m.update(keyMsg("s"))
	if !tr.Running() {
		t.Fatal("s should start a session")
	}

	m, _ = m.update(keyMsg("x"))
	if tr.Running() {
		t.Fatal("x should stop the session")
	}
	if m.draft == nil {
		t.Fatal("stop should leave a draft awaiting confirmation")
	}
	if !m.formActive {
		t.Fatal("stop should open the confirmation form")
	}
}

func TestTrackerStartIgnoredWhileRunning(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	m, _ = m.update(keyMsg("s"))
	first := tr.Snapshot().ID

	m, _ = m.update(keyMsg("s"))
	if tr.Snapshot().ID != first {
		t.Fatal("second s should not replace the running session")
	}
}

func TestTrackerPeriodSwitch(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	m, _ = m.update(keyMsg("s"))
	if tr.CurrentType() != store.PeriodPlay {
		t.Fatalf("session should start in play, got %s", tr.CurrentType())
	}

	m, _ = m.update(keyMsg("c"))
	if tr.CurrentType() != store.PeriodSelect {
		t.Fatalf("c should switch to select, got %s", tr.CurrentType())
	}

	m, _ = m.update(keyMsg("b"))
	if tr.CurrentType() != store.PeriodBreak {
		t.Fatalf("b should switch to break, got %s", tr.CurrentType())
	}
}

func TestTrackerPeriodSwitchWhenIdle(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	// Period keys are no-ops without a running session.
	m, _ = m.update(keyMsg("p"))
	if tr.Running() {
		t.Fatal("p should not start a session")
	}
}

func TestTrackerDiscardDraft(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	m, _ = m.update(keyMsg("s"))
	m, _ = m.update(keyMsg("x"))

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive || m.draft != nil {
		t.Fatal("esc should discard the draft")
	}

	sessions, _ := s.ListSessions()
	if len(sessions) != 0 {
		t.Fatal("discarded session must not reach history")
	}
	if draft, _ := s.CompletedSession(); draft != nil {
		t.Fatal("discarded draft should be cleared from the store")
	}
}

func TestTrackerDataReopensDraft(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)

	// A draft persisted by a previous run reopens the dialog on load.
	tr.Start()
	tr.Stop()

	m := newTrackerModel(s, tr)
	msg := m.loadData()()
	m, _ = m.update(msg)
	if !m.formActive {
		t.Fatal("pending draft should reopen the confirmation form")
	}
}

func TestTrackerStartBlockedByDraft(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	m := newTrackerModel(s, tr)

	m, _ = m.update(keyMsg("s"))
	m, _ = m.update(keyMsg("x"))
	m.formActive = false // form closed but draft still pending

	m, _ = m.update(keyMsg("s"))
	if tr.Running() {
		t.Fatal("start must wait until the draft is resolved")
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Days range resolution
// ============================================================

func TestRangeForWeek(t *testing.T) {
	from, to, ok := rangeFor(store.ListViewOptions{DateRangeMode: "week"}, nil, 0)
	if !ok {
		t.Fatal("week range should resolve")
	}
	if from.Weekday() != time.Monday {
		t.Fatalf("week should start on Monday, got %s", from.Weekday())
	}
	if !from.AddDate(0, 0, 6).Equal(to) {
		t.Fatalf("week should span 7 days, got %v..%v", from, to)
	}
}

func TestRangeForWeekOffset(t *testing.T) {
	from0, _, _ := rangeFor(store.ListViewOptions{DateRangeMode: "week"}, nil, 0)
	from1, _, _ := rangeFor(store.ListViewOptions{DateRangeMode: "week"}, nil, 1)
	if !from1.AddDate(0, 0, 7).Equal(from0) {
		t.Fatalf("offset 1 should shift one week back: %v vs %v", from1, from0)
	}
}

func TestRangeForMonth(t *testing.T) {
	from, to, ok := rangeFor(store.ListViewOptions{DateRangeMode: "month"}, nil, 0)
	if !ok {
		t.Fatal("month range should resolve")
	}
	if from.Day() != 1 {
		t.Fatalf("month should start on the 1st, got day %d", from.Day())
	}
	if to.AddDate(0, 0, 1).Day() != 1 {
		t.Fatalf("month should end on the last day, got %v", to)
	}
}

func TestRangeForCustom(t *testing.T) {
	opts := store.ListViewOptions{
		DateRangeMode:   "custom",
		CustomStartDate: "2024-05-01",
		CustomEndDate:   "2024-05-10",
	}
	from, to, ok := rangeFor(opts, nil, 0)
	if !ok {
		t.Fatal("custom range should resolve")
	}
	if from.Day() != 1 || to.Day() != 10 {
		t.Fatalf("unexpected custom range %v..%v", from, to)
	}
}

func TestRangeForCustomInvalid(t *testing.T) {
	bad := []store.ListViewOptions{
		{DateRangeMode: "custom", CustomStartDate: "nope", CustomEndDate: "2024-05-10"},
		{DateRangeMode: "custom", CustomStartDate: "2024-05-10", CustomEndDate: "2024-05-01"},
		{DateRangeMode: "custom"},
	}
	for i, opts := range bad {
		if _, _, ok := rangeFor(opts, nil, 0); ok {
			t.Fatalf("case %d: invalid custom range should not resolve", i)
		}
	}
}

func TestRangeForAll(t *testing.T) {
	if _, _, ok := rangeFor(store.ListViewOptions{DateRangeMode: "all"}, nil, 0); ok {
		t.Fatal("all with no sessions should not resolve")
	}

	sessions := []store.Session{
		{OverallStartTime: time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)},
		{OverallStartTime: time.Date(2024, 5, 8, 10, 0, 0, 0, time.Local)},
	}
	from, to, ok := rangeFor(store.ListViewOptions{DateRangeMode: "all"}, sessions, 0)
	if !ok {
		t.Fatal("all with sessions should resolve")
	}
	if from.Day() != 2 || to.Day() != 8 {
		t.Fatalf("all should span the recorded history, got %v..%v", from, to)
	}
}

// ============================================================
// Days manual edit
// ============================================================

func seedSession(t *testing.T, s *store.Store, start time.Time, secs int64) store.Session {
	t.Helper()
	end := start.Add(time.Duration(secs) * time.Second)
	sess, err := s.AddSession(store.Session{
		OverallStartTime: start,
		OverallEndTime:   end,
		HandsPlayed:      100,
		Periods: []store.Period{
			{Start: start, End: end, Type: store.PeriodPlay},
		},
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess
}

func TestDaysEditGateDisabled(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)
	seedSession(t, s, start, 3600)

	m := newDaysModel(s)
	settings, _ := s.Settings() // AllowManualEditing defaults to false
	m.settings = settings
	m.days = []report.DayRollup{report.Rollup(start, mustSessions(t, s), settings)}

	m, _ = m.update(keyMsg("n"))
	if m.formActive {
		t.Fatal("edit must be gated behind the manual-editing setting")
	}
}

func TestDaysEditOpensForm(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)
	seedSession(t, s, start, 3600)

	settings, _ := s.UpdateSettings(func(st *store.Settings) {
		st.AllowManualEditing = true
	})

	m := newDaysModel(s)
	m.settings = settings
	m.days = []report.DayRollup{report.Rollup(start, mustSessions(t, s), settings)}

	m, _ = m.update(keyMsg("n"))
	if !m.formActive {
		t.Fatal("edit should open the form when enabled")
	}
	if *m.editStart != "10:00" {
		t.Fatalf("start prefill = %q, want 10:00", *m.editStart)
	}
	if *m.editPlay != "60" {
		t.Fatalf("play prefill = %q, want 60", *m.editPlay)
	}
}

func TestDaysApplyEdit(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.Local)
	sess := seedSession(t, s, start, 3600)

	m := newDaysModel(s)
	m.editID = sess.ID
	m.editDay = time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)
	*m.editStart = "11:00"
	*m.editEnd = "13:00"
	*m.editPlay = "90"
	*m.editHands = "250"
	*m.editNotes = "fixed by hand"

	if err := m.applyEdit(); err != nil {
		t.Fatalf("apply edit: %v", err)
	}

	got, _ := s.GetSession(sess.ID)
	if got.OverallDuration != 7200 {
		t.Fatalf("duration = %d, want 7200", got.OverallDuration)
	}
	if got.PlayDuration() != 90*60 {
		t.Fatalf("play = %d, want %d", got.PlayDuration(), 90*60)
	}
	if got.SelectDuration() != 30*60 {
		t.Fatalf("select = %d, want %d", got.SelectDuration(), 30*60)
	}
	if got.HandsPlayed != 250 || got.Notes != "fixed by hand" {
		t.Fatalf("hands/notes not applied: %+v", got)
	}
}

func TestDaysApplyEditOvernight(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 22, 0, 0, 0, time.Local)
	sess := seedSession(t, s, start, 3600)

	m := newDaysModel(s)
	m.editID = sess.ID
	m.editDay = time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)
	*m.editStart = "23:00"
	*m.editEnd = "01:00"
	*m.editPlay = "120"
	*m.editHands = "0"
	*m.editNotes = ""

	if err := m.applyEdit(); err != nil {
		t.Fatalf("apply edit: %v", err)
	}
	got, _ := s.GetSession(sess.ID)
	if got.OverallDuration != 7200 {
		t.Fatalf("overnight duration = %d, want 7200", got.OverallDuration)
	}
	if !got.OverallEndTime.After(got.OverallStartTime) {
		t.Fatal("end must land on the next day")
	}
}

func TestTimeOnDay(t *testing.T) {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)

	got, err := timeOnDay(day, "14:30")
	if err != nil {
		t.Fatalf("timeOnDay: %v", err)
	}
	want := time.Date(2024, 5, 2, 14, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("timeOnDay = %v, want %v", got, want)
	}

	if _, err := timeOnDay(day, "25:99"); err == nil {
		t.Fatal("invalid time should error")
	}
}

func mustSessions(t *testing.T, s *store.Store) []store.Session {
	t.Helper()
	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	return sessions
}

// ============================================================
// Weekly schedule parsing
// ============================================================

func TestParseScheduleEntry(t *testing.T) {
	tests := []struct {
		in   string
		want store.WeekdaySchedule
		ok   bool
	}{
		{"", store.WeekdaySchedule{}, false},
		{"  ", store.WeekdaySchedule{}, false},
		{"off", store.WeekdaySchedule{IsOff: true}, true},
		{"OFF", store.WeekdaySchedule{IsOff: true}, true},
		{"4", store.WeekdaySchedule{Hours: 4}, true},
		{"4.5", store.WeekdaySchedule{Hours: 4.5}, true},
		{"4/500", store.WeekdaySchedule{Hours: 4, Hands: 500}, true},
		{" 4 / 500 ", store.WeekdaySchedule{Hours: 4, Hands: 500}, true},
		{"abc", store.WeekdaySchedule{}, false},
	}
	for _, tt := range tests {
		got, ok := parseScheduleEntry(tt.in)
		if ok != tt.ok {
			t.Errorf("parseScheduleEntry(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("parseScheduleEntry(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

// ============================================================
// Helper functions
// ============================================================

func TestFormatDurationHelper(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{time.Second, "00:00:01"},
		{time.Minute, "00:01:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
		{25 * time.Hour, "25:00:00"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatHoursHelper(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0.0h"},
		{3600, "1.0h"},
		{5400, "1.5h"},
	}
	for _, tt := range tests {
		got := formatHours(tt.secs)
		if got != tt.want {
			t.Errorf("formatHours(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestPeriodLabel(t *testing.T) {
	tests := []struct {
		in   store.PeriodType
		want string
	}{
		{store.PeriodPlay, "PLAY"},
		{store.PeriodSelect, "SELECT"},
		{store.PeriodBreak, "BREAK"},
	}
	for _, tt := range tests {
		if got := periodLabel(tt.in); got != tt.want {
			t.Errorf("periodLabel(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	expected := []string{"Tracker", "Days", "Analytics", "Theory", "Plans", "Data"}
	if len(viewNames) != len(expected) {
		t.Fatalf("expected %d view names, got %d", len(expected), len(viewNames))
	}
	for i, name := range expected {
		if viewNames[i] != name {
			t.Fatalf("viewNames[%d] = %q, want %q", i, viewNames[i], name)
		}
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestTracker(t, s))

	if app.activeView != viewTracker {
		t.Fatal("default view should be the tracker")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestTracker(t, s))
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)

	for v := viewTracker; v <= viewData; v++ {
		app.activeView = v
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestTracker(t, s))

	if got := app.View(); got != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", got)
	}
}

func TestAppHeaderContainsAllTabs(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestTracker(t, s))
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	s := newTestStore(t)
	app := NewApp(s, newTestTracker(t, s))
	app.width = 120
	app.height = 40
	app.status = "test status"

	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppFooterShowsRunningSession(t *testing.T) {
	s := newTestStore(t)
	tr := newTestTracker(t, s)
	app := NewApp(s, tr)
	app.width = 120
	app.height = 40

	tr.Start()
	if !strings.Contains(app.renderFooter(), "PLAY") {
		t.Fatal("footer should show the running period")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}
