package store

import (
	"testing"
	"time"

	"github.com/avakulenko/grindlog/internal/bus"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newBusStore(t *testing.T) (*Store, *bus.Bus) {
	t.Helper()
	b := bus.New()
	s, err := New(":memory:", b)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, b
}

// makeSession builds a finished session with a single play period.
func makeSession(id string, start time.Time, durationSecs int64) Session {
	end := start.Add(time.Duration(durationSecs) * time.Second)
	return Session{
		ID:               id,
		OverallStartTime: start,
		OverallEndTime:   end,
		OverallDuration:  durationSecs,
		Periods: []Period{
			{Start: start, End: end, Type: PeriodPlay},
		},
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/grindlog.db"
	s, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen; should succeed and not re-migrate
	s2, err := New(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Sessions
// ============================================================

func TestAddAndGetSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	added, err := s.AddSession(makeSession("", start, 3600))
	if err != nil {
		t.Fatal(err)
	}
	if added.ID == "" {
		t.Fatal("AddSession should assign an id")
	}

	fetched, err := s.GetSession(added.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched == nil {
		t.Fatal("expected session")
	}
	if !fetched.OverallStartTime.Equal(start) {
		t.Fatalf("start = %v, want %v", fetched.OverallStartTime, start)
	}
	if fetched.OverallDuration != 3600 {
		t.Fatalf("duration = %d, want 3600", fetched.OverallDuration)
	}
	if len(fetched.Periods) != 1 || fetched.Periods[0].Type != PeriodPlay {
		t.Fatalf("periods = %+v", fetched.Periods)
	}
}

func TestAddSessionKeepsGivenID(t *testing.T) {
	s := newTestStore(t)
	added, err := s.AddSession(makeSession("fixed-id", time.Now().UTC(), 60))
	if err != nil {
		t.Fatal(err)
	}
	if added.ID != "fixed-id" {
		t.Fatalf("id = %q, want fixed-id", added.ID)
	}
}

func TestAddSessionRecomputesDuration(t *testing.T) {
	s := newTestStore(t)
	sess := makeSession("", time.Now().UTC(), 3600)
	sess.OverallDuration = 999 // stale, must be recomputed from the timestamps

	added, err := s.AddSession(sess)
	if err != nil {
		t.Fatal(err)
	}
	if added.OverallDuration != 3600 {
		t.Fatalf("duration = %d, want 3600", added.OverallDuration)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.GetSession("missing")
	if err != nil {
		t.Fatal(err)
	}
	if sess != nil {
		t.Fatal("expected nil for missing session")
	}
}

func TestListSessionsOrdered(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	// Insert out of chronological order
	s.AddSession(makeSession("b", base.Add(2*time.Hour), 60))
	s.AddSession(makeSession("a", base, 60))

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "a" || sessions[1].ID != "b" {
		t.Fatalf("expected chronological order, got %s, %s", sessions[0].ID, sessions[1].ID)
	}
}

func TestListSessionsEmpty(t *testing.T) {
	s := newTestStore(t)
	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if sessions != nil {
		t.Fatalf("expected nil slice, got %d items", len(sessions))
	}
}

func TestListSessionsSkipsCorruptRow(t *testing.T) {
	s := newTestStore(t)
	s.AddSession(makeSession("good", time.Now().UTC(), 60))

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, overall_start, overall_end, overall_duration, overall_profit, overall_hands, hands_played, notes, periods)
		 VALUES ('bad', 'not-a-time', 'also-not', 0, 0, 0, 0, '', '[]')`,
	)
	if err != nil {
		t.Fatal(err)
	}

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID != "good" {
		t.Fatalf("corrupt row should be skipped, got %+v", sessions)
	}
}

func TestUpdateSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	added, _ := s.AddSession(makeSession("", start, 3600))

	hands := int64(200)
	notes := "edited"
	newEnd := start.Add(2 * time.Hour)
	err := s.UpdateSession(added.ID, SessionUpdate{
		OverallEndTime: &newEnd,
		HandsPlayed:    &hands,
		Notes:          &notes,
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, _ := s.GetSession(added.ID)
	if updated.HandsPlayed != 200 {
		t.Fatalf("hands = %d, want 200", updated.HandsPlayed)
	}
	if updated.Notes != "edited" {
		t.Fatalf("notes = %q", updated.Notes)
	}
	// Duration follows the moved end time
	if updated.OverallDuration != 7200 {
		t.Fatalf("duration = %d, want 7200", updated.OverallDuration)
	}
}

func TestUpdateSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	notes := "x"
	err := s.UpdateSession("missing", SessionUpdate{Notes: &notes})
	if err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestImportSessionsDedupes(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	s.AddSession(makeSession("existing", base, 60))

	incoming := []Session{
		makeSession("existing", base, 60), // duplicate
		makeSession("fresh", base.Add(time.Hour), 120),
	}
	added, err := s.ImportSessions(incoming)
	if err != nil {
		t.Fatal(err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}

	sessions, _ := s.ListSessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions after import, got %d", len(sessions))
	}
}

func TestImportSessionsTwiceIsNoOp(t *testing.T) {
	s := newTestStore(t)
	incoming := []Session{makeSession("a", time.Now().UTC(), 60)}

	s.ImportSessions(incoming)
	added, err := s.ImportSessions(incoming)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Fatalf("second import added %d, want 0", added)
	}
}

func TestSortSessions(t *testing.T) {
	base := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	sessions := []Session{
		makeSession("c", base.Add(2*time.Hour), 60),
		makeSession("a", base, 60),
		makeSession("b", base.Add(time.Hour), 60),
	}
	SortSessions(sessions)
	if sessions[0].ID != "a" || sessions[1].ID != "b" || sessions[2].ID != "c" {
		t.Fatalf("not sorted: %s %s %s", sessions[0].ID, sessions[1].ID, sessions[2].ID)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Theme != "dark" {
		t.Fatalf("theme = %q, want dark", settings.Theme)
	}
	if !settings.SplitPeriods {
		t.Fatal("SplitPeriods should default true")
	}
	if settings.Plans == nil || settings.OffDays == nil {
		t.Fatal("maps should be initialized")
	}
}

func TestUpdateSettingsPersists(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateSettings(func(st *Settings) {
		st.Theme = "light"
		st.Goals.Hours = 100
	})
	if err != nil {
		t.Fatal(err)
	}

	settings, _ := s.Settings()
	if settings.Theme != "light" {
		t.Fatalf("theme = %q, want light", settings.Theme)
	}
	if settings.Goals.Hours != 100 {
		t.Fatalf("goal hours = %g, want 100", settings.Goals.Hours)
	}
	// Untouched fields keep their defaults
	if !settings.ShowNotes {
		t.Fatal("ShowNotes should remain default true")
	}
}

func TestSettingsPartialRowMergesDefaults(t *testing.T) {
	s := newTestStore(t)

	// A row written by an older build carries only some fields.
	_, err := s.db.Exec(
		`INSERT INTO settings (id, value) VALUES (1, '{"theme":"light"}')
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
	)
	if err != nil {
		t.Fatal(err)
	}

	settings, err := s.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Theme != "light" {
		t.Fatalf("theme = %q, want light", settings.Theme)
	}
	if !settings.SplitPeriods {
		t.Fatal("absent fields should fall back to defaults")
	}
}

func TestSettingsCorruptRowFallsBack(t *testing.T) {
	s := newTestStore(t)

	s.db.Exec(`INSERT INTO settings (id, value) VALUES (1, 'not json')`)

	settings, err := s.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.Theme != "dark" {
		t.Fatal("corrupt settings should yield defaults, not an error")
	}
}

// ============================================================
// Plans and off days
// ============================================================

func TestSetAndGetPlan(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2024, 5, 2, 15, 0, 0, 0, time.Local)

	if err := s.SetPlanForDate(date, Plan{Hours: 4, Hands: 500}); err != nil {
		t.Fatal(err)
	}

	plan, err := s.PlanForDate(date)
	if err != nil {
		t.Fatal(err)
	}
	if plan == nil || plan.Hours != 4 || plan.Hands != 500 {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestPlanForDateNone(t *testing.T) {
	s := newTestStore(t)
	plan, err := s.PlanForDate(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if plan != nil {
		t.Fatalf("expected nil plan, got %+v", plan)
	}
}

func TestEmptyPlanRemoved(t *testing.T) {
	s := newTestStore(t)
	date := time.Now()

	s.SetPlanForDate(date, Plan{Hours: 4})
	s.SetPlanForDate(date, Plan{}) // clearing

	settings, _ := s.Settings()
	if _, ok := settings.Plans[DateKey(date)]; ok {
		t.Fatal("empty plan should be removed, not stored as zeros")
	}
}

func TestOffDayClearsPlan(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)

	// Plan 4 hours, then mark the day off: the plan goes away.
	s.SetPlanForDate(date, Plan{Hours: 4})
	if err := s.SetOffDay(date, true); err != nil {
		t.Fatal(err)
	}

	off, _ := s.IsOffDay(date)
	if !off {
		t.Fatal("day should be off")
	}
	plan, _ := s.PlanForDate(date)
	if plan != nil {
		t.Fatalf("off day should have no plan, got %+v", plan)
	}

	// Turning the off flag back off does not resurrect the plan.
	s.SetOffDay(date, false)
	off, _ = s.IsOffDay(date)
	if off {
		t.Fatal("day should no longer be off")
	}
	plan, _ = s.PlanForDate(date)
	if plan != nil {
		t.Fatal("cleared plan should stay cleared")
	}
}

func TestApplyWeeklySchedule(t *testing.T) {
	s := newTestStore(t)
	// Mon 6 May .. Sun 12 May 2024
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 5, 12, 0, 0, 0, 0, time.Local)

	err := s.ApplyWeeklySchedule(start, end, map[time.Weekday]WeekdaySchedule{
		time.Monday: {Hours: 4, Hands: 400},
		time.Sunday: {IsOff: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	plan, _ := s.PlanForDate(start)
	if plan == nil || plan.Hours != 4 {
		t.Fatalf("Monday plan = %+v", plan)
	}
	off, _ := s.IsOffDay(end)
	if !off {
		t.Fatal("Sunday should be off")
	}
	// Days without a schedule entry are untouched
	tuesday := start.AddDate(0, 0, 1)
	plan, _ = s.PlanForDate(tuesday)
	if plan != nil {
		t.Fatalf("Tuesday should have no plan, got %+v", plan)
	}
}

// ============================================================
// Active / completed session state
// ============================================================

func TestSaveAndGetActiveSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	err := s.SaveActiveSession(ActiveSession{
		OverallStartTime: start,
		Current:          OpenPeriod{Start: start, Type: PeriodPlay},
	})
	if err != nil {
		t.Fatal(err)
	}

	as, err := s.ActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if as == nil {
		t.Fatal("expected active session")
	}
	if as.ID == "" {
		t.Fatal("SaveActiveSession should assign an id")
	}
	if as.Current.Type != PeriodPlay {
		t.Fatalf("current type = %q, want play", as.Current.Type)
	}
}

func TestActiveSessionNone(t *testing.T) {
	s := newTestStore(t)
	as, err := s.ActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if as != nil {
		t.Fatal("expected nil when no session is active")
	}
}

func TestClearActiveSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()
	s.SaveActiveSession(ActiveSession{OverallStartTime: start, Current: OpenPeriod{Start: start, Type: PeriodPlay}})

	if err := s.ClearActiveSession(); err != nil {
		t.Fatal(err)
	}
	as, _ := s.ActiveSession()
	if as != nil {
		t.Fatal("active session should be cleared")
	}
}

func TestCorruptActiveSessionDiscarded(t *testing.T) {
	s := newTestStore(t)
	s.db.Exec(`INSERT INTO app_state (key, value) VALUES ('activeSession', '{broken')`)

	as, err := s.ActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if as != nil {
		t.Fatal("corrupt state should be discarded")
	}

	// The corrupt row is gone for good.
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM app_state WHERE key = 'activeSession'`).Scan(&count)
	if count != 0 {
		t.Fatal("corrupt row should be deleted")
	}
}

func TestFinalizeActiveSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	s.SaveActiveSession(ActiveSession{OverallStartTime: start, Current: OpenPeriod{Start: start, Type: PeriodPlay}})

	draft := makeSession("", start, 3600)
	if err := s.FinalizeActiveSession(draft); err != nil {
		t.Fatal(err)
	}

	// Active cleared and draft stored, in one step.
	as, _ := s.ActiveSession()
	if as != nil {
		t.Fatal("active session should be cleared by finalize")
	}
	completed, err := s.CompletedSession()
	if err != nil {
		t.Fatal(err)
	}
	if completed == nil {
		t.Fatal("expected completed draft")
	}
	if completed.OverallDuration != 3600 {
		t.Fatalf("draft duration = %d, want 3600", completed.OverallDuration)
	}
}

func TestConfirmCompletedSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	draft := makeSession("", start, 3600)

	confirmed, err := s.ConfirmCompletedSession(draft, "good session", 250)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.ID == "" {
		t.Fatal("confirm should assign an id")
	}
	if confirmed.Notes != "good session" || confirmed.HandsPlayed != 250 {
		t.Fatalf("confirmed = %+v", confirmed)
	}

	// Stored in history, draft gone.
	sessions, _ := s.ListSessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 stored session, got %d", len(sessions))
	}
	completed, _ := s.CompletedSession()
	if completed != nil {
		t.Fatal("draft should be cleared after confirm")
	}
}

func TestClearCompletedSession(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()
	s.FinalizeActiveSession(makeSession("", start, 60))

	if err := s.ClearCompletedSession(); err != nil {
		t.Fatal(err)
	}
	completed, _ := s.CompletedSession()
	if completed != nil {
		t.Fatal("draft should be discarded")
	}
	// Discarding the draft stores nothing.
	sessions, _ := s.ListSessions()
	if sessions != nil {
		t.Fatal("discarded draft must not reach history")
	}
}

// ============================================================
// Theory sessions
// ============================================================

func TestAddTheorySession(t *testing.T) {
	s := newTestStore(t)
	end := time.Date(2024, 5, 2, 23, 30, 0, 0, time.UTC)

	ts, err := s.AddTheorySession("ICM review", 1800, "solver work", end)
	if err != nil {
		t.Fatal(err)
	}
	if ts.ID == "" {
		t.Fatal("expected assigned id")
	}
	if ts.Topic != "ICM review" || ts.Duration != 1800 {
		t.Fatalf("theory session = %+v", ts)
	}
	// Start derives from end minus duration
	wantStart := end.Add(-30 * time.Minute)
	if !ts.StartTime.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", ts.StartTime, wantStart)
	}
}

func TestListTheorySessionsOrdered(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	s.AddTheorySession("later", 600, "", base.Add(2*time.Hour))
	s.AddTheorySession("earlier", 600, "", base)

	list, err := s.ListTheorySessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2, got %d", len(list))
	}
	if list[0].Topic != "earlier" {
		t.Fatalf("expected end-time order, got %s first", list[0].Topic)
	}
}

// ============================================================
// Change notifications
// ============================================================

func TestMutationsPublishChanges(t *testing.T) {
	s, b := newBusStore(t)

	var keys []string
	unsub := b.Subscribe(func(c bus.Change) {
		keys = append(keys, c.Key)
	})
	defer unsub()

	s.AddSession(makeSession("", time.Now().UTC(), 60))
	s.UpdateSettings(func(st *Settings) { st.Theme = "light" })
	s.AddTheorySession("t", 60, "", time.Now().UTC())

	want := map[string]bool{}
	for _, k := range keys {
		want[k] = true
	}
	for _, k := range []string{bus.KeySessions, bus.KeySettings, bus.KeyTheorySessions} {
		if !want[k] {
			t.Fatalf("no change published for %s (got %v)", k, keys)
		}
	}
}

func TestClearActivePublishesNil(t *testing.T) {
	s, b := newBusStore(t)

	var last *bus.Change
	unsub := b.Subscribe(func(c bus.Change) {
		if c.Key == bus.KeyActiveSession {
			cc := c
			last = &cc
		}
	})
	defer unsub()

	start := time.Now().UTC()
	s.SaveActiveSession(ActiveSession{OverallStartTime: start, Current: OpenPeriod{Start: start, Type: PeriodPlay}})
	if last == nil || last.Value == nil {
		t.Fatal("save should publish a value")
	}

	s.ClearActiveSession()
	if last == nil || last.Value != nil {
		t.Fatal("clear should publish a nil value")
	}
}

// ============================================================
// Reset
// ============================================================

func TestResetAll(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()

	s.AddSession(makeSession("", start, 60))
	s.AddTheorySession("t", 60, "", start)
	s.SetPlanForDate(start, Plan{Hours: 4})
	s.SaveActiveSession(ActiveSession{OverallStartTime: start, Current: OpenPeriod{Start: start, Type: PeriodPlay}})

	if err := s.ResetAll(); err != nil {
		t.Fatal(err)
	}

	sessions, _ := s.ListSessions()
	if sessions != nil {
		t.Fatal("sessions should be gone")
	}
	theory, _ := s.ListTheorySessions()
	if theory != nil {
		t.Fatal("theory sessions should be gone")
	}
	settings, _ := s.Settings()
	if len(settings.Plans) != 0 {
		t.Fatal("plans should be gone")
	}
	as, _ := s.ActiveSession()
	if as != nil {
		t.Fatal("active session should be gone")
	}
}

// ============================================================
// Close / double-use safety
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

// ============================================================
// Models
// ============================================================

func TestPeriodSeconds(t *testing.T) {
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		end  time.Time
		want int64
	}{
		{start.Add(90 * time.Second), 90},
		{start.Add(90*time.Second + 900*time.Millisecond), 90}, // floor
		{start, 0},
		{start.Add(-time.Minute), 0}, // clamped
	}
	for _, tt := range tests {
		p := Period{Start: start, End: tt.end, Type: PeriodPlay}
		if got := p.Seconds(); got != tt.want {
			t.Errorf("Seconds() = %d, want %d", got, tt.want)
		}
	}
}

func TestSessionPlaySelectDurations(t *testing.T) {
	start := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	sess := Session{
		Periods: []Period{
			{Start: start, End: start.Add(time.Hour), Type: PeriodPlay},
			{Start: start.Add(time.Hour), End: start.Add(90 * time.Minute), Type: PeriodSelect},
			{Start: start.Add(90 * time.Minute), End: start.Add(100 * time.Minute), Type: PeriodBreak},
			{Start: start.Add(100 * time.Minute), End: start.Add(130 * time.Minute), Type: PeriodPlay},
		},
	}
	if got := sess.PlayDuration(); got != 5400 {
		t.Fatalf("play = %d, want 5400", got)
	}
	if got := sess.SelectDuration(); got != 1800 {
		t.Fatalf("select = %d, want 1800", got)
	}
}

func TestPlanEmpty(t *testing.T) {
	if !(Plan{}).Empty() {
		t.Fatal("zero plan should be empty")
	}
	if (Plan{Hours: 1}).Empty() || (Plan{Hands: 1}).Empty() {
		t.Fatal("plans with targets are not empty")
	}
}

func TestDateKeyUsesLocalDate(t *testing.T) {
	d := time.Date(2024, 5, 2, 15, 4, 5, 0, time.Local)
	if got := DateKey(d); got != "2024-05-02" {
		t.Fatalf("DateKey = %q", got)
	}
}

func TestPeriodTypeValid(t *testing.T) {
	for _, pt := range []PeriodType{PeriodPlay, PeriodSelect, PeriodBreak} {
		if !pt.Valid() {
			t.Fatalf("%s should be valid", pt)
		}
	}
	if PeriodType("lunch").Valid() {
		t.Fatal("unknown type should be invalid")
	}
}
