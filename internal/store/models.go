package store

import "time"

// PeriodType classifies what a span of session time was spent on.
type PeriodType string

const (
	PeriodPlay   PeriodType = "play"
	PeriodSelect PeriodType = "select"
	PeriodBreak  PeriodType = "break"
)

// Valid reports whether t is one of the known period types.
func (t PeriodType) Valid() bool {
	switch t {
	case PeriodPlay, PeriodSelect, PeriodBreak:
		return true
	}
	return false
}

// Period is a closed, contiguous span of one activity type. The JSON
// field names match the export payload format, so exported rows can be
// re-imported losslessly.
type Period struct {
	Start time.Time  `json:"startTime"`
	End   time.Time  `json:"endTime"`
	Type  PeriodType `json:"type"`
}

// Seconds returns the period length in whole seconds, never negative.
func (p Period) Seconds() int64 {
	d := int64(p.End.Sub(p.Start) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// OpenPeriod is the single currently running period of an active
// session. It has no end time yet.
type OpenPeriod struct {
	Start time.Time  `json:"startTime"`
	Type  PeriodType `json:"type"`
}

// ActiveSession is the one in-progress session. Closed holds finished
// periods in order; Current is the open tail period.
type ActiveSession struct {
	ID               string     `json:"id"`
	OverallStartTime time.Time  `json:"overallStartTime"`
	Closed           []Period   `json:"periods"`
	Current          OpenPeriod `json:"current"`
}

// Session is a finalized, historical session. Immutable after creation
// except through explicit user edits or bulk import.
type Session struct {
	ID               string    `json:"id"`
	OverallStartTime time.Time `json:"overallStartTime"`
	OverallEndTime   time.Time `json:"overallEndTime"`
	OverallDuration  int64     `json:"overallDuration"` // seconds, derived from start/end
	OverallProfit    float64   `json:"overallProfit"`   // reserved, always 0
	OverallHands     int64     `json:"overallHandsPlayed"`
	HandsPlayed      int64     `json:"handsPlayed"` // supplied post-hoc by the user
	Notes            string    `json:"notes"`
	Periods          []Period  `json:"periods"`
}

// PlayDuration returns the summed length of play periods, in seconds.
func (s Session) PlayDuration() int64 { return s.periodSum(PeriodPlay) }

// SelectDuration returns the summed length of select periods, in seconds.
func (s Session) SelectDuration() int64 { return s.periodSum(PeriodSelect) }

func (s Session) periodSum(t PeriodType) int64 {
	var sum int64
	for _, p := range s.Periods {
		if p.Type == t {
			sum += p.Seconds()
		}
	}
	return sum
}

// TheorySession is a study-time log entry, independent of game sessions.
type TheorySession struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Duration  int64     `json:"duration"` // seconds
	Notes     string    `json:"notes"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Plan is the target for one calendar date.
type Plan struct {
	Hours float64 `json:"hours"`
	Hands int64   `json:"hands"`
}

// Empty reports whether the plan is equivalent to no plan at all.
// Empty plans are removed from settings, never stored as zeros.
func (p Plan) Empty() bool { return p.Hours <= 0 && p.Hands <= 0 }

// Goals are overall targets shown on the tracker screen.
type Goals struct {
	Hours    float64 `json:"hours"`
	Hands    int64   `json:"hands"`
	Sessions int64   `json:"sessions"`
}

// ListViewOptions control the day-table layout and its date range.
type ListViewOptions struct {
	ShowMonth              bool   `json:"showMonth"`
	ShowDayOfWeek          bool   `json:"showDayOfWeek"`
	ShowYear               bool   `json:"showYear"`
	DateRangeMode          string `json:"dateRangeMode"` // all | week | month | custom
	CustomStartDate        string `json:"customStartDate"`
	CustomEndDate          string `json:"customEndDate"`
	SortOrder              string `json:"sortOrder"` // asc | desc
	ShowStartTime          bool   `json:"showStartTime"`
	ShowEndTime            bool   `json:"showEndTime"`
	ShowSessionCount       bool   `json:"showSessionCount"`
	ShowDuration           bool   `json:"showDuration"`
	ShowHandsPerHour       bool   `json:"showHandsPerHour"`
	ShowDailyPlan          bool   `json:"showDailyPlan"`
	ShowDailyPlanRemaining bool   `json:"showDailyPlanRemaining"`
	ShowDailyPlanHands     bool   `json:"showDailyPlanHands"`
	ShowTotalPlayTime      bool   `json:"showTotalPlayTime"`
	ShowTotalPlanRemaining bool   `json:"showTotalPlanRemaining"`
	ShowTotalsRow          bool   `json:"showTotalsRow"`
}

// Settings is the single process-wide configuration object. Plans and
// OffDays are sparse maps keyed by YYYY-MM-DD; OffDays never stores an
// explicit false.
type Settings struct {
	Theme              string          `json:"theme"`
	SplitPeriods       bool            `json:"splitPeriods"`
	ShowNotes          bool            `json:"showNotes"`
	ShowHandsPlayed    bool            `json:"showHandsPlayed"`
	AllowManualEditing bool            `json:"allowManualEditing"`
	ShowLiveClock      bool            `json:"showLiveClock"`
	ShowTodayStats     bool            `json:"showTodayStats"`
	ShowTheoryColumns  bool            `json:"showTheoryColumns"`
	Goals              Goals           `json:"goals"`
	ListViewOptions    ListViewOptions `json:"listViewOptions"`
	Plans              map[string]Plan `json:"plans"`
	OffDays            map[string]bool `json:"offDays"`
}

// DefaultSettings returns the settings used on first run and after a
// full reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:             "dark",
		SplitPeriods:      true,
		ShowNotes:         true,
		ShowHandsPlayed:   true,
		ShowLiveClock:     true,
		ShowTodayStats:    true,
		ShowTheoryColumns: true,
		ListViewOptions: ListViewOptions{
			ShowMonth:         true,
			DateRangeMode:     "month",
			SortOrder:         "desc",
			ShowStartTime:     true,
			ShowEndTime:       true,
			ShowSessionCount:  true,
			ShowDuration:      true,
			ShowHandsPerHour:  true,
			ShowTotalPlayTime: true,
		},
		Plans:   map[string]Plan{},
		OffDays: map[string]bool{},
	}
}

// DateKey formats t's local calendar date as the YYYY-MM-DD map key
// used by Plans and OffDays.
func DateKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
