// Package report turns session history into per-day, per-range and
// totals statistics. Everything here is a pure function over data:
// no clock reads, no storage access.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/avakulenko/grindlog/internal/store"
)

// DefaultTheoryPlanSeconds is the study target assumed for a day with
// no explicit theory plan (30 minutes).
const DefaultTheoryPlanSeconds = 1800

// DayRollup is the aggregate of all sessions starting on one local
// calendar day. Sessions on an off day still count toward the raw
// sums; the off-day flag only zeroes the day's plan contribution.
type DayRollup struct {
	Date time.Time // local midnight

	Sessions     []store.Session
	SessionCount int

	TotalSeconds  int64
	PlaySeconds   int64
	SelectSeconds int64
	HandsPlayed   int64
	HandsPerHour  int64 // rounded; zero when no play time

	PlanHours      float64
	PlanHands      int64
	RemainingHours float64 // max(0, plan - actual), never negative
	IsOffDay       bool
}

// HasSessions reports whether any session started on this day.
func (d DayRollup) HasSessions() bool { return d.SessionCount > 0 }

// Rollup aggregates the sessions of one local calendar day against the
// day's plan and off-day flag.
func Rollup(date time.Time, sessions []store.Session, settings store.Settings) DayRollup {
	day := localMidnight(date)
	r := DayRollup{Date: day}

	for _, sess := range sessions {
		if !sameLocalDay(sess.OverallStartTime, day) {
			continue
		}
		r.Sessions = append(r.Sessions, sess)
		r.TotalSeconds += sess.OverallDuration
		r.PlaySeconds += sess.PlayDuration()
		r.SelectSeconds += sess.SelectDuration()
		r.HandsPlayed += sess.HandsPlayed
	}
	r.SessionCount = len(r.Sessions)
	sort.Slice(r.Sessions, func(i, j int) bool {
		return r.Sessions[i].OverallStartTime.Before(r.Sessions[j].OverallStartTime)
	})

	if r.PlaySeconds > 0 {
		r.HandsPerHour = int64(math.Round(float64(r.HandsPlayed) / (float64(r.PlaySeconds) / 3600)))
	}

	key := store.DateKey(day)
	r.IsOffDay = settings.OffDays[key]
	if plan, ok := settings.Plans[key]; ok && !r.IsOffDay {
		r.PlanHours = plan.Hours
		r.PlanHands = plan.Hands
	}
	r.RemainingHours = RemainingHours(r.PlanHours, float64(r.TotalSeconds)/3600)
	return r
}

// Days produces one rollup per calendar day in [from, to], dense: days
// without sessions still appear. Descending order puts the most recent
// day first.
func Days(sessions []store.Session, settings store.Settings, from, to time.Time, descending bool) []DayRollup {
	start := localMidnight(from)
	end := localMidnight(to)
	if end.Before(start) {
		return nil
	}

	byDay := groupByDay(sessions)

	var days []DayRollup
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, Rollup(day, byDay[store.DateKey(day)], settings))
	}
	if descending {
		for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
			days[i], days[j] = days[j], days[i]
		}
	}
	return days
}

// SessionsBounds returns the local-midnight range spanned by the
// sessions' start times, for the "all history" list mode. ok is false
// when there are no sessions.
func SessionsBounds(sessions []store.Session) (from, to time.Time, ok bool) {
	if len(sessions) == 0 {
		return time.Time{}, time.Time{}, false
	}
	from = localMidnight(sessions[0].OverallStartTime)
	to = from
	for _, sess := range sessions[1:] {
		day := localMidnight(sess.OverallStartTime)
		if day.Before(from) {
			from = day
		}
		if day.After(to) {
			to = day
		}
	}
	return from, to, true
}

// Totals is the aggregate over a range of day rollups.
type Totals struct {
	TotalSeconds  int64
	PlaySeconds   int64
	SelectSeconds int64
	HandsPlayed   int64
	SessionCount  int
	PlayingDays   int // days with sessions that are not off days

	PlanHours      float64
	PlanHands      int64
	RemainingHours float64

	// AvgHandsPerHour is total hands over total play hours; days with
	// zero play time contribute their hands and hours to the sums but
	// cannot dilute the rate.
	AvgHandsPerHour int64
}

// Sum folds day rollups into range totals. Off days never contribute
// plan targets; their sessions still count toward the raw sums (the
// same policy the export summary uses).
func Sum(days []DayRollup) Totals {
	var t Totals
	for _, d := range days {
		t.TotalSeconds += d.TotalSeconds
		t.PlaySeconds += d.PlaySeconds
		t.SelectSeconds += d.SelectSeconds
		t.HandsPlayed += d.HandsPlayed
		t.SessionCount += d.SessionCount
		if d.HasSessions() && !d.IsOffDay {
			t.PlayingDays++
		}
		if !d.IsOffDay {
			t.PlanHours += d.PlanHours
			t.PlanHands += d.PlanHands
		}
	}
	if t.PlaySeconds > 0 {
		t.AvgHandsPerHour = int64(math.Round(float64(t.HandsPlayed) / (float64(t.PlaySeconds) / 3600)))
	}
	t.RemainingHours = RemainingHours(t.PlanHours, float64(t.TotalSeconds)/3600)
	return t
}

// RemainingHours is what is left of a plan, never negative.
func RemainingHours(planned, actual float64) float64 {
	if r := planned - actual; r > 0 {
		return r
	}
	return 0
}

// DatePoint is one day of a time series.
type DatePoint struct {
	Date  time.Time // local midnight
	Hours float64   // rounded to 2 decimals
}

// DailyPlayHours returns play hours per day for sessions starting
// after cutoff, ordered by date. Days without sessions are omitted;
// chart consumers do not need a dense calendar.
func DailyPlayHours(sessions []store.Session, cutoff time.Time) []DatePoint {
	secs := map[string]int64{}
	for _, sess := range sessions {
		if !sess.OverallStartTime.After(cutoff) {
			continue
		}
		secs[store.DateKey(sess.OverallStartTime)] += sess.PlayDuration()
	}
	return sortedPoints(secs)
}

// PlaySelectRatio sums play and select seconds across all sessions.
func PlaySelectRatio(sessions []store.Session) (playSeconds, selectSeconds int64) {
	for _, sess := range sessions {
		playSeconds += sess.PlayDuration()
		selectSeconds += sess.SelectDuration()
	}
	return playSeconds, selectSeconds
}

// TheoryPoint compares one day's study time with its plan.
type TheoryPoint struct {
	Date        time.Time // local midnight
	TheorySecs  int64
	PlanSecs    int64
	TheoryHours float64
	PlanHours   float64
}

// TheoryByDay buckets theory sessions by their end timestamp's local
// date, so a study block that crosses midnight counts for the day it
// finished. Each day is compared against the default theory plan.
func TheoryByDay(theory []store.TheorySession, cutoff time.Time) []TheoryPoint {
	secs := map[string]int64{}
	for _, ts := range theory {
		if !ts.EndTime.After(cutoff) {
			continue
		}
		secs[store.DateKey(ts.EndTime)] += ts.Duration
	}

	keys := make([]string, 0, len(secs))
	for k := range secs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var points []TheoryPoint
	for _, k := range keys {
		day, err := time.ParseInLocation("2006-01-02", k, time.Local)
		if err != nil {
			continue
		}
		points = append(points, TheoryPoint{
			Date:        day,
			TheorySecs:  secs[k],
			PlanSecs:    DefaultTheoryPlanSeconds,
			TheoryHours: RoundHours(float64(secs[k]) / 3600),
			PlanHours:   RoundHours(DefaultTheoryPlanSeconds / 3600.0),
		})
	}
	return points
}

// TheoryTotalSince sums study seconds for sessions ending after cutoff.
func TheoryTotalSince(theory []store.TheorySession, cutoff time.Time) int64 {
	var total int64
	for _, ts := range theory {
		if ts.EndTime.After(cutoff) || ts.EndTime.Equal(cutoff) {
			total += ts.Duration
		}
	}
	return total
}

// RoundHours rounds an hour value to 2 decimal places for display.
// Sums are kept in whole seconds until this final formatting step.
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}

func groupByDay(sessions []store.Session) map[string][]store.Session {
	byDay := map[string][]store.Session{}
	for _, sess := range sessions {
		key := store.DateKey(sess.OverallStartTime)
		byDay[key] = append(byDay[key], sess)
	}
	return byDay
}

func sortedPoints(secs map[string]int64) []DatePoint {
	keys := make([]string, 0, len(secs))
	for k := range secs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var points []DatePoint
	for _, k := range keys {
		day, err := time.ParseInLocation("2006-01-02", k, time.Local)
		if err != nil {
			continue
		}
		points = append(points, DatePoint{Date: day, Hours: RoundHours(float64(secs[k]) / 3600)})
	}
	return points
}

func localMidnight(t time.Time) time.Time {
	l := t.Local()
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.Local)
}

func sameLocalDay(t, day time.Time) bool {
	l := t.Local()
	return l.Year() == day.Year() && l.Month() == day.Month() && l.Day() == day.Day()
}
