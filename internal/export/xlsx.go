// Package export maps session history to and from spreadsheet rows.
// Each exported row carries a hidden serialized copy of that day's
// sessions so a file can be re-imported losslessly.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/store"
)

const (
	sheetName = "Sessions"

	// rawHeader names the hidden column carrying the serialized
	// sessions of each row; import locates it by this header.
	rawHeader = "Raw Data"

	// offDayMarker replaces the raw payload on off-day rows.
	offDayMarker = "IS_OFF_DAY"
)

// Column ids, in export order.
const (
	ColDate            = "date"
	ColSessionDateTime = "sessionDateTime"
	ColSessionCount    = "sessionCount"
	ColTotalTime       = "totalTime"
	ColPlanHours       = "planHours"
	ColPlanRemaining   = "planRemaining"
	ColPlayTime        = "playTime"
	ColSelectTime      = "selectTime"
	ColHands           = "hands"
	ColPlanHands       = "planHands"
	ColHandsPerHour    = "handsPerHour"
	ColNotes           = "notes"
)

// Column is one selectable export column.
type Column struct {
	ID    string
	Label string
}

// Columns lists every visible column in layout order.
var Columns = []Column{
	{ColDate, "Date"},
	{ColSessionDateTime, "Sessions"},
	{ColSessionCount, "Session count"},
	{ColTotalTime, "Total time"},
	{ColPlanHours, "Plan (hours)"},
	{ColPlanRemaining, "Plan remaining"},
	{ColPlayTime, "Play time"},
	{ColSelectTime, "Select time"},
	{ColHands, "Hands"},
	{ColPlanHands, "Plan (hands)"},
	{ColHandsPerHour, "Hands/hour"},
	{ColNotes, "Notes"},
}

// Options select the exported range and layout.
type Options struct {
	From, To   time.Time
	Columns    []string // column ids; empty selects all
	ShowTotals bool
}

func (o Options) selected() []Column {
	if len(o.Columns) == 0 {
		return Columns
	}
	want := make(map[string]bool, len(o.Columns))
	for _, id := range o.Columns {
		want[id] = true
	}
	var cols []Column
	for _, c := range Columns {
		if want[c.ID] {
			cols = append(cols, c)
		}
	}
	return cols
}

// ToXLSX renders one row per calendar day in the requested range and
// returns the workbook bytes for the export sink. Off days become a
// single merged marker row; every other row carries the hidden raw
// payload of its sessions.
func ToXLSX(sessions []store.Session, settings store.Settings, opts Options) ([]byte, error) {
	days := report.Days(sessions, settings, opts.From, opts.To, false)
	cols := opts.selected()

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	italic, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true, Color: "666666"}})
	if err != nil {
		return nil, fmt.Errorf("create description style: %w", err)
	}
	offFill, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE3EA"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create off-day style: %w", err)
	}

	// Header row. The raw column sits after the visible ones.
	rawCol := len(cols) + 1
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, c.Label)
		f.SetCellStyle(sheetName, cell, cell, bold)
	}
	rawHeaderCell, _ := excelize.CoordinatesToCellName(rawCol, 1)
	f.SetCellValue(sheetName, rawHeaderCell, rawHeader)

	rawColName, _ := excelize.ColumnNumberToName(rawCol)
	f.SetColVisible(sheetName, rawColName, false)

	row := 2
	for _, d := range days {
		if err := writeDayRow(f, d, cols, rawCol, row, offFill); err != nil {
			return nil, err
		}
		row++
	}

	if opts.ShowTotals {
		row++ // spacer
		totals := report.Sum(days)
		writeTotalsRows(f, totals, cols, row, bold, italic)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDayRow(f *excelize.File, d report.DayRollup, cols []Column, rawCol, row int, offFill int) error {
	rawCell, _ := excelize.CoordinatesToCellName(rawCol, row)

	if d.IsOffDay {
		f.SetCellValue(sheetName, rawCell, offDayMarker)
		first, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheetName, first, formatDate(d.Date))
		if len(cols) > 1 {
			second, _ := excelize.CoordinatesToCellName(2, row)
			last, _ := excelize.CoordinatesToCellName(len(cols), row)
			f.SetCellValue(sheetName, second, "Day off")
			if err := f.MergeCell(sheetName, second, last); err != nil {
				return fmt.Errorf("merge off-day row %d: %w", row, err)
			}
			f.SetCellStyle(sheetName, second, last, offFill)
		}
		return nil
	}

	if d.HasSessions() {
		payload, err := json.Marshal(d.Sessions)
		if err != nil {
			return fmt.Errorf("marshal raw payload for %s: %w", d.Date.Format("2006-01-02"), err)
		}
		f.SetCellValue(sheetName, rawCell, string(payload))
	}

	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if v := dayCell(d, c.ID); v != nil {
			f.SetCellValue(sheetName, cell, v)
		}
	}
	return nil
}

// dayCell returns the display value for one column of a day row, or
// nil for cells left blank on empty days.
func dayCell(d report.DayRollup, colID string) any {
	empty := !d.HasSessions()
	switch colID {
	case ColDate:
		return formatDate(d.Date)
	case ColSessionDateTime:
		if empty {
			return nil
		}
		return formatSessionTimes(d.Sessions)
	case ColSessionCount:
		if empty {
			return nil
		}
		return d.SessionCount
	case ColTotalTime:
		if empty {
			return nil
		}
		return formatDuration(d.TotalSeconds)
	case ColPlanHours:
		if d.PlanHours <= 0 {
			return nil
		}
		return d.PlanHours
	case ColPlanRemaining:
		if d.PlanHours <= 0 {
			return nil
		}
		return formatHoursMinutes(int64(d.PlanHours*3600) - d.TotalSeconds)
	case ColPlayTime:
		if empty {
			return nil
		}
		return formatDuration(d.PlaySeconds)
	case ColSelectTime:
		if empty {
			return nil
		}
		return formatDuration(d.SelectSeconds)
	case ColHands:
		if empty {
			return nil
		}
		return d.HandsPlayed
	case ColPlanHands:
		if d.PlanHands <= 0 {
			return nil
		}
		return d.PlanHands
	case ColHandsPerHour:
		if empty {
			return nil
		}
		return d.HandsPerHour
	case ColNotes:
		return joinNotes(d.Sessions)
	}
	return nil
}

func writeTotalsRows(f *excelize.File, t report.Totals, cols []Column, row int, bold, italic int) {
	values := map[string]any{
		ColDate:          t.PlayingDays,
		ColSessionCount:  t.SessionCount,
		ColTotalTime:     formatHoursMinutes(t.TotalSeconds),
		ColPlanHours:     t.PlanHours,
		ColPlanRemaining: formatHoursMinutes(int64(t.RemainingHours * 3600)),
		ColPlayTime:      formatHoursMinutes(t.PlaySeconds),
		ColSelectTime:    formatHoursMinutes(t.SelectSeconds),
		ColHands:         t.HandsPlayed,
		ColPlanHands:     t.PlanHands,
		ColHandsPerHour:  t.AvgHandsPerHour,
	}
	labels := map[string]string{
		ColDate:          "Playing days",
		ColSessionCount:  "Total sessions",
		ColTotalTime:     "Total time",
		ColPlanHours:     "Planned hours",
		ColPlanRemaining: "Plan remaining",
		ColPlayTime:      "Total play time",
		ColSelectTime:    "Total select time",
		ColHands:         "Total hands",
		ColPlanHands:     "Planned hands",
		ColHandsPerHour:  "Avg hands/hour",
	}

	for i, c := range cols {
		if v, ok := values[c.ID]; ok {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
			f.SetCellStyle(sheetName, cell, cell, bold)
		}
		if l, ok := labels[c.ID]; ok {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+1)
			f.SetCellValue(sheetName, cell, l)
			f.SetCellStyle(sheetName, cell, cell, italic)
		}
	}
}

func formatDate(day time.Time) string {
	return day.Format("2 January 2006")
}

// formatSessionTimes renders "2 May 2024 10:00-14:00" for a single
// session, or the date followed by each session's time range.
func formatSessionTimes(sessions []store.Session) string {
	if len(sessions) == 0 {
		return ""
	}
	first := sessions[0]
	datePart := first.OverallStartTime.Local().Format("2 January 2006")
	if len(sessions) == 1 {
		return fmt.Sprintf("%s %s-%s",
			datePart,
			first.OverallStartTime.Local().Format("15:04"),
			first.OverallEndTime.Local().Format("15:04"))
	}
	out := datePart
	for _, s := range sessions {
		out += fmt.Sprintf(" (%s-%s)",
			s.OverallStartTime.Local().Format("15:04"),
			s.OverallEndTime.Local().Format("15:04"))
	}
	return out
}

func joinNotes(sessions []store.Session) string {
	var notes string
	for _, s := range sessions {
		if s.Notes == "" {
			continue
		}
		if notes != "" {
			notes += "; "
		}
		notes += s.Notes
	}
	return notes
}

func formatDuration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatHoursMinutes renders a signed "2h 15m" style value; plan
// deficits come out negative.
func formatHoursMinutes(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%dh %dm", sign, secs/3600, (secs%3600)/60)
}
