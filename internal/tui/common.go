package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avakulenko/grindlog/internal/bus"
	"github.com/avakulenko/grindlog/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTracker viewState = iota
	viewDays
	viewAnalytics
	viewTheory
	viewPlans
	viewData
)

var viewNames = []string{"Tracker", "Days", "Analytics", "Theory", "Plans", "Data"}

// --- Messages ---

type sessionStartedMsg struct{}

type sessionStoppedMsg struct {
	draft *store.Session
}

type sessionConfirmedMsg struct {
	session store.Session
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	result importSummary
}

type importSummary struct {
	found      int
	added      int
	duplicates int
	skipped    int
}

type resetDoneMsg struct{}

// busChangeMsg carries a synchronizer change into the update loop.
// main forwards these through tea.Program.Send.
type busChangeMsg struct {
	change bus.Change
}

// BusChange wraps a synchronizer change so the program loop can route it.
func BusChange(c bus.Change) tea.Msg {
	return busChangeMsg{change: c}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func periodLabel(t store.PeriodType) string {
	switch t {
	case store.PeriodPlay:
		return "PLAY"
	case store.PeriodSelect:
		return "SELECT"
	case store.PeriodBreak:
		return "BREAK"
	}
	return string(t)
}
