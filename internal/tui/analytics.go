package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/store"
)

type analyticsMode int

const (
	analyticsPlay analyticsMode = iota
	analyticsTheory
)

type analyticsModel struct {
	store  *store.Store
	width  int
	height int

	mode       analyticsMode
	playPoints []report.DatePoint
	theory     []report.TheoryPoint
	playSecs   int64
	selectSecs int64

	chart barchart.Model
}

func newAnalyticsModel(s *store.Store) analyticsModel {
	return analyticsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *analyticsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type analyticsDataMsg struct {
	playPoints []report.DatePoint
	theory     []report.TheoryPoint
	playSecs   int64
	selectSecs int64
}

func (m analyticsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := m.store.ListSessions()
		theory, _ := m.store.ListTheorySessions()

		cutoff := time.Now().AddDate(0, 0, -30)
		play, sel := report.PlaySelectRatio(sessions)

		return analyticsDataMsg{
			playPoints: report.DailyPlayHours(sessions, cutoff),
			theory:     report.TheoryByDay(theory, cutoff),
			playSecs:   play,
			selectSecs: sel,
		}
	}
}

func (m analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		m.playPoints = msg.playPoints
		m.theory = msg.theory
		m.playSecs = msg.playSecs
		m.selectSecs = msg.selectSecs
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if m.mode == analyticsPlay {
				m.mode = analyticsTheory
			} else {
				m.mode = analyticsPlay
			}
			m.buildChart()
			return m, nil
		}
	}
	return m, nil
}

func (m *analyticsModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	playStyle := lipgloss.NewStyle().Foreground(colorPlay)
	theoryStyle := lipgloss.NewStyle().Foreground(colorHighlight)
	emptyStyle := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	switch m.mode {
	case analyticsTheory:
		for _, p := range m.theory {
			style := theoryStyle
			if p.TheorySecs < p.PlanSecs {
				style = lipgloss.NewStyle().Foreground(colorWarning)
			}
			bars = append(bars, barchart.BarData{
				Label:  p.Date.Format("02"),
				Values: []barchart.BarValue{{Name: "theory", Value: p.TheoryHours, Style: style}},
			})
		}
	default:
		for _, p := range m.playPoints {
			bars = append(bars, barchart.BarData{
				Label:  p.Date.Format("02"),
				Values: []barchart.BarValue{{Name: "play", Value: p.Hours, Style: playStyle}},
			})
		}
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: emptyStyle}},
		}}
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m analyticsModel) view() string {
	w := m.width - 4

	playTab := inactiveTabStyle.Render("Play hours")
	theoryTab := inactiveTabStyle.Render("Theory")
	if m.mode == analyticsPlay {
		playTab = activeTabStyle.Render("Play hours")
	} else {
		theoryTab = activeTabStyle.Render("Theory")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, playTab, theoryTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", modeTabs, "  ",
		mutedStyle.Render("last 30 days"),
	)

	chartView := m.chart.View()
	ratio := m.renderRatio()
	nav := mutedStyle.Render("  ←/→: switch chart")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", chartView, "", ratio, "", nav),
	)
}

func (m analyticsModel) renderRatio() string {
	total := m.playSecs + m.selectSecs
	if total == 0 {
		return mutedStyle.Render("  No recorded time yet")
	}

	playPct := float64(m.playSecs) / float64(total) * 100
	selPct := float64(m.selectSecs) / float64(total) * 100

	barWidth := minInt(m.width-30, 40)
	if barWidth < 10 {
		barWidth = 10
	}
	playCells := int(playPct / 100 * float64(barWidth))
	bar := lipgloss.NewStyle().Foreground(colorPlay).Render(strings.Repeat("█", playCells)) +
		lipgloss.NewStyle().Foreground(colorSelect).Render(strings.Repeat("█", barWidth-playCells))

	return fmt.Sprintf("  %s  %s play %.0f%%  select %.0f%%",
		titleStyle.Render("Play/select"), bar, playPct, selPct)
}
