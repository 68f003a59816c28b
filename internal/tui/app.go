package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/session"
	"github.com/avakulenko/grindlog/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	width  int
	height int

	activeView viewState
	showHelp   bool

	tracker   trackerModel
	days      daysModel
	analytics analyticsModel
	theory    theoryModel
	plans     plansModel
	data      dataModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store, tr *session.Tracker) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		activeView: viewTracker,
		tracker:    newTrackerModel(s, tr),
		days:       newDaysModel(s),
		analytics:  newAnalyticsModel(s),
		theory:     newTheoryModel(s),
		plans:      newPlansModel(s),
		data:       newDataModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.tracker.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tracker.setSize(a.width, contentHeight)
		a.days.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.theory.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.data.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTracker
			return a, a.tracker.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewDays
			return a, a.days.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAnalytics
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTheory
			return a, a.theory.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewPlans
			return a, a.plans.refresh()
		case key.Matches(msg, keys.Tab6):
			a.activeView = viewData
			return a, nil
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The game and theory timers both track wall time.
		var cmd tea.Cmd
		a.tracker, cmd = a.tracker.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.theory, cmd = a.theory.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case busChangeMsg:
		// Another instance changed the data. Reload the tracker and
		// whatever screen is showing.
		cmds = append(cmds, a.tracker.loadData())
		if a.activeView != viewTracker {
			if cmd := a.refreshCurrentView(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case sessionStartedMsg:
		a.status = "Session started"
		a.statusErr = false
		return a, nil

	case sessionStoppedMsg:
		a.status = "Session stopped"
		a.statusErr = false
		return a, nil

	case sessionConfirmedMsg:
		a.status = "Session saved"
		a.statusErr = false
		return a, tea.Batch(a.tracker.loadData(), a.days.refresh())

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		return a, nil

	case importDoneMsg:
		r := msg.result
		a.status = fmt.Sprintf("Imported %d of %d sessions (%d duplicates, %d rows skipped)",
			r.added, r.found, r.duplicates, r.skipped)
		a.statusErr = false
		return a, tea.Batch(a.tracker.loadData(), a.days.refresh())

	case resetDoneMsg:
		a.status = "All data deleted"
		a.statusErr = false
		return a, a.tracker.loadData()
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTracker:
		a.tracker, cmd = a.tracker.update(msg)
	case viewDays:
		a.days, cmd = a.days.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewTheory:
		a.theory, cmd = a.theory.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewData:
		a.data, cmd = a.data.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTracker:
		return a.tracker.formActive
	case viewDays:
		return a.days.formActive
	case viewTheory:
		return a.theory.formActive
	case viewPlans:
		return a.plans.formActive
	case viewData:
		return a.data.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTracker:
		return a.tracker.loadData()
	case viewDays:
		return a.days.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewTheory:
		return a.theory.refresh()
	case viewPlans:
		return a.plans.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTracker:
		content = a.tracker.view()
	case viewDays:
		content = a.days.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewTheory:
		content = a.theory.view()
	case viewPlans:
		content = a.plans.view()
	case viewData:
		content = a.data.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("grindlog")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Running session indicator, visible from every tab.
	timerInfo := ""
	if a.tracker.tracker.Running() {
		label := periodLabel(a.tracker.tracker.CurrentType())
		elapsed := a.tracker.tracker.Elapsed(time.Now())
		timerInfo = timerStyleFor(label).Render(fmt.Sprintf(" ● %s %s", label, formatSeconds(elapsed)))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
