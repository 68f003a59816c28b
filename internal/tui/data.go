package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avakulenko/grindlog/internal/export"
	"github.com/avakulenko/grindlog/internal/report"
	"github.com/avakulenko/grindlog/internal/store"
)

type dataAction int

const (
	actionExportMonth dataAction = iota
	actionExportAll
	actionExportCSV
	actionExportSettings
	actionImportSheet
	actionImportSettings
	actionReset
)

var dataActions = []struct {
	action dataAction
	label  string
}{
	{actionExportMonth, "Export spreadsheet (this month)"},
	{actionExportAll, "Export spreadsheet (all time)"},
	{actionExportCSV, "Export sessions CSV"},
	{actionExportSettings, "Export settings JSON"},
	{actionImportSheet, "Import spreadsheet"},
	{actionImportSettings, "Import settings JSON"},
	{actionReset, "Reset all data"},
}

type dataModel struct {
	store  *store.Store
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	pending    dataAction
	pathValue  *string
	confirmVal *bool
}

func newDataModel(s *store.Store) dataModel {
	path := ""
	confirm := false
	return dataModel{
		store:      s,
		pathValue:  &path,
		confirmVal: &confirm,
	}
}

func (m *dataModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m dataModel) update(msg tea.Msg) (dataModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(dataActions)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			return m.runAction(dataActions[m.cursor].action)
		case key.Matches(msg, keys.Export):
			return m.runAction(actionExportMonth)
		case key.Matches(msg, keys.Import):
			return m.runAction(actionImportSheet)
		}
	}
	return m, nil
}

func (m dataModel) runAction(action dataAction) (dataModel, tea.Cmd) {
	switch action {
	case actionExportMonth, actionExportAll:
		return m, m.exportSheet(action == actionExportAll)
	case actionExportCSV:
		return m, m.exportCSV()
	case actionExportSettings:
		return m, m.exportSettings()
	case actionImportSheet, actionImportSettings:
		return m.showPathForm(action)
	case actionReset:
		return m.showResetForm()
	}
	return m, nil
}

func (m dataModel) showPathForm(action dataAction) (dataModel, tea.Cmd) {
	*m.pathValue = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("File path").Value(m.pathValue),
		).Title(dataActions[action].label),
	).WithShowHelp(true).WithShowErrors(true)
	m.pending = action
	m.formActive = true
	return m, m.form.Init()
}

func (m dataModel) showResetForm() (dataModel, tea.Cmd) {
	*m.confirmVal = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete ALL sessions, plans and settings?").
				Affirmative("Delete everything").
				Negative("Cancel").
				Value(m.confirmVal),
		),
	).WithShowHelp(true).WithShowErrors(true)
	m.pending = actionReset
	m.formActive = true
	return m, m.form.Init()
}

func (m dataModel) updateForm(msg tea.Msg) (dataModel, tea.Cmd) {
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
		switch m.pending {
		case actionImportSheet:
			return m, m.importSheet(strings.TrimSpace(*m.pathValue))
		case actionImportSettings:
			return m, m.importSettings(strings.TrimSpace(*m.pathValue))
		case actionReset:
			if !*m.confirmVal {
				return m, nil
			}
			return m, m.reset()
		}
		return m, nil
	}

	return m, cmd
}

func (m dataModel) exportSheet(allTime bool) tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.store.ListSessions()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		settings, _ := m.store.Settings()

		var from, to time.Time
		if allTime {
			var ok bool
			from, to, ok = report.SessionsBounds(sessions)
			if !ok {
				return statusMsg{text: "Nothing to export", isError: true}
			}
		} else {
			now := time.Now()
			from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
			to = from.AddDate(0, 1, -1)
		}

		data, err := export.ToXLSX(sessions, settings, export.Options{
			From: from, To: to, ShowTotals: true,
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := exportPath("grindlog-%s.xlsx")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return statusMsg{text: fmt.Sprintf("Write error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (m dataModel) exportCSV() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.store.ListSessions()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path := exportPath("grindlog-sessions-%s.csv")
		if err := export.ToCSV(sessions, path); err != nil {
			return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (m dataModel) exportSettings() tea.Cmd {
	return func() tea.Msg {
		settings, err := m.store.Settings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		path := exportPath("grindlog-settings-%s.json")
		if err := export.SettingsToJSON(settings, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (m dataModel) importSheet(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Read error: %v", err), isError: true}
		}
		res, err := export.Import(m.store, data)
		if errors.Is(err, export.ErrNoSessions) {
			return statusMsg{text: "No sessions found in that file"}
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		return importDoneMsg{result: importSummary{
			found:      res.Found,
			added:      res.Added,
			duplicates: res.Duplicates,
			skipped:    res.SkippedRows,
		}}
	}
}

func (m dataModel) importSettings(path string) tea.Cmd {
	return func() tea.Msg {
		settings, err := export.SettingsFromJSON(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		if err := m.store.ReplaceSettings(settings); err != nil {
			return statusMsg{text: fmt.Sprintf("Import error: %v", err), isError: true}
		}
		return statusMsg{text: "Settings imported"}
	}
}

func (m dataModel) reset() tea.Cmd {
	return func() tea.Msg {
		if err := m.store.ResetAll(); err != nil {
			return statusMsg{text: fmt.Sprintf("Reset error: %v", err), isError: true}
		}
		return resetDoneMsg{}
	}
}

func exportPath(pattern string) string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fmt.Sprintf(pattern, time.Now().Format("2006-01-02")))
}

func (m dataModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		return activePanelStyle.Width(w).Render(m.form.View())
	}

	title := titleStyle.Render("Data")

	var rows []string
	rows = append(rows, title, "")
	for i, a := range dataActions {
		cursor := "  "
		style := normalItemStyle
		if a.action == actionReset {
			style = errorStyle
		}
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+a.label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: run  e: quick export  i: import  ↑/↓: choose"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
