package tui

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/collegeite/rowingdb/internal/config"
	"github.com/collegeite/rowingdb/internal/database/repository"
	"github.com/collegeite/rowingdb/internal/service"
)

// Repos bundles the repositories handed to tabs.
type Repos struct {
	Schools        *repository.SchoolRepo
	Regattas       *repository.RegattaRepo
	Events         *repository.EventRepo
	Entries        *repository.EntryRepo
	Conferences    *repository.ConferenceRepo
	Participations *repository.ParticipationRepo
	Changes        *repository.ChangeRepo
}

type Services struct {
	Auditor     *service.SchoolAuditor
	Matcher     *service.SchoolMatcher
	Maintenance *service.MaintenanceService
}

// deps is what each tab constructor receives.
type deps struct {
	ctx      context.Context
	cfg      config.Config
	repos    Repos
	services Services
}

type dialogKind int

const (
	dialogNone dialogKind = iota
	dialogInfo
	dialogError
	dialogConfirm
)

type dialog struct {
	kind    dialogKind
	title   string
	message string
	action  func() tea.Msg
}

// App is the window controller. It owns the tab set, the shared selection
// state and the dialog layer; everything else is delegated to tabs.
type App struct {
	ctx    context.Context
	cfg    config.Config
	db     *sql.DB
	log    *log.Logger
	tabs   []Tab
	active int

	width  int
	height int
	status string
	dialog dialog

	currentRegattaID      *int64
	currentEventID        *int64
	currentEventBoatClass string
}

func New(ctx context.Context, cfg config.Config, db *sql.DB, repos Repos, services Services, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	d := deps{ctx: ctx, cfg: cfg, repos: repos, services: services}
	return &App{
		ctx: ctx,
		cfg: cfg,
		db:  db,
		log: logger,
		tabs: []Tab{
			newRegattasTab(d),
			newEventsTab(d),
			newEntriesTab(d),
			newConferencesTab(d),
			newSchoolsTab(d),
		},
	}
}

// Database exposes the underlying handle to collaborators that need raw
// access (exports, maintenance).
func (a *App) Database() *sql.DB { return a.db }

// CurrentRegattaID returns the selected regatta, nil when none is chosen.
func (a *App) CurrentRegattaID() *int64 { return a.currentRegattaID }

// CurrentEventID returns the selected event, nil when none is chosen.
func (a *App) CurrentEventID() *int64 { return a.currentEventID }

// CurrentEventBoatClass returns the boat class of the selected event, empty
// when no event is chosen.
func (a *App) CurrentEventBoatClass() string { return a.currentEventBoatClass }

// SetCurrentRegatta updates the shared regatta selection and returns the
// broadcast command. Changing regattas clears the event selection since the
// old event no longer belongs to the visible regatta.
func (a *App) SetCurrentRegatta(id *int64) tea.Cmd {
	a.currentRegattaID = id
	a.currentEventID = nil
	a.currentEventBoatClass = ""
	return func() tea.Msg { return regattaChangedMsg{id: id} }
}

// SetCurrentEvent updates the shared event selection. The id and boat class
// are always set together.
func (a *App) SetCurrentEvent(id *int64, boatClass string) tea.Cmd {
	if id == nil {
		boatClass = ""
	}
	a.currentEventID = id
	a.currentEventBoatClass = boatClass
	return func() tea.Msg { return eventChangedMsg{id: id, boatClass: boatClass} }
}

// RefreshAllTabs re-runs every tab's loader.
func (a *App) RefreshAllTabs() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.tabs))
	for _, t := range a.tabs {
		if cmd := t.Refresh(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// RefreshSchoolDependentTabs re-runs loaders of tabs that display school
// names. Called after roster edits; other tabs keep their state.
func (a *App) RefreshSchoolDependentTabs() tea.Cmd {
	var cmds []tea.Cmd
	for _, t := range a.tabs {
		sd, ok := t.(schoolDependent)
		if !ok || !sd.DependsOnSchools() {
			continue
		}
		if cmd := t.Refresh(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// ShowStatus puts a transient message in the status bar.
func (a *App) ShowStatus(msg string) { a.status = msg }

// ShowInfo opens an informational dialog.
func (a *App) ShowInfo(title, message string) {
	a.dialog = dialog{kind: dialogInfo, title: title, message: message}
}

// ShowError opens an error dialog.
func (a *App) ShowError(err error) {
	if err == nil {
		return
	}
	a.log.Error("ui error", "err", err)
	a.dialog = dialog{kind: dialogError, title: "Error", message: err.Error()}
}

// ConfirmAction opens a yes/no dialog and runs action if confirmed.
func (a *App) ConfirmAction(title, message string, action func() tea.Msg) {
	a.dialog = dialog{kind: dialogConfirm, title: title, message: message, action: action}
}

// Close releases the database handle. Safe to call more than once.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		a.log.Error("close database", "err", err)
	}
	return err
}

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.tabs))
	for _, t := range a.tabs {
		if cmd := t.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, a.broadcast(m)

	case tea.KeyMsg:
		if a.dialog.kind != dialogNone {
			return a.handleDialogKey(m)
		}
		if t, ok := a.tabs[a.active].(inputCapturer); ok && t.CapturesInput() {
			return a, a.updateActive(m)
		}
		switch {
		case key.Matches(m, keys.Quit):
			_ = a.Close()
			return a, tea.Quit
		case key.Matches(m, keys.NextTab):
			a.active = (a.active + 1) % len(a.tabs)
			a.status = ""
			return a, a.tabs[a.active].Refresh()
		case key.Matches(m, keys.PrevTab):
			a.active = (a.active - 1 + len(a.tabs)) % len(a.tabs)
			a.status = ""
			return a, a.tabs[a.active].Refresh()
		case key.Matches(m, keys.Refresh):
			a.status = "refreshed"
			return a, a.RefreshAllTabs()
		}
		if n := tabNumber(m.String()); n >= 0 && n < len(a.tabs) {
			a.active = n
			a.status = ""
			return a, a.tabs[a.active].Refresh()
		}
		return a, a.updateActive(m)

	case selectRegattaMsg:
		return a, a.SetCurrentRegatta(m.id)

	case selectEventMsg:
		return a, a.SetCurrentEvent(m.id, m.boatClass)

	case regattaChangedMsg, eventChangedMsg:
		return a, a.broadcast(msg)

	case schoolsChangedMsg:
		return a, a.RefreshSchoolDependentTabs()

	case actionDoneMsg:
		a.status = m.status
		var cmds []tea.Cmd
		if m.clearSelection && a.currentRegattaID != nil {
			cmds = append(cmds, a.SetCurrentRegatta(nil))
		}
		if m.deletedRegattaID != nil && a.currentRegattaID != nil && *m.deletedRegattaID == *a.currentRegattaID {
			cmds = append(cmds, a.SetCurrentRegatta(nil))
		}
		if m.deletedEventID != nil && a.currentEventID != nil && *m.deletedEventID == *a.currentEventID {
			cmds = append(cmds, a.SetCurrentEvent(nil, ""))
		}
		if m.scope == refreshSchoolDependent {
			cmds = append(cmds, a.RefreshSchoolDependentTabs())
		} else {
			cmds = append(cmds, a.RefreshAllTabs())
		}
		return a, tea.Batch(cmds...)

	case refreshTabsMsg:
		if m.scope == refreshSchoolDependent {
			return a, a.RefreshSchoolDependentTabs()
		}
		return a, a.RefreshAllTabs()

	case confirmMsg:
		a.ConfirmAction(m.title, m.message, m.action)
		return a, nil

	case infoMsg:
		a.ShowInfo(m.title, m.message)
		return a, nil

	case statusMsg:
		a.status = string(m)
		return a, nil

	case errMsg:
		a.ShowError(m.error)
		return a, nil
	}
	return a, a.updateActive(msg)
}

// broadcast delivers msg to every tab, not just the active one.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, t := range a.tabs {
		next, cmd := t.Update(msg)
		a.tabs[i] = next
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	next, cmd := a.tabs[a.active].Update(msg)
	a.tabs[a.active] = next
	return cmd
}

func (a *App) handleDialogKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.dialog.kind {
	case dialogConfirm:
		switch m.String() {
		case "y", "Y", "enter":
			action := a.dialog.action
			a.dialog = dialog{}
			if action == nil {
				return a, nil
			}
			return a, action
		case "n", "N", "esc":
			a.dialog = dialog{}
		}
	default:
		switch m.String() {
		case "enter", "esc", " ":
			a.dialog = dialog{}
		}
	}
	return a, nil
}

func tabNumber(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

func (a *App) View() string {
	width, height := a.width, a.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 30
	}

	bar := a.renderTabBar()
	status := a.renderStatusBar(width)
	bodyHeight := height - lipgloss.Height(bar) - lipgloss.Height(status)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := a.tabs[a.active].View(width, bodyHeight)

	base := lipgloss.JoinVertical(lipgloss.Left, bar, body, status)
	if a.dialog.kind == dialogNone {
		return base
	}
	return overlayDialog(base, a.renderDialog(), width, height)
}

func (a *App) renderTabBar() string {
	parts := make([]string, 0, len(a.tabs))
	for i, t := range a.tabs {
		label := fmt.Sprintf("%d %s", i+1, t.Title())
		if i == a.active {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderStatusBar(width int) string {
	left := a.status
	if left == "" {
		left = a.selectionSummary()
	}
	return statusBarStyle.Width(width).Render(left)
}

func (a *App) selectionSummary() string {
	reg := "no regatta"
	if a.currentRegattaID != nil {
		reg = fmt.Sprintf("regatta #%d", *a.currentRegattaID)
	}
	ev := "no event"
	if a.currentEventID != nil {
		ev = fmt.Sprintf("event #%d (%s)", *a.currentEventID, a.currentEventBoatClass)
	}
	return fmt.Sprintf("%s | %s | tab: switch  f5: refresh  q: quit", reg, ev)
}

func (a *App) renderDialog() string {
	style := dialogStyle
	title := titleStyle.Render(a.dialog.title)
	if a.dialog.kind == dialogError {
		style = dialogErrStyle
		title = errStyle.Render(a.dialog.title)
	}
	body := title + "\n\n" + a.dialog.message
	switch a.dialog.kind {
	case dialogConfirm:
		body += "\n\n" + dimStyle.Render("[y] Yes  [n] No")
	default:
		body += "\n\n" + dimStyle.Render("[enter] OK")
	}
	return style.Render(body)
}
