package tui

import tea "github.com/charmbracelet/bubbletea"

// messages exchanged between the app and its tabs

// regattaChangedMsg is broadcast to every tab after the current regatta
// selection changes. A nil id means the selection was cleared.
type regattaChangedMsg struct {
	id *int64
}

// eventChangedMsg is broadcast after the current event selection changes.
// The id and boat class always travel together.
type eventChangedMsg struct {
	id        *int64
	boatClass string
}

// selectRegattaMsg is emitted by a tab asking the app to change the shared
// regatta selection.
type selectRegattaMsg struct {
	id *int64
}

// selectEventMsg is emitted by a tab asking the app to change the shared
// event selection.
type selectEventMsg struct {
	id        *int64
	boatClass string
}

// refreshTabsMsg asks the app to re-run tab loaders.
type refreshTabsMsg struct {
	scope refreshScope
}

type refreshScope int

const (
	refreshAll refreshScope = iota
	refreshSchoolDependent
)

// schoolsChangedMsg is emitted after a school edit so school-dependent tabs
// get refreshed.
type schoolsChangedMsg struct{}

// actionDoneMsg reports a completed mutation: the status line to show, which
// tabs to refresh, and any selection that the mutation invalidated.
type actionDoneMsg struct {
	status           string
	scope            refreshScope
	deletedRegattaID *int64
	deletedEventID   *int64
	clearSelection   bool
}

// confirmMsg asks the app to show a confirmation dialog and run action on yes.
type confirmMsg struct {
	title   string
	message string
	action  func() tea.Msg
}

// infoMsg shows an informational dialog.
type infoMsg struct {
	title   string
	message string
}

type statusMsg string

type errMsg struct{ error }
