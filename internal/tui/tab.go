package tui

import tea "github.com/charmbracelet/bubbletea"

// Tab is one page of the notebook. Tabs own their cursors, forms and loaded
// rows; shared selection state lives on App and reaches tabs as broadcast
// messages.
type Tab interface {
	ID() string
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View(width, height int) string
	// Refresh reloads the tab's data from the database.
	Refresh() tea.Cmd
}

// schoolDependent marks tabs that render school names and must reload when
// the roster changes. Renames propagate by refresh only, rows reference
// schools by id.
type schoolDependent interface {
	DependsOnSchools() bool
}

// inputCapturer is implemented by tabs with an active text form. While
// capturing, global shortcut keys are routed to the tab instead.
type inputCapturer interface {
	CapturesInput() bool
}
