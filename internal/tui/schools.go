package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

type schoolsLoadedMsg []repository.School

type schoolHistoryMsg struct {
	schoolID int64
	changes  []repository.SchoolChange
}

type schoolsMode int

const (
	schoolsModeList schoolsMode = iota
	schoolsModeEdit
	schoolsModeNew
	schoolsModeHistory
)

// Editable school fields in display order. The CRR name is the identifier
// shown everywhere else in the app; edits to it are audited separately and
// fan out a roster refresh.
var schoolEditFields = []struct {
	field string
	label string
}{
	{"name", "Full name"},
	{"short_name", "Short name"},
	{"acronym", "Acronym"},
	{"crr_name", "CRR name"},
	{"color", "Color (hex)"},
}

type schoolsTab struct {
	deps    deps
	rows    []repository.School
	cursor  int
	mode    schoolsMode
	field   int
	input   textinput.Model
	newName textinput.Model
	newCRR  textinput.Model
	newFoc  int
	history []repository.SchoolChange
}

func newSchoolsTab(d deps) *schoolsTab {
	return &schoolsTab{deps: d}
}

func (t *schoolsTab) ID() string             { return "schools" }
func (t *schoolsTab) Title() string          { return "Schools" }
func (t *schoolsTab) DependsOnSchools() bool { return true }

func (t *schoolsTab) Init() tea.Cmd { return t.Refresh() }

func (t *schoolsTab) Refresh() tea.Cmd {
	return func() tea.Msg {
		rows, err := t.deps.repos.Schools.List(t.deps.ctx)
		if err != nil {
			return errMsg{err}
		}
		return schoolsLoadedMsg(rows)
	}
}

func (t *schoolsTab) CapturesInput() bool {
	return t.mode == schoolsModeEdit || t.mode == schoolsModeNew
}

func (t *schoolsTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	switch m := msg.(type) {
	case schoolsLoadedMsg:
		t.rows = []repository.School(m)
		if t.cursor >= len(t.rows) {
			t.cursor = 0
		}
		return t, nil
	case schoolHistoryMsg:
		if t.mode == schoolsModeHistory && len(t.rows) > 0 && t.rows[t.cursor].ID == m.schoolID {
			t.history = m.changes
		}
		return t, nil
	case tea.KeyMsg:
		switch t.mode {
		case schoolsModeEdit:
			return t.updateEdit(m)
		case schoolsModeNew:
			return t.updateNew(m)
		case schoolsModeHistory:
			if m.String() == "esc" || m.String() == "h" || m.String() == "enter" {
				t.mode = schoolsModeList
				t.history = nil
			}
			return t, nil
		default:
			return t.handleListKey(m)
		}
	}
	return t, nil
}

func (t *schoolsTab) handleListKey(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.rows)-1 {
			t.cursor++
		}
	case "left":
		if t.field > 0 {
			t.field--
		}
	case "right":
		if t.field < len(schoolEditFields)-1 {
			t.field++
		}
	case "enter", "e":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.openEdit()
	case "n":
		t.openNew()
	case "h":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.mode = schoolsModeHistory
		id := t.rows[t.cursor].ID
		return t, func() tea.Msg {
			changes, err := t.deps.repos.Changes.ForSchool(t.deps.ctx, id)
			if err != nil {
				return errMsg{err}
			}
			return schoolHistoryMsg{schoolID: id, changes: changes}
		}
	}
	return t, nil
}

func (t *schoolsTab) openEdit() {
	s := t.rows[t.cursor]
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 120
	in.SetValue(schoolFieldDisplay(s, schoolEditFields[t.field].field))
	in.Focus()
	t.input = in
	t.mode = schoolsModeEdit
}

func (t *schoolsTab) updateEdit(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.mode = schoolsModeList
		return t, nil
	case "enter":
		value := strings.TrimSpace(t.input.Value())
		field := schoolEditFields[t.field].field
		s := t.rows[t.cursor]
		t.mode = schoolsModeList
		return t, func() tea.Msg {
			old := schoolFieldDisplay(s, field)
			if err := t.deps.services.Auditor.UpdateField(t.deps.ctx, s.ID, field, value); err != nil {
				return errMsg{err}
			}
			if field == "crr_name" && old != value {
				return actionDoneMsg{
					status: fmt.Sprintf("renamed %q to %q", old, value),
					scope:  refreshSchoolDependent,
				}
			}
			return actionDoneMsg{
				status: fmt.Sprintf("updated %s for %s", field, s.CRRName),
				scope:  refreshSchoolDependent,
			}
		}
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(m)
	return t, cmd
}

func (t *schoolsTab) openNew() {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Full name"
	name.CharLimit = 120
	name.Focus()
	crr := textinput.New()
	crr.Prompt = ""
	crr.Placeholder = "CRR name (defaults to full name)"
	crr.CharLimit = 120
	t.newName, t.newCRR = name, crr
	t.newFoc = 0
	t.mode = schoolsModeNew
}

func (t *schoolsTab) updateNew(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.mode = schoolsModeList
		return t, nil
	case "tab", "down", "shift+tab", "up":
		if t.newFoc == 0 {
			t.newFoc = 1
			t.newName.Blur()
			return t, t.newCRR.Focus()
		}
		t.newFoc = 0
		t.newCRR.Blur()
		return t, t.newName.Focus()
	case "enter":
		if t.newFoc == 0 {
			t.newFoc = 1
			t.newName.Blur()
			return t, t.newCRR.Focus()
		}
		name := strings.TrimSpace(t.newName.Value())
		crr := strings.TrimSpace(t.newCRR.Value())
		if name == "" && crr == "" {
			return t, func() tea.Msg { return statusMsg("school name is required") }
		}
		t.mode = schoolsModeList
		return t, func() tea.Msg {
			_, err := t.deps.services.Auditor.CreateSchool(t.deps.ctx, repository.School{Name: name, CRRName: crr})
			if err != nil {
				return errMsg{err}
			}
			display := crr
			if display == "" {
				display = name
			}
			return actionDoneMsg{status: fmt.Sprintf("created school %q", display), scope: refreshSchoolDependent}
		}
	}
	var cmd tea.Cmd
	if t.newFoc == 0 {
		t.newName, cmd = t.newName.Update(m)
	} else {
		t.newCRR, cmd = t.newCRR.Update(m)
	}
	return t, cmd
}

func (t *schoolsTab) View(width, height int) string {
	switch t.mode {
	case schoolsModeNew:
		return t.viewNew()
	case schoolsModeHistory:
		return t.viewHistory()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Schools") + "\n")
	header := "  "
	for i, f := range schoolEditFields {
		label := f.label
		if i == t.field {
			label = "[" + label + "]"
		}
		header += fmt.Sprintf("%-*s", schoolColWidth(i)+1, label)
	}
	b.WriteString(headerStyle.Render(header) + "\n")
	for i, s := range t.rows {
		line := "  "
		for j, f := range schoolEditFields {
			w := schoolColWidth(j)
			line += fmt.Sprintf("%-*s", w+1, clip(schoolFieldDisplay(s, f.field), w))
		}
		if i == t.cursor {
			line = cursorStyle.Render("▶" + line[1:])
		}
		b.WriteString(line + "\n")
	}
	if t.mode == schoolsModeEdit {
		s := t.rows[t.cursor]
		b.WriteString(fmt.Sprintf("\nEdit %s for %s: %s\n", schoolEditFields[t.field].label, s.CRRName, t.input.View()))
		b.WriteString(dimStyle.Render("enter: save  esc: cancel"))
	} else {
		b.WriteString("\n" + dimStyle.Render("left/right: pick field  enter: edit  n: new school  h: history"))
	}
	return b.String()
}

func (t *schoolsTab) viewNew() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New School") + "\n\n")
	focus := func(i int) string {
		if i == t.newFoc {
			return cursorStyle.Render("▶ ")
		}
		return "  "
	}
	b.WriteString(fmt.Sprintf("%sFull name: %s\n", focus(0), t.newName.View()))
	b.WriteString(fmt.Sprintf("%sCRR name:  %s\n", focus(1), t.newCRR.View()))
	b.WriteString("\n" + dimStyle.Render("enter: next/save  esc: cancel"))
	return b.String()
}

func (t *schoolsTab) viewHistory() string {
	var b strings.Builder
	s := t.rows[t.cursor]
	b.WriteString(titleStyle.Render("Change History — "+s.CRRName) + "\n")
	if len(t.history) == 0 {
		b.WriteString(dimStyle.Render("  (no recorded changes)") + "\n")
	}
	for _, c := range t.history {
		when := c.CreatedAt.Format("2006-01-02 15:04")
		switch c.ChangeType {
		case "school_created":
			b.WriteString(fmt.Sprintf("  %s  created as %q\n", when, c.NewValue))
		case "crr_name_changed":
			b.WriteString(fmt.Sprintf("  %s  CRR name %q → %q\n", when, c.OldValue, c.NewValue))
		default:
			b.WriteString(fmt.Sprintf("  %s  %s: %q → %q\n", when, c.Field, c.OldValue, c.NewValue))
		}
	}
	b.WriteString("\n" + dimStyle.Render("esc: back"))
	return b.String()
}

func schoolFieldDisplay(s repository.School, field string) string {
	switch field {
	case "name":
		return s.Name
	case "short_name":
		return s.ShortName
	case "acronym":
		return s.Acronym
	case "crr_name":
		return s.CRRName
	case "color":
		return s.Color
	}
	return ""
}

func schoolColWidth(i int) int {
	widths := []int{34, 16, 9, 30, 9}
	return widths[i]
}
