package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

type regattasLoadedMsg []repository.Regatta

type regattasTab struct {
	deps    deps
	rows    []repository.Regatta
	cursor  int
	editing bool
	form    []textinput.Model
	focus   int
}

var regattaFormLabels = []string{"Name", "Location", "Start date (YYYY-MM-DD)", "End date (YYYY-MM-DD)"}

func newRegattasTab(d deps) *regattasTab {
	return &regattasTab{deps: d}
}

func (t *regattasTab) ID() string    { return "regattas" }
func (t *regattasTab) Title() string { return "Regattas" }

func (t *regattasTab) Init() tea.Cmd { return t.Refresh() }

func (t *regattasTab) Refresh() tea.Cmd {
	return func() tea.Msg {
		rows, err := t.deps.repos.Regattas.List(t.deps.ctx)
		if err != nil {
			return errMsg{err}
		}
		return regattasLoadedMsg(rows)
	}
}

func (t *regattasTab) CapturesInput() bool { return t.editing }

func (t *regattasTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	switch m := msg.(type) {
	case regattasLoadedMsg:
		t.rows = []repository.Regatta(m)
		if t.cursor >= len(t.rows) {
			t.cursor = 0
		}
		return t, nil
	case tea.KeyMsg:
		if t.editing {
			return t.updateForm(m)
		}
		return t.handleListKey(m)
	}
	return t, nil
}

func (t *regattasTab) handleListKey(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.rows)-1 {
			t.cursor++
		}
	case "n":
		t.openForm()
	case "enter":
		if len(t.rows) == 0 {
			return t, nil
		}
		r := t.rows[t.cursor]
		id := r.ID
		return t, tea.Batch(
			func() tea.Msg { return selectRegattaMsg{id: &id} },
			func() tea.Msg { return statusMsg("selected " + r.DisplayName()) },
		)
	case "d", "delete", "backspace":
		if len(t.rows) == 0 {
			return t, nil
		}
		return t, t.confirmDelete(t.rows[t.cursor])
	case "x":
		return t, func() tea.Msg {
			return confirmMsg{
				title:   "Reset race data?",
				message: "All regattas, events, entries and results will be deleted.\nThe school roster is kept.",
				action: func() tea.Msg {
					if err := t.deps.services.Maintenance.ResetRaceData(t.deps.ctx); err != nil {
						return errMsg{err}
					}
					return actionDoneMsg{status: "race data cleared", clearSelection: true}
				},
			}
		}
	}
	return t, nil
}

// confirmDelete gathers cascade counts so the dialog can say what goes with
// the regatta.
func (t *regattasTab) confirmDelete(r repository.Regatta) tea.Cmd {
	return func() tea.Msg {
		events, err := t.deps.repos.Regattas.EventCount(t.deps.ctx, r.ID)
		if err != nil {
			return errMsg{err}
		}
		entries, err := t.deps.repos.Regattas.EntryCount(t.deps.ctx, r.ID)
		if err != nil {
			return errMsg{err}
		}
		id := r.ID
		return confirmMsg{
			title: "Delete regatta?",
			message: fmt.Sprintf("%s\nThis deletes %d event(s) and %d entr(ies) with their results.",
				r.DisplayName(), events, entries),
			action: func() tea.Msg {
				counts, err := t.deps.repos.Regattas.Delete(t.deps.ctx, id)
				if err != nil {
					return errMsg{err}
				}
				return actionDoneMsg{
					status: fmt.Sprintf("deleted %q: %d events, %d entries, %d results",
						r.Name, counts.Events, counts.Entries, counts.Results),
					deletedRegattaID: &id,
				}
			},
		}
	}
}

func (t *regattasTab) openForm() {
	t.form = make([]textinput.Model, len(regattaFormLabels))
	for i, label := range regattaFormLabels {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = label
		in.CharLimit = 120
		t.form[i] = in
	}
	t.focus = 0
	t.form[0].Focus()
	t.editing = true
}

func (t *regattasTab) updateForm(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.editing = false
		return t, nil
	case "tab", "down":
		return t, t.focusField(t.focus + 1)
	case "shift+tab", "up":
		return t, t.focusField(t.focus - 1)
	case "enter":
		if t.focus < len(t.form)-1 {
			return t, t.focusField(t.focus + 1)
		}
		return t.submitForm()
	}
	var cmd tea.Cmd
	t.form[t.focus], cmd = t.form[t.focus].Update(m)
	return t, cmd
}

func (t *regattasTab) focusField(i int) tea.Cmd {
	if i < 0 {
		i = len(t.form) - 1
	}
	if i >= len(t.form) {
		i = 0
	}
	t.form[t.focus].Blur()
	t.focus = i
	return t.form[i].Focus()
}

func (t *regattasTab) submitForm() (Tab, tea.Cmd) {
	name := strings.TrimSpace(t.form[0].Value())
	if name == "" {
		return t, func() tea.Msg { return statusMsg("regatta name is required") }
	}
	reg := repository.Regatta{
		Name:      name,
		Location:  strings.TrimSpace(t.form[1].Value()),
		StartDate: strings.TrimSpace(t.form[2].Value()),
		EndDate:   strings.TrimSpace(t.form[3].Value()),
	}
	if reg.EndDate == "" {
		reg.EndDate = reg.StartDate
	}
	t.editing = false
	return t, func() tea.Msg {
		if _, err := t.deps.repos.Regattas.Create(t.deps.ctx, reg); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf("created regatta %q", reg.Name)}
	}
}

func (t *regattasTab) View(width, height int) string {
	if t.editing {
		return t.viewForm()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Regattas") + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-40s %-24s %-12s", "Name", "Location", "Date")) + "\n")
	if len(t.rows) == 0 {
		b.WriteString(dimStyle.Render("  (no regattas yet, press n to add one)") + "\n")
	}
	max := len(t.rows)
	if height > 5 && max > height-5 {
		max = height - 5
	}
	for i := 0; i < max; i++ {
		r := t.rows[i]
		line := fmt.Sprintf("  %-40s %-24s %-12s", clip(r.Name, 40), clip(r.Location, 24), r.StartDate)
		if i == t.cursor {
			line = cursorStyle.Render("▶" + line[1:])
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter: select  n: new  d: delete  x: reset race data"))
	return b.String()
}

func (t *regattasTab) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Regatta") + "\n\n")
	for i, in := range t.form {
		marker := "  "
		if i == t.focus {
			marker = cursorStyle.Render("▶ ")
		}
		b.WriteString(fmt.Sprintf("%s%-26s %s\n", marker, regattaFormLabels[i]+":", in.View()))
	}
	b.WriteString("\n" + dimStyle.Render("enter: next/save  tab: next field  esc: cancel"))
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
