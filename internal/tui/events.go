package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

type eventsLoadedMsg []repository.Event

// eventsTab lists the current regatta's races and creates new ones. The
// event form cycles through the fixed domain vocabularies instead of free
// text so invalid categories cannot be entered.
type eventsTab struct {
	deps      deps
	regattaID *int64
	rows      []repository.Event
	cursor    int

	editing   bool
	focus     int
	choices   []int // index into eventFieldOptions per field
	scheduled textinput.Model
}

var eventFieldLabels = []string{"Gender", "Weight", "Boat class", "Boat type", "Round", "Scheduled at"}

var eventFieldOptions = [][]string{
	repository.Genders,
	repository.Weights,
	repository.EventBoatClasses,
	repository.BoatTypes,
	repository.Rounds,
}

func newEventsTab(d deps) *eventsTab {
	return &eventsTab{deps: d}
}

func (t *eventsTab) ID() string    { return "events" }
func (t *eventsTab) Title() string { return "Events" }

func (t *eventsTab) Init() tea.Cmd { return nil }

func (t *eventsTab) Refresh() tea.Cmd {
	if t.regattaID == nil {
		t.rows = nil
		return nil
	}
	id := *t.regattaID
	return func() tea.Msg {
		rows, err := t.deps.repos.Events.ForRegatta(t.deps.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return eventsLoadedMsg(rows)
	}
}

func (t *eventsTab) CapturesInput() bool { return t.editing }

func (t *eventsTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	switch m := msg.(type) {
	case regattaChangedMsg:
		t.regattaID = m.id
		t.cursor = 0
		t.editing = false
		return t, t.Refresh()
	case eventsLoadedMsg:
		t.rows = []repository.Event(m)
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

func (t *eventsTab) handleListKey(m tea.KeyMsg) (Tab, tea.Cmd) {
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
		if t.regattaID == nil {
			return t, func() tea.Msg { return statusMsg("select a regatta first") }
		}
		t.openForm()
	case "enter":
		if len(t.rows) == 0 {
			return t, nil
		}
		e := t.rows[t.cursor]
		id := e.ID
		return t, tea.Batch(
			func() tea.Msg { return selectEventMsg{id: &id, boatClass: e.BoatClass} },
			func() tea.Msg { return statusMsg("selected " + e.DisplayName()) },
		)
	case "d", "delete", "backspace":
		if len(t.rows) == 0 {
			return t, nil
		}
		return t, t.confirmDelete(t.rows[t.cursor])
	}
	return t, nil
}

func (t *eventsTab) confirmDelete(e repository.Event) tea.Cmd {
	return func() tea.Msg {
		entries, err := t.deps.repos.Events.EntryCount(t.deps.ctx, e.ID)
		if err != nil {
			return errMsg{err}
		}
		id := e.ID
		return confirmMsg{
			title:   "Delete event?",
			message: fmt.Sprintf("%s\nThis deletes %d entr(ies) with their results.", e.DisplayName(), entries),
			action: func() tea.Msg {
				counts, err := t.deps.repos.Events.Delete(t.deps.ctx, id)
				if err != nil {
					return errMsg{err}
				}
				return actionDoneMsg{
					status:         fmt.Sprintf("deleted event: %d entries, %d results", counts.Entries, counts.Results),
					deletedEventID: &id,
				}
			},
		}
	}
}

func (t *eventsTab) openForm() {
	t.choices = make([]int, len(eventFieldOptions))
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "YYYY-MM-DD HH:MM (optional)"
	in.CharLimit = 20
	t.scheduled = in
	t.focus = 0
	t.editing = true
}

func (t *eventsTab) updateForm(m tea.KeyMsg) (Tab, tea.Cmd) {
	scheduledIdx := len(eventFieldOptions)
	switch m.String() {
	case "esc":
		t.editing = false
		t.scheduled.Blur()
		return t, nil
	case "tab", "down":
		return t, t.focusField(t.focus + 1)
	case "shift+tab", "up":
		return t, t.focusField(t.focus - 1)
	case "left":
		if t.focus < scheduledIdx {
			opts := eventFieldOptions[t.focus]
			t.choices[t.focus] = (t.choices[t.focus] - 1 + len(opts)) % len(opts)
			return t, nil
		}
	case "right":
		if t.focus < scheduledIdx {
			opts := eventFieldOptions[t.focus]
			t.choices[t.focus] = (t.choices[t.focus] + 1) % len(opts)
			return t, nil
		}
	case "enter":
		if t.focus < scheduledIdx {
			return t, t.focusField(t.focus + 1)
		}
		return t.submitForm()
	}
	if t.focus == scheduledIdx {
		var cmd tea.Cmd
		t.scheduled, cmd = t.scheduled.Update(m)
		return t, cmd
	}
	return t, nil
}

func (t *eventsTab) focusField(i int) tea.Cmd {
	total := len(eventFieldOptions) + 1
	if i < 0 {
		i = total - 1
	}
	if i >= total {
		i = 0
	}
	t.focus = i
	if i == len(eventFieldOptions) {
		return t.scheduled.Focus()
	}
	t.scheduled.Blur()
	return nil
}

func (t *eventsTab) submitForm() (Tab, tea.Cmd) {
	if t.regattaID == nil {
		t.editing = false
		return t, nil
	}
	ev := repository.Event{
		RegattaID: *t.regattaID,
		Gender:    eventFieldOptions[0][t.choices[0]],
		Weight:    eventFieldOptions[1][t.choices[1]],
		BoatClass: eventFieldOptions[2][t.choices[2]],
		BoatType:  eventFieldOptions[3][t.choices[3]],
		Round:     eventFieldOptions[4][t.choices[4]],
	}
	if s := strings.TrimSpace(t.scheduled.Value()); s != "" {
		ev.ScheduledAt = &s
	}
	t.editing = false
	t.scheduled.Blur()
	return t, func() tea.Msg {
		if _, err := t.deps.repos.Events.Create(t.deps.ctx, ev); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: "created " + ev.DisplayName()}
	}
}

func (t *eventsTab) View(width, height int) string {
	if t.editing {
		return t.viewForm()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Events") + "\n")
	if t.regattaID == nil {
		b.WriteString(dimStyle.Render("  select a regatta on the Regattas tab first") + "\n")
		return b.String()
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-44s %-8s %-18s", "Event", "Dist", "Scheduled")) + "\n")
	if len(t.rows) == 0 {
		b.WriteString(dimStyle.Render("  (no events yet, press n to add one)") + "\n")
	}
	for i, e := range t.rows {
		sched := ""
		if e.ScheduledAt != nil {
			sched = *e.ScheduledAt
		}
		line := fmt.Sprintf("  %-44s %-8s %-18s", clip(e.DisplayName(), 44), e.Distance, sched)
		if i == t.cursor {
			line = cursorStyle.Render("▶" + line[1:])
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("enter: select  n: new  d: delete"))
	return b.String()
}

func (t *eventsTab) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New Event") + "\n\n")
	for i, label := range eventFieldLabels {
		marker := "  "
		if i == t.focus {
			marker = cursorStyle.Render("▶ ")
		}
		value := ""
		if i < len(eventFieldOptions) {
			value = "◀ " + eventFieldOptions[i][t.choices[i]] + " ▶"
		} else {
			value = t.scheduled.View()
		}
		b.WriteString(fmt.Sprintf("%s%-14s %s\n", marker, label+":", value))
	}
	b.WriteString("\n" + dimStyle.Render("left/right: change  enter: next/save  esc: cancel"))
	return b.String()
}
