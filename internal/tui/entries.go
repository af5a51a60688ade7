package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/collegeite/rowingdb/internal/database/repository"
	"github.com/collegeite/rowingdb/internal/racetime"
	"github.com/collegeite/rowingdb/internal/service"
)

type entriesLoadedMsg struct {
	event *repository.Event
	rows  []repository.EntryRow
}

type suggestionsMsg struct {
	input       string
	suggestions []service.Suggestion
}

// entryAddedMsg clears the school input so the next entry can be typed
// without reopening the form.
type entryAddedMsg struct {
	school     string
	conference string
}

type entriesMode int

const (
	entriesModeList entriesMode = iota
	entriesModeSchool
	entriesModeTime
	entriesModeLane
	entriesModeNotes
)

// entriesTab records who raced and how fast. Schools are entered by name;
// near-misses get fuzzy suggestions so heat sheets with inconsistent naming
// can be keyed in quickly.
type entriesTab struct {
	deps      deps
	eventID   *int64
	boatClass string
	event     *repository.Event
	rows      []repository.EntryRow
	cursor    int

	mode        entriesMode
	input       textinput.Model
	suggestions []service.Suggestion
	sugCursor   int
}

func newEntriesTab(d deps) *entriesTab {
	return &entriesTab{deps: d}
}

func (t *entriesTab) ID() string             { return "entries" }
func (t *entriesTab) Title() string          { return "Entries & Results" }
func (t *entriesTab) DependsOnSchools() bool { return true }

func (t *entriesTab) Init() tea.Cmd { return nil }

func (t *entriesTab) Refresh() tea.Cmd {
	if t.eventID == nil {
		t.event = nil
		t.rows = nil
		return nil
	}
	id := *t.eventID
	return func() tea.Msg {
		ev, err := t.deps.repos.Events.Get(t.deps.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		rows, err := t.deps.repos.Entries.ForEvent(t.deps.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return entriesLoadedMsg{event: ev, rows: rows}
	}
}

func (t *entriesTab) CapturesInput() bool { return t.mode != entriesModeList }

func (t *entriesTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	switch m := msg.(type) {
	case eventChangedMsg:
		t.eventID = m.id
		t.boatClass = m.boatClass
		t.cursor = 0
		t.mode = entriesModeList
		return t, t.Refresh()
	case entriesLoadedMsg:
		t.event = m.event
		t.rows = m.rows
		if t.cursor >= len(t.rows) {
			t.cursor = 0
		}
		return t, nil
	case suggestionsMsg:
		if t.mode == entriesModeSchool && m.input == t.input.Value() {
			t.suggestions = m.suggestions
			t.sugCursor = 0
		}
		return t, nil
	case entryAddedMsg:
		if t.mode == entriesModeSchool {
			t.input.SetValue("")
			t.suggestions = nil
			t.sugCursor = 0
		}
		status := fmt.Sprintf("added %s (%s)", m.school, m.conference)
		return t, func() tea.Msg { return actionDoneMsg{status: status} }
	case tea.KeyMsg:
		switch t.mode {
		case entriesModeSchool:
			return t.updateSchoolInput(m)
		case entriesModeTime, entriesModeLane, entriesModeNotes:
			return t.updateValueInput(m)
		default:
			return t.handleListKey(m)
		}
	}
	return t, nil
}

func (t *entriesTab) handleListKey(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "up", "k":
		if t.cursor > 0 {
			t.cursor--
		}
	case "down", "j":
		if t.cursor < len(t.rows)-1 {
			t.cursor++
		}
	case "a":
		if t.eventID == nil {
			return t, func() tea.Msg { return statusMsg("select an event first") }
		}
		t.openInput(entriesModeSchool, "", "school name")
	case "t":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.openInput(entriesModeTime, "", `time, e.g. "704" or "7:04.123"`)
	case "l":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.openInput(entriesModeLane, "", "lane number")
	case "n":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.openInput(entriesModeNotes, t.rows[t.cursor].Notes, "notes")
	case "d", "delete", "backspace":
		if len(t.rows) == 0 {
			return t, nil
		}
		row := t.rows[t.cursor]
		return t, func() tea.Msg {
			return confirmMsg{
				title:   "Delete entry?",
				message: row.CRRName + " and its result will be removed.",
				action: func() tea.Msg {
					if err := t.deps.repos.Entries.Delete(t.deps.ctx, row.EntryID); err != nil {
						return errMsg{err}
					}
					if t.eventID != nil {
						if err := t.recomputeStandings(*t.eventID); err != nil {
							return errMsg{err}
						}
					}
					return actionDoneMsg{status: "deleted entry for " + row.CRRName}
				},
			}
		}
	}
	return t, nil
}

func (t *entriesTab) openInput(mode entriesMode, value, placeholder string) {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.SetValue(value)
	in.Focus()
	t.input = in
	t.suggestions = nil
	t.sugCursor = 0
	t.mode = mode
}

func (t *entriesTab) updateSchoolInput(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.mode = entriesModeList
		return t, nil
	case "up":
		if t.sugCursor > 0 {
			t.sugCursor--
		}
		return t, nil
	case "down":
		if t.sugCursor < len(t.suggestions)-1 {
			t.sugCursor++
		}
		return t, nil
	case "enter":
		if len(t.suggestions) > 0 {
			school := t.suggestions[t.sugCursor].School
			return t, t.addEntryCmd(school)
		}
		name := strings.TrimSpace(t.input.Value())
		if name == "" {
			t.mode = entriesModeList
			return t, nil
		}
		return t, t.resolveSchoolCmd(name)
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(m)
	return t, tea.Batch(cmd, t.suggestCmd(t.input.Value()))
}

// suggestCmd refreshes the suggestion list as the user types.
func (t *entriesTab) suggestCmd(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if len(input) < 2 {
		return nil
	}
	return func() tea.Msg {
		sugs, err := t.deps.services.Matcher.Suggest(t.deps.ctx, input, 5)
		if err != nil {
			return errMsg{err}
		}
		return suggestionsMsg{input: input, suggestions: sugs}
	}
}

// resolveSchoolCmd tries an exact match first, then falls back to showing
// suggestions.
func (t *entriesTab) resolveSchoolCmd(name string) tea.Cmd {
	return func() tea.Msg {
		school, err := t.deps.services.Matcher.Match(t.deps.ctx, name)
		if err != nil {
			return errMsg{err}
		}
		if school != nil {
			return t.addEntry(*school)
		}
		sugs, err := t.deps.services.Matcher.Suggest(t.deps.ctx, name, 5)
		if err != nil {
			return errMsg{err}
		}
		if len(sugs) == 0 {
			return statusMsg(fmt.Sprintf("no school matches %q", name))
		}
		return suggestionsMsg{input: t.input.Value(), suggestions: sugs}
	}
}

func (t *entriesTab) addEntryCmd(school repository.School) tea.Cmd {
	return func() tea.Msg { return t.addEntry(school) }
}

// addEntry creates the entry, capturing the team's conference as of the event
// date so later realignment does not rewrite old results.
func (t *entriesTab) addEntry(school repository.School) tea.Msg {
	if t.eventID == nil || t.event == nil {
		return statusMsg("select an event first")
	}
	ctx := t.deps.ctx
	teamID, err := t.deps.repos.Schools.EnsureTeam(ctx, school.ID, t.event.Gender, t.event.Weight)
	if err != nil {
		return errMsg{err}
	}
	date, err := t.deps.repos.Events.Date(ctx, *t.eventID)
	if err != nil {
		return errMsg{err}
	}
	conf, err := t.deps.repos.Conferences.AtDate(ctx, teamID, date)
	if err != nil {
		return errMsg{err}
	}
	_, err = t.deps.repos.Entries.Create(ctx, repository.Entry{
		EventID:          *t.eventID,
		TeamID:           teamID,
		ConferenceAtTime: conf,
	})
	if err != nil {
		return errMsg{err}
	}
	return entryAddedMsg{school: school.CRRName, conference: conf}
}

func (t *entriesTab) updateValueInput(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.mode = entriesModeList
		return t, nil
	case "enter":
		value := strings.TrimSpace(t.input.Value())
		mode := t.mode
		t.mode = entriesModeList
		if len(t.rows) == 0 {
			return t, nil
		}
		row := t.rows[t.cursor]
		switch mode {
		case entriesModeNotes:
			return t, func() tea.Msg {
				if err := t.deps.repos.Entries.UpdateNotes(t.deps.ctx, row.EntryID, value); err != nil {
					return errMsg{err}
				}
				return actionDoneMsg{status: "notes saved"}
			}
		case entriesModeLane:
			return t, func() tea.Msg {
				lane, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return errMsg{fmt.Errorf("bad lane %q", value)}
				}
				if err := t.deps.repos.Entries.SetLane(t.deps.ctx, row.EntryID, lane); err != nil {
					return errMsg{err}
				}
				return actionDoneMsg{status: fmt.Sprintf("%s in lane %d", row.CRRName, lane)}
			}
		}
		return t, t.recordTimeCmd(row, value)
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(m)
	return t, cmd
}

func (t *entriesTab) recordTimeCmd(row repository.EntryRow, value string) tea.Cmd {
	return func() tea.Msg {
		if t.eventID == nil {
			return nil
		}
		elapsed, err := racetime.ToSeconds(value)
		if err != nil {
			return errMsg{fmt.Errorf("bad time %q: %w", value, err)}
		}
		res := repository.Result{EntryID: row.EntryID, Lane: row.Lane, ElapsedSec: &elapsed}
		if _, err := t.deps.repos.Entries.SetResult(t.deps.ctx, res); err != nil {
			return errMsg{err}
		}
		if err := t.recomputeStandings(*t.eventID); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{status: fmt.Sprintf("%s: %s", row.CRRName, racetime.Format(elapsed))}
	}
}

// recomputeStandings re-ranks positions and margins after any result change.
func (t *entriesTab) recomputeStandings(eventID int64) error {
	if err := t.deps.repos.Entries.RecomputePositions(t.deps.ctx, eventID); err != nil {
		return err
	}
	return t.deps.repos.Entries.RecomputeMargins(t.deps.ctx, eventID)
}

func (t *entriesTab) View(width, height int) string {
	var b strings.Builder
	title := "Entries & Results"
	if t.event != nil {
		title += " — " + t.event.DisplayName()
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	if t.eventID == nil {
		b.WriteString(dimStyle.Render("  select an event on the Events tab first") + "\n")
		return b.String()
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-4s %-4s %-36s %-12s %-12s %s", "Pos", "Ln", "School", "Time", "Margin", "Notes")) + "\n")
	if len(t.rows) == 0 {
		b.WriteString(dimStyle.Render("  (no entries yet, press a to add one)") + "\n")
	}

	var winner *float64
	for _, r := range t.rows {
		if r.ElapsedSec != nil && (winner == nil || *r.ElapsedSec < *winner) {
			winner = r.ElapsedSec
		}
	}
	for i, r := range t.rows {
		pos, lane, elapsed, margin := "-", "-", "-", "-"
		if r.Position != nil {
			pos = fmt.Sprintf("%d", *r.Position)
		}
		if r.Lane != nil {
			lane = fmt.Sprintf("%d", *r.Lane)
		}
		if r.ElapsedSec != nil {
			elapsed = racetime.Format(*r.ElapsedSec)
			if winner != nil {
				margin = racetime.FormatMargin(*r.ElapsedSec - *winner)
			}
		}
		line := fmt.Sprintf("  %-4s %-4s %-36s %-12s %-12s %s", pos, lane, clip(r.CRRName, 36), elapsed, margin, clip(r.Notes, 24))
		if i == t.cursor {
			line = cursorStyle.Render("▶" + line[1:])
		}
		b.WriteString(line + "\n")
	}

	switch t.mode {
	case entriesModeSchool:
		b.WriteString("\nAdd school: " + t.input.View() + "\n")
		for i, s := range t.suggestions {
			marker := "  "
			if i == t.sugCursor {
				marker = cursorStyle.Render("▶ ")
			}
			b.WriteString(fmt.Sprintf("%s%s %s\n", marker, s.School.CRRName, dimStyle.Render("("+s.School.DisplayName()+")")))
		}
		b.WriteString(dimStyle.Render("enter: add  up/down: pick suggestion  esc: cancel"))
	case entriesModeTime:
		b.WriteString("\nTime: " + t.input.View() + "\n")
		b.WriteString(dimStyle.Render(`smart digits: "704" = 7:04.000, "1150123" = 11:50.123  esc: cancel`))
	case entriesModeLane:
		b.WriteString("\nLane: " + t.input.View() + "\n")
		b.WriteString(dimStyle.Render("enter: save  esc: cancel"))
	case entriesModeNotes:
		b.WriteString("\nNotes: " + t.input.View() + "\n")
		b.WriteString(dimStyle.Render("enter: save  esc: cancel"))
	default:
		b.WriteString("\n" + dimStyle.Render("a: add entry  t: record time  l: lane  n: notes  d: delete"))
	}
	return b.String()
}
