package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/collegeite/rowingdb/internal/database"
	"github.com/collegeite/rowingdb/internal/database/repository"
)

type participationLoadedMsg struct {
	season  string
	rows    []repository.ParticipationRow
	owConf  map[int64]string
	owTeams map[int64]int64
}

type conferenceHistoryMsg struct {
	school string
	items  []repository.ConferenceAffiliation
}

type conferenceNamesMsg []string

type squadDef struct {
	key    string
	column string
	gender string
	weight string
	label  string
}

var squads = []squadDef{
	{"o", "openweight_women", "W", "OW", "OW Women"},
	{"h", "heavyweight_men", "M", "HW", "HW Men"},
	{"l", "lightweight_men", "M", "LW", "LW Men"},
	{"w", "lightweight_women", "W", "LW", "LW Women"},
}

// conferencesTab shows which squads each school fields in a season and the
// conference each openweight women's team currently belongs to.
type conferencesTab struct {
	deps    deps
	season  string
	rows    []repository.ParticipationRow
	owConf  map[int64]string
	owTeams map[int64]int64
	cursor  int

	editing   bool
	confInput textinput.Model
	confSquad int
	confNames []string

	showHistory bool
	history     []repository.ConferenceAffiliation
	historyFor  string
}

func newConferencesTab(d deps) *conferencesTab {
	return &conferencesTab{
		deps:   d,
		season: database.SeasonStartYear(time.Now(), d.cfg.Season.StartMonth),
	}
}

func (t *conferencesTab) ID() string             { return "conferences" }
func (t *conferencesTab) Title() string          { return "Conferences" }
func (t *conferencesTab) DependsOnSchools() bool { return true }

func (t *conferencesTab) Init() tea.Cmd { return t.Refresh() }

func (t *conferencesTab) Refresh() tea.Cmd {
	season := t.season
	return func() tea.Msg {
		rows, err := t.deps.repos.Participations.ForSeason(t.deps.ctx, season)
		if err != nil {
			return errMsg{err}
		}
		teams, err := t.deps.repos.Schools.TeamsForCategory(t.deps.ctx, "W", "OW")
		if err != nil {
			return errMsg{err}
		}
		conf := make(map[int64]string, len(teams))
		ids := make(map[int64]int64, len(teams))
		for _, team := range teams {
			conf[team.SchoolID] = team.Conference
			ids[team.SchoolID] = team.TeamID
		}
		return participationLoadedMsg{season: season, rows: rows, owConf: conf, owTeams: ids}
	}
}

func (t *conferencesTab) CapturesInput() bool { return t.editing || t.showHistory }

func (t *conferencesTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	switch m := msg.(type) {
	case participationLoadedMsg:
		if m.season != t.season {
			return t, nil
		}
		t.rows = m.rows
		t.owConf = m.owConf
		t.owTeams = m.owTeams
		if t.cursor >= len(t.rows) {
			t.cursor = 0
		}
		return t, nil
	case conferenceHistoryMsg:
		t.history = m.items
		t.historyFor = m.school
		t.showHistory = true
		return t, nil
	case conferenceNamesMsg:
		t.confNames = []string(m)
		return t, nil
	case tea.KeyMsg:
		if t.showHistory {
			switch m.String() {
			case "esc", "enter", "c":
				t.showHistory = false
				t.history = nil
			}
			return t, nil
		}
		if t.editing {
			return t.updateConfForm(m)
		}
		return t.handleListKey(m)
	}
	return t, nil
}

func (t *conferencesTab) handleListKey(m tea.KeyMsg) (Tab, tea.Cmd) {
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
		t.season = shiftYear(t.season, -1)
		return t, t.Refresh()
	case "right":
		t.season = shiftYear(t.season, 1)
		return t, t.Refresh()
	case "p":
		return t, t.copyPreviousSeason()
	case "D":
		season := t.season
		return t, func() tea.Msg {
			return confirmMsg{
				title:   "Delete season?",
				message: fmt.Sprintf("All participation records for the %s-%s season will be removed.", season, shiftYear(season, 1)),
				action: func() tea.Msg {
					n, err := t.deps.repos.Participations.DeleteSeason(t.deps.ctx, season)
					if err != nil {
						return errMsg{err}
					}
					return actionDoneMsg{
						status: fmt.Sprintf("deleted %d participation record(s) for %s", n, season),
						scope:  refreshSchoolDependent,
					}
				},
			}
		}
	case "c":
		if len(t.rows) == 0 {
			return t, nil
		}
		row := t.rows[t.cursor]
		teamID, ok := t.owTeams[row.SchoolID]
		if !ok {
			return t, func() tea.Msg { return statusMsg("no openweight women's team for " + row.CRRName) }
		}
		return t, func() tea.Msg {
			items, err := t.deps.repos.Conferences.History(t.deps.ctx, teamID)
			if err != nil {
				return errMsg{err}
			}
			return conferenceHistoryMsg{school: row.CRRName, items: items}
		}
	case "e":
		if len(t.rows) == 0 {
			return t, nil
		}
		t.openConfForm()
		return t, t.loadConferenceNames()
	default:
		for i, sq := range squads {
			if m.String() == sq.key && len(t.rows) > 0 {
				return t, t.toggleSquad(t.rows[t.cursor], i)
			}
		}
	}
	return t, nil
}

// toggleSquad flips one participation flag, creating the team record the
// first time a squad is enabled.
func (t *conferencesTab) toggleSquad(row repository.ParticipationRow, squadIdx int) tea.Cmd {
	sq := squads[squadIdx]
	season := t.season
	current := season == database.SeasonStartYear(time.Now(), t.deps.cfg.Season.StartMonth)
	enable := !squadFlag(row, squadIdx)
	return func() tea.Msg {
		ctx := t.deps.ctx
		if enable {
			if _, err := t.deps.repos.Schools.EnsureTeam(ctx, row.SchoolID, sq.gender, sq.weight); err != nil {
				return errMsg{err}
			}
		}
		if err := t.deps.repos.Participations.SetSquad(ctx, row.SchoolID, season, sq.column, enable, current); err != nil {
			return errMsg{err}
		}
		verb := "disabled"
		if enable {
			verb = "enabled"
		}
		return actionDoneMsg{
			status: fmt.Sprintf("%s %s for %s (%s season)", verb, sq.label, row.CRRName, season),
			scope:  refreshSchoolDependent,
		}
	}
}

func (t *conferencesTab) copyPreviousSeason() tea.Cmd {
	season := t.season
	prev := shiftYear(season, -1)
	return func() tea.Msg {
		n, err := t.deps.repos.Participations.CopySeason(t.deps.ctx, prev, season, nil)
		if err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{
			status: fmt.Sprintf("copied %d participation record(s) from %s to %s", n, prev, season),
			scope:  refreshSchoolDependent,
		}
	}
}

func (t *conferencesTab) loadConferenceNames() tea.Cmd {
	return func() tea.Msg {
		names, err := t.deps.repos.Conferences.Conferences(t.deps.ctx)
		if err != nil {
			return errMsg{err}
		}
		return conferenceNamesMsg(names)
	}
}

func (t *conferencesTab) openConfForm() {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "conference name"
	in.CharLimit = 60
	if conf, ok := t.owConf[t.rows[t.cursor].SchoolID]; ok && conf != "Unknown" {
		in.SetValue(conf)
	}
	in.Focus()
	t.confInput = in
	t.confSquad = 0
	t.editing = true
}

func (t *conferencesTab) updateConfForm(m tea.KeyMsg) (Tab, tea.Cmd) {
	switch m.String() {
	case "esc":
		t.editing = false
		return t, nil
	case "left":
		t.confSquad = (t.confSquad - 1 + len(squads)) % len(squads)
		return t, nil
	case "right":
		t.confSquad = (t.confSquad + 1) % len(squads)
		return t, nil
	case "enter":
		conf := strings.TrimSpace(t.confInput.Value())
		t.editing = false
		if conf == "" || len(t.rows) == 0 {
			return t, nil
		}
		return t, t.changeConference(t.rows[t.cursor], squads[t.confSquad], conf)
	}
	var cmd tea.Cmd
	t.confInput, cmd = t.confInput.Update(m)
	return t, cmd
}

// changeConference closes the open affiliation today and starts the new one.
// Entries keep the conference captured when they were recorded.
func (t *conferencesTab) changeConference(row repository.ParticipationRow, sq squadDef, conf string) tea.Cmd {
	return func() tea.Msg {
		ctx := t.deps.ctx
		teamID, err := t.deps.repos.Schools.EnsureTeam(ctx, row.SchoolID, sq.gender, sq.weight)
		if err != nil {
			return errMsg{err}
		}
		today := time.Now().Format("2006-01-02")
		if err := t.deps.repos.Conferences.Change(ctx, teamID, conf, today); err != nil {
			return errMsg{err}
		}
		return actionDoneMsg{
			status: fmt.Sprintf("%s %s now in %s", row.CRRName, sq.label, conf),
			scope:  refreshSchoolDependent,
		}
	}
}

func (t *conferencesTab) View(width, height int) string {
	if t.showHistory {
		return t.viewHistory()
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Conferences & Participation — %s-%s season", t.season, shiftYear(t.season, 1))) + "\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-36s %-4s %-4s %-4s %-4s %-18s", "School", "OW", "HM", "LM", "LW", "OW Conference")) + "\n")
	if len(t.rows) == 0 {
		b.WriteString(dimStyle.Render("  (no schools)") + "\n")
	}
	for i, r := range t.rows {
		conf := t.owConf[r.SchoolID]
		if conf == "" {
			conf = "Unknown"
		}
		line := fmt.Sprintf("  %-36s %-4s %-4s %-4s %-4s %-18s",
			clip(r.CRRName, 36),
			mark(r.OpenweightWomen), mark(r.HeavyweightMen), mark(r.LightweightMen), mark(r.LightweightWomen),
			clip(conf, 18))
		if i == t.cursor {
			line = cursorStyle.Render("▶" + line[1:])
		}
		b.WriteString(line + "\n")
	}
	if t.editing {
		b.WriteString(fmt.Sprintf("\nChange conference for %s: ◀ %s ▶  %s\n",
			clip(t.rows[t.cursor].CRRName, 30), squads[t.confSquad].label, t.confInput.View()))
		if len(t.confNames) > 0 {
			b.WriteString(dimStyle.Render(clip("known: "+strings.Join(t.confNames, ", "), 76)) + "\n")
		}
		b.WriteString(dimStyle.Render("left/right: squad  enter: save  esc: cancel"))
	} else {
		b.WriteString("\n" + dimStyle.Render("left/right: season  o/h/l/w: toggle squad  e: conference  c: history  p: copy prev season  D: delete season"))
	}
	return b.String()
}

func (t *conferencesTab) viewHistory() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conference History — "+t.historyFor+" OW Women") + "\n")
	if len(t.history) == 0 {
		b.WriteString(dimStyle.Render("  (no affiliations recorded)") + "\n")
	}
	for _, a := range t.history {
		span := a.StartDate + " → present"
		if !a.Current() {
			span = fmt.Sprintf("%s → %s", a.StartDate, *a.EndDate)
		}
		b.WriteString(fmt.Sprintf("  %-28s %s\n", span, a.Conference))
	}
	b.WriteString("\n" + dimStyle.Render("esc: back"))
	return b.String()
}

func mark(on bool) string {
	if on {
		return "✓"
	}
	return "·"
}

func squadFlag(r repository.ParticipationRow, i int) bool {
	switch i {
	case 0:
		return r.OpenweightWomen
	case 1:
		return r.HeavyweightMen
	case 2:
		return r.LightweightMen
	default:
		return r.LightweightWomen
	}
}

func shiftYear(year string, delta int) string {
	y, err := strconv.Atoi(year)
	if err != nil {
		return year
	}
	return strconv.Itoa(y + delta)
}
