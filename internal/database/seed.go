package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

// seedSchool describes one baseline Division-1 program.
// Squad flags: openweight women, heavyweight men, lightweight men, lightweight women.
type seedSchool struct {
	crrName    string
	name       string
	shortName  string
	acronym    string
	color      string
	ow, hm, lm bool
	lw         bool
	owConf     string // openweight women's conference, "" if no OW squad
}

var seedSchools = []seedSchool{
	{"Alabama", "University of Alabama", "Alabama", "", "#9E1B32", true, false, false, false, "SEC"},
	{"Boston College", "Boston College", "", "", "#98002E", true, false, false, false, "ACC"},
	{"Boston University - BU", "Boston University", "BU", "BU", "#CC0000", true, true, false, true, "Patriot League"},
	{"Brown", "Brown University", "Brown", "", "#8B0000", true, true, false, false, "Ivy League"},
	{"California", "University of California - Berkeley", "UC Berkeley", "", "#8B0000", true, true, false, false, "ACC"},
	{"Clemson", "Clemson University", "Clemson", "", "#F66733", true, false, false, false, "ACC"},
	{"Columbia", "Columbia University", "Columbia", "", "#0073E6", true, true, true, false, "Ivy League"},
	{"Cornell", "Cornell University", "Cornell", "", "#A31621", true, true, true, false, "Ivy League"},
	{"Dartmouth", "Dartmouth College", "Dartmouth", "", "#1E3A8A", true, true, true, false, "Ivy League"},
	{"Dayton", "University of Dayton", "Dayton", "", "#C41E3A", true, false, false, false, "A-10"},
	{"Drexel", "Drexel University", "Drexel", "", "#003087", true, true, false, false, "CAA"},
	{"Duke", "Duke University", "Duke", "", "#8A0538", true, false, false, false, "ACC"},
	{"Fairfield", "Fairfield University", "Fairfield", "", "#862633", true, true, false, false, "MAAC"},
	{"Georgetown", "Georgetown University", "Georgetown", "", "#006747", true, true, true, true, "Independent"},
	{"Gonzaga", "Gonzaga University", "Gonzaga", "", "#002147", true, true, false, false, "WCC"},
	{"Harvard", "Harvard University", "Harvard", "", "#A41034", false, true, true, true, ""},
	{"Holy Cross", "College of the Holy Cross", "Holy Cross", "", "#5C0F2E", true, true, false, false, "Patriot League"},
	{"Indiana", "Indiana University Bloomington", "Indiana", "", "#FF6600", true, false, false, false, "Big Ten"},
	{"Iowa", "University of Iowa", "Iowa", "", "#002147", true, false, false, false, "Big Ten"},
	{"Kansas", "University of Kansas", "Kansas", "", "#FF6600", true, false, false, false, "Big 12"},
	{"Kansas State - KSU", "Kansas State University", "Kansas State", "KSU", "#0053A0", true, false, false, false, "Big 12"},
	{"Louisville", "University of Louisville", "Louisville", "", "#002F87", true, false, false, false, "ACC"},
	{"Michigan", "University of Michigan", "Michigan", "", "#C41E3A", true, false, false, false, "Big Ten"},
	{"Minnesota", "University of Minnesota", "Minnesota", "", "#8B0000", true, false, false, false, "Big Ten"},
	{"MIT", "Massachusetts Institute of Technology", "MIT", "MIT", "#18453B", true, true, true, true, "Patriot League"},
	{"Navy", "United States Naval Academy", "Navy", "", "#003F87", true, true, true, false, "Patriot League"},
	{"Northeastern", "Northeastern University", "Northeastern", "", "#BB0000", true, true, false, false, "CAA"},
	{"Notre Dame", "University of Notre Dame", "Notre Dame", "", "#003087", true, false, false, false, "ACC"},
	{"Ohio State", "Ohio State University", "Ohio State", "OSU", "#D21034", true, false, false, false, "Big Ten"},
	{"Penn", "University of Pennsylvania", "Penn", "", "#FF6600", true, true, true, false, "Ivy League"},
	{"Princeton", "Princeton University", "Princeton", "", "#FF6600", true, true, true, true, "Ivy League"},
	{"Rutgers", "Rutgers University", "Rutgers", "", "#FF6600", true, false, false, false, "Big Ten"},
	{"Saint Joseph's", "Saint Joseph's University", "Saint Joseph's", "", "#003DA5", true, true, false, false, "A-10"},
	{"Stanford", "Stanford University", "Stanford", "", "#001E3C", true, true, false, true, "ACC"},
	{"Syracuse", "Syracuse University", "Syracuse", "", "#8C1D40", true, true, false, false, "ACC"},
	{"Tennessee", "University of Tennessee", "Tennessee", "", "#C41E3A", true, false, false, false, "SEC"},
	{"Texas", "University of Texas at Austin", "Texas", "", "#8B0000", true, false, false, false, "SEC"},
	{"UCLA", "University of California - Los Angeles", "UCLA", "UCLA", "#FFCC00", true, false, false, false, "Big Ten"},
	{"University of Southern California - USC", "University of Southern California", "USC", "USC", "#FF6600", true, false, false, false, "Big Ten"},
	{"Washington - UW", "University of Washington", "Washington", "UW", "#FF6600", true, true, false, false, "Big Ten"},
	{"Wisconsin", "University of Wisconsin - Madison", "Wisconsin", "", "#CC0000", true, true, false, true, "Big Ten"},
	{"Yale", "Yale University", "Yale", "", "#00274C", true, true, true, false, "Ivy League"},
}

// SeedSchools loads the baseline school, team, participation and conference
// data into an empty database. It is idempotent and safe to run on every
// startup. seasonStartMonth decides which season the participation rows
// belong to, matching the Conferences tab's default season.
func SeedSchools(ctx context.Context, db *sql.DB, seasonStartMonth int) error {
	schools := repository.NewSchoolRepo(db)
	confs := repository.NewConferenceRepo(db)
	parts := repository.NewParticipationRepo(db)

	existing, err := schools.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list schools: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seasonStart := SeasonStartYear(time.Now(), seasonStartMonth)
	affiliationStart := fmt.Sprintf("%s-09-01", seasonStart)

	for _, s := range seedSchools {
		id, err := schools.Create(ctx, repository.School{
			Name:      s.name,
			ShortName: s.shortName,
			Acronym:   s.acronym,
			CRRName:   s.crrName,
			Color:     s.color,
		})
		if err != nil {
			return fmt.Errorf("seed: school %s: %w", s.crrName, err)
		}

		type squad struct {
			gender, weight, column string
			has                    bool
		}
		for _, sq := range []squad{
			{"W", "OW", "openweight_women", s.ow},
			{"M", "HW", "heavyweight_men", s.hm},
			{"M", "LW", "lightweight_men", s.lm},
			{"W", "LW", "lightweight_women", s.lw},
		} {
			if !sq.has {
				continue
			}
			teamID, err := schools.EnsureTeam(ctx, id, sq.gender, sq.weight)
			if err != nil {
				return fmt.Errorf("seed: team %s %s%s: %w", s.crrName, sq.gender, sq.weight, err)
			}
			if err := parts.SetSquad(ctx, id, seasonStart, sq.column, true, true); err != nil {
				return fmt.Errorf("seed: participation %s: %w", s.crrName, err)
			}
			if sq.gender == "W" && sq.weight == "OW" && s.owConf != "" {
				if _, err := confs.Add(ctx, repository.ConferenceAffiliation{
					TeamID:     teamID,
					Conference: s.owConf,
					StartDate:  affiliationStart,
				}); err != nil {
					return fmt.Errorf("seed: conference %s: %w", s.crrName, err)
				}
			}
		}
	}
	return nil
}

// SeasonStartYear returns the start year of the collegiate season containing
// now. Seasons roll over at startMonth; out-of-range values fall back to
// September.
func SeasonStartYear(now time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 9
	}
	year := now.Year()
	if int(now.Month()) < startMonth {
		year--
	}
	return strconv.Itoa(year)
}
