package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// ParticipationRepo handles per-season school squad participation.
type ParticipationRepo struct {
	db *sql.DB
}

func NewParticipationRepo(db *sql.DB) *ParticipationRepo { return &ParticipationRepo{db: db} }

// ParticipationRow joins a school with its participation flags for one season.
// Schools without a record for the season appear with all flags false.
type ParticipationRow struct {
	SchoolID         int64
	Name             string
	ShortName        string
	Acronym          string
	CRRName          string
	Color            string
	OpenweightWomen  bool
	HeavyweightMen   bool
	LightweightMen   bool
	LightweightWomen bool
}

// ForSeason returns every school with its participation flags for the season
// starting in seasonYear.
func (r *ParticipationRepo) ForSeason(ctx context.Context, seasonYear string) ([]ParticipationRow, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT s.school_id, s.name, COALESCE(s.short_name,''), COALESCE(s.acronym,''), s.crr_name, COALESCE(s.color,''),
	       COALESCE(sp.openweight_women, 0), COALESCE(sp.heavyweight_men, 0),
	       COALESCE(sp.lightweight_men, 0), COALESCE(sp.lightweight_women, 0)
	FROM schools s
	LEFT JOIN school_participations sp ON s.school_id = sp.school_id
	     AND SUBSTR(sp.start_date, 1, 4) = ?
	WHERE s.crr_name != ''
	ORDER BY s.crr_name COLLATE NOCASE`, seasonYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ParticipationRow
	for rows.Next() {
		var p ParticipationRow
		if err := rows.Scan(&p.SchoolID, &p.Name, &p.ShortName, &p.Acronym, &p.CRRName, &p.Color,
			&p.OpenweightWomen, &p.HeavyweightMen, &p.LightweightMen, &p.LightweightWomen); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var participationColumns = map[string]string{
	"openweight_women":  "openweight_women",
	"heavyweight_men":   "heavyweight_men",
	"lightweight_men":   "lightweight_men",
	"lightweight_women": "lightweight_women",
}

// SetSquad toggles one squad flag for a school's season, creating the season
// record if it does not exist. isCurrent controls whether the record stays
// open-ended.
func (r *ParticipationRepo) SetSquad(ctx context.Context, schoolID int64, seasonYear, squad string, participating, isCurrent bool) error {
	col, ok := participationColumns[squad]
	if !ok {
		return fmt.Errorf("invalid squad %q", squad)
	}

	var existing int64
	err := r.db.QueryRowContext(ctx, `
	SELECT participation_id FROM school_participations
	WHERE school_id = ? AND SUBSTR(start_date, 1, 4) = ?`, schoolID, seasonYear).Scan(&existing)
	switch {
	case err == nil:
		_, err = r.db.ExecContext(ctx,
			fmt.Sprintf(`UPDATE school_participations SET %s = ? WHERE participation_id = ?`, col),
			participating, existing)
		return err
	case err == sql.ErrNoRows:
		startDate := seasonYear + "-09-01"
		var endDate *string
		if !isCurrent {
			var y int
			if _, err := fmt.Sscanf(seasonYear, "%d", &y); err != nil {
				return fmt.Errorf("invalid season year %q", seasonYear)
			}
			e := fmt.Sprintf("%d-08-31", y+1)
			endDate = &e
		}
		_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO school_participations(school_id, start_date, end_date, %s)
		VALUES (?, ?, ?, ?)`, col), schoolID, startDate, endDate, participating)
		return err
	default:
		return err
	}
}

// CopySeason creates participation records for targetYear by copying the
// flags from sourceYear, skipping schools that already have a record for the
// target season. Returns the number of records created.
func (r *ParticipationRepo) CopySeason(ctx context.Context, sourceYear, targetYear string, endDate *string) (int, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT school_id, openweight_women, heavyweight_men, lightweight_men, lightweight_women
	FROM school_participations
	WHERE SUBSTR(start_date, 1, 4) = ?`, sourceYear)
	if err != nil {
		return 0, err
	}
	type src struct {
		schoolID       int64
		ow, hm, lm, lw bool
	}
	var sources []src
	for rows.Next() {
		var s src
		if err := rows.Scan(&s.schoolID, &s.ow, &s.hm, &s.lm, &s.lw); err != nil {
			rows.Close()
			return 0, err
		}
		sources = append(sources, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	startDate := targetYear + "-09-01"
	copied := 0
	for _, s := range sources {
		var n int
		if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM school_participations
		WHERE school_id = ? AND SUBSTR(start_date, 1, 4) = ?`, s.schoolID, targetYear).Scan(&n); err != nil {
			return copied, err
		}
		if n > 0 {
			continue
		}
		if _, err := r.db.ExecContext(ctx, `
		INSERT INTO school_participations(school_id, start_date, end_date, openweight_women, heavyweight_men, lightweight_men, lightweight_women)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.schoolID, startDate, endDate, s.ow, s.hm, s.lm, s.lw); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

// SeasonYears returns the distinct season start years with participation
// records, newest first.
func (r *ParticipationRepo) SeasonYears(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT DISTINCT SUBSTR(start_date, 1, 4) FROM school_participations
	ORDER BY 1 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// DeleteSeason removes all participation records for a season year.
func (r *ParticipationRepo) DeleteSeason(ctx context.Context, seasonYear string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM school_participations WHERE SUBSTR(start_date, 1, 4) = ?`, seasonYear)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
