package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

// SchoolMatcher resolves free-typed school names against the canonical CRR
// roster. Used when entering results copied from external heat sheets, where
// names rarely match exactly ("Boston Univ." vs "Boston University - BU").
type SchoolMatcher struct {
	Schools *repository.SchoolRepo
}

// Suggestion is a candidate school for an unmatched name.
type Suggestion struct {
	School   repository.School
	Distance int
}

// Match returns the school whose CRR name matches input exactly
// (case-insensitive), or nil when no exact match exists.
func (m *SchoolMatcher) Match(ctx context.Context, input string) (*repository.School, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	schools, err := m.Schools.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range schools {
		if strings.EqualFold(schools[i].CRRName, input) || strings.EqualFold(schools[i].Name, input) {
			return &schools[i], nil
		}
	}
	return nil, nil
}

// Suggest returns up to limit schools closest to input by edit distance over
// the CRR name, short name and acronym, nearest first. Candidates further
// than half the input length away are dropped.
func (m *SchoolMatcher) Suggest(ctx context.Context, input string, limit int) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	schools, err := m.Schools.List(ctx)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(input)
	cutoff := len(input)/2 + 1

	var out []Suggestion
	for _, s := range schools {
		d := nameDistance(upper, s)
		if d > cutoff {
			continue
		}
		out = append(out, Suggestion{School: s, Distance: d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func nameDistance(upperInput string, s repository.School) int {
	best := levenshtein.ComputeDistance(upperInput, strings.ToUpper(s.CRRName))
	for _, alt := range []string{s.Name, s.ShortName, s.Acronym} {
		if alt == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(upperInput, strings.ToUpper(alt)); d < best {
			best = d
		}
	}
	return best
}
