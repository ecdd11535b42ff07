package stats

import (
	"sort"
	"strings"
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/timeutil"
)

// ProjectTotal is the time tracked against one project name.
type ProjectTotal struct {
	Project  string  `json:"project"`
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
}

// DayTotal is the time tracked on one calendar day.
type DayTotal struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

// dayIndex maps a canonical date to the hours tracked that day.
type dayIndex map[string]float64

func indexByDay(sessions []domain.Session, loc *time.Location) dayIndex {
	idx := make(dayIndex)
	for _, s := range sessions {
		day, err := s.Day(loc)
		if err != nil {
			continue
		}
		idx[day.Format(timeutil.DateLayout)] += s.Hours()
	}
	return idx
}

// sum adds the hours of every day from..to inclusive.
func (idx dayIndex) sum(from, to time.Time) float64 {
	total := 0.0
	for d := timeutil.StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		total += idx[d.Format(timeutil.DateLayout)]
	}
	return total
}

// ProjectTotals sums hours per project over the inclusive day range, largest
// first. Project names are grouped case-insensitively; the first spelling seen wins.
func ProjectTotals(sessions []domain.Session, from, to time.Time) []ProjectTotal {
	filter := domain.SessionFilter{From: &from, To: &to}
	byKey := make(map[string]*ProjectTotal)
	var order []string

	for _, s := range domain.Filter(sessions, filter) {
		key := strings.ToLower(strings.TrimSpace(s.Project))
		pt, ok := byKey[key]
		if !ok {
			pt = &ProjectTotal{Project: strings.TrimSpace(s.Project)}
			byKey[key] = pt
			order = append(order, key)
		}
		pt.Hours += s.Hours()
		pt.Sessions++
	}

	totals := make([]ProjectTotal, 0, len(order))
	for _, key := range order {
		totals = append(totals, *byKey[key])
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Hours != totals[j].Hours {
			return totals[i].Hours > totals[j].Hours
		}
		return totals[i].Project < totals[j].Project
	})
	return totals
}

// DailyTotals returns one entry per calendar day from..to inclusive, zero
// for days without sessions.
func DailyTotals(sessions []domain.Session, from, to time.Time) []DayTotal {
	idx := indexByDay(sessions, from.Location())
	var totals []DayTotal
	for d := timeutil.StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		totals = append(totals, DayTotal{Date: d, Hours: idx[d.Format(timeutil.DateLayout)]})
	}
	return totals
}

// TotalHours sums the hours of every session regardless of date.
func TotalHours(sessions []domain.Session) float64 {
	total := 0.0
	for _, s := range sessions {
		total += s.Hours()
	}
	return total
}
