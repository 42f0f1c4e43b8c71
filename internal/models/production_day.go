package models

import (
	"sort"
	"time"
)

// DayType tells whether a production day was worked fully or for half a day.
type DayType string

const (
	DayFull DayType = "full"
	DayHalf DayType = "half"
)

// DateLayout is the calendar-date format used for production days.
const DateLayout = "2006-01-02"

// ProductionDay is one worked calendar date on a job.
type ProductionDay struct {
	Date    string  `json:"date"`
	DayType DayType `json:"day_type"`
}

// Weight returns the day's contribution to a day count: 1 for full, 0.5 for half.
func (d ProductionDay) Weight() float64 {
	if d.DayType == DayHalf {
		return 0.5
	}
	return 1
}

// NormalizeProductionDays returns days sorted by date with one entry per date.
// When a date appears more than once the last entry wins. Entries with an
// unparseable date are dropped.
func NormalizeProductionDays(days []ProductionDay) []ProductionDay {
	byDate := make(map[string]ProductionDay, len(days))
	for _, d := range days {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			continue
		}
		if d.DayType != DayHalf {
			d.DayType = DayFull
		}
		byDate[d.Date] = d
	}
	out := make([]ProductionDay, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
