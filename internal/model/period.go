package model

import "time"

// PeriodType identifies the granularity of a Period.
type PeriodType string

const (
	PeriodYear    PeriodType = "year"
	PeriodQuarter PeriodType = "quarter"
	PeriodMonth   PeriodType = "month"
	PeriodWeek    PeriodType = "week"
	PeriodDay     PeriodType = "day"
)

// Period represents a specific period in history, e.g. week 2 of 2022.
// Number is unused when Type is PeriodYear: 1-4 for quarters, 1-12 for
// months, 1-53 for ISO weeks, 1-366 for days of the year.
type Period struct {
	Type   PeriodType
	Year   int
	Number int
}

// ContainsDate reports whether date falls inside the period's span.
func (p Period) ContainsDate(date time.Time) bool {
	if date.Year() != p.Year {
		return false
	}
	switch p.Type {
	case PeriodYear:
		return true
	case PeriodQuarter:
		return (int(date.Month())-1)/3+1 == p.Number
	case PeriodMonth:
		return int(date.Month()) == p.Number
	case PeriodWeek:
		_, week := date.ISOWeek()
		return week == p.Number
	case PeriodDay:
		return date.YearDay() == p.Number
	}
	return false
}
