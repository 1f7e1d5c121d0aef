package model

import "time"

// Period is a (month, year) pair a payment is attributed to.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PeriodOf returns the calendar period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Valid reports whether the month is 1-12 and the year is at least 1900.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 1900
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	return p.Year < other.Year || (p.Year == other.Year && p.Month < other.Month)
}

// After reports whether p is strictly later than other.
func (p Period) After(other Period) bool {
	return other.Before(p)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month >= 12 {
		return Period{Month: 1, Year: p.Year + 1}
	}
	return Period{Month: p.Month + 1, Year: p.Year}
}
