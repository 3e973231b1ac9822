package accrual

import (
	"fmt"
	"time"
)

// =============================================================================
// LOCAL DATE - A calendar day, free of instant semantics
// =============================================================================

// LocalDate is a calendar day in some (externally known) timezone.
// Keeping dates separate from instants is what makes the day-bucketing in
// reconstruction unambiguous: a transaction's instant is converted to the
// agreement timezone exactly once, and everything after that is date math.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewLocalDate(year int, month time.Month, day int) LocalDate {
	// Normalize through time.Date so "February 30" becomes March 1/2
	// instead of an unordered value.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf returns the calendar day of an instant in the given location.
func DateOf(t time.Time, loc *time.Location) LocalDate {
	lt := t.In(loc)
	return LocalDate{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

// ParseLocalDate parses "2006-01-02".
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d LocalDate) midnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Comparison
func (d LocalDate) Before(other LocalDate) bool { return d.midnightUTC().Before(other.midnightUTC()) }
func (d LocalDate) After(other LocalDate) bool  { return d.midnightUTC().After(other.midnightUTC()) }
func (d LocalDate) Equal(other LocalDate) bool  { return d == other }
func (d LocalDate) BeforeOrEqual(other LocalDate) bool { return !d.After(other) }
func (d LocalDate) AfterOrEqual(other LocalDate) bool  { return !d.Before(other) }

// Arithmetic
func (d LocalDate) AddDays(n int) LocalDate {
	t := d.midnightUTC().AddDate(0, 0, n)
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d LocalDate) Next() LocalDate { return d.AddDays(1) }

// DaysUntil returns the number of calendar days from d to other
// (negative if other is earlier).
func (d LocalDate) DaysUntil(other LocalDate) int {
	return int(other.midnightUTC().Sub(d.midnightUTC()).Hours() / 24)
}

func (d LocalDate) IsZero() bool { return d == LocalDate{} }

func (d LocalDate) String() string {
	return d.midnightUTC().Format("2006-01-02")
}

// MarshalJSON encodes as "2006-01-02".
func (d LocalDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// PERIOD - Inclusive date range for accrual windows
// =============================================================================

// Period is the inclusive [Start, End] accrual window.
type Period struct {
	Start LocalDate
	End   LocalDate
}

// Days returns the number of calendar days in the period, inclusive.
func (p Period) Days() int { return p.Start.DaysUntil(p.End) + 1 }

// Valid reports whether Start <= End.
func (p Period) Valid() bool { return p.Start.BeforeOrEqual(p.End) }

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d LocalDate) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the full calendar month containing the given date.
func MonthPeriod(year int, month time.Month) Period {
	start := NewLocalDate(year, month, 1)
	end := start.AddDays(32)
	end = NewLocalDate(end.Year, end.Month, 1).AddDays(-1)
	return Period{Start: start, End: end}
}

// YearPeriod returns the full calendar year.
func YearPeriod(year int) Period {
	return Period{
		Start: NewLocalDate(year, time.January, 1),
		End:   NewLocalDate(year, time.December, 31),
	}
}
