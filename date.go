package taxes

import (
	"fmt"
	"time"
)

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

const day = 24 * time.Hour

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, d int) Date {
	x := Date{year, month, d}
	x.y, x.m, x.d = x.time().Date()
	return x
}

// DateOf returns the Date of a point in time, in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Date())
}

// ParseDate parses an ISO-8601 date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Today returns the current date.
func Today() Date { return DateOf(time.Now()) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.time().Format(DateFormat) }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time exposes the canonical midnight-UTC instant for this date.
func (d Date) Time() time.Time { return d.time() }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// DaysBetween returns the number of whole days from a to b.
// It is negative when b is before a.
func DaysBetween(a, b Date) int {
	return int(b.time().Sub(a.time()) / day)
}

// MarshalJSON implements the json.Marshaler interface for Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TaxYear identifies a fiscal year in a given jurisdiction.
//
// Tax years are named after their closing calendar year: the Australian year
// 2026 runs 1 Jul 2025 through 30 Jun 2026, the New Zealand year 2026 runs
// 1 Apr 2025 through 31 Mar 2026.
type TaxYear struct {
	Jurisdiction Jurisdiction
	Year         int
}

// NewTaxYear returns the tax year closing in the given calendar year.
func NewTaxYear(jurisdiction Jurisdiction, year int) TaxYear {
	return TaxYear{Jurisdiction: jurisdiction, Year: year}
}

// Start returns the first day of the tax year.
func (y TaxYear) Start() Date {
	switch y.Jurisdiction {
	case NZ:
		return NewDate(y.Year-1, time.April, 1)
	default:
		return NewDate(y.Year-1, time.July, 1)
	}
}

// End returns the last day of the tax year.
func (y TaxYear) End() Date {
	switch y.Jurisdiction {
	case NZ:
		return NewDate(y.Year, time.March, 31)
	default:
		return NewDate(y.Year, time.June, 30)
	}
}

// Contains reports whether the date falls inside the tax year.
func (y TaxYear) Contains(d Date) bool {
	return !d.Before(y.Start()) && !d.After(y.End())
}

func (y TaxYear) String() string {
	return fmt.Sprintf("%s%d", y.Jurisdiction, y.Year)
}
