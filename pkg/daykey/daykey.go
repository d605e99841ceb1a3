package daykey

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// Layout is the canonical wire and storage format for a day key.
const Layout = "2006-01-02"

var ErrInvalidDayKey = errors.New("invalid day key")

// DayKey identifies exactly one calendar day with no time-of-day or zone
// component. Every ledger and aggregate lookup is addressed by this type;
// timestamps from external callers are converted at the boundary.
type DayKey string

// Parse validates s as a YYYY-MM-DD day key.
func Parse(s string) (DayKey, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	// Reject keys that normalize to a different day (e.g. 2024-02-30).
	if t.Format(Layout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	return DayKey(s), nil
}

// FromTime truncates a timestamp to its UTC calendar day.
func FromTime(t time.Time) DayKey {
	return DayKey(t.UTC().Format(Layout))
}

// Today returns the current UTC calendar day.
func Today() DayKey {
	return FromTime(time.Now())
}

// Time returns the day at midnight UTC.
func (d DayKey) Time() time.Time {
	t, _ := time.Parse(Layout, string(d))
	return t
}

func (d DayKey) String() string {
	return string(d)
}

// Weekday returns the day's weekday (Sunday = 0, matching time.Weekday).
func (d DayKey) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the day key n days after d (negative n walks backward).
func (d DayKey) AddDays(n int) DayKey {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is an earlier calendar day than other.
// Day keys are zero-padded, so lexicographic order is chronological order.
func (d DayKey) Before(other DayKey) bool {
	return d < other
}

func (d DayKey) After(other DayKey) bool {
	return d > other
}

// StartOfWeek returns the Sunday on or before d. Weeks start on Sunday,
// matching the weekday-index convention of the required-day predicate.
func (d DayKey) StartOfWeek() DayKey {
	return d.AddDays(-int(d.Weekday()))
}

// StartOfMonth returns the first day of d's month.
func (d DayKey) StartOfMonth() DayKey {
	t := d.Time()
	return FromTime(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// MonthRange returns the first and last day of the month m months away from
// the current month. offset 0 is the current month.
func MonthRange(now time.Time, offset int) (DayKey, DayKey) {
	first := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
	last := first.AddDate(0, 1, -1)
	return FromTime(first), FromTime(last)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// Value implements the driver.Valuer interface.
func (d DayKey) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// Scan implements the sql.Scanner interface. Postgres date columns scan as
// time.Time; varchar columns scan as string or []byte.
func (d *DayKey) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		key, err := Parse(v)
		if err != nil {
			return err
		}
		*d = key
		return nil
	case []byte:
		key, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = key
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDayKey, src)
	}
}
