package geodisasters

import (
	"fmt"
	"time"
)

const (
	dateStringFormat = "%04d-%02d-%02d"
)

type Date struct {
	Year  int
	Month int
	Day   int
}

func NewDateFromString(value string) (Date, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return Date{}, err
	}

	return NewDateFromTime(t), nil
}

// NewDateFromTime returns the calendar date of t in its own location.
func NewDateFromTime(t time.Time) Date {
	year, month, day := t.Date()

	return Date{Year: year, Month: int(month), Day: day}
}

// Format renders the normalized date, so out-of-range fields roll over
// the same way they do in comparisons.
func (d Date) Format() string {
	t := d.Time()

	return fmt.Sprintf(dateStringFormat, t.Year(), int(t.Month()), t.Day())
}

func (d Date) String() string {
	return d.Format()
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(days int) Date {
	return NewDateFromTime(d.Time().AddDate(0, 0, days))
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	format := fmt.Sprintf("\"%s\"", dateStringFormat)
	_, err := fmt.Sscanf(string(data), format, &d.Year, &d.Month, &d.Day)
	if err != nil {
		return err
	}

	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", d.Format())), nil
}
