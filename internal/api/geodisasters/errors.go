package geodisasters

import (
	"errors"
	"fmt"
)

var (
	ErrFromDateTooEarly = errors.New("from_date is earlier than the service floor")
	ErrToDateTooLate    = errors.New("to_date is later than yesterday")
)

// RangeError reports a date outside the range the service has data for.
type RangeError struct {
	Field string
	Value Date
	Bound Date

	err error
}

func newFromDateError(value Date, floor Date) *RangeError {
	return &RangeError{Field: "from_date", Value: value, Bound: floor, err: ErrFromDateTooEarly}
}

func newToDateError(value Date, yesterday Date) *RangeError {
	return &RangeError{Field: "to_date", Value: value, Bound: yesterday, err: ErrToDateTooLate}
}

func (e *RangeError) Error() string {
	relation := "earlier than"
	if errors.Is(e.err, ErrToDateTooLate) {
		relation = "later than"
	}

	return fmt.Sprintf("Invalid %s! %s is %s %s.", e.Field, e.Value.Format(), relation, e.Bound.Format())
}

func (e *RangeError) Unwrap() error {
	return e.err
}

// HTTPStatusError is returned when the service answers with a failure status.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s for url: %s: %s", e.Status, e.URL, string(e.Body))
}
