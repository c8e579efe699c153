package validate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and form format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date carried over JSON as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate returns the calendar date y-m-d at 00:00 UTC.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string in %s format", DateLayout)
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid date %q: expected %s", raw, DateLayout)
	}
	d.Time = t
	return nil
}

// Ptr returns the date as *time.Time, nil for a nil receiver.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := DateOf(d.Time)
	return &t
}

// DateOf drops the clock part of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, day := t.Date()
	return NewDate(y, m, day)
}

// FormatDate renders an optional date, "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate decodes an optional form value. Blank input yields (nil, nil).
func ParseDate(field, raw string) (*time.Time, *FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, &FieldError{
			Field:   field,
			Kind:    KindInvalidFormat,
			Message: "enter a valid date (YYYY-MM-DD)",
		}
	}
	return &t, nil
}
