package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// dateLayouts are tried in order by ParseFlexibleTime.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateOnly,
}

const dateOnly = "2006-01-02"

// ParseFlexibleTime accepts a full RFC 3339 timestamp or a bare date and
// returns the instant in UTC. Values without an offset are read as UTC.
func ParseFlexibleTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", s)
}

// IsDateOnly reports whether s is a bare YYYY-MM-DD date with no time part.
func IsDateOnly(s string) bool {
	_, err := time.Parse(dateOnly, s)
	return err == nil
}

// StartOfDay returns midnight UTC of t's calendar day in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UnmarshalJSON accepts the deadline as a bare date or a timestamp.
func (g *SavingGoal) UnmarshalJSON(data []byte) error {
	type plain SavingGoal
	aux := struct {
		*plain
		Deadline *string `json:"deadline"`
	}{plain: (*plain)(g)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.Deadline = nil
	if aux.Deadline != nil && *aux.Deadline != "" {
		d, err := ParseFlexibleTime(*aux.Deadline)
		if err != nil {
			return err
		}
		d = StartOfDay(d)
		g.Deadline = &d
	}
	return nil
}
