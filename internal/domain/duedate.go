package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DueDateKind records whether a due date carries a time component.
type DueDateKind string

const (
	DueKindNone     DueDateKind = "none"
	DueKindDate     DueDateKind = "date"
	DueKindDateTime DueDateKind = "datetime"
)

const (
	dateLayout = "2006-01-02"
	// accepted model-side datetime layouts, most specific first
	dateTimeSeconds = "2006-01-02T15:04:05"
	dateTimeMinutes = "2006-01-02T15:04"
)

// DueDate is a persisted tri-state: no date, a calendar date, or a date with time.
// Date-only values hold midnight in their location.
type DueDate struct {
	Kind  DueDateKind
	Value time.Time
}

// NoDueDate is the zero-information value.
func NoDueDate() DueDate { return DueDate{Kind: DueKindNone} }

// DateOnly builds a date-only due date.
func DateOnly(year int, month time.Month, day int, loc *time.Location) DueDate {
	return DueDate{Kind: DueKindDate, Value: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// ParseDueDate accepts YYYY-MM-DD (date only), YYYY-MM-DDTHH:MM[:SS] (local time in loc)
// or a full RFC3339 timestamp. Blank input yields NoDueDate.
func ParseDueDate(s string, loc *time.Location) (DueDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoDueDate(), nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return DueDate{Kind: DueKindDate, Value: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DueDate{Kind: DueKindDateTime, Value: t.In(loc)}, nil
	}
	for _, layout := range []string{dateTimeSeconds, dateTimeMinutes} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return DueDate{Kind: DueKindDateTime, Value: t}, nil
		}
	}
	return NoDueDate(), fmt.Errorf("unrecognized due date %q", s)
}

func (d DueDate) IsZero() bool {
	return d.Kind == "" || d.Kind == DueKindNone
}

// String renders the wire form: empty, YYYY-MM-DD, or RFC3339.
func (d DueDate) String() string {
	switch d.Kind {
	case DueKindDate:
		return d.Value.Format(dateLayout)
	case DueKindDateTime:
		return d.Value.Format(time.RFC3339)
	default:
		return ""
	}
}

type dueDateJSON struct {
	Kind  DueDateKind `json:"kind"`
	Value string      `json:"value"`
}

// MarshalJSON writes null for no date, otherwise {"kind","value"}.
func (d DueDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(dueDateJSON{Kind: d.Kind, Value: d.String()})
}

func (d *DueDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = NoDueDate()
		return nil
	}
	var raw dueDateJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode due date: %w", err)
	}
	switch raw.Kind {
	case DueKindDate:
		t, err := time.Parse(dateLayout, raw.Value)
		if err != nil {
			return fmt.Errorf("decode due date: %w", err)
		}
		*d = DueDate{Kind: DueKindDate, Value: t}
	case DueKindDateTime:
		t, err := time.Parse(time.RFC3339, raw.Value)
		if err != nil {
			return fmt.Errorf("decode due date: %w", err)
		}
		*d = DueDate{Kind: DueKindDateTime, Value: t}
	default:
		*d = NoDueDate()
	}
	return nil
}
