package roomstat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Room is a physical space identified by an integer id.
type Room struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Student is a person assigned to exactly one room.
// Room must reference an existing Room.ID.
type Student struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Birthday Date   `json:"birthday"`
	Sex      Sex    `json:"sex"`
	Room     int64  `json:"room"`
}

// Sex is the single-character sex code stored in student.sex.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// IsValid returns true for M and F.
func (s Sex) IsValid() bool {
	return s == SexMale || s == SexFemale
}

// dateLayouts are the birthday encodings accepted on input.
// The second form is the microsecond timestamp found in exported data sets.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
}

// Date is a calendar day without time of day or zone.
// It is stored as UTC midnight so that day arithmetic is exact.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts "2006-01-02" and timestamp forms; any time part is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
}

// String returns the ISO 8601 calendar form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes any layout accepted by ParseDate.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("birthday must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LoadSummary is the outcome of a successful load.
// Skipped rows already existed (matched by id) and were left untouched.
type LoadSummary struct {
	RoomsInserted    int
	RoomsSkipped     int
	StudentsInserted int
	StudentsSkipped  int
	Duration         time.Duration
}

// Rooms returns the number of room records processed.
func (s LoadSummary) Rooms() int { return s.RoomsInserted + s.RoomsSkipped }

// Students returns the number of student records processed.
func (s LoadSummary) Students() int { return s.StudentsInserted + s.StudentsSkipped }
