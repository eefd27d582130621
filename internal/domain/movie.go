package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for release dates.
const DateLayout = "2006-01-02"

// Movie mirrors a single record returned by the catalog search endpoints.
type Movie struct {
	Title       string   `json:"title"`
	ReleaseYear int      `json:"release_year"`
	ReleaseDate Date     `json:"release_date"`
	RunningTime Minutes  `json:"running_time"`
	Genre       []string `json:"genre"`
	Tags        []string `json:"tags"`
	Summary     string   `json:"summary"`
	ImagePath   string   `json:"image_path"`
	Budget      Number   `json:"budget"`
	BoxOffice   Number   `json:"box_office"`
	Profit      Number   `json:"profit"`
	Relevancy   Number   `json:"relevancy"`
}

// HasTag reports whether the movie carries tag, ignoring case.
func (m Movie) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(strings.TrimSpace(t), strings.TrimSpace(tag)) {
			return true
		}
	}
	return false
}

// Number is an optional numeric field. The backend fills missing values with
// "" or null, and some exports encode numbers as strings.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number holding v.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or0 returns the value, or zero when absent.
func (n Number) Or0() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// UnmarshalJSON accepts numbers, numeric strings, "" and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	value, ok, err := parseLooseNumber(data)
	if err != nil {
		return err
	}
	*n = Number{Value: value, Valid: ok}
	return nil
}

// MarshalJSON writes null for absent values.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Minutes is a running time. Dataset exports carry it as a float or string.
type Minutes int

// UnmarshalJSON accepts numbers, numeric strings, "" and null.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	value, ok, err := parseLooseNumber(data)
	if err != nil {
		return err
	}
	if !ok {
		*m = 0
		return nil
	}
	*m = Minutes(math.Round(value))
	return nil
}

// Date is a calendar date without time-of-day, stored at UTC midnight.
type Date struct {
	time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses the formats the backend is known to emit.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	for _, layout := range []string{DateLayout, "2006-01-02T15:04:05", time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return DateOf(parsed), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", raw)
}

// UnmarshalJSON accepts date strings, "" and null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("release date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON writes YYYY-MM-DD, or null for an unknown date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func parseLooseNumber(data []byte) (float64, bool, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false, nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return 0, false, err
		}
		raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
		if raw == "" || strings.EqualFold(raw, "nan") {
			return 0, false, nil
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid number %q", raw)
		}
		return value, true, nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, false, err
	}
	return value, true, nil
}
