// Package epoch encodes calendar dates as comparable epoch seconds.
//
// A date d is stored as (d at 00:00 - 12h - offset) - 1970-01-01 in seconds,
// where offset is the UTC offset of the reference timezone at noon of d.
// The offset depends only on the date and the configured zone, never on the
// process clock or locale, so the same date always encodes to the same value.
package epoch

import (
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical calendar date format.
	DateLayout = "2006-01-02"

	halfDay = 12 * 60 * 60
)

var (
	// MinDate stands in for a missing lower bound of a date range.
	MinDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	// MaxDate stands in for a missing upper bound of a date range.
	MaxDate = time.Date(2100, time.December, 31, 0, 0, 0, 0, time.UTC)
)

var inputLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC3339,
	"2006-1-2",
}

// Codec converts dates to epoch seconds in a reference timezone.
// The zero Codec (or one built from an unknown zone) encodes nothing.
type Codec struct {
	zone string
	loc  *time.Location
}

// New creates a Codec for the named IANA timezone.
// An unknown zone yields a Codec whose conversions report ok=false.
func New(timezone string) Codec {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Codec{zone: timezone}
	}
	return Codec{zone: timezone, loc: loc}
}

// Zone returns the configured timezone name.
func (c Codec) Zone() string { return c.zone }

// Valid reports whether the timezone resolved.
func (c Codec) Valid() bool { return c.loc != nil }

// Encode returns the epoch encoding of the calendar date of t.
func (c Codec) Encode(t time.Time) (int64, bool) {
	if c.loc == nil {
		return 0, false
	}
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return midnight.Unix() - halfDay - c.offset(y, m, d), true
}

// Decode returns the calendar date (UTC midnight) whose encoding is v.
func (c Codec) Decode(v int64) (time.Time, bool) {
	if c.loc == nil {
		return time.Time{}, false
	}
	// v + 12h lands within one day of the encoded date for any real offset.
	guess := time.Unix(v+halfDay, 0).UTC()
	for _, shift := range []int{0, 1, -1} {
		y, m, d := guess.AddDate(0, 0, shift).Date()
		candidate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if enc, _ := c.Encode(candidate); enc == v {
			return candidate, true
		}
	}
	y, m, d := guess.Date()
	shifted := time.Unix(v+halfDay+c.offset(y, m, d), 0).UTC()
	y, m, d = shifted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// EncodeString parses a date (or datetime) string and encodes its date.
func (c Codec) EncodeString(s string) (int64, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return 0, false
	}
	return c.Encode(t)
}

// DecodeString decodes a stored epoch value into a YYYY-MM-DD string.
func (c Codec) DecodeString(s string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return "", false
	}
	t, ok := c.Decode(int64(f))
	if !ok {
		return "", false
	}
	return t.Format(DateLayout), true
}

func (c Codec) offset(y int, m time.Month, d int) int64 {
	_, off := time.Date(y, m, d, 12, 0, 0, 0, c.loc).Zone()
	return int64(off)
}

// ParseDate accepts YYYY-MM-DD, datetime and RFC3339 forms.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
