package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clock is a time of day with minute resolution, stored as minutes since midnight.
type Clock int

// MinutesPerDay bounds every valid Clock value: 0 <= c <= MinutesPerDay.
const MinutesPerDay = 24 * 60

// NewClock returns the Clock for hour:minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM" or "HH:MM:SS" (seconds are ignored). "24:00" is accepted as end of day.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: invalid time %q, expected HH:MM", ErrInvalidInput, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidInput, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", ErrInvalidInput, s)
	}
	if h < 0 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: invalid hour in %q", ErrInvalidInput, s)
	}
	return NewClock(h, m), nil
}

// MustParseClock is ParseClock for literals known to be valid. It panics otherwise.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: time must be a string", ErrInvalidInput)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner for PostgreSQL TIME columns.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClock(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		parsed, err := ParseClock(string(v))
		if err != nil {
			return err
		}
		*c = parsed
	case time.Time:
		*c = NewClock(v.Hour(), v.Minute())
	default:
		return fmt.Errorf("cannot scan %T into Clock", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Clock) Value() (driver.Value, error) {
	return c.String(), nil
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and [bStart, bEnd) overlap.
// Ranges that only touch at an endpoint do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	startsInside := aStart >= bStart && aStart < bEnd
	endsInside := aEnd > bStart && aEnd <= bEnd
	contains := aStart < bStart && aEnd > bEnd
	return startsInside || endsInside || contains
}

// Weekday is one of the six teaching days, normalized to lowercase without accents.
type Weekday string

const (
	Monday    Weekday = "lunes"
	Tuesday   Weekday = "martes"
	Wednesday Weekday = "miercoles"
	Thursday  Weekday = "jueves"
	Friday    Weekday = "viernes"
	Saturday  Weekday = "sabado"
)

// Weekdays lists the teaching days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseWeekday accepts any casing and accented spellings ("Miércoles", "SÁBADO").
func ParseWeekday(s string) (Weekday, error) {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid day %q", ErrInvalidInput, s)
	}
	d := Weekday(strings.ToLower(strings.TrimSpace(folded)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: invalid day %q", ErrInvalidInput, s)
	}
	return d, nil
}

// Valid reports whether d is one of Weekdays.
func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: day must be a string", ErrInvalidInput)
	}
	parsed, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
