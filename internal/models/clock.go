package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every Clock value.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned when a wall-clock string is not a valid "HH:MM" value.
var ErrInvalidClock = errors.New("invalid clock value, expected HH:MM")

// Clock is a wall-clock time expressed as minutes since midnight. It carries
// no date and no timezone; JSON and text encodings use "HH:MM".
type Clock int

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(raw string) (Clock, error) {
	raw = strings.TrimSpace(raw)
	hh, mm, ok := strings.Cut(raw, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return Clock(hours*60 + minutes), nil
}

// Valid reports whether c falls within a single day.
func (c Clock) Valid() bool {
	return c >= 0 && c < MinutesPerDay
}

// Minutes returns the raw minutes since midnight.
func (c Clock) Minutes() int {
	return int(c)
}

// String renders the clock as "HH:MM".
func (c Clock) String() string {
	m := int(c)
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
