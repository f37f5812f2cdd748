package filter

import (
	"fmt"
	"strings"
	"time"
)

// DateBounds selects which ends of a date window are inclusive, written in
// interval notation: "()" excludes both ends, "[]" includes both.
type DateBounds string

const (
	DateBoundsExclusive      DateBounds = "()"
	DateBoundsInclusiveStart DateBounds = "[)"
	DateBoundsInclusiveEnd   DateBounds = "(]"
	DateBoundsInclusive      DateBounds = "[]"
)

// ParseDateBounds validates a bounds string. An empty string selects
// DateBoundsExclusive.
func ParseDateBounds(value string) (DateBounds, error) {
	switch b := DateBounds(strings.TrimSpace(value)); b {
	case "":
		return DateBoundsExclusive, nil
	case DateBoundsExclusive, DateBoundsInclusiveStart, DateBoundsInclusiveEnd, DateBoundsInclusive:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown date bounds %q", ErrInvalidParams, value)
	}
}

// Contains reports whether t falls inside the window [start, end] with the
// inclusivity the bounds describe.
func (b DateBounds) Contains(t, start, end time.Time) bool {
	if b == "" {
		b = DateBoundsExclusive
	}
	afterStart := t.After(start)
	if b[0] == '[' {
		afterStart = afterStart || t.Equal(start)
	}
	beforeEnd := t.Before(end)
	if b[1] == ']' {
		beforeEnd = beforeEnd || t.Equal(end)
	}
	return afterStart && beforeEnd
}
