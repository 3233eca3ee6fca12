package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Lookback is how far back a mailbox sync reaches.
type Lookback int

const (
	Lookback1Day   Lookback = 1
	Lookback3Days  Lookback = 3
	Lookback7Days  Lookback = 7
	Lookback30Days Lookback = 30
)

// AutoSyncLookback is used by scheduled sweeps.
const AutoSyncLookback = Lookback1Day

// Days returns the lookback in days.
func (l Lookback) Days() int {
	return int(l)
}

// Duration returns the lookback as a duration.
func (l Lookback) Duration() time.Duration {
	return time.Duration(l) * 24 * time.Hour
}

// IsValid returns true for the user-selectable lookbacks.
func (l Lookback) IsValid() bool {
	switch l {
	case Lookback1Day, Lookback3Days, Lookback7Days, Lookback30Days:
		return true
	}
	return false
}

// String formats the lookback as "<n>d".
func (l Lookback) String() string {
	return fmt.Sprintf("%dd", int(l))
}

// ParseLookback accepts "1", "3d", "7", "30d".
func ParseLookback(s string) (Lookback, error) {
	s = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "d")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: lookback %q", ErrInvalidInput, s)
	}
	l := Lookback(n)
	if !l.IsValid() {
		return 0, fmt.Errorf("%w: lookback must be 1, 3, 7 or 30 days", ErrInvalidInput)
	}
	return l, nil
}
