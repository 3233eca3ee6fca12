package domain

import (
	"fmt"
	"time"
)

// Tone is the voice requested from the reply generator.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
)

// ReplyLength is the requested size of a generated reply.
type ReplyLength string

const (
	LengthShort  ReplyLength = "short"
	LengthMedium ReplyLength = "medium"
	LengthLong   ReplyLength = "long"
)

// BusinessHours is a daily window, in the tenant's time zone, during which
// replies may be sent. Weekends are excluded.
type BusinessHours struct {
	// StartHour is the first hour of the window (0-23).
	StartHour int `toml:"start_hour" json:"start_hour"`

	// EndHour is the hour the window closes (1-24, exclusive).
	EndHour int `toml:"end_hour" json:"end_hour"`
}

// Contains reports whether t falls inside the window on a weekday.
func (b BusinessHours) Contains(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	h := t.Hour()
	return h >= b.StartHour && h < b.EndHour
}

// AutoReplySettings is the per-tenant auto-reply configuration, persisted by
// a settings store and read-only to the orchestrator.
type AutoReplySettings struct {
	// Enabled is the tenant's auto-reply switch.
	Enabled bool `toml:"enabled" json:"enabled"`

	// Tone is passed to the reply generator.
	Tone Tone `toml:"tone" json:"tone"`

	// Length is passed to the reply generator.
	Length ReplyLength `toml:"length" json:"length"`

	// ConfidenceThreshold is the minimum classifier confidence (0..1).
	// Zero disables the check. Leads without a reported confidence pass.
	ConfidenceThreshold float64 `toml:"confidence_threshold" json:"confidence_threshold"`

	// BusinessHoursOnly restricts sending to BusinessHours.
	BusinessHoursOnly bool `toml:"business_hours_only" json:"business_hours_only"`

	// BusinessHours is the sending window when BusinessHoursOnly is set.
	BusinessHours BusinessHours `toml:"business_hours" json:"business_hours"`

	// MaxDailyReplies caps automatic replies per local day. Zero is unlimited.
	MaxDailyReplies int `toml:"max_daily_replies" json:"max_daily_replies"`
}

// DefaultAutoReplySettings returns the settings used when a tenant has none.
// Auto-reply is off until the tenant opts in.
func DefaultAutoReplySettings() AutoReplySettings {
	return AutoReplySettings{
		Enabled:             false,
		Tone:                ToneProfessional,
		Length:              LengthMedium,
		ConfidenceThreshold: 0.7,
		BusinessHoursOnly:   false,
		BusinessHours:       BusinessHours{StartHour: 9, EndHour: 17},
		MaxDailyReplies:     50,
	}
}

// Validate checks field ranges.
func (s AutoReplySettings) Validate() error {
	switch s.Tone {
	case ToneProfessional, ToneFriendly, ToneFormal, ToneCasual:
	default:
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidInput, s.Tone)
	}
	switch s.Length {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return fmt.Errorf("%w: unknown length %q", ErrInvalidInput, s.Length)
	}
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold must be within 0..1", ErrInvalidInput)
	}
	if s.BusinessHoursOnly {
		bh := s.BusinessHours
		if bh.StartHour < 0 || bh.EndHour > 24 || bh.StartHour >= bh.EndHour {
			return fmt.Errorf("%w: business hours %d-%d", ErrInvalidInput, bh.StartHour, bh.EndHour)
		}
	}
	if s.MaxDailyReplies < 0 {
		return fmt.Errorf("%w: max daily replies must not be negative", ErrInvalidInput)
	}
	return nil
}

// Admits applies the confidence and business-hours gates to a lead.
// now must already be in the tenant's time zone. A rejected lead is left for
// manual reply; rejection is not an error.
func (s AutoReplySettings) Admits(lead Lead, now time.Time) bool {
	if s.ConfidenceThreshold > 0 && lead.Confidence != nil && *lead.Confidence < s.ConfidenceThreshold {
		return false
	}
	if s.BusinessHoursOnly && !s.BusinessHours.Contains(now) {
		return false
	}
	return true
}

// RemainingToday returns how many more replies may be sent today given
// sentToday. Returns -1 when unlimited.
func (s AutoReplySettings) RemainingToday(sentToday int) int {
	if s.MaxDailyReplies <= 0 {
		return -1
	}
	remaining := s.MaxDailyReplies - sentToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// StartOfDay returns local midnight for t.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
