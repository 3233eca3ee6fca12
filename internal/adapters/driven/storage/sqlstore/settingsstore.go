package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.AutoReplySettingsStore = (*settingsStore)(nil)

type settingsStore struct {
	store *Store
}

type settingsRow struct {
	Enabled             int     `db:"enabled"`
	Tone                string  `db:"tone"`
	ReplyLength         string  `db:"reply_length"`
	ConfidenceThreshold float64 `db:"confidence_threshold"`
	BusinessHoursOnly   int     `db:"business_hours_only"`
	BusinessStartHour   int     `db:"business_start_hour"`
	BusinessEndHour     int     `db:"business_end_hour"`
	MaxDailyReplies     int     `db:"max_daily_replies"`
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *settingsStore) Get(ctx context.Context, tenantID string) (domain.AutoReplySettings, error) {
	var row settingsRow
	err := s.store.db.GetContext(ctx, &row, s.store.q(`
		SELECT enabled, tone, reply_length, confidence_threshold, business_hours_only,
		       business_start_hour, business_end_hour, max_daily_replies
		FROM auto_reply_settings WHERE tenant_id = ?
	`), tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultAutoReplySettings(), nil
	}
	if err != nil {
		return domain.AutoReplySettings{}, fmt.Errorf("failed to get settings for %s: %w", tenantID, err)
	}
	return domain.AutoReplySettings{
		Enabled:             row.Enabled == 1,
		Tone:                domain.Tone(row.Tone),
		Length:              domain.ReplyLength(row.ReplyLength),
		ConfidenceThreshold: row.ConfidenceThreshold,
		BusinessHoursOnly:   row.BusinessHoursOnly == 1,
		BusinessHours: domain.BusinessHours{
			StartHour: row.BusinessStartHour,
			EndHour:   row.BusinessEndHour,
		},
		MaxDailyReplies: row.MaxDailyReplies,
	}, nil
}

func (s *settingsStore) Save(ctx context.Context, tenantID string, settings domain.AutoReplySettings) error {
	_, err := s.store.db.ExecContext(ctx, s.store.q(`
		INSERT INTO auto_reply_settings (
			tenant_id, enabled, tone, reply_length, confidence_threshold,
			business_hours_only, business_start_hour, business_end_hour, max_daily_replies
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			enabled = excluded.enabled,
			tone = excluded.tone,
			reply_length = excluded.reply_length,
			confidence_threshold = excluded.confidence_threshold,
			business_hours_only = excluded.business_hours_only,
			business_start_hour = excluded.business_start_hour,
			business_end_hour = excluded.business_end_hour,
			max_daily_replies = excluded.max_daily_replies
	`),
		tenantID,
		boolToInt(settings.Enabled),
		string(settings.Tone),
		string(settings.Length),
		settings.ConfidenceThreshold,
		boolToInt(settings.BusinessHoursOnly),
		settings.BusinessHours.StartHour,
		settings.BusinessHours.EndHour,
		settings.MaxDailyReplies,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", tenantID, err)
	}
	return nil
}
