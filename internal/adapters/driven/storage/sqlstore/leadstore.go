package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.LeadStore = (*leadStore)(nil)

type leadStore struct {
	store *Store
}

type leadRow struct {
	ID             string          `db:"id"`
	TenantID       string          `db:"tenant_id"`
	SenderAddress  string          `db:"sender_address"`
	Subject        string          `db:"subject"`
	Body           string          `db:"body"`
	PriorityStatus string          `db:"priority_status"`
	Confidence     sql.NullFloat64 `db:"confidence"`
	Answered       int             `db:"answered"`
	AutoReplied    int             `db:"auto_replied"`
	ReceivedMs     int64           `db:"received_ms"`
	RespondedMs    sql.NullInt64   `db:"responded_ms"`
}

func (r leadRow) toDomain() domain.Lead {
	lead := domain.Lead{
		ID:             r.ID,
		TenantID:       r.TenantID,
		SenderAddress:  r.SenderAddress,
		Subject:        r.Subject,
		Body:           r.Body,
		PriorityStatus: domain.PriorityStatus(r.PriorityStatus),
		Answered:       r.Answered == 1,
		AutoReplied:    r.AutoReplied == 1,
		RespondedAt:    fromMillis(r.RespondedMs),
	}
	if r.Confidence.Valid {
		c := r.Confidence.Float64
		lead.Confidence = &c
	}
	if r.ReceivedMs != 0 {
		lead.ReceivedAt = time.UnixMilli(r.ReceivedMs).UTC()
	}
	return lead
}

const leadColumns = `id, tenant_id, sender_address, subject, body, priority_status,
	confidence, answered, auto_replied, received_ms, responded_ms`

// RecordIngested inserts leads in one transaction. Leads are keyed by
// tenant and ID; existing rows are kept as stored so a re-sync never clears
// reply flags.
func (s *leadStore) RecordIngested(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	for _, lead := range leads {
		if lead.ID == "" || lead.TenantID == "" {
			return domain.ErrInvalidInput
		}
	}

	tx, err := s.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin lead transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PreparexContext(ctx, s.store.q(`
		INSERT INTO leads (`+leadColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare lead insert: %w", err)
	}
	defer stmt.Close()

	for _, lead := range leads {
		priority := lead.PriorityStatus
		if priority == "" {
			priority = domain.PriorityUnclassified
		}
		var received int64
		if !lead.ReceivedAt.IsZero() {
			received = lead.ReceivedAt.UnixMilli()
		}
		if _, err := stmt.ExecContext(ctx,
			lead.ID,
			lead.TenantID,
			lead.SenderAddress,
			lead.Subject,
			lead.Body,
			string(priority),
			nullFloat(lead.Confidence),
			boolToInt(lead.Answered),
			boolToInt(lead.AutoReplied),
			received,
			toMillis(lead.RespondedAt),
		); err != nil {
			return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
		}
	}
	return tx.Commit()
}

func (s *leadStore) Get(ctx context.Context, tenantID, leadID string) (*domain.Lead, error) {
	var row leadRow
	err := s.store.db.GetContext(ctx, &row, s.store.q(`
		SELECT `+leadColumns+` FROM leads WHERE id = ? AND tenant_id = ?
	`), leadID, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead %s: %w", leadID, err)
	}
	lead := row.toDomain()
	return &lead, nil
}

// List returns a tenant's leads, newest first. A non-positive limit
// returns all leads.
func (s *leadStore) List(ctx context.Context, tenantID string, limit int) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = ? ORDER BY received_ms DESC, id`
	args := []any{tenantID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []leadRow
	if err := s.store.db.SelectContext(ctx, &rows, s.store.q(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list leads for %s: %w", tenantID, err)
	}
	leads := make([]domain.Lead, 0, len(rows))
	for _, r := range rows {
		leads = append(leads, r.toDomain())
	}
	return leads, nil
}

// MarkAutoReplied is guarded by auto_replied = 0 so two writers cannot
// both succeed.
func (s *leadStore) MarkAutoReplied(ctx context.Context, tenantID, leadID string, respondedAt time.Time) error {
	res, err := s.store.db.ExecContext(ctx, s.store.q(`
		UPDATE leads SET answered = 1, auto_replied = 1, responded_ms = ?
		WHERE id = ? AND tenant_id = ? AND auto_replied = 0
	`), respondedAt.UnixMilli(), leadID, tenantID)
	if err != nil {
		return fmt.Errorf("failed to mark lead %s auto-replied: %w", leadID, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, tenantID, leadID); err != nil {
		return err
	}
	return domain.ErrAlreadyReplied
}

func (s *leadStore) CountAutoRepliedSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var n int
	err := s.store.db.GetContext(ctx, &n, s.store.q(`
		SELECT COUNT(*) FROM leads
		WHERE tenant_id = ? AND auto_replied = 1 AND responded_ms >= ?
	`), tenantID, since.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to count replies for %s: %w", tenantID, err)
	}
	return n, nil
}
