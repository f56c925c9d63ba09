package storage

import (
	"context"
	"fmt"

	"github.com/parishops/sla-monitor/internal/model"
)

// AppendAlert writes one audit trail entry. Records are append-only; there
// is no update or delete path.
func (s *Store) AppendAlert(ctx context.Context, record *model.AlertRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sla_alerts (id, category, item_id, severity, reference_no, subject_name, hours_pending, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Category,
		record.ItemID,
		record.Severity,
		record.ReferenceLabel,
		record.SubjectName,
		record.HoursPending,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append alert record: %w", err)
	}
	return nil
}

// RecentAlerts returns the newest audit entries, most recent first
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]model.AlertRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []model.AlertRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT id, category, item_id, severity, reference_no, subject_name, hours_pending, created_at
		FROM sla_alerts
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert records: %w", err)
	}

	return records, nil
}
