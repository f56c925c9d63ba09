package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/parishops/sla-monitor/internal/model"
)

// itemTable maps a category onto its table and the category-specific
// columns that fill the generic work item fields
type itemTable struct {
	name       string
	subjectCol string
	labelCol   string
}

var itemTables = map[model.Category]itemTable{
	model.CategoryDocument: {name: "document_requests", subjectCol: "requester_name", labelCol: "document_type"},
	model.CategoryBooking:  {name: "bookings", subjectCol: "client_name", labelCol: "event_type"},
	model.CategoryPayment:  {name: "payments", subjectCol: "payer_name", labelCol: "method"},
}

// ListPending returns the pending items for a category, oldest first
func (s *Store) ListPending(ctx context.Context, category model.Category) ([]model.WorkItem, error) {
	table, ok := itemTables[category]
	if !ok {
		return nil, fmt.Errorf("no table for category %s", category)
	}

	query := fmt.Sprintf(`
		SELECT id, reference_no, %s AS subject_name, %s AS item_label,
		       status, created_at, alert_sent, alert_sent_at
		FROM %s
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC`,
		table.subjectCol, table.labelCol, table.name)

	var items []model.WorkItem
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list pending %s items: %w", category, err)
	}

	for i := range items {
		items[i].Category = category
	}

	return items, nil
}

// MarkAlerted flags the item as alerted. Re-marking an already-alerted item
// rewrites the same state and is not an error; a missing item is.
func (s *Store) MarkAlerted(ctx context.Context, category model.Category, id string, at time.Time) error {
	table, ok := itemTables[category]
	if !ok {
		return fmt.Errorf("no table for category %s", category)
	}

	query := fmt.Sprintf("UPDATE %s SET alert_sent = 1, alert_sent_at = ? WHERE id = ?", table.name)
	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to mark %s/%s alerted: %w", category, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work item %s/%s not found", category, id)
	}

	return nil
}

// CreateWorkItem inserts an item into its category table. Item creation
// normally belongs to the front-office subsystems; this exists for seeding
// and tests.
func (s *Store) CreateWorkItem(ctx context.Context, item *model.WorkItem) error {
	table, ok := itemTables[item.Category]
	if !ok {
		return fmt.Errorf("no table for category %s", item.Category)
	}

	status := item.Status
	if status == "" {
		status = "pending"
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, reference_no, %s, %s, status, created_at, alert_sent, alert_sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		table.name, table.subjectCol, table.labelCol)

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.ReferenceLabel,
		item.SubjectName,
		item.ItemLabel,
		status,
		item.CreatedAt,
		item.AlertSent,
		item.AlertSentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create %s item: %w", item.Category, err)
	}

	return nil
}

// UpdateWorkItemStatus moves an item out of (or back into) the pending
// scope. Clearing alert_sent is an explicit administrative action, never
// done by the scan path.
func (s *Store) UpdateWorkItemStatus(ctx context.Context, category model.Category, id, status string) error {
	table, ok := itemTables[category]
	if !ok {
		return fmt.Errorf("no table for category %s", category)
	}

	query := fmt.Sprintf("UPDATE %s SET status = ? WHERE id = ?", table.name)
	if _, err := s.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update %s/%s status: %w", category, id, err)
	}

	return nil
}

// ResetAlertFlag clears alert_sent on one item, making it eligible for
// alerting again. Administrative use only.
func (s *Store) ResetAlertFlag(ctx context.Context, category model.Category, id string) error {
	table, ok := itemTables[category]
	if !ok {
		return fmt.Errorf("no table for category %s", category)
	}

	query := fmt.Sprintf("UPDATE %s SET alert_sent = 0, alert_sent_at = NULL WHERE id = ?", table.name)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset alert flag on %s/%s: %w", category, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work item %s/%s not found", category, id)
	}

	return nil
}
