package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// ListAlertRecipients returns the staff members who receive SLA alerts:
// everyone with an admin or operator role.
func (s *Store) ListAlertRecipients(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	err := s.db.SelectContext(ctx, &staff, `
		SELECT id, name, email, role, created_at
		FROM staff
		WHERE role IN ('admin', 'operator')
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert recipients: %w", err)
	}
	return staff, nil
}

// CreateStaff inserts a staff member
func (s *Store) CreateStaff(ctx context.Context, staff *model.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.New().String()
	}
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (id, name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		staff.ID, staff.Name, staff.Email, staff.Role, staff.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

// SeedStaff creates a default admin recipient when the staff table is
// empty, so a fresh install has somewhere to send alerts.
func (s *Store) SeedStaff(ctx context.Context, adminEmail string) error {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM staff"); err != nil {
		return fmt.Errorf("failed to count staff: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &model.Staff{
		Name:  "Parish Office Admin",
		Email: adminEmail,
		Role:  model.RoleAdmin,
	}
	if err := s.CreateStaff(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Seeded default admin recipient", zap.String("email", adminEmail))
	return nil
}
