package model

import (
	"time"
)

// Category identifies which parish workflow a work item belongs to
type Category string

const (
	CategoryDocument Category = "document"
	CategoryBooking  Category = "booking"
	CategoryPayment  Category = "payment"
)

// Categories lists all tracked categories in canonical order. The order is
// load-bearing: snapshot tie-breaking and scan cycles both follow it.
var Categories = []Category{CategoryDocument, CategoryBooking, CategoryPayment}

// Valid reports whether the category is one of the tracked categories
func (c Category) Valid() bool {
	switch c {
	case CategoryDocument, CategoryBooking, CategoryPayment:
		return true
	}
	return false
}

// Severity represents the SLA state of a work item, derived from its age.
// It is computed on every read and never stored on the item itself.
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: ok < warning < critical
func (s Severity) Rank() int {
	switch s {
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	}
	return 0
}

// WorkItem is a pending unit of parish office work awaiting staff action.
// The item's lifecycle belongs to the document/booking/payment subsystems;
// the SLA engine owns only AlertSent and AlertSentAt.
type WorkItem struct {
	ID             string     `json:"id" db:"id"`
	Category       Category   `json:"category" db:"category"`
	ReferenceLabel string     `json:"reference_label" db:"reference_no"`
	ItemLabel      string     `json:"item_label" db:"item_label"`
	SubjectName    string     `json:"subject_name" db:"subject_name"`
	Status         string     `json:"status" db:"status"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	AlertSent      bool       `json:"alert_sent" db:"alert_sent"`
	AlertSentAt    *time.Time `json:"alert_sent_at,omitempty" db:"alert_sent_at"`
}

// HoursPending returns the item's age in whole hours at the given instant,
// floor semantics. Never negative.
func (w *WorkItem) HoursPending(now time.Time) int {
	h := int(now.Sub(w.CreatedAt).Hours())
	if h < 0 {
		return 0
	}
	return h
}

// ThresholdConfig holds the SLA parameters for one category
type ThresholdConfig struct {
	WarningHours  int `json:"warning_hours" db:"warning_hours"`
	CriticalHours int `json:"critical_hours" db:"critical_hours"`
}

// DefaultThresholds returns the built-in SLA parameters used when no
// configuration has been persisted for the category.
func DefaultThresholds(category Category) ThresholdConfig {
	if category == CategoryDocument {
		return ThresholdConfig{WarningHours: 36, CriticalHours: 48}
	}
	return ThresholdConfig{WarningHours: 18, CriticalHours: 24}
}

// AlertRecord is one append-only audit trail entry, created when an alert
// is dispatched. Never mutated or deleted.
type AlertRecord struct {
	ID             string    `json:"id" db:"id"`
	Category       Category  `json:"category" db:"category"`
	ItemID         string    `json:"item_id" db:"item_id"`
	Severity       Severity  `json:"severity" db:"severity"`
	ReferenceLabel string    `json:"reference_label" db:"reference_no"`
	SubjectName    string    `json:"subject_name" db:"subject_name"`
	HoursPending   int       `json:"hours_pending" db:"hours_pending"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// StaffRole represents a parish staff member's role
type StaffRole string

const (
	RoleAdmin    StaffRole = "admin"
	RoleOperator StaffRole = "operator"
	RoleClerk    StaffRole = "clerk"
)

// Staff is a parish office staff member. Admins and operators receive
// SLA alert notifications.
type Staff struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      StaffRole `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
