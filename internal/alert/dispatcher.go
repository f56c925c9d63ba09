package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// Message is one composed alert notification
type Message struct {
	Subject  string
	Body     string
	Severity model.Severity
	Category model.Category
}

// Channel delivers an alert message to a single recipient
type Channel interface {
	Name() string
	Notify(ctx context.Context, recipient model.Staff, msg Message) error
}

// Directory resolves the staff members who receive SLA alerts
type Directory interface {
	ListAlertRecipients(ctx context.Context) ([]model.Staff, error)
}

// AuditLog appends dispatched alerts to the append-only audit trail
type AuditLog interface {
	AppendAlert(ctx context.Context, record *model.AlertRecord) error
}

// Marker records that an item has been alerted so later scans skip it
type Marker interface {
	MarkAlerted(ctx context.Context, item *model.WorkItem) error
}

// Publisher feeds dispatched alerts to the in-app notification stream.
// Optional; a nil publisher disables the feed.
type Publisher interface {
	PublishAlert(ctx context.Context, record *model.AlertRecord) error
}

// Dispatcher composes and sends alert notifications for first-time
// threshold crossings. Delivery is best effort: a recipient that cannot be
// reached never blocks the others, and a dispatch counts as successful once
// the audit record is written and the item is marked alerted.
type Dispatcher struct {
	logger    *zap.Logger
	channels  []Channel
	directory Directory
	audit     AuditLog
	marker    Marker
	publisher Publisher
	now       func() time.Time
}

// NewDispatcher creates an alert dispatcher
func NewDispatcher(channels []Channel, directory Directory, audit AuditLog, marker Marker, publisher Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		logger:    logger.Named("dispatcher"),
		channels:  channels,
		directory: directory,
		audit:     audit,
		marker:    marker,
		publisher: publisher,
		now:       time.Now,
	}
}

// categoryTitles maps categories to the wording used in alert subjects
var categoryTitles = map[model.Category]string{
	model.CategoryDocument: "Document request",
	model.CategoryBooking:  "Booking",
	model.CategoryPayment:  "Payment",
}

// Compose builds the notification message for an overdue item
func Compose(item *model.WorkItem, severity model.Severity, now time.Time) Message {
	title := categoryTitles[item.Category]
	hours := item.HoursPending(now)

	subject := fmt.Sprintf("[SLA %s] %s %s pending for %d hours",
		strings.ToUpper(string(severity)), title, item.ReferenceLabel, hours)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s has been pending for %d hours.\r\n\r\n", title, item.ReferenceLabel, hours)
	fmt.Fprintf(&b, "Reference: %s\r\n", item.ReferenceLabel)
	if item.ItemLabel != "" {
		fmt.Fprintf(&b, "Item: %s\r\n", item.ItemLabel)
	}
	fmt.Fprintf(&b, "Client: %s\r\n", item.SubjectName)
	fmt.Fprintf(&b, "Received: %s\r\n", item.CreatedAt.Format("02 Jan 2006 15:04"))
	fmt.Fprintf(&b, "Severity: %s\r\n", severity)

	return Message{
		Subject:  subject,
		Body:     b.String(),
		Severity: severity,
		Category: item.Category,
	}
}

// Dispatch notifies every alert recipient, appends the audit record, and
// marks the item alerted. Notification failures are collected, not
// propagated; an error is returned only when the audit write or the
// alerted-mark fails, in which case the item is retried next cycle.
func (d *Dispatcher) Dispatch(ctx context.Context, item *model.WorkItem, severity model.Severity) error {
	now := d.now()
	msg := Compose(item, severity, now)

	recipients, err := d.directory.ListAlertRecipients(ctx)
	if err != nil {
		d.logger.Error("Failed to resolve alert recipients, skipping notifications",
			zap.String("item_id", item.ID),
			zap.Error(err))
	}

	failed := 0
	for _, recipient := range recipients {
		for _, ch := range d.channels {
			if err := ch.Notify(ctx, recipient, msg); err != nil {
				failed++
				d.logger.Warn("Notification send failed",
					zap.String("channel", ch.Name()),
					zap.String("recipient", recipient.Email),
					zap.String("item_id", item.ID),
					zap.Error(err))
			}
		}
	}

	record := &model.AlertRecord{
		ID:             uuid.New().String(),
		Category:       item.Category,
		ItemID:         item.ID,
		Severity:       severity,
		ReferenceLabel: item.ReferenceLabel,
		SubjectName:    item.SubjectName,
		HoursPending:   item.HoursPending(now),
		CreatedAt:      now,
	}

	if err := d.audit.AppendAlert(ctx, record); err != nil {
		return fmt.Errorf("failed to append alert record for %s/%s: %w", item.Category, item.ID, err)
	}

	if d.publisher != nil {
		if err := d.publisher.PublishAlert(ctx, record); err != nil {
			d.logger.Warn("Failed to publish alert to stream",
				zap.String("item_id", item.ID),
				zap.Error(err))
		}
	}

	if err := d.marker.MarkAlerted(ctx, item); err != nil {
		return err
	}

	d.logger.Info("Alert dispatched",
		zap.String("category", string(item.Category)),
		zap.String("item_id", item.ID),
		zap.String("reference", item.ReferenceLabel),
		zap.String("severity", string(severity)),
		zap.Int("recipients", len(recipients)),
		zap.Int("failed_sends", failed))

	return nil
}
