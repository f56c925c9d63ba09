package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

type fakeChannel struct {
	name string
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Notify(ctx context.Context, recipient model.Staff, msg Message) error {
	if err := c.fail[recipient.Email]; err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, recipient.Email)
	return nil
}

type fakeDirectory struct {
	staff []model.Staff
	err   error
}

func (d *fakeDirectory) ListAlertRecipients(ctx context.Context) ([]model.Staff, error) {
	return d.staff, d.err
}

type fakeAudit struct {
	mu      sync.Mutex
	records []*model.AlertRecord
	err     error
}

func (a *fakeAudit) AppendAlert(ctx context.Context, record *model.AlertRecord) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

type fakeMarker struct {
	marked []string
	err    error
}

func (m *fakeMarker) MarkAlerted(ctx context.Context, item *model.WorkItem) error {
	if m.err != nil {
		return m.err
	}
	m.marked = append(m.marked, item.ID)
	item.AlertSent = true
	return nil
}

func overdueDocument() *model.WorkItem {
	return &model.WorkItem{
		ID:             "doc-1",
		Category:       model.CategoryDocument,
		ReferenceLabel: "DOC-2025-0117",
		ItemLabel:      "Baptismal Certificate",
		SubjectName:    "Jose Rizal",
		CreatedAt:      time.Now().Add(-40 * time.Hour),
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	channel := &fakeChannel{name: "email"}
	directory := &fakeDirectory{staff: []model.Staff{
		{Name: "Admin", Email: "admin@parish.example", Role: model.RoleAdmin},
		{Name: "Operator", Email: "ops@parish.example", Role: model.RoleOperator},
	}}
	audit := &fakeAudit{}
	marker := &fakeMarker{}

	d := NewDispatcher([]Channel{channel}, directory, audit, marker, nil, zap.NewNop())
	item := overdueDocument()

	err := d.Dispatch(context.Background(), item, model.SeverityWarning)
	require.NoError(t, err)

	// One notification per recipient.
	assert.ElementsMatch(t, []string{"admin@parish.example", "ops@parish.example"}, channel.sent)

	// One audit record with the dispatched severity.
	require.Len(t, audit.records, 1)
	record := audit.records[0]
	assert.Equal(t, model.CategoryDocument, record.Category)
	assert.Equal(t, "doc-1", record.ItemID)
	assert.Equal(t, model.SeverityWarning, record.Severity)
	assert.Equal(t, "DOC-2025-0117", record.ReferenceLabel)
	assert.Equal(t, 40, record.HoursPending)
	assert.NotEmpty(t, record.ID)

	// Item marked alerted.
	assert.Equal(t, []string{"doc-1"}, marker.marked)
	assert.True(t, item.AlertSent)
}

func TestDispatcher_PartialNotificationFailure(t *testing.T) {
	channel := &fakeChannel{
		name: "email",
		fail: map[string]error{"admin@parish.example": errors.New("mailbox full")},
	}
	directory := &fakeDirectory{staff: []model.Staff{
		{Email: "admin@parish.example", Role: model.RoleAdmin},
		{Email: "ops@parish.example", Role: model.RoleOperator},
	}}
	audit := &fakeAudit{}
	marker := &fakeMarker{}

	d := NewDispatcher([]Channel{channel}, directory, audit, marker, nil, zap.NewNop())

	// A failed send never blocks the other recipients, the audit record,
	// or the alerted mark.
	err := d.Dispatch(context.Background(), overdueDocument(), model.SeverityCritical)
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@parish.example"}, channel.sent)
	assert.Len(t, audit.records, 1)
	assert.Len(t, marker.marked, 1)
}

func TestDispatcher_DirectoryFailureStillAudits(t *testing.T) {
	directory := &fakeDirectory{err: errors.New("staff table unreachable")}
	audit := &fakeAudit{}
	marker := &fakeMarker{}

	d := NewDispatcher(nil, directory, audit, marker, nil, zap.NewNop())

	err := d.Dispatch(context.Background(), overdueDocument(), model.SeverityWarning)
	require.NoError(t, err)
	assert.Len(t, audit.records, 1)
	assert.Len(t, marker.marked, 1)
}

func TestDispatcher_AuditFailureSkipsMark(t *testing.T) {
	audit := &fakeAudit{err: errors.New("disk full")}
	marker := &fakeMarker{}

	d := NewDispatcher(nil, &fakeDirectory{}, audit, marker, nil, zap.NewNop())

	// Without the audit record the item must stay un-alerted so the next
	// cycle retries it.
	err := d.Dispatch(context.Background(), overdueDocument(), model.SeverityWarning)
	require.Error(t, err)
	assert.Empty(t, marker.marked)
}

func TestDispatcher_MarkFailurePropagates(t *testing.T) {
	audit := &fakeAudit{}
	marker := &fakeMarker{err: errors.New("item deleted")}

	d := NewDispatcher(nil, &fakeDirectory{}, audit, marker, nil, zap.NewNop())

	err := d.Dispatch(context.Background(), overdueDocument(), model.SeverityWarning)
	require.Error(t, err)
	assert.Len(t, audit.records, 1)
}

func TestCompose(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	item := &model.WorkItem{
		ID:             "pay-1",
		Category:       model.CategoryPayment,
		ReferenceLabel: "PAY-2025-0042",
		ItemLabel:      "gcash",
		SubjectName:    "Maria Santos",
		CreatedAt:      now.Add(-30 * time.Hour),
	}

	msg := Compose(item, model.SeverityCritical, now)

	assert.Equal(t, "[SLA CRITICAL] Payment PAY-2025-0042 pending for 30 hours", msg.Subject)
	assert.Contains(t, msg.Body, "PAY-2025-0042")
	assert.Contains(t, msg.Body, "Maria Santos")
	assert.Contains(t, msg.Body, "30 hours")
	assert.Equal(t, model.CategoryPayment, msg.Category)
	assert.Equal(t, model.SeverityCritical, msg.Severity)
}

func TestCompose_SubjectPerSeverity(t *testing.T) {
	now := time.Now()
	for _, severity := range []model.Severity{model.SeverityWarning, model.SeverityCritical} {
		item := overdueDocument()
		msg := Compose(item, severity, now)
		assert.Contains(t, msg.Subject, fmt.Sprintf("[SLA %s]", map[model.Severity]string{
			model.SeverityWarning:  "WARNING",
			model.SeverityCritical: "CRITICAL",
		}[severity]))
	}
}
