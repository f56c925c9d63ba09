package alert

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

func TestEmailChannel_Notify(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	ch := NewEmailChannel(EmailConfig{
		Host:     "smtp.parish.example",
		Port:     587,
		Username: "alerts",
		Password: "secret",
		From:     "alerts@parish.example",
	}, zap.NewNop())
	ch.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	recipient := model.Staff{Name: "Ana", Email: "ana@parish.example", Role: model.RoleAdmin}
	msg := Compose(&model.WorkItem{
		ID:             "doc-1",
		Category:       model.CategoryDocument,
		ReferenceLabel: "DOC-2025-0117",
		ItemLabel:      "Baptismal Certificate",
		SubjectName:    "Jose Rizal",
		CreatedAt:      time.Now().Add(-40 * time.Hour),
	}, model.SeverityWarning, time.Now())

	require.NoError(t, ch.Notify(context.Background(), recipient, msg))

	assert.Equal(t, "smtp.parish.example:587", gotAddr)
	assert.Equal(t, "alerts@parish.example", gotFrom)
	assert.Equal(t, []string{"ana@parish.example"}, gotTo)
	assert.Contains(t, string(gotMsg), "To: ana@parish.example")
	assert.Contains(t, string(gotMsg), "Subject: "+msg.Subject)
	assert.Contains(t, string(gotMsg), "DOC-2025-0117")
}

func TestEmailChannel_NotifySendFailure(t *testing.T) {
	ch := NewEmailChannel(EmailConfig{Host: "smtp.parish.example", Port: 587}, zap.NewNop())
	ch.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	}

	err := ch.Notify(context.Background(), model.Staff{Email: "ana@parish.example"}, Message{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ana@parish.example")
}
