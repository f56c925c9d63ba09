package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
)

// StreamName is the JetStream stream carrying dispatched SLA alerts
const StreamName = "SLA_ALERTS"

// subjectPrefix prefixes per-category alert subjects, e.g. sla.alert.document
const subjectPrefix = "sla.alert."

// StreamPublisher feeds dispatched alerts to JetStream so the front-office
// can surface them as in-app notifications
type StreamPublisher struct {
	logger *zap.Logger
	js     nats.JetStreamContext
}

// NewStreamPublisher creates the publisher and ensures the alert stream
// exists
func NewStreamPublisher(js nats.JetStreamContext, logger *zap.Logger) (*StreamPublisher, error) {
	_, err := js.StreamInfo(StreamName)
	if err != nil {
		if err != nats.ErrStreamNotFound {
			return nil, fmt.Errorf("failed to get stream info: %w", err)
		}
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     StreamName,
			Subjects: []string{subjectPrefix + "*"},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		logger.Info("Created alert stream", zap.String("name", StreamName))
	}

	return &StreamPublisher{
		logger: logger.Named("alert-stream"),
		js:     js,
	}, nil
}

// PublishAlert implements Publisher
func (p *StreamPublisher) PublishAlert(ctx context.Context, record *model.AlertRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal alert record: %w", err)
	}

	if _, err := p.js.Publish(subjectPrefix+string(record.Category), data); err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	p.logger.Debug("Published alert",
		zap.String("id", record.ID),
		zap.String("category", string(record.Category)),
		zap.String("severity", string(record.Severity)))

	return nil
}
