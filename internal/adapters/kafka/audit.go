package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/omerg864/SecuRent-sub001/internal/models"
)

// auditEvent is the record emitted per completed fan-out. Analytics only;
// delivery never depends on the broker being reachable.
type auditEvent struct {
	NotificationID string    `json:"notificationId"`
	Title          string    `json:"title"`
	Kind           string    `json:"kind"`
	TargetRole     string    `json:"targetRole"`
	TargetID       string    `json:"targetId"`
	Attempts       int       `json:"attempts"`
	DeliveredAt    time.Time `json:"deliveredAt"`
}

type AuditPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewAuditPublisher(producer sarama.SyncProducer, topic string) *AuditPublisher {
	return &AuditPublisher{
		producer: producer,
		topic:    topic,
	}
}

// NotificationDelivered emits one audit event. Errors are logged and
// swallowed so a broker outage never affects the push path.
func (p *AuditPublisher) NotificationDelivered(ctx context.Context, n *models.Notification, role models.Role, identity string, attempts int) {
	event := auditEvent{
		NotificationID: n.ID,
		Title:          n.Title,
		Kind:           n.Type,
		TargetRole:     role.String(),
		TargetID:       identity,
		Attempts:       attempts,
		DeliveredAt:    time.Now().UTC(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal audit event", "notificationID", n.ID, "error", err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(identity),
		Value: sarama.ByteEncoder(value),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		slog.Error("Failed to publish audit event", "notificationID", n.ID, "error", err)
	}
}

func (p *AuditPublisher) Close() error {
	return p.producer.Close()
}
