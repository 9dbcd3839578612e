package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	UserID    string           `json:"user_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, userID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		UserID:    userID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishCodeIssued publishes crealik.auth.code.issued events consumed by the
// mailer. The raw code is deliberately absent from the payload; the mailer
// reads it from the verification store.
func (p *EventPublisher) PublishCodeIssued(ctx context.Context, event domain.CodeIssuedEvent) error {
	payload := struct {
		Email       string         `json:"email"`
		MaskedEmail string         `json:"masked_email"`
		Purpose     string         `json:"purpose"`
		IssuedAt    time.Time      `json:"issued_at"`
		ExpiresAt   time.Time      `json:"expires_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		Email:       event.Email,
		MaskedEmail: event.MaskedEmail,
		Purpose:     string(event.Purpose),
		IssuedAt:    event.IssuedAt.UTC(),
		ExpiresAt:   event.ExpiresAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "crealik.auth.code.issued", "", event.IssuedAt, payload)
}

// PublishUserRegistered publishes crealik.auth.user.registered events.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UID          string         `json:"uid"`
		Email        string         `json:"email"`
		DisplayName  string         `json:"display_name"`
		AuthProvider string         `json:"auth_provider"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		UID:          event.UID,
		Email:        event.Email,
		DisplayName:  event.DisplayName,
		AuthProvider: string(event.AuthProvider),
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "crealik.auth.user.registered", event.UID, event.RegisteredAt, payload)
}

// PublishLogin publishes crealik.auth.login events.
func (p *EventPublisher) PublishLogin(ctx context.Context, event domain.LoginEvent) error {
	payload := struct {
		UID        string         `json:"uid,omitempty"`
		Email      string         `json:"email"`
		Method     string         `json:"method"`
		Succeeded  bool           `json:"succeeded"`
		FailReason string         `json:"fail_reason,omitempty"`
		ClientIP   string         `json:"client_ip,omitempty"`
		At         time.Time      `json:"at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		UID:        event.UID,
		Email:      event.Email,
		Method:     event.Method,
		Succeeded:  event.Succeeded,
		FailReason: event.FailReason,
		ClientIP:   event.ClientIP,
		At:         event.At.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "crealik.auth.login", event.UID, event.At, payload)
}

// PublishPasswordChanged publishes crealik.auth.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		UID       string         `json:"uid"`
		Email     string         `json:"email"`
		ChangedAt time.Time      `json:"changed_at"`
		Method    string         `json:"method"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UID:       event.UID,
		Email:     event.Email,
		ChangedAt: event.ChangedAt.UTC(),
		Method:    event.Method,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "crealik.auth.password.changed", event.UID, event.ChangedAt, payload)
}

// PublishSessionEnded publishes crealik.auth.session.ended events.
func (p *EventPublisher) PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error {
	payload := struct {
		UID     string    `json:"uid,omitempty"`
		EndedAt time.Time `json:"ended_at"`
		Reason  string    `json:"reason"`
	}{
		UID:     event.UID,
		EndedAt: event.EndedAt.UTC(),
		Reason:  event.Reason,
	}

	return p.publish(ctx, event.EventID, "crealik.auth.session.ended", event.UID, event.EndedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
