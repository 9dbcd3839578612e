package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers; verification codes surface in the
// log the way the original prototype printed them to the console.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, uid string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("uid", uid),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishCodeIssued logs crealik.auth.code.issued events.
func (p *StubPublisher) PublishCodeIssued(_ context.Context, event domain.CodeIssuedEvent) error {
	payload := map[string]any{
		"masked_email": event.MaskedEmail,
		"purpose":      event.Purpose,
		"issued_at":    event.IssuedAt,
		"expires_at":   event.ExpiresAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("crealik.auth.code.issued", "", event.IssuedAt, payload)
	return nil
}

// PublishUserRegistered logs crealik.auth.user.registered events.
func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	payload := map[string]any{
		"uid":           event.UID,
		"email":         event.Email,
		"display_name":  event.DisplayName,
		"auth_provider": event.AuthProvider,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("crealik.auth.user.registered", event.UID, event.RegisteredAt, payload)
	return nil
}

// PublishLogin logs crealik.auth.login events.
func (p *StubPublisher) PublishLogin(_ context.Context, event domain.LoginEvent) error {
	payload := map[string]any{
		"uid":         event.UID,
		"email":       event.Email,
		"method":      event.Method,
		"succeeded":   event.Succeeded,
		"fail_reason": event.FailReason,
		"client_ip":   event.ClientIP,
		"metadata":    event.Metadata,
	}
	p.logEvent("crealik.auth.login", event.UID, event.At, payload)
	return nil
}

// PublishPasswordChanged logs crealik.auth.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"uid":        event.UID,
		"email":      event.Email,
		"changed_at": event.ChangedAt,
		"method":     event.Method,
		"metadata":   event.Metadata,
	}
	p.logEvent("crealik.auth.password.changed", event.UID, event.ChangedAt, payload)
	return nil
}

// PublishSessionEnded logs crealik.auth.session.ended events.
func (p *StubPublisher) PublishSessionEnded(_ context.Context, event domain.SessionEndedEvent) error {
	payload := map[string]any{
		"uid":      event.UID,
		"ended_at": event.EndedAt,
		"reason":   event.Reason,
	}
	p.logEvent("crealik.auth.session.ended", event.UID, event.EndedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
