package port

import (
	"context"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus. Verification
// code delivery rides on PublishCodeIssued so issuance and delivery stay
// decoupled.
type EventPublisher interface {
	PublishCodeIssued(ctx context.Context, event domain.CodeIssuedEvent) error
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishLogin(ctx context.Context, event domain.LoginEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishSessionEnded(ctx context.Context, event domain.SessionEndedEvent) error
}
