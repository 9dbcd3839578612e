package domain

import "time"

// CodeIssuedEvent announces a persisted verification code so a downstream
// mailer can deliver it. Delivery failure never invalidates the code; the
// stored record is the source of truth.
type CodeIssuedEvent struct {
	EventID     string
	Email       string
	MaskedEmail string
	Purpose     VerificationPurpose
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Metadata    map[string]any
}

// UserRegisteredEvent records creation of a new identity and profile.
type UserRegisteredEvent struct {
	EventID      string
	UID          string
	Email        string
	DisplayName  string
	AuthProvider AuthProvider
	RegisteredAt time.Time
	Metadata     map[string]any
}

// LoginEvent records the outcome of a login attempt for audit consumers.
type LoginEvent struct {
	EventID    string
	UID        string
	Email      string
	Method     string
	Succeeded  bool
	FailReason string
	ClientIP   string
	At         time.Time
	Metadata   map[string]any
}

// PasswordChangedEvent records a completed password rotation.
type PasswordChangedEvent struct {
	EventID   string
	UID       string
	Email     string
	ChangedAt time.Time
	Method    string
	Metadata  map[string]any
}

// SessionEndedEvent records an explicit logout or invalidation.
type SessionEndedEvent struct {
	EventID string
	UID     string
	EndedAt time.Time
	Reason  string
}
