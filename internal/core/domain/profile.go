package domain

import (
	"strings"
	"time"
)

// AuthProvider names the identity-provider path an account was created through.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
)

// Profile mirrors the persisted user profile record. The identity itself is
// owned by the external provider; UID is the provider-issued opaque identifier.
type Profile struct {
	UID             string
	Email           string
	DisplayName     string
	FirstName       string
	LastName        string
	PhotoURL        string
	PhoneNumber     string
	Address         string
	Location        string
	ProfileComplete bool
	AuthProvider    AuthProvider
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProfile builds the initial onboarding record for a freshly created
// identity. ProfileComplete stays false until onboarding collects the
// remaining fields.
func NewProfile(uid, email, displayName string, provider AuthProvider, now time.Time) Profile {
	first, last := SplitDisplayName(displayName)
	return Profile{
		UID:             uid,
		Email:           email,
		DisplayName:     displayName,
		FirstName:       first,
		LastName:        last,
		ProfileComplete: false,
		AuthProvider:    provider,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// SplitDisplayName splits a full display name into first and last name on the
// first space, best effort: "Jane Doe Smith" -> ("Jane", "Doe Smith").
func SplitDisplayName(name string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}
