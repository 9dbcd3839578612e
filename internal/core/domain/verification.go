package domain

import "time"

// VerificationPurpose scopes a code to the flow that issued it.
type VerificationPurpose string

const (
	VerificationPurposeLogin         VerificationPurpose = "login"
	VerificationPurposePasswordReset VerificationPurpose = "password_reset"
)

// VerificationCode is a one-time numeric code issued to an email address.
// Multiple codes may exist historically for one address; expiry is logical,
// records are never deleted ahead of their TTL.
type VerificationCode struct {
	Email     string
	Code      string
	Purpose   VerificationPurpose
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the code is past its expiry at the supplied moment.
// The boundary itself counts as expired.
func (c VerificationCode) Expired(at time.Time) bool {
	return !at.Before(c.ExpiresAt)
}

// Matches reports whether the supplied value equals the stored code and the
// code is still live at the supplied moment.
func (c VerificationCode) Matches(supplied string, at time.Time) bool {
	if c.Expired(at) {
		return false
	}
	return c.Code == supplied
}
