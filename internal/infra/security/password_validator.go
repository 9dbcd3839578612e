package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// DefaultPasswordValidator covers the registration policy: minimum length
// plus a medium criterion tier.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireMinimumTierRule(StrengthMedium),
	)
}

// StrictPasswordValidator additionally enforces a minimum zxcvbn score so
// trivially guessable passwords are rejected even when they tick the
// character-class boxes. Applied when rotating an existing password.
func StrictPasswordValidator(userInputs ...string) *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireMinimumTierRule(StrengthMedium),
		RequirePasswordStrengthRule(2, userInputs...),
	)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireMinimumTierRule rejects passwords whose criterion score falls below
// the supplied tier. Feedback from the evaluator becomes the error message.
func RequireMinimumTierRule(minTier StrengthTier) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		result := EvaluateStrength(password)
		if tierRank(result.Tier) >= tierRank(minTier) {
			return nil
		}
		message := "password is too weak"
		if len(result.Feedback) > 0 {
			message = result.Feedback[0]
		}
		return &PasswordValidationError{Code: "weak_password", Message: message}
	})
}

// RequirePasswordStrengthRule enforces a minimum zxcvbn score to reject weak passwords.
func RequirePasswordStrengthRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}

		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}

		return &PasswordValidationError{
			Code:    "guessable_password",
			Message: "password is too guessable; choose a more complex value",
		}
	})
}

func tierRank(tier StrengthTier) int {
	switch tier {
	case StrengthStrong:
		return 2
	case StrengthMedium:
		return 1
	default:
		return 0
	}
}
