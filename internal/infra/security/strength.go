package security

import "unicode"

// StrengthTier buckets a strength score for display.
type StrengthTier string

const (
	StrengthWeak   StrengthTier = "weak"
	StrengthMedium StrengthTier = "medium"
	StrengthStrong StrengthTier = "strong"
)

// StrengthResult is the outcome of evaluating a candidate password. Feedback
// holds one remediation hint per unmet criterion, in a fixed order.
type StrengthResult struct {
	Score    int          `json:"score"`
	Tier     StrengthTier `json:"strength"`
	Feedback []string     `json:"feedback"`
}

// EvaluateStrength scores a password by awarding one point each for length of
// at least 8, an uppercase letter, a lowercase letter, a digit, and a
// non-alphanumeric character. Empty input is allowed and scores zero.
func EvaluateStrength(password string) StrengthResult {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	score := 0
	feedback := make([]string, 0, 5)

	if len(password) >= 8 {
		score++
	} else {
		feedback = append(feedback, "Password should be at least 8 characters long")
	}
	if hasUpper {
		score++
	} else {
		feedback = append(feedback, "Add uppercase letters")
	}
	if hasLower {
		score++
	} else {
		feedback = append(feedback, "Add lowercase letters")
	}
	if hasDigit {
		score++
	} else {
		feedback = append(feedback, "Add numbers")
	}
	if hasSpecial {
		score++
	} else {
		feedback = append(feedback, "Add special characters")
	}

	tier := StrengthWeak
	switch {
	case score >= 4:
		tier = StrengthStrong
	case score >= 3:
		tier = StrengthMedium
	}

	return StrengthResult{Score: score, Tier: tier, Feedback: feedback}
}
