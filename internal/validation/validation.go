package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sportlink-dev/sportlink/internal/domain"
	"github.com/sportlink-dev/sportlink/internal/errors"
)

const (
	maxEmailLength        = 254
	minPasswordLength     = 6
	maxPasswordLength     = 128
	minResetPasswordLength = 8
	maxProfileFieldLength = 255
)

// Throwaway providers we refuse outright: accounts registered with them can
// never be reached again once the inbox expires.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"tempmail.com":      true,
	"temp-mail.org":     true,
	"yopmail.com":       true,
	"trashmail.com":     true,
	"throwawaymail.com": true,
	"getnada.com":       true,
	"sharklasers.com":   true,
}

// Frequent fat-finger domains mapped to their likely intent. A hit fails
// validation with a suggestion; we never auto-correct silently.
var typoDomains = map[string]string{
	"gmail.co":    "gmail.com",
	"gmail.cm":    "gmail.com",
	"gmai.com":    "gmail.com",
	"gamil.com":   "gmail.com",
	"gmial.com":   "gmail.com",
	"hotmail.co":  "hotmail.com",
	"hotmial.com": "hotmail.com",
	"yahoo.co":    "yahoo.com",
	"yaho.com":    "yahoo.com",
	"outlok.com":  "outlook.com",
}

var commonPasswords = map[string]bool{
	"password":   true,
	"password1":  true,
	"123456":     true,
	"1234567":    true,
	"12345678":   true,
	"123456789":  true,
	"qwerty":     true,
	"qwerty123":  true,
	"abc123":     true,
	"111111":     true,
	"letmein":    true,
	"iloveyou":   true,
	"admin123":   true,
	"welcome1":   true,
	"sunshine":   true,
	"football":   true,
}

var sanitizePolicy = bluemonday.StrictPolicy()

// NormalizeEmail lowercases and trims an address. Idempotent: applying it
// twice yields the same result.
func NormalizeEmail(email string) domain.Email {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks a normalized address for format, length, disposable
// providers and likely typos.
func ValidateEmail(email domain.Email) error {
	if email == "" {
		return errors.BadRequest("Email is required", errors.CodeValidationFailed)
	}
	if len(email) > maxEmailLength {
		return errors.BadRequest(fmt.Sprintf("Email must be at most %d characters", maxEmailLength), errors.CodeValidationFailed)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.BadRequest("Email address is invalid", errors.CodeValidationFailed)
	}

	at := strings.LastIndex(email, "@")
	emailDomain := email[at+1:]
	if disposableDomains[emailDomain] {
		return errors.BadRequest("Disposable email addresses are not allowed", errors.CodeValidationFailed)
	}
	if suggestion, ok := typoDomains[emailDomain]; ok {
		return errors.BadRequest(fmt.Sprintf("Email domain looks misspelled, did you mean @%s?", suggestion), errors.CodeValidationFailed)
	}
	return nil
}

// ValidateRegistrationPassword enforces the registration policy: length
// bounds plus a common-password denylist.
func ValidateRegistrationPassword(password string) error {
	if password == "" {
		return errors.BadRequest("Password is required", errors.CodeValidationFailed)
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return errors.BadRequest(fmt.Sprintf("Password must be between %d and %d characters", minPasswordLength, maxPasswordLength), errors.CodeValidationFailed)
	}
	if commonPasswords[strings.ToLower(password)] {
		return errors.BadRequest("Password is too common, pick something less guessable", errors.CodeValidationFailed)
	}
	return nil
}

// ValidateResetPassword enforces the stricter recovery policy: minimum
// length plus mixed case and a digit.
func ValidateResetPassword(password string) error {
	if len(password) < minResetPasswordLength || len(password) > maxPasswordLength {
		return errors.BadRequest(fmt.Sprintf("Password must be between %d and %d characters", minResetPasswordLength, maxPasswordLength), errors.CodeValidationFailed)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.BadRequest("Password must contain upper and lower case letters and a digit", errors.CodeValidationFailed)
	}
	return nil
}

// SanitizeProfile cleans every free-text profile field: trims whitespace,
// caps length and strips markup.
func SanitizeProfile(p domain.Profile) domain.Profile {
	return domain.Profile{
		Location:     SanitizeText(p.Location),
		Sport:        SanitizeText(p.Sport),
		Level:        SanitizeText(p.Level),
		Phone:        SanitizeText(p.Phone),
		Availability: SanitizeText(p.Availability),
	}
}

func SanitizeText(s string) string {
	s = strings.TrimSpace(sanitizePolicy.Sanitize(s))
	if len(s) > maxProfileFieldLength {
		s = s[:maxProfileFieldLength]
	}
	return s
}
