package errors

import "net/http"

// Machine-readable codes callers can branch on. Kept flat on purpose: the
// frontend switches UI on these, everything else is just the message.
const (
	CodeEmailExistsVerified   = "EMAIL_EXISTS_VERIFIED"
	CodeEmailExistsUnverified = "EMAIL_EXISTS_UNVERIFIED"
	CodeVerificationRequired  = "EMAIL_VERIFICATION_REQUIRED"
	CodeCredentialsInvalid    = "CREDENTIALS_INVALID"
	CodeAccountLocked         = "ACCOUNT_LOCKED"
	CodeEmailNotVerified      = "EMAIL_NOT_VERIFIED"
	CodeMissingParams         = "MISSING_PARAMS"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeNoToken               = "NO_TOKEN"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeAlreadyVerified       = "ALREADY_VERIFIED"
	CodeVerificationSuccess   = "VERIFICATION_SUCCESS"
	CodeRateLimited           = "RATE_LIMITED"
	CodeDeliveryFailed        = "DELIVERY_FAILED"
	CodeResetInvalid          = "RESET_INVALID"
	CodeValidationFailed      = "VALIDATION_FAILED"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Code       string
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func New(message string, statusCode int, code string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode, Code: code}
}

func NotFound(message string, code string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusNotFound, Code: code}
}

func BadRequest(message string, code string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusBadRequest, Code: code}
}

func Conflict(message string, code string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusConflict, Code: code}
}

func IsNotFound(err error) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.StatusCode == http.StatusNotFound
}

func IsConflict(err error) bool {
	e, ok := err.(*ErrorWithStatusCode)
	return ok && e.StatusCode == http.StatusConflict
}

// CodeOf returns the machine-readable code of err, or "" for plain errors.
func CodeOf(err error) string {
	if e, ok := err.(*ErrorWithStatusCode); ok {
		return e.Code
	}
	return ""
}
