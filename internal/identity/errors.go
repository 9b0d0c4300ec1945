package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes reported by the identity service, in the auth/<reason> form
// clients already know.
const (
	CodeUserNotFound      = "auth/user-not-found"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeUserDisabled      = "auth/user-disabled"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeMissingPassword   = "auth/missing-password"
	CodeInternal          = "auth/internal-error"
)

var remoteCodes = map[string]string{
	"EMAIL_NOT_FOUND":             CodeUserNotFound,
	"INVALID_PASSWORD":            CodeInvalidCredential,
	"INVALID_LOGIN_CREDENTIALS":   CodeInvalidCredential,
	"EMAIL_EXISTS":                CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               CodeWeakPassword,
	"INVALID_EMAIL":               CodeInvalidEmail,
	"MISSING_EMAIL":               CodeInvalidEmail,
	"USER_DISABLED":               CodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER": CodeTooManyRequests,
	"MISSING_PASSWORD":            CodeMissingPassword,
}

// Error is a failed identity call.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity: %s", e.Code)
	}
	return fmt.Sprintf("identity: %s (%s)", e.Code, e.Message)
}

// CodeOf returns the identity error code carried by err, or "" when err is
// not an identity error.
func CodeOf(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}

// codeFromMessage maps a remote error message such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func codeFromMessage(msg string) string {
	reason := strings.TrimSpace(strings.SplitN(msg, ":", 2)[0])
	if code, ok := remoteCodes[reason]; ok {
		return code
	}
	return CodeInternal
}
