package service

import "errors"

// Sentinel outcomes returned by the services. Handlers map these to
// response codes; anything not listed here is an internal error.
var (
	// Authentication failures are deliberately generic so callers
	// cannot tell which sub-check failed.
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInvalidTokenKind   = errors.New("invalid token type")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken           = errors.New("email already registered")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrInactiveUser         = errors.New("inactive user")
	ErrAdminRequired        = errors.New("admin access required")
	ErrPasswordMismatch     = errors.New("current password is incorrect")
	ErrNoUpdates            = errors.New("no update data provided")
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")

	ErrInvalidQuestion         = errors.New("invalid question")
	ErrQuestionIndexOutOfRange = errors.New("question index out of bounds")
)
