package services

import (
	"errors"
	"fmt"

	"github.com/tasknest/tasknest-backend/internal/api/validate"
)

var (
	// ErrNotFound covers both a genuinely missing record and a record owned
	// by someone else; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrInvalidSession = errors.New("invalid session")
)

// AuthenticationError carries field-level detail for login failures (unknown
// username, wrong password, deactivated account). Maps to 401.
type AuthenticationError struct {
	Fields validate.Errs
}

func (e *AuthenticationError) Error() string { return e.Fields.Error() }

func authErr(field, msg string) *AuthenticationError {
	return &AuthenticationError{Fields: validate.Errs{{Field: field, Msg: msg}}}
}

// UsernameLockedError is the cooldown gate on username changes. Maps to 403.
type UsernameLockedError struct {
	DaysLeft int
}

func (e *UsernameLockedError) Error() string {
	return fmt.Sprintf("you cannot change your username yet, please wait %d more day(s)", e.DaysLeft)
}
