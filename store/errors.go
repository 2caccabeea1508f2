package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error classes. Handlers match them with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrAuthorization  = errors.New("permission denied")
	ErrNotFound       = errors.New("not found")
)

var (
	ErrDuplicateUser      = newError(ErrValidation, "An account with this email or username already exists.")
	ErrUnknownCrew        = newError(ErrValidation, "No such crew.")
	ErrBadCredentials     = newError(ErrAuthentication, "Bad username or password.")
	ErrNotCrewMember      = newError(ErrAuthorization, "You are not a member of this crew.")
	ErrCrewNotFound       = newError(ErrNotFound, "Crew not found.")
	ErrUserNotFound       = newError(ErrNotFound, "User not found.")
	ErrEmptyMessage       = newError(ErrValidation, "Message is empty.")
	ErrMissingCrewName    = newError(ErrValidation, "Crew name is required.")
	ErrMissingCredentials = newError(ErrValidation, "Username, email and password are required.")
)

// Error is an error of one of the classes above, with a message fit to be
// shown to the user.
type Error struct {
	Class   error
	Message string
}

func newError(class error, message string) *Error {
	return &Error{Class: class, Message: message}
}

func (e *Error) Error() string {
	return e.Class.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Class
}

// UserMessage returns the message of the first *Error in err's chain,
// or err's own text if there is none.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// notFound translates gorm's record-not-found into the store's own error.
func notFound(err error, as error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return as
	}
	return err
}

// isUniqueViolation reports whether err is a unique constraint failure,
// for drivers that do not translate it into gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
