package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an article or username does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an article or username is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAccessDenied is returned when a non-administrator attempts an
	// administrator-only operation.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput is returned for empty required fields or values the
	// record formats cannot carry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistence is returned when a backing file cannot be read or written.
	ErrPersistence = errors.New("persistence failure")

	// ErrCorruptRecord marks a persisted line that could not be parsed.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrInvalidCredentials is returned when the username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProtectedAccount is returned when deleting the built-in administrator.
	ErrProtectedAccount = errors.New("account cannot be deleted")

	// ErrUnavailable is returned when issuing a book that is already on loan.
	ErrUnavailable = errors.New("book is on loan")

	// ErrNotOnLoan is returned when returning a book that is on the shelf.
	ErrNotOnLoan = errors.New("book is not on loan")
)

// LoadWarning describes one persisted line skipped during load.
type LoadWarning struct {
	File string
	Line int
	Raw  string
	Err  error
}

func (w LoadWarning) Error() string {
	if w.File == "" {
		return fmt.Sprintf("line %d: %v", w.Line, w.Err)
	}
	return fmt.Sprintf("%s:%d: %v", w.File, w.Line, w.Err)
}

func (w LoadWarning) Unwrap() error { return w.Err }
