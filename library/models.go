package library

import (
	"fmt"
	"math"
	"strings"
)

// Book is one catalog item. An empty ReaderFullName means the book is on
// the shelf; otherwise it is on loan to that reader.
type Book struct {
	Article        string  `json:"article"`
	AuthorName     string  `json:"author_name"`
	BookTitle      string  `json:"book_title"`
	Price          float64 `json:"price"`
	ShelfNumber    int     `json:"shelf_number"`
	ReaderFullName string  `json:"reader_full_name"`
}

// IsAvailable reports whether the book is not on loan.
func (b *Book) IsAvailable() bool { return b.ReaderFullName == "" }

// IssueToReader records the book as lent to readerName.
func (b *Book) IssueToReader(readerName string) { b.ReaderFullName = readerName }

// ReturnToLibrary clears the current holder.
func (b *Book) ReturnToLibrary() { b.ReaderFullName = "" }

// Validate checks the invariants the catalog file relies on.
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Article) == "" {
		return fmt.Errorf("%w: article is required", ErrInvalidInput)
	}
	if math.IsNaN(b.Price) || math.IsInf(b.Price, 0) {
		return fmt.Errorf("%w: price must be a finite number", ErrInvalidInput)
	}
	if b.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if b.ShelfNumber < 0 {
		return fmt.Errorf("%w: shelf number must not be negative", ErrInvalidInput)
	}
	for _, f := range []struct{ name, value string }{
		{"article", b.Article},
		{"author", b.AuthorName},
		{"title", b.BookTitle},
		{"reader name", b.ReaderFullName},
	} {
		if strings.ContainsAny(f.value, bookFieldSep+"\r\n") {
			return fmt.Errorf("%w: %s must not contain %q or line breaks", ErrInvalidInput, f.name, bookFieldSep)
		}
	}
	return nil
}

// Record serializes the book to one catalog file line (without newline).
func (b *Book) Record() string { return encodeBook(*b) }

// Role is the privilege level of an account.
type Role int

const (
	RoleStandard Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "Administrator"
	}
	return "Reader"
}

// User is one account. Accounts are never mutated in place after creation.
type User struct {
	Username string
	Password string `json:"-"` // stored in clear text in the accounts file
	Role     Role
}

// IsAdmin reports whether the account carries elevated privilege.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// CheckPassword compares password against the stored one exactly.
func (u User) CheckPassword(password string) bool { return u.Password == password }

// Record serializes the account to one accounts file line (without newline).
func (u User) Record() string { return encodeUser(u) }

// UserInfo is the public part of an account as returned by ListUsers.
type UserInfo struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Credentials names the default administrator account seeded when the
// accounts file is missing or lacks it.
type Credentials struct {
	Username string
	Password string
}

// DefaultAdmin returns the built-in administrator credentials.
func DefaultAdmin() Credentials {
	return Credentials{Username: "admin", Password: "admin123"}
}
