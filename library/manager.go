package library

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Options configures NewLibraryManager.
type Options struct {
	BooksFile string
	UsersFile string
	Admin     Credentials
	Logger    *zap.Logger
}

// LibraryManager is a thin façade composing the catalog and the account
// store, keeping console code simple.
type LibraryManager struct {
	Books    *Catalog
	Accounts *AccountStore

	log *zap.Logger
}

// NewLibraryManager opens (or creates) the catalog and accounts files on fs.
func NewLibraryManager(fs afero.Fs, opts Options) *LibraryManager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return NewLibraryManagerWithStores(
		NewFileBookStore(fs, opts.BooksFile),
		NewFileUserStore(fs, opts.UsersFile),
		opts.Admin,
		log,
	)
}

// NewLibraryManagerWithStores composes a manager over arbitrary stores.
func NewLibraryManagerWithStores(books BookStore, users UserStore, admin Credentials, log *zap.Logger) *LibraryManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &LibraryManager{
		Books:    NewCatalog(books, log),
		Accounts: NewAccountStore(users, admin, log),
		log:      log,
	}
}

// Save writes the catalog.
func (lm *LibraryManager) Save() error { return lm.Books.Save() }

// Close ends the session and writes the catalog.
func (lm *LibraryManager) Close() error {
	lm.Accounts.Logout()
	if err := lm.Books.Save(); err != nil {
		return fmt.Errorf("close library: %w", err)
	}
	return nil
}

// ------------------ Circulation ------------------

// IssueBook lends a book. Administrators may name any reader; everyone else
// borrows for themselves.
func (lm *LibraryManager) IssueBook(article, reader string) (string, error) {
	if !lm.Accounts.IsLoggedIn() {
		return "", fmt.Errorf("issue book: %w", ErrAccessDenied)
	}
	if !lm.Accounts.IsAdmin() || reader == "" {
		reader = lm.Accounts.GetCurrentUser()
	}
	if err := lm.Books.IssueBook(article, reader); err != nil {
		return "", err
	}
	lm.log.Info("book issued", zap.String("article", article), zap.String("reader", reader))
	return reader, nil
}

// ReturnBook puts a book back on the shelf and yields who had it.
func (lm *LibraryManager) ReturnBook(article string) (string, error) {
	if !lm.Accounts.IsLoggedIn() {
		return "", fmt.Errorf("return book: %w", ErrAccessDenied)
	}
	reader, err := lm.Books.ReturnBook(article)
	if err != nil {
		return "", err
	}
	lm.log.Info("book returned", zap.String("article", article), zap.String("reader", reader))
	return reader, nil
}

// ------------------ Catalog administration ------------------

// AddBook adds a book; administrators only.
func (lm *LibraryManager) AddBook(b Book) error {
	if !lm.Accounts.IsAdmin() {
		return fmt.Errorf("add book: %w", ErrAccessDenied)
	}
	return lm.Books.AddBook(b)
}

// UpdateBook replaces a book's fields; administrators only.
func (lm *LibraryManager) UpdateBook(article string, b Book) error {
	if !lm.Accounts.IsAdmin() {
		return fmt.Errorf("update book: %w", ErrAccessDenied)
	}
	return lm.Books.UpdateBook(article, b)
}

// DeleteBook removes a book; administrators only.
func (lm *LibraryManager) DeleteBook(article string) error {
	if !lm.Accounts.IsAdmin() {
		return fmt.Errorf("delete book: %w", ErrAccessDenied)
	}
	return lm.Books.DeleteBook(article)
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	status := "available"
	if !b.IsAvailable() {
		status = "on loan: " + b.ReaderFullName
	}
	return fmt.Sprintf("%-7s %-25s %-25s %9.2f %6d  %s",
		b.Article, truncate(b.BookTitle, 25), truncate(b.AuthorName, 25), b.Price, b.ShelfNumber, status)
}

func truncate(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
