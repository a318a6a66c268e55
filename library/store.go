package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// ErrNoData is returned by a store whose backing file does not exist yet.
var ErrNoData = errors.New("no stored data")

// BookStore loads and rewrites the whole catalog.
type BookStore interface {
	// LoadBooks returns the stored books in file order. Lines that cannot be
	// parsed are skipped and reported as warnings. Returns ErrNoData when
	// nothing has been stored yet.
	LoadBooks() ([]Book, []LoadWarning, error)

	// SaveBooks replaces the stored catalog with books.
	SaveBooks(books []Book) error
}

// UserStore loads and rewrites the whole account list.
type UserStore interface {
	LoadUsers() ([]User, []LoadWarning, error)
	SaveUsers(users []User) error
}

// lineFile is a text file read and rewritten as a whole.
type lineFile struct {
	fs   afero.Fs
	path string
}

func (f lineFile) readLines() ([]string, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, errors.Join(ErrPersistence, fmt.Errorf("read %s: %w", f.path, err))
	}
	lines := strings.Split(string(data), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

// writeLines writes to a temporary file next to the target and renames it
// over the target, so a failed write leaves the previous file intact.
func (f lineFile) writeLines(lines []string) (err error) {
	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrPersistence, fmt.Errorf("create dir %s: %w", dir, err))
		}
	}

	tmp, err := afero.TempFile(f.fs, dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return errors.Join(ErrPersistence, fmt.Errorf("create temp file for %s: %w", f.path, err))
	}
	defer func() {
		if err != nil {
			_ = f.fs.Remove(tmp.Name())
		}
	}()

	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if _, err = tmp.WriteString(sb.String()); err != nil {
		tmp.Close()
		return errors.Join(ErrPersistence, fmt.Errorf("write %s: %w", f.path, err))
	}
	if err = tmp.Close(); err != nil {
		return errors.Join(ErrPersistence, fmt.Errorf("close %s: %w", f.path, err))
	}
	if err = f.fs.Rename(tmp.Name(), f.path); err != nil {
		return errors.Join(ErrPersistence, fmt.Errorf("replace %s: %w", f.path, err))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Catalog file
// ---------------------------------------------------------------------------

// FileBookStore keeps the catalog in a comma-delimited file.
type FileBookStore struct {
	file lineFile
}

var _ BookStore = (*FileBookStore)(nil)

// NewFileBookStore returns a store over path on fs.
func NewFileBookStore(fs afero.Fs, path string) *FileBookStore {
	return &FileBookStore{file: lineFile{fs: fs, path: path}}
}

// Path returns the backing file path.
func (s *FileBookStore) Path() string { return s.file.path }

// LoadBooks implements BookStore.
func (s *FileBookStore) LoadBooks() ([]Book, []LoadWarning, error) {
	lines, err := s.file.readLines()
	if err != nil {
		return nil, nil, err
	}

	var (
		books    []Book
		warnings []LoadWarning
	)
	for i, line := range lines {
		if line == "" {
			continue
		}
		b, err := decodeBook(line)
		if err != nil {
			warnings = append(warnings, LoadWarning{File: s.file.path, Line: i + 1, Raw: line, Err: err})
			continue
		}
		books = append(books, b)
	}
	return books, warnings, nil
}

// SaveBooks implements BookStore.
func (s *FileBookStore) SaveBooks(books []Book) error {
	lines := make([]string, len(books))
	for i, b := range books {
		lines[i] = encodeBook(b)
	}
	return s.file.writeLines(lines)
}

// ---------------------------------------------------------------------------
// Accounts file
// ---------------------------------------------------------------------------

// FileUserStore keeps accounts in a colon-delimited file.
type FileUserStore struct {
	file lineFile
}

var _ UserStore = (*FileUserStore)(nil)

// NewFileUserStore returns a store over path on fs.
func NewFileUserStore(fs afero.Fs, path string) *FileUserStore {
	return &FileUserStore{file: lineFile{fs: fs, path: path}}
}

// Path returns the backing file path.
func (s *FileUserStore) Path() string { return s.file.path }

// LoadUsers implements UserStore.
func (s *FileUserStore) LoadUsers() ([]User, []LoadWarning, error) {
	lines, err := s.file.readLines()
	if err != nil {
		return nil, nil, err
	}

	var (
		users    []User
		warnings []LoadWarning
	)
	for i, line := range lines {
		if line == "" {
			continue
		}
		u, err := decodeUser(line)
		if err != nil {
			// The line holds a clear-text password; keep it out of warnings.
			warnings = append(warnings, LoadWarning{File: s.file.path, Line: i + 1, Err: err})
			continue
		}
		users = append(users, u)
	}
	return users, warnings, nil
}

// SaveUsers implements UserStore.
func (s *FileUserStore) SaveUsers(users []User) error {
	lines := make([]string, len(users))
	for i, u := range users {
		lines[i] = encodeUser(u)
	}
	return s.file.writeLines(lines)
}

// ---------------------------------------------------------------------------
// In-memory stores
// ---------------------------------------------------------------------------

// MemoryBookStore keeps the catalog in memory. A nil slice means nothing
// has been stored yet.
type MemoryBookStore struct {
	mu      sync.Mutex
	books   []Book
	saves   int
	SaveErr error // returned by SaveBooks when set
}

var _ BookStore = (*MemoryBookStore)(nil)

// NewMemoryBookStore creates a store holding initial, or an empty store
// when initial is nil.
func NewMemoryBookStore(initial []Book) *MemoryBookStore {
	return &MemoryBookStore{books: cloneBooks(initial)}
}

// LoadBooks implements BookStore.
func (s *MemoryBookStore) LoadBooks() ([]Book, []LoadWarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.books == nil {
		return nil, nil, ErrNoData
	}
	return cloneBooks(s.books), nil, nil
}

// SaveBooks implements BookStore.
func (s *MemoryBookStore) SaveBooks(books []Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return errors.Join(ErrPersistence, s.SaveErr)
	}
	s.books = cloneBooks(books)
	if s.books == nil {
		s.books = []Book{}
	}
	s.saves++
	return nil
}

// Saves returns how many successful saves happened.
func (s *MemoryBookStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// MemoryUserStore keeps accounts in memory. A nil slice means nothing has
// been stored yet.
type MemoryUserStore struct {
	mu      sync.Mutex
	users   []User
	saves   int
	SaveErr error // returned by SaveUsers when set
}

var _ UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates a store holding initial, or an empty store
// when initial is nil.
func NewMemoryUserStore(initial []User) *MemoryUserStore {
	var users []User
	if initial != nil {
		users = append([]User{}, initial...)
	}
	return &MemoryUserStore{users: users}
}

// LoadUsers implements UserStore.
func (s *MemoryUserStore) LoadUsers() ([]User, []LoadWarning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		return nil, nil, ErrNoData
	}
	return append([]User{}, s.users...), nil, nil
}

// SaveUsers implements UserStore.
func (s *MemoryUserStore) SaveUsers(users []User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return errors.Join(ErrPersistence, s.SaveErr)
	}
	s.users = append([]User{}, users...)
	s.saves++
	return nil
}

// Users returns a copy of the stored accounts.
func (s *MemoryUserStore) Users() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]User(nil), s.users...)
}

// Saves returns how many successful saves happened.
func (s *MemoryUserStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneBooks(books []Book) []Book {
	if books == nil {
		return nil
	}
	return append(make([]Book, 0, len(books)), books...)
}
