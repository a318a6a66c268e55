package library

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBookStoreMissingFile(t *testing.T) {
	s := NewFileBookStore(afero.NewMemMapFs(), "nope.csv")
	_, _, err := s.LoadBooks()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFileBookStoreAcceptsCRLF(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "b.csv", []byte("A1,X,T,1.50,2,\r\n\r\nB2,Y,U,3.00,4,Ann\r\n"), 0o644))

	books, warnings, err := NewFileBookStore(fs, "b.csv").LoadBooks()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, books, 2)
	assert.Equal(t, "Ann", books[1].ReaderFullName)
}

func TestFileBookStoreWritesOneLinePerBook(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileBookStore(fs, "nested/dir/b.csv")

	onLoan := book("B2", "Y", "U", 3, 4)
	onLoan.ReaderFullName = "Ann"
	require.NoError(t, s.SaveBooks([]Book{book("A1", "X", "T", 1.5, 2), onLoan}))

	data, err := afero.ReadFile(fs, "nested/dir/b.csv")
	require.NoError(t, err)
	assert.Equal(t, "A1,X,T,1.50,2,\nB2,Y,U,3.00,4,Ann\n", string(data))

	entries, err := afero.ReadDir(fs, "nested/dir")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestFileUserStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewFileUserStore(fs, "users.txt")
	users := []User{
		{Username: "admin", Password: "admin123", Role: RoleAdmin},
		{Username: "ann", Password: "pw", Role: RoleStandard},
	}
	require.NoError(t, s.SaveUsers(users))

	data, err := afero.ReadFile(fs, "users.txt")
	require.NoError(t, err)
	assert.Equal(t, "Admin:admin:admin123\nStandard:ann:pw\n", string(data))

	got, warnings, err := s.LoadUsers()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, users, got)
}

func TestFileStoreWriteFailure(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := NewFileUserStore(fs, "users.txt").SaveUsers([]User{{Username: "a", Password: "b"}})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestMemoryBookStore(t *testing.T) {
	s := NewMemoryBookStore(nil)
	_, _, err := s.LoadBooks()
	assert.ErrorIs(t, err, ErrNoData)

	require.NoError(t, s.SaveBooks(nil))
	books, _, err := s.LoadBooks()
	require.NoError(t, err)
	assert.Empty(t, books)

	s.SaveErr = errors.New("boom")
	assert.ErrorIs(t, s.SaveBooks([]Book{book("A", "X", "T", 1, 1)}), ErrPersistence)
	assert.Equal(t, 1, s.Saves())
}

func TestLoadWarningMessage(t *testing.T) {
	w := LoadWarning{File: "b.csv", Line: 3, Err: ErrCorruptRecord}
	assert.Equal(t, "b.csv:3: corrupt record", w.Error())
	assert.True(t, errors.Is(w, ErrCorruptRecord))
}
