package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBook(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Book
		wantErr bool
	}{
		{
			name: "on loan",
			line: "AB12,Orwell,1984,19.99,3,Ivan Petrenko",
			want: Book{Article: "AB12", AuthorName: "Orwell", BookTitle: "1984", Price: 19.99, ShelfNumber: 3, ReaderFullName: "Ivan Petrenko"},
		},
		{
			name: "available with trailing empty field",
			line: "X1,Tolkien,Hobbit,5.00,12,",
			want: Book{Article: "X1", AuthorName: "Tolkien", BookTitle: "Hobbit", Price: 5, ShelfNumber: 12},
		},
		{
			name: "reader field missing",
			line: "X2,Tolkien,Silmarillion,7.50,1",
			want: Book{Article: "X2", AuthorName: "Tolkien", BookTitle: "Silmarillion", Price: 7.5, ShelfNumber: 1},
		},
		{name: "price not a number", line: "X,Y,Z,notanumber,5,", wantErr: true},
		{name: "shelf not a number", line: "X,Y,Z,1.00,five,", wantErr: true},
		{name: "negative price", line: "X,Y,Z,-1.00,5,", wantErr: true},
		{name: "negative shelf", line: "X,Y,Z,1.00,-5,", wantErr: true},
		{name: "too few fields", line: "X,Y,Z,1.00", wantErr: true},
		{name: "too many fields", line: "X,Y,Z,1.00,5,R,extra", wantErr: true},
		{name: "empty article", line: ",Y,Z,1.00,5,", wantErr: true},
		{name: "not a number price", line: "X,Y,Z,NaN,5,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBook(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCorruptRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeBookFormatsPriceWithTwoDecimals(t *testing.T) {
	b := Book{Article: "A1", AuthorName: "Author", BookTitle: "Title", Price: 5, ShelfNumber: 7}
	assert.Equal(t, "A1,Author,Title,5.00,7,", b.Record())

	b.IssueToReader("Reader")
	b.Price = 19.999
	assert.Equal(t, "A1,Author,Title,20.00,7,Reader", b.Record())
}

func TestDecodeUser(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    User
		wantErr bool
	}{
		{name: "admin", line: "Admin:admin:admin123", want: User{Username: "admin", Password: "admin123", Role: RoleAdmin}},
		{name: "standard", line: "Standard:ann:pw", want: User{Username: "ann", Password: "pw", Role: RoleStandard}},
		{name: "legacy standard tag", line: "User:bob:pw", want: User{Username: "bob", Password: "pw", Role: RoleStandard}},
		{name: "unknown tag", line: "Guest:bob:pw", wantErr: true},
		{name: "two fields", line: "Admin:admin", wantErr: true},
		{name: "four fields", line: "Admin:admin:pw:extra", wantErr: true},
		{name: "empty password", line: "Standard:ann:", wantErr: true},
		{name: "empty username", line: "Standard::pw", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeUser(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCorruptRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeUserWritesCanonicalTags(t *testing.T) {
	assert.Equal(t, "Admin:root:pw", User{Username: "root", Password: "pw", Role: RoleAdmin}.Record())
	assert.Equal(t, "Standard:ann:pw", User{Username: "ann", Password: "pw", Role: RoleStandard}.Record())
}

func TestValidateArticle(t *testing.T) {
	for _, ok := range []string{"A", "ab12", "ABC123"} {
		assert.NoError(t, ValidateArticle(ok), ok)
	}
	for _, bad := range []string{"", "ABCDEFG", "AB 12", "AB-1", "АБВ"} {
		assert.ErrorIs(t, ValidateArticle(bad), ErrInvalidInput, bad)
	}
}
