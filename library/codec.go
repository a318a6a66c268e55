package library

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Catalog file: article,author,title,price,shelf,reader
// Accounts file: Type:Username:Password
const (
	bookFieldSep = ","
	userFieldSep = ":"

	userTagAdmin    = "Admin"
	userTagStandard = "Standard"
	userTagLegacy   = "User" // older files wrote standard accounts this way
)

func encodeBook(b Book) string {
	return strings.Join([]string{
		b.Article,
		b.AuthorName,
		b.BookTitle,
		strconv.FormatFloat(b.Price, 'f', 2, 64),
		strconv.Itoa(b.ShelfNumber),
		b.ReaderFullName,
	}, bookFieldSep)
}

// decodeBook parses one catalog line. The reader field may be empty or
// missing entirely.
func decodeBook(line string) (Book, error) {
	fields := strings.Split(line, bookFieldSep)
	if len(fields) != 5 && len(fields) != 6 {
		return Book{}, fmt.Errorf("%w: want 6 fields, got %d", ErrCorruptRecord, len(fields))
	}
	if fields[0] == "" {
		return Book{}, fmt.Errorf("%w: empty article", ErrCorruptRecord)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Book{}, fmt.Errorf("%w: bad price %q", ErrCorruptRecord, fields[3])
	}
	shelf, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil || shelf < 0 {
		return Book{}, fmt.Errorf("%w: bad shelf number %q", ErrCorruptRecord, fields[4])
	}

	b := Book{
		Article:     fields[0],
		AuthorName:  fields[1],
		BookTitle:   fields[2],
		Price:       price,
		ShelfNumber: shelf,
	}
	if len(fields) == 6 {
		b.ReaderFullName = fields[5]
	}
	return b, nil
}

func encodeUser(u User) string {
	tag := userTagStandard
	if u.IsAdmin() {
		tag = userTagAdmin
	}
	return strings.Join([]string{tag, u.Username, u.Password}, userFieldSep)
}

func decodeUser(line string) (User, error) {
	parts := strings.Split(line, userFieldSep)
	if len(parts) != 3 {
		return User{}, fmt.Errorf("%w: want 3 fields, got %d", ErrCorruptRecord, len(parts))
	}
	if parts[1] == "" || parts[2] == "" {
		return User{}, fmt.Errorf("%w: empty username or password", ErrCorruptRecord)
	}

	u := User{Username: parts[1], Password: parts[2]}
	switch parts[0] {
	case userTagAdmin:
		u.Role = RoleAdmin
	case userTagStandard, userTagLegacy:
		u.Role = RoleStandard
	default:
		return User{}, fmt.Errorf("%w: unknown account type %q", ErrCorruptRecord, parts[0])
	}
	return u, nil
}

// ValidateArticle applies the console's article rule: 1 to 6 ASCII letters
// or digits.
func ValidateArticle(article string) error {
	if article == "" || len(article) > 6 {
		return fmt.Errorf("%w: article must be 1-6 characters", ErrInvalidInput)
	}
	for _, r := range article {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: article must be latin letters or digits", ErrInvalidInput)
		}
	}
	return nil
}
