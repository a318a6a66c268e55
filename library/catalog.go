package library

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Catalog owns the in-memory book collection, keyed by article. It is not
// safe for concurrent use.
type Catalog struct {
	store    BookStore
	log      *zap.Logger
	books    []Book
	warnings []LoadWarning
	loadErr  error
}

// NewCatalog loads the catalog from store. A missing file yields an empty
// catalog; a read failure is logged and the catalog starts empty.
func NewCatalog(store BookStore, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{store: store, log: log.Named("catalog")}
	c.load()
	return c
}

func (c *Catalog) load() {
	books, warnings, err := c.store.LoadBooks()
	switch {
	case errors.Is(err, ErrNoData):
		c.log.Info("catalog file not found, starting empty; it will be created on save")
		return
	case err != nil:
		c.log.Error("failed to load catalog", zap.Error(err))
		c.loadErr = err
		return
	}

	c.warnings = warnings
	for _, b := range books {
		if c.indexOf(b.Article) >= 0 {
			c.warnings = append(c.warnings, LoadWarning{
				Raw: encodeBook(b),
				Err: fmt.Errorf("%w: duplicate article %q", ErrCorruptRecord, b.Article),
			})
			continue
		}
		c.books = append(c.books, b)
	}
	for _, w := range c.warnings {
		c.log.Warn("skipped corrupt catalog line",
			zap.String("file", w.File),
			zap.Int("line", w.Line),
			zap.String("reason", w.Err.Error()),
		)
	}
	c.log.Info("catalog loaded", zap.Int("books", len(c.books)), zap.Int("skipped", len(c.warnings)))
}

// Warnings returns the lines skipped while loading.
func (c *Catalog) Warnings() []LoadWarning { return slices.Clone(c.warnings) }

// LoadErr returns the error that made the initial load fail, or nil. A
// missing file is not an error.
func (c *Catalog) LoadErr() error { return c.loadErr }

// Save rewrites the backing store with the current catalog.
func (c *Catalog) Save() error {
	if err := c.store.SaveBooks(c.books); err != nil {
		c.log.Error("failed to save catalog", zap.Error(err))
		return fmt.Errorf("save catalog: %w", err)
	}
	c.log.Info("catalog saved", zap.Int("books", len(c.books)))
	return nil
}

func (c *Catalog) indexOf(article string) int {
	return slices.IndexFunc(c.books, func(b Book) bool { return b.Article == article })
}

// ------------------ CRUD ------------------

// AddBook appends book unless its article is already present.
func (c *Catalog) AddBook(book Book) error {
	if err := book.Validate(); err != nil {
		return err
	}
	if c.indexOf(book.Article) >= 0 {
		return fmt.Errorf("book %q: %w", book.Article, ErrAlreadyExists)
	}
	c.books = append(c.books, book)
	return nil
}

// DeleteBook removes the book with the given article.
func (c *Catalog) DeleteBook(article string) error {
	i := c.indexOf(article)
	if i < 0 {
		return fmt.Errorf("book %q: %w", article, ErrNotFound)
	}
	c.books = slices.Delete(c.books, i, i+1)
	return nil
}

// UpdateBook replaces every field of the book found by article with data.
// The book keeps article as its key; data.Article is ignored.
func (c *Catalog) UpdateBook(article string, data Book) error {
	i := c.indexOf(article)
	if i < 0 {
		return fmt.Errorf("book %q: %w", article, ErrNotFound)
	}
	data.Article = article
	if err := data.Validate(); err != nil {
		return err
	}
	c.books[i] = data
	return nil
}

// FindByArticle returns a handle to the stored book. The pointer is valid
// until the next AddBook, DeleteBook or sort.
func (c *Catalog) FindByArticle(article string) (*Book, bool) {
	i := c.indexOf(article)
	if i < 0 {
		return nil, false
	}
	return &c.books[i], true
}

// Book returns a copy of the stored book.
func (c *Catalog) Book(article string) (Book, bool) {
	i := c.indexOf(article)
	if i < 0 {
		return Book{}, false
	}
	return c.books[i], true
}

// ------------------ Circulation ------------------

// IssueBook lends the book to reader if it is on the shelf.
func (c *Catalog) IssueBook(article, reader string) error {
	if strings.TrimSpace(reader) == "" {
		return fmt.Errorf("%w: reader name is required", ErrInvalidInput)
	}
	if strings.ContainsAny(reader, bookFieldSep+"\r\n") {
		return fmt.Errorf("%w: reader name must not contain %q", ErrInvalidInput, bookFieldSep)
	}
	b, ok := c.FindByArticle(article)
	if !ok {
		return fmt.Errorf("book %q: %w", article, ErrNotFound)
	}
	if !b.IsAvailable() {
		return fmt.Errorf("book %q: %w", article, ErrUnavailable)
	}
	b.IssueToReader(reader)
	return nil
}

// ReturnBook puts a lent book back on the shelf and yields who had it.
func (c *Catalog) ReturnBook(article string) (string, error) {
	b, ok := c.FindByArticle(article)
	if !ok {
		return "", fmt.Errorf("book %q: %w", article, ErrNotFound)
	}
	if b.IsAvailable() {
		return "", fmt.Errorf("book %q: %w", article, ErrNotOnLoan)
	}
	reader := b.ReaderFullName
	b.ReturnToLibrary()
	return reader, nil
}

// ------------------ Queries ------------------

// FilterByAuthor returns the books by exactly name, in catalog order.
func (c *Catalog) FilterByAuthor(name string) []Book {
	return c.filter(func(b Book) bool { return b.AuthorName == name })
}

// FilterByShelf returns the books on shelf n, in catalog order.
func (c *Catalog) FilterByShelf(n int) []Book {
	return c.filter(func(b Book) bool { return b.ShelfNumber == n })
}

func (c *Catalog) filter(match func(Book) bool) []Book {
	out := []Book{}
	for _, b := range c.books {
		if match(b) {
			out = append(out, b)
		}
	}
	return out
}

// SortByTitle stably orders the catalog by title.
func (c *Catalog) SortByTitle() {
	slices.SortStableFunc(c.books, func(a, b Book) int { return strings.Compare(a.BookTitle, b.BookTitle) })
}

// SortByAuthor stably orders the catalog by author.
func (c *Catalog) SortByAuthor() {
	slices.SortStableFunc(c.books, func(a, b Book) int { return strings.Compare(a.AuthorName, b.AuthorName) })
}

// SortByPrice stably orders the catalog by price, cheapest first.
func (c *Catalog) SortByPrice() {
	slices.SortStableFunc(c.books, func(a, b Book) int { return cmp.Compare(a.Price, b.Price) })
}

// GetAllBooks returns a copy of the catalog in its current order.
func (c *Catalog) GetAllBooks() []Book { return slices.Clone(c.books) }

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// IsEmpty reports whether the catalog has no books.
func (c *Catalog) IsEmpty() bool { return len(c.books) == 0 }
