package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"library-catalog/library"
)

// shell is the interactive console front end over a LibraryManager.
type shell struct {
	in           *bufio.Scanner
	out          io.Writer
	mgr          *library.LibraryManager
	readPassword func(prompt string) (string, error) // nil reads a plain line
}

func newShell(in io.Reader, out io.Writer, mgr *library.LibraryManager) *shell {
	return &shell{in: bufio.NewScanner(in), out: out, mgr: mgr}
}

// run loops until the operator exits or input ends.
func (s *shell) run() {
	fmt.Fprintln(s.out, "Welcome to the Library Catalog!")
	for {
		if !s.mgr.Accounts.IsLoggedIn() {
			if !s.loginPrompt() {
				return
			}
			continue
		}

		cmd, ok := s.readLine(fmt.Sprintf("\n%s> ", s.mgr.Accounts.GetCurrentUser()))
		if !ok {
			return
		}
		if !s.dispatch(strings.ToLower(cmd)) {
			return
		}
	}
}

// loginPrompt returns false when the operator chose to exit.
func (s *shell) loginPrompt() bool {
	fmt.Fprintln(s.out, "\nCommands: login, exit")
	cmd, ok := s.readLine("> ")
	if !ok {
		return false
	}
	switch strings.ToLower(cmd) {
	case "login":
		s.handleLogin()
	case "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	case "":
	default:
		fmt.Fprintln(s.out, "Unknown command. Type login or exit.")
	}
	return true
}

// dispatch runs one command and returns false on exit.
func (s *shell) dispatch(cmd string) bool {
	admin := s.mgr.Accounts.IsAdmin()

	switch cmd {
	case "list books":
		s.handleListBooks()
	case "find book":
		s.handleFindBook()
	case "filter author":
		s.handleFilterAuthor()
	case "filter shelf":
		s.handleFilterShelf()
	case "sort":
		s.handleSort()
	case "issue":
		s.handleIssue()
	case "return":
		s.handleReturn()
	case "help":
		s.printHelp()
	case "logout":
		s.mgr.Accounts.Logout()
		fmt.Fprintln(s.out, "Logged out.")
	case "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return false
	case "":
	default:
		if admin && s.dispatchAdmin(cmd) {
			return true
		}
		fmt.Fprintln(s.out, "Unknown command. Type help for the list of commands.")
	}
	return true
}

func (s *shell) dispatchAdmin(cmd string) bool {
	switch cmd {
	case "add book":
		s.handleAddBook()
	case "update book":
		s.handleUpdateBook()
	case "delete book":
		s.handleDeleteBook()
	case "save":
		s.handleSave()
	case "list users":
		s.handleListUsers()
	case "create user":
		s.handleCreateUser()
	case "delete user":
		s.handleDeleteUser()
	default:
		return false
	}
	return true
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Books: list books, find book, filter author, filter shelf, sort")
	fmt.Fprintln(s.out, "Circulation: issue, return")
	if s.mgr.Accounts.IsAdmin() {
		fmt.Fprintln(s.out, "Catalog: add book, update book, delete book, save")
		fmt.Fprintln(s.out, "Accounts: list users, create user, delete user")
		fmt.Fprintln(s.out, "Article: 1-6 latin letters or digits. Title/author: no commas. Price >= 0.")
	}
	fmt.Fprintln(s.out, "System: help, logout, exit")
}

// ------------------ Session ------------------

func (s *shell) handleLogin() {
	username, ok := s.readLine("Username: ")
	if !ok {
		return
	}
	password, ok := s.promptPassword("Password: ")
	if !ok {
		return
	}
	if err := s.mgr.Accounts.Login(username, password); err != nil {
		fmt.Fprintln(s.out, "Login failed: invalid username or password.")
		return
	}
	role := library.RoleStandard
	if s.mgr.Accounts.IsAdmin() {
		role = library.RoleAdmin
	}
	fmt.Fprintf(s.out, "Logged in as %s (%s). Type help for commands.\n", username, role)
}

// ------------------ Books ------------------

func (s *shell) printBooks(books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No books found.")
		return
	}
	fmt.Fprintf(s.out, "%-7s %-25s %-25s %9s %6s  %s\n", "Article", "Title", "Author", "Price", "Shelf", "Status")
	fmt.Fprintln(s.out, strings.Repeat("-", 95))
	for _, b := range books {
		fmt.Fprintln(s.out, library.PrettyBook(b))
	}
}

func (s *shell) handleListBooks() {
	if s.mgr.Books.IsEmpty() {
		fmt.Fprintln(s.out, "No books in library.")
		return
	}
	s.printBooks(s.mgr.Books.GetAllBooks())
}

func (s *shell) handleFindBook() {
	article, ok := s.readLine("Article: ")
	if !ok {
		return
	}
	b, found := s.mgr.Books.Book(article)
	if !found {
		fmt.Fprintf(s.out, "No book with article %q.\n", article)
		return
	}
	s.printBooks([]library.Book{b})
}

func (s *shell) handleFilterAuthor() {
	author, ok := s.readLine("Author: ")
	if !ok {
		return
	}
	s.printBooks(s.mgr.Books.FilterByAuthor(author))
}

func (s *shell) handleFilterShelf() {
	shelf, ok := s.promptInt("Shelf number: ", 0)
	if !ok {
		return
	}
	s.printBooks(s.mgr.Books.FilterByShelf(shelf))
}

func (s *shell) handleSort() {
	key, ok := s.readLine("Sort by (title, author, price): ")
	if !ok {
		return
	}
	switch strings.ToLower(key) {
	case "title":
		s.mgr.Books.SortByTitle()
	case "author":
		s.mgr.Books.SortByAuthor()
	case "price":
		s.mgr.Books.SortByPrice()
	default:
		fmt.Fprintf(s.out, "Unknown sort key %q.\n", key)
		return
	}
	s.printBooks(s.mgr.Books.GetAllBooks())
}

func (s *shell) handleAddBook() {
	article, ok := s.promptString("Article: ", library.ValidateArticle)
	if !ok {
		return
	}
	if _, exists := s.mgr.Books.Book(article); exists {
		fmt.Fprintf(s.out, "Error: a book with article %q already exists.\n", article)
		return
	}
	b, ok := s.promptBook(article, nil)
	if !ok {
		return
	}
	if err := s.mgr.AddBook(b); err != nil {
		fmt.Fprintf(s.out, "Error adding book: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Added book %s.\n", article)
}

func (s *shell) handleUpdateBook() {
	article, ok := s.readLine("Article: ")
	if !ok {
		return
	}
	current, found := s.mgr.Books.Book(article)
	if !found {
		fmt.Fprintf(s.out, "No book with article %q.\n", article)
		return
	}
	s.printBooks([]library.Book{current})
	fmt.Fprintln(s.out, "Press Enter to keep the value in brackets.")
	b, ok := s.promptBook(article, &current)
	if !ok {
		return
	}
	if err := s.mgr.UpdateBook(article, b); err != nil {
		fmt.Fprintf(s.out, "Error updating book: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Updated book %s.\n", article)
}

func (s *shell) handleDeleteBook() {
	article, ok := s.readLine("Article: ")
	if !ok {
		return
	}
	yes, ok := s.promptYesNo(fmt.Sprintf("Delete book %s?", article))
	if !ok || !yes {
		return
	}
	if err := s.mgr.DeleteBook(article); err != nil {
		fmt.Fprintf(s.out, "Error deleting book: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Deleted book %s.\n", article)
}

func (s *shell) handleSave() {
	if err := s.mgr.Save(); err != nil {
		fmt.Fprintf(s.out, "Error saving catalog: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Catalog saved.")
}

// ------------------ Circulation ------------------

func (s *shell) handleIssue() {
	article, ok := s.readLine("Article: ")
	if !ok {
		return
	}
	var reader string
	if s.mgr.Accounts.IsAdmin() {
		if reader, ok = s.promptString("Reader full name: ", checkText); !ok {
			return
		}
	}
	who, err := s.mgr.IssueBook(article, reader)
	switch {
	case errors.Is(err, library.ErrUnavailable):
		fmt.Fprintln(s.out, "Error: the book is already on loan.")
	case err != nil:
		fmt.Fprintf(s.out, "Error issuing book: %v\n", err)
	default:
		fmt.Fprintf(s.out, "Book %s issued to %s.\n", article, who)
	}
}

func (s *shell) handleReturn() {
	article, ok := s.readLine("Article: ")
	if !ok {
		return
	}
	who, err := s.mgr.ReturnBook(article)
	switch {
	case errors.Is(err, library.ErrNotOnLoan):
		fmt.Fprintln(s.out, "Error: the book is already in the library.")
	case err != nil:
		fmt.Fprintf(s.out, "Error returning book: %v\n", err)
	default:
		fmt.Fprintf(s.out, "Book %s returned by %s.\n", article, who)
	}
}

// ------------------ Accounts ------------------

func (s *shell) handleListUsers() {
	users, err := s.mgr.Accounts.ListUsers()
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%-20s %s\n", "Username", "Role")
	fmt.Fprintln(s.out, strings.Repeat("-", 35))
	for _, u := range users {
		fmt.Fprintf(s.out, "%-20s %s\n", u.Username, u.Role)
	}
}

func (s *shell) handleCreateUser() {
	username, ok := s.promptString("Username: ", checkText)
	if !ok {
		return
	}
	password, ok := s.promptPassword(fmt.Sprintf("Password for %s: ", username))
	if !ok {
		return
	}
	if err := checkText(password); err != nil {
		fmt.Fprintf(s.out, "Error: password %v\n", err)
		return
	}
	isAdmin, ok := s.promptYesNo("Administrator?")
	if !ok {
		return
	}
	role := library.RoleStandard
	if isAdmin {
		role = library.RoleAdmin
	}
	if err := s.mgr.Accounts.CreateUser(username, password, role); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Created user %s.\n", username)
}

func (s *shell) handleDeleteUser() {
	username, ok := s.readLine("Username: ")
	if !ok {
		return
	}
	if err := s.mgr.Accounts.DeleteUser(username); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Deleted user %s.\n", username)
}
