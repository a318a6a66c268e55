package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"library-catalog/library"
)

// readLine prints prompt and returns the trimmed next line. ok is false
// once input is exhausted.
func (s *shell) readLine(prompt string) (string, bool) {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// promptString asks until check accepts the answer.
func (s *shell) promptString(prompt string, check func(string) error) (string, bool) {
	for {
		v, ok := s.readLine(prompt)
		if !ok {
			return "", false
		}
		if err := check(v); err != nil {
			fmt.Fprintf(s.out, "Invalid value: %v\n", err)
			continue
		}
		return v, true
	}
}

func (s *shell) promptInt(prompt string, minValue int) (int, bool) {
	for {
		v, ok := s.readLine(prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < minValue {
			fmt.Fprintf(s.out, "Please enter a whole number of at least %d.\n", minValue)
			continue
		}
		return n, true
	}
}

// promptField asks for one field. With keep set the current value is shown
// in brackets and an empty answer keeps it.
func (s *shell) promptField(label, current string, keep bool, check func(string) error) (string, bool) {
	prompt := label + ": "
	if keep {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	for {
		v, ok := s.readLine(prompt)
		if !ok {
			return "", false
		}
		if v == "" && keep {
			return current, true
		}
		if err := check(v); err != nil {
			fmt.Fprintf(s.out, "Invalid value: %v\n", err)
			continue
		}
		return v, true
	}
}

func (s *shell) promptYesNo(prompt string) (bool, bool) {
	for {
		v, ok := s.readLine(prompt + " (y/n): ")
		if !ok {
			return false, false
		}
		switch strings.ToLower(v) {
		case "y", "yes":
			return true, true
		case "n", "no":
			return false, true
		}
		fmt.Fprintln(s.out, "Please answer y or n.")
	}
}

func (s *shell) promptPassword(prompt string) (string, bool) {
	if s.readPassword == nil {
		return s.readLine(prompt)
	}
	pw, err := s.readPassword(prompt)
	if err != nil {
		fmt.Fprintf(s.out, "Error reading password: %v\n", err)
		return "", false
	}
	return pw, true
}

const maxTextField = 32

func checkText(v string) error {
	switch {
	case v == "":
		return fmt.Errorf("value is required")
	case len([]rune(v)) > maxTextField:
		return fmt.Errorf("at most %d characters", maxTextField)
	case strings.ContainsAny(v, ",:"):
		return fmt.Errorf("commas and colons are not allowed")
	}
	return nil
}

// parsePrice accepts a comma as the decimal separator.
func parsePrice(v string) (float64, error) {
	p, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, errors.New("price must be a number of at least 0")
	}
	return p, nil
}

func checkPrice(v string) error {
	_, err := parsePrice(v)
	return err
}

func checkShelf(v string) error {
	if n, err := strconv.Atoi(v); err != nil || n < 0 {
		return errors.New("shelf number must be a whole number of at least 0")
	}
	return nil
}

// promptBook asks for every field except the article. When current is not
// nil its values are offered as defaults and the reader is carried over.
func (s *shell) promptBook(article string, current *library.Book) (library.Book, bool) {
	b := library.Book{Article: article}
	keep := current != nil
	if keep {
		b = *current
		b.Article = article
	}

	var ok bool
	if b.BookTitle, ok = s.promptField("Title", b.BookTitle, keep, checkText); !ok {
		return b, false
	}
	if b.AuthorName, ok = s.promptField("Author", b.AuthorName, keep, checkText); !ok {
		return b, false
	}
	price, ok := s.promptField("Price", strconv.FormatFloat(b.Price, 'f', 2, 64), keep, checkPrice)
	if !ok {
		return b, false
	}
	shelf, ok := s.promptField("Shelf number", strconv.Itoa(b.ShelfNumber), keep, checkShelf)
	if !ok {
		return b, false
	}
	b.Price, _ = parsePrice(price)
	b.ShelfNumber, _ = strconv.Atoi(shelf)
	return b, true
}
