package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrAccountNotFound is returned when the first page carries no account label.
	ErrAccountNotFound = errors.New("account label not found on first page")

	// ErrAccountMismatch is returned when the advice belongs to another account.
	ErrAccountMismatch = errors.New("account number does not match")
)

var accountLabelPattern = regexp.MustCompile(`(?i)Your\s+A/c\s+with\s+us\s*:\s*(\d+)`)

// AccountMismatchError rejects a payment advice before it is parsed.
type AccountMismatchError struct {
	Expected string
	Found    string // empty when the label is absent
}

func (e *AccountMismatchError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("payment advice rejected: %v (expected account %s)", ErrAccountNotFound, e.Expected)
	}
	return fmt.Sprintf("payment advice rejected: expected account %s, found %s", e.Expected, e.Found)
}

// Unwrap returns ErrAccountNotFound or ErrAccountMismatch.
func (e *AccountMismatchError) Unwrap() error {
	if e.Found == "" {
		return ErrAccountNotFound
	}
	return ErrAccountMismatch
}

// FindAccountNumber returns the digits after "Your A/c with us :", or "".
func FindAccountNumber(text string) string {
	m := accountLabelPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// VerifyAccount checks the first page against the expected account number.
func VerifyAccount(pages []string, expected string) (string, error) {
	expected = strings.TrimSpace(expected)
	var found string
	if len(pages) > 0 {
		found = FindAccountNumber(pages[0])
	}
	if found == "" || found != expected {
		return found, &AccountMismatchError{Expected: expected, Found: found}
	}
	return found, nil
}
