package lang

import (
	"log/slog"
	"strings"
)

// Recipient is a normalized (lowercase) email address of the form
// user@domain.
type Recipient string

// ParseRecipient lowercases s and validates it as user@domain, where user is
// made of letters, digits and "_.+-" and domain of letters, digits and "_.-".
func ParseRecipient(s string) (Recipient, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	user, domain, ok := strings.Cut(s, "@")
	if !ok || !validUser(user) || !validDomain(domain) {
		return "", ErrInvalidRecipient.With(slog.String("address", s))
	}

	return Recipient(s), nil
}

// User returns the part before '@'.
func (r Recipient) User() string {
	user, _, _ := strings.Cut(string(r), "@")

	return user
}

// Domain returns the part after '@'.
func (r Recipient) Domain() string {
	_, domain, _ := strings.Cut(string(r), "@")

	return domain
}

func (r Recipient) String() string { return string(r) }

// ValidName reports whether s matches the list name grammar [a-z0-9_.-]+.
func ValidName(s string) bool {
	return s != "" && strings.IndexFunc(s, func(c rune) bool {
		return !isNameChar(c)
	}) < 0
}

func validUser(s string) bool {
	return s != "" && strings.IndexFunc(s, func(c rune) bool {
		return !isNameChar(c) && c != '+'
	}) < 0
}

func validDomain(s string) bool { return ValidName(s) }

func isNameChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '.' || c == '-'
}

// isWordChar reports whether c may appear in a name or address token, in
// either case.
func isWordChar(c rune) bool {
	return isNameChar(c) || (c >= 'A' && c <= 'Z') || c == '+' || c == '@'
}
