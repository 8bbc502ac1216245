package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/anonid/internal/common"
	"github.com/dmitrijs2005/anonid/internal/identity"
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// ValidateUsername checks that username is non-empty valid UTF-8 without
// control characters and at most maxLength runes long.
func ValidateUsername(username string, maxLength uint) error {
	if username == "" {
		return validationError("username is empty")
	}
	if !utf8.ValidString(username) {
		return validationError("username is not valid UTF-8")
	}
	if strings.IndexFunc(username, unicode.IsControl) >= 0 {
		return validationError("username contains control characters")
	}
	if n := uint(utf8.RuneCountInString(username)); n > maxLength {
		return validationError("username is %d characters long, the limit is %d", n, maxLength)
	}
	return nil
}

// ValidateAuthAddress checks that address can be merged unambiguously: it must
// be non-empty, printable and must not contain the separator.
func ValidateAuthAddress(address string) error {
	if address == "" {
		return validationError("auth address is empty")
	}
	if strings.Contains(address, identity.Separator) {
		return validationError("auth address must not contain %q", identity.Separator)
	}
	if strings.IndexFunc(address, func(r rune) bool { return unicode.IsControl(r) || unicode.IsSpace(r) }) >= 0 {
		return validationError("auth address contains whitespace or control characters")
	}
	return nil
}
