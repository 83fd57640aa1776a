package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 64
	PasswordMinLen = 8
)

// IsUsernameValid accepts lowercase letters, digits, dot, dash and
// underscore, starting with a letter or digit.
func IsUsernameValid(username string) bool {
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLen || n > UsernameMaxLen {
		return false
	}

	for i, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case i > 0 && (r == '.' || r == '-' || r == '_'):
		default:
			return false
		}
	}
	return true
}

func IsFullNameValid(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > 120 {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func IsPasswordAcceptable(password string) bool {
	return utf8.RuneCountInString(password) >= PasswordMinLen && len(password) <= 72
}
