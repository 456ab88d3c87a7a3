package exposure

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/idguard/internal/model"
)

// MinQueryLength is the shortest username or name query accepted.
const MinQueryLength = 3

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	fullNamePattern = regexp.MustCompile(`^[A-Za-z ]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ClassifyQuery labels a username or name query. Letters and spaces only
// is a full name, letters, digits and underscores is a username, anything
// else is unknown. The full-name test runs first, so a single word of
// letters counts as a name.
func ClassifyQuery(q string) model.InputType {
	q = strings.TrimSpace(q)
	switch {
	case q == "":
		return model.InputUnknown
	case fullNamePattern.MatchString(q):
		return model.InputFullName
	case usernamePattern.MatchString(q):
		return model.InputUsername
	default:
		return model.InputUnknown
	}
}

func queryTooShort(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) < MinQueryLength
}

// emailSearchTerm replaces the "@" with a space, which paste sites and
// search engines match better than the full address.
func emailSearchTerm(email string) string {
	return strings.Replace(email, "@", " ", 1)
}
