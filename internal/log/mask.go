package log

import (
	"regexp"
	"strings"
)

// emailPattern finds e-mail addresses inside arbitrary text.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// MaskEmail shortens the local part of an e-mail address to its first
// character: "john.doe@example.com" becomes "j***@example.com".
// Strings without an "@" are returned unchanged.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:1] + "***" + email[at:]
}

// MaskEmails applies MaskEmail to every e-mail address found in s.
func MaskEmails(s string) string {
	if !strings.Contains(s, "@") {
		return s
	}
	return emailPattern.ReplaceAllStringFunc(s, MaskEmail)
}
