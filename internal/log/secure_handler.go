package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue is the string used to replace secret values.
const MaskValue = "***REDACTED***"

// secretKeys are attribute keys whose values are always replaced with MaskValue.
var secretKeys = map[string]bool{
	// HTTP headers sent to providers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
	"hibp-api-key":        true,
	"x-key":               true,
	"x-api-key":           true,

	// Query parameters of the search and LLM APIs
	"key": true,
	"cx":  true,

	// Configuration
	"api_key":        true,
	"apikey":         true,
	"api-key":        true,
	"hibp_api_key":   true,
	"google_api_key": true,
	"google_cse_id":  true,
	"gemini_api_key": true,
	"leakb_api_key":  true,
	"password":       true,
	"secret":         true,
	"token":          true,
}

// secretKeywords are substrings that mark an attribute key as secret.
// The bare word "key" is not here: "query_key" or "cache_key" are fine to log.
var secretKeywords = []string{
	"password", "passwd", "secret", "token", "credential", "api_key", "apikey",
}

// secretPatterns match values that are secrets regardless of their key.
var secretPatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	// Google API keys
	regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`),
	// Long alphanumeric strings such as HIBP keys
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

// secretQueryParam matches credentials embedded in logged URLs.
var secretQueryParam = regexp.MustCompile(`(?i)([?&](?:key|cx|api_key|apikey)=)[^&\s]+`)

// SecureHandler wraps an slog.Handler and cleans every attribute before it
// reaches the underlying handler. API keys are replaced with MaskValue and
// e-mail addresses are shortened with MaskEmail, because the addresses being
// checked are the very identity data this tool is meant to protect.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler returns a SecureHandler wrapping handler.
// A nil handler means slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record's attributes and message, then forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	cleaned := slog.NewRecord(r.Time, r.Level, MaskEmails(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		cleaned.AddAttrs(cleanAttr(a))
		return true
	})
	return h.handler.Handle(ctx, cleaned)
}

// WithAttrs returns a handler with the cleaned attrs attached.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = cleanAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(cleaned)}
}

// WithGroup returns a handler that nests attributes under name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func cleanAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		cleaned := make([]slog.Attr, len(group))
		for i, ga := range group {
			cleaned[i] = cleanAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	}

	if isSecretKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		if a.Value.Kind() == slog.KindAny {
			if err, ok := a.Value.Any().(error); ok {
				return slog.String(a.Key, cleanString(err.Error()))
			}
		}
		return a
	}

	s := a.Value.String()
	if isSecretValue(s) {
		return slog.String(a.Key, MaskValue)
	}
	if cleaned := cleanString(s); cleaned != s {
		return slog.String(a.Key, cleaned)
	}
	return a
}

// cleanString masks e-mail addresses and credential query parameters in s.
func cleanString(s string) string {
	s = secretQueryParam.ReplaceAllString(s, "${1}"+MaskValue)
	return MaskEmails(s)
}

func isSecretKey(key string) bool {
	lower := strings.ToLower(key)
	if secretKeys[lower] {
		return true
	}
	for _, kw := range secretKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isSecretValue(value string) bool {
	for _, p := range secretPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger returns a text logger writing to w through a SecureHandler.
// verbose selects Debug level; otherwise only warnings and errors are written.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output, used by the HTTP server.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
