package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces credential values entirely.
const MaskValue = "***REDACTED***"

// phoneVisibleDigits is how many trailing digits of a phone number stay visible.
const phoneVisibleDigits = 4

// credentialKeys are attribute keys whose values are always replaced.
var credentialKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"access_token":        true,
	"session":             true,
	"session_id":          true,
	"proxy_password":      true,
}

// credentialKeywords mark a key as sensitive when contained anywhere in it.
var credentialKeywords = []string{"password", "passwd", "secret", "token", "auth", "credential"}

// phoneKeys are attribute keys that carry a phone number.
var phoneKeys = map[string]bool{
	"phone":        true,
	"phone_number": true,
	"msisdn":       true,
}

// digitRunKeys are keys whose string values may embed a phone number
// (the subject itself, or a URL built from it).
var digitRunKeys = map[string]bool{
	"subject": true,
	"url":     true,
	"target":  true,
}

var (
	// credentialPatterns match values that are secrets regardless of key.
	credentialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
		regexp.MustCompile(`(?i)^bearer\s+.+`),
		regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
		regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
		regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
	}

	// phoneValue matches the shape of a whole-value phone number.
	phoneValue = regexp.MustCompile(`^\+?[0-9(][0-9 ()-]{5,}[0-9]$`)

	// digitRun matches phone-length digit sequences inside a larger string.
	digitRun = regexp.MustCompile(`\+?[0-9]{7,15}`)
)

// SecureHandler wraps an slog.Handler and scrubs attributes before they are written.
//
// Two kinds of data are scrubbed:
//   - credentials (auth headers, API keys, cookies) are replaced with MaskValue
//   - phone numbers keep only their last four digits, both as whole values
//     and when embedded in subjects or URLs
//
// Usernames and domains are not considered secret and pass through.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a SecureHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(scrub(a))
		return true
	})
	return h.handler.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = scrub(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(clean)}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func scrub(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, ga := range group {
			clean[i] = scrub(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	key := strings.ToLower(a.Key)
	if isCredentialKey(key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()

	switch {
	case isCredentialValue(s):
		return slog.String(a.Key, MaskValue)
	case phoneKeys[key] || looksLikePhone(s):
		return slog.String(a.Key, MaskPhone(s))
	case digitRunKeys[key]:
		return slog.String(a.Key, digitRun.ReplaceAllStringFunc(s, MaskPhone))
	}
	return a
}

func isCredentialKey(key string) bool {
	if credentialKeys[key] {
		return true
	}
	for _, kw := range credentialKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

func isCredentialValue(s string) bool {
	for _, p := range credentialPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// looksLikePhone reports whether s is a phone number on its own. A leading
// '+' or at least ten digits is required so that dates and short numeric
// strings are left alone.
func looksLikePhone(s string) bool {
	if !phoneValue.MatchString(s) {
		return false
	}
	return strings.HasPrefix(s, "+") || countDigits(s) >= 10
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// MaskPhone hides every digit of s except the last four.
// Non-digit characters are dropped, so "+1 (555) 123-4567" becomes "*******4567".
func MaskPhone(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) <= phoneVisibleDigits {
		return strings.Repeat("*", len(digits))
	}
	hidden := len(digits) - phoneVisibleDigits
	return strings.Repeat("*", hidden) + string(digits[hidden:])
}

// NewSecureLogger creates a text logger that scrubs its output.
// verbose selects Debug level; otherwise only warnings and errors are written.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
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
