package catalog

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/idna"

	"github.com/nao1215/footprint/internal/model"
)

// Phone numbers are bounded by the E.164 maximum.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Normalize validates raw for kind and returns the form substituted into URLs.
//
//   - username: trimmed; must not contain whitespace, '/', '?' or '#'
//   - phone: digits only, leading '+' and separators removed
//   - subdomain: lowercase ASCII (IDNA) domain without scheme, port or path
//   - directory: http(s) base URL without trailing slash, query or fragment
func Normalize(kind model.SubjectKind, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidSubject, kind)
	}

	switch kind {
	case model.KindUsername:
		return normalizeUsername(raw)
	case model.KindPhone:
		return normalizePhone(raw)
	case model.KindSubdomain:
		return normalizeDomain(raw)
	case model.KindDirectory:
		return normalizeBaseURL(raw)
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownSubjectKind, kind)
	}
}

func normalizeUsername(raw string) (string, error) {
	for _, r := range raw {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune("/?#", r) {
			return "", fmt.Errorf("%w: username %q contains %q", ErrInvalidSubject, raw, r)
		}
	}
	return raw, nil
}

func normalizePhone(raw string) (string, error) {
	var sb strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '+' && i == 0:
		case strings.ContainsRune(" -.()", r):
		default:
			return "", fmt.Errorf("%w: phone number %q contains %q", ErrInvalidSubject, raw, r)
		}
	}

	digits := sb.String()
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", fmt.Errorf("%w: phone number must have %d-%d digits, got %d",
			ErrInvalidSubject, minPhoneDigits, maxPhoneDigits, len(digits))
	}
	return digits, nil
}

func normalizeDomain(raw string) (string, error) {
	host := raw
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: domain %q: %w", ErrInvalidSubject, raw, err)
	}
	if !strings.Contains(ascii, ".") {
		return "", fmt.Errorf("%w: domain %q has no top-level domain", ErrInvalidSubject, raw)
	}
	return strings.ToLower(ascii), nil
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSubject, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: base URL %q must use http or https", ErrInvalidSubject, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: base URL %q has no host", ErrInvalidSubject, raw)
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String(), nil
}
