package model

import (
	"fmt"
	"strings"
)

// SubjectKind identifies what a subject string represents.
// Each kind has its own built-in catalog, but all kinds run through the same engine.
type SubjectKind string

const (
	// KindUsername is a handle probed across social and professional platforms.
	KindUsername SubjectKind = "username"

	// KindPhone is a phone number probed across messaging and lookup services.
	KindPhone SubjectKind = "phone"

	// KindSubdomain is a domain whose common subdomains are probed.
	KindSubdomain SubjectKind = "subdomain"

	// KindDirectory is a base URL whose common paths are probed.
	KindDirectory SubjectKind = "directory"
)

// SubjectKinds returns all supported kinds in display order.
func SubjectKinds() []SubjectKind {
	return []SubjectKind{KindUsername, KindPhone, KindSubdomain, KindDirectory}
}

// ParseSubjectKind converts a string to a SubjectKind.
// "dir" is accepted as an alias for "directory".
func ParseSubjectKind(s string) (SubjectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindUsername):
		return KindUsername, nil
	case string(KindPhone):
		return KindPhone, nil
	case string(KindSubdomain):
		return KindSubdomain, nil
	case string(KindDirectory), "dir":
		return KindDirectory, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSubjectKind, s)
	}
}

// String implements fmt.Stringer.
func (k SubjectKind) String() string {
	return string(k)
}
