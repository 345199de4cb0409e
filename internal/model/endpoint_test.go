package model

import (
	"errors"
	"testing"
)

// TestEndpointURL tests template substitution.
func TestEndpointURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		template string
		subject  string
		expected string
		wantErr  error
	}{
		{"path slot", "https://github.com/{}", "alice", "https://github.com/alice", nil},
		{"host slot", "https://{}.tumblr.com", "alice", "https://alice.tumblr.com", nil},
		{"query slot", "https://example.com/p?u={}", "a b", "https://example.com/p?u=a b", nil},
		{"no slot", "https://example.com/", "alice", "", ErrInvalidTemplate},
		{"two slots", "https://{}.example.com/{}", "alice", "", ErrInvalidTemplate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := EndpointDescriptor{Name: "x", URLTemplate: tc.template}
			got, err := d.URL(tc.subject)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, expected %v", err, tc.wantErr)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestEndpointURLSubjectContainsPlaceholder ensures substitution happens once.
func TestEndpointURLSubjectContainsPlaceholder(t *testing.T) {
	t.Parallel()

	d := EndpointDescriptor{Name: "x", URLTemplate: "https://example.com/{}"}
	got, err := d.URL("{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://example.com/{}" {
		t.Errorf("got %q", got)
	}
}

// TestEndpointAccepts tests status acceptance.
func TestEndpointAccepts(t *testing.T) {
	t.Parallel()

	plain := EndpointDescriptor{}
	if !plain.Accepts(200) {
		t.Error("200 should be accepted by default")
	}
	if plain.Accepts(301) || plain.Accepts(404) {
		t.Error("only 200 should be accepted by default")
	}

	dir := EndpointDescriptor{AcceptStatus: []int{200, 301, 302, 403}}
	for _, code := range []int{200, 301, 302, 403} {
		if !dir.Accepts(code) {
			t.Errorf("%d should be accepted", code)
		}
	}
	if dir.Accepts(404) {
		t.Error("404 should not be accepted")
	}
}

// TestParseSubjectKind tests kind parsing.
func TestParseSubjectKind(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected SubjectKind
		wantErr  bool
	}{
		{"username", KindUsername, false},
		{"PHONE", KindPhone, false},
		{" subdomain ", KindSubdomain, false},
		{"dir", KindDirectory, false},
		{"directory", KindDirectory, false},
		{"email", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSubjectKind(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownSubjectKind) {
					t.Errorf("expected ErrUnknownSubjectKind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %q, expected %q", got, tc.expected)
			}
		})
	}
}
