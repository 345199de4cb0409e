package catalog

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
)

// yearsBack is how many past years are appended as suffixes.
const yearsBack = 30

var variationAffixes = []string{"_", "-", ".", "123", "1", "2", "3", "official", "real", "the"}

// Variations returns likely alternative handles for base, sorted and
// deduplicated. The base itself is included. now supplies the current year;
// limit caps the result when positive.
func Variations(base string, now time.Time, limit int) []string {
	base = strings.TrimSpace(base)
	if base == "" {
		return nil
	}

	set := map[string]struct{}{}
	add := func(v string) {
		if v != "" {
			set[v] = struct{}{}
		}
	}

	add(base)
	add(strings.ToLower(base))
	add(strings.ToUpper(base))
	add(capitalize(base))

	for i := range 10 {
		add(fmt.Sprintf("%s%d", base, i))
		add(fmt.Sprintf("%s0%d", base, i))
		add(fmt.Sprintf("%d%s", i, base))
	}

	for _, affix := range variationAffixes {
		add(base + affix)
		add(affix + base)
	}

	year := now.Year()
	for y := year - yearsBack; y <= year; y++ {
		add(fmt.Sprintf("%s%d", base, y))
		add(fmt.Sprintf("%s%02d", base, y%100))
	}

	for _, sep := range []string{"_", "-", ".", ""} {
		add(strings.ReplaceAll(base, " ", sep))
	}

	if strings.ContainsFunc(base, unicode.IsDigit) {
		add(strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return -1
			}
			return r
		}, base))
	}

	add(strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, base))

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
