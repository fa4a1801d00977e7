package matching

import (
	"strconv"
	"strings"
	"unicode"

	"realtor/core/types"
)

// Searchable is a record that can describe itself as search fragments
type Searchable interface {
	SearchFragments() []string
}

// Tokenize lowercases q and splits it on runs of whitespace and commas.
// A blank query yields an empty, non-nil slice.
func Tokenize(q string) []string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if fields == nil {
		return []string{}
	}
	return fields
}

// Haystack joins non-empty fragments with single spaces, lowercased
func Haystack(fragments []string) string {
	var b strings.Builder
	for _, f := range fragments {
		if f == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(f))
	}
	return b.String()
}

// Matches reports whether every token occurs in haystack
func Matches(tokens []string, haystack string) bool {
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// Match applies Matches to a record's projected fragments
func Match(tokens []string, s Searchable) bool {
	if len(tokens) == 0 {
		return true
	}
	return Matches(tokens, Haystack(s.SearchFragments()))
}

// Filter keeps the items matching all tokens, preserving order
func Filter[T Searchable](items []T, tokens []string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Match(tokens, item) {
			out = append(out, item)
		}
	}
	return out
}

// Text returns *s or "" for nil
func Text(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Number renders f as a plain decimal ("1800", "2.5"); nil renders ""
func Number(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// Count renders a count-like field with its unit phrases:
// 2 and "bed" give "2", "2 bed", "2 beds".
func Count(f *float64, unit string) []string {
	n := Number(f)
	if n == "" {
		return nil
	}
	return []string{n, n + " " + unit, n + " " + unit + "s"}
}

// Day renders a date as YYYY-MM-DD; nil or zero renders ""
func Day(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
