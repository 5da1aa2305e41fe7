package types

import "strings"

// NullableText trims s and maps blank input to nil.
func NullableText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// FoldASCII lower-cases ASCII letters only, matching SQLite's LOWER. Other
// runes pass through untouched.
func FoldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
