package cache

import (
	"strings"

	"github.com/LavishGent/tiercache/internal/types"
)

// malformedChars cannot appear in a pattern. They are character-class and
// escape syntax on the Redis side, which the local tier does not implement.
const malformedChars = "[]\\"

// CompilePattern turns a glob into a key predicate. '*' matches any run of
// bytes including none, '?' exactly one byte; everything else is literal.
// Matching is byte-wise, as Redis MATCH is, so both tiers select the same
// keys: '?' does not match a multi-byte character such as 'é'.
// An empty pattern or one containing '[', ']' or '\' is malformed.
func CompilePattern(pattern string) (func(key string) bool, error) {
	if pattern == "" || strings.ContainsAny(pattern, malformedChars) {
		return nil, types.ErrInvalidPattern
	}
	if pattern == "*" {
		return func(string) bool { return true }, nil
	}
	if !strings.ContainsAny(pattern, "*?") {
		return func(key string) bool { return key == pattern }, nil
	}

	return func(key string) bool {
		return globMatch(pattern, key)
	}, nil
}

// MatchPattern reports whether key matches pattern. Malformed patterns match
// nothing.
func MatchPattern(pattern, key string) bool {
	match, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return match(key)
}

// globMatch backtracks only to the most recent '*', which keeps it linear
// in practice.
func globMatch(p, s string) bool {
	pi, si := 0, 0
	star, mark := -1, 0

	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == s[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, si
			pi++
		case star >= 0:
			mark++
			pi, si = star+1, mark
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// escapeGlob quotes glob syntax so s matches itself literally in a Redis
// MATCH pattern.
func escapeGlob(s string) string {
	if !strings.ContainsAny(s, "*?[]\\") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune("*?[]\\", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
