package cache

import (
	"errors"
	"testing"

	"github.com/LavishGent/tiercache/internal/types"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "anything", true},
		{"*", "", true},
		{"ns:*", "ns:a", true},
		{"ns:*", "ns:", true},
		{"ns:*", "other:a", false},
		{"*:7", "user:permissions:7", true},
		{"user:*:7", "user:permissions:7", true},
		{"user:*:7", "user:permissions:8", false},
		{"user:?", "user:a", true},
		{"user:?", "user:ab", false},
		{"user:?", "user:", false},
		{"user:??:x", "user:ab:x", true},
		{"a*b*c", "aXXbYYc", true},
		{"a*b*c", "aXXbYY", false},
		{"*a*", "banana", true},
		{"dict:é?", "dict:éx", true},
		{"u:?", "u:é", false},
		{"u:??", "u:é", true},
		{"u:*", "u:é", true},
		{"config:site", "config:site", true},
		{"config:site", "config:sites", false},
		{"**", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.key, func(t *testing.T) {
			if got := MatchPattern(tt.pattern, tt.key); got != tt.want {
				t.Errorf("MatchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestCompilePatternMalformed(t *testing.T) {
	for _, pattern := range []string{"", "user:[ab]", "user:]", `user:\*`} {
		t.Run(pattern, func(t *testing.T) {
			_, err := CompilePattern(pattern)
			if !errors.Is(err, types.ErrInvalidPattern) {
				t.Errorf("CompilePattern(%q) error = %v, want ErrInvalidPattern", pattern, err)
			}
			if MatchPattern(pattern, pattern) {
				t.Errorf("MatchPattern(%q) matched, want no match", pattern)
			}
		})
	}
}

func TestEscapeGlob(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"app:", "app:"},
		{"a*b", `a\*b`},
		{"q?[x]", `q\?\[x\]`},
		{`back\`, `back\\`},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
