package types

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// globMetaChars are characters with special meaning in DeleteByPattern.
const globMetaChars = "*?[]\\"

// KeyValidationConfig contains configuration for cache key validation.
type KeyValidationConfig struct {
	ReservedPrefixes []string
	MaxKeyLength     int
	AllowEmpty       bool
	AllowWhitespace  bool
	AllowGlobChars   bool
}

// DefaultKeyValidationConfig returns a KeyValidationConfig with default values.
func DefaultKeyValidationConfig() KeyValidationConfig {
	return KeyValidationConfig{
		MaxKeyLength:    512,
		AllowEmpty:      false,
		AllowWhitespace: false,
		AllowGlobChars:  false,
	}
}

// KeyValidator rejects keys that cannot be stored or addressed safely in
// both tiers. It does not parse the <domain>:<qualifier>:<id> convention.
type KeyValidator struct {
	config KeyValidationConfig
}

func NewKeyValidator(config KeyValidationConfig) *KeyValidator {
	return &KeyValidator{config: config}
}

// Validate returns an error wrapping ErrInvalidKey if key is unusable.
func (v *KeyValidator) Validate(key string) error {
	if key == "" {
		if v.config.AllowEmpty {
			return nil
		}
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}

	if v.config.MaxKeyLength > 0 && len(key) > v.config.MaxKeyLength {
		return fmt.Errorf("%w: key length %d exceeds maximum %d bytes",
			ErrInvalidKey, len(key), v.config.MaxKeyLength)
	}

	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: key contains invalid UTF-8", ErrInvalidKey)
	}

	for i, r := range key {
		switch {
		case r < 32 || r == 127:
			return fmt.Errorf("%w: control character at position %d", ErrInvalidKey, i)
		case !v.config.AllowWhitespace && unicode.IsSpace(r):
			return fmt.Errorf("%w: whitespace at position %d", ErrInvalidKey, i)
		case !v.config.AllowGlobChars && strings.ContainsRune(globMetaChars, r):
			// A key containing glob characters could never be told apart
			// from a pattern in DeleteByPattern.
			return fmt.Errorf("%w: glob character %q at position %d", ErrInvalidKey, r, i)
		}
	}

	for _, prefix := range v.config.ReservedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return fmt.Errorf("%w: key uses reserved prefix %q", ErrInvalidKey, prefix)
		}
	}

	return nil
}
