// Package codec encodes typed values into the string cache. The cache
// itself stores opaque strings; serialization belongs to its callers.
package codec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// Serializer converts values to and from their cached form.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, dest any) error
}

// JSONSerializer implements Serializer with encoding/json.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

// Codec pairs a provider with a serializer.
type Codec struct {
	provider   types.CacheProvider
	serializer Serializer
}

// New returns a JSON codec over p.
func New(p types.CacheProvider) *Codec {
	return NewWithSerializer(p, JSONSerializer{})
}

func NewWithSerializer(p types.CacheProvider, s Serializer) *Codec {
	return &Codec{provider: p, serializer: s}
}

// Get decodes the cached value for key into dest. A value that fails to
// decode is deleted and reported as a miss. Only a bad dest is an error.
func (c *Codec) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.provider.Get(ctx, key)
	if !ok {
		return false, nil
	}

	if err := c.serializer.Unmarshal([]byte(raw), dest); err != nil {
		var invalid *json.InvalidUnmarshalError
		if errors.As(err, &invalid) {
			return false, err
		}
		c.provider.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Set encodes v and stores it. ttl <= 0 means the provider default.
func (c *Codec) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := c.serializer.Marshal(v)
	if err != nil {
		return &types.CacheError{Op: "set", Key: key, Err: fmt.Errorf("encode: %w", err)}
	}
	c.provider.Set(ctx, key, string(data), ttl)
	return nil
}

// GetJSON decodes the JSON value cached under key into dest.
func GetJSON(ctx context.Context, p types.CacheProvider, key string, dest any) (bool, error) {
	return New(p).Get(ctx, key, dest)
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, p types.CacheProvider, key string, v any, ttl time.Duration) error {
	return New(p).Set(ctx, key, v, ttl)
}
