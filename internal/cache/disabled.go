package cache

import (
	"context"
	"time"

	"github.com/LavishGent/tiercache/internal/types"
)

// DisabledRemoteCache stands in for L2 when it is turned off. Every read is
// a miss and every write is dropped, so the provider runs L1-only.
type DisabledRemoteCache struct{}

func NewDisabledRemoteCache() *DisabledRemoteCache {
	return &DisabledRemoteCache{}
}

func (c *DisabledRemoteCache) Name() string { return "remote-disabled" }

func (c *DisabledRemoteCache) IsAvailable() bool { return false }

func (c *DisabledRemoteCache) Get(context.Context, string) (string, bool) { return "", false }

func (c *DisabledRemoteCache) Set(context.Context, string, string, time.Duration) {}

func (c *DisabledRemoteCache) Delete(context.Context, string) {}

func (c *DisabledRemoteCache) DeleteByPattern(context.Context, string) {}

func (c *DisabledRemoteCache) Exists(context.Context, string) bool { return false }

func (c *DisabledRemoteCache) Expire(context.Context, string, time.Duration) {}

func (c *DisabledRemoteCache) Close() error { return nil }

var _ types.RemoteCache = (*DisabledRemoteCache)(nil)
