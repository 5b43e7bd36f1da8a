// Package tiercache is a fail-open two-tier string cache: a bounded
// in-process L1 in front of a shared Redis L2.
//
// It shields a system of record from repeated reads of slow-changing data
// such as permissions, menus, roles, configuration and dictionaries. Every
// operation is best effort: a Redis failure turns into a miss or a no-op,
// never an error, so callers always fall through to their loader.
//
// # Quick Start
//
//	reg, err := tiercache.New(tiercache.WithRedisAddress("localhost:6379"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Close()
//
//	p := reg.Provider()
//	p.Set(ctx, "user:permissions:42", perms, 30*time.Minute)
//	v, ok := p.Get(ctx, "user:permissions:42")
//
// # Reads and Writes
//
// Get checks L1, then L2; an L2 hit is copied into L1 before returning.
// Set writes L2 with the caller's TTL (zero or negative means the
// configured default) and then L1 with the L1 instance's own TTL. Delete
// invalidates L1 before L2. DeleteByPattern takes a glob where '*' matches
// any run of characters and '?' exactly one.
//
// # Consistency
//
// Each process has its own L1 and nothing propagates invalidations between
// them. After a write on one node, other nodes may serve the old value
// until their L1 entry expires. Keep L1 TTLs short for data that changes.
//
// # Typed Values
//
// The cache stores strings. Use a Codec, or codec.Loader for read-through
// with collapsed concurrent loads:
//
//	c := tiercache.NewCodec(reg.Provider())
//	if ok, _ := c.Get(ctx, key, &menu); !ok {
//	    menu = loadMenu()
//	    _ = c.Set(ctx, key, menu, 0)
//	}
//
// # Named L1 Instances
//
// Besides the provider's own L1, the registry builds one L1 per entry in
// Config.Caches, each with its own engine (lru or bigcache), size and TTL.
// Operators inspect and clear them by name without touching Redis.
//
// # Configuration
//
//	reg, err := tiercache.NewFromFile("tiercache.yaml")
//
// loads JSON or YAML, applies an optional .env file and TIERCACHE_*
// environment overrides, then validates.
//
// # Thread Safety
//
// Every type in this package is safe for concurrent use.
package tiercache
