// Package cache memoizes GitHub lookups for a single repository checkout.
//
// The cache is stored in the repository's git directory as .itg.cache, so
// it never shows up in the working tree and disappears with the clone.
//
// # File Format
//
// One entry per line, both halves base64 encoded so the delimiter can never
// appear inside a key or a JSON payload:
//
//	base64(key):base64(json(value))
//
// The reserved key __EXPIRY__ holds the store-wide expiry as epoch
// milliseconds. An absent or empty file is a cold cache.
//
// # Expiry
//
// There is a single expiry for the whole store, established on the first
// write (3 days by default, see [WithTTL]). Once it has passed, the next
// access clears every entry and truncates the file.
//
// # Lifecycle
//
// A [Store] reads the file lazily on first access and rewrites it in full
// on every [Store.Set]. Corrupt lines are skipped while loading and only
// cost an extra API call later.
//
// # Concurrency
//
// There is no cross-process locking. Two invocations racing on the same
// repository end up with the last writer's content.
//
// Use [Remember] for the get-or-fetch-then-set pattern:
//
//	user, err := cache.Remember(ctx, store, "USER", fetchViewer)
package cache
