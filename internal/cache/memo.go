package cache

import (
	"context"
	"encoding/json"
)

// GetAs decodes the value stored under key into T.
// A value that no longer fits T is reported as absent so callers refetch it.
func GetAs[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var v T

	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false, nil
	}
	return v, true, nil
}

// Put stores v under key and returns it unchanged, so fetch paths can end
// with `return cache.Put(ctx, s, key, fetched)`.
func Put[T any](ctx context.Context, s *Store, key string, v T) (T, error) {
	if err := s.Set(ctx, key, v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Remember returns the cached value for key, or calls fetch and caches its result.
func Remember[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok, err := GetAs[T](ctx, s, key); err != nil || ok {
		return v, err
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return Put(ctx, s, key, v)
}
