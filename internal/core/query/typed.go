package query

import (
	"context"
	"fmt"
)

// Fetch is the typed form of Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, Erase(fn))
	return cast[T](key, v, err)
}

// Refresh is the typed form of Cache.Refetch.
func Refresh[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := c.Refetch(ctx, key, Erase(fn))
	return cast[T](key, v, err)
}

// Data returns the snapshot's data as T, if it holds one.
func Data[T any](s Snapshot) (T, bool) {
	v, ok := s.Data.(T)
	return v, ok
}

// Erase adapts a typed fetch function to a Fetcher.
func Erase[T any](fn func(context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fn(ctx)
	}
}

func cast[T any](key Key, v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query: %s holds %T", key, v)
	}
	return t, nil
}
