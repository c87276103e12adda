package cache

import "errors"

// ErrNotFound is returned when a cache entry is absent or expired
var ErrNotFound = errors.New("cache entry not found")
