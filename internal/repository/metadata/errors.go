package metadata

import "errors"

var ErrCacheMiss = errors.New("metadata not cached")
