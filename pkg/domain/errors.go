package domain

import "errors"

// ErrSequenceNotFound is returned when a sequence document cannot be located.
var ErrSequenceNotFound = errors.New("sequence not found")

// ErrNodeNotFound is returned when a message-id does not exist in a sequence.
var ErrNodeNotFound = errors.New("node not found")

// ErrCacheMiss is returned by variant caches when no entry exists.
var ErrCacheMiss = errors.New("cache miss")
