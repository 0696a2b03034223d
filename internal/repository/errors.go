// Package repository implements the key-value stores that hold the roster
// snapshot.  Every store satisfies KVStore; Open picks one from
// configuration.
package repository

import "errors"

// ErrUnknownDriver is returned by Open when STORE_DRIVER names no known store.
var ErrUnknownDriver = errors.New("unknown store driver")

// ErrUnavailable is returned by Open when the backing service cannot be reached.
var ErrUnavailable = errors.New("store backend unavailable")
