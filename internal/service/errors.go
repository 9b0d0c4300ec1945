package service

import "errors"

var (
	// ErrItemExists is returned when adding an itemCode that is already stocked.
	ErrItemExists = errors.New("an item with this itemCode already exists")

	// ErrStoreUnavailable is returned when the document store rejected a read or write.
	ErrStoreUnavailable = errors.New("document store unavailable")

	// ErrCacheInvalidation is returned when a write was stored but the cached
	// inventory list could not be retired. The write is not reported as done.
	ErrCacheInvalidation = errors.New("inventory cache invalidation failed")
)
