package model

import "errors"

var (
	// ErrInvalidShipment is returned for malformed input, before any I/O happens.
	ErrInvalidShipment = errors.New("invalid shipment")
	// ErrStorageUnavailable is returned when the storage backend cannot serve a query.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrNotFound is returned when a shipment, split or group does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMatchingFailed wraps any storage failure that aborted a matching call.
	ErrMatchingFailed = errors.New("matching failed")
	// ErrCacheUnavailable marks cache backend failures. It is logged, never surfaced.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrPublishFailed marks event publication failures. It is logged, never surfaced.
	ErrPublishFailed = errors.New("publish failed")
)
