package provider

import "errors"

// Common errors returned by provider clients and the registry.
var (
	// ErrInvalidConfig is returned when a client cannot be constructed from
	// the supplied configuration (missing API key, empty model name).
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrUnknownProvider is returned by the registry when the requested
	// provider name is empty or not registered.
	ErrUnknownProvider = errors.New("unknown or unavailable provider")

	// ErrRateLimited is returned when the upstream API kept rejecting calls
	// with quota or rate-limit failures until the retry budget ran out.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrTemporary is returned when a network or 5xx class failure persisted
	// through all retry attempts.
	ErrTemporary = errors.New("temporary provider error")

	// ErrDownloadFailed is returned when a source image could not be fetched
	// after all download attempts.
	ErrDownloadFailed = errors.New("image download failed")

	// ErrShutdown is returned by ShutdownAll when one or more clients failed
	// to release their resources. The per-provider failures are joined onto it.
	ErrShutdown = errors.New("provider shutdown failed")
)
