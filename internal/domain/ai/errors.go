package ai

import "errors"

// Sentinel errors reported by the vision provider adapter. The router maps
// each of these to a distinct HTTP status.
var (
	// ErrNoImages indicates an analysis was requested with an empty image list.
	ErrNoImages = errors.New("no images provided")

	// ErrMissingAPIKey indicates the vision provider credential is not configured.
	ErrMissingAPIKey = errors.New("vision api key missing")

	// ErrTimeout indicates the vision request exceeded its deadline.
	ErrTimeout = errors.New("vision request timed out")

	// ErrNetwork indicates the vision provider could not be reached.
	ErrNetwork = errors.New("vision provider unreachable")

	// ErrParse indicates the vision response was not valid against the expected schema.
	ErrParse = errors.New("vision response parse failed")

	// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("vision quota exceeded")
)
