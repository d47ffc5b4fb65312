package domain

import "go.trai.ch/zerr"

var (
	// ErrNetwork is matched by every failure to reach the API, including timeouts.
	ErrNetwork = zerr.New("network error")

	// ErrTimeout is matched when a request exceeded the configured client timeout.
	ErrTimeout = zerr.New("request timed out")

	// ErrDecode is matched when a response body could not be decoded.
	ErrDecode = zerr.New("malformed response")

	// ErrValidation is matched when a local pre-flight check rejected a request.
	ErrValidation = zerr.New("validation failed")

	// ErrAPI is matched when the server answered with a non-2xx status.
	ErrAPI = zerr.New("api error")

	// ErrInvalidID is returned when an entity identifier is empty.
	ErrInvalidID = zerr.New("identifier must not be empty")

	// ErrUnknownResource is returned when a resource name is not registered.
	ErrUnknownResource = zerr.New("unknown resource")

	// ErrUnsupportedOperation is returned when a resource does not support the requested operation.
	ErrUnsupportedOperation = zerr.New("operation not supported by resource")

	// ErrInvalidFilter is returned when a list filter field is unknown or has an unparsable value.
	ErrInvalidFilter = zerr.New("invalid filter")

	// ErrInvalidPayload is returned when a create or update payload cannot be decoded.
	ErrInvalidPayload = zerr.New("invalid payload")

	// ErrCacheClosed is returned when the query cache is used after Close.
	ErrCacheClosed = zerr.New("query cache is closed")

	// ErrMissingFetcher is returned when a query is subscribed for the first time without a fetcher.
	ErrMissingFetcher = zerr.New("no fetcher for uncached query")

	// ErrUnexpectedData is returned when a cached value does not have the requested type.
	ErrUnexpectedData = zerr.New("cached data has unexpected type")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when the effective configuration is not usable.
	ErrInvalidConfig = zerr.New("invalid configuration")
)
