package errors

import "errors"

// Domain errors. The dashboard is read-only, so the taxonomy is small:
// everything is some flavor of "the warehouse did not give us usable rows".
var (
	// Warehouse access
	ErrWarehouseUnavailable = errors.New("warehouse unavailable")
	ErrQueryFailed          = errors.New("warehouse query failed")
	ErrMalformedRow         = errors.New("malformed warehouse row")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrInternal    = errors.New("internal server error")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewWarehouseError wraps a connection or query failure. The whole render
// pass aborts on these; no partial dashboard is shown.
func NewWarehouseError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "The data warehouse could not be queried",
		Code:       "WAREHOUSE_ERROR",
		StatusCode: 502,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}
