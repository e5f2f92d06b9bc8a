package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Query resolution errors
	ErrInvalidReference     = fmt.Errorf("invalid resource reference")
	ErrUnsupportedReference = fmt.Errorf("unsupported resource reference")

	// API and service errors
	ErrUpstream           = fmt.Errorf("upstream request failed")
	ErrMalformedResponse  = fmt.Errorf("malformed response payload")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// UpstreamError reports a non-success HTTP status from the token or API endpoint.
//
// It matches [ErrUpstream] with [errors.Is].
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%v: %s returned status %d", ErrUpstream, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s returned status %d: %s", ErrUpstream, e.Endpoint, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }
