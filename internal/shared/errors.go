package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// OAuth errors
	ErrMalformedState     = fmt.Errorf("malformed oauth state")
	ErrStateMismatch      = fmt.Errorf("oauth state mismatch")
	ErrProviderError      = fmt.Errorf("provider token exchange failed")
	ErrProviderRedirected = fmt.Errorf("provider redirected with error")
	ErrMissingCode        = fmt.Errorf("missing authorization code")

	// Service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Catalog errors
	ErrInvalidCatalog = fmt.Errorf("invalid catalog")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
