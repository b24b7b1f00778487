package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication and token errors
	ErrAuthFailed        = fmt.Errorf("authentication failed")
	ErrExchangeFailed    = fmt.Errorf("token exchange failed")
	ErrTokenExpired      = fmt.Errorf("access token expired")
	ErrRefreshFailed     = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken    = fmt.Errorf("no refresh token available")
	ErrNotConnected      = fmt.Errorf("platform not connected")
	ErrReconnectRequired = fmt.Errorf("reconnect required")

	// API and service errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")
	ErrMailDelivery        = fmt.Errorf("mail delivery failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
