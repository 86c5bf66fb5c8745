package errors

import "fmt"

// ValidationError represents caller-supplied arguments failing a
// precondition (missing id, missing search value, malformed input). It is
// always caller-correctable and never retryable.
type ValidationError struct {
	// Field identifies which argument failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NotFoundError represents a resource not found error.
// Use this when a requested endpoint or operation does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "endpoint", "operation")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError represents configuration problems: a missing or invalid base
// URL, missing credential fields, or no recognized auth flow.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "url", "credentials")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TokenError represents a failed token acquisition: the token endpoint
// returned a failure, the response was unparsable, or it lacked an access
// token field. Fatal for the registration attempt; not retried.
type TokenError struct {
	// Flow is the OAuth flow that failed ("client_credentials" or "password")
	Flow string

	// Reason describes the failure when there is no underlying error
	Reason string

	// Cause is the underlying error from the token endpoint
	Cause error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	msg := fmt.Sprintf("token acquisition failed (%s flow)", e.Flow)
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TokenError) Unwrap() error {
	return e.Cause
}

// IntrospectionError represents a failed metadata fetch: the transport
// failed or the HTTP status was not successful. Kept distinct from
// SchemaFormatError so callers can treat transport failures (retry/backoff
// territory) differently from format drift.
type IntrospectionError struct {
	// Resource is the metadata resource that was being fetched
	Resource string

	// StatusCode is the HTTP status, when a response was received
	StatusCode int

	// Body is the remote response body, carried for root-cause logging
	Body string

	// Cause is the underlying transport error, when no response was received
	Cause error
}

// Error implements the error interface.
func (e *IntrospectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("introspection of %s failed: %v", e.Resource, e.Cause)
	}
	return fmt.Sprintf("introspection of %s failed [HTTP %d]: %s", e.Resource, e.StatusCode, e.Body)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *IntrospectionError) Unwrap() error {
	return e.Cause
}

// SchemaFormatError represents a malformed or unexpected metadata JSON
// envelope. A format error means the decoder needs updating for a new
// metadata shape, not that the call should be retried.
type SchemaFormatError struct {
	// Resource is the metadata resource whose payload failed to decode
	Resource string

	// Cause is the underlying decode error
	Cause error
}

// Error implements the error interface.
func (e *SchemaFormatError) Error() string {
	return fmt.Sprintf("unexpected metadata format from %s: %v", e.Resource, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *SchemaFormatError) Unwrap() error {
	return e.Cause
}

// RemoteCallError represents a synthesized operation's HTTP call returning a
// non-success status or failing in transport. Never retried automatically.
type RemoteCallError struct {
	// Operation is the synthesized operation name
	Operation string

	// StatusCode is the HTTP status, when a response was received
	StatusCode int

	// Body is the remote response body
	Body string

	// Cause is the underlying transport error, when no response was received
	Cause error
}

// Error implements the error interface.
func (e *RemoteCallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("operation %s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("operation %s failed [HTTP %d]: %s", e.Operation, e.StatusCode, e.Body)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *RemoteCallError) Unwrap() error {
	return e.Cause
}
