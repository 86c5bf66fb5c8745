package errors

// ErrorClassifier defines methods for programmatic error handling. Errors
// that implement this interface can be classified by category at the hosting
// boundary, where every failure is folded into a uniform result envelope.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category.
	// Examples: "validation", "not_found", "token", "introspection",
	// "schema_format", "remote_call", "config"
	ErrorType() string

	// IsRetryable returns true if the operation could be retried.
	IsRetryable() bool
}

// ErrorType implementations. Retryability follows the taxonomy: only
// transport-level introspection and remote-call failures are candidates for
// a caller-driven retry; everything else requires a changed input.

func (e *ValidationError) ErrorType() string { return "validation" }

// IsRetryable implements ErrorClassifier.
func (e *ValidationError) IsRetryable() bool { return false }

func (e *NotFoundError) ErrorType() string { return "not_found" }

// IsRetryable implements ErrorClassifier.
func (e *NotFoundError) IsRetryable() bool { return false }

func (e *ConfigError) ErrorType() string { return "config" }

// IsRetryable implements ErrorClassifier.
func (e *ConfigError) IsRetryable() bool { return false }

func (e *TokenError) ErrorType() string { return "token" }

// IsRetryable implements ErrorClassifier.
func (e *TokenError) IsRetryable() bool { return false }

func (e *IntrospectionError) ErrorType() string { return "introspection" }

// IsRetryable implements ErrorClassifier. Transport failures without a
// status code are retry candidates; anything the server rejected is not.
func (e *IntrospectionError) IsRetryable() bool { return e.StatusCode == 0 || e.StatusCode >= 500 }

func (e *SchemaFormatError) ErrorType() string { return "schema_format" }

// IsRetryable implements ErrorClassifier.
func (e *SchemaFormatError) IsRetryable() bool { return false }

func (e *RemoteCallError) ErrorType() string { return "remote_call" }

// IsRetryable implements ErrorClassifier.
func (e *RemoteCallError) IsRetryable() bool { return e.StatusCode == 0 || e.StatusCode >= 500 }
