// Package httpclient provides the HTTP client factory used for every call
// against a Dataverse instance: metadata introspection, token-adjacent
// traffic, and synthesized operation execution.
//
// The factory composes transport layers to provide:
//   - Request logging with sanitized URLs (filter values redacted)
//   - User-Agent header injection
//   - TLS 1.2+ with secure defaults and connection pooling
//   - Optional retries with exponential backoff honoring Retry-After,
//     which Dataverse sends when it throttles
//
// Retries are off by default: the core introspection and execution paths are
// single-shot by design, and retry policy belongs to whoever constructs the
// client.
//
// Example usage:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.UserAgent = "dynamics-mcp/1.0"
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Get("https://org.crm.dynamics.com/api/data/v9.2/WhoAmI")
package httpclient
