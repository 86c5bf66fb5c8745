package httpclient

import "net/url"

// sensitiveParams are query parameters whose values may carry customer data
// or credentials and must not reach the logs. OData $filter and $search
// embed record field values; the rest are common credential carriers.
var sensitiveParams = map[string]bool{
	"$filter":       true,
	"$search":       true,
	"access_token":  true,
	"client_secret": true,
	"code":          true,
	"password":      true,
	"token":         true,
}

// sanitizeURL returns a loggable form of the URL with sensitive query values
// replaced by a redaction marker. Structural parameters ($select, $top,
// $orderby) pass through untouched since they name schema, not data.
func sanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	query := u.Query()
	changed := false
	for param := range query {
		if sensitiveParams[param] {
			query.Set(param, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	sanitized := *u
	sanitized.RawQuery = query.Encode()
	return sanitized.String()
}
