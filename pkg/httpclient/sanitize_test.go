package httpclient

import (
	"net/url"
	"strings"
	"testing"
)

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name        string
		rawURL      string
		wantRedact  []string
		wantPresent []string
	}{
		{
			name:        "filter value is redacted",
			rawURL:      "https://org.crm.dynamics.com/api/data/v9.2/accounts?$filter=name+eq+%27Acme%27&$top=50",
			wantRedact:  []string{"Acme"},
			wantPresent: []string{"$top=50", "REDACTED"},
		},
		{
			name:        "search value is redacted",
			rawURL:      "https://org.crm.dynamics.com/api/data/v9.2/contacts?$search=smith",
			wantRedact:  []string{"smith"},
			wantPresent: []string{"REDACTED"},
		},
		{
			name:        "credential parameters are redacted",
			rawURL:      "https://login.example.com/token?client_secret=s3cret&password=hunter2&code=abc123",
			wantRedact:  []string{"s3cret", "hunter2", "abc123"},
			wantPresent: []string{"REDACTED"},
		},
		{
			name:        "structural parameters pass through",
			rawURL:      "https://org.crm.dynamics.com/api/data/v9.2/accounts?$select=name,revenue&$orderby=name&$top=10",
			wantPresent: []string{"$select=", "name", "revenue", "$orderby=", "$top=10"},
		},
		{
			name:        "no query string",
			rawURL:      "https://org.crm.dynamics.com/api/data/v9.2/EntityDefinitions",
			wantPresent: []string{"EntityDefinitions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			if err != nil {
				t.Fatalf("failed to parse test URL: %v", err)
			}

			got := sanitizeURL(u)

			for _, secret := range tt.wantRedact {
				if strings.Contains(got, secret) {
					t.Errorf("sanitized URL still contains %q: %s", secret, got)
				}
			}
			for _, fragment := range tt.wantPresent {
				if !strings.Contains(got, fragment) {
					t.Errorf("sanitized URL missing %q: %s", fragment, got)
				}
			}
		})
	}
}

func TestSanitizeURL_NilURL(t *testing.T) {
	if got := sanitizeURL(nil); got != "" {
		t.Errorf("expected empty string for nil URL, got %q", got)
	}
}

func TestSanitizeURL_DoesNotMutateOriginal(t *testing.T) {
	u, _ := url.Parse("https://example.com/x?password=secret")
	_ = sanitizeURL(u)
	if !strings.Contains(u.String(), "secret") {
		t.Error("sanitizeURL must not mutate the caller's URL")
	}
}
