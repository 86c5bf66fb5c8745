package dataverse

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// apiPath is the Web API route prefix all requests are issued under.
const apiPath = "/api/data/v9.2/"

// Session binds one Dataverse instance: base URL, bearer credential, and the
// HTTP client configuration used for every call against it. A session is
// constructed once per registered endpoint and owns no mutable state after
// construction.
type Session struct {
	ID        string
	BaseURL   string
	CreatedAt time.Time

	token  string
	client *http.Client
}

// NewSession creates a session for one Dataverse instance. baseURL is
// normalized to carry no trailing slash.
func NewSession(baseURL, token string, client *http.Client) *Session {
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{
		ID:        uuid.NewString(),
		BaseURL:   strings.TrimRight(baseURL, "/"),
		CreatedAt: time.Now().UTC(),
		token:     token,
		client:    client,
	}
}

// apiURL joins a resource path (already query-encoded) onto the Web API root.
func (s *Session) apiURL(resource string) string {
	return s.BaseURL + apiPath + resource
}

// newRequest builds an authenticated Web API request with the OData 4.0
// headers every Dataverse call requires.
func (s *Session) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request on the session's HTTP client.
func (s *Session) do(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}
