package dataverse

import (
	"log/slog"
	"strings"

	logpkg "github.com/Leon4s4/dynamics-mcp/internal/log"
	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// Credentials holds the connection settings for one Dataverse instance,
// either supplied directly or parsed from a connection string.
type Credentials struct {
	URL          string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	AuthType     string
	LoginPrompt  string
}

// ParseConnectionString parses the semicolon-delimited "key=value;..." form
// used by Dynamics tooling. Keys are case-insensitive; unknown keys are
// ignored. Absent keys keep their defaults (authtype "OAuth", loginprompt
// "Never", everything else empty).
func ParseConnectionString(s string) Credentials {
	creds := Credentials{
		AuthType:    "OAuth",
		LoginPrompt: "Never",
	}

	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "url":
			creds.URL = value
		case "clientid":
			creds.ClientID = value
		case "clientsecret":
			creds.ClientSecret = value
		case "username", "userid":
			creds.Username = value
		case "password":
			creds.Password = value
		case "authtype":
			creds.AuthType = value
		case "loginprompt":
			creds.LoginPrompt = value
		}
	}

	return creds
}

// LogValue implements slog.LogValuer so credentials can be logged without
// leaking secrets: the secret fields appear redacted, empty ones are omitted.
func (c Credentials) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("url", c.URL),
		slog.String("client_id", c.ClientID),
		slog.String("username", c.Username),
	}
	if c.ClientSecret != "" {
		attrs = append(attrs, slog.String("client_secret", logpkg.SanitizeSecret(c.ClientSecret)))
	}
	if c.Password != "" {
		attrs = append(attrs, slog.String("password", logpkg.SanitizeSecret(c.Password)))
	}
	return slog.GroupValue(attrs...)
}

// HasClientCredentials reports whether the client-credentials OAuth flow is
// usable with these credentials.
func (c Credentials) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// HasUserCredentials reports whether the resource-owner-password OAuth flow
// is usable with these credentials.
func (c Credentials) HasUserCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// Validate checks that the credentials identify an instance and select at
// least one auth flow.
func (c Credentials) Validate() error {
	if c.URL == "" {
		return &errors.ConfigError{Key: "url", Reason: "base URL is required"}
	}
	if !strings.HasPrefix(c.URL, "https://") && !strings.HasPrefix(c.URL, "http://") {
		return &errors.ConfigError{Key: "url", Reason: "base URL must start with http:// or https://"}
	}
	if !c.HasClientCredentials() && !c.HasUserCredentials() {
		return &errors.ConfigError{
			Key:    "credentials",
			Reason: "no usable auth flow: provide clientid+clientsecret or username+password",
		}
	}
	return nil
}
