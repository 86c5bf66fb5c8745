package dataverse

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// fallbackClientID is the well-known public client id published by Microsoft
// for Dataverse developer tooling. It is used for the password flow when the
// connection string carries no client id of its own.
const fallbackClientID = "51f81489-12ee-4a9e-aaae-a2591f45987d"

// defaultTokenURL is the Azure AD v2.0 token endpoint for the common tenant.
const defaultTokenURL = "https://login.microsoftonline.com/common/oauth2/v2.0/token"

// TokenProvider obtains a bearer token for a Dataverse instance. It is a
// collaborator boundary: the registry depends on this interface, not on a
// concrete OAuth implementation, so tests substitute a static provider.
type TokenProvider interface {
	AccessToken(ctx context.Context, creds Credentials) (string, error)
}

// OAuthTokenProvider acquires tokens from Azure AD. The flow is selected by
// which credential fields are populated: client-credentials when
// clientid+clientsecret are present, resource-owner-password when
// username+password are present.
type OAuthTokenProvider struct {
	// TokenURL overrides the Azure AD token endpoint. Empty means the
	// common-tenant v2.0 endpoint.
	TokenURL string

	// HTTPClient is used for the token request. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// AccessToken implements TokenProvider.
func (p *OAuthTokenProvider) AccessToken(ctx context.Context, creds Credentials) (string, error) {
	tokenURL := p.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}

	scope := strings.TrimRight(creds.URL, "/") + "/.default"

	switch {
	case creds.HasClientCredentials():
		cfg := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
		}
		tok, err := cfg.Token(ctx)
		if err != nil {
			return "", &errors.TokenError{Flow: "client_credentials", Cause: err}
		}
		if tok.AccessToken == "" {
			return "", &errors.TokenError{Flow: "client_credentials", Reason: "token response carried no access token"}
		}
		return tok.AccessToken, nil

	case creds.HasUserCredentials():
		clientID := creds.ClientID
		if clientID == "" {
			clientID = fallbackClientID
		}
		cfg := &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{TokenURL: tokenURL},
			Scopes:   []string{scope},
		}
		tok, err := cfg.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
		if err != nil {
			return "", &errors.TokenError{Flow: "password", Cause: err}
		}
		if tok.AccessToken == "" {
			return "", &errors.TokenError{Flow: "password", Reason: "token response carried no access token"}
		}
		return tok.AccessToken, nil

	default:
		return "", &errors.ConfigError{
			Key:    "credentials",
			Reason: "no usable auth flow: provide clientid+clientsecret or username+password",
		}
	}
}
