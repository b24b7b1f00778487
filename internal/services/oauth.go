package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/backline/backline/internal/shared"
	"golang.org/x/oauth2"
)

// diagnosticLimit bounds how much upstream error text is echoed to callers.
const diagnosticLimit = 200

// OAuthClient handles the authorization-code and refresh-token grants for one
// platform. The redirect URI must byte-for-byte match the URI used during the
// initial authorization request.
type OAuthClient struct {
	config *oauth2.Config
}

// NewOAuthClient creates an OAuth client from the platform's credential map
// and endpoint. client_id and client_secret are required; redirect_uri is
// required because the callback exchange repeats it verbatim.
func NewOAuthClient(credentials map[string]string, endpoint oauth2.Endpoint, scopes []string) (*OAuthClient, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri", shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}

	return &OAuthClient{config: config}, nil
}

// AuthCodeURL returns the authorization URL carrying the given state value.
func (c *OAuthClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange completes the authorization-code grant.
func (c *OAuthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExchangeFailed, err)
	}
	return token, nil
}

// Refresh performs a one-shot refresh-token grant. No retries: a failed
// refresh means the user must redo the OAuth flow.
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	source := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	// Platforms that rotate refresh tokens return a new one; those that do
	// not leave the field empty and the stored token stays valid.
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}

	return token, nil
}

// UpstreamDiagnostic extracts a truncated description of a token-endpoint
// failure suitable for inclusion in a client-facing error. The full body is
// expected to be logged separately by the caller.
func UpstreamDiagnostic(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		body := strings.TrimSpace(string(retrieveErr.Body))
		if body == "" {
			return fmt.Sprintf("token endpoint returned status %d", retrieveErr.Response.StatusCode)
		}
		return shared.Truncate(body, diagnosticLimit)
	}
	return shared.Truncate(err.Error(), diagnosticLimit)
}
