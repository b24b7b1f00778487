package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Platform defines the interface for streaming platform integrations
// (Spotify, YouTube, Apple Music, Audiomack, Boomplay).
type Platform interface {
	// Name returns the platform identifier used in connection records and routes.
	Name() models.PlatformKind

	// Exchange completes the authorization-code grant for a callback.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Refresh performs a refresh-token grant with the stored refresh token.
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	// Identity fetches the platform-side user/channel identifier.
	// Callers treat a failure here as non-fatal.
	Identity(ctx context.Context, accessToken string) (string, error)

	// Snapshot gathers read-only usage data with a valid access token.
	// Individual sub-calls degrade to zero values; only a snapshot that could
	// not be assembled at all returns an error.
	Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error)
}

// defaultRequestRate bounds platform API calls per adapter, matching the
// upstream rate-limit exposure we are willing to accept during fan-out.
const defaultRequestRate = 5.0

// apiClient performs authenticated JSON requests against one platform's API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newAPIClient(baseURL string, client *http.Client) *apiClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &apiClient{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestRate), 1),
	}
}

// get performs an authenticated GET request and decodes the JSON response into result.
func (a *apiClient) get(ctx context.Context, endpoint, accessToken string, result any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("platform API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
