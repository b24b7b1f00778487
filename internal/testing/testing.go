// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/backline/backline/internal/models"
	"golang.org/x/oauth2"
)

// MockPlatform is a test double for [services.Platform]
type MockPlatform struct {
	Kind models.PlatformKind
}

func (m *MockPlatform) Name() models.PlatformKind { return m.Kind }

func (m *MockPlatform) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "mock-access", RefreshToken: "mock-refresh"}, nil
}

func (m *MockPlatform) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "mock-access", RefreshToken: refreshToken}, nil
}

func (m *MockPlatform) Identity(ctx context.Context, accessToken string) (string, error) {
	return "mock-user", nil
}

func (m *MockPlatform) Snapshot(ctx context.Context, accessToken string) (*models.AnalyticsSnapshot, error) {
	return &models.AnalyticsSnapshot{Platform: m.Kind}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RouteRoundTripper dispatches to a response factory per request path,
// for tests that walk several endpoints in one flow.
type RouteRoundTripper struct {
	Routes map[string]func() *http.Response
}

func (m *RouteRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	if build, ok := m.Routes[r.URL.Path]; ok {
		return build(), nil
	}
	return &http.Response{StatusCode: http.StatusNotFound, Body: http.NoBody}, nil
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
