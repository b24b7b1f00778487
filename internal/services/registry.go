package services

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/shared"
)

// Registry maps platform names to their adapters.
//
// Platforms whose credentials are missing from configuration are registered
// with their construction error so callers can distinguish "unknown platform"
// (caller error) from "platform not configured" (server error).
type Registry struct {
	platforms map[models.PlatformKind]Platform
	errors    map[models.PlatformKind]error
}

// NewRegistry builds adapters for every supported platform from config.
// The http.Client is shared across adapters; nil means http.DefaultClient.
func NewRegistry(cfg *shared.Config, client *http.Client) *Registry {
	r := &Registry{
		platforms: make(map[models.PlatformKind]Platform),
		errors:    make(map[models.PlatformKind]error),
	}

	r.add(models.PlatformSpotify, func() (Platform, error) {
		return NewSpotifyService(cfg.Credentials.Spotify.Map(), client)
	})
	r.add(models.PlatformYouTube, func() (Platform, error) {
		return NewYouTubeService(cfg.Credentials.YouTube.Map(), client)
	})
	r.add(models.PlatformAppleMusic, func() (Platform, error) {
		return NewAppleMusicService(cfg.Credentials.AppleMusic.Map(), client)
	})
	r.add(models.PlatformAudiomack, func() (Platform, error) {
		return NewAudiomackService(cfg.Credentials.Audiomack.Map(), client)
	})
	r.add(models.PlatformBoomplay, func() (Platform, error) {
		return NewBoomplayService(cfg.Credentials.Boomplay.Map(), client)
	})

	return r
}

func (r *Registry) add(kind models.PlatformKind, build func() (Platform, error)) {
	platform, err := build()
	if err != nil {
		r.errors[kind] = fmt.Errorf("%s: %w", kind, err)
		return
	}
	r.platforms[kind] = platform
}

// Register installs (or replaces) an adapter directly. Used by tests and by
// callers wiring custom adapters.
func (r *Registry) Register(platform Platform) {
	r.platforms[platform.Name()] = platform
	delete(r.errors, platform.Name())
}

// Get returns the adapter for kind.
//
// An unknown or unsupported platform returns [shared.ErrUnsupportedPlatform];
// a known platform with missing credentials returns the construction error
// wrapping [shared.ErrMissingCredentials].
func (r *Registry) Get(kind models.PlatformKind) (Platform, error) {
	if platform, ok := r.platforms[kind]; ok {
		return platform, nil
	}
	if err, ok := r.errors[kind]; ok {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedPlatform, kind)
}

// Kinds returns the platform names with a usable adapter, sorted for stable output.
func (r *Registry) Kinds() []models.PlatformKind {
	kinds := make([]models.PlatformKind, 0, len(r.platforms))
	for kind := range r.platforms {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
