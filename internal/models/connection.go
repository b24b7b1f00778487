package models

import (
	"fmt"
	"time"
)

// PlatformKind identifies a streaming platform.
type PlatformKind string

const (
	PlatformSpotify    PlatformKind = "spotify"
	PlatformAppleMusic PlatformKind = "apple_music"
	PlatformYouTube    PlatformKind = "youtube"
	PlatformAudiomack  PlatformKind = "audiomack"
	PlatformBoomplay   PlatformKind = "boomplay"
	PlatformSoundCloud PlatformKind = "soundcloud"
)

// ParsePlatform converts a string to a [PlatformKind], rejecting unknown values.
func ParsePlatform(s string) (PlatformKind, error) {
	switch PlatformKind(s) {
	case PlatformSpotify, PlatformAppleMusic, PlatformYouTube, PlatformAudiomack, PlatformBoomplay, PlatformSoundCloud:
		return PlatformKind(s), nil
	default:
		return "", fmt.Errorf("unknown platform: %q", s)
	}
}

// TokenState describes where a connection's access token sits in its lifecycle.
type TokenState int

const (
	TokenValid TokenState = iota
	TokenNeedsRefresh
)

// PlatformConnection links one user to one streaming platform.
//
// At most one active connection exists per (user, platform) pair; the store
// enforces this with an upsert keyed on that pair. Writes are last-write-wins.
type PlatformConnection struct {
	ID             string       `json:"id"`
	Sequence       int          `json:"-"`
	UserID         string       `json:"user_id"`
	Platform       PlatformKind `json:"platform"`
	AccessToken    string       `json:"-"`
	RefreshToken   string       `json:"-"`
	ExpiresAt      time.Time    `json:"expires_at"`
	PlatformUserID string       `json:"platform_user_id,omitempty"`
	Active         bool         `json:"active"`
	LastSyncedAt   *time.Time   `json:"last_synced_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Validate checks that the connection carries the fields the store requires.
func (c *PlatformConnection) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("connection missing user_id")
	}
	if _, err := ParsePlatform(string(c.Platform)); err != nil {
		return err
	}
	if c.AccessToken == "" {
		return fmt.Errorf("connection missing access_token")
	}
	return nil
}

// TokenState reports whether the stored access token is still usable at now.
func (c *PlatformConnection) TokenState(now time.Time) TokenState {
	if !c.ExpiresAt.After(now) {
		return TokenNeedsRefresh
	}
	return TokenValid
}

// ProfileRole enumerates portal roles.
type ProfileRole string

const (
	RoleArtist ProfileRole = "artist"
	RoleAdmin  ProfileRole = "admin"
)

// Profile is a label portal profile row.
type Profile struct {
	ID          string      `json:"id"`
	Sequence    int         `json:"-"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        ProfileRole `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks required profile fields.
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("profile missing user_id")
	}
	if p.Email == "" {
		return fmt.Errorf("profile missing email")
	}
	if p.Role != RoleArtist && p.Role != RoleAdmin {
		return fmt.Errorf("unknown profile role: %q", p.Role)
	}
	return nil
}
