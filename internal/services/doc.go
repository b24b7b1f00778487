// Package services implements streaming platform adapters behind the [Platform] interface.
//
// Each adapter pairs an [OAuthClient] (authorization-code exchange and
// refresh-token grant, shared across all platforms) with a small amount of
// platform-specific response parsing:
//
//   - [SpotifyService] : top tracks, saved-track counts, playlist fan-out with top-songs reconciliation
//   - [YouTubeService] : channel statistics and recent uploads
//   - [AppleMusicService] : library counts and heavy-rotation listing
//   - [AudiomackService] : uploads with play counts
//   - [BoomplayService] : artist songs with play counts
//
// The [Registry] maps platform names from request paths to adapters, and
// distinguishes platforms that are unknown from platforms whose credentials
// are missing from configuration.
package services
