// Package models defines domain entities for the Backline integration service.
//
// The package contains three categories of types:
//
// 1. Persistent entities backed by the SQLite store:
//   - [PlatformConnection] : stored OAuth credentials linking one user to one streaming platform
//   - [Profile] : label portal profile with role-based notification routing
//
// 2. Transient analytics shapes produced by sync runs:
//   - [TrackStat] : a track/video flattened into the common ranking shape
//   - [AnalyticsSnapshot] : the best-effort result of one platform sync
//
// 3. The top-songs reconciliation rule:
//   - [MergeTopTracks] : dedupe by track id keeping the higher popularity, rank descending, truncate
//
// Connection token lifecycle is exposed through [PlatformConnection.TokenState]:
// a valid token becomes [TokenNeedsRefresh] once its expiry passes; a failed
// refresh leaves the connection unusable until the user redoes the OAuth flow.
package models
