package models

import (
	"sort"
	"time"
)

// TrackStat is a track, video, or song flattened into the common ranking shape.
type TrackStat struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist,omitempty"`
	Popularity int    `json:"popularity"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// AnalyticsSnapshot is the best-effort result of one platform sync.
//
// Fields a platform does not expose, or whose sub-call failed, are zero-filled
// rather than aborting the sync.
type AnalyticsSnapshot struct {
	Platform       PlatformKind `json:"platform"`
	PlatformUserID string       `json:"platform_user_id,omitempty"`
	TopTracks      []TrackStat  `json:"top_tracks"`
	Followers      int64        `json:"followers"`
	SavedTracks    int64        `json:"saved_tracks"`
	Plays          int64        `json:"plays"`
	SyncedAt       time.Time    `json:"synced_at"`
}

// TopTrackLimit caps the merged top-songs ranking.
const TopTrackLimit = 10

// MergeTopTracks reconciles track listings from multiple sources into a single
// deduplicated ranking.
//
// Duplicates (same track id) keep the instance with the higher popularity;
// on equal popularity the first-seen instance wins. The result is sorted
// descending by popularity and truncated to limit. A limit <= 0 means
// [TopTrackLimit].
func MergeTopTracks(limit int, lists ...[]TrackStat) []TrackStat {
	if limit <= 0 {
		limit = TopTrackLimit
	}

	seen := make(map[string]int)
	merged := make([]TrackStat, 0)

	for _, list := range lists {
		for _, track := range list {
			if track.ID == "" {
				continue
			}
			if idx, ok := seen[track.ID]; ok {
				if track.Popularity > merged[idx].Popularity {
					merged[idx] = track
				}
				continue
			}
			seen[track.ID] = len(merged)
			merged = append(merged, track)
		}
	}

	// Stable sort preserves first-seen order among equal popularities.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Popularity > merged[j].Popularity
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}

	return merged
}
