package models

import (
	"testing"
	"time"
)

func TestMergeTopTracks(t *testing.T) {
	t.Run("Deduplicates By ID Keeping Higher Popularity", func(t *testing.T) {
		a := []TrackStat{{ID: "t1", Name: "Song", Popularity: 40}}
		b := []TrackStat{{ID: "t1", Name: "Song", Popularity: 85}}

		merged := MergeTopTracks(10, a, b)
		if len(merged) != 1 {
			t.Fatalf("expected 1 track, got %d", len(merged))
		}
		if merged[0].Popularity != 85 {
			t.Errorf("expected popularity 85 to survive, got %d", merged[0].Popularity)
		}
	})

	t.Run("Equal Popularity Keeps First Seen", func(t *testing.T) {
		a := []TrackStat{{ID: "t1", Name: "First", Artist: "A", Popularity: 50}}
		b := []TrackStat{{ID: "t1", Name: "Second", Artist: "B", Popularity: 50}}

		merged := MergeTopTracks(10, a, b)
		if len(merged) != 1 {
			t.Fatalf("expected 1 track, got %d", len(merged))
		}
		if merged[0].Name != "First" {
			t.Errorf("expected first-seen instance to win, got %q", merged[0].Name)
		}
	})

	t.Run("Sorts Descending By Popularity", func(t *testing.T) {
		tracks := []TrackStat{
			{ID: "a", Popularity: 10},
			{ID: "b", Popularity: 99},
			{ID: "c", Popularity: 50},
		}

		merged := MergeTopTracks(10, tracks)
		want := []int{99, 50, 10}
		for i, w := range want {
			if merged[i].Popularity != w {
				t.Errorf("position %d: expected popularity %d, got %d", i, w, merged[i].Popularity)
			}
		}
	})

	t.Run("Truncates To Limit", func(t *testing.T) {
		tracks := make([]TrackStat, 0, 15)
		for i := 0; i < 15; i++ {
			tracks = append(tracks, TrackStat{ID: string(rune('a' + i)), Popularity: i})
		}

		merged := MergeTopTracks(0, tracks)
		if len(merged) != TopTrackLimit {
			t.Errorf("expected %d tracks, got %d", TopTrackLimit, len(merged))
		}
	})

	t.Run("Skips Entries Without ID", func(t *testing.T) {
		tracks := []TrackStat{{ID: "", Popularity: 100}, {ID: "ok", Popularity: 5}}

		merged := MergeTopTracks(10, tracks)
		if len(merged) != 1 || merged[0].ID != "ok" {
			t.Errorf("expected only the identified track, got %+v", merged)
		}
	})
}

func TestPlatformConnection(t *testing.T) {
	t.Run("TokenState", func(t *testing.T) {
		now := time.Now()

		conn := &PlatformConnection{ExpiresAt: now.Add(time.Hour)}
		if conn.TokenState(now) != TokenValid {
			t.Error("expected token to be valid before expiry")
		}

		conn.ExpiresAt = now.Add(-time.Minute)
		if conn.TokenState(now) != TokenNeedsRefresh {
			t.Error("expected token to need refresh after expiry")
		}

		conn.ExpiresAt = now
		if conn.TokenState(now) != TokenNeedsRefresh {
			t.Error("expiry at exactly now should need refresh")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		conn := &PlatformConnection{UserID: "u1", Platform: PlatformSpotify, AccessToken: "tok"}
		if err := conn.Validate(); err != nil {
			t.Errorf("expected valid connection, got %v", err)
		}

		conn.Platform = "tidal"
		if err := conn.Validate(); err == nil {
			t.Error("expected error for unknown platform")
		}
	})
}

func TestParsePlatform(t *testing.T) {
	for _, valid := range []string{"spotify", "apple_music", "youtube", "audiomack", "boomplay", "soundcloud"} {
		if _, err := ParsePlatform(valid); err != nil {
			t.Errorf("expected %q to parse, got %v", valid, err)
		}
	}

	if _, err := ParsePlatform("napster"); err == nil {
		t.Error("expected error for unknown platform")
	}
}
