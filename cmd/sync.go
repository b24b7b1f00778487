package main

import (
	"context"
	"fmt"

	"github.com/backline/backline/internal/models"
	"github.com/backline/backline/internal/repositories"
	"github.com/backline/backline/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs one analytics sync for a (user, platform) pair from the terminal.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")
	platform, err := models.ParsePlatform(cmd.String("platform"))
	if err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	connections := repositories.NewConnectionRepository(db)
	analytics := repositories.NewAnalyticsRepository(db)
	engine := tasks.NewSyncEngine(r.platforms, connections, analytics, r.logger)

	snapshot, err := engine.Sync(ctx, userID, platform)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	r.writePlain("✓ Synced %s for %s\n", platform, userID)
	r.writePlain("Followers: %d · Saved tracks: %d · Plays: %d\n", snapshot.Followers, snapshot.SavedTracks, snapshot.Plays)
	if len(snapshot.TopTracks) > 0 {
		r.writePlainln("Top songs:")
		for i, track := range snapshot.TopTracks {
			r.writePlain("%2d. %s · %s (popularity %d)\n", i+1, track.Name, track.Artist, track.Popularity)
		}
	}
	return nil
}
