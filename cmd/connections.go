package main

import (
	"context"

	"github.com/backline/backline/internal/repositories"
	"github.com/urfave/cli/v3"
)

// ConnectionsList prints the stored platform connections.
func (r *Runner) ConnectionsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if user := cmd.String("user"); user != "" {
		criteria["user_id"] = user
	}

	connections, err := repositories.NewConnectionRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(connections, true)
	}

	if len(connections) == 0 {
		r.writePlain("No connections stored\n")
		return nil
	}

	for _, conn := range connections {
		state := "active"
		if !conn.Active {
			state = "inactive"
		}
		synced := "never"
		if conn.LastSyncedAt != nil {
			synced = conn.LastSyncedAt.Format("2006-01-02 15:04")
		}
		r.writePlain("%-12s %-24s %-8s expires %s · last synced %s\n",
			conn.Platform, conn.UserID, state, conn.ExpiresAt.Format("2006-01-02 15:04"), synced)
	}
	return nil
}
