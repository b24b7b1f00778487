package ui

import (
	"fmt"

	"github.com/backline/backline/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = connectionItem{}
	_ list.Item = trackItem{}
)

// connectionItem wraps [models.PlatformConnection] to implement [list.Item].
type connectionItem struct {
	conn *models.PlatformConnection
}

func (i connectionItem) FilterValue() string { return string(i.conn.Platform) }
func (i connectionItem) Title() string {
	return fmt.Sprintf("%s · %s", i.conn.Platform, i.conn.UserID)
}
func (i connectionItem) Description() string {
	desc := "never synced"
	if i.conn.LastSyncedAt != nil {
		desc = fmt.Sprintf("last synced %s", i.conn.LastSyncedAt.Format("2006-01-02 15:04"))
	}
	if !i.conn.Active {
		desc = fmt.Sprintf("%s • inactive", desc)
	}
	return desc
}

// trackItem wraps [models.TrackStat] to implement [list.Item].
type trackItem struct {
	rank  int
	track models.TrackStat
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string {
	return fmt.Sprintf("%d. %s", i.rank, i.track.Name)
}
func (i trackItem) Description() string {
	desc := i.track.Artist
	if desc == "" {
		desc = "unknown artist"
	}
	return fmt.Sprintf("%s • popularity %d", desc, i.track.Popularity)
}
