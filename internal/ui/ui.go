package ui

import (
	"context"
	"fmt"

	"github.com/backline/backline/internal/models"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ConnectionListView ViewState = iota
	TrackListView
	SyncView
)

// ConnectionBrowser provides the stored connections and rankings the TUI renders.
// Implemented by the repositories package.
type ConnectionBrowser interface {
	List(criteria map[string]any) ([]*models.PlatformConnection, error)
	TopTracks(userID string, platform models.PlatformKind, limit int) ([]models.TrackStat, error)
}

// SyncRunner runs one sync for the selected connection.
// Implemented by tasks.SyncEngine.
type SyncRunner interface {
	Sync(ctx context.Context, userID string, platform models.PlatformKind) (*models.AnalyticsSnapshot, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	store          ConnectionBrowser
	engine         SyncRunner
	width          int
	height         int
	connectionList list.Model
	connections    []*models.PlatformConnection
	trackList      list.Model
	selected       *models.PlatformConnection
	err            error
	help           help.Model
	keys           keyMap
}

type connectionsFetchedMsg struct {
	connections []*models.PlatformConnection
	err         error
}

type tracksFetchedMsg struct {
	tracks []models.TrackStat
	err    error
}

type syncCompleteMsg struct {
	snapshot *models.AnalyticsSnapshot
	err      error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, store ConnectionBrowser, engine SyncRunner) *Model {
	return &Model{
		ctx:    ctx,
		view:   ConnectionListView,
		store:  store,
		engine: engine,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading stored connections.
func (m *Model) Init() tea.Cmd {
	return m.fetchConnections()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.connectionList.Width() == 0 {
			m.connectionList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ConnectionListView:
			return m.handleConnectionListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case SyncView:
			return m.handleSyncKeys(msg)
		}

	case connectionsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.connections = msg.connections
		items := make([]list.Item, len(msg.connections))
		for i, conn := range msg.connections {
			items[i] = connectionItem{conn: conn}
		}
		m.connectionList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.connectionList.Title = "Platform Connections"
		m.connectionList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ConnectionListView
			return m, nil
		}
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{rank: i + 1, track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Top songs · %s", m.selected.Platform)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case syncCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ConnectionListView
			return m, nil
		}
		// Reload the persisted ranking the sync just wrote.
		return m, m.fetchTracks()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ConnectionListView:
		return m.renderConnectionList()
	case TrackListView:
		return m.renderTrackList()
	case SyncView:
		return m.renderSync()
	default:
		return ""
	}
}

func (m *Model) handleConnectionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if item, ok := m.connectionList.SelectedItem().(connectionItem); ok {
			m.selected = item.conn
			return m, m.fetchTracks()
		}
	case "s":
		if item, ok := m.connectionList.SelectedItem().(connectionItem); ok {
			m.selected = item.conn
			m.view = SyncView
			return m, m.startSync()
		}
	}

	var cmd tea.Cmd
	m.connectionList, cmd = m.connectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ConnectionListView
		return m, nil
	case "s":
		m.view = SyncView
		return m, m.startSync()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleSyncKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ConnectionListView:
		m.connectionList, cmd = m.connectionList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchConnections() tea.Cmd {
	return func() tea.Msg {
		connections, err := m.store.List(nil)
		return connectionsFetchedMsg{connections: connections, err: err}
	}
}

func (m *Model) fetchTracks() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.store.TopTracks(m.selected.UserID, m.selected.Platform, models.TopTrackLimit)
		return tracksFetchedMsg{tracks: tracks, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := m.engine.Sync(m.ctx, m.selected.UserID, m.selected.Platform)
		return syncCompleteMsg{snapshot: snapshot, err: err}
	}
}

func (m *Model) renderConnectionList() string {
	syncKey := m.keys.sync
	helpKeys := []key.Binding{m.keys.enter, syncKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.connectionList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.sync, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render(fmt.Sprintf("Syncing %s", m.selected.Platform))
	return fmt.Sprintf("%s\n\nFetching analytics, this may take a moment...", title)
}
