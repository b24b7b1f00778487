// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for operating the portal's
// platform connections:
//  1. [ConnectionListView] : Browse stored platform connections
//  2. [TrackListView] : Inspect the persisted top-songs ranking for a connection
//  3. [SyncView] : Run a sync and watch it complete
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Syncs run in a background command so the interface stays responsive.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
