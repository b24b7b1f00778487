// Package tasks implements the per-platform analytics sync.
//
// The core abstraction is [SyncEngine], which runs one sync for a (user,
// platform) pair: look up the stored connection, refresh the access token if
// expired (one attempt, no retries), gather a best-effort snapshot through
// the platform adapter, persist the normalized track stats, and bump the
// connection's last-synced timestamp.
//
// A failed refresh surfaces [shared.ErrReconnectRequired]; the connection is
// unusable until the user redoes the OAuth callback flow. Individual snapshot
// sub-calls degrade to zero values rather than aborting a sync.
package tasks
